package ui

import (
	"fmt"
	"log"
	"strings"
	"sync"
)

const maxMessages = 4

// Status tracks the state of the image collection. The fetch goroutines write
// it and the draw loop reads it, so every method is safe for concurrent use.
type Status struct {
	mu sync.RWMutex

	source  string
	loading bool
	count   int
	err     error

	// The most recent user-facing messages, oldest first
	messages []string
}

// NewStatus creates a status for the named image source.
func NewStatus(source string) *Status {
	return &Status{source: source}
}

// SetLoading marks a fetch as in flight.
func (s *Status) SetLoading() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
}

// SetLoaded records a successful fetch of count images.
func (s *Status) SetLoaded(count int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.count = count
	s.err = nil
}

// SetError records a failed fetch. The previous count is kept.
func (s *Status) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.err = err
}

// AddLogMessage logs msg and keeps it for the overlay.
func (s *Status) AddLogMessage(msg string) {
	log.Print(msg)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	if len(s.messages) > maxMessages {
		s.messages = s.messages[len(s.messages)-maxMessages:]
	}
}

// Loading reports whether a fetch is in flight.
func (s *Status) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Count returns the size of the last fetched collection.
func (s *Status) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// Err returns the error of the last fetch, if it failed.
func (s *Status) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Text is the overlay shown when no scene is mounted.
func (s *Status) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var b strings.Builder
	switch {
	case s.loading:
		fmt.Fprintf(&b, "Loading images from %s...", s.source)
	case s.err != nil:
		fmt.Fprintf(&b, "Could not load images from %s: %v", s.source, s.err)
	case s.count == 0:
		fmt.Fprintf(&b, "No images in %s.", s.source)
	default:
		fmt.Fprintf(&b, "%d images from %s", s.count, s.source)
	}
	for _, m := range s.messages {
		b.WriteString("\n")
		b.WriteString(m)
	}
	return b.String()
}
