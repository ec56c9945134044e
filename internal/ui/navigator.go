package ui

import (
	"fmt"
	"log"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
	"sync"
)

// BrowserNavigator opens owner pages in the system browser.
type BrowserNavigator struct {
	Base string
	// Open launches url. It defaults to the platform's browser opener.
	Open func(url string) error

	mu   sync.Mutex
	last string
}

// NewBrowserNavigator returns a navigator for pages under base.
func NewBrowserNavigator(base string) *BrowserNavigator {
	return &BrowserNavigator{Base: base, Open: openBrowser}
}

// URL is the page of the owner with the given slug.
func (n *BrowserNavigator) URL(slug string) string {
	return strings.TrimRight(n.Base, "/") + "/index/" + url.PathEscape(slug)
}

// Navigate opens the owner page without waiting for the browser.
func (n *BrowserNavigator) Navigate(slug string) {
	dest := n.URL(slug)
	n.mu.Lock()
	n.last = dest
	n.mu.Unlock()

	open := n.Open
	go func() {
		if err := open(dest); err != nil {
			log.Printf("navigate %s: %v", dest, err)
		}
	}()
}

// Last returns the most recent destination.
func (n *BrowserNavigator) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}

func openBrowser(dest string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", dest)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", dest)
	case "linux", "freebsd", "openbsd", "netbsd":
		cmd = exec.Command("xdg-open", dest)
	default:
		return fmt.Errorf("no browser opener for %s", runtime.GOOS)
	}
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Wait()
}
