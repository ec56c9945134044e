package gallery

import (
	"time"

	"github.com/nicky-ayoub/cardstack/internal/schedule"
	"github.com/nicky-ayoub/cardstack/internal/window"
)

// hoverTracker debounces hit-test results into the hovered slot. A hit commits
// after setDelay, a miss clears after clearDelay, and every observation
// cancels whatever was pending.
type hoverTracker struct {
	hover      window.Hover
	setDelay   time.Duration
	clearDelay time.Duration
	set        schedule.Task
	clear      schedule.Task
}

func newHoverTracker(setDelay, clearDelay time.Duration) *hoverTracker {
	return &hoverTracker{setDelay: setDelay, clearDelay: clearDelay}
}

func (h *hoverTracker) observe(now time.Time, slot int, hit bool) {
	h.cancel()
	if hit {
		h.set.Schedule(now, h.setDelay, func() { h.hover = window.HoverAt(slot) })
		return
	}
	h.clear.Schedule(now, h.clearDelay, func() { h.hover = window.NoHover })
}

// poll runs due tasks and reports whether the hover changed.
func (h *hoverTracker) poll(now time.Time) bool {
	before := h.hover
	h.set.Poll(now)
	h.clear.Poll(now)
	return h.hover != before
}

func (h *hoverTracker) pending() bool {
	return h.set.Pending() || h.clear.Pending()
}

func (h *hoverTracker) cancel() {
	h.set.Cancel()
	h.clear.Cancel()
}
