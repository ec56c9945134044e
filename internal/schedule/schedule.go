// Package schedule provides the deferred-work primitives of the render loop:
// single-shot cancelable tasks and an input throttle. Nothing here spawns a
// goroutine; tasks fire when the owner polls them from its frame callback.
package schedule

import "time"

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// Task is a single-shot, cancelable deferred callback. Scheduling a task that
// is already pending replaces the earlier callback.
type Task struct {
	due     time.Time
	fn      func()
	pending bool
}

// Schedule arms the task to run fn once d has elapsed after now.
func (t *Task) Schedule(now time.Time, d time.Duration, fn func()) {
	t.due = now.Add(d)
	t.fn = fn
	t.pending = true
}

// Cancel disarms the task. It is a no-op when nothing is pending.
func (t *Task) Cancel() {
	t.pending = false
	t.fn = nil
}

// Pending reports whether the task is armed.
func (t *Task) Pending() bool { return t.pending }

// Poll runs the callback if the task is due at now and reports whether it ran.
func (t *Task) Poll(now time.Time) bool {
	if !t.pending || now.Before(t.due) {
		return false
	}
	fn := t.fn
	t.Cancel()
	if fn != nil {
		fn()
	}
	return true
}

// Throttle admits at most one event per interval and drops the rest.
type Throttle struct {
	interval time.Duration
	last     time.Time
	primed   bool
}

// NewThrottle returns a throttle with the given minimum spacing.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Allow reports whether an event arriving at now should be handled.
func (th *Throttle) Allow(now time.Time) bool {
	if th.primed && now.Sub(th.last) < th.interval {
		return false
	}
	th.last = now
	th.primed = true
	return true
}

// Reset forgets the last admitted event.
func (th *Throttle) Reset() {
	th.primed = false
}
