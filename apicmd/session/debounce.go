package session

import (
	"sync"
	"time"
)

// Debouncer coalesces bursts of Trigger calls into a single invocation of
// fn, fired one quiet window after the last trigger.
type Debouncer struct {
	window time.Duration
	fn     func()

	mu    sync.Mutex
	timer *time.Timer
}

// NewDebouncer returns a debouncer firing fn after window of quiet.
func NewDebouncer(window time.Duration, fn func()) *Debouncer {
	return &Debouncer{window: window, fn: fn}
}

// Trigger schedules fn, resetting the quiet window if one is already pending.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.window, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}

// Flush runs fn immediately if a trigger is pending. Used before shutdown so
// a trailing edit is never lost to the window.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	pending := d.timer != nil && d.timer.Stop()
	d.timer = nil
	d.mu.Unlock()

	if pending {
		d.fn()
	}
}

// Stop cancels any pending trigger without running fn.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
