package pipeline

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period hosts wait after the last edit before
// regenerating text.
const DefaultDebounce = 300 * time.Millisecond

// Debouncer coalesces bursts of edit events into one call. Each Trigger
// restarts the quiet period; fn runs on its own goroutine once no Trigger
// arrives for the full delay.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	fn      func()
	timer   *time.Timer
	pending bool
	stopped bool
}

// NewDebouncer returns a debouncer that calls fn after delay of quiet.
// A non-positive delay uses DefaultDebounce.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger records an event and restarts the quiet period.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.pending = true
	if d.timer == nil {
		d.timer = time.AfterFunc(d.delay, d.fire)
		return
	}
	d.timer.Reset(d.delay)
}

// Pending reports whether an event is waiting for its quiet period.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Flush runs fn immediately if an event is pending and reports whether it did.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return false
	}
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
	d.mu.Unlock()

	d.fn()
	return true
}

// Stop cancels any pending call. Later Triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	d.pending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	if !d.pending || d.stopped {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()

	d.fn()
}
