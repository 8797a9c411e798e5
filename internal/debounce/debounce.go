// Package debounce provides cancellable delayed tasks.
//
// A Debouncer holds at most one pending task. Scheduling a new task discards
// the pending one, so under rapid repeated input only the last request runs,
// once the input has been quiet for the configured delay.
package debounce

import (
	"sync"
	"time"
	"unicode/utf8"

	"k8s.io/utils/clock"
)

const (
	// DefaultSearchDelay gates search string commits
	DefaultSearchDelay = 750 * time.Millisecond
	// DefaultLoadMoreDelay gates pagination bumps
	DefaultLoadMoreDelay = 50 * time.Millisecond
)

// Debouncer runs the most recently scheduled task after a quiet period
type Debouncer struct {
	clock clock.WithDelayedExecution
	delay time.Duration

	mu      sync.Mutex
	gen     uint64
	timer   clock.Timer
	pending func()
	stopped bool
}

// New creates a Debouncer using the given clock and delay
func New(clk clock.WithDelayedExecution, delay time.Duration) *Debouncer {
	return &Debouncer{clock: clk, delay: delay}
}

// Delay returns the quiet period
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Schedule replaces the pending task, if any, with task. It returns false
// once the debouncer has been stopped.
func (d *Debouncer) Schedule(task func()) bool {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return false
	}
	d.gen++
	gen := d.gen
	prev := d.timer
	d.timer = nil
	d.pending = task
	d.mu.Unlock()

	// The clock is never called with mu held: a fake clock runs callbacks
	// under its own lock and fire takes mu.
	if prev != nil {
		prev.Stop()
	}
	timer := d.clock.AfterFunc(d.delay, func() { d.fire(gen) })

	d.mu.Lock()
	if d.gen != gen || d.stopped {
		// superseded while the timer was being created
		stopped := d.stopped
		d.mu.Unlock()
		timer.Stop()
		return !stopped
	}
	d.timer = timer
	d.mu.Unlock()
	return true
}

// fire runs the task of generation gen unless it was superseded
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.gen != gen || d.stopped || d.pending == nil {
		d.mu.Unlock()
		return
	}
	task := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	task()
}

// Pending reports whether a task is waiting
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Flush runs the pending task now and reports whether there was one
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	task := d.pending
	timer := d.takeLocked()
	d.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
	if task == nil {
		return false
	}
	task()
	return true
}

// Cancel discards the pending task
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	timer := d.takeLocked()
	d.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
}

// Stop discards the pending task and refuses any further scheduling
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	timer := d.takeLocked()
	d.mu.Unlock()

	if timer != nil {
		timer.Stop()
	}
}

// takeLocked invalidates the pending task and returns its timer
func (d *Debouncer) takeLocked() clock.Timer {
	d.gen++
	d.pending = nil
	timer := d.timer
	d.timer = nil
	return timer
}

// ShouldBypass reports whether a search update looks pasted or restored
// rather than typed: its length differs from the previous query string by
// more than one character. This is a heuristic.
func ShouldBypass(prev, next string) bool {
	delta := utf8.RuneCountInString(next) - utf8.RuneCountInString(prev)
	return delta > 1 || delta < -1
}
