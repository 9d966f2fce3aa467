// Package debounce provides the quiet-period primitive behind mutation
// settlement: a burst of observed records collapses into a single
// settlement callback once the burst has been quiet long enough.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs its callback once per burst: every Call restarts the
// clock, and the callback fires only after no call has arrived for the
// configured delay.
//
// All methods are safe for concurrent use. The debouncer never runs the
// callback concurrently with itself.
type Debouncer struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending bool
	// seq invalidates timers that fired before a Cancel or a restart
	// took the lock.
	seq      uint64
	callback func()
}

// New creates a debouncer firing callback after delay of quiet.
func New(delay time.Duration, callback func()) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
	}
}

// Call schedules the callback after the quiet period, restarting the clock
// if a call is already pending.
func (d *Debouncer) Call() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.seq++
	currentSeq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		// A stale timer lost the race to a newer Call or a Cancel.
		if d.pending && d.seq == currentSeq && d.callback != nil {
			d.pending = false
			d.mu.Unlock()
			d.callback()
		} else {
			d.mu.Unlock()
		}
	})
}

// CallImmediate settles now: if a call is pending the callback runs
// synchronously and the scheduled timer is discarded.
func (d *Debouncer) CallImmediate() {
	d.mu.Lock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}

	d.seq++

	if d.pending && d.callback != nil {
		d.pending = false
		d.mu.Unlock()
		d.callback()
	} else {
		d.mu.Unlock()
	}
}

// Cancel drops any pending settlement. A timer that already fired but has
// not yet taken the lock observes the bumped sequence and does nothing, so
// cancellation is guaranteed.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// IsPending reports whether a settlement is scheduled.
func (d *Debouncer) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}
