package schedule

import (
	"sync"
	"time"
)

// Debouncer runs only the last of a burst of triggers, once the burst has been
// quiet for the configured delay
type Debouncer struct {
	sched   Scheduler
	delay   time.Duration
	mu      sync.Mutex
	pending Handle
	gen     uint64
	stopped bool
}

// NewDebouncer creates a debouncer on the given scheduler
func NewDebouncer(sched Scheduler, delay time.Duration) *Debouncer {
	return &Debouncer{sched: sched, delay: delay}
}

// Trigger cancels any pending run and schedules f after the quiet period
func (d *Debouncer) Trigger(f func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.pending != nil {
		d.pending.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = d.sched.AfterFunc(d.delay, func() {
		// a real timer may already be firing when Stop is called
		d.mu.Lock()
		current := gen == d.gen && !d.stopped
		if current {
			d.pending = nil
		}
		d.mu.Unlock()
		if current {
			f()
		}
	})
}

// Pending reports whether a run is scheduled
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending != nil
}

// Cancel drops the pending run; the next trigger schedules as usual
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}

// Stop cancels the pending run; later triggers are ignored
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.gen++
	if d.pending != nil {
		d.pending.Stop()
		d.pending = nil
	}
}
