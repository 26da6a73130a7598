// Package schedule routes every timer in the program through one small
// abstraction so tests can drive time by hand.
package schedule

import (
	"sync"
	"time"
)

// Handle is a pending one-shot or recurring callback
type Handle interface {
	// Stop cancels future runs. It reports whether a run was still pending.
	Stop() bool
}

// Scheduler creates timers and tells the time
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Handle
	Every(d time.Duration, f func()) Handle
}

// Real is the wall-clock scheduler
type Real struct{}

// NewReal returns the wall-clock scheduler
func NewReal() Real {
	return Real{}
}

// Now returns time.Now
func (Real) Now() time.Time {
	return time.Now()
}

// AfterFunc runs f on its own goroutine after d
func (Real) AfterFunc(d time.Duration, f func()) Handle {
	return time.AfterFunc(d, f)
}

// Every runs f every d until stopped
func (Real) Every(d time.Duration, f func()) Handle {
	t := &ticker{stopCh: make(chan struct{})}
	go t.loop(d, f)
	return t
}

type ticker struct {
	once   sync.Once
	stopCh chan struct{}
}

func (t *ticker) loop(d time.Duration, f func()) {
	tk := time.NewTicker(d)
	defer tk.Stop()

	for {
		select {
		case <-tk.C:
			select {
			case <-t.stopCh:
				return
			default:
			}
			f()
		case <-t.stopCh:
			return
		}
	}
}

func (t *ticker) Stop() bool {
	stopped := false
	t.once.Do(func() {
		close(t.stopCh)
		stopped = true
	})
	return stopped
}
