package signaling

import "time"

// CancelFunc cancels a scheduled callback. Cancelling an already-fired or
// already-cancelled timer is a no-op.
type CancelFunc func()

// Scheduler schedules a single callback after a delay. Injected so tests can
// drive timeouts deterministically without wall-clock delay.
type Scheduler interface {
	After(d time.Duration, fn func()) CancelFunc
}

type wallScheduler struct{}

// NewScheduler returns a Scheduler backed by the wall clock.
func NewScheduler() Scheduler {
	return wallScheduler{}
}

func (wallScheduler) After(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
