package protocol

import "time"

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop reports whether the callback was cancelled before it fired.
	Stop() bool
}

// Scheduler abstracts timer creation so tests can drive logical time
// instead of waiting on real timers.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type realScheduler struct{}

// NewScheduler returns a scheduler backed by the runtime timers.
func NewScheduler() Scheduler {
	return realScheduler{}
}

func (realScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
