package realtime

import "time"

// Scheduler runs f once after d. The returned stop func cancels the timer
// and reports whether it did so before f started.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) (stop func() bool)
}

// SystemScheduler schedules on the wall clock.
type SystemScheduler struct{}

// AfterFunc implements Scheduler.
func (SystemScheduler) AfterFunc(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

var _ Scheduler = SystemScheduler{}
