package schedule

import "time"

// Clock abstracts time so gating recomputation can be driven
// deterministically in tests instead of waiting on wall-clock timers
type Clock interface {
	Now() time.Time
	// Tick returns a channel that delivers the time after each period
	// until stop is called
	Tick(period time.Duration) (ticks <-chan time.Time, stop func())
}

// SystemClock is the Clock backed by real time
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

func (SystemClock) Tick(period time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(period)
	return t.C, t.Stop
}
