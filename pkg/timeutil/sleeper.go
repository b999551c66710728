package timeutil

import "time"

// Sleeper abstracts suspending the calling goroutine, so components that
// need to wait out a delay (rate limiting, backoff) can be exercised in
// tests without incurring real wall-clock time.
type Sleeper interface {
	Sleep(d time.Duration)
}

// realSleeper is the production Sleeper, backed by time.Sleep.
type realSleeper struct{}

// NewRealSleeper returns a Sleeper that calls time.Sleep.
func NewRealSleeper() Sleeper {
	return realSleeper{}
}

func (realSleeper) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	time.Sleep(d)
}
