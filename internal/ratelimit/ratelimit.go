// Package ratelimit implements the single shared rate limiter that gates
// every outbound request dispatched by the scheduler, across all origins.
// It is a deliberate simplification of the per-host ConcurrentRateLimiter
// pattern: politeness here is a property of the crawler as a whole, not of
// any one origin.
package ratelimit

import (
	"math/rand"
	"sync"
	"time"

	"github.com/rohmanhakim/ethicrawl/pkg/timeutil"
)

// RateLimiter enforces a minimum interval between dispatches, with random
// jitter layered on top. A zero-value rate (no limiting) is expressed as
// minInterval == 0.
//
// Pacing state is minInterval, jitter, and lastDispatch; sleeper and rng
// are injectable collaborators. Nothing here is keyed by host; callers that need
// per-origin pacing delegate to their Fetcher or transport.
type RateLimiter struct {
	mu           sync.Mutex
	minInterval  time.Duration
	jitter       time.Duration
	lastDispatch *time.Time
	sleeper      timeutil.Sleeper
	rng          *rand.Rand
}

// New builds a RateLimiter for the given requests-per-second rate (0 or
// negative disables limiting) and jitter ceiling.
func New(rateLimit float64, jitter time.Duration) *RateLimiter {
	var minInterval time.Duration
	if rateLimit > 0 {
		minInterval = time.Duration(float64(time.Second) / rateLimit)
	}
	return &RateLimiter{
		minInterval: minInterval,
		jitter:      jitter,
		sleeper:     timeutil.NewRealSleeper(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetSleeper overrides the Sleeper used to suspend the calling goroutine.
// Exposed for tests that need to assert on delay without real wall-clock
// time elapsing.
func (r *RateLimiter) SetSleeper(s timeutil.Sleeper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sleeper = s
}

// SetRNG overrides the random source used for jitter, for deterministic
// tests.
func (r *RateLimiter) SetRNG(rng *rand.Rand) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng = rng
}

// WaitForSlot blocks the calling goroutine until it is this caller's turn
// to dispatch, per the three-step algorithm: first call never sleeps; a
// later call sleeps out any remainder of minInterval since the last
// dispatch, plus uniform jitter; lastDispatch is always advanced to now
// before returning.
func (r *RateLimiter) WaitForSlot() {
	r.mu.Lock()

	now := time.Now()
	if r.lastDispatch == nil {
		r.lastDispatch = &now
		r.mu.Unlock()
		return
	}

	elapsed := now.Sub(*r.lastDispatch)
	var delay time.Duration
	if elapsed < r.minInterval {
		delay = r.minInterval - elapsed
		if r.jitter > 0 {
			delay += time.Duration(r.rng.Int63n(int64(r.jitter)))
		}
	}
	sleeper := r.sleeper
	r.mu.Unlock()

	if delay > 0 {
		sleeper.Sleep(delay)
	}

	after := time.Now()
	r.mu.Lock()
	r.lastDispatch = &after
	r.mu.Unlock()
}
