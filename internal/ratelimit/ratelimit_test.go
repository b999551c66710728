package ratelimit_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/rohmanhakim/ethicrawl/internal/ratelimit"
)

type fakeSleeper struct {
	calls []time.Duration
}

func (f *fakeSleeper) Sleep(d time.Duration) {
	f.calls = append(f.calls, d)
}

func TestWaitForSlot_FirstCallNeverSleeps(t *testing.T) {
	rl := ratelimit.New(10, 0)
	fs := &fakeSleeper{}
	rl.SetSleeper(fs)

	rl.WaitForSlot()

	if len(fs.calls) != 0 {
		t.Errorf("first WaitForSlot slept %v times, want 0", len(fs.calls))
	}
}

func TestWaitForSlot_SecondCallSleepsRemainder(t *testing.T) {
	rl := ratelimit.New(1, 0) // minInterval = 1s
	fs := &fakeSleeper{}
	rl.SetSleeper(fs)
	rl.SetRNG(rand.New(rand.NewSource(1)))

	rl.WaitForSlot()
	rl.WaitForSlot()

	if len(fs.calls) != 1 {
		t.Fatalf("second WaitForSlot slept %v times, want 1", len(fs.calls))
	}
	if fs.calls[0] <= 0 || fs.calls[0] > time.Second {
		t.Errorf("sleep duration = %v, want in (0, 1s]", fs.calls[0])
	}
}

func TestWaitForSlot_NoLimitNeverSleeps(t *testing.T) {
	rl := ratelimit.New(0, 0)
	fs := &fakeSleeper{}
	rl.SetSleeper(fs)

	rl.WaitForSlot()
	rl.WaitForSlot()
	rl.WaitForSlot()

	if len(fs.calls) != 0 {
		t.Errorf("unlimited RateLimiter slept %v times, want 0", len(fs.calls))
	}
}

func TestWaitForSlot_JitterAddsOnTopOfRemainder(t *testing.T) {
	rl := ratelimit.New(1, 500*time.Millisecond)
	fs := &fakeSleeper{}
	rl.SetSleeper(fs)
	rl.SetRNG(rand.New(rand.NewSource(7)))

	rl.WaitForSlot()
	rl.WaitForSlot()

	if len(fs.calls) != 1 {
		t.Fatalf("got %d sleeps, want 1", len(fs.calls))
	}
	if fs.calls[0] > time.Second+500*time.Millisecond {
		t.Errorf("sleep duration = %v, want <= minInterval+jitter", fs.calls[0])
	}
}
