package game

import (
	"testing"
	"time"

	"github.com/alexcjwei/llms-play-spyfall/internal"
)

type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) now() time.Time {
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestTimerCountsDownFromWallClock(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(8*time.Minute, clock.now)

	if got := timer.Status(); got != internal.TimerNotStarted {
		t.Fatalf("status before start = %s", got)
	}
	if !timer.Start() {
		t.Fatal("Start returned false")
	}
	if timer.Start() {
		t.Fatal("second Start should be a no-op")
	}

	clock.advance(3 * time.Minute)
	if got := timer.Remaining(); got != 5*time.Minute {
		t.Fatalf("Remaining = %s, want 5m", got)
	}
	if got := timer.Elapsed(); got != 3*time.Minute {
		t.Fatalf("Elapsed = %s, want 3m", got)
	}
}

func TestTimerPauseFreezesRemaining(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(8*time.Minute, clock.now)
	timer.Start()

	clock.advance(2 * time.Minute)
	if !timer.Pause() {
		t.Fatal("Pause returned false")
	}
	clock.advance(10 * time.Minute)
	if got := timer.Remaining(); got != 6*time.Minute {
		t.Fatalf("Remaining while paused = %s, want 6m", got)
	}

	if !timer.Resume() {
		t.Fatal("Resume returned false")
	}
	clock.advance(1 * time.Minute)
	if got := timer.Remaining(); got != 5*time.Minute {
		t.Fatalf("Remaining after resume = %s, want 5m", got)
	}
}

func TestTimerTickExpiresExactlyOnce(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(time.Minute, clock.now)
	timer.Start()

	for i := 0; i < 59; i++ {
		clock.advance(time.Second)
		if timer.Tick() {
			t.Fatalf("expired after %d seconds", i+1)
		}
	}
	clock.advance(time.Second)
	if !timer.Tick() {
		t.Fatal("did not expire at the deadline")
	}
	clock.advance(time.Second)
	if timer.Tick() {
		t.Fatal("expired twice")
	}
	if got := timer.Status(); got != internal.TimerExpired {
		t.Fatalf("status after expiry = %s", got)
	}
	if got := timer.Remaining(); got != 0 {
		t.Fatalf("Remaining after expiry = %s, want 0", got)
	}
}

func TestTimerStateSnapshot(t *testing.T) {
	clock := newFakeClock()
	timer := NewTimer(6*time.Minute, clock.now)
	timer.Start()
	clock.advance(90 * time.Second)

	state := timer.State()
	if state.DurationSeconds != 360 {
		t.Errorf("DurationSeconds = %d, want 360", state.DurationSeconds)
	}
	if state.RemainingSeconds != 270 {
		t.Errorf("RemainingSeconds = %d, want 270", state.RemainingSeconds)
	}
	if !state.Running {
		t.Error("Running = false, want true")
	}
}
