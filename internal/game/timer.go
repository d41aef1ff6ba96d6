package game

import (
	"time"

	"github.com/alexcjwei/llms-play-spyfall/internal"
)

// Timer is the per-session countdown. It anchors on the wall clock
// (start instant plus accumulated pause time) instead of counting tick
// deliveries, so scheduler jitter never drifts the remaining time by
// more than the resolution of one tick.
type Timer struct {
	duration    time.Duration
	startedAt   time.Time
	pausedAt    time.Time
	pausedTotal time.Duration
	status      internal.TimerStatus
	now         func() time.Time
}

func NewTimer(duration time.Duration, now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{duration: duration, status: internal.TimerNotStarted, now: now}
}

func (t *Timer) Start() bool {
	if t.status != internal.TimerNotStarted {
		return false
	}
	t.startedAt = t.now()
	t.status = internal.TimerRunning
	return true
}

func (t *Timer) Pause() bool {
	if t.status != internal.TimerRunning {
		return false
	}
	t.pausedAt = t.now()
	t.status = internal.TimerPaused
	return true
}

func (t *Timer) Resume() bool {
	if t.status != internal.TimerPaused {
		return false
	}
	t.pausedTotal += t.now().Sub(t.pausedAt)
	t.pausedAt = time.Time{}
	t.status = internal.TimerRunning
	return true
}

// Reset rearms the timer with a fresh duration.
func (t *Timer) Reset(duration time.Duration) {
	*t = Timer{duration: duration, status: internal.TimerNotStarted, now: t.now}
}

func (t *Timer) Elapsed() time.Duration {
	switch t.status {
	case internal.TimerNotStarted:
		return 0
	case internal.TimerPaused:
		return t.pausedAt.Sub(t.startedAt) - t.pausedTotal
	default:
		return t.now().Sub(t.startedAt) - t.pausedTotal
	}
}

func (t *Timer) Remaining() time.Duration {
	remaining := t.duration - t.Elapsed()
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Tick re-evaluates the countdown against the clock. Returns true on
// the single transition into the expired state.
func (t *Timer) Tick() bool {
	if t.status != internal.TimerRunning {
		return false
	}
	if t.Remaining() > 0 {
		return false
	}
	t.status = internal.TimerExpired
	return true
}

func (t *Timer) Status() internal.TimerStatus {
	return t.status
}

func (t *Timer) State() internal.TimerState {
	return internal.TimerState{
		DurationSeconds:  int(t.duration / time.Second),
		RemainingSeconds: int(t.Remaining().Round(time.Second) / time.Second),
		Running:          t.status == internal.TimerRunning,
		Status:           t.status,
	}
}
