package internal

import (
	"time"
)

const (
	MinPlayersPerSession = 3
	MaxPlayersPerSession = 8
	MinBots              = 2
	MaxBots              = 7

	// One question or answer may not exceed this many characters.
	MaxExchangeContentLen = 200

	// Vote windows. The end-of-round window is longer because a whole
	// accuse-or-pass slot hangs on it.
	VoteDeadline         = 30 * time.Second
	EndRoundVoteDeadline = 60 * time.Second
	EndRoundSlotDeadline = 60 * time.Second

	// A disconnected human holding the turn (or owing an answer) is
	// given this long to reconnect before the session acts for them.
	DisconnectedTurnGrace = 30 * time.Second
)

// SessionDurations are the round lengths a session may be started with.
var SessionDurations = []time.Duration{
	6 * time.Minute,
	8 * time.Minute,
	10 * time.Minute,
	12 * time.Minute,
}

type Phase string

const (
	PhaseSetup          Phase = "setup"
	PhasePlaying        Phase = "playing"
	PhaseVoting         Phase = "voting"
	PhaseEndRoundVoting Phase = "end_of_round_voting"
	PhaseFinished       Phase = "finished"
)

type Winner string

const (
	WinnerSpy       Winner = "spy"
	WinnerInnocents Winner = "innocents"
)

type EndReason string

const (
	EndReasonTimeExpired        EndReason = "time_expired"
	EndReasonSpyAccused         EndReason = "spy_accused"
	EndReasonInnocentAccused    EndReason = "innocent_accused"
	EndReasonSpyGuessedLocation EndReason = "spy_guessed_location"
	EndReasonSpyFailedGuess     EndReason = "spy_failed_guess"
	EndReasonInternalError      EndReason = "internal_error"
)

type ExchangeKind string

const (
	ExchangeQuestion ExchangeKind = "question"
	ExchangeAnswer   ExchangeKind = "answer"
)

// Location pairs a secret location with its fixed role catalog.
// Every catalog entry carries exactly seven roles.
type Location struct {
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// QAExchange is one entry of the append-only question/answer log.
// For answers, To names the player who asked.
type QAExchange struct {
	ID        string       `json:"id"`
	Kind      ExchangeKind `json:"kind"`
	From      string       `json:"from"`
	To        string       `json:"to,omitempty"`
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
}

// AccusationState tracks one open accusation-to-resolution cycle.
// Votes holds one entry per voter; a second vote from the same player
// is rejected, never overwritten.
type AccusationState struct {
	AccuserID string          `json:"accuser_id"`
	AccusedID string          `json:"accused_id"`
	Votes     map[string]bool `json:"votes"`
	Deadline  time.Time       `json:"deadline"`
}

type TimerStatus string

const (
	TimerNotStarted TimerStatus = "not_started"
	TimerRunning    TimerStatus = "running"
	TimerPaused     TimerStatus = "paused"
	TimerExpired    TimerStatus = "expired"
)

// TimerState is the read-only view of the session countdown. Only the
// timer service mutates the underlying clock.
type TimerState struct {
	DurationSeconds  int         `json:"duration_seconds"`
	RemainingSeconds int         `json:"remaining_seconds"`
	Running          bool        `json:"running"`
	Status           TimerStatus `json:"status"`
}
