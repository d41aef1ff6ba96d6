package game

import (
	"time"

	"github.com/alexcjwei/llms-play-spyfall/internal/bot"
)

// Every mutation of a session travels through its inbox as one of
// these actions: human input, bot decision results and timer ticks all
// share the same serialized stream, which is what makes the observable
// transition order total.

type envelope struct {
	action any
	reply  chan result
}

type result struct {
	value any
	err   error
}

type joinAction struct {
	name string
}

type leaveAction struct {
	playerID string
}

type connectAction struct {
	playerID  string
	connected bool
}

type startAction struct {
	playerID string
	botCount int
	duration time.Duration
}

type askAction struct {
	playerID string
	targetID string
	content  string
}

type answerAction struct {
	playerID string
	content  string
}

type accuseAction struct {
	playerID  string
	accusedID string
}

type voteAction struct {
	playerID string
	guilty   bool
}

type passAction struct {
	playerID string
}

type guessAction struct {
	playerID string
	location string
}

// tickAction is injected by the store's shared scheduler, one per
// second per session.
type tickAction struct{}

// botResultAction re-injects a gateway decision into the serialized
// stream. A result whose generation no longer matches the session's is
// discarded, which is how decisions outstanding at game end become
// no-ops. Votes additionally carry the sequence number of the
// accusation they were decided for, so a slow vote cannot land on a
// later accusation against someone else.
type botResultAction struct {
	generation    uint64
	accusationSeq uint64
	botID         string
	kind          bot.Kind
	decision      bot.Decision
}

type snapshotAction struct {
	viewerID string
}

// probeAction lets the store inspect lifecycle state without touching
// loop-owned fields from outside.
type probeAction struct{}

type probeResult struct {
	phase           string
	playerCount     int
	humansConnected bool
	finishedAt      time.Time
	createdAt       time.Time
}
