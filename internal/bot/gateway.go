// Package bot provides the decision-provider boundary for automated
// players. The engine only ever sees the Gateway interface; how a
// decision is produced (LLM call, script, test stub) stays behind it.
package bot

import (
	"context"

	"github.com/alexcjwei/llms-play-spyfall/internal"
)

// Kind names the decision being requested.
type Kind string

const (
	// KindQuestion asks which player to question and with what. A spy
	// bot may instead return a location guess.
	KindQuestion Kind = "question"
	// KindAnswer asks for an answer to the pending question.
	KindAnswer Kind = "answer"
	// KindVote asks for a guilty/not-guilty vote on the open accusation.
	KindVote Kind = "vote"
	// KindSlot asks an end-of-round slot holder to accuse or pass.
	KindSlot Kind = "slot"
)

// Decision is the structured result of one gateway call. Only the
// fields relevant to the requested Kind are consulted.
type Decision struct {
	// Question: target and content. A non-empty Guess from the spy
	// short-circuits into a location guess instead.
	TargetID string
	Content  string
	Guess    string

	// Vote.
	Guilty bool

	// Slot: accuse AccusedID, or pass when Accuse is false.
	Accuse    bool
	AccusedID string
}

// Gateway is the contract the engine calls whenever a bot must act.
// Implementations must resolve or fail within the context deadline;
// the engine substitutes a deterministic fallback on any error.
type Gateway interface {
	Decide(ctx context.Context, kind Kind, view internal.SessionView, botID string) (Decision, error)
}

// SelectGateway picks the provider for the configured mode: scripted
// when requested explicitly or when no API key is available, the LLM
// gateway otherwise.
func SelectGateway(provider, apiKey, model string) (Gateway, error) {
	if provider == "scripted" || apiKey == "" {
		return NewScriptedGateway(), nil
	}
	return NewLLMGateway(LLMConfig{APIKey: apiKey, Model: model})
}

// Fallback is the trivial deterministic action used when the provider
// times out or fails: question the first legal target with a canned
// line, answer non-committally, vote not guilty, pass the slot.
func Fallback(kind Kind, view internal.SessionView, botID string) Decision {
	switch kind {
	case KindQuestion:
		return Decision{
			TargetID: fallbackTarget(view, botID),
			Content:  "What do you think of this place so far?",
		}
	case KindAnswer:
		return Decision{Content: "Hard to say, honestly. Nothing out of the ordinary."}
	case KindVote:
		return Decision{Guilty: false}
	case KindSlot:
		return Decision{Accuse: false}
	}
	return Decision{}
}

// fallbackTarget picks the first player that is a legal question
// target: not the bot itself and not whoever just asked it.
func fallbackTarget(view internal.SessionView, botID string) string {
	for _, p := range view.Players {
		if p.ID == botID || p.ID == view.LastQuestionedBy {
			continue
		}
		return p.ID
	}
	return ""
}

// TargetName resolves a player name for prompt building. Falls back to
// the raw id so a malformed view never breaks a prompt.
func TargetName(view internal.SessionView, id string) string {
	for _, p := range view.Players {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}
