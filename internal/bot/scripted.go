package bot

import (
	"context"
	"fmt"

	"github.com/alexcjwei/llms-play-spyfall/internal"
)

// ScriptedGateway is a fully offline provider with deterministic
// decisions. It is the default when no API key is configured and the
// workhorse of the engine tests: it asks rotating canned questions,
// answers blandly, votes not guilty and never accuses or guesses.
type ScriptedGateway struct{}

func NewScriptedGateway() *ScriptedGateway {
	return &ScriptedGateway{}
}

var scriptedQuestions = []string{
	"How long did it take you to get here today?",
	"Would you bring your family to a place like this?",
	"Is this somewhere you come often?",
	"What would you change about this place?",
	"Do you feel safe here?",
}

var scriptedAnswers = []string{
	"About what you'd expect, I suppose.",
	"I try not to think about it too much.",
	"Often enough to know my way around.",
	"Probably the people, if I'm honest.",
	"As safe as anywhere else.",
}

func (g *ScriptedGateway) Decide(ctx context.Context, kind Kind, view internal.SessionView, botID string) (Decision, error) {
	if err := ctx.Err(); err != nil {
		return Decision{}, err
	}

	// Index off the history length so repeated calls cycle through the
	// canned lines without any per-bot state.
	n := len(view.Exchanges)

	switch kind {
	case KindQuestion:
		target := fallbackTarget(view, botID)
		if target == "" {
			return Decision{}, fmt.Errorf("scripted: no legal question target for %s", botID)
		}
		return Decision{
			TargetID: target,
			Content:  scriptedQuestions[n%len(scriptedQuestions)],
		}, nil
	case KindAnswer:
		return Decision{Content: scriptedAnswers[n%len(scriptedAnswers)]}, nil
	case KindVote:
		return Decision{Guilty: false}, nil
	case KindSlot:
		return Decision{Accuse: false}, nil
	}
	return Decision{}, fmt.Errorf("scripted: unknown decision kind %q", kind)
}
