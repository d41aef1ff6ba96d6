package bot

import (
	"fmt"
	"strings"

	"github.com/alexcjwei/llms-play-spyfall/internal"
)

const gameBrief = `You are playing Spyfall. Everyone except the spy knows the secret
location and has a role there. The spy must deduce the location; everyone
else must unmask the spy through questions and answers. Stay in character,
keep replies short (one or two sentences) and never state the location
outright.`

// buildPrompt assembles the per-kind prompt from the viewer-scoped
// session projection. The view already hides whatever the bot must not
// know, so nothing here needs to re-filter.
func buildPrompt(kind Kind, view internal.SessionView, botID string) string {
	var b strings.Builder
	b.WriteString(gameBrief)
	b.WriteString("\n\nYour situation:\n")
	if view.IsSpy {
		b.WriteString("- You are the SPY. You do not know the location.\n")
		fmt.Fprintf(&b, "- Possible locations: %s\n", strings.Join(view.AvailableLocations, ", "))
	} else {
		fmt.Fprintf(&b, "- Location: %s\n- Your role: %s\n", view.Location, view.Role)
	}
	if view.Personality != "" {
		fmt.Fprintf(&b, "- Personality: answer in a %s manner.\n", view.Personality)
	}

	b.WriteString("\nPlayers:\n")
	for _, p := range view.Players {
		if p.ID == botID {
			continue
		}
		fmt.Fprintf(&b, "- %s (id: %s)\n", p.Name, p.ID)
	}

	if history := formatHistory(view); history != "" {
		b.WriteString("\nConversation so far:\n")
		b.WriteString(history)
	}

	b.WriteString("\n")
	b.WriteString(kindInstruction(kind, view, botID))
	b.WriteString("\nRespond with a single JSON object and nothing else.")
	return b.String()
}

func kindInstruction(kind Kind, view internal.SessionView, botID string) string {
	switch kind {
	case KindQuestion:
		banned := ""
		if view.LastQuestionedBy != "" {
			banned = fmt.Sprintf(" You may not question %s, who just questioned you.",
				TargetName(view, view.LastQuestionedBy))
		}
		if view.IsSpy {
			return fmt.Sprintf(`It is your turn to ask a question.%s Pick a target and a question
that won't expose you. If you are confident of the location, you may
instead guess it and end the game.
JSON format: {"target_id": "...", "content": "..."} or {"guess": "<location name>"}`, banned)
		}
		return fmt.Sprintf(`It is your turn to ask a question.%s Probe for the spy without
giving the location away.
JSON format: {"target_id": "...", "content": "..."}`, banned)
	case KindAnswer:
		last := lastQuestionFor(view, botID)
		return fmt.Sprintf(`You were asked: %q. Answer it in character.
JSON format: {"content": "..."}`, last)
	case KindVote:
		acc := view.Accusation
		return fmt.Sprintf(`%s accused %s of being the spy. Vote on it.
JSON format: {"guilty": true} or {"guilty": false}`,
			TargetName(view, acc.AccuserID), TargetName(view, acc.AccusedID))
	case KindSlot:
		return `Time is up. This is your one chance to accuse somebody of being the
spy, or pass. Accuse only if the conversation gave you a real suspect.
JSON format: {"accuse": true, "accused_id": "..."} or {"accuse": false}`
	}
	return ""
}

func formatHistory(view internal.SessionView) string {
	var b strings.Builder
	for _, ex := range view.Exchanges {
		from := TargetName(view, ex.From)
		if ex.Kind == internal.ExchangeQuestion {
			fmt.Fprintf(&b, "- %s asked %s: %q\n", from, TargetName(view, ex.To), ex.Content)
		} else {
			fmt.Fprintf(&b, "- %s answered: %q\n", from, ex.Content)
		}
	}
	return b.String()
}

func lastQuestionFor(view internal.SessionView, botID string) string {
	for i := len(view.Exchanges) - 1; i >= 0; i-- {
		ex := view.Exchanges[i]
		if ex.Kind == internal.ExchangeQuestion && ex.To == botID {
			return ex.Content
		}
	}
	return ""
}
