package bot

import (
	"context"
	"strings"
	"testing"

	"github.com/alexcjwei/llms-play-spyfall/internal"
)

func testView() internal.SessionView {
	return internal.SessionView{
		SessionID: "TEST01",
		Phase:     internal.PhasePlaying,
		Players: []internal.PublicPlayer{
			{ID: "p1", Name: "Ana"},
			{ID: "p2", Name: "Ben"},
			{ID: "p3", Name: "Cleo"},
		},
		Location: "Casino",
		Role:     "Dealer",
	}
}

func TestFallbackQuestionPicksFirstLegalTarget(t *testing.T) {
	view := testView()
	dec := Fallback(KindQuestion, view, "p2")
	if dec.TargetID != "p1" {
		t.Errorf("target = %s, want p1", dec.TargetID)
	}
	if dec.Content == "" {
		t.Error("fallback question has no content")
	}

	// The player who just questioned the bot is off limits.
	view.LastQuestionedBy = "p1"
	dec = Fallback(KindQuestion, view, "p2")
	if dec.TargetID != "p3" {
		t.Errorf("target = %s, want p3 with p1 banned", dec.TargetID)
	}
}

func TestFallbackNeverEscalates(t *testing.T) {
	view := testView()
	if dec := Fallback(KindVote, view, "p2"); dec.Guilty {
		t.Error("fallback vote is guilty")
	}
	if dec := Fallback(KindSlot, view, "p2"); dec.Accuse {
		t.Error("fallback slot accuses")
	}
	if dec := Fallback(KindAnswer, view, "p2"); dec.Content == "" {
		t.Error("fallback answer has no content")
	}
}

func TestScriptedGatewayIsDeterministic(t *testing.T) {
	g := NewScriptedGateway()
	view := testView()

	a, err := g.Decide(context.Background(), KindQuestion, view, "p1")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	b, err := g.Decide(context.Background(), KindQuestion, view, "p1")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if a != b {
		t.Errorf("same view produced different decisions: %+v vs %+v", a, b)
	}

	view.Exchanges = append(view.Exchanges, internal.QAExchange{Kind: internal.ExchangeQuestion, From: "p1", To: "p2"})
	c, err := g.Decide(context.Background(), KindQuestion, view, "p1")
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if c.Content == a.Content {
		t.Error("question did not rotate with the history")
	}

	if dec, _ := g.Decide(context.Background(), KindSlot, view, "p1"); dec.Accuse {
		t.Error("scripted bot accused")
	}
}

func TestBuildPromptScopesKnowledge(t *testing.T) {
	view := testView()
	view.Personality = "deadpan"

	prompt := buildPrompt(KindQuestion, view, "p1")
	if !strings.Contains(prompt, "Casino") || !strings.Contains(prompt, "Dealer") {
		t.Error("non-spy prompt missing location or role")
	}
	if !strings.Contains(prompt, "deadpan") {
		t.Error("prompt ignores the personality")
	}
	if strings.Contains(prompt, "Ana (id: p1)") {
		t.Error("prompt lists the bot as its own target")
	}

	spyView := view
	spyView.IsSpy = true
	spyView.Location = ""
	spyView.Role = ""
	spyView.AvailableLocations = []string{"Casino", "Beach"}
	spyPrompt := buildPrompt(KindQuestion, spyView, "p1")
	if !strings.Contains(spyPrompt, "SPY") {
		t.Error("spy prompt does not mark the bot as the spy")
	}
	if !strings.Contains(spyPrompt, "Casino, Beach") {
		t.Error("spy prompt missing the candidate locations")
	}
	if !strings.Contains(spyPrompt, "guess") {
		t.Error("spy prompt does not offer the guess option")
	}
}

func TestBuildPromptQuotesPendingQuestion(t *testing.T) {
	view := testView()
	view.Exchanges = []internal.QAExchange{
		{Kind: internal.ExchangeQuestion, From: "p1", To: "p2", Content: "Is it loud in here?"},
	}
	prompt := buildPrompt(KindAnswer, view, "p2")
	if !strings.Contains(prompt, "Is it loud in here?") {
		t.Error("answer prompt does not quote the pending question")
	}
}

func TestSelectGateway(t *testing.T) {
	tests := []struct {
		name         string
		provider     string
		apiKey       string
		wantScripted bool
	}{
		{"scripted requested", "scripted", "sk-test", true},
		{"llm without key falls back", "llm", "", true},
		{"llm with key", "llm", "sk-test", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := SelectGateway(tt.provider, tt.apiKey, "claude-3-5-haiku-20241022")
			if err != nil {
				t.Fatalf("SelectGateway: %v", err)
			}
			_, scripted := g.(*ScriptedGateway)
			if scripted != tt.wantScripted {
				t.Errorf("scripted = %v, want %v", scripted, tt.wantScripted)
			}
		})
	}
}
