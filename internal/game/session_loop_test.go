package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/alexcjwei/llms-play-spyfall/internal"
	"github.com/alexcjwei/llms-play-spyfall/internal/bot"
)

// End-to-end through the running loop: a human host plus scripted bots
// exchange questions until the rotation comes back to the human.
func TestSessionLoopWithScriptedBots(t *testing.T) {
	s := NewSession("LOOP01", Config{
		Gateway:     bot.NewScriptedGateway(),
		Rand:        rand.New(rand.NewSource(9)),
		BotMinDelay: 0,
		BotMaxDelay: 0,
	})
	go s.Run()
	defer s.Stop()

	host, err := s.Join("Host")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := s.Start(host, 3, 8*time.Minute); err != nil {
		t.Fatalf("Start: %v", err)
	}

	view, err := s.Snapshot(host)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	target := ""
	for _, p := range view.Players {
		if p.ID != host {
			target = p.ID
			break
		}
	}
	if err := s.AskQuestion(host, target, "Anyone else think the lighting is odd in here?"); err != nil {
		t.Fatalf("AskQuestion: %v", err)
	}

	// The bots answer and relay questions among themselves until one of
	// them questions the host.
	deadline := time.After(10 * time.Second)
	for {
		view, err = s.Snapshot(host)
		if err != nil {
			t.Fatalf("Snapshot: %v", err)
		}
		if view.PendingQuestionTo == host {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("bots never questioned the host; %d exchanges recorded", len(view.Exchanges))
		case <-time.After(20 * time.Millisecond):
		}
	}

	if len(view.Exchanges) < 3 {
		t.Fatalf("exchanges = %d, want at least 3", len(view.Exchanges))
	}
	for i, ex := range view.Exchanges {
		want := internal.ExchangeQuestion
		if i%2 == 1 {
			want = internal.ExchangeAnswer
		}
		if ex.Kind != want {
			t.Errorf("exchange %d kind = %s, want %s", i, ex.Kind, want)
		}
	}

	if err := s.GiveAnswer(host, "Now that you mention it, yes."); err != nil {
		t.Fatalf("GiveAnswer: %v", err)
	}
	view, err = s.Snapshot(host)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if view.CurrentTurnID != host {
		t.Errorf("turn = %s after answering, want host", view.CurrentTurnID)
	}
}
