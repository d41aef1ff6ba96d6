package game

import (
	"context"
	"log"
	"time"

	"github.com/alexcjwei/llms-play-spyfall/internal"
	"github.com/alexcjwei/llms-play-spyfall/internal/bot"
)

// Bot orchestration. The gateway is slow (an LLM call), so it runs in
// its own goroutine with a snapshot taken inside the loop; the result
// comes back through the inbox as a botResultAction tagged with the
// generation it was produced for. A result from a previous generation,
// or one the current phase no longer wants, is silently discarded.

// scheduleBotActions runs after every committed mutation and launches a
// gateway call for each bot the current state is waiting on. The
// inflight set stops the same decision from being requested twice.
func (s *Session) scheduleBotActions() {
	if s.cfg.Gateway == nil {
		return
	}
	switch {
	case s.accusation != nil:
		for _, p := range s.eligibleVoters() {
			if !p.IsBot {
				continue
			}
			if _, voted := s.accusation.Votes[p.ID]; voted {
				continue
			}
			s.launchBot(p.ID, bot.KindVote)
		}
	case s.phase == internal.PhasePlaying:
		if responder := s.playerByID(s.pendingAnswerFrom); responder != nil && responder.IsBot {
			s.launchBot(responder.ID, bot.KindAnswer)
		} else if holder := s.playerByID(s.currentTurn); s.pendingAnswerFrom == "" && holder != nil && holder.IsBot {
			s.launchBot(holder.ID, bot.KindQuestion)
		}
	case s.phase == internal.PhaseEndRoundVoting:
		if holder := s.playerByID(s.currentTurn); holder != nil && holder.IsBot {
			s.launchBot(holder.ID, bot.KindSlot)
		}
	}
}

func (s *Session) launchBot(botID string, kind bot.Kind) {
	key := botID + "/" + string(kind)
	if s.inflight[key] {
		return
	}
	s.inflight[key] = true

	generation := s.generation
	accusationSeq := s.accusationSeq
	view := s.viewFor(botID)
	delay := s.cfg.BotMinDelay
	if spread := s.cfg.BotMaxDelay - s.cfg.BotMinDelay; spread > 0 {
		delay += time.Duration(s.cfg.Rand.Int63n(int64(spread)))
	}

	go func() {
		if delay > 0 {
			time.Sleep(delay)
		}
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.BotTimeout)
		defer cancel()

		decision, err := s.cfg.Gateway.Decide(ctx, kind, view, botID)
		if err != nil {
			log.Printf("[Bot] session=%s bot=%s kind=%s gateway error: %v, using fallback", s.ID, botID, kind, err)
			decision = bot.Fallback(kind, view, botID)
		}
		s.post(botResultAction{generation: generation, accusationSeq: accusationSeq, botID: botID, kind: kind, decision: decision})
	}()
}

// tickDisconnectedActor watches for a disconnected human who holds the
// turn or owes the pending answer during play. After a grace period
// the session acts for them with the canned fallback decision, the
// same way a bot whose gateway call failed is handled. Bots never
// reach this path.
func (s *Session) tickDisconnectedActor() bool {
	if s.phase != internal.PhasePlaying {
		s.idleActorID = ""
		return false
	}
	actorID := s.currentTurn
	kind := bot.KindQuestion
	if s.pendingAnswerFrom != "" {
		actorID = s.pendingAnswerFrom
		kind = bot.KindAnswer
	}
	actor := s.playerByID(actorID)
	if actor == nil || actor.IsBot || actor.Connected {
		s.idleActorID = ""
		return false
	}

	now := s.cfg.Now()
	if s.idleActorID != actorID {
		s.idleActorID = actorID
		s.idleDeadline = now.Add(internal.DisconnectedTurnGrace)
		return false
	}
	if now.Before(s.idleDeadline) {
		return false
	}

	s.idleActorID = ""
	fallback := bot.Fallback(kind, s.viewFor(actorID), actorID)
	var err error
	switch kind {
	case bot.KindQuestion:
		err = s.applyAsk(askAction{playerID: actorID, targetID: fallback.TargetID, content: fallback.Content})
	case bot.KindAnswer:
		err = s.applyAnswer(answerAction{playerID: actorID, content: fallback.Content})
	}
	if err != nil {
		log.Printf("[Tick] session=%s fallback for disconnected player %s rejected: %v", s.ID, actorID, err)
		return false
	}
	log.Printf("[Tick] session=%s disconnected player %s acted via fallback (%s)", s.ID, actorID, kind)
	return true
}

func (s *Session) applyBotResult(a botResultAction) bool {
	delete(s.inflight, a.botID+"/"+string(a.kind))
	if a.generation != s.generation {
		log.Printf("[Bot] session=%s bot=%s kind=%s stale result discarded", s.ID, a.botID, a.kind)
		return false
	}
	if s.phase == internal.PhaseFinished {
		return false
	}

	switch a.kind {
	case bot.KindQuestion:
		return s.applyBotQuestion(a.botID, a.decision)
	case bot.KindAnswer:
		if err := s.applyAnswer(answerAction{playerID: a.botID, content: a.decision.Content}); err != nil {
			return s.retryWithFallback(a.botID, a.kind, err)
		}
		return true
	case bot.KindVote:
		if a.accusationSeq != s.accusationSeq {
			log.Printf("[Bot] session=%s bot=%s vote for a closed accusation discarded", s.ID, a.botID)
			return false
		}
		if err := s.applyVote(voteAction{playerID: a.botID, guilty: a.decision.Guilty}); err != nil {
			log.Printf("[Bot] session=%s bot=%s vote rejected: %v", s.ID, a.botID, err)
			return false
		}
		return true
	case bot.KindSlot:
		return s.applyBotSlot(a.botID, a.decision)
	}
	return false
}

func (s *Session) applyBotQuestion(botID string, decision bot.Decision) bool {
	// The spy's question turn doubles as its chance to guess.
	if decision.Guess != "" && botID == s.spyID {
		if err := s.applyGuess(guessAction{playerID: botID, location: decision.Guess}); err == nil {
			return true
		}
	}
	err := s.applyAsk(askAction{playerID: botID, targetID: decision.TargetID, content: decision.Content})
	if err != nil {
		return s.retryWithFallback(botID, bot.KindQuestion, err)
	}
	return true
}

func (s *Session) applyBotSlot(botID string, decision bot.Decision) bool {
	if decision.Accuse {
		if err := s.applyAccuse(accuseAction{playerID: botID, accusedID: decision.AccusedID}); err == nil {
			return true
		}
		log.Printf("[Bot] session=%s bot=%s invalid slot accusation, passing instead", s.ID, botID)
	}
	if err := s.applyPass(passAction{playerID: botID}); err != nil {
		log.Printf("[Bot] session=%s bot=%s pass rejected: %v", s.ID, botID, err)
		return false
	}
	return true
}

// retryWithFallback applies the canned decision when the gateway
// produced something the rules reject. Only validation errors are
// retried; anything else is a real fault and is just logged.
func (s *Session) retryWithFallback(botID string, kind bot.Kind, cause error) bool {
	if !internal.IsValidation(cause) {
		log.Printf("[Bot] session=%s bot=%s kind=%s result rejected: %v", s.ID, botID, kind, cause)
		return false
	}
	log.Printf("[Bot] session=%s bot=%s kind=%s invalid decision (%v), using fallback", s.ID, botID, kind, cause)
	fallback := bot.Fallback(kind, s.viewFor(botID), botID)
	var err error
	switch kind {
	case bot.KindQuestion:
		err = s.applyAsk(askAction{playerID: botID, targetID: fallback.TargetID, content: fallback.Content})
	case bot.KindAnswer:
		err = s.applyAnswer(answerAction{playerID: botID, content: fallback.Content})
	default:
		return false
	}
	if err != nil {
		log.Printf("[Bot] session=%s bot=%s kind=%s fallback also rejected: %v", s.ID, botID, kind, err)
		return false
	}
	return true
}
