package game

import (
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/alexcjwei/llms-play-spyfall/internal"
)

// Turn rules: the current turn holder asks exactly one question, then
// the turn freezes on the asker until the target answers. Answering
// hands the turn to the answerer. A player may never immediately
// question the player who just questioned them.

func (s *Session) applyAsk(a askAction) error {
	if s.phase != internal.PhasePlaying {
		return internal.NewValidationError(internal.CodeWrongPhase, "cannot ask in phase %s", s.phase)
	}
	if a.playerID != s.currentTurn {
		return internal.NewValidationError(internal.CodeWrongTurn, "it is not %s's turn", a.playerID)
	}
	if s.pendingAnswerFrom != "" {
		return internal.NewValidationError(internal.CodeWrongTurn, "waiting for %s to answer", s.pendingAnswerFrom)
	}
	if a.targetID == a.playerID {
		return internal.NewValidationError(internal.CodeBadTarget, "cannot question yourself")
	}
	target := s.playerByID(a.targetID)
	if target == nil {
		return internal.NewValidationError(internal.CodeBadTarget, "player %s not in session", a.targetID)
	}
	if a.targetID == s.lastQuestionedBy {
		return internal.NewValidationError(internal.CodeBadTarget, "cannot question the player who just questioned you")
	}
	content, err := normalizeContent(a.content)
	if err != nil {
		return err
	}

	s.exchanges = append(s.exchanges, internal.QAExchange{
		ID:        uuid.NewString(),
		Kind:      internal.ExchangeQuestion,
		From:      a.playerID,
		To:        a.targetID,
		Content:   content,
		Timestamp: s.cfg.Now(),
	})
	s.lastQuestionedBy = a.playerID
	s.pendingAnswerFrom = a.targetID
	log.Printf("[Ask] session=%s from=%s to=%s", s.ID, a.playerID, a.targetID)
	return nil
}

func (s *Session) applyAnswer(a answerAction) error {
	if s.phase != internal.PhasePlaying {
		return internal.NewValidationError(internal.CodeWrongPhase, "cannot answer in phase %s", s.phase)
	}
	if s.pendingAnswerFrom == "" {
		return internal.NewValidationError(internal.CodeWrongTurn, "no question is pending")
	}
	if a.playerID != s.pendingAnswerFrom {
		return internal.NewValidationError(internal.CodeWrongTurn, "the pending question is for %s", s.pendingAnswerFrom)
	}
	content, err := normalizeContent(a.content)
	if err != nil {
		return err
	}

	question := s.exchanges[len(s.exchanges)-1]
	s.exchanges = append(s.exchanges, internal.QAExchange{
		ID:        uuid.NewString(),
		Kind:      internal.ExchangeAnswer,
		From:      a.playerID,
		To:        question.From,
		Content:   content,
		Timestamp: s.cfg.Now(),
	})
	// Answering takes the turn; the reciprocity ban still remembers who
	// asked, so the answerer must pick someone else.
	s.currentTurn = a.playerID
	s.pendingAnswerFrom = ""
	log.Printf("[Answer] session=%s from=%s turn=%s", s.ID, a.playerID, s.currentTurn)
	return nil
}

func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", internal.NewValidationError(internal.CodeEmptyContent, "content must not be empty")
	}
	if len([]rune(content)) > internal.MaxExchangeContentLen {
		return "", internal.NewValidationError(internal.CodeContentTooLong,
			"content exceeds %d characters", internal.MaxExchangeContentLen)
	}
	return content, nil
}
