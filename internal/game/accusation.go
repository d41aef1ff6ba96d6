package game

import (
	"log"

	"github.com/alexcjwei/llms-play-spyfall/internal"
)

// Accusation flow. Opening an accusation during play pauses the clock
// and moves the session to VOTING; after the clock has expired the
// accusation runs inside END_OF_ROUND_VOTING instead. Each player gets
// one accusation per playing phase, and one fresh slot in the
// end-of-round rotation.

func (s *Session) applyAccuse(a accuseAction) error {
	if s.phase != internal.PhasePlaying && s.phase != internal.PhaseEndRoundVoting {
		return internal.NewValidationError(internal.CodeWrongPhase, "cannot accuse in phase %s", s.phase)
	}
	if s.accusation != nil {
		return internal.NewValidationError(internal.CodeWrongPhase, "an accusation is already open")
	}
	accuser := s.playerByID(a.playerID)
	if accuser == nil {
		return internal.NewValidationError(internal.CodeUnknownPlayer, "player %s not in session", a.playerID)
	}
	if a.accusedID == a.playerID {
		return internal.NewValidationError(internal.CodeBadTarget, "cannot accuse yourself")
	}
	accused := s.playerByID(a.accusedID)
	if accused == nil {
		return internal.NewValidationError(internal.CodeBadTarget, "player %s not in session", a.accusedID)
	}
	if !accuser.IsBot && !accuser.Connected {
		return internal.NewValidationError(internal.CodePlayerDisconnected, "accuser %s is disconnected", a.playerID)
	}
	if !accused.IsBot && !accused.Connected {
		return internal.NewValidationError(internal.CodePlayerDisconnected, "accused %s is disconnected", a.accusedID)
	}
	if accuser.HasAccusedThisRound {
		return internal.NewValidationError(internal.CodeQuotaUsed, "player %s has already accused this round", a.playerID)
	}
	if s.phase == internal.PhaseEndRoundVoting && a.playerID != s.currentTurn {
		return internal.NewValidationError(internal.CodeWrongTurn, "it is %s's slot to accuse or pass", s.currentTurn)
	}

	deadline := internal.VoteDeadline
	if s.phase == internal.PhaseEndRoundVoting {
		deadline = internal.EndRoundVoteDeadline
	}
	s.votePausedPhase = s.phase
	if s.phase == internal.PhasePlaying {
		s.timer.Pause()
		s.phase = internal.PhaseVoting
	}
	accuser.HasAccusedThisRound = true
	s.accusationSeq++
	// The accuser votes through castVote like everyone else. An
	// accusation nobody votes on fails at the deadline.
	s.accusation = &internal.AccusationState{
		AccuserID: a.playerID,
		AccusedID: a.accusedID,
		Votes:     make(map[string]bool),
		Deadline:  s.cfg.Now().Add(deadline),
	}

	log.Printf("[Accuse] session=%s accuser=%s accused=%s phase=%s", s.ID, a.playerID, a.accusedID, s.phase)
	s.emit(internal.ServerAccusationOpened, internal.AccusationOpenedData{
		AccuserID:       a.playerID,
		AccusedID:       a.accusedID,
		DeadlineSeconds: int(deadline.Seconds()),
	})
	return nil
}

func (s *Session) applyVote(a voteAction) error {
	if s.accusation == nil {
		return internal.NewValidationError(internal.CodeNoAccusation, "no accusation is open")
	}
	voter := s.playerByID(a.playerID)
	if voter == nil {
		return internal.NewValidationError(internal.CodeUnknownPlayer, "player %s not in session", a.playerID)
	}
	if a.playerID == s.accusation.AccusedID {
		return internal.NewValidationError(internal.CodeBadTarget, "the accused does not vote")
	}
	if _, voted := s.accusation.Votes[a.playerID]; voted {
		return internal.NewValidationError(internal.CodeDuplicateVote, "player %s already voted", a.playerID)
	}
	s.accusation.Votes[a.playerID] = a.guilty

	log.Printf("[Vote] session=%s voter=%s votes=%d/%d",
		s.ID, a.playerID, len(s.accusation.Votes), len(s.eligibleVoters()))
	s.emitVoteTally(a.playerID)
	s.resolveIfComplete()
	return nil
}

func (s *Session) emitVoteTally(voterID string) {
	s.emit(internal.ServerVoteCast, internal.VoteCastData{
		VoterID:        voterID,
		VotesCast:      len(s.accusation.Votes),
		EligibleVoters: len(s.eligibleVoters()),
	})
}

func (s *Session) resolveIfComplete() {
	if s.accusation == nil {
		return
	}
	if len(s.accusation.Votes) >= len(s.eligibleVoters()) {
		s.resolveAccusation()
	}
}

// resolveAccusation closes the open vote, at the deadline or once every
// eligible voter has voted. The accusation passes on a strict majority
// of votes actually cast; ties fail.
func (s *Session) resolveAccusation() {
	acc := s.accusation
	if acc == nil {
		return
	}
	guilty := 0
	for _, g := range acc.Votes {
		if g {
			guilty++
		}
	}
	passed := 2*guilty > len(acc.Votes)
	accused := s.playerByID(acc.AccusedID)
	accusedIsSpy := acc.AccusedID == s.spyID

	log.Printf("[Resolve] session=%s accused=%s guilty=%d cast=%d passed=%v spy=%v",
		s.ID, acc.AccusedID, guilty, len(acc.Votes), passed, accusedIsSpy)

	resolved := internal.AccusationResolvedData{
		AccuserID: acc.AccuserID,
		AccusedID: acc.AccusedID,
		Votes:     acc.Votes,
		Passed:    passed,
	}
	if passed {
		resolved.AccusedIsSpy = accusedIsSpy
		if accused != nil {
			resolved.AccusedRole = accused.Role
		}
	}
	s.emit(internal.ServerAccusationResolved, resolved)

	s.accusation = nil
	if passed {
		if accusedIsSpy {
			s.winningAccuserID = acc.AccuserID
			s.endGame(internal.EndReasonSpyAccused, internal.WinnerInnocents)
		} else {
			s.endGame(internal.EndReasonInnocentAccused, internal.WinnerSpy)
		}
		return
	}

	// Failed accusation: play resumes where it was interrupted.
	if s.votePausedPhase == internal.PhasePlaying {
		s.phase = internal.PhasePlaying
		s.timer.Resume()
		return
	}
	s.advanceEndRoundSlot()
}

func (s *Session) applyPass(a passAction) error {
	if s.phase != internal.PhaseEndRoundVoting {
		return internal.NewValidationError(internal.CodeWrongPhase, "cannot pass in phase %s", s.phase)
	}
	if s.accusation != nil {
		return internal.NewValidationError(internal.CodeWrongPhase, "an accusation is open")
	}
	if a.playerID != s.currentTurn {
		return internal.NewValidationError(internal.CodeWrongTurn, "it is %s's slot to accuse or pass", s.currentTurn)
	}
	log.Printf("[Pass] session=%s player=%s", s.ID, a.playerID)
	s.advanceEndRoundSlot()
	return nil
}

// enterEndRoundVoting starts the final rotation after the clock runs
// out: each player, creator first in seat order, gets one slot to
// accuse or pass. Accusation quotas reset so everyone gets a fresh
// chance.
func (s *Session) enterEndRoundVoting() {
	s.phase = internal.PhaseEndRoundVoting
	s.pendingAnswerFrom = ""
	for _, p := range s.players {
		p.HasAccusedThisRound = false
	}

	hostIdx := 0
	for i, p := range s.players {
		if p.ID == s.hostID {
			hostIdx = i
			break
		}
	}
	order := make([]string, 0, len(s.players))
	for i := range s.players {
		order = append(order, s.players[(hostIdx+i)%len(s.players)].ID)
	}
	s.endRound = &endRoundState{
		order:        order,
		idx:          0,
		slotDeadline: s.cfg.Now().Add(internal.EndRoundSlotDeadline),
	}
	s.currentTurn = order[0]
	log.Printf("[EndRound] session=%s rotation=%d first=%s", s.ID, len(order), s.currentTurn)
}

// advanceEndRoundSlot hands the slot to the next player, or ends the
// game in the spy's favour when everyone has passed.
func (s *Session) advanceEndRoundSlot() {
	if s.phase != internal.PhaseEndRoundVoting || s.endRound == nil {
		return
	}
	s.endRound.idx++
	if s.endRound.idx >= len(s.endRound.order) {
		log.Printf("[EndRound] session=%s rotation exhausted, spy survives", s.ID)
		s.endGame(internal.EndReasonTimeExpired, internal.WinnerSpy)
		return
	}
	s.currentTurn = s.endRound.order[s.endRound.idx]
	s.endRound.slotDeadline = s.cfg.Now().Add(internal.EndRoundSlotDeadline)
	log.Printf("[EndRound] session=%s slot=%d player=%s", s.ID, s.endRound.idx, s.currentTurn)
}
