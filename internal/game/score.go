package game

import (
	"github.com/alexcjwei/llms-play-spyfall/internal"
)

// Scoring, applied once when the session finishes. The spy scores more
// for winning actively (a correct guess, or getting an innocent
// convicted) than for merely surviving the end-of-round pass, and the
// player who pinned the spy earns a bonus on top of the shared
// innocent reward.
const (
	pointsSpyActiveWin = 4
	pointsSpySurvive   = 2
	pointsAccuserBonus = 2
	pointsInnocentWin  = 1
)

func (s *Session) awardPoints(reason internal.EndReason) {
	switch s.winner {
	case internal.WinnerSpy:
		if spy := s.playerByID(s.spyID); spy != nil {
			if reason == internal.EndReasonTimeExpired {
				spy.Points += pointsSpySurvive
			} else {
				spy.Points += pointsSpyActiveWin
			}
		}
	case internal.WinnerInnocents:
		for _, p := range s.players {
			if p.ID == s.spyID {
				continue
			}
			p.Points += pointsInnocentWin
			if p.ID == s.winningAccuserID {
				p.Points += pointsAccuserBonus
			}
		}
	}
}
