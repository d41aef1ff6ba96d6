package internal

import "time"

// Player identity is stable and connection-independent. Once a session
// has started players are only ever marked disconnected, never removed,
// so turn order and role assignment stay intact.
type Player struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsBot     bool      `json:"is_bot"`
	Connected bool      `json:"is_connected"`
	JoinedAt  time.Time `json:"joined_at"`

	// Personality is a flavor tag consumed only by the decision provider.
	Personality string `json:"-"`

	// Role is the player's role at the secret location. Empty for the spy.
	Role string `json:"-"`

	// HasAccusedThisRound gates the one-accusation quota during PLAYING.
	// Reset exactly once when end-of-round voting begins.
	HasAccusedThisRound bool `json:"has_accused_this_round"`

	Points int `json:"points"`
}

// PublicPlayer is the projection of a player safe to broadcast to the
// whole session: no role, no personality.
type PublicPlayer struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	IsBot               bool   `json:"is_bot"`
	Connected           bool   `json:"is_connected"`
	HasAccusedThisRound bool   `json:"has_accused_this_round"`
	Points              int    `json:"points"`
}

func (p *Player) ToPublicPlayer() PublicPlayer {
	return PublicPlayer{
		ID:                  p.ID,
		Name:                p.Name,
		IsBot:               p.IsBot,
		Connected:           p.Connected,
		HasAccusedThisRound: p.HasAccusedThisRound,
		Points:              p.Points,
	}
}
