package internal

// AccusationView hides individual votes while the accusation is open.
// Voted lists who has voted, not what they voted.
type AccusationView struct {
	AccuserID       string   `json:"accuser_id"`
	AccusedID       string   `json:"accused_id"`
	Voted           []string `json:"voted"`
	EligibleVoters  int      `json:"eligible_voters"`
	DeadlineSeconds int      `json:"deadline_seconds"`
}

// SessionView is the projection of a session scoped to one player: it
// carries that player's own role and the public history, but never the
// spy's identity or the location unless the viewer is entitled to them.
// It is both the broadcast state snapshot and the read-only view handed
// to bot decision providers.
type SessionView struct {
	SessionID          string          `json:"session_id"`
	Phase              Phase           `json:"phase"`
	Players            []PublicPlayer  `json:"players"`
	CurrentTurnID      string          `json:"current_turn_id,omitempty"`
	LastQuestionedBy   string          `json:"last_questioned_by,omitempty"`
	PendingQuestionTo  string          `json:"pending_question_to,omitempty"`
	Exchanges          []QAExchange    `json:"exchanges"`
	Accusation         *AccusationView `json:"accusation,omitempty"`
	Timer              TimerState      `json:"timer"`
	AvailableLocations []string        `json:"available_locations"`

	// Viewer-scoped fields.
	ViewerID    string `json:"viewer_id,omitempty"`
	IsSpy       bool   `json:"is_spy,omitempty"`
	Role        string `json:"role,omitempty"`
	Location    string `json:"location,omitempty"`
	Personality string `json:"personality,omitempty"`

	// Populated only once FINISHED.
	Winner    Winner    `json:"winner,omitempty"`
	EndReason EndReason `json:"end_reason,omitempty"`
	SpyID     string    `json:"spy_id,omitempty"`
}
