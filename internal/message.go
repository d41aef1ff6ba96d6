package internal

// Wire envelope shared by both directions. Data is decoded into the
// variant matching Type, so an invalid field combination cannot be
// represented once parsing succeeds.
type Message[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

// Client -> server message types.
const (
	ClientJoinSession   = "join_session"
	ClientStartSession  = "start_session"
	ClientAskQuestion   = "ask_question"
	ClientGiveAnswer    = "give_answer"
	ClientAccusePlayer  = "accuse_player"
	ClientCastVote      = "cast_vote"
	ClientPassSlot      = "pass"
	ClientGuessLocation = "guess_location"
)

type JoinSessionData struct {
	PlayerName string `json:"player_name"`
}

type StartSessionData struct {
	BotCount        int `json:"bot_count"`
	DurationSeconds int `json:"duration_seconds"`
}

type AskQuestionData struct {
	TargetID string `json:"target_id"`
	Content  string `json:"content"`
}

type GiveAnswerData struct {
	Content string `json:"content"`
}

type AccusePlayerData struct {
	AccusedID string `json:"accused_id"`
}

type CastVoteData struct {
	Guilty bool `json:"guilty"`
}

type GuessLocationData struct {
	Location string `json:"location"`
}

// Server -> client message types.
const (
	ServerJoined             = "joined"
	ServerError              = "error"
	ServerState              = "state"
	ServerPlayerJoined       = "player_joined"
	ServerPlayerLeft         = "player_left"
	ServerAccusationOpened   = "accusation_opened"
	ServerVoteCast           = "vote_cast"
	ServerAccusationResolved = "accusation_resolved"
	ServerSpyGuess           = "spy_guess"
	ServerSessionFinished    = "session_finished"
	ServerTimerUpdate        = "timer_update"
)

type JoinedData struct {
	SessionID string `json:"session_id"`
	PlayerID  string `json:"player_id"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type PlayerJoinedData struct {
	Player      PublicPlayer `json:"player"`
	PlayerCount int          `json:"player_count"`
}

type PlayerLeftData struct {
	PlayerID    string `json:"player_id"`
	Name        string `json:"name"`
	PlayerCount int    `json:"player_count"`
}

type AccusationOpenedData struct {
	AccuserID       string `json:"accuser_id"`
	AccusedID       string `json:"accused_id"`
	DeadlineSeconds int    `json:"deadline_seconds"`
}

// VoteCastData carries the running tally only. Individual votes stay
// hidden until resolution.
type VoteCastData struct {
	VoterID        string `json:"voter_id"`
	VotesCast      int    `json:"votes_cast"`
	EligibleVoters int    `json:"eligible_voters"`
}

type AccusationResolvedData struct {
	AccuserID    string          `json:"accuser_id"`
	AccusedID    string          `json:"accused_id"`
	Votes        map[string]bool `json:"votes"`
	Passed       bool            `json:"passed"`
	AccusedIsSpy bool            `json:"accused_is_spy,omitempty"`
	AccusedRole  string          `json:"accused_role,omitempty"`
}

type SpyGuessData struct {
	SpyID   string `json:"spy_id"`
	Guess   string `json:"guess"`
	Correct bool   `json:"correct"`
}

// SessionFinishedData is the full reveal sent exactly once.
type SessionFinishedData struct {
	Winner    Winner            `json:"winner"`
	EndReason EndReason         `json:"end_reason"`
	SpyID     string            `json:"spy_id"`
	Location  string            `json:"location"`
	Roles     map[string]string `json:"roles"`
	Points    map[string]int    `json:"points"`
}
