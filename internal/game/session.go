package game

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alexcjwei/llms-play-spyfall/internal"
	"github.com/alexcjwei/llms-play-spyfall/internal/bot"
)

// ErrSessionClosed is returned for any action submitted after the
// session loop has been stopped.
var ErrSessionClosed = errors.New("session closed")

// Observer receives every committed mutation of a session, in the
// exact serialization order. State carries one projection per player
// plus the public one; Event carries the dedicated notifications
// (joins, accusations, reveals, ...).
type Observer interface {
	SessionState(sessionID string, perPlayer map[string]internal.SessionView, public internal.SessionView)
	SessionEvent(sessionID string, msgType string, data any)
}

// Config wires a session's collaborators. Now and Rand exist so tests
// can pin the clock and the deal.
type Config struct {
	Gateway         bot.Gateway
	Observer        Observer
	Catalog         []internal.Location
	BotTimeout      time.Duration
	BotMinDelay     time.Duration
	BotMaxDelay     time.Duration
	DefaultDuration time.Duration
	Now             func() time.Time
	Rand            *rand.Rand
}

func (c *Config) fillDefaults() {
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Rand == nil {
		c.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.Catalog == nil {
		c.Catalog = Locations
	}
	if c.BotTimeout == 0 {
		c.BotTimeout = 10 * time.Second
	}
	if c.DefaultDuration == 0 {
		c.DefaultDuration = 8 * time.Minute
	}
}

// Session is the aggregate root of one game. All fields below the
// inbox are owned exclusively by the Run goroutine; the only way in is
// an action through the inbox, so exactly one mutation applies at a
// time, in arrival order.
type Session struct {
	ID       string
	inbox    chan envelope
	quit     chan struct{}
	stopOnce sync.Once
	cfg      Config

	// Loop-owned state.
	phase             internal.Phase
	players           []*internal.Player
	hostID            string
	location          *internal.Location
	spyID             string
	currentTurn       string
	lastQuestionedBy  string
	pendingAnswerFrom string
	exchanges         []internal.QAExchange
	accusation        *internal.AccusationState
	accusationSeq     uint64
	votePausedPhase   internal.Phase
	timer             *Timer
	winner            internal.Winner
	endReason         internal.EndReason
	winningAccuserID  string
	endRound          *endRoundState
	idleActorID       string
	idleDeadline      time.Time
	inflight          map[string]bool
	generation        uint64
	createdAt         time.Time
	finishedAt        time.Time
}

// endRoundState drives the final accuse-or-pass rotation after the
// clock expires: each player in order gets exactly one slot.
type endRoundState struct {
	order        []string
	idx          int
	slotDeadline time.Time
}

func NewSession(id string, cfg Config) *Session {
	cfg.fillDefaults()
	return &Session{
		ID:        id,
		inbox:     make(chan envelope, 64),
		quit:      make(chan struct{}),
		cfg:       cfg,
		phase:     internal.PhaseSetup,
		timer:     NewTimer(0, cfg.Now),
		inflight:  make(map[string]bool),
		createdAt: cfg.Now(),
	}
}

// Run drains the inbox until Stop. It is the session's single writer.
func (s *Session) Run() {
	for {
		select {
		case <-s.quit:
			return
		case env := <-s.inbox:
			value, mutated, err := s.apply(env.action)

			var iv *internal.InvariantViolation
			if errors.As(err, &iv) {
				log.Printf("[Session] session=%s fatal: %v", s.ID, iv)
				s.forceFinish()
				mutated = true
			}

			if env.reply != nil {
				env.reply <- result{value: value, err: err}
			}
			if mutated {
				s.broadcastState()
			}
			// Scheduling is idempotent through the inflight set, so it
			// runs after every action; a bot decision dropped as stale
			// gets relaunched on the next tick.
			s.scheduleBotActions()
		}
	}
}

func (s *Session) Stop() {
	s.stopOnce.Do(func() { close(s.quit) })
}

func (s *Session) submit(action any) (any, error) {
	reply := make(chan result, 1)
	select {
	case s.inbox <- envelope{action: action, reply: reply}:
	case <-s.quit:
		return nil, ErrSessionClosed
	}
	select {
	case r := <-reply:
		return r.value, r.err
	case <-s.quit:
		return nil, ErrSessionClosed
	}
}

// post submits without waiting; used for ticks and bot results, which
// have no caller to report to.
func (s *Session) post(action any) {
	select {
	case s.inbox <- envelope{action: action}:
	case <-s.quit:
	}
}

// ---------------------------------------------------------------------------
// Public action API, consumed by connection handlers.

func (s *Session) Join(name string) (string, error) {
	v, err := s.submit(joinAction{name: name})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *Session) Leave(playerID string) error {
	_, err := s.submit(leaveAction{playerID: playerID})
	return err
}

func (s *Session) SetConnected(playerID string, connected bool) error {
	_, err := s.submit(connectAction{playerID: playerID, connected: connected})
	return err
}

func (s *Session) Start(playerID string, botCount int, duration time.Duration) error {
	_, err := s.submit(startAction{playerID: playerID, botCount: botCount, duration: duration})
	return err
}

func (s *Session) AskQuestion(playerID, targetID, content string) error {
	_, err := s.submit(askAction{playerID: playerID, targetID: targetID, content: content})
	return err
}

func (s *Session) GiveAnswer(playerID, content string) error {
	_, err := s.submit(answerAction{playerID: playerID, content: content})
	return err
}

func (s *Session) AccusePlayer(playerID, accusedID string) error {
	_, err := s.submit(accuseAction{playerID: playerID, accusedID: accusedID})
	return err
}

func (s *Session) CastVote(playerID string, guilty bool) error {
	_, err := s.submit(voteAction{playerID: playerID, guilty: guilty})
	return err
}

func (s *Session) PassSlot(playerID string) error {
	_, err := s.submit(passAction{playerID: playerID})
	return err
}

func (s *Session) GuessLocation(playerID, location string) error {
	_, err := s.submit(guessAction{playerID: playerID, location: location})
	return err
}

// Tick is posted by the store's shared one-second scheduler.
func (s *Session) Tick() {
	s.post(tickAction{})
}

// Snapshot returns the session projected for one viewer ("" for the
// public view). Reads go through the loop like everything else.
func (s *Session) Snapshot(viewerID string) (internal.SessionView, error) {
	v, err := s.submit(snapshotAction{viewerID: viewerID})
	if err != nil {
		return internal.SessionView{}, err
	}
	return v.(internal.SessionView), nil
}

func (s *Session) probe() (probeResult, error) {
	v, err := s.submit(probeAction{})
	if err != nil {
		return probeResult{}, err
	}
	return v.(probeResult), nil
}

// ---------------------------------------------------------------------------
// Action dispatch.

func (s *Session) apply(action any) (value any, mutated bool, err error) {
	switch a := action.(type) {
	case joinAction:
		return s.applyJoin(a)
	case leaveAction:
		err := s.applyLeave(a)
		return nil, err == nil, err
	case connectAction:
		err := s.applyConnect(a)
		return nil, err == nil, err
	case startAction:
		err := s.applyStart(a)
		return nil, err == nil, err
	case askAction:
		err := s.applyAsk(a)
		return nil, err == nil, err
	case answerAction:
		err := s.applyAnswer(a)
		return nil, err == nil, err
	case accuseAction:
		err := s.applyAccuse(a)
		return nil, err == nil, err
	case voteAction:
		err := s.applyVote(a)
		return nil, err == nil, err
	case passAction:
		err := s.applyPass(a)
		return nil, err == nil, err
	case guessAction:
		err := s.applyGuess(a)
		return nil, err == nil, err
	case tickAction:
		return nil, s.applyTick(), nil
	case botResultAction:
		return nil, s.applyBotResult(a), nil
	case snapshotAction:
		return s.viewFor(a.viewerID), false, nil
	case probeAction:
		return s.applyProbe(), false, nil
	default:
		return nil, false, fmt.Errorf("unknown action %T", action)
	}
}

// ---------------------------------------------------------------------------
// Setup-phase handlers.

func (s *Session) applyJoin(a joinAction) (any, bool, error) {
	if s.phase != internal.PhaseSetup {
		return nil, false, internal.NewValidationError(internal.CodeWrongPhase, "session already started")
	}
	if len(s.players) >= internal.MaxPlayersPerSession {
		return nil, false, internal.NewValidationError(internal.CodeSessionFull, "session is full")
	}
	name := a.name
	if name == "" {
		name = "Anonymous"
	}
	p := &internal.Player{
		ID:        uuid.NewString(),
		Name:      name,
		Connected: true,
		JoinedAt:  s.cfg.Now(),
	}
	s.players = append(s.players, p)
	if s.hostID == "" {
		s.hostID = p.ID
	}
	log.Printf("[Join] session=%s player=%s name=%q players=%d", s.ID, p.ID, name, len(s.players))
	s.emit(internal.ServerPlayerJoined, internal.PlayerJoinedData{
		Player:      p.ToPublicPlayer(),
		PlayerCount: len(s.players),
	})
	return p.ID, true, nil
}

func (s *Session) applyLeave(a leaveAction) error {
	p := s.playerByID(a.playerID)
	if p == nil {
		return internal.NewValidationError(internal.CodeUnknownPlayer, "player %s not in session", a.playerID)
	}
	if s.phase != internal.PhaseSetup {
		// After start players are only marked disconnected.
		return s.applyConnect(connectAction{playerID: a.playerID, connected: false})
	}
	kept := s.players[:0]
	for _, q := range s.players {
		if q.ID != a.playerID {
			kept = append(kept, q)
		}
	}
	s.players = kept
	if s.hostID == a.playerID {
		s.hostID = ""
		for _, q := range s.players {
			if !q.IsBot {
				s.hostID = q.ID
				break
			}
		}
	}
	log.Printf("[Leave] session=%s player=%s players=%d", s.ID, a.playerID, len(s.players))
	s.emit(internal.ServerPlayerLeft, internal.PlayerLeftData{
		PlayerID:    a.playerID,
		Name:        p.Name,
		PlayerCount: len(s.players),
	})
	return nil
}

func (s *Session) applyConnect(a connectAction) error {
	p := s.playerByID(a.playerID)
	if p == nil {
		return internal.NewValidationError(internal.CodeUnknownPlayer, "player %s not in session", a.playerID)
	}
	if p.Connected == a.connected {
		return nil
	}
	p.Connected = a.connected
	log.Printf("[Connect] session=%s player=%s connected=%v", s.ID, a.playerID, a.connected)
	if !a.connected {
		s.emit(internal.ServerPlayerLeft, internal.PlayerLeftData{
			PlayerID:    a.playerID,
			Name:        p.Name,
			PlayerCount: len(s.players),
		})
	} else {
		s.emit(internal.ServerPlayerJoined, internal.PlayerJoinedData{
			Player:      p.ToPublicPlayer(),
			PlayerCount: len(s.players),
		})
	}
	return nil
}

var botNames = []string{"Alex", "Blake", "Casey", "Dana", "Ellis", "Frankie", "Gray"}

var botPersonalities = []string{
	"cheerful", "suspicious", "laconic", "dramatic", "analytical", "nervous", "deadpan",
}

func (s *Session) applyStart(a startAction) error {
	if s.phase != internal.PhaseSetup {
		return internal.NewValidationError(internal.CodeWrongPhase, "session already started")
	}
	if a.playerID != s.hostID {
		return internal.NewValidationError(internal.CodeNotHost, "only the session creator may start")
	}
	if a.botCount < internal.MinBots || a.botCount > internal.MaxBots {
		return internal.NewConfigurationError("bot count %d outside [%d, %d]", a.botCount, internal.MinBots, internal.MaxBots)
	}
	if a.duration == 0 {
		a.duration = s.cfg.DefaultDuration
	}
	if !validDuration(a.duration) {
		return internal.NewConfigurationError("unsupported session duration %s", a.duration)
	}
	if len(s.players)+a.botCount > internal.MaxPlayersPerSession {
		return internal.NewConfigurationError("%d players plus %d bots exceeds %d seats",
			len(s.players), a.botCount, internal.MaxPlayersPerSession)
	}

	for i := 0; i < a.botCount; i++ {
		s.players = append(s.players, &internal.Player{
			ID:          uuid.NewString(),
			Name:        botNames[i%len(botNames)],
			IsBot:       true,
			Connected:   true,
			Personality: botPersonalities[i%len(botPersonalities)],
			JoinedAt:    s.cfg.Now(),
		})
	}

	assignment, err := AssignRoles(s.cfg.Rand, s.players, s.cfg.Catalog)
	if err != nil {
		// Roll back the bot seats so a retry starts clean.
		s.players = s.players[:len(s.players)-a.botCount]
		return err
	}
	if err := s.adoptAssignment(assignment); err != nil {
		return err
	}

	s.phase = internal.PhasePlaying
	s.currentTurn = s.hostID
	s.timer.Reset(a.duration)
	s.timer.Start()

	log.Printf("[Start] session=%s players=%d bots=%d location=%q spy=%s duration=%s",
		s.ID, len(s.players), a.botCount, s.location.Name, s.spyID, a.duration)
	return nil
}

// adoptAssignment installs a deal and re-checks the invariants it must
// satisfy; a failure here means the assigner itself is broken.
func (s *Session) adoptAssignment(assignment Assignment) error {
	if assignment.SpyID == "" || s.playerByID(assignment.SpyID) == nil {
		return internal.NewInvariantViolation("assignment produced unknown spy %q", assignment.SpyID)
	}
	if len(assignment.RoleOf) != len(s.players)-1 {
		return internal.NewInvariantViolation("assignment covered %d of %d non-spy players",
			len(assignment.RoleOf), len(s.players)-1)
	}
	loc := assignment.Location
	s.location = &loc
	s.spyID = assignment.SpyID
	for _, p := range s.players {
		p.Role = assignment.RoleOf[p.ID]
		if p.ID == assignment.SpyID && p.Role != "" {
			return internal.NewInvariantViolation("spy %s was dealt role %q", p.ID, p.Role)
		}
	}
	return nil
}

func validDuration(d time.Duration) bool {
	for _, allowed := range internal.SessionDurations {
		if d == allowed {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Spy guess.

func (s *Session) applyGuess(a guessAction) error {
	if s.phase != internal.PhasePlaying && s.phase != internal.PhaseEndRoundVoting {
		return internal.NewValidationError(internal.CodeWrongPhase, "cannot guess in phase %s", s.phase)
	}
	if a.playerID != s.spyID {
		return internal.NewValidationError(internal.CodeNotSpy, "only the spy may guess the location")
	}
	correct := strings.EqualFold(a.location, s.location.Name)
	log.Printf("[Guess] session=%s spy=%s guess=%q correct=%v", s.ID, a.playerID, a.location, correct)
	s.emit(internal.ServerSpyGuess, internal.SpyGuessData{
		SpyID:   a.playerID,
		Guess:   a.location,
		Correct: correct,
	})
	if correct {
		s.endGame(internal.EndReasonSpyGuessedLocation, internal.WinnerSpy)
	} else {
		s.endGame(internal.EndReasonSpyFailedGuess, internal.WinnerInnocents)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Tick: drives the countdown, vote deadlines and end-of-round slots.

func (s *Session) applyTick() bool {
	mutated := false

	if s.phase == internal.PhasePlaying && s.timer.Tick() {
		log.Printf("[Tick] session=%s timer expired, entering end-of-round voting", s.ID)
		s.enterEndRoundVoting()
		mutated = true
	}

	if s.accusation != nil && !s.cfg.Now().Before(s.accusation.Deadline) {
		log.Printf("[Tick] session=%s vote deadline reached, resolving", s.ID)
		s.resolveAccusation()
		mutated = true
	}

	if s.phase == internal.PhaseEndRoundVoting && s.accusation == nil && s.endRound != nil &&
		!s.cfg.Now().Before(s.endRound.slotDeadline) {
		log.Printf("[Tick] session=%s slot holder %s timed out, treating as pass", s.ID, s.currentTurn)
		s.advanceEndRoundSlot()
		mutated = true
	}

	if s.tickDisconnectedActor() {
		mutated = true
	}

	if s.timer.Status() == internal.TimerRunning {
		s.emitTimer()
	}
	return mutated
}

func (s *Session) emitTimer() {
	s.emit(internal.ServerTimerUpdate, s.timer.State())
}

// ---------------------------------------------------------------------------
// Game end.

func (s *Session) endGame(reason internal.EndReason, winner internal.Winner) {
	s.phase = internal.PhaseFinished
	s.endReason = reason
	s.winner = winner
	s.finishedAt = s.cfg.Now()
	s.accusation = nil
	s.timer.Pause()
	// Outstanding bot decisions are now stale; bump the generation so
	// their results are discarded on arrival.
	s.generation++
	s.inflight = make(map[string]bool)

	s.awardPoints(reason)

	roles := make(map[string]string, len(s.players))
	points := make(map[string]int, len(s.players))
	for _, p := range s.players {
		roles[p.ID] = p.Role
		points[p.ID] = p.Points
	}
	location := ""
	if s.location != nil {
		location = s.location.Name
	}
	log.Printf("[EndGame] session=%s winner=%s reason=%s", s.ID, winner, reason)
	s.emit(internal.ServerSessionFinished, internal.SessionFinishedData{
		Winner:    winner,
		EndReason: reason,
		SpyID:     s.spyID,
		Location:  location,
		Roles:     roles,
		Points:    points,
	})
}

// forceFinish terminates a session that tripped an invariant check.
func (s *Session) forceFinish() {
	if s.phase == internal.PhaseFinished {
		return
	}
	s.endGame(internal.EndReasonInternalError, "")
}

// ---------------------------------------------------------------------------
// Views and broadcast.

func (s *Session) viewFor(viewerID string) internal.SessionView {
	view := internal.SessionView{
		SessionID:          s.ID,
		Phase:              s.phase,
		CurrentTurnID:      s.currentTurn,
		LastQuestionedBy:   s.lastQuestionedBy,
		PendingQuestionTo:  s.pendingAnswerFrom,
		Exchanges:          append([]internal.QAExchange(nil), s.exchanges...),
		Timer:              s.timer.State(),
		AvailableLocations: LocationNames(s.cfg.Catalog),
		ViewerID:           viewerID,
	}
	view.Players = make([]internal.PublicPlayer, 0, len(s.players))
	for _, p := range s.players {
		view.Players = append(view.Players, p.ToPublicPlayer())
	}
	if s.accusation != nil {
		voted := make([]string, 0, len(s.accusation.Votes))
		for _, p := range s.players {
			if _, ok := s.accusation.Votes[p.ID]; ok {
				voted = append(voted, p.ID)
			}
		}
		deadline := int(s.accusation.Deadline.Sub(s.cfg.Now()) / time.Second)
		if deadline < 0 {
			deadline = 0
		}
		view.Accusation = &internal.AccusationView{
			AccuserID:       s.accusation.AccuserID,
			AccusedID:       s.accusation.AccusedID,
			Voted:           voted,
			EligibleVoters:  len(s.eligibleVoters()),
			DeadlineSeconds: deadline,
		}
	}

	finished := s.phase == internal.PhaseFinished
	if finished {
		view.Winner = s.winner
		view.EndReason = s.endReason
		view.SpyID = s.spyID
	}
	if viewer := s.playerByID(viewerID); viewer != nil && s.location != nil {
		view.IsSpy = viewer.ID == s.spyID
		view.Role = viewer.Role
		view.Personality = viewer.Personality
		if !view.IsSpy || finished {
			view.Location = s.location.Name
		}
	}
	return view
}

func (s *Session) broadcastState() {
	if s.cfg.Observer == nil {
		return
	}
	perPlayer := make(map[string]internal.SessionView, len(s.players))
	for _, p := range s.players {
		if p.IsBot {
			continue
		}
		perPlayer[p.ID] = s.viewFor(p.ID)
	}
	s.cfg.Observer.SessionState(s.ID, perPlayer, s.viewFor(""))
}

func (s *Session) emit(msgType string, data any) {
	if s.cfg.Observer == nil {
		return
	}
	s.cfg.Observer.SessionEvent(s.ID, msgType, data)
}

func (s *Session) applyProbe() probeResult {
	humans := false
	for _, p := range s.players {
		if !p.IsBot && p.Connected {
			humans = true
			break
		}
	}
	return probeResult{
		phase:           string(s.phase),
		playerCount:     len(s.players),
		humansConnected: humans,
		finishedAt:      s.finishedAt,
		createdAt:       s.createdAt,
	}
}

// ---------------------------------------------------------------------------
// Small helpers shared across the handler files.

func (s *Session) playerByID(id string) *internal.Player {
	for _, p := range s.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// eligibleVoters is every connected player except the accused.
func (s *Session) eligibleVoters() []*internal.Player {
	if s.accusation == nil {
		return nil
	}
	voters := make([]*internal.Player, 0, len(s.players))
	for _, p := range s.players {
		if p.ID == s.accusation.AccusedID || !p.Connected {
			continue
		}
		voters = append(voters, p)
	}
	return voters
}
