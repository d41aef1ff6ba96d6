package game

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/alexcjwei/llms-play-spyfall/internal"
)

const (
	sessionCodeLen = 6
	codeAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

	// A finished session stays visible for a while so late clients can
	// still fetch the reveal; a setup lobby nobody human is sitting in
	// gets reclaimed too.
	finishedGrace = 5 * time.Minute
	abandonedAge  = 15 * time.Minute

	reapEvery = 30 * time.Second
)

// Store owns every live session and the shared one-second scheduler
// that drives their timers. Sessions are created on demand and reaped
// once finished or abandoned.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	cfg      Config
	quit     chan struct{}
	stopOnce sync.Once
}

func NewStore(cfg Config) *Store {
	cfg.fillDefaults()
	return &Store{
		sessions: make(map[string]*Session),
		cfg:      cfg,
		quit:     make(chan struct{}),
	}
}

// Create allocates a session under a fresh code and starts its loop.
func (st *Store) Create() *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	id := st.newCodeLocked()
	return st.createLocked(id)
}

// GetOrCreate returns the session with the given id, creating it if it
// does not exist yet. Joining an unknown code makes the lobby.
func (st *Store) GetOrCreate(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	if s, ok := st.sessions[id]; ok {
		return s
	}
	return st.createLocked(id)
}

func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

func (st *Store) Remove(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
	}
	st.mu.Unlock()
	if ok {
		s.Stop()
		log.Printf("[Store] session=%s removed", id)
	}
}

func (st *Store) createLocked(id string) *Session {
	cfg := st.cfg
	// Each session loop needs its own source; *rand.Rand is not safe
	// for concurrent use.
	cfg.Rand = rand.New(rand.NewSource(st.cfg.Rand.Int63()))
	s := NewSession(id, cfg)
	st.sessions[id] = s
	go s.Run()
	log.Printf("[Store] session=%s created, total=%d", id, len(st.sessions))
	return s
}

func (st *Store) newCodeLocked() string {
	for {
		b := make([]byte, sessionCodeLen)
		for i := range b {
			b[i] = codeAlphabet[st.cfg.Rand.Intn(len(codeAlphabet))]
		}
		id := string(b)
		if _, taken := st.sessions[id]; !taken {
			return id
		}
	}
}

// JoinableSession is the lobby-list summary served over HTTP.
type JoinableSession struct {
	SessionID   string `json:"session_id"`
	PlayerCount int    `json:"player_count"`
	MaxPlayers  int    `json:"max_players"`
}

// ListJoinable returns sessions still in setup with a free seat.
func (st *Store) ListJoinable() []JoinableSession {
	st.mu.RLock()
	sessions := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		sessions = append(sessions, s)
	}
	st.mu.RUnlock()

	joinable := make([]JoinableSession, 0, len(sessions))
	for _, s := range sessions {
		p, err := s.probe()
		if err != nil {
			continue
		}
		if p.phase != string(internal.PhaseSetup) || p.playerCount >= internal.MaxPlayersPerSession {
			continue
		}
		joinable = append(joinable, JoinableSession{
			SessionID:   s.ID,
			PlayerCount: p.playerCount,
			MaxPlayers:  internal.MaxPlayersPerSession,
		})
	}
	return joinable
}

// Run drives every session's countdown off one shared ticker and reaps
// dead sessions. Blocks until Stop.
func (st *Store) Run() {
	tick := time.NewTicker(time.Second)
	reap := time.NewTicker(reapEvery)
	defer tick.Stop()
	defer reap.Stop()
	for {
		select {
		case <-st.quit:
			return
		case <-tick.C:
			st.mu.RLock()
			for _, s := range st.sessions {
				s.Tick()
			}
			st.mu.RUnlock()
		case <-reap.C:
			st.reap()
		}
	}
}

func (st *Store) Stop() {
	st.stopOnce.Do(func() { close(st.quit) })
	st.mu.Lock()
	defer st.mu.Unlock()
	for id, s := range st.sessions {
		s.Stop()
		delete(st.sessions, id)
	}
}

func (st *Store) reap() {
	st.mu.RLock()
	candidates := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		candidates = append(candidates, s)
	}
	st.mu.RUnlock()

	now := st.cfg.Now()
	for _, s := range candidates {
		p, err := s.probe()
		if err != nil {
			continue
		}
		finished := p.phase == string(internal.PhaseFinished) &&
			now.Sub(p.finishedAt) > finishedGrace
		abandoned := !p.humansConnected && now.Sub(p.createdAt) > abandonedAge
		if finished || abandoned {
			log.Printf("[Store] session=%s reaped (finished=%v abandoned=%v)", s.ID, finished, abandoned)
			st.Remove(s.ID)
		}
	}
}
