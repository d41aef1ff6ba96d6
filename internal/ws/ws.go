package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/alexcjwei/llms-play-spyfall/internal"
	"github.com/alexcjwei/llms-play-spyfall/internal/game"
)

// writeWait bounds a single websocket write. Session fan-out happens
// inside the session's action loop, so a peer that stops reading must
// fail its write instead of stalling the whole session.
var writeWait = 10 * time.Second

// client is one websocket connection bound to a player in a session.
// gorilla/websocket allows only one concurrent writer, so every write
// goes through the mutex.
type client struct {
	conn      *websocket.Conn
	mu        sync.Mutex
	sessionID string
	playerID  string
}

func (c *client) safeWriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(v)
}

func (c *client) sendError(err error) {
	msg := internal.Message[internal.ErrorData]{
		Type: internal.ServerError,
		Data: internal.ErrorData{
			Code:    internal.ValidationCode(err),
			Message: err.Error(),
		},
	}
	if werr := c.safeWriteJSON(msg); werr != nil {
		log.Printf("[WS] session=%s player=%s error write failed: %v", c.sessionID, c.playerID, werr)
	}
}

// Hub tracks the connections per session and fans session state and
// events out to them. It is the sessions' Observer.
type Hub struct {
	store    *game.Store
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]map[string]*client
}

func NewHub(allowedOrigin string) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
		conns: make(map[string]map[string]*client),
	}
}

// SetStore breaks the construction cycle: the store needs the hub as
// its observer, the hub needs the store to route joins.
func (h *Hub) SetStore(store *game.Store) {
	h.store = store
}

// HandleWebSocket upgrades the connection and joins (or re-attaches)
// the player to the session in the URL. A reconnecting client passes
// its previous id as the player_id query parameter.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionId"]
	if sessionID == "" {
		http.Error(w, "missing session id", http.StatusBadRequest)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] upgrade failed: %v", err)
		return
	}

	session := h.store.GetOrCreate(sessionID)
	playerID := r.URL.Query().Get("player_id")
	if playerID != "" {
		if err := session.SetConnected(playerID, true); err != nil {
			playerID = ""
		}
	}
	if playerID == "" {
		name := r.URL.Query().Get("name")
		playerID, err = session.Join(name)
		if err != nil {
			log.Printf("[WS] session=%s join rejected: %v", sessionID, err)
			c := &client{conn: conn, sessionID: sessionID}
			c.sendError(err)
			conn.Close()
			return
		}
	}

	c := &client{conn: conn, sessionID: sessionID, playerID: playerID}
	h.register(c)
	log.Printf("[WS] session=%s player=%s connected", sessionID, playerID)

	if err := c.safeWriteJSON(internal.Message[internal.JoinedData]{
		Type: internal.ServerJoined,
		Data: internal.JoinedData{SessionID: sessionID, PlayerID: playerID},
	}); err != nil {
		log.Printf("[WS] session=%s player=%s joined write failed: %v", sessionID, playerID, err)
	}
	if view, err := session.Snapshot(playerID); err == nil {
		if werr := c.safeWriteJSON(internal.Message[internal.SessionView]{
			Type: internal.ServerState,
			Data: view,
		}); werr != nil {
			log.Printf("[WS] session=%s player=%s state write failed: %v", sessionID, playerID, werr)
		}
	}

	go h.readLoop(c, session)
}

func (h *Hub) readLoop(c *client, session *game.Session) {
	defer func() {
		c.conn.Close()
		h.unregister(c)
		if err := session.SetConnected(c.playerID, false); err != nil {
			log.Printf("[WS] session=%s player=%s disconnect mark failed: %v", c.sessionID, c.playerID, err)
		}
		log.Printf("[WS] session=%s player=%s disconnected", c.sessionID, c.playerID)
	}()

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS] session=%s player=%s read error: %v", c.sessionID, c.playerID, err)
			}
			return
		}
		var baseMsg internal.Message[json.RawMessage]
		if err := json.Unmarshal(raw, &baseMsg); err != nil {
			log.Printf("[WS] session=%s player=%s malformed message: %v", c.sessionID, c.playerID, err)
			continue
		}
		if err := h.dispatch(c, session, baseMsg); err != nil {
			c.sendError(err)
		}
	}
}

func (h *Hub) dispatch(c *client, session *game.Session, msg internal.Message[json.RawMessage]) error {
	switch msg.Type {
	case internal.ClientStartSession:
		var data internal.StartSessionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return internal.NewValidationError(internal.CodeBadPayload, "malformed %s data", msg.Type)
		}
		return session.Start(c.playerID, data.BotCount, time.Duration(data.DurationSeconds)*time.Second)
	case internal.ClientAskQuestion:
		var data internal.AskQuestionData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return internal.NewValidationError(internal.CodeBadPayload, "malformed %s data", msg.Type)
		}
		return session.AskQuestion(c.playerID, data.TargetID, data.Content)
	case internal.ClientGiveAnswer:
		var data internal.GiveAnswerData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return internal.NewValidationError(internal.CodeBadPayload, "malformed %s data", msg.Type)
		}
		return session.GiveAnswer(c.playerID, data.Content)
	case internal.ClientAccusePlayer:
		var data internal.AccusePlayerData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return internal.NewValidationError(internal.CodeBadPayload, "malformed %s data", msg.Type)
		}
		return session.AccusePlayer(c.playerID, data.AccusedID)
	case internal.ClientCastVote:
		var data internal.CastVoteData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return internal.NewValidationError(internal.CodeBadPayload, "malformed %s data", msg.Type)
		}
		return session.CastVote(c.playerID, data.Guilty)
	case internal.ClientPassSlot:
		return session.PassSlot(c.playerID)
	case internal.ClientGuessLocation:
		var data internal.GuessLocationData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return internal.NewValidationError(internal.CodeBadPayload, "malformed %s data", msg.Type)
		}
		return session.GuessLocation(c.playerID, data.Location)
	default:
		return internal.NewValidationError(internal.CodeUnknownType, "unknown message type %q", msg.Type)
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	byPlayer, ok := h.conns[c.sessionID]
	if !ok {
		byPlayer = make(map[string]*client)
		h.conns[c.sessionID] = byPlayer
	}
	if old, ok := byPlayer[c.playerID]; ok && old != c && old.conn != nil {
		old.conn.Close()
	}
	byPlayer[c.playerID] = c
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	byPlayer, ok := h.conns[c.sessionID]
	if !ok {
		return
	}
	if byPlayer[c.playerID] == c {
		delete(byPlayer, c.playerID)
	}
	if len(byPlayer) == 0 {
		delete(h.conns, c.sessionID)
	}
}

func (h *Hub) clientsFor(sessionID string) []*client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	byPlayer := h.conns[sessionID]
	clients := make([]*client, 0, len(byPlayer))
	for _, c := range byPlayer {
		clients = append(clients, c)
	}
	return clients
}

// SessionState implements game.Observer: each connected player gets the
// projection scoped to them.
func (h *Hub) SessionState(sessionID string, perPlayer map[string]internal.SessionView, public internal.SessionView) {
	for _, c := range h.clientsFor(sessionID) {
		view, ok := perPlayer[c.playerID]
		if !ok {
			view = public
		}
		msg := internal.Message[internal.SessionView]{Type: internal.ServerState, Data: view}
		if err := c.safeWriteJSON(msg); err != nil {
			log.Printf("[WS] session=%s player=%s state write failed: %v", sessionID, c.playerID, err)
		}
	}
}

// SessionEvent implements game.Observer: events are public and go to
// every connection in the session.
func (h *Hub) SessionEvent(sessionID string, msgType string, data any) {
	msg := internal.Message[any]{Type: msgType, Data: data}
	for _, c := range h.clientsFor(sessionID) {
		if err := c.safeWriteJSON(msg); err != nil {
			log.Printf("[WS] session=%s player=%s event write failed: %v", sessionID, c.playerID, err)
		}
	}
}
