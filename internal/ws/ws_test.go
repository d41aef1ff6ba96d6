package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alexcjwei/llms-play-spyfall/internal"
)

func TestCheckOriginHonorsConfiguredOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed string
		origin  string
		want    bool
	}{
		{"wildcard allows anything", "*", "https://evil.example", true},
		{"exact match", "https://app.example", "https://app.example", true},
		{"mismatch rejected", "https://app.example", "https://other.example", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHub(tt.allowed)
			r, _ := http.NewRequest(http.MethodGet, "/ws/ABC123", nil)
			r.Header.Set("Origin", tt.origin)
			if got := h.upgrader.CheckOrigin(r); got != tt.want {
				t.Errorf("CheckOrigin = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDispatchRejectsMalformedInput(t *testing.T) {
	h := NewHub("*")
	c := &client{sessionID: "ABC123", playerID: "p1"}

	err := h.dispatch(c, nil, internal.Message[json.RawMessage]{
		Type: "set_phase",
		Data: json.RawMessage(`{}`),
	})
	if internal.ValidationCode(err) != internal.CodeUnknownType {
		t.Errorf("unknown type: err = %v, want %s", err, internal.CodeUnknownType)
	}

	err = h.dispatch(c, nil, internal.Message[json.RawMessage]{
		Type: internal.ClientAskQuestion,
		Data: json.RawMessage(`"not an object"`),
	})
	if internal.ValidationCode(err) != internal.CodeBadPayload {
		t.Errorf("bad payload: err = %v, want %s", err, internal.CodeBadPayload)
	}
}

func TestRegisterReplacesStaleConnection(t *testing.T) {
	h := NewHub("*")
	a := &client{sessionID: "ABC123", playerID: "p1"}
	b := &client{sessionID: "ABC123", playerID: "p1"}

	h.register(a)
	h.register(b)
	clients := h.clientsFor("ABC123")
	if len(clients) != 1 || clients[0] != b {
		t.Fatalf("clients = %v, want only the replacement", clients)
	}

	// Unregistering the stale connection must not evict the live one.
	h.unregister(a)
	if got := h.clientsFor("ABC123"); len(got) != 1 {
		t.Fatalf("live connection evicted by stale unregister")
	}
	h.unregister(b)
	if got := h.clientsFor("ABC123"); len(got) != 0 {
		t.Fatalf("clients = %v after unregister, want none", got)
	}
}

func TestStalledPeerWriteFailsAtDeadline(t *testing.T) {
	oldWait := writeWait
	writeWait = 200 * time.Millisecond
	defer func() { writeWait = oldWait }()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	accepted := make(chan *websocket.Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		accepted <- conn
	}))
	defer srv.Close()

	// The peer connects and then never reads, so the server's send
	// buffers fill up and writes start to block.
	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer peer.Close()
	conn := <-accepted
	defer conn.Close()

	c := &client{conn: conn, sessionID: "ABC123", playerID: "p1"}
	payload := internal.Message[string]{Type: "state", Data: strings.Repeat("x", 1<<16)}

	var werr error
	stop := time.Now().Add(10 * time.Second)
	for time.Now().Before(stop) {
		if werr = c.safeWriteJSON(payload); werr != nil {
			break
		}
	}
	if werr == nil {
		t.Fatal("writes to a peer that never reads never failed")
	}
}
