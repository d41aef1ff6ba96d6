package notify

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/alexcjwei/llms-play-spyfall/internal"
)

// Publisher mirrors session events and public state onto NATS subjects
// so external consumers (spectator UIs, analytics) can follow games
// without holding a websocket. It is an optional second observer; when
// NATS is not configured the server runs without it.
type Publisher struct {
	nc *nats.Conn
}

func Connect(url string) (*Publisher, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2 * time.Second),
	}
	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}
	return &Publisher{nc: nc}, nil
}

func (p *Publisher) Close() {
	p.nc.Drain()
}

// SessionState publishes only the public projection. Player-scoped
// views carry roles and must never leave the websocket path.
func (p *Publisher) SessionState(sessionID string, _ map[string]internal.SessionView, public internal.SessionView) {
	p.publish(fmt.Sprintf("spyfall.session.%s.state", sessionID), internal.Message[internal.SessionView]{
		Type: internal.ServerState,
		Data: public,
	})
}

func (p *Publisher) SessionEvent(sessionID string, msgType string, data any) {
	p.publish(fmt.Sprintf("spyfall.session.%s.events", sessionID), internal.Message[any]{
		Type: msgType,
		Data: data,
	})
}

func (p *Publisher) publish(subject string, msg any) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[Notify] marshal for %s failed: %v", subject, err)
		return
	}
	if err := p.nc.Publish(subject, payload); err != nil {
		log.Printf("[Notify] publish to %s failed: %v", subject, err)
	}
}
