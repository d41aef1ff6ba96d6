package game

import (
	"github.com/alexcjwei/llms-play-spyfall/internal"
)

type multiObserver []Observer

func (m multiObserver) SessionState(sessionID string, perPlayer map[string]internal.SessionView, public internal.SessionView) {
	for _, o := range m {
		o.SessionState(sessionID, perPlayer, public)
	}
}

func (m multiObserver) SessionEvent(sessionID string, msgType string, data any) {
	for _, o := range m {
		o.SessionEvent(sessionID, msgType, data)
	}
}

// CombineObservers fans committed state and events out to several
// observers in order. Nil entries are skipped.
func CombineObservers(observers ...Observer) Observer {
	flat := make(multiObserver, 0, len(observers))
	for _, o := range observers {
		if o != nil {
			flat = append(flat, o)
		}
	}
	if len(flat) == 1 {
		return flat[0]
	}
	return flat
}
