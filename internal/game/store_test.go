package game

import (
	"math/rand"
	"testing"
	"time"
)

func newTestStore(clock *fakeClock) *Store {
	return NewStore(Config{
		Now:  clock.now,
		Rand: rand.New(rand.NewSource(11)),
	})
}

func TestStoreCreateAssignsUniqueCodes(t *testing.T) {
	st := newTestStore(newFakeClock())
	defer st.Stop()

	a := st.Create()
	b := st.Create()
	if len(a.ID) != sessionCodeLen {
		t.Errorf("code %q has length %d, want %d", a.ID, len(a.ID), sessionCodeLen)
	}
	if a.ID == b.ID {
		t.Errorf("two sessions share code %q", a.ID)
	}

	got, ok := st.Get(a.ID)
	if !ok || got != a {
		t.Error("Get did not return the created session")
	}
	if st.GetOrCreate(a.ID) != a {
		t.Error("GetOrCreate replaced an existing session")
	}
}

func TestStoreGetOrCreateMakesLobby(t *testing.T) {
	st := newTestStore(newFakeClock())
	defer st.Stop()

	s := st.GetOrCreate("FRIEND")
	if s.ID != "FRIEND" {
		t.Fatalf("session id = %q", s.ID)
	}
	if _, ok := st.Get("FRIEND"); !ok {
		t.Error("session not registered under its code")
	}
}

func TestStoreListJoinable(t *testing.T) {
	st := newTestStore(newFakeClock())
	defer st.Stop()

	open := st.Create()
	started := st.Create()
	if _, err := started.Join("Host"); err != nil {
		t.Fatalf("Join: %v", err)
	}

	joinable := st.ListJoinable()
	if len(joinable) != 2 {
		t.Fatalf("joinable = %d, want 2", len(joinable))
	}

	hostID, err := open.Join("Host")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := open.Start(hostID, 3, 8*time.Minute); err != nil {
		t.Fatalf("Start: %v", err)
	}

	joinable = st.ListJoinable()
	if len(joinable) != 1 || joinable[0].SessionID != started.ID {
		t.Fatalf("joinable = %+v, want only %s", joinable, started.ID)
	}
	if joinable[0].PlayerCount != 1 {
		t.Errorf("player count = %d, want 1", joinable[0].PlayerCount)
	}
}

func TestStoreReapsAbandonedSessions(t *testing.T) {
	clock := newFakeClock()
	st := newTestStore(clock)
	defer st.Stop()

	stale := st.Create()
	clock.advance(abandonedAge + time.Minute)
	fresh := st.Create()

	st.reap()

	if _, ok := st.Get(stale.ID); ok {
		t.Error("abandoned session survived the reap")
	}
	if _, ok := st.Get(fresh.ID); !ok {
		t.Error("fresh session was reaped")
	}
	if err := stale.Leave("nobody"); err != ErrSessionClosed {
		t.Errorf("reaped session err = %v, want ErrSessionClosed", err)
	}
}

func TestStoreRemoveStopsSession(t *testing.T) {
	st := newTestStore(newFakeClock())
	defer st.Stop()

	s := st.Create()
	st.Remove(s.ID)
	if _, ok := st.Get(s.ID); ok {
		t.Error("session still registered after Remove")
	}
	if _, err := s.Join("Ghost"); err != ErrSessionClosed {
		t.Errorf("err = %v, want ErrSessionClosed", err)
	}
}
