package game

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/alexcjwei/llms-play-spyfall/internal"
)

func makePlayers(n int) []*internal.Player {
	players := make([]*internal.Player, 0, n)
	for i := 0; i < n; i++ {
		players = append(players, &internal.Player{
			ID:   fmt.Sprintf("p%d", i),
			Name: fmt.Sprintf("Player %d", i),
		})
	}
	return players
}

func TestAssignRolesDealsEveryNonSpy(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	players := makePlayers(5)

	assignment, err := AssignRoles(rng, players, Locations)
	if err != nil {
		t.Fatalf("AssignRoles: %v", err)
	}

	spyFound := false
	for _, p := range players {
		if p.ID == assignment.SpyID {
			spyFound = true
		}
	}
	if !spyFound {
		t.Fatalf("spy %q is not a player", assignment.SpyID)
	}
	if _, ok := assignment.RoleOf[assignment.SpyID]; ok {
		t.Error("spy was dealt a role")
	}
	if len(assignment.RoleOf) != len(players)-1 {
		t.Fatalf("dealt %d roles, want %d", len(assignment.RoleOf), len(players)-1)
	}

	valid := make(map[string]bool, len(assignment.Location.Roles))
	for _, role := range assignment.Location.Roles {
		valid[role] = true
	}
	seen := make(map[string]bool)
	for id, role := range assignment.RoleOf {
		if !valid[role] {
			t.Errorf("player %s got role %q not at location %q", id, role, assignment.Location.Name)
		}
		if seen[role] {
			t.Errorf("role %q dealt twice", role)
		}
		seen[role] = true
	}
}

func TestAssignRolesIsDeterministicPerSeed(t *testing.T) {
	players := makePlayers(4)
	a, err := AssignRoles(rand.New(rand.NewSource(42)), players, Locations)
	if err != nil {
		t.Fatalf("AssignRoles: %v", err)
	}
	b, err := AssignRoles(rand.New(rand.NewSource(42)), players, Locations)
	if err != nil {
		t.Fatalf("AssignRoles: %v", err)
	}
	if a.Location.Name != b.Location.Name || a.SpyID != b.SpyID {
		t.Errorf("same seed produced different deals: %v vs %v", a, b)
	}
}

func TestAssignRolesPlayerCountBounds(t *testing.T) {
	tests := []struct {
		name    string
		players int
	}{
		{"too few", internal.MinPlayersPerSession - 1},
		{"too many", internal.MaxPlayersPerSession + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AssignRoles(rand.New(rand.NewSource(1)), makePlayers(tt.players), Locations)
			if !internal.IsConfiguration(err) {
				t.Fatalf("err = %v, want configuration error", err)
			}
		})
	}
}

func TestAssignRolesRejectsEmptyCatalog(t *testing.T) {
	_, err := AssignRoles(rand.New(rand.NewSource(1)), makePlayers(4), nil)
	if !internal.IsConfiguration(err) {
		t.Fatalf("err = %v, want configuration error", err)
	}
}
