package game

import (
	"math/rand"

	"github.com/alexcjwei/llms-play-spyfall/internal"
)

// Assignment is the result of dealing roles for one session.
type Assignment struct {
	Location internal.Location
	SpyID    string
	// RoleOf maps every non-spy player to a distinct role at the
	// location. The spy has no entry.
	RoleOf map[string]string
}

// AssignRoles picks a location and a spy uniformly at random, then
// deals a random permutation of the location's roles to the remaining
// players. Deterministic given a seeded source.
func AssignRoles(rng *rand.Rand, players []*internal.Player, catalog []internal.Location) (Assignment, error) {
	if len(players) < internal.MinPlayersPerSession || len(players) > internal.MaxPlayersPerSession {
		return Assignment{}, internal.NewConfigurationError(
			"player count %d outside [%d, %d]",
			len(players), internal.MinPlayersPerSession, internal.MaxPlayersPerSession)
	}
	if len(catalog) == 0 {
		return Assignment{}, internal.NewConfigurationError("empty location catalog")
	}

	location := catalog[rng.Intn(len(catalog))]
	if len(location.Roles) < len(players)-1 {
		return Assignment{}, internal.NewConfigurationError(
			"location %q has %d roles for %d non-spy players",
			location.Name, len(location.Roles), len(players)-1)
	}

	spy := players[rng.Intn(len(players))]

	perm := rng.Perm(len(location.Roles))
	roleOf := make(map[string]string, len(players)-1)
	next := 0
	for _, p := range players {
		if p.ID == spy.ID {
			continue
		}
		roleOf[p.ID] = location.Roles[perm[next]]
		next++
	}

	return Assignment{Location: location, SpyID: spy.ID, RoleOf: roleOf}, nil
}
