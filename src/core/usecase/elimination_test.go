package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goblet/src/core/domain"
	"goblet/src/core/ports"
)

func newEliminationService(repo *fakeRepo) *EliminationService {
	gate := NewLockGateService(repo, nil)
	svc := NewEliminationService(repo, gate, nil)
	svc.shuffle = func(n int, swap func(i, j int)) {} // deterministic
	return svc
}

func seedTeams(repo *fakeRepo, n int) {
	houses := []domain.House{domain.HouseGryffindor, domain.HouseSlytherin, domain.HouseRavenclaw}
	for i := 0; i < n; i++ {
		repo.addTeam(fmt.Sprintf("team-%02d", i), houses[i%len(houses)], i*10)
	}
}

func TestStartRound_TagsParticipation(t *testing.T) {
	repo := newFakeRepo()
	repo.unlockRound("round-2")
	seedTeams(repo, 5)
	svc := newEliminationService(repo)

	report, err := svc.StartRound(context.Background(), admin, "round-2")
	require.NoError(t, err)
	assert.Equal(t, 5, report.Participants)
	assert.Empty(t, report.Eliminated)
	assert.Empty(t, report.SeededHouses)

	teams, err := repo.ListTeams(context.Background(), ports.TeamFilter{Round: 2})
	require.NoError(t, err)
	assert.Len(t, teams, 5)
}

func TestStartRound_EliminationCutsToTarget(t *testing.T) {
	repo := newFakeRepo()
	repo.unlockRound("round-5")
	seedTeams(repo, 20)
	svc := newEliminationService(repo)
	ctx := context.Background()

	report, err := svc.StartRound(ctx, admin, "round-5")
	require.NoError(t, err)
	assert.Equal(t, domain.EliminationTarget, report.Participants)
	require.Len(t, report.Eliminated, 4)

	// The four lowest totals go: team-00 through team-03.
	assert.ElementsMatch(t, []string{"team-00", "team-01", "team-02", "team-03"}, report.Eliminated)

	active, err := repo.ListTeams(ctx, ports.TeamFilter{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, active, domain.EliminationTarget)

	// Survivors, and only survivors, carry the round tag.
	tagged, err := repo.ListTeams(ctx, ports.TeamFilter{Round: 5, ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, tagged, domain.EliminationTarget)
}

func TestStartRound_EliminationSeedsFourHouses(t *testing.T) {
	repo := newFakeRepo()
	repo.unlockRound("round-5")
	seedTeams(repo, 20)
	svc := newEliminationService(repo)

	report, err := svc.StartRound(context.Background(), admin, "round-5")
	require.NoError(t, err)
	assert.Contains(t, report.SeededHouses, domain.HouseHufflepuff)
	assert.Len(t, report.SeededHouses, 4)

	standings, err := repo.ListStandings(context.Background())
	require.NoError(t, err)
	assert.Len(t, standings, 4)
}

func TestStartRound_AtOrBelowTargetNobodyCut(t *testing.T) {
	for _, n := range []int{domain.EliminationTarget, domain.EliminationTarget - 3} {
		repo := newFakeRepo()
		repo.unlockRound("round-5")
		seedTeams(repo, n)
		svc := newEliminationService(repo)

		report, err := svc.StartRound(context.Background(), admin, "round-5")
		require.NoError(t, err)
		assert.Equal(t, n, report.Participants)
		assert.Empty(t, report.Eliminated)
	}
}

func TestStartRound_OneOverTargetCutsOne(t *testing.T) {
	repo := newFakeRepo()
	repo.unlockRound("round-5")
	seedTeams(repo, domain.EliminationTarget+1)
	svc := newEliminationService(repo)

	report, err := svc.StartRound(context.Background(), admin, "round-5")
	require.NoError(t, err)
	assert.Equal(t, domain.EliminationTarget, report.Participants)
	assert.Equal(t, []string{"team-00"}, report.Eliminated)
}

func TestStartRound_LockedRound(t *testing.T) {
	repo := newFakeRepo()
	seedTeams(repo, 4)
	svc := newEliminationService(repo)

	_, err := svc.StartRound(context.Background(), admin, "round-5")
	require.Error(t, err)
	assert.True(t, domain.IsLocked(err))
}

func TestStartRound_Idempotent(t *testing.T) {
	repo := newFakeRepo()
	repo.unlockRound("round-3")
	seedTeams(repo, 6)
	svc := newEliminationService(repo)
	ctx := context.Background()

	_, err := svc.StartRound(ctx, admin, "round-3")
	require.NoError(t, err)
	_, err = svc.StartRound(ctx, admin, "round-3")
	require.NoError(t, err)

	// Repeating the transition must not duplicate the round tag.
	teams, err := repo.ListTeams(ctx, ports.TeamFilter{Round: 3})
	require.NoError(t, err)
	require.Len(t, teams, 6)
	for _, tm := range teams {
		count := 0
		for _, r := range tm.Rounds {
			if r == 3 {
				count++
			}
		}
		assert.Equal(t, 1, count, "team %s tagged more than once", tm.Name)
	}
}
