package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goblet/src/core/domain"
)

func TestReconcile_AdminOnly(t *testing.T) {
	repo := newFakeRepo()
	svc := NewReconcilerService(repo, nil)

	_, err := svc.Reconcile(context.Background(), headRound(1))
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err))
}

func TestReconcile_NoDrift(t *testing.T) {
	repo := newFakeRepo()
	a := repo.addTeam("Thestrals", domain.HouseGryffindor, 50)
	repo.results["round-1"] = []domain.ResultEntry{
		{Kind: domain.KindSingle, TeamID: a.ID, Points: 50, Rank: 1},
	}
	repo.standings[domain.HouseGryffindor] = &domain.HouseStanding{House: domain.HouseGryffindor, Points: 50}
	svc := NewReconcilerService(repo, nil)

	report, err := svc.Reconcile(context.Background(), admin)
	require.NoError(t, err)
	assert.Equal(t, 1, report.ResultsScanned)
	assert.Empty(t, report.TeamsCorrected)
	assert.Empty(t, report.HousesCorrected)
}

func TestReconcile_CorrectsTeamDrift(t *testing.T) {
	repo := newFakeRepo()
	a := repo.addTeam("Thestrals", domain.HouseGryffindor, 999) // drifted
	b := repo.addTeam("Kneazles", domain.HouseSlytherin, 30)
	repo.results["round-1"] = []domain.ResultEntry{
		{Kind: domain.KindSingle, TeamID: a.ID, Points: 50, Rank: 1},
		{Kind: domain.KindSingle, TeamID: b.ID, Points: 30, Rank: 2},
	}
	svc := NewReconcilerService(repo, nil)
	ctx := context.Background()

	report, err := svc.Reconcile(ctx, admin)
	require.NoError(t, err)
	require.Len(t, report.TeamsCorrected, 1)
	assert.Equal(t, "Thestrals", report.TeamsCorrected[0].Name)
	assert.Equal(t, 999, report.TeamsCorrected[0].Stored)
	assert.Equal(t, 50, report.TeamsCorrected[0].Computed)

	stored, err := repo.GetTeam(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 50, stored.TotalScore)
}

func TestReconcile_PairedEntriesCreditBothTeams(t *testing.T) {
	repo := newFakeRepo()
	a := repo.addTeam("Thestrals", domain.HouseGryffindor, 0)
	b := repo.addTeam("Kneazles", domain.HouseSlytherin, 0)
	repo.results["round-2"] = []domain.ResultEntry{
		{Kind: domain.KindPaired, TeamIDs: [2]int64{a.ID, b.ID}, Points: 40},
	}
	svc := NewReconcilerService(repo, nil)
	ctx := context.Background()

	report, err := svc.Reconcile(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, report.TeamsCorrected, 2)

	for _, id := range []int64{a.ID, b.ID} {
		stored, err := repo.GetTeam(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 40, stored.TotalScore)
	}
}

func TestReconcile_SeedsMissingStandingRow(t *testing.T) {
	repo := newFakeRepo()
	a := repo.addTeam("Thestrals", domain.HouseGryffindor, 50)
	repo.results["round-1"] = []domain.ResultEntry{
		{Kind: domain.KindSingle, TeamID: a.ID, Points: 50, Rank: 1},
	}
	// No standing row exists for Gryffindor yet.
	svc := NewReconcilerService(repo, nil)
	ctx := context.Background()

	report, err := svc.Reconcile(ctx, admin)
	require.NoError(t, err)
	require.Len(t, report.HousesCorrected, 1)
	assert.Equal(t, domain.HouseGryffindor, report.HousesCorrected[0].House)
	assert.Equal(t, 0, report.HousesCorrected[0].Stored)
	assert.Equal(t, 50, report.HousesCorrected[0].Computed)

	standings, err := repo.ListStandings(ctx)
	require.NoError(t, err)
	require.Len(t, standings, 1)
	assert.Equal(t, domain.HouseGryffindor, standings[0].House)
	assert.Equal(t, 50, standings[0].Points)
}

func TestReconcile_CorrectsHouseDrift(t *testing.T) {
	repo := newFakeRepo()
	a := repo.addTeam("Thestrals", domain.HouseGryffindor, 50)
	repo.results["round-1"] = []domain.ResultEntry{
		{Kind: domain.KindSingle, TeamID: a.ID, Points: 50, Rank: 1},
	}
	repo.standings[domain.HouseGryffindor] = &domain.HouseStanding{House: domain.HouseGryffindor, Points: 7}
	svc := NewReconcilerService(repo, nil)
	ctx := context.Background()

	report, err := svc.Reconcile(ctx, admin)
	require.NoError(t, err)
	require.Len(t, report.HousesCorrected, 1)
	assert.Equal(t, 7, report.HousesCorrected[0].Stored)
	assert.Equal(t, 50, report.HousesCorrected[0].Computed)

	standings, err := repo.ListStandings(ctx)
	require.NoError(t, err)
	require.Len(t, standings, 1)
	assert.Equal(t, 50, standings[0].Points)
}

func TestActivityList_AdminOnlyWithClampedLimit(t *testing.T) {
	repo := newFakeRepo()
	for i := 0; i < 5; i++ {
		_ = repo.AppendActivity(context.Background(), domain.ActivityEntry{Message: "entry"})
	}
	svc := NewActivityService(repo, nil)
	ctx := context.Background()

	_, err := svc.List(ctx, headRound(1), 10)
	require.Error(t, err)
	assert.True(t, domain.IsForbidden(err))

	entries, err := svc.List(ctx, admin, 3)
	require.NoError(t, err)
	assert.Len(t, entries, 3)

	entries, err = svc.List(ctx, admin, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 5)
}
