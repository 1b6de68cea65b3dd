package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goblet/src/core/domain"
)

func TestApplyDelta_AccumulatesAndAllowsNegative(t *testing.T) {
	repo := newFakeRepo()
	team := repo.addTeam("Nifflers", domain.HouseRavenclaw, 10)
	ledger := NewScoreLedgerService(repo, nil)
	ctx := context.Background()

	got, err := ledger.ApplyDelta(ctx, team.ID, 25)
	require.NoError(t, err)
	assert.Equal(t, 35, got.TotalScore)

	// Deltas are unbounded; a penalty may drive the total below zero.
	got, err = ledger.ApplyDelta(ctx, team.ID, -50)
	require.NoError(t, err)
	assert.Equal(t, -15, got.TotalScore)
}

func TestApplyDelta_UnknownTeam(t *testing.T) {
	repo := newFakeRepo()
	ledger := NewScoreLedgerService(repo, nil)

	_, err := ledger.ApplyDelta(context.Background(), 404, 5)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestApplyDeltas_AllApplied(t *testing.T) {
	repo := newFakeRepo()
	a := repo.addTeam("Acromantulas", domain.HouseSlytherin, 0)
	b := repo.addTeam("Bowtruckles", domain.HouseGryffindor, 5)
	ledger := NewScoreLedgerService(repo, nil)

	updated, err := ledger.ApplyDeltas(context.Background(), []DeltaEntry{
		{TeamID: a.ID, Delta: 10},
		{TeamID: b.ID, Delta: -3},
	})
	require.NoError(t, err)
	require.Len(t, updated, 2)
	assert.Equal(t, 10, updated[0].TotalScore)
	assert.Equal(t, 2, updated[1].TotalScore)
}

func TestApplyDeltas_MidBatchFailureReportsApplied(t *testing.T) {
	repo := newFakeRepo()
	a := repo.addTeam("Acromantulas", domain.HouseSlytherin, 0)
	b := repo.addTeam("Bowtruckles", domain.HouseGryffindor, 0)
	repo.deltaFailOn = 2
	repo.deltaErr = errors.New("connection reset")
	ledger := NewScoreLedgerService(repo, nil)

	updated, err := ledger.ApplyDeltas(context.Background(), []DeltaEntry{
		{TeamID: a.ID, Delta: 7},
		{TeamID: b.ID, Delta: 7},
	})
	require.Error(t, err)
	assert.True(t, domain.IsPartialFailure(err))

	var pe *domain.PartialError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Applied)
	require.Len(t, updated, 1)

	// The first delta stays committed; no rollback.
	stored, getErr := repo.GetTeam(context.Background(), a.ID)
	require.NoError(t, getErr)
	assert.Equal(t, 7, stored.TotalScore)
}

func TestApplyDeltas_FirstFailureIsPlainError(t *testing.T) {
	repo := newFakeRepo()
	a := repo.addTeam("Acromantulas", domain.HouseSlytherin, 0)
	repo.deltaFailOn = 1
	repo.deltaErr = errors.New("connection reset")
	ledger := NewScoreLedgerService(repo, nil)

	_, err := ledger.ApplyDeltas(context.Background(), []DeltaEntry{{TeamID: a.ID, Delta: 7}})
	require.Error(t, err)
	assert.False(t, domain.IsPartialFailure(err), "nothing committed, so no partial marker")
}
