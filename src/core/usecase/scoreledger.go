package usecase

import (
	"context"
	"log/slog"

	"goblet/src/core/domain"
	"goblet/src/core/ports"
)

// ScoreLedgerService is the increment/decrement engine for team totals. It
// does not re-check the round lock: callers confirm the gate is open before
// submitting deltas.
type ScoreLedgerService struct {
	repo ports.TournamentRepository
	log  *slog.Logger
}

func NewScoreLedgerService(repo ports.TournamentRepository, log *slog.Logger) *ScoreLedgerService {
	return &ScoreLedgerService{repo: repo, log: log}
}

// DeltaEntry is one team's point adjustment in a batch.
type DeltaEntry struct {
	TeamID int64
	Delta  int
}

// ApplyDelta adds delta (may be negative) to the team's cumulative total and
// returns the updated team. The result is not bounded; net-negative totals
// are accepted behavior, not an error.
func (s *ScoreLedgerService) ApplyDelta(ctx context.Context, teamID int64, delta int) (*domain.Team, error) {
	team, err := s.repo.ApplyScoreDelta(ctx, teamID, delta)
	if err != nil {
		return nil, err
	}
	if s.log != nil {
		s.log.Debug("score delta applied", "team_id", teamID, "delta", delta, "total", team.TotalScore)
	}
	return team, nil
}

// ApplyDeltas applies each entry as an independent per-team update. There is
// no cross-team atomicity: a mid-batch failure returns a PartialError naming
// how many deltas already committed, so the operator knows a blind retry
// would double-apply those.
func (s *ScoreLedgerService) ApplyDeltas(ctx context.Context, entries []DeltaEntry) ([]domain.Team, error) {
	updated := make([]domain.Team, 0, len(entries))
	for _, e := range entries {
		team, err := s.repo.ApplyScoreDelta(ctx, e.TeamID, e.Delta)
		if err != nil {
			if len(updated) == 0 {
				return nil, err
			}
			return updated, &domain.PartialError{Applied: len(updated), Err: err}
		}
		updated = append(updated, *team)
	}
	return updated, nil
}
