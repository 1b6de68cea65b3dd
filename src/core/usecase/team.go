package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"goblet/src/core/domain"
	"goblet/src/core/ports"
)

// TeamService covers team identity: bulk upsert (including the scoring path,
// whose deltas flow through the Score Ledger), filtered listing and soft
// deletion. Teams are never hard-deleted.
type TeamService struct {
	repo   ports.TournamentRepository
	ledger *ScoreLedgerService
	gate   *LockGateService
	log    *slog.Logger
}

func NewTeamService(repo ports.TournamentRepository, ledger *ScoreLedgerService, gate *LockGateService, log *slog.Logger) *TeamService {
	return &TeamService{repo: repo, ledger: ledger, gate: gate, log: log}
}

// TeamScoreEntry is one team in a bulk upsert. Score is a delta ($inc
// semantics), never an absolute set.
type TeamScoreEntry struct {
	Name       string
	House      domain.House
	Score      int
	RoundScore *int
}

// BulkUpsert creates or updates teams for a round, then applies any score
// deltas through the ledger. The two phases are independent per-team writes;
// a failure partway through surfaces as a partial failure rather than rolling
// back committed updates.
func (s *TeamService) BulkUpsert(ctx context.Context, actor domain.Actor, roundID string, entries []TeamScoreEntry) ([]domain.Team, error) {
	number, err := domain.ParseRoundID(roundID)
	if err != nil {
		return nil, err
	}
	if err := requireMutate(actor, number); err != nil {
		return nil, err
	}
	if err := s.gate.RequireUnlocked(ctx, roundID); err != nil {
		return nil, err
	}

	// Validate the whole batch before the first write so a bad entry cannot
	// leave earlier upserts committed.
	for _, e := range entries {
		if e.Name == "" {
			return nil, domain.NewValidationError("name", "team name is required")
		}
		if !domain.ValidHouse(e.House) {
			return nil, domain.NewValidationError("house", fmt.Sprintf("unknown house %q", e.House))
		}
	}

	teams := make([]domain.Team, 0, len(entries))
	deltas := make([]DeltaEntry, 0, len(entries))
	totalPoints := 0
	for i, e := range entries {
		team, err := s.repo.UpsertTeam(ctx, ports.TeamUpsert{
			Name:       e.Name,
			House:      e.House,
			RoundScore: e.RoundScore,
			Round:      number,
		})
		if err != nil {
			if i == 0 {
				return nil, err
			}
			return teams, &domain.PartialError{Applied: i, Err: err}
		}
		teams = append(teams, *team)
		if e.Score != 0 {
			deltas = append(deltas, DeltaEntry{TeamID: team.ID, Delta: e.Score})
			totalPoints += e.Score
		}
	}

	updated, err := s.ledger.ApplyDeltas(ctx, deltas)
	byID := make(map[int64]domain.Team, len(updated))
	for _, t := range updated {
		byID[t.ID] = t
	}
	for i := range teams {
		if t, ok := byID[teams[i].ID]; ok {
			teams[i] = t
		}
	}
	if err != nil {
		return teams, err
	}

	recordActivity(ctx, s.repo, s.log, domain.ActivityEntry{
		Message:    "teams upserted",
		ActorEmail: actor.Email,
		Round:      &number,
		Points:     &totalPoints,
		Meta:       map[string]any{"teams": len(entries)},
	})
	return teams, nil
}

// GetByName resolves a team by its unique name.
func (s *TeamService) GetByName(ctx context.Context, name string) (*domain.Team, error) {
	if name == "" {
		return nil, domain.NewValidationError("name", "team name is required")
	}
	return s.repo.GetTeamByName(ctx, name)
}

// List returns teams matching the filter.
func (s *TeamService) List(ctx context.Context, f ports.TeamFilter) ([]domain.Team, error) {
	if f.House != "" && !domain.ValidHouse(f.House) {
		return nil, domain.NewValidationError("house", fmt.Sprintf("unknown house %q", f.House))
	}
	return s.repo.ListTeams(ctx, f)
}

// SoftDelete flips the team's active flag. Admin-only: removing a team is not
// scoped to any one round.
func (s *TeamService) SoftDelete(ctx context.Context, actor domain.Actor, teamID int64) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	team, err := s.repo.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if err := s.repo.DeactivateTeam(ctx, teamID); err != nil {
		return err
	}
	recordActivity(ctx, s.repo, s.log, domain.ActivityEntry{
		Message:    fmt.Sprintf("team %s removed", team.Name),
		ActorEmail: actor.Email,
	})
	return nil
}
