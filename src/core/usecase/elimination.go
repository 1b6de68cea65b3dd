package usecase

import (
	"context"
	"log/slog"
	"math/rand"
	"sort"

	"goblet/src/core/domain"
	"goblet/src/core/ports"
)

// EliminationService runs the round-transition action. Most rounds only tag
// participation; the round-5 transition additionally narrows the field to a
// fixed target by ranked cumulative score and seeds standing rows for every
// house then in force.
type EliminationService struct {
	repo ports.TournamentRepository
	gate *LockGateService
	log  *slog.Logger

	// shuffle permutes the survivor slice. Swappable for deterministic tests.
	shuffle func(n int, swap func(i, j int))
}

func NewEliminationService(repo ports.TournamentRepository, gate *LockGateService, log *slog.Logger) *EliminationService {
	return &EliminationService{repo: repo, gate: gate, log: log, shuffle: rand.Shuffle}
}

// TransitionReport summarizes a StartRound call.
type TransitionReport struct {
	Round        int            `json:"round"`
	Participants int            `json:"participants"`
	Eliminated   []string       `json:"eliminated"`
	SeededHouses []domain.House `json:"seeded_houses,omitempty"`
}

// StartRound tags currently-active teams as participating in the round
// (idempotent). For the elimination round, teams beyond the survival target
// are cut lowest-total-first; ties at the cutoff fall to stored order after
// the stable ascending sort. Survivors are shuffled before tagging, purely to
// randomize subsequent pairing; the shuffle has no scoring effect.
func (s *EliminationService) StartRound(ctx context.Context, actor domain.Actor, roundID string) (*TransitionReport, error) {
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

	teams, err := s.repo.ListTeams(ctx, ports.TeamFilter{ActiveOnly: true})
	if err != nil {
		return nil, err
	}

	report := &TransitionReport{Round: number, Eliminated: []string{}}
	survivors := teams

	if number == domain.EliminationRound {
		if len(teams) > domain.EliminationTarget {
			sort.SliceStable(teams, func(i, j int) bool {
				return teams[i].TotalScore < teams[j].TotalScore
			})
			cut := teams[:len(teams)-domain.EliminationTarget]
			survivors = teams[len(teams)-domain.EliminationTarget:]

			ids := make([]int64, len(cut))
			for i, t := range cut {
				ids[i] = t.ID
				report.Eliminated = append(report.Eliminated, t.Name)
			}
			if err := s.repo.EliminateTeams(ctx, ids); err != nil {
				return nil, err
			}
		}

		s.shuffle(len(survivors), func(i, j int) {
			survivors[i], survivors[j] = survivors[j], survivors[i]
		})

		for _, house := range domain.HousesAt(number) {
			if err := s.repo.SeedStanding(ctx, house); err != nil {
				return nil, err
			}
			report.SeededHouses = append(report.SeededHouses, house)
		}
	}

	ids := make([]int64, len(survivors))
	for i, t := range survivors {
		ids[i] = t.ID
	}
	if err := s.repo.TagParticipation(ctx, ids, number); err != nil {
		return nil, err
	}
	report.Participants = len(survivors)

	recordActivity(ctx, s.repo, s.log, domain.ActivityEntry{
		Message:    "round started",
		ActorEmail: actor.Email,
		Round:      &number,
		Meta:       map[string]any{"participants": report.Participants, "eliminated": len(report.Eliminated)},
	})
	return report, nil
}
