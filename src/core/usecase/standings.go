package usecase

import (
	"context"
	"log/slog"

	"goblet/src/core/domain"
	"goblet/src/core/ports"
)

// StandingsService is the read surface over house standings.
type StandingsService struct {
	repo ports.TournamentRepository
	log  *slog.Logger
}

func NewStandingsService(repo ports.TournamentRepository, log *slog.Logger) *StandingsService {
	return &StandingsService{repo: repo, log: log}
}

// List returns standings ordered by quaffles, then aggregate points.
func (s *StandingsService) List(ctx context.Context) ([]domain.HouseStanding, error) {
	return s.repo.ListStandings(ctx)
}
