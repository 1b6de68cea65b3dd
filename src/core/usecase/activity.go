package usecase

import (
	"context"
	"log/slog"

	"goblet/src/core/domain"
	"goblet/src/core/ports"
)

// recordActivity appends to the activity log on a best-effort basis. A failed
// append must never block the primary operation, so the error is only logged.
func recordActivity(ctx context.Context, repo ports.TournamentRepository, log *slog.Logger, e domain.ActivityEntry) {
	if err := repo.AppendActivity(ctx, e); err != nil && log != nil {
		log.Warn("activity log append failed", "message", e.Message, "actor", e.ActorEmail, "err", err)
	}
}

// ActivityService exposes the append-only activity log to admins.
type ActivityService struct {
	repo ports.TournamentRepository
	log  *slog.Logger
}

func NewActivityService(repo ports.TournamentRepository, log *slog.Logger) *ActivityService {
	return &ActivityService{repo: repo, log: log}
}

// List returns the newest entries first, capped at limit.
func (s *ActivityService) List(ctx context.Context, actor domain.Actor, limit int) ([]domain.ActivityEntry, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}
	return s.repo.ListActivity(ctx, limit)
}
