package usecase

import (
	"context"
	"log/slog"

	"goblet/src/core/domain"
	"goblet/src/core/ports"
)

// LockGateService is the per-round admission gate. Every mutating operation
// scoped to a round consults it before acting; the check is advisory at the
// storage layer, so callers must not bypass it.
type LockGateService struct {
	repo ports.TournamentRepository
	log  *slog.Logger
}

func NewLockGateService(repo ports.TournamentRepository, log *slog.Logger) *LockGateService {
	return &LockGateService{repo: repo, log: log}
}

// Status reads the lock state for a round. A round with no lock record reads
// as locked (fail-closed).
func (s *LockGateService) Status(ctx context.Context, roundID string) (*domain.RoundLock, error) {
	if _, err := domain.ParseRoundID(roundID); err != nil {
		return nil, err
	}
	locked, err := s.repo.GetLock(ctx, roundID)
	if err != nil {
		return nil, err
	}
	return &domain.RoundLock{RoundID: roundID, Locked: locked}, nil
}

// SetLocked upserts the lock record. Only the admin or the round's head may
// toggle it.
func (s *LockGateService) SetLocked(ctx context.Context, actor domain.Actor, roundID string, locked bool) (*domain.RoundLock, error) {
	number, err := domain.ParseRoundID(roundID)
	if err != nil {
		return nil, err
	}
	if err := requireMutate(actor, number); err != nil {
		return nil, err
	}

	state, err := s.repo.SetLock(ctx, roundID, locked)
	if err != nil {
		return nil, err
	}

	msg := "round unlocked"
	if state {
		msg = "round locked"
	}
	recordActivity(ctx, s.repo, s.log, domain.ActivityEntry{
		Message:    msg,
		ActorEmail: actor.Email,
		Round:      &number,
	})

	return &domain.RoundLock{RoundID: roundID, Locked: state}, nil
}

// RequireUnlocked rejects with a lock conflict when the round is locked.
func (s *LockGateService) RequireUnlocked(ctx context.Context, roundID string) error {
	locked, err := s.repo.GetLock(ctx, roundID)
	if err != nil {
		return err
	}
	if locked {
		return domain.NewLockedError(roundID)
	}
	return nil
}
