package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"goblet/src/core/domain"
	"goblet/src/core/ports"
)

// HouseCreditService awards and revokes the per-round quaffle. Award and
// revert deliberately mirror each other as inverse operations: the quaffle
// counter is the house's round-win tally, the round's winner field tracks
// which single house currently holds the win.
type HouseCreditService struct {
	repo ports.TournamentRepository
	gate *LockGateService
	log  *slog.Logger
}

func NewHouseCreditService(repo ports.TournamentRepository, gate *LockGateService, log *slog.Logger) *HouseCreditService {
	return &HouseCreditService{repo: repo, gate: gate, log: log}
}

// Award sets the round's winner to house and increments the house's quaffle
// count. The winner field is claimed with a conditional update (set only
// where null), so concurrent awards for the same round cannot both win; the
// loser gets a state conflict naming the current winner.
//
// The two writes are independent: if the counter increment fails after the
// winner was claimed, a PartialError is returned so the operator knows the
// round already points at the house.
func (s *HouseCreditService) Award(ctx context.Context, actor domain.Actor, house domain.House, roundID string) (*domain.HouseStanding, error) {
	number, err := domain.ParseRoundID(roundID)
	if err != nil {
		return nil, err
	}
	if !domain.ValidHouse(house) {
		return nil, domain.NewValidationError("house", fmt.Sprintf("unknown house %q", house))
	}
	if err := requireMutate(actor, number); err != nil {
		return nil, err
	}
	if err := s.gate.RequireUnlocked(ctx, roundID); err != nil {
		return nil, err
	}

	current, ok, err := s.repo.SetWinnerIfNone(ctx, roundID, house)
	if err != nil {
		return nil, err
	}
	if !ok {
		winner := "unknown"
		if current != nil {
			winner = string(*current)
		}
		return nil, domain.NewConflictError(fmt.Sprintf("round %s already won by %s", roundID, winner))
	}

	standing, err := s.repo.AddQuaffles(ctx, house, 1)
	if err != nil {
		return nil, &domain.PartialError{Applied: 1, Err: err}
	}

	recordActivity(ctx, s.repo, s.log, domain.ActivityEntry{
		Message:    fmt.Sprintf("quaffle awarded to %s", house),
		ActorEmail: actor.Email,
		Round:      &number,
	})
	return standing, nil
}

// Revert is the manual compensating action for Award. Unlike the award path's
// caller-trusted ancestor, it verifies the stored winner actually is the
// passed house before touching anything, so a caller mistake cannot decrement
// the wrong house's counter. The counter has no floor at zero.
func (s *HouseCreditService) Revert(ctx context.Context, actor domain.Actor, house domain.House, roundID string) error {
	number, err := domain.ParseRoundID(roundID)
	if err != nil {
		return err
	}
	if !domain.ValidHouse(house) {
		return domain.NewValidationError("house", fmt.Sprintf("unknown house %q", house))
	}
	if err := requireMutate(actor, number); err != nil {
		return err
	}
	if err := s.gate.RequireUnlocked(ctx, roundID); err != nil {
		return err
	}

	round, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		return err
	}
	if round.Winner == nil {
		return domain.NewConflictError(fmt.Sprintf("round %s has no winner to revert", roundID))
	}
	if *round.Winner != house {
		return domain.NewConflictError(fmt.Sprintf("round %s is held by %s, not %s", roundID, *round.Winner, house))
	}

	ok, err := s.repo.ClearWinner(ctx, roundID, house)
	if err != nil {
		return err
	}
	if !ok {
		// Winner changed between the read and the conditional clear.
		return domain.NewConflictError(fmt.Sprintf("round %s winner changed concurrently", roundID))
	}

	if _, err := s.repo.AddQuaffles(ctx, house, -1); err != nil {
		return &domain.PartialError{Applied: 1, Err: err}
	}

	recordActivity(ctx, s.repo, s.log, domain.ActivityEntry{
		Message:    fmt.Sprintf("quaffle reverted from %s", house),
		ActorEmail: actor.Email,
		Round:      &number,
	})
	return nil
}
