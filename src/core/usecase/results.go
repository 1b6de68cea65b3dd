package usecase

import (
	"context"
	"log/slog"

	"goblet/src/core/domain"
	"goblet/src/core/ports"
)

// RoundResultsService owns the authoritative per-round outcome log. Results
// are replaced wholesale on every submission; rank ordering is caller-assigned
// and never recomputed here.
type RoundResultsService struct {
	repo ports.TournamentRepository
	gate *LockGateService
	log  *slog.Logger
}

func NewRoundResultsService(repo ports.TournamentRepository, gate *LockGateService, log *slog.Logger) *RoundResultsService {
	return &RoundResultsService{repo: repo, gate: gate, log: log}
}

// Record upserts the round document and replaces its results with entries.
// Every entry must use the variant the round declares. The approved flag is a
// caller-facing distinction only; storage behavior is identical either way.
func (s *RoundResultsService) Record(ctx context.Context, actor domain.Actor, roundID string, entries []domain.ResultEntry, approved bool) (*ports.RoundSnapshot, error) {
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

	kind := domain.KindOf(number)
	for i := range entries {
		if err := entries[i].Validate(kind); err != nil {
			return nil, err
		}
	}

	if err := s.repo.ReplaceResults(ctx, roundID, number, entries, approved); err != nil {
		return nil, err
	}

	recordActivity(ctx, s.repo, s.log, domain.ActivityEntry{
		Message:    "round results recorded",
		ActorEmail: actor.Email,
		Round:      &number,
		Meta:       map[string]any{"entries": len(entries), "approved": approved},
	})

	return s.Get(ctx, roundID)
}

// Get returns the round with team references resolved to display fields. A
// round with no document yet returns an empty result set, not an error.
func (s *RoundResultsService) Get(ctx context.Context, roundID string) (*ports.RoundSnapshot, error) {
	number, err := domain.ParseRoundID(roundID)
	if err != nil {
		return nil, err
	}

	snap := &ports.RoundSnapshot{
		RoundID: roundID,
		Number:  number,
		Kind:    domain.KindOf(number),
		Results: []ports.ResultRow{},
	}

	round, err := s.repo.GetRound(ctx, roundID)
	if err != nil {
		if domain.IsNotFound(err) {
			return snap, nil
		}
		return nil, err
	}
	snap.Winner = round.Winner
	snap.Approved = round.Approved

	rows, err := s.repo.ListResults(ctx, roundID)
	if err != nil {
		return nil, err
	}
	snap.Results = rows
	return snap, nil
}
