package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"goblet/src/core/domain"
	"goblet/src/core/ports"
)

// PotionService manages the recipe catalog used by the potion round's scoring
// flow. Deletion is guarded against recipes still referenced by a team.
type PotionService struct {
	repo ports.TournamentRepository
	gate *LockGateService
	log  *slog.Logger
}

func NewPotionService(repo ports.TournamentRepository, gate *LockGateService, log *slog.Logger) *PotionService {
	return &PotionService{repo: repo, gate: gate, log: log}
}

// Create adds a recipe. Duplicate names are a conflict.
func (s *PotionService) Create(ctx context.Context, actor domain.Actor, name string, steps []domain.PotionStep) (*domain.PotionRecipe, error) {
	if err := requireMutate(actor, domain.PotionRound); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, domain.NewValidationError("name", "recipe name is required")
	}
	if len(steps) == 0 {
		return nil, domain.NewValidationError("steps", "at least one ingredient is required")
	}
	for _, st := range steps {
		if st.Ingredient == "" {
			return nil, domain.NewValidationError("steps", "ingredient name cannot be empty")
		}
	}

	recipe, err := s.repo.CreatePotion(ctx, name, steps)
	if err != nil {
		return nil, err
	}
	recordActivity(ctx, s.repo, s.log, domain.ActivityEntry{
		Message:    fmt.Sprintf("potion recipe %q created", name),
		ActorEmail: actor.Email,
	})
	return recipe, nil
}

// List returns the catalog.
func (s *PotionService) List(ctx context.Context) ([]domain.PotionRecipe, error) {
	return s.repo.ListPotions(ctx)
}

// Choose assigns a recipe to a team for the potion round and bumps the
// recipe's usage counter. Gated by the potion round's lock.
func (s *PotionService) Choose(ctx context.Context, actor domain.Actor, teamID, potionID int64) error {
	if err := requireMutate(actor, domain.PotionRound); err != nil {
		return err
	}
	if err := s.gate.RequireUnlocked(ctx, domain.RoundID(domain.PotionRound)); err != nil {
		return err
	}
	if _, err := s.repo.GetPotion(ctx, potionID); err != nil {
		return err
	}
	if _, err := s.repo.GetTeam(ctx, teamID); err != nil {
		return err
	}
	if err := s.repo.SetTeamPotion(ctx, teamID, &potionID); err != nil {
		return err
	}
	return s.repo.IncrementPotionUses(ctx, potionID)
}

// Delete removes a recipe unless a team currently references it. The guard is
// a conditional delete at the storage layer, not a read-then-write, so a
// concurrent Choose cannot slip past it.
func (s *PotionService) Delete(ctx context.Context, actor domain.Actor, potionID int64) error {
	if err := requireMutate(actor, domain.PotionRound); err != nil {
		return err
	}
	recipe, err := s.repo.GetPotion(ctx, potionID)
	if err != nil {
		return err
	}

	ok, err := s.repo.DeletePotionIfUnused(ctx, potionID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewConflictError(fmt.Sprintf("recipe %q is in use by a team", recipe.Name))
	}

	recordActivity(ctx, s.repo, s.log, domain.ActivityEntry{
		Message:    fmt.Sprintf("potion recipe %q deleted", recipe.Name),
		ActorEmail: actor.Email,
	})
	return nil
}
