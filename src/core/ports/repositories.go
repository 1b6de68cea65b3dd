// Package ports defines interfaces (ports) that connect core domain to infrastructure.
// These interfaces follow the ports and adapters (hexagonal) architecture pattern.
//
// Ports are defined here in the core layer, while implementations (adapters)
// live in src/infra/repo. This ensures the core has no dependency on infrastructure.
package ports

import (
	"context"

	"goblet/src/core/domain"
)

// Repository is the base interface for all repositories.
type Repository interface {
	// Health checks if the underlying storage is reachable.
	Health(ctx context.Context) error
}

// TeamUpsert is one entry of the bulk team upsert, keyed by name. Round, when
// non-zero, is added to the team's participation set. Score deltas are not
// part of the upsert; they flow through ApplyScoreDelta so the cumulative
// total is only ever adjusted by increments.
type TeamUpsert struct {
	Name       string
	House      domain.House
	RoundScore *int
	Round      int
}

// TeamFilter narrows ListTeams. Zero values mean "no filter".
type TeamFilter struct {
	Round             int
	House             domain.House
	ActiveOnly        bool
	IncludeEliminated bool
}

// TeamRef carries the display fields a resolved result entry needs.
type TeamRef struct {
	ID         int64        `json:"id"`
	Name       string       `json:"name"`
	House      domain.House `json:"house"`
	TotalScore int          `json:"total_score"`
}

// ResultRow is a stored result entry with team references resolved.
type ResultRow struct {
	Kind       domain.RoundKind `json:"kind"`
	Teams      []TeamRef        `json:"teams"`
	PotionID   *int64           `json:"potion_id,omitempty"`
	PotionName *string          `json:"potion_name,omitempty"`
	Points     int              `json:"points"`
	Time       float64          `json:"time"`
	Rank       int              `json:"rank,omitempty"`
}

// RoundSnapshot is the caller-facing view of a round: its resolved results
// plus the current winner. A round with no document yet snapshots as an empty
// result set, not an error.
type RoundSnapshot struct {
	RoundID  string           `json:"round"`
	Number   int              `json:"number"`
	Kind     domain.RoundKind `json:"kind"`
	Approved bool             `json:"approved"`
	Winner   *domain.House    `json:"winner"`
	Results  []ResultRow      `json:"results"`
}

// StoredResult pairs a raw result entry with the round it belongs to. Used by
// the reconciliation pass to recompute totals from the result log.
type StoredResult struct {
	RoundID string
	Entry   domain.ResultEntry
}

// TournamentRepository is a composite repository covering all tournament
// state. Single-row updates are atomic at the storage layer; multi-row
// sequences are composed by the usecases and carry documented
// partial-failure semantics instead of cross-row transactions.
type TournamentRepository interface {
	Repository

	// Teams
	UpsertTeam(ctx context.Context, u TeamUpsert) (*domain.Team, error)
	GetTeam(ctx context.Context, teamID int64) (*domain.Team, error)
	GetTeamByName(ctx context.Context, name string) (*domain.Team, error)
	ListTeams(ctx context.Context, f TeamFilter) ([]domain.Team, error)
	// ApplyScoreDelta adds delta to the team's cumulative total and returns
	// the updated team. The result is unbounded; negative totals are allowed.
	ApplyScoreDelta(ctx context.Context, teamID int64, delta int) (*domain.Team, error)
	SetTeamTotal(ctx context.Context, teamID int64, total int) error
	DeactivateTeam(ctx context.Context, teamID int64) error
	EliminateTeams(ctx context.Context, teamIDs []int64) error
	// TagParticipation adds roundNumber to each team's participation set,
	// idempotently.
	TagParticipation(ctx context.Context, teamIDs []int64, roundNumber int) error
	SetTeamPotion(ctx context.Context, teamID int64, potionID *int64) error

	// Round locks. GetLock reads as locked when no record exists.
	GetLock(ctx context.Context, roundID string) (bool, error)
	SetLock(ctx context.Context, roundID string, locked bool) (bool, error)

	// Rounds and results
	GetRound(ctx context.Context, roundID string) (*domain.Round, error)
	// ReplaceResults upserts the round document and replaces its results
	// wholesale (last-write-wins, no merge).
	ReplaceResults(ctx context.Context, roundID string, number int, entries []domain.ResultEntry, approved bool) error
	ListResults(ctx context.Context, roundID string) ([]ResultRow, error)
	ListAllResults(ctx context.Context) ([]StoredResult, error)
	// SetWinnerIfNone sets the round's winner only where none is set. When the
	// round already has a winner it is returned with ok=false and no write.
	SetWinnerIfNone(ctx context.Context, roundID string, house domain.House) (current *domain.House, ok bool, err error)
	// ClearWinner clears the round's winner only where it matches house.
	ClearWinner(ctx context.Context, roundID string, house domain.House) (ok bool, err error)

	// House standings
	SeedStanding(ctx context.Context, house domain.House) error
	AddQuaffles(ctx context.Context, house domain.House, delta int) (*domain.HouseStanding, error)
	SetStandingPoints(ctx context.Context, house domain.House, points int) error
	ListStandings(ctx context.Context) ([]domain.HouseStanding, error)

	// Potion catalog
	CreatePotion(ctx context.Context, name string, steps []domain.PotionStep) (*domain.PotionRecipe, error)
	GetPotion(ctx context.Context, potionID int64) (*domain.PotionRecipe, error)
	ListPotions(ctx context.Context) ([]domain.PotionRecipe, error)
	// DeletePotionIfUnused deletes the recipe only when no team references
	// it; ok=false means the recipe is in use and nothing was deleted.
	DeletePotionIfUnused(ctx context.Context, potionID int64) (ok bool, err error)
	IncrementPotionUses(ctx context.Context, potionID int64) error

	// Activity log (append-only)
	AppendActivity(ctx context.Context, e domain.ActivityEntry) error
	ListActivity(ctx context.Context, limit int) ([]domain.ActivityEntry, error)
}
