// Package domain contains the core tournament model: teams, rounds, result
// entries, house standings, the potion catalog and the activity log. It has no
// dependencies outside the standard library.
package domain

import "time"

// Team is identified by its unique name. TotalScore is adjusted only through
// score deltas; RoundScore is a transient per-round value and never
// authoritative. Teams are soft-deleted by flipping Active; Eliminated is set
// once by the elimination transition and not cleared through normal flow.
type Team struct {
	ID         int64      `json:"id"`
	Name       string     `json:"name"`
	House      House      `json:"house"`
	TotalScore int        `json:"total_score"`
	RoundScore int        `json:"round_score"`
	Rounds     []int      `json:"rounds"`
	Active     bool       `json:"active"`
	Eliminated bool       `json:"eliminated"`
	PotionID   *int64     `json:"potion_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// ParticipatesIn reports whether the team is tagged for the given round.
func (t *Team) ParticipatesIn(roundNumber int) bool {
	for _, n := range t.Rounds {
		if n == roundNumber {
			return true
		}
	}
	return false
}

// Round holds the authoritative per-round outcome log plus the single-winner
// pointer used by quaffle award/revert. At most one non-nil Winner at a time.
type Round struct {
	ID        string    `json:"id"`
	Number    int       `json:"number"`
	Winner    *House    `json:"winner"`
	Approved  bool      `json:"approved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResultEntry is the tagged union of the two per-round result shapes. Kind
// selects which fields are meaningful: KindSingle uses TeamID and Rank,
// KindPaired uses TeamIDs and PotionID. Points and Time apply to both.
type ResultEntry struct {
	Kind     RoundKind `json:"kind"`
	TeamID   int64     `json:"team_id,omitempty"`
	Rank     int       `json:"rank,omitempty"`
	TeamIDs  [2]int64  `json:"team_ids,omitempty"`
	PotionID *int64    `json:"potion_id,omitempty"`
	Points   int       `json:"points"`
	Time     float64   `json:"time"`
}

// Validate checks the entry against the variant the round declares.
func (e *ResultEntry) Validate(expected RoundKind) error {
	if e.Kind != expected {
		return NewValidationError("kind", "result shape does not match the round's declared variant")
	}
	switch e.Kind {
	case KindSingle:
		if e.TeamID == 0 {
			return NewValidationError("team_id", "required for single-team results")
		}
	case KindPaired:
		if e.TeamIDs[0] == 0 || e.TeamIDs[1] == 0 {
			return NewValidationError("team_ids", "two teams required for paired results")
		}
	default:
		return NewValidationError("kind", "unknown result kind")
	}
	return nil
}

// Teams returns the team ids the entry credits, one or two depending on kind.
func (e *ResultEntry) Teams() []int64 {
	if e.Kind == KindPaired {
		return []int64{e.TeamIDs[0], e.TeamIDs[1]}
	}
	return []int64{e.TeamID}
}

// RoundLock is the per-round admission-control flag. A missing record reads as
// locked; every mutating operation scoped to a round consults it first.
type RoundLock struct {
	RoundID   string    `json:"round"`
	Locked    bool      `json:"is_locked"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HouseStanding tracks a house's quaffle count (round wins) and its aggregate
// score, maintained imperatively alongside team totals.
type HouseStanding struct {
	House     House     `json:"house"`
	Quaffles  int       `json:"quaffles"`
	Points    int       `json:"points"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PotionStep is one (ingredient, hint) pair in a recipe.
type PotionStep struct {
	Ingredient string `json:"ingredient"`
	Hint       string `json:"hint"`
}

// PotionRecipe is a catalog entry chosen by teams during the potion round.
// Deletion is blocked while any team references it.
type PotionRecipe struct {
	ID        int64        `json:"id"`
	Name      string       `json:"name"`
	Steps     []PotionStep `json:"steps"`
	Uses      int          `json:"uses"`
	CreatedAt time.Time    `json:"created_at"`
}

// ActivityEntry is an append-only record of an administrative action. Entries
// are never mutated or deleted; the log is purely diagnostic.
type ActivityEntry struct {
	ID         int64          `json:"id"`
	Message    string         `json:"message"`
	ActorEmail string         `json:"actor_email"`
	Round      *int           `json:"round,omitempty"`
	Points     *int           `json:"points,omitempty"`
	Meta       map[string]any `json:"meta,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
}
