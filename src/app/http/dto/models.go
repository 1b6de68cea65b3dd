// Package dto defines request payloads for the HTTP surface.
package dto

// LockRequest toggles a round's lock.
type LockRequest struct {
	Round    string `json:"round" binding:"required"`
	IsLocked *bool  `json:"is_locked" binding:"required"`
}

// TeamEntry is one team in a bulk upsert. Score is a delta, not an absolute
// total.
type TeamEntry struct {
	Name       string `json:"name" binding:"required"`
	House      string `json:"house" binding:"required"`
	Score      int    `json:"score"`
	RoundScore *int   `json:"round_score"`
}

// TeamsUpsertRequest bulk-upserts teams for a round.
type TeamsUpsertRequest struct {
	Round string      `json:"round" binding:"required"`
	Teams []TeamEntry `json:"teams" binding:"required"`
}

// TeamDeleteRequest soft-deletes a team.
type TeamDeleteRequest struct {
	ID int64 `json:"id" binding:"required"`
}

// ResultEntry is one row of a round results submission. Single-team rounds
// use team_id and rank; the paired round uses team_ids and potion_id.
type ResultEntry struct {
	TeamID   int64   `json:"team_id"`
	Rank     int     `json:"rank"`
	TeamIDs  []int64 `json:"team_ids"`
	PotionID *int64  `json:"potion_id"`
	Points   int     `json:"points"`
	Time     float64 `json:"time"`
}

// RecordResultsRequest replaces a round's results.
type RecordResultsRequest struct {
	Results  []ResultEntry `json:"results" binding:"required"`
	Approved bool          `json:"approved"`
}

// QuaffleRequest awards or reverts a round win.
type QuaffleRequest struct {
	House string `json:"house" binding:"required"`
	Round string `json:"round" binding:"required"`
}

// StartRoundRequest triggers the round transition.
type StartRoundRequest struct {
	Round string `json:"round" binding:"required"`
}

// PotionStep is one (ingredient, hint) pair.
type PotionStep struct {
	Ingredient string `json:"ingredient" binding:"required"`
	Hint       string `json:"hint"`
}

// PotionCreateRequest adds a recipe to the catalog.
type PotionCreateRequest struct {
	Name  string       `json:"name" binding:"required"`
	Steps []PotionStep `json:"steps" binding:"required"`
}

// PotionDeleteRequest removes a recipe (blocked while in use).
type PotionDeleteRequest struct {
	ID int64 `json:"id" binding:"required"`
}

// PotionChooseRequest assigns a recipe to a team.
type PotionChooseRequest struct {
	TeamID   int64 `json:"team_id" binding:"required"`
	PotionID int64 `json:"potion_id" binding:"required"`
}
