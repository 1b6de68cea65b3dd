package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"goblet/src/app/http/dto"
	"goblet/src/app/http/response"
	"goblet/src/app/middleware"
	"goblet/src/core/domain"
	"goblet/src/core/ports"
	"goblet/src/core/usecase"
	"goblet/src/infra/metrics"
)

// TeamHandler covers team upserts, listing and soft deletion.
type TeamHandler struct {
	teams *usecase.TeamService
}

func NewTeamHandler(teams *usecase.TeamService) *TeamHandler {
	return &TeamHandler{teams: teams}
}

// Upsert bulk-upserts teams; score fields are deltas applied through the
// ledger: POST /teams.
func (h *TeamHandler) Upsert(c *gin.Context) {
	var req dto.TeamsUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}

	entries := make([]usecase.TeamScoreEntry, len(req.Teams))
	deltas := 0
	for i, t := range req.Teams {
		entries[i] = usecase.TeamScoreEntry{
			Name:       t.Name,
			House:      domain.House(t.House),
			Score:      t.Score,
			RoundScore: t.RoundScore,
		}
		if t.Score != 0 {
			deltas++
		}
	}

	teams, err := h.teams.BulkUpsert(c.Request.Context(), middleware.GetActor(c), req.Round, entries)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	metrics.ScoreDeltasApplied.Add(float64(deltas))
	response.OK(c, gin.H{"teams": teams})
}

// List filters teams by round participation and house, or resolves a single
// team by name: GET /teams?round=N&house=H or GET /teams?name=X.
func (h *TeamHandler) List(c *gin.Context) {
	if name := c.Query("name"); name != "" {
		team, err := h.teams.GetByName(c.Request.Context(), name)
		if err != nil {
			response.FromDomainError(c, err, middleware.GetRequestID(c))
			return
		}
		response.OK(c, gin.H{"teams": []domain.Team{*team}})
		return
	}

	f := ports.TeamFilter{ActiveOnly: c.Query("all") == ""}
	if raw := c.Query("round"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "invalid round number", middleware.GetRequestID(c))
			return
		}
		f.Round = n
	}
	f.House = domain.House(c.Query("house"))

	teams, err := h.teams.List(c.Request.Context(), f)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"teams": teams})
}

// Delete soft-deletes a team by id: DELETE /teams {id}.
func (h *TeamHandler) Delete(c *gin.Context) {
	var req dto.TeamDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}
	if err := h.teams.SoftDelete(c.Request.Context(), middleware.GetActor(c), req.ID); err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"deleted_team_id": req.ID})
}
