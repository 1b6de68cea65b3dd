package handler

import (
	"github.com/gin-gonic/gin"

	"goblet/src/app/http/dto"
	"goblet/src/app/http/response"
	"goblet/src/app/middleware"
	"goblet/src/core/domain"
	"goblet/src/core/usecase"
)

// RoundHandler exposes the round result recorder.
type RoundHandler struct {
	results *usecase.RoundResultsService
}

func NewRoundHandler(results *usecase.RoundResultsService) *RoundHandler {
	return &RoundHandler{results: results}
}

// Record replaces a round's results: POST /rounds/:round_id.
func (h *RoundHandler) Record(c *gin.Context) {
	roundID := c.Param("round_id")
	var req dto.RecordResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}

	number, err := domain.ParseRoundID(roundID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	kind := domain.KindOf(number)

	entries := make([]domain.ResultEntry, len(req.Results))
	for i, e := range req.Results {
		entry := domain.ResultEntry{
			Kind:     kind,
			Points:   e.Points,
			Time:     e.Time,
			PotionID: e.PotionID,
		}
		switch kind {
		case domain.KindSingle:
			entry.TeamID = e.TeamID
			entry.Rank = e.Rank
		case domain.KindPaired:
			if len(e.TeamIDs) != 2 {
				response.ValidationError(c, "team_ids", "exactly two teams required", middleware.GetRequestID(c))
				return
			}
			entry.TeamIDs = [2]int64{e.TeamIDs[0], e.TeamIDs[1]}
		}
		entries[i] = entry
	}

	snap, err := h.results.Record(c.Request.Context(), middleware.GetActor(c), roundID, entries, req.Approved)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, snap)
}

// Get returns a round's resolved results and winner: GET /rounds/:round_id.
func (h *RoundHandler) Get(c *gin.Context) {
	snap, err := h.results.Get(c.Request.Context(), c.Param("round_id"))
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, snap)
}
