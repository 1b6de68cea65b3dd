package handler

import (
	"github.com/gin-gonic/gin"

	"goblet/src/app/http/dto"
	"goblet/src/app/http/response"
	"goblet/src/app/middleware"
	"goblet/src/core/usecase"
)

// TransitionHandler exposes the round transition (and round-5 elimination).
type TransitionHandler struct {
	elimination *usecase.EliminationService
}

func NewTransitionHandler(elimination *usecase.EliminationService) *TransitionHandler {
	return &TransitionHandler{elimination: elimination}
}

// StartRound tags participation and, at round 5, narrows the field:
// POST /start-round {round}.
func (h *TransitionHandler) StartRound(c *gin.Context) {
	var req dto.StartRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}
	report, err := h.elimination.StartRound(c.Request.Context(), middleware.GetActor(c), req.Round)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, report)
}
