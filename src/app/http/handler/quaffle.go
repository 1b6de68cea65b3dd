package handler

import (
	"github.com/gin-gonic/gin"

	"goblet/src/app/http/dto"
	"goblet/src/app/http/response"
	"goblet/src/app/middleware"
	"goblet/src/core/domain"
	"goblet/src/core/usecase"
	"goblet/src/infra/metrics"
)

// QuaffleHandler exposes the house credit engine.
type QuaffleHandler struct {
	credit *usecase.HouseCreditService
}

func NewQuaffleHandler(credit *usecase.HouseCreditService) *QuaffleHandler {
	return &QuaffleHandler{credit: credit}
}

// Award grants a round win to a house: POST /award-quaffle {house, round}.
func (h *QuaffleHandler) Award(c *gin.Context) {
	var req dto.QuaffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}
	standing, err := h.credit.Award(c.Request.Context(), middleware.GetActor(c), domain.House(req.House), req.Round)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	metrics.QuafflesAwarded.WithLabelValues(req.House).Inc()
	response.OK(c, standing)
}

// Revert withdraws a previously awarded round win: POST /revert-quaffle.
func (h *QuaffleHandler) Revert(c *gin.Context) {
	var req dto.QuaffleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}
	if err := h.credit.Revert(c.Request.Context(), middleware.GetActor(c), domain.House(req.House), req.Round); err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"reverted": true, "house": req.House, "round": req.Round})
}
