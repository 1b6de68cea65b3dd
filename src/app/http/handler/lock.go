package handler

import (
	"github.com/gin-gonic/gin"

	"goblet/src/app/http/dto"
	"goblet/src/app/http/response"
	"goblet/src/app/middleware"
	"goblet/src/core/usecase"
)

// LockHandler exposes the round lock gate.
type LockHandler struct {
	gate *usecase.LockGateService
}

func NewLockHandler(gate *usecase.LockGateService) *LockHandler {
	return &LockHandler{gate: gate}
}

// Status reads a round's lock state: GET /round-status?round=round-1.
func (h *LockHandler) Status(c *gin.Context) {
	roundID := c.Query("round")
	if roundID == "" {
		response.BadRequest(c, "round query parameter is required", middleware.GetRequestID(c))
		return
	}
	lock, err := h.gate.Status(c.Request.Context(), roundID)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, lock)
}

// Set toggles a round's lock: POST /round-status {round, is_locked}.
func (h *LockHandler) Set(c *gin.Context) {
	var req dto.LockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}
	lock, err := h.gate.SetLocked(c.Request.Context(), middleware.GetActor(c), req.Round, *req.IsLocked)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, lock)
}
