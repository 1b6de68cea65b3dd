package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"goblet/src/app/http/response"
	"goblet/src/app/middleware"
	"goblet/src/core/usecase"
)

// StandingsHandler serves house standings, the activity log and the
// reconciliation pass.
type StandingsHandler struct {
	standings  *usecase.StandingsService
	activity   *usecase.ActivityService
	reconciler *usecase.ReconcilerService
}

func NewStandingsHandler(standings *usecase.StandingsService, activity *usecase.ActivityService, reconciler *usecase.ReconcilerService) *StandingsHandler {
	return &StandingsHandler{standings: standings, activity: activity, reconciler: reconciler}
}

// List returns house standings: GET /standings.
func (h *StandingsHandler) List(c *gin.Context) {
	standings, err := h.standings.List(c.Request.Context())
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"standings": standings})
}

// Activity returns the newest activity entries: GET /activity?limit=N.
func (h *StandingsHandler) Activity(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "invalid limit", middleware.GetRequestID(c))
			return
		}
		limit = n
	}
	entries, err := h.activity.List(c.Request.Context(), middleware.GetActor(c), limit)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"activity": entries})
}

// Reconcile recomputes totals from the result log: POST /reconcile.
func (h *StandingsHandler) Reconcile(c *gin.Context) {
	report, err := h.reconciler.Reconcile(c.Request.Context(), middleware.GetActor(c))
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, report)
}
