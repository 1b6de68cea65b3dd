package handler

import (
	"github.com/gin-gonic/gin"

	"goblet/src/app/http/dto"
	"goblet/src/app/http/response"
	"goblet/src/app/middleware"
	"goblet/src/core/domain"
	"goblet/src/core/usecase"
)

// PotionHandler exposes the recipe catalog.
type PotionHandler struct {
	potions *usecase.PotionService
}

func NewPotionHandler(potions *usecase.PotionService) *PotionHandler {
	return &PotionHandler{potions: potions}
}

// Create adds a recipe: POST /potions.
func (h *PotionHandler) Create(c *gin.Context) {
	var req dto.PotionCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}
	steps := make([]domain.PotionStep, len(req.Steps))
	for i, s := range req.Steps {
		steps[i] = domain.PotionStep{Ingredient: s.Ingredient, Hint: s.Hint}
	}
	recipe, err := h.potions.Create(c.Request.Context(), middleware.GetActor(c), req.Name, steps)
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.Created(c, recipe)
}

// List returns the catalog: GET /potions.
func (h *PotionHandler) List(c *gin.Context) {
	recipes, err := h.potions.List(c.Request.Context())
	if err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"potions": recipes})
}

// Choose assigns a recipe to a team: POST /potions/choose.
func (h *PotionHandler) Choose(c *gin.Context) {
	var req dto.PotionChooseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}
	if err := h.potions.Choose(c.Request.Context(), middleware.GetActor(c), req.TeamID, req.PotionID); err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"team_id": req.TeamID, "potion_id": req.PotionID})
}

// Delete removes a recipe unless a team references it: DELETE /potions {id}.
func (h *PotionHandler) Delete(c *gin.Context) {
	var req dto.PotionDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid payload", middleware.GetRequestID(c))
		return
	}
	if err := h.potions.Delete(c.Request.Context(), middleware.GetActor(c), req.ID); err != nil {
		response.FromDomainError(c, err, middleware.GetRequestID(c))
		return
	}
	response.OK(c, gin.H{"deleted_potion_id": req.ID})
}
