package api

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/middleware"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// MealGenerator resolves generation requests; *service.Pipeline implements it
type MealGenerator interface {
	Generate(ctx context.Context, req types.MealGenerationRequest) types.MealGenerationResponse
}

// MealHandler handles meal generation requests
type MealHandler struct {
	generator MealGenerator
}

// NewMealHandler creates a new MealHandler instance
func NewMealHandler(generator MealGenerator) *MealHandler {
	return &MealHandler{generator: generator}
}

// RegisterRoutes registers the meal routes. Extra handlers (rate limiting)
// run before Generate.
func (h *MealHandler) RegisterRoutes(router *gin.RouterGroup, middlewares ...gin.HandlerFunc) {
	meals := router.Group("/meals")
	{
		meals.POST("/generate", append(middlewares, h.Generate)...)
	}
}

// Generate handles POST /meals/generate. The user id is taken from the
// bearer token only; a user_id in the body is ignored.
func (h *MealHandler) Generate(c *gin.Context) {
	var req types.MealGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.MealGenerationResponse{Success: false, Error: err.Error()})
		return
	}
	req.UserID = middleware.UserID(c)

	if _, err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, types.MealGenerationResponse{Success: false, Error: err.Error()})
		return
	}

	resp := h.generator.Generate(c.Request.Context(), req)
	if !resp.Success {
		log.Printf("[MealHandler] Generation failed for %s: %s", req.MealSlot, resp.Error)
		c.JSON(http.StatusInternalServerError, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
