package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/hub"
)

// HubHandler lists the registered diet hubs
type HubHandler struct {
	registry *hub.Registry
}

func NewHubHandler(registry *hub.Registry) *HubHandler {
	return &HubHandler{registry: registry}
}

func (h *HubHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/hubs", h.List)
}

// List handles GET /hubs
func (h *HubHandler) List(c *gin.Context) {
	registered := h.registry.Types()
	out := make([]string, 0, len(registered))
	for _, t := range registered {
		out = append(out, string(t))
	}
	c.JSON(http.StatusOK, gin.H{"hubs": out})
}
