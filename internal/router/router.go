package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/alchemorsel-mealgen/backend/config"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/api"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by SetupRouter
type Handlers struct {
	Meals  *api.MealHandler
	Hubs   *api.HubHandler
	Health *api.HealthHandler
}

// SetupRouter configures the application routes. limiter may be nil.
func SetupRouter(cfg *config.Config, h Handlers, validator middleware.TokenValidator, limiter *middleware.RateLimiter) *gin.Engine {
	if cfg.Env == config.Production {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger(), middleware.ErrorHandler(), middleware.CORS(cfg.CORSOrigins))

	if h.Health != nil {
		h.Health.RegisterRoutes(router)
	}

	v1 := router.Group("/api/v1")
	v1.Use(middleware.OptionalAuth(validator))
	{
		if h.Hubs != nil {
			h.Hubs.RegisterRoutes(v1)
		}
		if h.Meals != nil {
			var limits []gin.HandlerFunc
			if limiter != nil {
				limits = append(limits, limiter.RateLimitMiddleware())
			}
			h.Meals.RegisterRoutes(v1, limits...)
		}
	}

	return router
}
