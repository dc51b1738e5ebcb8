package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-mealgen/backend/config"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/api"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/hub"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/middleware"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/router"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/testhelpers/mocks"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:                   config.Test,
		ServerHost:            "127.0.0.1",
		ServerPort:            "0",
		CORSOrigins:           []string{"*"},
		AITimeout:             30 * time.Second,
		ImageTimeout:          60 * time.Second,
		MaxGenerationAttempts: 3,
	}
}

func TestNew(t *testing.T) {
	cfg := testConfig()
	srv := New(cfg, http.NotFoundHandler())
	assert.Equal(t, "127.0.0.1:0", srv.Addr())
	assert.Equal(t, 160*time.Second, srv.http.WriteTimeout)
	require.NoError(t, srv.Shutdown(context.Background()))
}

func TestRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()

	registry := hub.NewRegistry()
	registry.RegisterDefaults(nil)
	gen := new(mocks.MockMealGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return(types.MealGenerationResponse{
		Success: true, Meal: &types.UnifiedMeal{Name: "Cod and Greens"}, Source: types.ProvenanceAI,
	})
	limiter := middleware.NewRateLimiter(nil, middleware.RateLimitConfig{Window: time.Minute, Limit: 1})

	engine := router.SetupRouter(cfg, router.Handlers{
		Meals: api.NewMealHandler(gen),
		Hubs:  api.NewHubHandler(registry),
		Health: api.NewHealthHandler(map[string]api.HealthCheck{
			"database": func(ctx context.Context) error { return nil },
		}),
	}, middleware.NewJWTValidator("secret"), limiter)
	srv := New(cfg, engine)

	w := httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.http.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/hubs", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	body := `{"meal_slot":"dinner","input":{"text":"fish"}}`
	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/meals/generate", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w = httptest.NewRecorder()
		srv.http.Handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
	gen.AssertNumberOfCalls(t, "Generate", 1)
}
