package service

import (
	"context"
	"errors"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

var (
	// ErrMalformedOutput marks a generator reply that could not be parsed into a meal
	ErrMalformedOutput = errors.New("malformed generator output")
	// ErrNoFallback means no fallback meal is registered for a slot
	ErrNoFallback = errors.New("no fallback meal for slot")
	// ErrCacheMiss is returned by MealCache.Get when nothing is stored under a key
	ErrCacheMiss = errors.New("meal cache miss")
)

// TextRequest is one prompt sent to a text generator
type TextRequest struct {
	SystemPrompt string
	UserPrompt   string
}

// TextGenerator produces a structured meal reply from a prompt
type TextGenerator interface {
	Generate(ctx context.Context, req TextRequest) (string, error)
}

// ImageRequest describes the photo to generate for an accepted meal
type ImageRequest struct {
	Subject     string
	Description string
	Style       string
	MealSlot    types.MealSlot
}

// ImageGenerator returns an image URL for a meal
type ImageGenerator interface {
	GenerateMealImage(ctx context.Context, req ImageRequest) (string, error)
}

// MealCache stores accepted meals keyed by ingredient signature
type MealCache interface {
	Get(ctx context.Context, signature string) (*types.UnifiedMeal, error)
	Put(ctx context.Context, signature string, meal *types.UnifiedMeal) error
}

// TemplateCatalog is the read-only curated meal catalog
type TemplateCatalog interface {
	FindCandidates(ctx context.Context, slot types.MealSlot, ingredients []string, limit int) ([]*types.UnifiedMeal, error)
}
