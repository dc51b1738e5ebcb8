// Package mocks holds testify doubles for the generation collaborators
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/service"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// MockTextGenerator is a mock service.TextGenerator
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, req service.TextRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockMealGenerator stands in for the pipeline behind the HTTP handlers
type MockMealGenerator struct {
	mock.Mock
}

func (m *MockMealGenerator) Generate(ctx context.Context, req types.MealGenerationRequest) types.MealGenerationResponse {
	args := m.Called(ctx, req)
	return args.Get(0).(types.MealGenerationResponse)
}

var _ service.TextGenerator = (*MockTextGenerator)(nil)
