package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/hub"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

type mockTextGenerator struct {
	mock.Mock
}

func (m *mockTextGenerator) Generate(ctx context.Context, req TextRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type mockImageGenerator struct {
	mock.Mock
}

func (m *mockImageGenerator) GenerateMealImage(ctx context.Context, req ImageRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) FindCandidates(ctx context.Context, slot types.MealSlot, ingredients []string, limit int) ([]*types.UnifiedMeal, error) {
	args := m.Called(ctx, slot, ingredients, limit)
	meals, _ := args.Get(0).([]*types.UnifiedMeal)
	return meals, args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, sig string) (*types.UnifiedMeal, error) {
	args := m.Called(ctx, sig)
	meal, _ := args.Get(0).(*types.UnifiedMeal)
	return meal, args.Error(1)
}

func (m *mockCache) Put(ctx context.Context, sig string, meal *types.UnifiedMeal) error {
	args := m.Called(ctx, sig, meal)
	return args.Error(0)
}

// stubStore is a fixed hub.ContextStore
type stubStore struct {
	glucose  *hub.GlucoseReading
	dose     *hub.MedicationDose
	diabetes *hub.DiabetesProfile
	health   *hub.HealthProfile
	err      error
}

func (s *stubStore) LatestGlucose(ctx context.Context, userID string) (*hub.GlucoseReading, error) {
	return s.glucose, s.err
}

func (s *stubStore) LatestMedicationDose(ctx context.Context, userID string) (*hub.MedicationDose, error) {
	return s.dose, s.err
}

func (s *stubStore) DiabetesProfile(ctx context.Context, userID string) (*hub.DiabetesProfile, error) {
	return s.diabetes, s.err
}

func (s *stubStore) HealthProfile(ctx context.Context, userID string) (*hub.HealthProfile, error) {
	return s.health, s.err
}
