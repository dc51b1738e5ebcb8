package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/models"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/testhelpers"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

func seedTemplate(t *testing.T, db *gorm.DB, name string, slot types.MealSlot, ingredients ...string) {
	t.Helper()
	meal := &types.UnifiedMeal{Name: name, MealSlot: slot, Protein: 40, Carbs: 10, Fat: 10, Calories: 300}
	for _, ing := range ingredients {
		meal.Ingredients = append(meal.Ingredients, types.Ingredient{Name: ing})
	}
	tmpl, err := models.TemplateFromMeal(meal)
	require.NoError(t, err)
	require.NoError(t, db.Create(tmpl).Error)
}

func TestGormTemplateCatalog_SQLite(t *testing.T) {
	db := testhelpers.SetupSQLite(t)
	seedTemplate(t, db, "Chicken Broccoli Plate", types.SlotLunch, "chicken breast", "broccoli")
	seedTemplate(t, db, "Salmon Salad", types.SlotLunch, "salmon", "mixed greens")
	seedTemplate(t, db, "Chicken Omelette", types.SlotBreakfast, "chicken breast", "eggs")

	catalog := NewGormTemplateCatalog(db)
	got, err := catalog.FindCandidates(context.Background(), types.SlotLunch, []string{"Chicken Breast", "spinach"}, 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Chicken Broccoli Plate", got[0].Name)
	assert.Equal(t, types.ProvenanceCatalog, got[0].Source)

	all, err := catalog.FindCandidates(context.Background(), types.SlotLunch, nil, 5)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGormTemplateCatalog_Postgres(t *testing.T) {
	db := testhelpers.SetupPostgres(t)
	seedTemplate(t, db, "Chicken Broccoli Plate", types.SlotLunch, "chicken breast", "broccoli")
	seedTemplate(t, db, "Salmon Salad", types.SlotLunch, "salmon", "mixed greens")

	catalog := NewGormTemplateCatalog(db)
	got, err := catalog.FindCandidates(context.Background(), types.SlotLunch, []string{"chicken breast", "broccoli"}, 5)
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, "Chicken Broccoli Plate", got[0].Name)
}

func TestBestTemplateMatch(t *testing.T) {
	near := &types.UnifiedMeal{Name: "Near", Ingredients: []types.Ingredient{{Name: "chicken breast"}, {Name: "broccoli"}, {Name: "garlic"}}}
	exact := &types.UnifiedMeal{Name: "Exact", Ingredients: []types.Ingredient{{Name: "chicken breast"}, {Name: "broccoli"}}}
	far := &types.UnifiedMeal{Name: "Far", Ingredients: []types.Ingredient{{Name: "tofu"}}}
	candidates := []*types.UnifiedMeal{near, far, exact}
	want := []string{"broccoli", "chicken breast"}

	best, score := BestTemplateMatch(candidates, want, 0.6, nil)
	assert.Same(t, exact, best)
	assert.Equal(t, 1.0, score)

	best, _ = BestTemplateMatch(candidates, want, 0.6, map[string]bool{"exact": true})
	assert.Same(t, near, best)

	best, _ = BestTemplateMatch([]*types.UnifiedMeal{far}, want, 0.6, nil)
	assert.Nil(t, best)
}
