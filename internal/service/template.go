package service

import (
	"context"
	"fmt"
	"log"

	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/models"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/signature"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// GormTemplateCatalog reads curated meal templates
type GormTemplateCatalog struct {
	db *gorm.DB
}

// NewGormTemplateCatalog creates a catalog over db
func NewGormTemplateCatalog(db *gorm.DB) *GormTemplateCatalog {
	return &GormTemplateCatalog{db: db}
}

// FindCandidates returns up to limit templates for slot. On PostgreSQL rows
// are ordered by embedding distance to the ingredient set; elsewhere any
// template sharing a normalized ingredient key is returned.
func (c *GormTemplateCatalog) FindCandidates(ctx context.Context, slot types.MealSlot, ingredients []string, limit int) ([]*types.UnifiedMeal, error) {
	if limit <= 0 {
		limit = 10
	}
	keys := signature.NormalizeIngredients(ingredients)

	query := c.db.WithContext(ctx).Model(&models.MealTemplate{}).Where("meal_slot = ?", string(slot))
	if len(keys) > 0 {
		if c.db.Dialector.Name() == "postgres" {
			vec := pgvector.NewVector(signature.Embedding(ingredients))
			query = query.Order(clause.OrderBy{
				Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
			})
		} else {
			// Fallback to keyword search for non-PostgreSQL databases
			cond := c.db.Where("ingredient_keys LIKE ?", "%\""+keys[0]+"\"%")
			for _, k := range keys[1:] {
				cond = cond.Or("ingredient_keys LIKE ?", "%\""+k+"\"%")
			}
			query = query.Where(cond)
		}
	}

	var rows []models.MealTemplate
	if err := query.Limit(limit).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query meal templates: %w", err)
	}

	meals := make([]*types.UnifiedMeal, 0, len(rows))
	for i := range rows {
		meal, err := rows[i].ToMeal()
		if err != nil {
			log.Printf("[TemplateCatalog] Skipping template %s: %v", rows[i].ID, err)
			continue
		}
		meals = append(meals, meal)
	}
	return meals, nil
}

// BestTemplateMatch picks the candidate with the highest ingredient
// similarity at or above threshold, excluding names in exclude
func BestTemplateMatch(candidates []*types.UnifiedMeal, ingredients []string, threshold float64, exclude map[string]bool) (*types.UnifiedMeal, float64) {
	var best *types.UnifiedMeal
	bestScore := 0.0
	for _, cand := range candidates {
		if exclude[normalizeName(cand.Name)] {
			continue
		}
		score := signature.Jaccard(ingredients, cand.IngredientNames())
		if score >= threshold && score > bestScore {
			best, bestScore = cand, score
		}
	}
	return best, bestScore
}
