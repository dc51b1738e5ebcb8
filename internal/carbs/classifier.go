// Package carbs derives the starchy/fibrous carbohydrate split for a meal from
// its ingredient text. It is the only place this split is computed.
package carbs

import (
	"math"
	"strings"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// Counts is the number of ingredients matching each keyword table
type Counts struct {
	Starchy int
	Fibrous int
}

// Classify scores each ingredient name against the keyword tables. An
// ingredient may count toward both sides.
func Classify(ingredients []string) Counts {
	var c Counts
	for _, raw := range ingredients {
		name := strings.ToLower(raw)
		if IsStarchy(name) {
			c.Starchy++
		}
		if matchesAny(name, fibrousKeywords) {
			c.Fibrous++
		}
	}
	return c
}

// IsStarchy reports whether a single ingredient name reads as a starch
func IsStarchy(name string) bool {
	name = strings.ToLower(name)
	for _, q := range starchyQualifiers {
		if strings.Contains(name, q) {
			return false
		}
	}
	for _, ex := range starchyExceptions {
		name = strings.ReplaceAll(name, ex, " ")
	}
	return matchesAny(name, starchyKeywords)
}

// StarchyShare returns the starchy fraction implied by the counts
func (c Counts) StarchyShare() float64 {
	total := c.Starchy + c.Fibrous
	if total == 0 {
		return DefaultStarchyShare
	}
	return float64(c.Starchy) / float64(total)
}

// EnforceCarbs fills in StarchyCarbs and FibrousCarbs when both are zero.
// A meal that already carries a split is returned untouched, so calling it
// twice is a no-op. The returned pointer is the same meal.
func EnforceCarbs(meal *types.UnifiedMeal) *types.UnifiedMeal {
	if meal == nil {
		return nil
	}
	if meal.StarchyCarbs != 0 || meal.FibrousCarbs != 0 || meal.Carbs <= 0 {
		return meal
	}

	share := Classify(meal.IngredientNames()).StarchyShare()
	total := math.Round(meal.Carbs)
	starchy := math.Round(meal.Carbs * share)
	if starchy > total {
		starchy = total
	}
	meal.StarchyCarbs = starchy
	meal.FibrousCarbs = total - starchy
	return meal
}

func matchesAny(name string, table map[string][]string) bool {
	for _, words := range table {
		for _, w := range words {
			if strings.Contains(name, w) {
				return true
			}
		}
	}
	return false
}
