package service

import (
	"fmt"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// fallbackMeals are pre-vetted per slot: high protein, low carb, no starch
// and none of the terms any hub blocks
var fallbackMeals = map[types.MealSlot]types.UnifiedMeal{
	types.SlotBreakfast: {
		Name:        "Egg White Veggie Scramble with Turkey",
		Description: "Egg whites scrambled with lean ground turkey, spinach, peppers and mushrooms.",
		Ingredients: []types.Ingredient{
			{Name: "egg whites", Quantity: "250", Unit: "ml"},
			{Name: "lean ground turkey", Quantity: "85", Unit: "g"},
			{Name: "spinach", Quantity: "60", Unit: "g"},
			{Name: "red bell pepper", Quantity: "0.5", Unit: "whole"},
			{Name: "mushrooms", Quantity: "60", Unit: "g"},
			{Name: "olive oil", Quantity: "1", Unit: "tsp"},
		},
		Instructions: []string{
			"Brown the turkey in olive oil over medium heat.",
			"Add peppers and mushrooms and cook for 3 minutes.",
			"Pour in egg whites with the spinach and stir until just set.",
		},
		Calories: 380, Protein: 42, Carbs: 14, FibrousCarbs: 14, Fat: 12, Fiber: 5,
		CookTime: "15 minutes", Difficulty: "easy",
		Badges: []string{"high-protein", "low-carb"},
	},
	types.SlotLunch: {
		Name:        "Grilled Chicken and Greens Bowl",
		Description: "Grilled chicken breast over mixed greens, cucumber, tomato and avocado.",
		Ingredients: []types.Ingredient{
			{Name: "chicken breast", Quantity: "170", Unit: "g"},
			{Name: "mixed greens", Quantity: "90", Unit: "g"},
			{Name: "cucumber", Quantity: "0.5", Unit: "whole"},
			{Name: "cherry tomatoes", Quantity: "100", Unit: "g"},
			{Name: "avocado", Quantity: "0.25", Unit: "whole"},
			{Name: "lemon", Quantity: "0.5", Unit: "whole"},
		},
		Instructions: []string{
			"Grill the chicken for 6 minutes per side and slice.",
			"Toss greens, cucumber and tomatoes with a squeeze of lemon.",
			"Top with the chicken and sliced avocado.",
		},
		Calories: 390, Protein: 45, Carbs: 15, FibrousCarbs: 15, Fat: 14, Fiber: 8,
		CookTime: "20 minutes", Difficulty: "easy",
		Badges: []string{"high-protein", "low-carb"},
	},
	types.SlotDinner: {
		Name:        "Baked Cod with Broccoli and Cauliflower Rice",
		Description: "Lemon garlic cod baked with broccoli, served over cauliflower rice.",
		Ingredients: []types.Ingredient{
			{Name: "cod fillet", Quantity: "200", Unit: "g"},
			{Name: "broccoli", Quantity: "150", Unit: "g"},
			{Name: "cauliflower rice", Quantity: "150", Unit: "g"},
			{Name: "garlic", Quantity: "2", Unit: "cloves"},
			{Name: "olive oil", Quantity: "2", Unit: "tsp"},
			{Name: "lemon", Quantity: "0.5", Unit: "whole"},
		},
		Instructions: []string{
			"Season the cod with garlic, lemon and olive oil.",
			"Bake with the broccoli at 200C for 15 minutes.",
			"Steam the cauliflower rice and serve underneath.",
		},
		Calories: 400, Protein: 44, Carbs: 15, FibrousCarbs: 15, Fat: 12, Fiber: 7,
		CookTime: "25 minutes", Difficulty: "easy",
		Badges: []string{"high-protein", "low-carb"},
	},
	types.SlotSnack: {
		Name:        "Greek Yogurt Protein Cup",
		Description: "Plain nonfat Greek yogurt with whey, cinnamon and a few berries.",
		Ingredients: []types.Ingredient{
			{Name: "plain nonfat greek yogurt", Quantity: "250", Unit: "g"},
			{Name: "whey protein", Quantity: "15", Unit: "g"},
			{Name: "blueberries", Quantity: "30", Unit: "g"},
			{Name: "cinnamon", Quantity: "1", Unit: "pinch"},
		},
		Instructions: []string{
			"Stir the whey into the yogurt until smooth.",
			"Top with blueberries and cinnamon.",
		},
		Calories: 270, Protein: 45, Carbs: 14, FibrousCarbs: 14, Fat: 2, Fiber: 2,
		CookTime: "2 minutes", Difficulty: "easy",
		Badges: []string{"high-protein", "no-cook"},
	},
}

// FallbackMeal returns a copy of the deterministic meal for slot. Plural and
// alias forms are accepted.
func FallbackMeal(slot types.MealSlot) (*types.UnifiedMeal, error) {
	norm, err := types.NormalizeMealSlot(string(slot))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFallback, err)
	}
	meal, ok := fallbackMeals[norm]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoFallback, norm)
	}
	out := meal.Clone()
	out.MealSlot = norm
	out.Source = types.ProvenanceFallback
	out.ID = "fallback-" + string(norm)
	return out, nil
}
