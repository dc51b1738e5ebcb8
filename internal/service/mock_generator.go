package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
)

type mockDish struct {
	Name        string
	Description string
	Ingredients []map[string]string
	Steps       []string
	Calories    float64
	Protein     float64
	Carbs       float64
	Fat         float64
	Fiber       float64
}

var mockDishes = []mockDish{
	{
		Name:        "Herb Chicken with Roasted Broccoli",
		Description: "Lemon herb chicken breast over roasted broccoli and peppers.",
		Ingredients: []map[string]string{
			{"name": "chicken breast", "quantity": "180", "unit": "g"},
			{"name": "broccoli", "quantity": "150", "unit": "g"},
			{"name": "red bell pepper", "quantity": "1", "unit": "whole"},
			{"name": "olive oil", "quantity": "1", "unit": "tsp"},
			{"name": "garlic", "quantity": "2", "unit": "cloves"},
		},
		Steps:    []string{"Season the chicken with herbs and garlic.", "Roast with the vegetables at 220C for 22 minutes."},
		Calories: 390, Protein: 46, Carbs: 14, Fat: 12, Fiber: 6,
	},
	{
		Name:        "Turkey and Spinach Skillet",
		Description: "Lean ground turkey wilted with spinach, zucchini and tomato.",
		Ingredients: []map[string]string{
			{"name": "lean ground turkey", "quantity": "170", "unit": "g"},
			{"name": "spinach", "quantity": "80", "unit": "g"},
			{"name": "zucchini", "quantity": "1", "unit": "medium"},
			{"name": "cherry tomatoes", "quantity": "100", "unit": "g"},
		},
		Steps:    []string{"Brown the turkey.", "Add zucchini and tomatoes, then fold in spinach until wilted."},
		Calories: 360, Protein: 42, Carbs: 12, Fat: 14, Fiber: 5,
	},
	{
		Name:        "Baked Salmon with Asparagus",
		Description: "Salmon fillet baked with asparagus, dill and lemon.",
		Ingredients: []map[string]string{
			{"name": "salmon fillet", "quantity": "150", "unit": "g"},
			{"name": "asparagus", "quantity": "150", "unit": "g"},
			{"name": "lemon", "quantity": "0.5", "unit": "whole"},
			{"name": "dill", "quantity": "1", "unit": "tbsp"},
		},
		Steps:    []string{"Lay salmon and asparagus on a tray.", "Bake at 200C for 14 minutes and finish with lemon and dill."},
		Calories: 410, Protein: 38, Carbs: 9, Fat: 18, Fiber: 4,
	},
}

// MockGenerator returns canned meal JSON without calling a provider.
// Dishes rotate between calls.
type MockGenerator struct {
	calls atomic.Uint64
}

// NewMockGenerator returns a generator for AI_MODE=mock
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (g *MockGenerator) Generate(ctx context.Context, req TextRequest) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	n := g.calls.Add(1) - 1
	dish := mockDishes[n%uint64(len(mockDishes))]

	payload := map[string]any{
		"name":         dish.Name,
		"description":  dish.Description,
		"meal_slot":    promptSlot(req.UserPrompt),
		"ingredients":  dish.Ingredients,
		"instructions": dish.Steps,
		"calories":     dish.Calories,
		"protein":      fmt.Sprintf("%.0fg", dish.Protein),
		"carbs":        dish.Carbs,
		"fat":          dish.Fat,
		"fiber":        dish.Fiber,
		"cook_time":    25,
		"difficulty":   "easy",
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return "```json\n" + string(b) + "\n```", nil
}

// promptSlot reads the "Meal slot:" line written by the prompt builder
func promptSlot(prompt string) string {
	for _, line := range strings.Split(prompt, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), slotLinePrefix); ok {
			return strings.TrimSpace(rest)
		}
	}
	return ""
}
