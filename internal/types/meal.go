package types

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidMealSlot is returned when a slot string cannot be normalized
var ErrInvalidMealSlot = errors.New("invalid meal slot")

// MealSlot identifies the time of day a meal is generated for
type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
	SlotSnack     MealSlot = "snack"
)

// AllMealSlots lists every slot in day order
var AllMealSlots = []MealSlot{SlotBreakfast, SlotLunch, SlotDinner, SlotSnack}

var mealSlotAliases = map[string]MealSlot{
	"breakfast":  SlotBreakfast,
	"breakfasts": SlotBreakfast,
	"brunch":     SlotBreakfast,
	"lunch":      SlotLunch,
	"lunches":    SlotLunch,
	"dinner":     SlotDinner,
	"dinners":    SlotDinner,
	"supper":     SlotDinner,
	"snack":      SlotSnack,
	"snacks":     SlotSnack,
	"dessert":    SlotSnack,
}

// NormalizeMealSlot maps plural and alias forms onto the four canonical slots
func NormalizeMealSlot(raw string) (MealSlot, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if slot, ok := mealSlotAliases[key]; ok {
		return slot, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMealSlot, raw)
}

// Provenance records which stage of the generation chain produced a meal
type Provenance string

const (
	ProvenanceAI       Provenance = "ai"
	ProvenanceCatalog  Provenance = "catalog"
	ProvenanceFallback Provenance = "fallback"
)

// Ingredient is a single name/quantity/unit triple
type Ingredient struct {
	Name     string `json:"name"`
	Quantity string `json:"quantity,omitempty"`
	Unit     string `json:"unit,omitempty"`
}

// String renders the ingredient the way it reads on a recipe card
func (i Ingredient) String() string {
	parts := make([]string, 0, 3)
	if i.Quantity != "" {
		parts = append(parts, i.Quantity)
	}
	if i.Unit != "" {
		parts = append(parts, i.Unit)
	}
	parts = append(parts, i.Name)
	return strings.Join(parts, " ")
}

// UnifiedMeal is the canonical meal returned by every stage of the pipeline
type UnifiedMeal struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description"`
	MealSlot     MealSlot     `json:"meal_slot"`
	Ingredients  []Ingredient `json:"ingredients"`
	Instructions []string     `json:"instructions"`
	Calories     float64      `json:"calories"`
	Protein      float64      `json:"protein"`
	Carbs        float64      `json:"carbs"`
	StarchyCarbs float64      `json:"starchy_carbs"`
	FibrousCarbs float64      `json:"fibrous_carbs"`
	Fat          float64      `json:"fat"`
	Fiber        float64      `json:"fiber,omitempty"`
	CookTime     string       `json:"cook_time,omitempty"`
	Difficulty   string       `json:"difficulty,omitempty"`
	ImageURL     string       `json:"image_url"`
	Badges       []string     `json:"badges,omitempty"`
	Warnings     []string     `json:"warnings,omitempty"`
	HubType      string       `json:"hub_type,omitempty"`
	Source       Provenance   `json:"source"`
	Cached       bool         `json:"cached,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
}

// IngredientNames returns the bare ingredient names in order
func (m *UnifiedMeal) IngredientNames() []string {
	names := make([]string, 0, len(m.Ingredients))
	for _, ing := range m.Ingredients {
		names = append(names, ing.Name)
	}
	return names
}

// SearchText is the lowercase text block guardrail keyword scans run against
func (m *UnifiedMeal) SearchText() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(m.Name))
	for _, ing := range m.Ingredients {
		b.WriteString(" | ")
		b.WriteString(strings.ToLower(ing.Name))
	}
	return b.String()
}

// HasStarch reports whether the classified split carries a starchy portion
func (m *UnifiedMeal) HasStarch() bool {
	return m.StarchyCarbs > 0
}

// Clone returns a deep copy so cached values are never shared between callers
func (m *UnifiedMeal) Clone() *UnifiedMeal {
	if m == nil {
		return nil
	}
	out := *m
	out.Ingredients = append([]Ingredient(nil), m.Ingredients...)
	out.Instructions = append([]string(nil), m.Instructions...)
	out.Badges = append([]string(nil), m.Badges...)
	out.Warnings = append([]string(nil), m.Warnings...)
	return &out
}
