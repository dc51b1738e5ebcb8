package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest is returned by MealGenerationRequest.Validate
var ErrInvalidRequest = errors.New("invalid meal generation request")

// MaxMealsPerRequest caps the count field
const MaxMealsPerRequest = 5

// RequestKind names the user-facing flow a request originates from
type RequestKind string

const (
	KindCraving        RequestKind = "craving"
	KindFridgeRescue   RequestKind = "fridge-rescue"
	KindPremade        RequestKind = "premade"
	KindCreateWithChef RequestKind = "create-with-chef"
	KindSnackCreator   RequestKind = "snack-creator"
)

func (k RequestKind) valid() bool {
	switch k {
	case KindCraving, KindFridgeRescue, KindPremade, KindCreateWithChef, KindSnackCreator:
		return true
	}
	return false
}

// MealInput carries either free text or an ingredient list
type MealInput struct {
	Text           string            `json:"text,omitempty"`
	Ingredients    []string          `json:"ingredients,omitempty"`
	CookingMethods map[string]string `json:"cooking_methods,omitempty"`
}

// MacroTargets are per-meal targets supplied by the caller
type MacroTargets struct {
	Calories float64 `json:"calories,omitempty"`
	Protein  float64 `json:"protein,omitempty"`
	Carbs    float64 `json:"carbs,omitempty"`
	Fat      float64 `json:"fat,omitempty"`
}

// IsZero reports whether no target was set
func (t *MacroTargets) IsZero() bool {
	return t == nil || (t.Calories == 0 && t.Protein == 0 && t.Carbs == 0 && t.Fat == 0)
}

// StarchStrategy is the day-level starch game plan
type StarchStrategy string

const (
	StarchOne  StarchStrategy = "one"
	StarchFlex StarchStrategy = "flex"
)

// PlannedMeal is a meal already on the user's plan for the day
type PlannedMeal struct {
	Slot      MealSlot `json:"slot"`
	HasStarch bool     `json:"has_starch"`
}

// StarchContext describes the day the new meal is being slotted into
type StarchContext struct {
	Strategy      StarchStrategy `json:"strategy"`
	ExistingMeals []PlannedMeal  `json:"existing_meals,omitempty"`
	ForceStarch   *bool          `json:"force_starch,omitempty"`
}

// MealGenerationRequest is immutable for the duration of one Generate call
type MealGenerationRequest struct {
	Kind          RequestKind    `json:"kind"`
	MealSlot      MealSlot       `json:"meal_slot"`
	Input         MealInput      `json:"input"`
	UserID        string         `json:"user_id,omitempty"`
	MacroTargets  *MacroTargets  `json:"macro_targets,omitempty"`
	Count         int            `json:"count,omitempty"`
	DietType      string         `json:"diet_type,omitempty"`
	StarchContext *StarchContext `json:"starch_context,omitempty"`
}

// Validate returns a normalized copy of the request
func (r MealGenerationRequest) Validate() (MealGenerationRequest, error) {
	out := r
	if out.Kind == "" {
		out.Kind = KindCraving
	}
	if !out.Kind.valid() {
		return out, fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, r.Kind)
	}

	rawSlot := string(out.MealSlot)
	if rawSlot == "" && out.Kind == KindSnackCreator {
		rawSlot = string(SlotSnack)
	}
	slot, err := NormalizeMealSlot(rawSlot)
	if err != nil {
		return out, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	out.MealSlot = slot

	if out.Count <= 0 {
		out.Count = 1
	}
	if out.Count > MaxMealsPerRequest {
		out.Count = MaxMealsPerRequest
	}

	out.Input.Text = strings.TrimSpace(out.Input.Text)
	ingredients := make([]string, 0, len(out.Input.Ingredients))
	for _, ing := range out.Input.Ingredients {
		if ing = strings.TrimSpace(ing); ing != "" {
			ingredients = append(ingredients, ing)
		}
	}
	out.Input.Ingredients = ingredients
	if out.Input.Text == "" && len(out.Input.Ingredients) == 0 {
		return out, fmt.Errorf("%w: input text or ingredients required", ErrInvalidRequest)
	}

	if r.StarchContext != nil {
		sc := *r.StarchContext
		if sc.Strategy == "" {
			sc.Strategy = StarchOne
		}
		if sc.Strategy != StarchOne && sc.Strategy != StarchFlex {
			return out, fmt.Errorf("%w: unknown starch strategy %q", ErrInvalidRequest, sc.Strategy)
		}
		out.StarchContext = &sc
	}
	return out, nil
}

// MealGenerationResponse is the only externally visible outcome of Generate
type MealGenerationResponse struct {
	Success bool           `json:"success"`
	Meal    *UnifiedMeal   `json:"meal,omitempty"`
	Meals   []*UnifiedMeal `json:"meals,omitempty"`
	Source  Provenance     `json:"source,omitempty"`
	Error   string         `json:"error,omitempty"`
}
