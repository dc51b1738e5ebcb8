package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/hub"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

const slotLinePrefix = "Meal slot:"

const baseSystemPrompt = "You are a registered dietitian and professional chef. " +
	"You design single meals with accurate macros and always answer with one JSON object and nothing else."

const responseFormat = `Respond with only a JSON object using these keys:
{"name": string, "description": string,
 "ingredients": [{"name": string, "quantity": string, "unit": string}],
 "instructions": [string],
 "calories": number, "protein": number, "carbs": number,
 "starchy_carbs": number, "fibrous_carbs": number, "fat": number, "fiber": number,
 "cook_time": string, "difficulty": "easy"|"medium"|"hard"}
Macros are grams for the whole meal; calories are kcal.`

// promptInput is everything that shapes one generation attempt
type promptInput struct {
	Request        types.MealGenerationRequest
	Fragments      []hub.PromptFragment
	StarchGuidance string
	Exclude        []string
	FixHint        string
}

// buildTextRequest composes the base instruction, hub fragments in priority
// order (highest first), starch guidance and any regeneration hint
func buildTextRequest(in promptInput) TextRequest {
	frags := append([]hub.PromptFragment(nil), in.Fragments...)
	sort.SliceStable(frags, func(i, j int) bool { return frags[i].Priority > frags[j].Priority })

	system := []string{baseSystemPrompt}
	for _, f := range frags {
		if f.SystemPrompt != "" {
			system = append(system, f.SystemPrompt)
		}
	}

	r := in.Request
	var b strings.Builder
	fmt.Fprintf(&b, "Create one %s meal.\n", r.MealSlot)
	fmt.Fprintf(&b, "%s %s\n", slotLinePrefix, r.MealSlot)
	fmt.Fprintf(&b, "Request type: %s\n", r.Kind)
	if r.Input.Text != "" {
		fmt.Fprintf(&b, "The user is asking for: %s\n", r.Input.Text)
	}
	if len(r.Input.Ingredients) > 0 {
		fmt.Fprintf(&b, "Build the meal around these ingredients: %s\n", strings.Join(r.Input.Ingredients, ", "))
	}
	if len(r.Input.CookingMethods) > 0 {
		methods := make([]string, 0, len(r.Input.CookingMethods))
		for ing, m := range r.Input.CookingMethods {
			methods = append(methods, ing+": "+m)
		}
		sort.Strings(methods)
		fmt.Fprintf(&b, "Cooking methods: %s\n", strings.Join(methods, "; "))
	}
	if r.DietType != "" {
		fmt.Fprintf(&b, "Diet type: %s\n", r.DietType)
	}
	if !r.MacroTargets.IsZero() {
		b.WriteString(formatTargets(r.MacroTargets))
	}

	for _, f := range frags {
		if f.UserPromptAddition != "" {
			b.WriteString("\n")
			b.WriteString(strings.TrimSpace(f.UserPromptAddition))
			b.WriteString("\n")
		}
	}
	if in.StarchGuidance != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(in.StarchGuidance))
		b.WriteString("\n")
	}
	if len(in.Exclude) > 0 {
		fmt.Fprintf(&b, "\nDo not repeat any of these meals: %s\n", strings.Join(in.Exclude, "; "))
	}
	if in.FixHint != "" {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(in.FixHint))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(responseFormat)

	return TextRequest{
		SystemPrompt: strings.Join(system, "\n\n"),
		UserPrompt:   b.String(),
	}
}

func formatTargets(t *types.MacroTargets) string {
	parts := make([]string, 0, 4)
	if t.Calories > 0 {
		parts = append(parts, fmt.Sprintf("%.0f kcal", t.Calories))
	}
	if t.Protein > 0 {
		parts = append(parts, fmt.Sprintf("%.0fg protein", t.Protein))
	}
	if t.Carbs > 0 {
		parts = append(parts, fmt.Sprintf("%.0fg carbs", t.Carbs))
	}
	if t.Fat > 0 {
		parts = append(parts, fmt.Sprintf("%.0fg fat", t.Fat))
	}
	return "Macro targets for this meal: " + strings.Join(parts, ", ") + "\n"
}
