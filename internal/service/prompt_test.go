package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/hub"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

func TestBuildTextRequest_OrdersFragmentsByPriority(t *testing.T) {
	req := types.MealGenerationRequest{
		Kind:         types.KindFridgeRescue,
		MealSlot:     types.SlotDinner,
		Input:        types.MealInput{Ingredients: []string{"salmon", "kale"}, CookingMethods: map[string]string{"salmon": "baked"}},
		MacroTargets: &types.MacroTargets{Protein: 40, Carbs: 20},
	}
	out := buildTextRequest(promptInput{
		Request: req,
		Fragments: []hub.PromptFragment{
			{SystemPrompt: "LOW SYS", UserPromptAddition: "LOW PRIORITY", Priority: 10},
			{SystemPrompt: "HIGH SYS", UserPromptAddition: "HIGH PRIORITY", Priority: 100},
		},
		StarchGuidance: "STARCH GAME PLAN:\n- none",
		Exclude:        []string{"Salmon Bake"},
		FixHint:        "Reduce carbs.",
	})

	assert.True(t, strings.HasPrefix(out.SystemPrompt, baseSystemPrompt))
	assert.Less(t, strings.Index(out.SystemPrompt, "HIGH SYS"), strings.Index(out.SystemPrompt, "LOW SYS"))

	u := out.UserPrompt
	assert.Less(t, strings.Index(u, "HIGH PRIORITY"), strings.Index(u, "LOW PRIORITY"))
	assert.Less(t, strings.Index(u, "LOW PRIORITY"), strings.Index(u, "STARCH GAME PLAN"))
	assert.Less(t, strings.Index(u, "STARCH GAME PLAN"), strings.Index(u, "Reduce carbs."))
	assert.Contains(t, u, "Meal slot: dinner")
	assert.Contains(t, u, "salmon, kale")
	assert.Contains(t, u, "salmon: baked")
	assert.Contains(t, u, "40g protein, 20g carbs")
	assert.Contains(t, u, "Do not repeat any of these meals: Salmon Bake")
	assert.True(t, strings.HasSuffix(u, responseFormat))
}

func TestBuildTextRequest_Minimal(t *testing.T) {
	out := buildTextRequest(promptInput{Request: types.MealGenerationRequest{
		Kind: types.KindCraving, MealSlot: types.SlotSnack, Input: types.MealInput{Text: "something crunchy"},
	}})
	assert.Equal(t, baseSystemPrompt, out.SystemPrompt)
	assert.Contains(t, out.UserPrompt, "The user is asking for: something crunchy")
	assert.NotContains(t, out.UserPrompt, "Macro targets")
	assert.NotContains(t, out.UserPrompt, "Do not repeat")
}
