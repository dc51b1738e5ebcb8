package hub

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// AntiInflammatoryMinScore is the score below which a warning is attached
const AntiInflammatoryMinScore = 5

var antiInflammatoryBlocked = []string{
	"processed meat", "bacon", "sausage", "hot dog", "salami", "pepperoni", "deli meat",
	"cured ham", "deli ham", "margarine", "shortening", "hydrogenated", "vegetable oil", "corn oil",
	"soybean oil", "white sugar", "high fructose corn syrup", "corn syrup", "soda",
	"candy", "white bread", "pastry", "refined flour", "white flour",
}

var antiInflammatoryBlockedMethods = []string{"fried", "deep-fried", "charred", "blackened"}

// allowed phrases containing a blocked term
var antiInflammatoryExceptions = []string{
	"air-fried", "air fried", "air-fryer", "air fryer", "stir-fried", "stir fried",
	"baking soda",
}

// beneficial ingredient weights; each entry counts once per meal and no
// key is a substring of another
var antiInflammatoryWeights = map[string]float64{
	"salmon":         2,
	"sardine":        2,
	"mackerel":       2,
	"turmeric":       2,
	"ginger":         1.5,
	"extra virgin":   1.5,
	"olive oil":      1,
	"berries":        1.5,
	"spinach":        1,
	"kale":           1,
	"broccoli":       1,
	"walnut":         1,
	"chia":           1,
	"flax":           1,
	"avocado":        1,
	"green tea":      1,
	"garlic":         0.5,
	"tomato":         0.5,
	"lentil":         0.5,
	"chickpea":       0.5,
	"cinnamon":       0.5,
	"sweet potato":   0.5,
	"dark chocolate": 0.5,
	"beans":          0.5,
}

var antiInflammatoryHints = map[Rule]string{
	RuleBlockedIngredient:    "Remove processed, refined and pro-inflammatory ingredients",
	RuleBlockedCookingMethod: "Bake, steam, roast, air-fry or saute in olive oil instead",
}

// AntiInflammatoryScore returns a 0-10 score from weighted beneficial hits
func AntiInflammatoryScore(meal *types.UnifiedMeal) float64 {
	text := meal.SearchText()
	score := 0.0
	for food, w := range antiInflammatoryWeights {
		if strings.Contains(text, food) {
			score += w
		}
	}
	return math.Min(10, score)
}

// AntiInflammatory steers meals toward omega-3s, polyphenols and whole foods
type AntiInflammatory struct {
	store ContextStore
	now   func() time.Time
}

// NewAntiInflammatory builds the anti-inflammatory hub
func NewAntiInflammatory(store ContextStore) *AntiInflammatory {
	return &AntiInflammatory{store: store, now: time.Now}
}

func (h *AntiInflammatory) Type() Type { return TypeAntiInflammatory }

func (h *AntiInflammatory) Context(ctx context.Context, userID string) (*Context, error) {
	hc := &Context{UserID: userID, Now: h.now()}
	if h.store == nil || userID == "" {
		return hc, nil
	}
	health, err := h.store.HealthProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch health profile: %w", err)
	}
	hc.Health = health
	return hc, nil
}

func (h *AntiInflammatory) Guardrails(hc *Context, slot types.MealSlot) Guardrails {
	preferred := make([]string, 0, len(antiInflammatoryWeights))
	for food, w := range antiInflammatoryWeights {
		if w >= 1 {
			preferred = append(preferred, food)
		}
	}
	sort.Strings(preferred)
	return Guardrails{
		Hub:                   TypeAntiInflammatory,
		FiberMinimum:          6,
		BlockedIngredients:    antiInflammatoryBlocked,
		BlockedCookingMethods: antiInflammatoryBlockedMethods,
		AllowedExceptions:     antiInflammatoryExceptions,
		PreferredIngredients:  preferred,
		MinScore:              AntiInflammatoryMinScore,
	}
}

func (h *AntiInflammatory) BuildPrompt(hc *Context, g Guardrails, slot types.MealSlot) PromptFragment {
	var b strings.Builder
	b.WriteString("ANTI-INFLAMMATORY REQUIREMENTS:\n")
	b.WriteString("- Build the meal from whole, minimally processed foods.\n")
	b.WriteString("- Include at least two of: fatty fish, leafy greens, berries, turmeric, ginger, extra virgin olive oil, nuts or seeds.\n")
	fmt.Fprintf(&b, "- Never use: %s.\n", listOrNone(g.BlockedIngredients))
	b.WriteString("- Air-frying and stir-frying are fine; deep or pan frying is not.\n")
	fmt.Fprintf(&b, "- Favor: %s.\n", listOrNone(g.PreferredIngredients))
	return PromptFragment{
		SystemPrompt:       "You are a nutritionist focused on reducing chronic inflammation through food.",
		UserPromptAddition: b.String(),
		Priority:           70,
	}
}

func (h *AntiInflammatory) Validate(meal *types.UnifiedMeal, g Guardrails) ValidationResult {
	var c collector
	c.blockedIngredients(meal, g, SeverityHard)
	c.blockedMethods(meal, g, SeverityHard)
	c.fiber(meal, g, SeveritySoft)

	score := AntiInflammatoryScore(meal)
	if g.MinScore > 0 && score < g.MinScore {
		c.add(RuleAntiInflammatoryScore, SeveritySoft, score, g.MinScore,
			"anti-inflammatory score %.1f/10 is below %.0f", score, g.MinScore)
	}
	return c.result()
}

func (h *AntiInflammatory) FixHint(violations []Violation) string {
	return buildFixHint("The previous meal contains pro-inflammatory items. Correct it:", violations, antiInflammatoryHints)
}
