package hub

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// Competition prep defaults used when no targets are stored or supplied
const (
	CompetitionProteinFloor = 40
	CompetitionCarbCeiling  = 30
	CompetitionFatCeiling   = 20
	CompetitionCalorieCap   = 550
)

// competitionSubstitutions maps a blocked term to the swaps that make it
// acceptable; "rice" passes only as "cauliflower rice"
var competitionSubstitutions = map[string][]string{
	"rice":      {"cauliflower rice", "riced cauliflower"},
	"pasta":     {"zucchini noodles", "spaghetti squash", "hearts of palm pasta"},
	"noodle":    {"zucchini noodles", "shirataki noodles"},
	"spaghetti": {"spaghetti squash"},
	"tortilla":  {"lettuce wrap"},
	"bread":     {"lettuce wrap"},
	"potato":    {"cauliflower mash"},
}

var competitionBlocked = []string{
	"sugar", "syrup", "honey", "soda", "candy", "juice", "alcohol", "beer", "wine",
}

var competitionExceptions = []string{
	"sugar-free", "sugar free", "lemon juice", "lime juice", "rice vinegar",
	"wine vinegar", "baking soda",
}

var competitionHints = map[Rule]string{
	RuleProteinFloor:      "Raise protein to at least %vg: add lean meat, egg whites, white fish or whey",
	RuleCarbCeiling:       "Cut carbs to %vg or less",
	RuleFatCeiling:        "Cut fat to %vg or less: lean cuts, no added oils or cheese",
	RuleBlockedIngredient: "Swap out the blocked item for its approved substitute",
}

// Competition enforces strict prep macros as hard limits
type Competition struct {
	store ContextStore
	now   func() time.Time
}

// NewCompetition builds the competition/strict-macro hub
func NewCompetition(store ContextStore) *Competition {
	return &Competition{store: store, now: time.Now}
}

func (h *Competition) Type() Type { return TypeCompetition }

func (h *Competition) Context(ctx context.Context, userID string) (*Context, error) {
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

func (h *Competition) Guardrails(hc *Context, slot types.MealSlot) Guardrails {
	g := Guardrails{
		Hub:                TypeCompetition,
		ProteinFloor:       CompetitionProteinFloor,
		CarbCeiling:        CompetitionCarbCeiling,
		FatCeiling:         CompetitionFatCeiling,
		CalorieCap:         CompetitionCalorieCap,
		BlockedIngredients: competitionBlockedTerms(),
		AllowedExceptions:  competitionExceptions,
		Substitutions:      competitionSubstitutions,
		State:              "defaults",
	}
	if t := hc.Targets(); t != nil {
		if t.Protein > 0 {
			g.ProteinFloor = t.Protein
		}
		if t.Carbs > 0 {
			g.CarbCeiling = t.Carbs
		}
		if t.Fat > 0 {
			g.FatCeiling = t.Fat
		}
		if t.Calories > 0 {
			g.CalorieCap = t.Calories
		}
		g.State = "targets"
	}
	return g
}

func competitionBlockedTerms() []string {
	terms := append([]string(nil), competitionBlocked...)
	for term := range competitionSubstitutions {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

func (h *Competition) BuildPrompt(hc *Context, g Guardrails, slot types.MealSlot) PromptFragment {
	var b strings.Builder
	b.WriteString("COMPETITION PREP MACROS (NON-NEGOTIABLE):\n")
	fmt.Fprintf(&b, "- Protein: at least %.0fg.\n", g.ProteinFloor)
	fmt.Fprintf(&b, "- Carbs: at most %.0fg.\n", g.CarbCeiling)
	fmt.Fprintf(&b, "- Fat: at most %.0fg.\n", g.FatCeiling)
	fmt.Fprintf(&b, "- Calories: about %.0f kcal or less.\n", g.CalorieCap)
	b.WriteString("- Required swaps:\n")
	keys := make([]string, 0, len(g.Substitutions))
	for k := range g.Substitutions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  - %s -> %s\n", k, strings.Join(g.Substitutions[k], " or "))
	}
	fmt.Fprintf(&b, "- Never use: %s.\n", listOrNone(competitionBlocked))
	b.WriteString("- Weigh every ingredient in grams.\n")
	return PromptFragment{
		SystemPrompt:       "You are a contest prep coach. Macros are exact and non-negotiable.",
		UserPromptAddition: b.String(),
		Priority:           80,
	}
}

func (h *Competition) Validate(meal *types.UnifiedMeal, g Guardrails) ValidationResult {
	var c collector
	c.proteinFloor(meal, g, SeverityHard)
	c.carbCeiling(meal, g, SeverityHard)
	c.fatRange(meal, g, SeverityHard)
	c.blockedIngredients(meal, g, SeverityHard)
	c.calorieCap(meal, g, SeveritySoft)
	return c.result()
}

func (h *Competition) FixHint(violations []Violation) string {
	return buildFixHint("The previous meal missed competition macros. Correct it:", violations, competitionHints)
}
