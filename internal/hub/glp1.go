package hub

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

const (
	glp1DefaultProteinFloor = 30
	glp1MinProteinFloor     = 25
	glp1MaxProteinFloor     = 40
	glp1ProteinPerKg        = 0.4

	// RecentDoseWindow tightens portions for the days right after a dose
	RecentDoseWindow = 72 * time.Hour
)

var glp1CalorieCaps = map[bool]map[bool]float64{
	// recent dose -> snack -> cap
	false: {false: 500, true: 200},
	true:  {false: 400, true: 150},
}

var glp1Blocked = []string{
	"heavy cream", "cream sauce", "alfredo", "bacon", "sausage", "soda", "candy",
}

var glp1BlockedMethods = []string{"deep-fried", "deep fried", "battered"}

var glp1Preferred = []string{
	"chicken breast", "turkey", "white fish", "shrimp", "egg whites", "greek yogurt",
	"cottage cheese", "tofu", "broth-based soups", "cooked vegetables",
}

var glp1Hints = map[Rule]string{
	RuleProteinFloor:         "Put protein first: raise protein to at least %vg with lean meat, fish, eggs or Greek yogurt",
	RuleFatCeiling:           "Cut fat to %vg or less: fatty food slows an already delayed stomach",
	RuleBlockedIngredient:    "Remove rich, greasy ingredients",
	RuleBlockedCookingMethod: "Bake, grill, steam or poach instead of deep-frying",
}

// GLP1 is the medication-aware hub for GLP-1 agonist users
type GLP1 struct {
	store ContextStore
	now   func() time.Time
}

// NewGLP1 builds the GLP-1 hub
func NewGLP1(store ContextStore) *GLP1 {
	return &GLP1{store: store, now: time.Now}
}

func (h *GLP1) Type() Type { return TypeGLP1 }

func (h *GLP1) Context(ctx context.Context, userID string) (*Context, error) {
	hc := &Context{UserID: userID, Now: h.now()}
	if h.store == nil || userID == "" {
		return hc, nil
	}
	dose, err := h.store.LatestMedicationDose(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch medication dose: %w", err)
	}
	health, err := h.store.HealthProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch health profile: %w", err)
	}
	hc.Medication = dose
	hc.Health = health
	return hc, nil
}

// RecentDose reports whether the last dose falls inside RecentDoseWindow
func RecentDose(hc *Context) bool {
	if hc == nil || hc.Medication == nil || hc.Medication.TakenAt.IsZero() {
		return false
	}
	age := hc.now().Sub(hc.Medication.TakenAt)
	return age >= 0 && age <= RecentDoseWindow
}

// GLP1ProteinFloor scales the floor with bodyweight, clamped to 25-40g
func GLP1ProteinFloor(bodyweightKg float64) float64 {
	if bodyweightKg <= 0 {
		return glp1DefaultProteinFloor
	}
	floor := math.Round(bodyweightKg * glp1ProteinPerKg)
	return math.Max(glp1MinProteinFloor, math.Min(glp1MaxProteinFloor, floor))
}

func (h *GLP1) Guardrails(hc *Context, slot types.MealSlot) Guardrails {
	weight := 0.0
	if hc != nil && hc.Health != nil {
		weight = hc.Health.BodyweightKg
	}
	recent := RecentDose(hc)
	state := "steady"
	if recent {
		state = "recent_dose"
	}
	return Guardrails{
		Hub:                   TypeGLP1,
		ProteinFloor:          GLP1ProteinFloor(weight),
		FatCeiling:            20,
		FiberMinimum:          5,
		CalorieCap:            glp1CalorieCaps[recent][slot == types.SlotSnack],
		BlockedIngredients:    glp1Blocked,
		BlockedCookingMethods: glp1BlockedMethods,
		AllowedExceptions:     []string{"air-fried", "air fried", "baking soda"},
		PreferredIngredients:  glp1Preferred,
		State:                 state,
	}
}

func (h *GLP1) BuildPrompt(hc *Context, g Guardrails, slot types.MealSlot) PromptFragment {
	var b strings.Builder
	b.WriteString("GLP-1 MEDICATION REQUIREMENTS:\n")
	fmt.Fprintf(&b, "- PROTEIN FIRST: at least %.0fg protein, listed and eaten before anything else.\n", g.ProteinFloor)
	fmt.Fprintf(&b, "- Small portion: at most %.0f kcal.\n", g.CalorieCap)
	fmt.Fprintf(&b, "- Keep fat at %.0fg or less; gastric emptying is delayed and rich food causes nausea.\n", g.FatCeiling)
	b.WriteString("- Soft, moist textures and gentle seasoning. Nothing deep-fried or greasy.\n")
	if RecentDose(hc) {
		days := int(hc.now().Sub(hc.Medication.TakenAt).Hours() / 24)
		fmt.Fprintf(&b, "- Last dose was %d day(s) ago: appetite is suppressed, make the portion extra small and easy to finish.\n", days)
	}
	fmt.Fprintf(&b, "- Favor: %s.\n", listOrNone(g.PreferredIngredients))

	return PromptFragment{
		SystemPrompt:       "You are a dietitian supporting patients on GLP-1 medications such as semaglutide and tirzepatide.",
		UserPromptAddition: b.String(),
		Priority:           90,
	}
}

func (h *GLP1) Validate(meal *types.UnifiedMeal, g Guardrails) ValidationResult {
	var c collector
	c.proteinFloor(meal, g, SeverityHard)
	c.fatRange(meal, g, SeverityHard)
	c.blockedIngredients(meal, g, SeverityHard)
	c.blockedMethods(meal, g, SeverityHard)
	c.calorieCap(meal, g, SeveritySoft)
	c.fiber(meal, g, SeveritySoft)
	return c.result()
}

func (h *GLP1) FixHint(violations []Violation) string {
	return buildFixHint("The previous meal is not GLP-1 friendly. Correct it:", violations, glp1Hints)
}
