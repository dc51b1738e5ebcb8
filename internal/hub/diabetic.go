package hub

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// GlucoseTiming is when a reading was taken relative to a meal
type GlucoseTiming string

const (
	TimingFasted   GlucoseTiming = "fasted"
	TimingPreMeal  GlucoseTiming = "pre_meal"
	TimingPostMeal GlucoseTiming = "post_meal"
	TimingRandom   GlucoseTiming = "random"
)

// ParseGlucoseTiming accepts the labels glucose loggers use ("FASTED",
// "before meal", "post-meal"). Unknown labels are treated as random.
func ParseGlucoseTiming(raw string) GlucoseTiming {
	key := strings.NewReplacer("-", "_", " ", "_").Replace(strings.ToLower(strings.TrimSpace(raw)))
	switch key {
	case "fasted", "fasting", "wake_up", "waking":
		return TimingFasted
	case "pre_meal", "before_meal", "premeal":
		return TimingPreMeal
	case "post_meal", "after_meal", "postmeal", "postprandial":
		return TimingPostMeal
	}
	return TimingRandom
}

// GlucoseState classifies a reading. GlucoseUnknown covers a missing or
// stale reading.
type GlucoseState string

const (
	GlucoseLow       GlucoseState = "low"
	GlucoseLowNormal GlucoseState = "low-normal"
	GlucoseInRange   GlucoseState = "in-range"
	GlucoseElevated  GlucoseState = "elevated"
	GlucoseHighRisk  GlucoseState = "high-risk"
	GlucoseUnknown   GlucoseState = "unknown"
)

// StaleReadingAge is how old a reading may be before it is ignored
const StaleReadingAge = 4 * time.Hour

// glucoseBands are mg/dL cutoffs; fasting and pre-meal readings use the
// tighter set
type glucoseBands struct {
	lowBelow       float64
	lowNormalBelow float64
	inRangeMax     float64
	elevatedMax    float64
}

var (
	fastingBands  = glucoseBands{lowBelow: 70, lowNormalBelow: 80, inRangeMax: 130, elevatedMax: 180}
	postMealBands = glucoseBands{lowBelow: 70, lowNormalBelow: 100, inRangeMax: 180, elevatedMax: 250}
)

var carbCeilingByState = map[GlucoseState]float64{
	GlucoseLow:       60,
	GlucoseLowNormal: 50,
	GlucoseInRange:   45,
	GlucoseElevated:  30,
	GlucoseHighRisk:  15,
	GlucoseUnknown:   45,
}

// ClassifyGlucose maps a reading to a state. Readings older than
// StaleReadingAge classify as GlucoseUnknown.
func ClassifyGlucose(r *GlucoseReading, now time.Time) GlucoseState {
	if r == nil || r.Value <= 0 {
		return GlucoseUnknown
	}
	if !r.TakenAt.IsZero() && now.Sub(r.TakenAt) > StaleReadingAge {
		return GlucoseUnknown
	}
	b := postMealBands
	if r.Timing == TimingFasted || r.Timing == TimingPreMeal {
		b = fastingBands
	}
	switch {
	case r.Value < b.lowBelow:
		return GlucoseLow
	case r.Value < b.lowNormalBelow:
		return GlucoseLowNormal
	case r.Value <= b.inRangeMax:
		return GlucoseInRange
	case r.Value <= b.elevatedMax:
		return GlucoseElevated
	}
	return GlucoseHighRisk
}

// approximate glycemic index of common high-GI foods
var glycemicIndex = map[string]int{
	"white rice":   73,
	"jasmine rice": 89,
	"white bread":  75,
	"bagel":        72,
	"baked potato": 85,
	"potato":       78,
	"instant oat":  79,
	"cornflakes":   81,
	"rice cake":    82,
	"pretzel":      83,
	"watermelon":   76,
	"pineapple":    59,
	"white pasta":  55,
	"honey":        61,
	"sugar":        65,
	"dates":        62,
	"raisin":       64,
	"couscous":     65,
}

var diabeticBlocked = []string{
	"sugar", "syrup", "honey", "candy", "soda", "juice", "frosting", "pastry",
	"donut", "doughnut", "white bread", "sweetened", "jam", "jelly",
}

var diabeticExceptions = []string{
	"sugar-free", "sugar free", "no sugar", "unsweetened", "sugar snap",
	"lemon juice", "lime juice", "baking soda",
}

var diabeticPreferred = []string{
	"non-starchy vegetables", "leafy greens", "lean protein", "legumes", "berries",
	"nuts", "seeds", "olive oil", "whole grains",
}

var diabeticHints = map[Rule]string{
	RuleCarbCeiling:       "Reduce total carbohydrates to %vg or less: swap starches for non-starchy vegetables",
	RuleBlockedIngredient: "Remove added sugars and sweetened ingredients",
}

// Diabetic reacts to the user's most recent glucose reading
type Diabetic struct {
	store ContextStore
	now   func() time.Time
}

// NewDiabetic builds the diabetic hub
func NewDiabetic(store ContextStore) *Diabetic {
	return &Diabetic{store: store, now: time.Now}
}

func (d *Diabetic) Type() Type { return TypeDiabetic }

func (d *Diabetic) Context(ctx context.Context, userID string) (*Context, error) {
	hc := &Context{UserID: userID, Now: d.now()}
	if d.store == nil || userID == "" {
		return hc, nil
	}
	reading, err := d.store.LatestGlucose(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch glucose reading: %w", err)
	}
	profile, err := d.store.DiabetesProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch diabetes profile: %w", err)
	}
	hc.Glucose = reading
	hc.Diabetes = profile
	return hc, nil
}

func (d *Diabetic) Guardrails(hc *Context, slot types.MealSlot) Guardrails {
	var reading *GlucoseReading
	if hc != nil {
		reading = hc.Glucose
	}
	state := ClassifyGlucose(reading, hc.now())

	ceiling := carbCeilingByState[state]
	if hc != nil && hc.Diabetes != nil && hc.Diabetes.CarbTargetPerMeal > 0 && hc.Diabetes.CarbTargetPerMeal < ceiling {
		ceiling = hc.Diabetes.CarbTargetPerMeal
	}

	return Guardrails{
		Hub:                  TypeDiabetic,
		ProteinFloor:         20,
		CarbCeiling:          ceiling,
		FiberMinimum:         8,
		GlycemicIndexCap:     55,
		BlockedIngredients:   diabeticBlocked,
		AllowedExceptions:    diabeticExceptions,
		PreferredIngredients: diabeticPreferred,
		State:                string(state),
	}
}

func (d *Diabetic) BuildPrompt(hc *Context, g Guardrails, slot types.MealSlot) PromptFragment {
	var b strings.Builder
	b.WriteString("DIABETES-FRIENDLY REQUIREMENTS:\n")

	reading := ""
	if hc != nil && hc.Glucose != nil {
		reading = fmt.Sprintf(" (latest reading %.0f mg/dL, %s)", hc.Glucose.Value, hc.Glucose.Timing)
	}
	switch GlucoseState(g.State) {
	case GlucoseHighRisk:
		fmt.Fprintf(&b, "- Blood glucose is HIGH%s. Create a very low-carb meal (under %.0fg carbs) built on lean protein and non-starchy vegetables.\n", reading, g.CarbCeiling)
	case GlucoseElevated:
		fmt.Fprintf(&b, "- Blood glucose is elevated%s. Create a lower-carb meal (under %.0fg carbs).\n", reading, g.CarbCeiling)
	case GlucoseInRange:
		fmt.Fprintf(&b, "- Blood glucose is in range%s. Create a balanced meal with at most %.0fg carbs.\n", reading, g.CarbCeiling)
	case GlucoseLowNormal:
		fmt.Fprintf(&b, "- Blood glucose is low-normal%s. Include moderate complex carbs, up to %.0fg.\n", reading, g.CarbCeiling)
	case GlucoseLow:
		fmt.Fprintf(&b, "- Blood glucose is LOW%s. Include 15-20g of quick carbohydrate and keep the meal under %.0fg carbs total.\n", reading, g.CarbCeiling)
	default:
		fmt.Fprintf(&b, "- No recent glucose reading. Create a balanced-carb meal with at most %.0fg carbs.\n", g.CarbCeiling)
	}
	fmt.Fprintf(&b, "- At least %.0fg protein and %.0fg fiber.\n", g.ProteinFloor, g.FiberMinimum)
	fmt.Fprintf(&b, "- Prefer low glycemic index foods (GI under %d).\n", g.GlycemicIndexCap)
	fmt.Fprintf(&b, "- Never use: %s.\n", listOrNone(g.BlockedIngredients))
	fmt.Fprintf(&b, "- Favor: %s.\n", listOrNone(g.PreferredIngredients))

	return PromptFragment{
		SystemPrompt:       "You are a registered dietitian and certified diabetes educator. Every meal must keep blood sugar stable.",
		UserPromptAddition: b.String(),
		Priority:           100,
	}
}

func (d *Diabetic) Validate(meal *types.UnifiedMeal, g Guardrails) ValidationResult {
	var c collector
	c.carbCeiling(meal, g, SeverityHard)
	c.blockedIngredients(meal, g, SeverityHard)
	c.proteinFloor(meal, g, SeveritySoft)
	c.fiber(meal, g, SeveritySoft)
	c.glycemic(meal, g, SeveritySoft)
	return c.result()
}

func (d *Diabetic) FixHint(violations []Violation) string {
	return buildFixHint("The previous meal broke diabetic guardrails. Correct it:", violations, diabeticHints)
}
