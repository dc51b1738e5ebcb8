// Package hub implements the diet hubs: pluggable guardrail modules that shape
// the generation prompt and validate candidate meals for one diet variant.
package hub

import (
	"context"
	"strings"
	"time"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// Type identifies a diet hub
type Type string

const (
	TypeDiabetic         Type = "diabetic"
	TypeGLP1             Type = "glp1"
	TypeAntiInflammatory Type = "anti_inflammatory"
	TypeCompetition      Type = "competition"
)

// AllTypes lists every hub in registration order
var AllTypes = []Type{TypeDiabetic, TypeGLP1, TypeAntiInflammatory, TypeCompetition}

var typeAliases = map[string]Type{
	"diabetic":          TypeDiabetic,
	"diabetes":          TypeDiabetic,
	"glp1":              TypeGLP1,
	"glp-1":             TypeGLP1,
	"glp_1":             TypeGLP1,
	"medication":        TypeGLP1,
	"anti_inflammatory": TypeAntiInflammatory,
	"anti-inflammatory": TypeAntiInflammatory,
	"antiinflammatory":  TypeAntiInflammatory,
	"competition":       TypeCompetition,
	"strict-macro":      TypeCompetition,
	"strict_macro":      TypeCompetition,
}

// ParseType maps a diet type string onto a hub. ok is false for unknown or
// empty values.
func ParseType(raw string) (Type, bool) {
	t, ok := typeAliases[strings.ToLower(strings.TrimSpace(raw))]
	return t, ok
}

// Rule names a guardrail check
type Rule string

const (
	RuleProteinFloor          Rule = "protein_floor"
	RuleCarbCeiling           Rule = "carb_ceiling"
	RuleFatFloor              Rule = "fat_floor"
	RuleFatCeiling            Rule = "fat_ceiling"
	RuleFiberMinimum          Rule = "fiber_minimum"
	RuleGlycemicIndex         Rule = "glycemic_index"
	RuleCalorieCap            Rule = "calorie_cap"
	RuleBlockedIngredient     Rule = "blocked_ingredient"
	RuleBlockedCookingMethod  Rule = "blocked_cooking_method"
	RuleAntiInflammatoryScore Rule = "anti_inflammatory_score"
)

// Severity of a violation. Only hard violations block acceptance.
type Severity string

const (
	SeverityHard Severity = "hard"
	SeveritySoft Severity = "soft"
)

// Violation is one failed guardrail check
type Violation struct {
	Rule     Rule     `json:"rule"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Actual   any      `json:"actual_value,omitempty"`
	Expected any      `json:"expected_value,omitempty"`
}

// ValidationResult is produced fresh for every candidate meal
type ValidationResult struct {
	IsValid    bool        `json:"is_valid"`
	Violations []Violation `json:"violations"`
	Warnings   []string    `json:"warnings"`
	FixHint    string      `json:"fix_hint,omitempty"`
}

// NewResult derives IsValid from the violations and copies soft violation
// messages into Warnings
func NewResult(violations []Violation, warnings ...string) ValidationResult {
	res := ValidationResult{IsValid: true, Violations: violations, Warnings: warnings}
	for _, v := range violations {
		if v.Severity == SeverityHard {
			res.IsValid = false
		} else {
			res.Warnings = append(res.Warnings, v.Message)
		}
	}
	return res
}

// Hard returns only the hard violations
func (r ValidationResult) Hard() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Severity == SeverityHard {
			out = append(out, v)
		}
	}
	return out
}

// GlucoseReading is the latest blood glucose measurement for a user
type GlucoseReading struct {
	Value   float64       `json:"value"`
	Timing  GlucoseTiming `json:"timing"`
	TakenAt time.Time     `json:"taken_at"`
}

// MedicationDose is the latest recorded GLP-1 style medication dose
type MedicationDose struct {
	Medication string    `json:"medication"`
	DoseMg     float64   `json:"dose_mg"`
	TakenAt    time.Time `json:"taken_at"`
}

// DiabetesProfile marks a user as managed by the diabetic hub
type DiabetesProfile struct {
	DiabetesType      string  `json:"diabetes_type"`
	CarbTargetPerMeal float64 `json:"carb_target_per_meal,omitempty"`
}

// HealthProfile carries body metrics and stored macro targets
type HealthProfile struct {
	BodyweightKg float64             `json:"bodyweight_kg,omitempty"`
	DietType     string              `json:"diet_type,omitempty"`
	Targets      *types.MacroTargets `json:"targets,omitempty"`
}

// Context is the read-only snapshot a hub works from. Any field may be nil;
// absence means "no special context".
type Context struct {
	UserID       string
	Now          time.Time
	Glucose      *GlucoseReading
	Medication   *MedicationDose
	Diabetes     *DiabetesProfile
	Health       *HealthProfile
	MacroTargets *types.MacroTargets
}

func (c *Context) now() time.Time {
	if c == nil || c.Now.IsZero() {
		return time.Now()
	}
	return c.Now
}

// Targets returns request targets first, then stored profile targets
func (c *Context) Targets() *types.MacroTargets {
	if c == nil {
		return nil
	}
	if !c.MacroTargets.IsZero() {
		return c.MacroTargets
	}
	if c.Health != nil && !c.Health.Targets.IsZero() {
		return c.Health.Targets
	}
	return nil
}

// Guardrails is the constraint set one hub applies to a meal. Zero numeric
// values mean the check is disabled. State records the hub specific
// classification the limits were derived from.
type Guardrails struct {
	Hub                   Type                `json:"hub"`
	ProteinFloor          float64             `json:"protein_floor,omitempty"`
	CarbCeiling           float64             `json:"carb_ceiling,omitempty"`
	FatFloor              float64             `json:"fat_floor,omitempty"`
	FatCeiling            float64             `json:"fat_ceiling,omitempty"`
	FiberMinimum          float64             `json:"fiber_minimum,omitempty"`
	GlycemicIndexCap      int                 `json:"glycemic_index_cap,omitempty"`
	CalorieCap            float64             `json:"calorie_cap,omitempty"`
	BlockedIngredients    []string            `json:"blocked_ingredients,omitempty"`
	BlockedCookingMethods []string            `json:"blocked_cooking_methods,omitempty"`
	AllowedExceptions     []string            `json:"allowed_exceptions,omitempty"`
	Substitutions         map[string][]string `json:"substitutions,omitempty"`
	PreferredIngredients  []string            `json:"preferred_ingredients,omitempty"`
	MinScore              float64             `json:"min_score,omitempty"`
	State                 string              `json:"state,omitempty"`
}

// PromptFragment is a hub's contribution to the generation prompt
type PromptFragment struct {
	SystemPrompt       string `json:"system_prompt,omitempty"`
	UserPromptAddition string `json:"user_prompt_addition"`
	Priority           int    `json:"priority"`
}

// ContextStore is the read-only profile collaborator. Implementations return
// (nil, nil) when no record exists.
type ContextStore interface {
	LatestGlucose(ctx context.Context, userID string) (*GlucoseReading, error)
	LatestMedicationDose(ctx context.Context, userID string) (*MedicationDose, error)
	DiabetesProfile(ctx context.Context, userID string) (*DiabetesProfile, error)
	HealthProfile(ctx context.Context, userID string) (*HealthProfile, error)
}

// Module is the contract every diet hub implements
type Module interface {
	Type() Type
	// Context fetches the situational data this hub reacts to
	Context(ctx context.Context, userID string) (*Context, error)
	Guardrails(hc *Context, slot types.MealSlot) Guardrails
	BuildPrompt(hc *Context, g Guardrails, slot types.MealSlot) PromptFragment
	Validate(meal *types.UnifiedMeal, g Guardrails) ValidationResult
	FixHint(violations []Violation) string
}
