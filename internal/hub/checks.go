package hub

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// collector accumulates violations for one Validate call
type collector struct {
	violations []Violation
}

func (c *collector) add(rule Rule, sev Severity, actual, expected any, format string, args ...any) {
	c.violations = append(c.violations, Violation{
		Rule:     rule,
		Message:  fmt.Sprintf(format, args...),
		Severity: sev,
		Actual:   actual,
		Expected: expected,
	})
}

func (c *collector) proteinFloor(m *types.UnifiedMeal, g Guardrails, sev Severity) {
	if g.ProteinFloor > 0 && m.Protein < g.ProteinFloor {
		c.add(RuleProteinFloor, sev, m.Protein, g.ProteinFloor,
			"protein %.0fg is below the %.0fg floor", m.Protein, g.ProteinFloor)
	}
}

func (c *collector) carbCeiling(m *types.UnifiedMeal, g Guardrails, sev Severity) {
	if g.CarbCeiling > 0 && m.Carbs > g.CarbCeiling {
		c.add(RuleCarbCeiling, sev, m.Carbs, g.CarbCeiling,
			"carbs %.0fg exceed the %.0fg ceiling", m.Carbs, g.CarbCeiling)
	}
}

func (c *collector) fatRange(m *types.UnifiedMeal, g Guardrails, sev Severity) {
	if g.FatCeiling > 0 && m.Fat > g.FatCeiling {
		c.add(RuleFatCeiling, sev, m.Fat, g.FatCeiling,
			"fat %.0fg exceeds the %.0fg ceiling", m.Fat, g.FatCeiling)
	}
	if g.FatFloor > 0 && m.Fat < g.FatFloor {
		c.add(RuleFatFloor, sev, m.Fat, g.FatFloor,
			"fat %.0fg is below the %.0fg floor", m.Fat, g.FatFloor)
	}
}

// fiber is only checked when the generator reported a value
func (c *collector) fiber(m *types.UnifiedMeal, g Guardrails, sev Severity) {
	if g.FiberMinimum > 0 && m.Fiber > 0 && m.Fiber < g.FiberMinimum {
		c.add(RuleFiberMinimum, sev, m.Fiber, g.FiberMinimum,
			"fiber %.0fg is below the %.0fg minimum", m.Fiber, g.FiberMinimum)
	}
}

func (c *collector) calorieCap(m *types.UnifiedMeal, g Guardrails, sev Severity) {
	if g.CalorieCap > 0 && m.Calories > g.CalorieCap {
		c.add(RuleCalorieCap, sev, m.Calories, g.CalorieCap,
			"%.0f kcal exceeds the %.0f kcal portion cap", m.Calories, g.CalorieCap)
	}
}

func (c *collector) blockedIngredients(m *types.UnifiedMeal, g Guardrails, sev Severity) {
	text := maskAllowed(m.SearchText(), g.allowed())
	for _, term := range findTerms(text, g.BlockedIngredients) {
		msg := fmt.Sprintf("contains blocked ingredient %q", term)
		if subs := g.Substitutions[term]; len(subs) > 0 {
			msg += fmt.Sprintf(", use %s instead", strings.Join(subs, " or "))
		}
		c.add(RuleBlockedIngredient, sev, term, "none", "%s", msg)
	}
}

func (c *collector) blockedMethods(m *types.UnifiedMeal, g Guardrails, sev Severity) {
	text := maskAllowed(methodText(m), g.allowed())
	for _, term := range findTerms(text, g.BlockedCookingMethods) {
		c.add(RuleBlockedCookingMethod, sev, term, "none", "uses blocked cooking method %q", term)
	}
}

// glycemic flags the highest-GI ingredient above the cap
func (c *collector) glycemic(m *types.UnifiedMeal, g Guardrails, sev Severity) {
	if g.GlycemicIndexCap <= 0 {
		return
	}
	text := maskAllowed(m.SearchText(), g.allowed())
	worst, worstGI := "", 0
	for food, gi := range glycemicIndex {
		if !strings.Contains(text, food) {
			continue
		}
		if gi > worstGI || (gi == worstGI && food < worst) {
			worst, worstGI = food, gi
		}
	}
	if worstGI > g.GlycemicIndexCap {
		c.add(RuleGlycemicIndex, sev, worstGI, g.GlycemicIndexCap,
			"%s has a glycemic index around %d (cap %d)", worst, worstGI, g.GlycemicIndexCap)
	}
}

func (c *collector) result() ValidationResult {
	return NewResult(c.violations)
}

// allowed merges exceptions and substitution phrases
func (g Guardrails) allowed() []string {
	out := append([]string(nil), g.AllowedExceptions...)
	for _, subs := range g.Substitutions {
		out = append(out, subs...)
	}
	return out
}

// maskAllowed blanks out allowed phrases so the blocked terms they contain
// no longer match. Longer phrases are masked first.
func maskAllowed(text string, allowed []string) string {
	sorted := append([]string(nil), allowed...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	for _, phrase := range sorted {
		phrase = strings.ToLower(phrase)
		if phrase == "" {
			continue
		}
		text = strings.ReplaceAll(text, phrase, strings.Repeat("#", len(phrase)))
	}
	return text
}

func findTerms(text string, terms []string) []string {
	var hits []string
	for _, t := range terms {
		if strings.Contains(text, strings.ToLower(t)) {
			hits = append(hits, t)
		}
	}
	return hits
}

func methodText(m *types.UnifiedMeal) string {
	parts := append([]string{m.Name, m.Description}, m.Instructions...)
	return strings.ToLower(strings.Join(parts, " | "))
}

// buildFixHint renders the hard violations as corrective instructions for the
// next attempt. hints maps a rule to a format taking the expected value.
func buildFixHint(header string, violations []Violation, hints map[Rule]string) string {
	var lines []string
	for _, v := range violations {
		if v.Severity != SeverityHard {
			continue
		}
		tmpl, ok := hints[v.Rule]
		if !ok {
			lines = append(lines, "- Fix: "+v.Message)
			continue
		}
		if strings.Contains(tmpl, "%") {
			lines = append(lines, "- "+fmt.Sprintf(tmpl, v.Expected))
		} else {
			lines = append(lines, "- "+tmpl)
		}
		if v.Rule == RuleBlockedIngredient || v.Rule == RuleBlockedCookingMethod {
			lines[len(lines)-1] += fmt.Sprintf(" (remove %v)", v.Actual)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return header + "\n" + strings.Join(lines, "\n")
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}
