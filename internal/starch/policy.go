// Package starch decides whether the meal being generated may carry starchy
// carbohydrates given the rest of the user's day.
package starch

import (
	"fmt"
	"strings"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// Reason identifies the row of the decision table that fired
type Reason string

const (
	ReasonNoContext     Reason = "no_context"
	ReasonForcedOn      Reason = "user_forced_starch"
	ReasonForcedOff     Reason = "user_forbade_starch"
	ReasonCapReached    Reason = "daily_starch_cap_reached"
	ReasonPreferredSlot Reason = "preferred_starch_slot"
	ReasonFlexRemaining Reason = "flex_slot_remaining"
	ReasonConserve      Reason = "conserve_starch_slot"
)

// Decision is the outcome of DecidePlacement
type Decision struct {
	AllowStarch bool   `json:"allow_starch"`
	Reason      Reason `json:"reason"`
}

// Cap returns the number of starch meals per day a strategy allows
func Cap(strategy types.StarchStrategy) int {
	if strategy == types.StarchFlex {
		return 2
	}
	return 1
}

// DecidePlacement applies the day-level starch game plan to the slot being
// generated. Without a context starch is always allowed.
func DecidePlacement(slot types.MealSlot, sc *types.StarchContext) Decision {
	if sc == nil {
		return Decision{AllowStarch: true, Reason: ReasonNoContext}
	}
	if sc.ForceStarch != nil {
		if *sc.ForceStarch {
			return Decision{AllowStarch: true, Reason: ReasonForcedOn}
		}
		return Decision{AllowStarch: false, Reason: ReasonForcedOff}
	}

	used := 0
	planned := make(map[types.MealSlot]bool, len(sc.ExistingMeals))
	for _, m := range sc.ExistingMeals {
		planned[m.Slot] = true
		if m.HasStarch {
			used++
		}
	}
	limit := Cap(sc.Strategy)
	if used >= limit {
		return Decision{AllowStarch: false, Reason: ReasonCapReached}
	}

	if used == 0 {
		switch slot {
		case types.SlotLunch:
			return Decision{AllowStarch: true, Reason: ReasonPreferredSlot}
		case types.SlotBreakfast:
			if !planned[types.SlotLunch] {
				return Decision{AllowStarch: true, Reason: ReasonPreferredSlot}
			}
		case types.SlotDinner:
			if !planned[types.SlotLunch] && !planned[types.SlotBreakfast] {
				return Decision{AllowStarch: true, Reason: ReasonPreferredSlot}
			}
		}
	}

	if sc.Strategy == types.StarchFlex && used < limit {
		return Decision{AllowStarch: true, Reason: ReasonFlexRemaining}
	}
	return Decision{AllowStarch: false, Reason: ReasonConserve}
}

// BuildPromptGuidance renders the decision as an instruction for the text
// generator. It returns "" when there is no context to act on.
func BuildPromptGuidance(slot types.MealSlot, sc *types.StarchContext) string {
	if sc == nil {
		return ""
	}
	d := DecidePlacement(slot, sc)

	var b strings.Builder
	b.WriteString("STARCH GAME PLAN:\n")
	fmt.Fprintf(&b, "- Strategy: %s (%d starch meal(s) per day)\n", sc.Strategy, Cap(sc.Strategy))
	if d.AllowStarch {
		b.WriteString("- This " + string(slot) + " MAY include one moderate portion of starchy carbs " +
			"(rice, potatoes, bread, pasta, oats, beans).\n")
		b.WriteString("- Pair the starch with lean protein and fibrous vegetables.\n")
	} else {
		b.WriteString("- This " + string(slot) + " must contain NO starchy carbs: no rice, potatoes, bread, " +
			"pasta, tortillas, oats, corn or beans.\n")
		b.WriteString("- Get carbohydrates from fibrous vegetables, leafy greens and berries only.\n")
	}
	return b.String()
}
