package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// FlexibleNumber accepts 35, 35.5, "35", "35g" and "~35 kcal"
type FlexibleNumber float64

var leadingNumber = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

func (n *FlexibleNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*n = 0
		return nil
	}

	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*n = FlexibleNumber(num)
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("invalid number format: %s", string(data))
	}
	match := leadingNumber.FindString(str)
	if match == "" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return fmt.Errorf("invalid number format: %q", str)
	}
	*n = FlexibleNumber(v)
	return nil
}

// flexibleString can handle both string and number values
type flexibleString struct {
	Value string
}

func (s *flexibleString) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		s.Value = ""
		return nil
	}

	// Try to unmarshal as number first
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		s.Value = strconv.FormatFloat(num, 'f', -1, 64)
		return nil
	}

	// Try to unmarshal as string
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		s.Value = strings.TrimSpace(str)
		return nil
	}
	return fmt.Errorf("invalid string format: %s", string(data))
}

// flexibleIngredient accepts {"name","quantity","unit"} objects or plain
// strings such as "2 cups spinach"
type flexibleIngredient types.Ingredient

func (i *flexibleIngredient) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*i = flexibleIngredient(parseIngredientLine(str))
		return nil
	}

	var obj struct {
		Name     string         `json:"name"`
		Item     string         `json:"item"`
		Quantity flexibleString `json:"quantity"`
		Amount   flexibleString `json:"amount"`
		Unit     string         `json:"unit"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid ingredient format: %w", err)
	}
	name := obj.Name
	if name == "" {
		name = obj.Item
	}
	qty := obj.Quantity.Value
	if qty == "" {
		qty = obj.Amount.Value
	}
	*i = flexibleIngredient{
		Name:     strings.TrimSpace(name),
		Quantity: qty,
		Unit:     strings.TrimSpace(obj.Unit),
	}
	return nil
}

var knownUnits = map[string]bool{
	"g": true, "kg": true, "mg": true, "oz": true, "lb": true, "lbs": true, "ml": true, "l": true,
	"cup": true, "cups": true, "tbsp": true, "tsp": true, "tablespoon": true, "tablespoons": true,
	"teaspoon": true, "teaspoons": true, "clove": true, "cloves": true, "slice": true, "slices": true,
	"piece": true, "pieces": true, "whole": true, "can": true, "cans": true, "pinch": true,
	"handful": true, "medium": true, "large": true, "small": true,
}

var quantityToken = regexp.MustCompile(`^(\d+(?:[./]\d+)?)([a-zA-Z]*)$`)

// parseIngredientLine splits "150g chicken breast" or "2 cups rice" into
// quantity, unit and name
func parseIngredientLine(line string) types.Ingredient {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return types.Ingredient{}
	}
	m := quantityToken.FindStringSubmatch(fields[0])
	if m == nil {
		return types.Ingredient{Name: strings.Join(fields, " ")}
	}
	ing := types.Ingredient{Quantity: m[1]}
	rest := fields[1:]
	switch {
	case m[2] != "" && knownUnits[strings.ToLower(m[2])]:
		ing.Unit = strings.ToLower(m[2])
	case m[2] != "":
		// "2eggs"
		rest = append([]string{m[2]}, rest...)
	case len(rest) > 1 && knownUnits[strings.ToLower(rest[0])]:
		ing.Unit = strings.ToLower(rest[0])
		rest = rest[1:]
	}
	if len(rest) > 0 && strings.EqualFold(rest[0], "of") {
		rest = rest[1:]
	}
	ing.Name = strings.Join(rest, " ")
	return ing
}

// flexibleInstructions accepts one string or a list of steps
type flexibleInstructions []string

var stepNumber = regexp.MustCompile(`^\s*(?:step\s*)?\d+[.):-]?\s*`)

func (f *flexibleInstructions) UnmarshalJSON(data []byte) error {
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err == nil {
		steps := make([]string, 0, len(list))
		for _, raw := range list {
			var s flexibleString
			if err := json.Unmarshal(raw, &s); err == nil {
				steps = appendStep(steps, s.Value)
				continue
			}
			var obj struct {
				Step        string `json:"step"`
				Text        string `json:"text"`
				Instruction string `json:"instruction"`
			}
			if err := json.Unmarshal(raw, &obj); err != nil {
				return fmt.Errorf("invalid instruction format: %w", err)
			}
			steps = appendStep(steps, obj.Step+obj.Text+obj.Instruction)
		}
		*f = steps
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		if string(bytes.TrimSpace(data)) == "null" {
			*f = nil
			return nil
		}
		return fmt.Errorf("invalid instructions format: %s", string(data))
	}
	var steps []string
	for _, line := range strings.Split(text, "\n") {
		steps = appendStep(steps, line)
	}
	*f = steps
	return nil
}

func appendStep(steps []string, s string) []string {
	s = strings.TrimSpace(stepNumber.ReplaceAllString(s, ""))
	if s == "" {
		return steps
	}
	return append(steps, s)
}

// generatedMeal is the structured reply the generators are asked for
type generatedMeal struct {
	Name         string               `json:"name"`
	Description  string               `json:"description"`
	Ingredients  []flexibleIngredient `json:"ingredients"`
	Instructions flexibleInstructions `json:"instructions"`
	Calories     FlexibleNumber       `json:"calories"`
	Protein      FlexibleNumber       `json:"protein"`
	Carbs        FlexibleNumber       `json:"carbs"`
	StarchyCarbs FlexibleNumber       `json:"starchy_carbs"`
	FibrousCarbs FlexibleNumber       `json:"fibrous_carbs"`
	Fat          FlexibleNumber       `json:"fat"`
	Fiber        FlexibleNumber       `json:"fiber"`
	CookTime     flexibleString       `json:"cook_time"`
	Difficulty   string               `json:"difficulty"`
	Badges       []string             `json:"badges"`
}

// ParseMeal extracts the JSON object from a generator reply and converts it
// into a draft meal for slot. Replies wrapped in code fences or prose, and
// replies that nest the object under "meal" or "recipe", are accepted.
func ParseMeal(reply string, slot types.MealSlot) (*types.UnifiedMeal, error) {
	raw, err := extractJSONObject(reply)
	if err != nil {
		return nil, err
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}
	for _, key := range []string{"meal", "recipe"} {
		if inner, ok := wrapper[key]; ok && len(bytes.TrimSpace(inner)) > 0 && bytes.TrimSpace(inner)[0] == '{' {
			raw = inner
			break
		}
	}

	var g generatedMeal
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	meal := &types.UnifiedMeal{
		Name:         strings.TrimSpace(g.Name),
		Description:  strings.TrimSpace(g.Description),
		MealSlot:     slot,
		Instructions: []string(g.Instructions),
		Calories:     float64(g.Calories),
		Protein:      float64(g.Protein),
		Carbs:        float64(g.Carbs),
		StarchyCarbs: float64(g.StarchyCarbs),
		FibrousCarbs: float64(g.FibrousCarbs),
		Fat:          float64(g.Fat),
		Fiber:        float64(g.Fiber),
		CookTime:     g.CookTime.Value,
		Difficulty:   strings.ToLower(strings.TrimSpace(g.Difficulty)),
		Badges:       g.Badges,
		Source:       types.ProvenanceAI,
	}
	if _, err := strconv.Atoi(meal.CookTime); err == nil {
		meal.CookTime += " minutes"
	}
	for _, ing := range g.Ingredients {
		if strings.TrimSpace(ing.Name) == "" {
			continue
		}
		meal.Ingredients = append(meal.Ingredients, types.Ingredient(ing))
	}

	if meal.Name == "" {
		return nil, fmt.Errorf("%w: missing name", ErrMalformedOutput)
	}
	if len(meal.Ingredients) == 0 {
		return nil, fmt.Errorf("%w: no ingredients", ErrMalformedOutput)
	}
	return meal, nil
}

// extractJSONObject returns the outermost {...} in text
func extractJSONObject(text string) ([]byte, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrMalformedOutput)
	}
	return []byte(text[start : end+1]), nil
}
