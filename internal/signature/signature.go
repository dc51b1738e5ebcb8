// Package signature builds the versioned, order-independent cache keys the
// meal pipeline uses to look up previously generated meals.
//
// A key has four '|' separated segments:
//
//	{version}|{meal_slot}|{sorted,normalized,ingredients}|{sorted,ingredient:method,pairs}
//
// Bumping the version string invalidates every entry written under the old
// one; there is no other invalidation mechanism.
package signature

import (
	"sort"
	"strings"
	"unicode"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// DefaultVersion is the cache version token used when none is configured
const DefaultVersion = "v2-canva"

const (
	segmentSep = "|"
	listSep    = ","
	pairSep    = ":"

	cravingPrefix = "craving:"
)

// modifiers carry no identity for matching purposes
var (
	modifierPrefixes = []string{
		"fresh_", "organic_", "raw_", "frozen_", "chopped_", "diced_",
		"sliced_", "minced_", "shredded_", "grated_", "boneless_", "skinless_",
	}
	modifierSuffixes = []string{
		"_raw", "_fresh", "_organic", "_frozen", "_chopped", "_diced",
		"_sliced", "_minced", "_shredded", "_grated",
	}
)

// Signer creates signatures under one cache version
type Signer struct {
	Version string
}

// New returns a Signer for version, falling back to DefaultVersion
func New(version string) Signer {
	version = strings.TrimSpace(version)
	if version == "" {
		version = DefaultVersion
	}
	return Signer{Version: version}
}

// CreateSignature builds a key with the default cache version
func CreateSignature(ingredients []string, slot types.MealSlot, cookingMethods map[string]string) string {
	return New(DefaultVersion).Create(ingredients, slot, cookingMethods)
}

// Create builds the signature for an ingredient set, meal slot and optional
// ingredient->cooking method map
func (s Signer) Create(ingredients []string, slot types.MealSlot, cookingMethods map[string]string) string {
	norm := NormalizeIngredients(ingredients)

	pairs := make([]string, 0, len(cookingMethods))
	for ing, method := range cookingMethods {
		key := NormalizeIngredient(ing)
		m := normalizeToken(method)
		if key == "" || m == "" {
			continue
		}
		pairs = append(pairs, key+pairSep+m)
	}
	sort.Strings(pairs)

	return strings.Join([]string{
		s.version(),
		string(slot),
		strings.Join(norm, listSep),
		strings.Join(pairs, listSep),
	}, segmentSep)
}

// CreateCraving builds the equivalent key for a free-text craving
func (s Signer) CreateCraving(text string, slot types.MealSlot) string {
	words := NormalizeIngredients(strings.Fields(text))
	return strings.Join([]string{
		s.version(),
		string(slot),
		cravingPrefix + strings.Join(words, "_"),
		"",
	}, segmentSep)
}

func (s Signer) version() string {
	if s.Version == "" {
		return DefaultVersion
	}
	return s.Version
}

// NormalizeIngredient lowercases, underscores whitespace and strips modifier
// prefixes and suffixes. It returns "" for input with no usable characters.
func NormalizeIngredient(raw string) string {
	token := normalizeToken(raw)
	for changed := true; changed; {
		changed = false
		for _, p := range modifierPrefixes {
			if strings.HasPrefix(token, p) && len(token) > len(p) {
				token = strings.TrimPrefix(token, p)
				changed = true
			}
		}
		for _, sfx := range modifierSuffixes {
			if strings.HasSuffix(token, sfx) && len(token) > len(sfx) {
				token = strings.TrimSuffix(token, sfx)
				changed = true
			}
		}
	}
	return token
}

// NormalizeIngredients normalizes, drops empties and duplicates, and sorts
func NormalizeIngredients(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		n := NormalizeIngredient(r)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// normalizeToken keeps [a-z0-9_-] and folds whitespace runs into one underscore
func normalizeToken(raw string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(raw)) {
		switch {
		case unicode.IsSpace(r) || r == '_':
			pendingSep = b.Len() > 0
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-':
			if pendingSep {
				b.WriteByte('_')
				pendingSep = false
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Tokens returns the ingredient segment of a signature as a slice
func Tokens(sig string) []string {
	parts := strings.Split(sig, segmentSep)
	if len(parts) < 3 || parts[2] == "" {
		return nil
	}
	seg := parts[2]
	if strings.HasPrefix(seg, cravingPrefix) {
		seg = strings.TrimPrefix(seg, cravingPrefix)
		return strings.Split(seg, "_")
	}
	return strings.Split(seg, listSep)
}

// HashSignature folds a signature into a 32-bit number using the h*31+c
// string hash. It is stable across processes.
func HashSignature(sig string) uint32 {
	var h uint32
	for _, r := range sig {
		h = h*31 + uint32(r)
	}
	return h
}

// CalculateSignatureSimilarity is the Jaccard index of the ingredient segments
// of two signatures
func CalculateSignatureSimilarity(a, b string) float64 {
	return Jaccard(Tokens(a), Tokens(b))
}

// Jaccard returns |a ∩ b| / |a ∪ b| over normalized ingredient sets. Two empty
// sets score 0 so that an empty template never looks like a perfect match.
func Jaccard(a, b []string) float64 {
	setA := toSet(NormalizeIngredients(a))
	setB := toSet(NormalizeIngredients(b))
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	inter := 0
	for k := range setA {
		if _, ok := setB[k]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}
