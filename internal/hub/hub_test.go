package hub

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

type fakeStore struct {
	glucose  *GlucoseReading
	dose     *MedicationDose
	diabetes *DiabetesProfile
	health   *HealthProfile
	err      error
}

func (f *fakeStore) LatestGlucose(ctx context.Context, userID string) (*GlucoseReading, error) {
	return f.glucose, f.err
}

func (f *fakeStore) LatestMedicationDose(ctx context.Context, userID string) (*MedicationDose, error) {
	return f.dose, f.err
}

func (f *fakeStore) DiabetesProfile(ctx context.Context, userID string) (*DiabetesProfile, error) {
	return f.diabetes, f.err
}

func (f *fakeStore) HealthProfile(ctx context.Context, userID string) (*HealthProfile, error) {
	return f.health, f.err
}

func meal(name string, protein, carbs, fat, calories float64, ingredients ...string) *types.UnifiedMeal {
	m := &types.UnifiedMeal{Name: name, Protein: protein, Carbs: carbs, Fat: fat, Calories: calories}
	for _, ing := range ingredients {
		m.Ingredients = append(m.Ingredients, types.Ingredient{Name: ing})
	}
	return m
}

func findViolation(res ValidationResult, rule Rule) (Violation, bool) {
	for _, v := range res.Violations {
		if v.Rule == rule {
			return v, true
		}
	}
	return Violation{}, false
}

func TestRegistry_RegisterIsIdempotent(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.Register(NewDiabetic(nil)))
	assert.False(t, r.Register(NewDiabetic(nil)))

	r.RegisterDefaults(nil)
	r.RegisterDefaults(nil)
	assert.Equal(t, []Type{TypeAntiInflammatory, TypeCompetition, TypeDiabetic, TypeGLP1}, r.Types())

	m, ok := r.Get(TypeCompetition)
	require.True(t, ok)
	assert.Equal(t, TypeCompetition, m.Type())

	_, ok = r.Get(Type("keto"))
	assert.False(t, ok)
}

func TestParseType(t *testing.T) {
	for raw, want := range map[string]Type{
		"Diabetic":          TypeDiabetic,
		"GLP-1":             TypeGLP1,
		"anti-inflammatory": TypeAntiInflammatory,
		"strict-macro":      TypeCompetition,
	} {
		got, ok := ParseType(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got)
	}
	_, ok := ParseType("")
	assert.False(t, ok)
}

func TestDetect(t *testing.T) {
	ctx := context.Background()

	typ, ok, err := Detect(ctx, &fakeStore{diabetes: &DiabetesProfile{DiabetesType: "type2"}, dose: &MedicationDose{}}, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, TypeDiabetic, typ)

	typ, ok, err = Detect(ctx, &fakeStore{dose: &MedicationDose{Medication: "semaglutide"}}, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, TypeGLP1, typ)

	_, ok, err = Detect(ctx, &fakeStore{}, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = Detect(ctx, &fakeStore{err: errors.New("db down")}, "u1")
	assert.Error(t, err)
}

func TestClassifyGlucose(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recent := now.Add(-30 * time.Minute)

	tests := []struct {
		value  float64
		timing GlucoseTiming
		want   GlucoseState
	}{
		{65, TimingFasted, GlucoseLow},
		{75, TimingFasted, GlucoseLowNormal},
		{75, TimingPostMeal, GlucoseLowNormal},
		{95, TimingPostMeal, GlucoseLowNormal},
		{95, TimingFasted, GlucoseInRange},
		{150, TimingFasted, GlucoseElevated},
		{150, TimingPostMeal, GlucoseInRange},
		{210, TimingFasted, GlucoseHighRisk},
		{210, TimingPostMeal, GlucoseElevated},
		{260, TimingRandom, GlucoseHighRisk},
	}
	for _, tt := range tests {
		got := ClassifyGlucose(&GlucoseReading{Value: tt.value, Timing: tt.timing, TakenAt: recent}, now)
		assert.Equal(t, tt.want, got, "%v %s", tt.value, tt.timing)
	}

	stale := &GlucoseReading{Value: 210, Timing: TimingFasted, TakenAt: now.Add(-5 * time.Hour)}
	assert.Equal(t, GlucoseUnknown, ClassifyGlucose(stale, now))
	assert.Equal(t, GlucoseUnknown, ClassifyGlucose(nil, now))
}

func TestParseGlucoseTiming(t *testing.T) {
	assert.Equal(t, TimingFasted, ParseGlucoseTiming("FASTED"))
	assert.Equal(t, TimingPreMeal, ParseGlucoseTiming("before meal"))
	assert.Equal(t, TimingPostMeal, ParseGlucoseTiming("post-meal"))
	assert.Equal(t, TimingRandom, ParseGlucoseTiming("whenever"))
}

func TestDiabetic_HighFastingGlucoseScenario(t *testing.T) {
	now := time.Now()
	store := &fakeStore{glucose: &GlucoseReading{
		Value:   210,
		Timing:  ParseGlucoseTiming("FASTED"),
		TakenAt: now.Add(-30 * time.Minute),
	}}
	d := NewDiabetic(store)
	d.now = func() time.Time { return now }

	hc, err := d.Context(context.Background(), "user-1")
	require.NoError(t, err)

	g := d.Guardrails(hc, types.SlotLunch)
	assert.Equal(t, string(GlucoseHighRisk), g.State)
	assert.Equal(t, 15.0, g.CarbCeiling)

	prompt := d.BuildPrompt(hc, g, types.SlotLunch)
	assert.Contains(t, prompt.UserPromptAddition, "very low-carb meal (under 15g carbs)")
	assert.Equal(t, 100, prompt.Priority)

	res := d.Validate(meal("Chicken burrito bowl", 40, 55, 15, 520, "chicken", "black beans", "salsa"), g)
	assert.False(t, res.IsValid)
	v, ok := findViolation(res, RuleCarbCeiling)
	require.True(t, ok)
	assert.Equal(t, SeverityHard, v.Severity)
	assert.Equal(t, 55.0, v.Actual)
	assert.Equal(t, g.CarbCeiling, v.Expected)

	hint := d.FixHint(res.Violations)
	assert.Contains(t, hint, "15g or less")
}

func TestDiabetic_StaleReadingUsesBalancedDefault(t *testing.T) {
	now := time.Now()
	hc := &Context{Now: now, Glucose: &GlucoseReading{Value: 250, Timing: TimingFasted, TakenAt: now.Add(-6 * time.Hour)}}
	d := NewDiabetic(nil)

	g := d.Guardrails(hc, types.SlotDinner)
	assert.Equal(t, 45.0, g.CarbCeiling)
	assert.Contains(t, d.BuildPrompt(hc, g, types.SlotDinner).UserPromptAddition, "No recent glucose reading")
}

func TestDiabetic_SoftRulesDoNotBlock(t *testing.T) {
	d := NewDiabetic(nil)
	g := d.Guardrails(nil, types.SlotLunch)

	m := meal("Tuna salad", 12, 20, 10, 300, "tuna", "white rice", "cucumber")
	res := d.Validate(m, g)
	assert.True(t, res.IsValid)
	_, hasProtein := findViolation(res, RuleProteinFloor)
	_, hasGI := findViolation(res, RuleGlycemicIndex)
	assert.True(t, hasProtein)
	assert.True(t, hasGI)
	assert.Len(t, res.Warnings, 2)
	assert.Empty(t, d.FixHint(res.Violations))
}

func TestDiabetic_BlockedSugarWithExceptions(t *testing.T) {
	d := NewDiabetic(nil)
	g := d.Guardrails(nil, types.SlotSnack)

	ok := d.Validate(meal("Snap pea crunch", 22, 12, 5, 200, "sugar snap peas", "cottage cheese", "lemon juice"), g)
	assert.True(t, ok.IsValid)

	bad := d.Validate(meal("Honey yogurt", 22, 30, 5, 250, "greek yogurt", "honey"), g)
	assert.False(t, bad.IsValid)
	v, found := findViolation(bad, RuleBlockedIngredient)
	require.True(t, found)
	assert.Equal(t, "honey", v.Actual)
}

func TestGLP1ProteinFloor(t *testing.T) {
	assert.Equal(t, 30.0, GLP1ProteinFloor(0))
	assert.Equal(t, 25.0, GLP1ProteinFloor(50))
	assert.Equal(t, 32.0, GLP1ProteinFloor(80))
	assert.Equal(t, 40.0, GLP1ProteinFloor(130))
}

func TestGLP1_RecentDoseTightensPortions(t *testing.T) {
	now := time.Now()
	h := NewGLP1(&fakeStore{
		dose:   &MedicationDose{Medication: "semaglutide", DoseMg: 1, TakenAt: now.Add(-36 * time.Hour)},
		health: &HealthProfile{BodyweightKg: 90},
	})
	h.now = func() time.Time { return now }

	hc, err := h.Context(context.Background(), "user-2")
	require.NoError(t, err)
	g := h.Guardrails(hc, types.SlotDinner)
	assert.Equal(t, 36.0, g.ProteinFloor)
	assert.Equal(t, 400.0, g.CalorieCap)
	assert.Equal(t, 150.0, h.Guardrails(hc, types.SlotSnack).CalorieCap)

	p := h.BuildPrompt(hc, g, types.SlotDinner)
	assert.Contains(t, p.UserPromptAddition, "PROTEIN FIRST")
	assert.Contains(t, p.UserPromptAddition, "Last dose was 1 day(s) ago")

	hc.Medication.TakenAt = now.Add(-5 * 24 * time.Hour)
	g = h.Guardrails(hc, types.SlotDinner)
	assert.Equal(t, 500.0, g.CalorieCap)
	assert.NotContains(t, h.BuildPrompt(hc, g, types.SlotDinner).UserPromptAddition, "Last dose")
}

func TestGLP1_Validate(t *testing.T) {
	h := NewGLP1(nil)
	g := h.Guardrails(nil, types.SlotLunch)

	res := h.Validate(meal("Deep-fried fish", 20, 30, 28, 650, "cod", "batter"), g)
	assert.False(t, res.IsValid)
	for _, rule := range []Rule{RuleProteinFloor, RuleFatCeiling, RuleBlockedCookingMethod} {
		v, ok := findViolation(res, rule)
		require.True(t, ok, rule)
		assert.Equal(t, SeverityHard, v.Severity)
	}
	cal, ok := findViolation(res, RuleCalorieCap)
	require.True(t, ok)
	assert.Equal(t, SeveritySoft, cal.Severity)

	hint := h.FixHint(res.Violations)
	assert.Contains(t, hint, "at least 30g")
	assert.Contains(t, hint, "20g or less")

	good := h.Validate(meal("Air-fried chicken", 35, 15, 10, 380, "chicken breast", "zucchini"), g)
	assert.True(t, good.IsValid)
}

func TestAntiInflammatory_ExceptionsAndScore(t *testing.T) {
	h := NewAntiInflammatory(nil)
	g := h.Guardrails(nil, types.SlotDinner)

	air := h.Validate(meal("Air-fried salmon with kale", 35, 20, 15, 450, "salmon", "kale", "turmeric", "olive oil"), g)
	assert.True(t, air.IsValid)
	_, low := findViolation(air, RuleAntiInflammatoryScore)
	assert.False(t, low)

	fried := h.Validate(meal("Fried chicken", 35, 20, 25, 600, "chicken", "flour"), g)
	assert.False(t, fried.IsValid)
	v, ok := findViolation(fried, RuleBlockedCookingMethod)
	require.True(t, ok)
	assert.Equal(t, "fried", v.Actual)

	plain := h.Validate(meal("Turkey lettuce cups", 30, 10, 10, 300, "ground turkey", "lettuce"), g)
	assert.True(t, plain.IsValid, "a low score only warns")
	score, ok := findViolation(plain, RuleAntiInflammatoryScore)
	require.True(t, ok)
	assert.Equal(t, SeveritySoft, score.Severity)
	assert.NotEmpty(t, plain.Warnings)
}

func TestAntiInflammatoryScore_Capped(t *testing.T) {
	m := meal("Everything bowl", 30, 30, 20, 500,
		"salmon", "sardines", "mackerel", "turmeric", "ginger", "extra virgin olive oil", "blueberries", "kale")
	assert.Equal(t, 10.0, AntiInflammatoryScore(m))
	assert.Equal(t, 0.0, AntiInflammatoryScore(meal("Plain", 0, 0, 0, 0, "water")))
}

func TestAntiInflammatoryScore_BerriesCountOnce(t *testing.T) {
	assert.Equal(t, 1.5, AntiInflammatoryScore(meal("Berry cup", 5, 15, 0, 80, "blueberries")))
	assert.Equal(t, 1.5, AntiInflammatoryScore(meal("Berry cup", 5, 15, 0, 80, "mixed berries", "blueberries")))
}

func TestCompetition_ProteinFloorIsHard(t *testing.T) {
	h := NewCompetition(nil)
	g := h.Guardrails(nil, types.SlotLunch)
	require.Equal(t, 40.0, g.ProteinFloor)

	res := h.Validate(meal("Light salad", 10, 12, 8, 200, "lettuce", "cucumber"), g)
	assert.False(t, res.IsValid)
	v, ok := findViolation(res, RuleProteinFloor)
	require.True(t, ok)
	assert.Equal(t, SeverityHard, v.Severity)
	assert.Equal(t, 10.0, v.Actual)
	assert.Equal(t, 40.0, v.Expected)
}

func TestCompetition_Substitutions(t *testing.T) {
	h := NewCompetition(nil)
	g := h.Guardrails(nil, types.SlotDinner)

	swapped := h.Validate(meal("Chicken stir fry", 45, 15, 10, 400, "chicken breast", "cauliflower rice", "broccoli"), g)
	assert.True(t, swapped.IsValid)

	rice := h.Validate(meal("Chicken and rice", 45, 25, 10, 450, "chicken breast", "jasmine rice"), g)
	assert.False(t, rice.IsValid)
	v, ok := findViolation(rice, RuleBlockedIngredient)
	require.True(t, ok)
	assert.Equal(t, "rice", v.Actual)
	assert.Contains(t, v.Message, "cauliflower rice")
}

func TestCompetition_TargetsOverrideDefaults(t *testing.T) {
	h := NewCompetition(&fakeStore{health: &HealthProfile{Targets: &types.MacroTargets{Protein: 50, Carbs: 20}}})
	hc, err := h.Context(context.Background(), "user-3")
	require.NoError(t, err)

	g := h.Guardrails(hc, types.SlotLunch)
	assert.Equal(t, 50.0, g.ProteinFloor)
	assert.Equal(t, 20.0, g.CarbCeiling)
	assert.Equal(t, float64(CompetitionFatCeiling), g.FatCeiling)

	hc.MacroTargets = &types.MacroTargets{Protein: 60}
	assert.Equal(t, 60.0, h.Guardrails(hc, types.SlotLunch).ProteinFloor)
}

func TestModules_ContextErrorsPropagate(t *testing.T) {
	store := &fakeStore{err: errors.New("boom")}
	for _, m := range []Module{NewDiabetic(store), NewGLP1(store), NewAntiInflammatory(store), NewCompetition(store)} {
		_, err := m.Context(context.Background(), "u")
		assert.Error(t, err, m.Type())

		hc, err := m.Context(context.Background(), "")
		assert.NoError(t, err)
		assert.NotNil(t, hc)
	}
}
