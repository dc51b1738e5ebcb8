package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/carbs"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/hub"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/signature"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/starch"
	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// Pipeline defaults
const (
	DefaultMaxAttempts        = 3
	DefaultTemplateThreshold  = 0.6
	DefaultTemplateCandidates = 10
)

const starchFixHint = "The previous meal contained starchy carbs, which are not allowed for this meal. " +
	"Replace grains, potatoes, legumes, bread and sweeteners with non-starchy vegetables."

// PipelineDeps are the collaborators a Pipeline drives. Everything except
// Registry may be nil: a missing stage is skipped.
type PipelineDeps struct {
	Registry *hub.Registry
	Store    hub.ContextStore
	Text     TextGenerator
	Images   *ImageAttacher
	Cache    MealCache
	Catalog  TemplateCatalog
}

// PipelineConfig tunes the generation chain
type PipelineConfig struct {
	CacheVersion       string
	MaxAttempts        int
	TemplateThreshold  float64
	TemplateCandidates int
}

// Pipeline runs the cache -> template -> AI -> fallback chain with hub
// validation. It keeps no per-request state and is safe for concurrent use.
// Concurrent requests for the same signature are not deduplicated.
type Pipeline struct {
	registry   *hub.Registry
	store      hub.ContextStore
	text       TextGenerator
	images     *ImageAttacher
	cache      MealCache
	catalog    TemplateCatalog
	signer     signature.Signer
	attempts   int
	threshold  float64
	candidates int
	now        func() time.Time
}

// NewPipeline wires a pipeline
func NewPipeline(deps PipelineDeps, cfg PipelineConfig) *Pipeline {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.TemplateThreshold <= 0 || cfg.TemplateThreshold > 1 {
		cfg.TemplateThreshold = DefaultTemplateThreshold
	}
	if cfg.TemplateCandidates < 1 {
		cfg.TemplateCandidates = DefaultTemplateCandidates
	}
	registry := deps.Registry
	if registry == nil {
		registry = hub.NewRegistry()
	}
	images := deps.Images
	if images == nil {
		images = NewImageAttacher(nil, NewStaticImages(""), 0)
	}
	return &Pipeline{
		registry:   registry,
		store:      deps.Store,
		text:       deps.Text,
		images:     images,
		cache:      deps.Cache,
		catalog:    deps.Catalog,
		signer:     signature.New(cfg.CacheVersion),
		attempts:   cfg.MaxAttempts,
		threshold:  cfg.TemplateThreshold,
		candidates: cfg.TemplateCandidates,
		now:        time.Now,
	}
}

// activeHub is the resolved hub for one request
type activeHub struct {
	module     hub.Module
	context    *hub.Context
	guardrails hub.Guardrails
	fragment   hub.PromptFragment
}

// Generate resolves meals for a request. It never returns an error: failures
// are downgraded stage by stage and Success is false only for an invalid
// request or a slot without a fallback meal.
func (p *Pipeline) Generate(ctx context.Context, req types.MealGenerationRequest) types.MealGenerationResponse {
	r, err := req.Validate()
	if err != nil {
		log.Printf("[Pipeline] Rejecting request: %v", err)
		return types.MealGenerationResponse{Success: false, Error: err.Error()}
	}

	active := p.resolveHub(ctx, r)

	var sc *types.StarchContext
	if r.StarchContext != nil {
		copied := *r.StarchContext
		copied.ExistingMeals = append([]types.PlannedMeal(nil), r.StarchContext.ExistingMeals...)
		sc = &copied
	}

	meals := make([]*types.UnifiedMeal, 0, r.Count)
	exclude := make(map[string]bool)
	for i := 0; i < r.Count; i++ {
		meal, err := p.generateOne(ctx, r, active, sc, exclude, meals)
		if err != nil {
			log.Printf("[Pipeline] Could not resolve %s meal %d/%d: %v", r.MealSlot, i+1, r.Count, err)
			if len(meals) == 0 {
				return types.MealGenerationResponse{Success: false, Error: err.Error()}
			}
			break
		}
		meals = append(meals, meal)
		exclude[normalizeName(meal.Name)] = true
		if sc != nil {
			sc.ExistingMeals = append(sc.ExistingMeals, types.PlannedMeal{Slot: r.MealSlot, HasStarch: hasStarchyIngredients(meal)})
		}
	}

	resp := types.MealGenerationResponse{Success: true, Meal: meals[0], Source: meals[0].Source}
	if r.Count > 1 {
		resp.Meals = meals
	}
	return resp
}

// resolveHub picks the requested or detected hub and snapshots its context.
// Lookup failures leave the request unguarded or without context.
func (p *Pipeline) resolveHub(ctx context.Context, r types.MealGenerationRequest) *activeHub {
	var t hub.Type
	if r.DietType != "" {
		if parsed, ok := hub.ParseType(r.DietType); ok {
			t = parsed
		}
	}
	if t == "" && r.UserID != "" {
		detected, ok, err := hub.Detect(ctx, p.store, r.UserID)
		if err != nil {
			log.Printf("[Pipeline] Hub detection failed for user %s: %v", r.UserID, err)
		} else if ok {
			t = detected
		}
	}
	if t == "" {
		return nil
	}

	module, ok := p.registry.Get(t)
	if !ok {
		log.Printf("[Pipeline] Hub %s is not registered, continuing without guardrails", t)
		return nil
	}

	hc, err := module.Context(ctx, r.UserID)
	if err != nil {
		log.Printf("[Pipeline] Context fetch for hub %s failed, continuing without context: %v", t, err)
		hc = nil
	}
	snapshot := hub.Context{UserID: r.UserID, Now: p.now()}
	if hc != nil {
		snapshot = *hc
	}
	if !r.MacroTargets.IsZero() {
		snapshot.MacroTargets = r.MacroTargets
	}

	g := module.Guardrails(&snapshot, r.MealSlot)
	return &activeHub{
		module:     module,
		context:    &snapshot,
		guardrails: g,
		fragment:   module.BuildPrompt(&snapshot, g, r.MealSlot),
	}
}

func (p *Pipeline) signatureFor(r types.MealGenerationRequest) string {
	if len(r.Input.Ingredients) > 0 {
		return p.signer.Create(r.Input.Ingredients, r.MealSlot, r.Input.CookingMethods)
	}
	return p.signer.CreateCraving(r.Input.Text, r.MealSlot)
}

func searchTerms(r types.MealGenerationRequest) []string {
	if len(r.Input.Ingredients) > 0 {
		return r.Input.Ingredients
	}
	return strings.Fields(r.Input.Text)
}

func (p *Pipeline) generateOne(ctx context.Context, r types.MealGenerationRequest, active *activeHub, sc *types.StarchContext, exclude map[string]bool, previous []*types.UnifiedMeal) (*types.UnifiedMeal, error) {
	decision := starch.DecidePlacement(r.MealSlot, sc)
	sig := p.signatureFor(r)
	premade := r.Kind == types.KindPremade

	if meal := p.fromCache(ctx, sig, r, active, decision, exclude); meal != nil {
		return p.accept(ctx, r, meal, active, "", premade), nil
	}
	if meal := p.fromTemplates(ctx, r, active, decision, exclude); meal != nil {
		return p.accept(ctx, r, meal, active, sig, premade), nil
	}
	if meal := p.fromGenerator(ctx, r, active, sc, decision, exclude, previous); meal != nil {
		return p.accept(ctx, r, meal, active, sig, premade), nil
	}

	meal, err := FallbackMeal(r.MealSlot)
	if err != nil {
		return nil, err
	}
	log.Printf("[Pipeline] Using fallback %s meal '%s'", r.MealSlot, meal.Name)
	return p.accept(ctx, r, meal, active, "", true), nil
}

// fromCache returns a reusable cached meal, or nil on any miss or failure
func (p *Pipeline) fromCache(ctx context.Context, sig string, r types.MealGenerationRequest, active *activeHub, decision starch.Decision, exclude map[string]bool) *types.UnifiedMeal {
	if p.cache == nil {
		return nil
	}
	meal, err := p.cache.Get(ctx, sig)
	if errors.Is(err, ErrCacheMiss) {
		return nil
	}
	if err != nil {
		log.Printf("[MealCache] Lookup failed, treating as miss: %v", err)
		return nil
	}
	meal.MealSlot = r.MealSlot
	carbs.EnforceCarbs(meal)
	if !p.reusable(meal, active, decision, exclude) {
		return nil
	}
	meal.Source = types.ProvenanceCatalog
	meal.Cached = true
	log.Printf("[MealCache] Hit for %s", sig)
	return meal
}

// fromTemplates returns the closest reusable catalog template, or nil
func (p *Pipeline) fromTemplates(ctx context.Context, r types.MealGenerationRequest, active *activeHub, decision starch.Decision, exclude map[string]bool) *types.UnifiedMeal {
	if p.catalog == nil {
		return nil
	}
	terms := searchTerms(r)
	candidates, err := p.catalog.FindCandidates(ctx, r.MealSlot, terms, p.candidates)
	if err != nil {
		log.Printf("[TemplateCatalog] Lookup failed, skipping templates: %v", err)
		return nil
	}

	for len(candidates) > 0 {
		best, score := BestTemplateMatch(candidates, terms, p.threshold, exclude)
		if best == nil {
			return nil
		}
		meal := best.Clone()
		meal.MealSlot = r.MealSlot
		carbs.EnforceCarbs(meal)
		if p.reusable(meal, active, decision, exclude) {
			meal.Source = types.ProvenanceCatalog
			log.Printf("[TemplateCatalog] Matched '%s' (similarity %.2f)", meal.Name, score)
			return meal
		}
		candidates = without(candidates, best)
	}
	return nil
}

func without(list []*types.UnifiedMeal, drop *types.UnifiedMeal) []*types.UnifiedMeal {
	out := make([]*types.UnifiedMeal, 0, len(list))
	for _, m := range list {
		if m != drop {
			out = append(out, m)
		}
	}
	return out
}

// reusable rejects stored meals that were already returned in this batch,
// break the starch plan, or hard-fail the active hub
func (p *Pipeline) reusable(meal *types.UnifiedMeal, active *activeHub, decision starch.Decision, exclude map[string]bool) bool {
	if exclude[normalizeName(meal.Name)] {
		return false
	}
	if !decision.AllowStarch && hasStarchyIngredients(meal) {
		log.Printf("[Pipeline] Skipping stored meal '%s': starch not allowed (%s)", meal.Name, decision.Reason)
		return false
	}
	if active == nil {
		return true
	}
	res := active.module.Validate(meal, active.guardrails)
	if !res.IsValid {
		log.Printf("[Pipeline] Skipping stored meal '%s': %d hard violation(s) for hub %s", meal.Name, len(res.Hard()), active.module.Type())
		return false
	}
	meal.Warnings = res.Warnings
	return true
}

// fromGenerator runs the bounded generate/validate/regenerate loop
func (p *Pipeline) fromGenerator(ctx context.Context, r types.MealGenerationRequest, active *activeHub, sc *types.StarchContext, decision starch.Decision, exclude map[string]bool, previous []*types.UnifiedMeal) *types.UnifiedMeal {
	if p.text == nil {
		return nil
	}

	in := promptInput{
		Request:        r,
		StarchGuidance: starch.BuildPromptGuidance(r.MealSlot, sc),
	}
	if active != nil {
		in.Fragments = []hub.PromptFragment{active.fragment}
	}
	for _, m := range previous {
		in.Exclude = append(in.Exclude, m.Name)
	}

	for attempt := 1; attempt <= p.attempts; attempt++ {
		reply, err := p.text.Generate(ctx, buildTextRequest(in))
		if err != nil {
			log.Printf("[Pipeline] Generation attempt %d/%d failed: %v", attempt, p.attempts, err)
			continue
		}
		meal, err := ParseMeal(reply, r.MealSlot)
		if err != nil {
			log.Printf("[Pipeline] Generation attempt %d/%d returned unusable output: %v", attempt, p.attempts, err)
			continue
		}
		carbs.EnforceCarbs(meal)

		if exclude[normalizeName(meal.Name)] {
			log.Printf("[Pipeline] Attempt %d/%d repeated '%s'", attempt, p.attempts, meal.Name)
			in.FixHint = "The previous meal repeated one already served. Create a different meal."
			continue
		}
		if !decision.AllowStarch && hasStarchyIngredients(meal) {
			log.Printf("[Pipeline] Attempt %d/%d included starch against the plan (%s)", attempt, p.attempts, decision.Reason)
			in.FixHint = starchFixHint
			continue
		}
		if active != nil {
			res := active.module.Validate(meal, active.guardrails)
			if !res.IsValid {
				log.Printf("[Pipeline] Attempt %d/%d failed %s validation with %d hard violation(s)",
					attempt, p.attempts, active.module.Type(), len(res.Hard()))
				in.FixHint = active.module.FixHint(res.Violations)
				continue
			}
			for _, w := range res.Warnings {
				log.Printf("[Pipeline] Warning for '%s': %s", meal.Name, w)
			}
			meal.Warnings = res.Warnings
		}
		return meal
	}
	log.Printf("[Pipeline] Exhausted %d generation attempts for %s", p.attempts, r.MealSlot)
	return nil
}

// accept normalizes the meal, attaches an image and, when sig is set,
// writes it to the cache
func (p *Pipeline) accept(ctx context.Context, r types.MealGenerationRequest, meal *types.UnifiedMeal, active *activeHub, sig string, staticImage bool) *types.UnifiedMeal {
	if meal.ID == "" {
		meal.ID = uuid.New().String()
	}
	if meal.CreatedAt.IsZero() {
		meal.CreatedAt = p.now()
	}
	meal.MealSlot = r.MealSlot
	meal.HubType = ""
	if active != nil {
		meal.HubType = string(active.module.Type())
	}
	carbs.EnforceCarbs(meal)
	p.images.Attach(ctx, meal, staticImage)

	if sig != "" && p.cache != nil {
		stored := meal.Clone()
		stored.Warnings = nil
		if err := p.cache.Put(ctx, sig, stored); err != nil {
			log.Printf("[MealCache] Failed to store %s: %v", sig, err)
		}
	}
	return meal
}

// hasStarchyIngredients checks ingredient text, not the carb split, so a
// default 60/40 split on an unclassified meal does not count as starch
func hasStarchyIngredients(meal *types.UnifiedMeal) bool {
	return carbs.Classify(meal.IngredientNames()).Starchy > 0
}

func normalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
