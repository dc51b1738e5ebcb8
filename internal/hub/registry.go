package hub

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"
)

// Registry maps hub types to modules. It is populated once by the process
// bootstrap and read concurrently afterwards.
type Registry struct {
	mu      sync.RWMutex
	modules map[Type]Module
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{modules: make(map[Type]Module)}
}

// Register adds a module. Registering a type that is already present is a
// no-op and returns false.
func (r *Registry) Register(m Module) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.modules[m.Type()]; exists {
		return false
	}
	r.modules[m.Type()] = m
	log.Printf("[HubRegistry] Registered hub %s", m.Type())
	return true
}

// RegisterDefaults registers the four built-in hubs against one store
func (r *Registry) RegisterDefaults(store ContextStore) {
	r.Register(NewDiabetic(store))
	r.Register(NewGLP1(store))
	r.Register(NewAntiInflammatory(store))
	r.Register(NewCompetition(store))
}

// Get returns the module for a type
func (r *Registry) Get(t Type) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[t]
	return m, ok
}

// Types lists the registered hub types in a stable order
func (r *Registry) Types() []Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Type, 0, len(r.modules))
	for t := range r.modules {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Detect infers a hub from stored profile records: a diabetes profile selects
// the diabetic hub, otherwise any recorded medication dose selects GLP-1.
// ok is false when neither record exists.
func Detect(ctx context.Context, store ContextStore, userID string) (Type, bool, error) {
	if store == nil || userID == "" {
		return "", false, nil
	}
	profile, err := store.DiabetesProfile(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("failed to check diabetes profile: %w", err)
	}
	if profile != nil {
		return TypeDiabetic, true, nil
	}
	dose, err := store.LatestMedicationDose(ctx, userID)
	if err != nil {
		return "", false, fmt.Errorf("failed to check medication doses: %w", err)
	}
	if dose != nil {
		return TypeGLP1, true, nil
	}
	return "", false, nil
}

var (
	_ Module = (*Diabetic)(nil)
	_ Module = (*GLP1)(nil)
	_ Module = (*AntiInflammatory)(nil)
	_ Module = (*Competition)(nil)
)
