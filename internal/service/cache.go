package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/alchemorsel-mealgen/backend/internal/types"
)

// MealCacheKeyPrefix namespaces signature keys in Redis
const MealCacheKeyPrefix = "meal:sig:"

// RedisMealCache stores meals as JSON under their signature. Entries carry no
// TTL; a cache version bump orphans old keys instead.
type RedisMealCache struct {
	client *redis.Client
}

// NewRedisMealCache wraps a Redis client
func NewRedisMealCache(client *redis.Client) *RedisMealCache {
	return &RedisMealCache{client: client}
}

func (c *RedisMealCache) Get(ctx context.Context, signature string) (*types.UnifiedMeal, error) {
	data, err := c.client.Get(ctx, MealCacheKeyPrefix+signature).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read meal cache: %w", err)
	}
	var meal types.UnifiedMeal
	if err := json.Unmarshal(data, &meal); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached meal: %w", err)
	}
	return &meal, nil
}

// Put overwrites any existing entry; the last writer wins
func (c *RedisMealCache) Put(ctx context.Context, signature string, meal *types.UnifiedMeal) error {
	data, err := json.Marshal(meal)
	if err != nil {
		return fmt.Errorf("failed to marshal meal: %w", err)
	}
	if err := c.client.Set(ctx, MealCacheKeyPrefix+signature, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write meal cache: %w", err)
	}
	return nil
}

// MemoryMealCache is a process-local MealCache for development and tests
type MemoryMealCache struct {
	mu    sync.RWMutex
	meals map[string]*types.UnifiedMeal
}

func NewMemoryMealCache() *MemoryMealCache {
	return &MemoryMealCache{meals: make(map[string]*types.UnifiedMeal)}
}

func (c *MemoryMealCache) Get(ctx context.Context, signature string) (*types.UnifiedMeal, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	meal, ok := c.meals[signature]
	if !ok {
		return nil, ErrCacheMiss
	}
	return meal.Clone(), nil
}

func (c *MemoryMealCache) Put(ctx context.Context, signature string, meal *types.UnifiedMeal) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.meals[signature] = meal.Clone()
	return nil
}

// Len reports the number of stored entries
func (c *MemoryMealCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.meals)
}
