// Package storage provides the process-lifetime recipe cache.
package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/ottoweb/internal/domain"
	"github.com/hammamikhairi/ottoweb/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeStore = (*MemoryStore)(nil)

// Option configures a MemoryStore.
type Option func(*MemoryStore)

// WithCapacity bounds the number of cached recipes. When full, the oldest
// entry is evicted. Zero means unbounded.
func WithCapacity(n int) Option {
	return func(s *MemoryStore) {
		if n >= 0 {
			s.capacity = n
		}
	}
}

// MemoryStore is an in-memory recipe cache keyed by source URL. Safe for
// concurrent access.
type MemoryStore struct {
	mu       sync.RWMutex
	recipes  map[string]*domain.Recipe
	order    []string // insertion order, oldest first
	capacity int
	log      *logger.Logger
}

// NewMemoryStore creates an empty in-memory recipe store.
func NewMemoryStore(log *logger.Logger, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		recipes: make(map[string]*domain.Recipe),
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save stores a recipe under its source URL, overwriting any previous
// entry for the same URL.
func (s *MemoryStore) Save(ctx context.Context, recipe *domain.Recipe) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := recipe.SourceURL
	if _, ok := s.recipes[key]; !ok {
		s.order = append(s.order, key)
	}
	s.recipes[key] = recipe
	s.log.Debug("cached recipe %q from %s", recipe.Title, key)

	for s.capacity > 0 && len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.recipes, oldest)
		s.log.Debug("evicted %s", oldest)
	}
	return nil
}

// Load retrieves a recipe by source URL.
func (s *MemoryStore) Load(ctx context.Context, url string) (*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.recipes[url]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return r, nil
}

// Delete removes a recipe by source URL.
func (s *MemoryStore) Delete(ctx context.Context, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.recipes[url]; !ok {
		return domain.ErrNotFound
	}
	delete(s.recipes, url)
	for i, k := range s.order {
		if k == url {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns all cached recipes sorted by title.
func (s *MemoryStore) List(ctx context.Context) ([]*domain.Recipe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Recipe, 0, len(s.recipes))
	for _, r := range s.recipes {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].SourceURL < out[j].SourceURL
	})
	return out, nil
}
