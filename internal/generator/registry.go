package generator

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/dailypuzzle/puzzle-engine/internal/models"
)

// Registry manages puzzle generators. It is constructed once at process
// start and injected into everything that generates.
type Registry struct {
	mu         sync.RWMutex
	generators map[string]Generator
}

// NewRegistry creates a new generator registry
func NewRegistry() *Registry {
	return &Registry{
		generators: make(map[string]Generator),
	}
}

// Register adds a generator to the registry
func (r *Registry) Register(g Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[g.Name()] = g
}

// Get retrieves a generator by name
func (r *Registry) Get(name string) Generator {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.generators[name]
}

// List returns all registered generator names, sorted
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.generators))
	for name := range r.generators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ForDate deterministically picks the generator responsible for a given
// date and category. The same inputs always select the same model, so
// retries within a day stay on one generator.
func (r *Registry) ForDate(date string, category models.Category) (Generator, error) {
	names := r.List()
	if len(names) == 0 {
		return nil, ErrNoGenerators
	}

	h := fnv.New32a()
	h.Write([]byte(date))
	h.Write([]byte(category))
	name := names[int(h.Sum32())%len(names)]

	return r.Get(name), nil
}

// HealthCheckAll checks health of all generators that support it
func (r *Registry) HealthCheckAll(ctx context.Context) map[string]error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	results := make(map[string]error)
	for name, g := range r.generators {
		if hc, ok := g.(HealthChecker); ok {
			results[name] = hc.HealthCheck(ctx)
		} else {
			results[name] = nil
		}
	}
	return results
}

// Unregister removes a generator from the registry
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.generators, name)
}
