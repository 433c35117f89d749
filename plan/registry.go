package plan

import (
	"sort"
	"sync"
)

// Transform maps one item for a map step.
type Transform func(any) (any, error)

// Predicate tests one item for filter and first_true steps.
type Predicate func(any) (bool, error)

// Registry provides named function lookup for plan steps.
type Registry struct {
	mu         sync.RWMutex
	transforms map[string]Transform
	predicates map[string]Predicate
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		transforms: make(map[string]Transform),
		predicates: make(map[string]Predicate),
	}
}

// RegisterTransform adds or replaces a named transform.
func (r *Registry) RegisterTransform(name string, fn Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms[name] = fn
}

// RegisterPredicate adds or replaces a named predicate.
func (r *Registry) RegisterPredicate(name string, fn Predicate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.predicates[name] = fn
}

// Transform retrieves a transform by name.
func (r *Registry) Transform(name string) (Transform, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.transforms[name]
	return fn, ok
}

// Predicate retrieves a predicate by name.
func (r *Registry) Predicate(name string) (Predicate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.predicates[name]
	return fn, ok
}

// Transforms returns the sorted transform names.
func (r *Registry) Transforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.transforms)
}

// Predicates returns the sorted predicate names.
func (r *Registry) Predicates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return sortedKeys(r.predicates)
}

func sortedKeys[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
