// Package registry holds the named query predicates, display keywords and
// template functions a host exposes to its users.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrDuplicate is returned when a name is registered twice in one namespace.
var ErrDuplicate = errors.New("already registered")

// ErrUnknown is returned when a name is not registered.
var ErrUnknown = errors.New("not registered")

// PredicateFunc selects members of subset. subset holds full revision hashes
// and the result preserves its order.
type PredicateFunc func(ctx context.Context, subset []string, args []string) ([]string, error)

// KeywordFunc renders a display keyword for one revision.
type KeywordFunc func(ctx context.Context, hash string) ([]string, error)

// TemplateFunc is a display function taking explicit arguments for one
// revision.
type TemplateFunc func(ctx context.Context, hash string, args []string) (string, error)

// Registry is a set of namespaced functions. The zero value is not usable;
// call New.
type Registry struct {
	mu         sync.RWMutex
	predicates map[string]PredicateFunc
	keywords   map[string]KeywordFunc
	templates  map[string]TemplateFunc
}

func New() *Registry {
	return &Registry{
		predicates: make(map[string]PredicateFunc),
		keywords:   make(map[string]KeywordFunc),
		templates:  make(map[string]TemplateFunc),
	}
}

// RegisterPredicate adds a query predicate.
func (r *Registry) RegisterPredicate(name string, fn PredicateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return add(r.predicates, "predicate", name, fn)
}

// RegisterKeyword adds a display keyword.
func (r *Registry) RegisterKeyword(name string, fn KeywordFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return add(r.keywords, "keyword", name, fn)
}

// RegisterTemplate adds a template function.
func (r *Registry) RegisterTemplate(name string, fn TemplateFunc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return add(r.templates, "template function", name, fn)
}

func (r *Registry) Predicate(name string) (PredicateFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.predicates[name]
	return fn, ok
}

func (r *Registry) Keyword(name string) (KeywordFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.keywords[name]
	return fn, ok
}

func (r *Registry) Template(name string) (TemplateFunc, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.templates[name]
	return fn, ok
}

// Eval runs the named predicate.
func (r *Registry) Eval(ctx context.Context, name string, subset, args []string) ([]string, error) {
	fn, ok := r.Predicate(name)
	if !ok {
		return nil, fmt.Errorf("predicate %q: %w", name, ErrUnknown)
	}
	return fn(ctx, subset, args)
}

// Predicates returns the registered predicate names, sorted.
func (r *Registry) Predicates() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return keys(r.predicates)
}

// Keywords returns the registered keyword names, sorted.
func (r *Registry) Keywords() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return keys(r.keywords)
}

// NoArgs wraps a predicate that takes no arguments, rejecting calls that pass
// any with "<name> takes no arguments".
func NoArgs(name string, fn func(ctx context.Context, subset []string) ([]string, error)) PredicateFunc {
	return func(ctx context.Context, subset, args []string) ([]string, error) {
		if len(args) != 0 {
			return nil, fmt.Errorf("%s takes no arguments", name)
		}
		return fn(ctx, subset)
	}
}

func add[F any](m map[string]F, kind, name string, fn F) error {
	if _, ok := m[name]; ok {
		return fmt.Errorf("%s %q: %w", kind, name, ErrDuplicate)
	}
	m[name] = fn
	return nil
}

func keys[F any](m map[string]F) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
