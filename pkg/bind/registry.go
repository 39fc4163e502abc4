package bind

import (
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-schemabind/pkg/native"
	"github.com/goliatone/go-schemabind/pkg/schema"
)

// ErrNoAdapter reports a model no registered adapter recognizes.
var ErrNoAdapter = errors.New("bind: no adapter registered")

// Factory builds an adapter for a matched model.
type Factory func(model any) (schema.ModelAdapter, error)

type registration struct {
	name    string
	match   func(model any) bool
	factory Factory
}

// Registry resolves models to adapters. Registrations are consulted newest
// first, so later entries take precedence over earlier ones. A Registry is
// safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries []registration
}

// NewRegistry returns a registry preloaded with the native fallback, which
// recognizes *schema.Schema values and lets schemas act as their own source
// model.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register("native", func(model any) bool {
		_, ok := model.(*schema.Schema)
		return ok
	}, func(model any) (schema.ModelAdapter, error) {
		s, ok := model.(*schema.Schema)
		if !ok {
			return nil, fmt.Errorf("bind: native adapter wants *schema.Schema, got %T", model)
		}
		return native.New(s), nil
	})
	return r
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used when no WithRegistry
// option is given.
func DefaultRegistry() *Registry { return defaultRegistry }

// Register adds an adapter under a diagnostic name. The match predicate
// decides whether the factory handles a model.
func (r *Registry) Register(name string, match func(model any) bool, factory Factory) {
	if match == nil || factory == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append([]registration{{name: name, match: match, factory: factory}}, r.entries...)
}

// Resolve returns an adapter for the model, or an error wrapping ErrNoAdapter
// when nothing matches.
func (r *Registry) Resolve(model any) (schema.ModelAdapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, reg := range r.entries {
		if !reg.match(model) {
			continue
		}
		adapter, err := reg.factory(model)
		if err != nil {
			return nil, fmt.Errorf("bind: %s adapter for %T: %w", reg.name, model, err)
		}
		return adapter, nil
	}
	return nil, fmt.Errorf("%w for %T", ErrNoAdapter, model)
}
