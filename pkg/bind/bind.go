// Package bind connects source models to validator schemas. It resolves an
// adapter for the model, enriches authored schemas with model-discovered
// constraints and rule hooks, and synthesizes whole schemas straight from a
// model definition.
//
// The two entry points compose the same pipeline:
//
//	s, err := bind.FromModel(&Account{}, bind.WithExclude("id"))
//	s, err := bind.Enrich(&Account{}, authored)
//
// Enriched schemas carry provenance back to their model, retrievable with
// ModelOf and AdapterOf.
package bind

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-schemabind/pkg/native"
	"github.com/goliatone/go-schemabind/pkg/schema"
)

// ErrNoProvenance reports a schema or object that was not produced by Enrich
// or FromModel and therefore records no source model.
var ErrNoProvenance = errors.New("bind: no source model recorded")

// Option configures Enrich and FromModel.
type Option func(*config)

type config struct {
	adapter  schema.ModelAdapter
	registry *Registry
	log      zerolog.Logger

	name       string
	fields     []string
	exclude    []string
	fieldSpecs map[string]schema.FieldSpec
	base       *schema.Schema
}

func newConfig(opts []Option) config {
	cfg := config{log: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithAdapter pins the adapter instead of resolving one from a registry.
func WithAdapter(adapter schema.ModelAdapter) Option {
	return func(c *config) { c.adapter = adapter }
}

// WithRegistry resolves adapters from r instead of the default registry.
func WithRegistry(r *Registry) Option {
	return func(c *config) { c.registry = r }
}

// WithLogger enables debug tracing of the enrichment pipeline.
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) { c.log = log }
}

// WithName sets the synthesized schema name. FromModel only.
func WithName(name string) Option {
	return func(c *config) { c.name = name }
}

// WithFields restricts synthesis to the named model fields. FromModel only.
func WithFields(names ...string) Option {
	return func(c *config) { c.fields = append(c.fields, names...) }
}

// WithExclude drops the named model fields from synthesis. FromModel only.
func WithExclude(names ...string) Option {
	return func(c *config) { c.exclude = append(c.exclude, names...) }
}

// WithFieldSpecs overlays explicit field specs onto synthesized fields, for
// example the result of OverlayFromYAML. FromModel only.
func WithFieldSpecs(specs map[string]schema.FieldSpec) Option {
	return func(c *config) {
		if c.fieldSpecs == nil {
			c.fieldSpecs = make(map[string]schema.FieldSpec, len(specs))
		}
		for name, spec := range specs {
			c.fieldSpecs[name] = spec
		}
	}
}

// WithBase contributes an authored schema's hooks and doc to the synthesized
// result. FromModel only.
func WithBase(base *schema.Schema) Option {
	return func(c *config) { c.base = base }
}

func (c config) resolveAdapter(model any) (schema.ModelAdapter, error) {
	if c.adapter != nil {
		return c.adapter, nil
	}
	reg := c.registry
	if reg == nil {
		reg = DefaultRegistry()
	}
	return reg.Resolve(model)
}

// Enrich layers model-discovered constraints and validation rules onto an
// authored schema. For every schema field that exists on the model the
// authored constraints win slot by slot over the discovered ones, native
// attributes and the declared type stay untouched, and a field hook running
// the model's rules is appended after any authored hooks. Fields the model
// does not know are kept exactly as authored. One model hook running
// model-level rules (uniqueness, whole-model validators) is appended at the
// end.
//
// The result is a clone named after the base with a trailing "Validator"
// suffix trimmed, stamped with {model, adapter} provenance. The base schema
// is not mutated.
func Enrich(model any, base *schema.Schema, opts ...Option) (*schema.Schema, error) {
	if base == nil {
		return nil, errors.New("bind: base schema is required")
	}
	cfg := newConfig(opts)
	adapter, err := cfg.resolveAdapter(model)
	if err != nil {
		return nil, err
	}
	cfg.log.Debug().
		Str("schema", base.Name()).
		Str("adapter", fmt.Sprintf("%T", adapter)).
		Msg("enriching schema")

	authored := native.New(base)
	var cloneOpts []schema.Option
	for _, name := range base.FieldNames() {
		spec, _ := base.Field(name)
		if err := adapter.FieldPreCheck(name, spec); err != nil {
			return nil, err
		}
		h := adapter.Field(name)
		if h == nil {
			cfg.log.Debug().Str("field", name).Msg("field absent on model, kept as authored")
			continue
		}
		incoming := schema.CollectConstraints(authored, authored.Field(name))
		discovered := schema.CollectConstraints(adapter, h)
		merged := spec.Clone()
		merged.Constraints = incoming.Merge(discovered)
		cfg.log.Debug().Str("field", name).Msg("merged model constraints")
		cloneOpts = append(cloneOpts,
			schema.WithFieldSpec(name, merged),
			schema.WithFieldHook(name, fieldRuleHook(adapter, h)),
		)
	}
	cloneOpts = append(cloneOpts,
		schema.WithModelHook(adapter.RunModelRules),
		schema.WithName(enrichedName(base.Name())),
		schema.WithProvenance(schema.Provenance{Model: model, Adapter: adapter}),
	)
	return base.Clone(cloneOpts...)
}

// FromModel synthesizes a schema from the model alone and enriches it. The
// synthesized name defaults to the model name with a "Validator" suffix,
// which Enrich trims again, so the result is named after the model unless
// WithName overrides it.
func FromModel(model any, opts ...Option) (*schema.Schema, error) {
	cfg := newConfig(opts)
	adapter, err := cfg.resolveAdapter(model)
	if err != nil {
		return nil, err
	}
	synthesized, err := adapter.Synthesize(schema.SynthesizeRequest{
		Name:       cfg.name,
		Fields:     cfg.fields,
		Exclude:    cfg.exclude,
		FieldSpecs: cfg.fieldSpecs,
		Base:       cfg.base,
	})
	if err != nil {
		return nil, err
	}
	return Enrich(model, synthesized, append(opts, WithAdapter(adapter))...)
}

// ModelOf returns the source model behind an enriched schema or one of its
// validated objects.
func ModelOf(v any) (any, error) {
	prov, err := provenanceOf(v)
	if err != nil {
		return nil, err
	}
	return prov.Model, nil
}

// AdapterOf returns the adapter behind an enriched schema or one of its
// validated objects.
func AdapterOf(v any) (schema.ModelAdapter, error) {
	prov, err := provenanceOf(v)
	if err != nil {
		return nil, err
	}
	return prov.Adapter, nil
}

func provenanceOf(v any) (schema.Provenance, error) {
	var s *schema.Schema
	switch x := v.(type) {
	case *schema.Schema:
		s = x
	case *schema.Object:
		if x != nil {
			s = x.Schema()
		}
	}
	if s == nil {
		return schema.Provenance{}, fmt.Errorf("bind: %T carries no provenance: %w", v, ErrNoProvenance)
	}
	prov, ok := s.Provenance()
	if !ok {
		return schema.Provenance{}, fmt.Errorf(
			"bind: schema %s has no source model, did you forget to build it with Enrich or FromModel? %w",
			s.Name(), ErrNoProvenance)
	}
	return prov, nil
}

func fieldRuleHook(adapter schema.ModelAdapter, h schema.FieldHandle) schema.FieldHook {
	return func(ctx context.Context, value any) (any, error) {
		return adapter.RunFieldRules(ctx, h, value)
	}
}

func enrichedName(name string) string {
	trimmed := strings.TrimSuffix(name, "Validator")
	if trimmed == "" {
		return name
	}
	return trimmed
}
