// Package schemabind builds validation schemas from source models. Importing
// it registers the GORM adapter with the default registry, so the common path
// is a single import:
//
//	s, err := schemabind.FromModel(&User{})
//	obj, err := s.Validate(ctx, values)
//
// Callers that want explicit registries or adapter instances import pkg/bind
// and the adapter packages directly; this package is the wired default.
package schemabind

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-schemabind/pkg/bind"
	"github.com/goliatone/go-schemabind/pkg/gormbind"
	"github.com/goliatone/go-schemabind/pkg/schema"
)

func init() {
	bind.DefaultRegistry().Register("gorm", gormbind.Match, func(model any) (schema.ModelAdapter, error) {
		return gormbind.New(model)
	})
}

// Schema is a named, ordered set of field specs; alias exported via the root
// package for convenience.
type Schema = schema.Schema

// Object is the validated output of a schema.
type Object = schema.Object

// Fields maps field names to their specs.
type Fields = schema.Fields

// FieldSpec describes one field: its type, constraints and presentation.
type FieldSpec = schema.FieldSpec

// Constraints carries the tri-state constraint slots.
type Constraints = schema.Constraints

// TypeRef names a field's value kind.
type TypeRef = schema.TypeRef

// NativeSpec carries per-field behavior flags.
type NativeSpec = schema.NativeSpec

// EnumValue is one labeled member of an enum type.
type EnumValue = schema.EnumValue

// Error is a single validation failure record.
type Error = schema.Error

// ValidationError aggregates the failure records of one validation run.
type ValidationError = schema.ValidationError

// ModelAdapter reads constraints and rules out of a source model.
type ModelAdapter = schema.ModelAdapter

// FieldHandle is an adapter's reference to one model field.
type FieldHandle = schema.FieldHandle

// Provenance records the model and adapter a schema was built from.
type Provenance = schema.Provenance

// Option configures Enrich and FromModel.
type Option = bind.Option

// Factory builds an adapter for a matched model.
type Factory = bind.Factory

// ErrNoAdapter reports a model no registered adapter recognizes.
var ErrNoAdapter = bind.ErrNoAdapter

// ErrNoProvenance reports a schema or object with no recorded source model.
var ErrNoProvenance = bind.ErrNoProvenance

// Value returns a defined Opt holding v.
func Value[T any](v T) schema.Opt[T] { return schema.Value(v) }

// Null returns a defined Opt holding no value.
func Null[T any]() schema.Opt[T] { return schema.Null[T]() }

// Undefined returns an Opt with no opinion.
func Undefined[T any]() schema.Opt[T] { return schema.Undefined[T]() }

// Enrich merges constraints discovered on the model into the authored base
// schema and attaches the model's rules as hooks.
func Enrich(model any, base *Schema, opts ...Option) (*Schema, error) {
	return bind.Enrich(model, base, opts...)
}

// FromModel synthesizes a schema from the model's own fields, then enriches
// it the same way Enrich does.
func FromModel(model any, opts ...Option) (*Schema, error) {
	return bind.FromModel(model, opts...)
}

// Validate builds a schema from the model and validates values against it in
// one call. It is the simplest entry point for callers that just want a
// validated object.
func Validate(ctx context.Context, model any, values map[string]any, opts ...Option) (*Object, error) {
	s, err := bind.FromModel(model, opts...)
	if err != nil {
		return nil, err
	}
	return s.Validate(ctx, values)
}

// ModelOf returns the source model behind a schema or validated object.
func ModelOf(v any) (any, error) { return bind.ModelOf(v) }

// AdapterOf returns the adapter behind a schema or validated object.
func AdapterOf(v any) (ModelAdapter, error) { return bind.AdapterOf(v) }

// Register adds an adapter to the default registry. Later registrations take
// precedence when their matches overlap.
func Register(name string, match func(model any) bool, factory Factory) {
	bind.DefaultRegistry().Register(name, match, factory)
}

// WithName overrides the schema name derived from the model.
func WithName(name string) Option { return bind.WithName(name) }

// WithFields restricts synthesis to the named model fields.
func WithFields(names ...string) Option { return bind.WithFields(names...) }

// WithExclude drops the named model fields from synthesis.
func WithExclude(names ...string) Option { return bind.WithExclude(names...) }

// WithFieldSpecs overlays authored field specs onto synthesized ones.
func WithFieldSpecs(specs map[string]FieldSpec) Option { return bind.WithFieldSpecs(specs) }

// WithAdapter pins the adapter instead of consulting the registry.
func WithAdapter(adapter ModelAdapter) Option { return bind.WithAdapter(adapter) }

// WithBase layers an authored schema's doc and hooks under a synthesized one.
func WithBase(base *Schema) Option { return bind.WithBase(base) }

// WithLogger enables debug tracing of adapter resolution and enrichment.
func WithLogger(log zerolog.Logger) Option { return bind.WithLogger(log) }
