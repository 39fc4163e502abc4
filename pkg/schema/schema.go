package schema

import (
	"context"
	"fmt"
	"sort"

	"github.com/goliatone/go-schemabind/internal/enforce"
)

// FieldHook runs after a field value passed its constraint checks. It may
// replace the value; returning an error rejects the field. A returned
// *ValidationError is surfaced verbatim.
type FieldHook func(ctx context.Context, value any) (any, error)

// ModelHook runs after every field passed. It may replace the object;
// returning an error rejects the whole input.
type ModelHook func(ctx context.Context, obj *Object) (*Object, error)

// Provenance records which source model and adapter produced a schema.
type Provenance struct {
	Model   any
	Adapter ModelAdapter
}

// Fields declares the field table handed to New.
type Fields map[string]FieldSpec

// Schema is an immutable validator definition: a named field table plus the
// registered validation hooks. Build one with New, derive with Clone.
type Schema struct {
	name       string
	doc        string
	fields     map[string]FieldSpec
	order      []string
	fieldHooks map[string][]FieldHook
	modelHooks []ModelHook
	prov       *Provenance
}

// Option customizes schema construction.
type Option func(*Schema) error

// WithName overrides the schema name; used when deriving schemas.
func WithName(name string) Option {
	return func(s *Schema) error {
		if name == "" {
			return fmt.Errorf("schema: name is required")
		}
		s.name = name
		return nil
	}
}

// WithDoc attaches a human description to the schema.
func WithDoc(doc string) Option {
	return func(s *Schema) error {
		s.doc = doc
		return nil
	}
}

// WithFieldSpec replaces or adds one field declaration.
func WithFieldSpec(name string, spec FieldSpec) Option {
	return func(s *Schema) error {
		if name == "" {
			return fmt.Errorf("schema: %s: field name is required", s.name)
		}
		if err := checkSpec(s.name, name, spec); err != nil {
			return err
		}
		if _, exists := s.fields[name]; !exists {
			s.order = append(s.order, name)
			sort.Strings(s.order)
		}
		clone := spec.Clone()
		clone.Name = name
		s.fields[name] = clone
		return nil
	}
}

// WithFieldHook registers a hook for one declared field. Referencing an
// unknown field fails construction.
func WithFieldHook(field string, hook FieldHook) Option {
	return func(s *Schema) error {
		if hook == nil {
			return nil
		}
		if _, ok := s.fields[field]; !ok {
			return fmt.Errorf("schema: %s: hook references unknown field %q", s.name, field)
		}
		s.fieldHooks[field] = append(s.fieldHooks[field], hook)
		return nil
	}
}

// WithModelHook registers a whole-object hook.
func WithModelHook(hook ModelHook) Option {
	return func(s *Schema) error {
		if hook == nil {
			return nil
		}
		s.modelHooks = append(s.modelHooks, hook)
		return nil
	}
}

// WithProvenance stamps the schema with its originating model and adapter.
func WithProvenance(p Provenance) Option {
	return func(s *Schema) error {
		s.prov = &p
		return nil
	}
}

// New builds an immutable schema from a field table. Fields are ordered by
// name so every downstream walk stays deterministic.
func New(name string, fields Fields, opts ...Option) (*Schema, error) {
	if name == "" {
		return nil, fmt.Errorf("schema: name is required")
	}
	s := &Schema{
		name:       name,
		fields:     make(map[string]FieldSpec, len(fields)),
		order:      make([]string, 0, len(fields)),
		fieldHooks: make(map[string][]FieldHook),
	}
	for fname, spec := range fields {
		if fname == "" {
			return nil, fmt.Errorf("schema: %s: field name is required", name)
		}
		if err := checkSpec(name, fname, spec); err != nil {
			return nil, err
		}
		clone := spec.Clone()
		clone.Name = fname
		s.fields[fname] = clone
		s.order = append(s.order, fname)
	}
	sort.Strings(s.order)
	if err := s.apply(opts); err != nil {
		return nil, err
	}
	return s, nil
}

// checkSpec rejects field declarations that could only fail later, at
// validation time. Today that is a pattern the RE2 engine cannot compile.
func checkSpec(schemaName, fieldName string, spec FieldSpec) error {
	if pattern, ok := spec.Constraints.Pattern.Get(); ok {
		if err := enforce.CompilePattern(pattern); err != nil {
			return fmt.Errorf("schema: %s: field %q: invalid pattern: %w", schemaName, fieldName, err)
		}
	}
	return nil
}

// MustNew is New for static tables and tests; it panics on error.
func MustNew(name string, fields Fields, opts ...Option) *Schema {
	s, err := New(name, fields, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Clone derives a new schema from the receiver. Field specs, hooks and
// provenance carry over; options apply on top. The receiver is not mutated.
func (s *Schema) Clone(opts ...Option) (*Schema, error) {
	out := &Schema{
		name:       s.name,
		doc:        s.doc,
		fields:     make(map[string]FieldSpec, len(s.fields)),
		order:      append([]string(nil), s.order...),
		fieldHooks: make(map[string][]FieldHook, len(s.fieldHooks)),
		modelHooks: append([]ModelHook(nil), s.modelHooks...),
		prov:       s.prov,
	}
	for name, spec := range s.fields {
		out.fields[name] = spec.Clone()
	}
	for name, hooks := range s.fieldHooks {
		out.fieldHooks[name] = append([]FieldHook(nil), hooks...)
	}
	if err := out.apply(opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Schema) apply(opts []Option) error {
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(s); err != nil {
			return err
		}
	}
	return nil
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Doc returns the schema description.
func (s *Schema) Doc() string { return s.doc }

// Len returns the number of declared fields.
func (s *Schema) Len() int { return len(s.fields) }

// FieldNames returns the declared field names in canonical order.
func (s *Schema) FieldNames() []string {
	return append([]string(nil), s.order...)
}

// Field returns the spec for one declared field.
func (s *Schema) Field(name string) (FieldSpec, bool) {
	spec, ok := s.fields[name]
	return spec, ok
}

// Fields returns a copy of the field table.
func (s *Schema) Fields() Fields {
	out := make(Fields, len(s.fields))
	for name, spec := range s.fields {
		out[name] = spec.Clone()
	}
	return out
}

// FieldHooks returns the hooks registered for one field.
func (s *Schema) FieldHooks(name string) []FieldHook {
	hooks := s.fieldHooks[name]
	if len(hooks) == 0 {
		return nil
	}
	return append([]FieldHook(nil), hooks...)
}

// ModelHooks returns the registered whole-object hooks.
func (s *Schema) ModelHooks() []ModelHook {
	if len(s.modelHooks) == 0 {
		return nil
	}
	return append([]ModelHook(nil), s.modelHooks...)
}

// Provenance returns the synthesis provenance when the schema was produced by
// the binding engine.
func (s *Schema) Provenance() (Provenance, bool) {
	if s.prov == nil {
		return Provenance{}, false
	}
	return *s.prov, true
}
