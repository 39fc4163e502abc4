// Package native adapts an existing schema so it can serve as a constraint
// source in its own right. Enrichment consults the native adapter ahead of
// any source-model adapter, which is how hand-written specs keep the last
// word over discovered metadata.
package native

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-schemabind/pkg/schema"
)

// Adapter exposes one schema's field specs through the adapter contract.
type Adapter struct {
	base *schema.Schema
}

var _ schema.ModelAdapter = (*Adapter)(nil)

// New wraps a schema. The schema is treated as immutable, as always.
func New(base *schema.Schema) *Adapter {
	return &Adapter{base: base}
}

type fieldHandle struct {
	name string
	spec schema.FieldSpec
}

func (h fieldHandle) FieldName() string { return h.name }

// Model returns the wrapped schema.
func (a *Adapter) Model() any { return a.base }

// Field resolves a handle for one declared field, nil when the schema does
// not declare it.
func (a *Adapter) Field(name string) schema.FieldHandle {
	spec, ok := a.base.Field(name)
	if !ok {
		return nil
	}
	return fieldHandle{name: name, spec: spec}
}

func (a *Adapter) spec(h schema.FieldHandle) (schema.FieldSpec, bool) {
	fh, ok := h.(fieldHandle)
	if !ok {
		return schema.FieldSpec{}, false
	}
	return fh.spec, true
}

func (a *Adapter) MaxLength(h schema.FieldHandle) schema.Opt[int] {
	if spec, ok := a.spec(h); ok {
		return spec.Constraints.MaxLength
	}
	return schema.Undefined[int]()
}

func (a *Adapter) MinLength(h schema.FieldHandle) schema.Opt[int] {
	if spec, ok := a.spec(h); ok {
		return spec.Constraints.MinLength
	}
	return schema.Undefined[int]()
}

func (a *Adapter) Pattern(h schema.FieldHandle) schema.Opt[string] {
	if spec, ok := a.spec(h); ok {
		return spec.Constraints.Pattern
	}
	return schema.Undefined[string]()
}

func (a *Adapter) GreaterThan(h schema.FieldHandle) schema.Opt[any] {
	if spec, ok := a.spec(h); ok {
		return spec.Constraints.GreaterThan
	}
	return schema.Undefined[any]()
}

func (a *Adapter) GreaterOrEqual(h schema.FieldHandle) schema.Opt[any] {
	if spec, ok := a.spec(h); ok {
		return spec.Constraints.GreaterOrEqual
	}
	return schema.Undefined[any]()
}

func (a *Adapter) LessThan(h schema.FieldHandle) schema.Opt[any] {
	if spec, ok := a.spec(h); ok {
		return spec.Constraints.LessThan
	}
	return schema.Undefined[any]()
}

func (a *Adapter) LessOrEqual(h schema.FieldHandle) schema.Opt[any] {
	if spec, ok := a.spec(h); ok {
		return spec.Constraints.LessOrEqual
	}
	return schema.Undefined[any]()
}

func (a *Adapter) MultipleOf(h schema.FieldHandle) schema.Opt[any] {
	if spec, ok := a.spec(h); ok {
		return spec.Constraints.MultipleOf
	}
	return schema.Undefined[any]()
}

func (a *Adapter) MaxDigits(h schema.FieldHandle) schema.Opt[int] {
	if spec, ok := a.spec(h); ok {
		return spec.Constraints.MaxDigits
	}
	return schema.Undefined[int]()
}

func (a *Adapter) DecimalPlaces(h schema.FieldHandle) schema.Opt[int] {
	if spec, ok := a.spec(h); ok {
		return spec.Constraints.DecimalPlaces
	}
	return schema.Undefined[int]()
}

func (a *Adapter) Description(h schema.FieldHandle) schema.Opt[string] {
	if spec, ok := a.spec(h); ok {
		return spec.Constraints.Description
	}
	return schema.Undefined[string]()
}

func (a *Adapter) Default(h schema.FieldHandle) schema.Opt[any] {
	if spec, ok := a.spec(h); ok {
		return spec.Constraints.Default
	}
	return schema.Undefined[any]()
}

func (a *Adapter) DefaultFunc(h schema.FieldHandle) schema.Opt[func() any] {
	if spec, ok := a.spec(h); ok {
		return spec.Constraints.DefaultFunc
	}
	return schema.Undefined[func() any]()
}

// FieldPreCheck rejects merges that would pair incompatible type kinds.
func (a *Adapter) FieldPreCheck(name string, incoming schema.FieldSpec) error {
	declared, ok := a.base.Field(name)
	if !ok {
		return nil
	}
	if incoming.Type.Kind == "" || declared.Type.Kind == "" {
		return nil
	}
	if incoming.Type.Kind != declared.Type.Kind {
		return fmt.Errorf("native: field %q: type %s conflicts with declared type %s",
			name, incoming.Type.Kind, declared.Type.Kind)
	}
	return nil
}

// RunFieldRules feeds value through the schema's hooks for the field.
func (a *Adapter) RunFieldRules(ctx context.Context, field schema.FieldHandle, value any) (any, error) {
	fh, ok := field.(fieldHandle)
	if !ok {
		return value, nil
	}
	for _, hook := range a.base.FieldHooks(fh.name) {
		next, err := hook(ctx, value)
		if err != nil {
			if verr := matchError(err); verr != nil {
				return nil, verr
			}
			return nil, schema.NewValidationError(a.base.Name(), schema.Error{
				Code:    schema.CodeValueError,
				Message: "Value error, " + err.Error(),
				Loc:     []string{fh.name},
				Input:   value,
			})
		}
		value = next
	}
	return value, nil
}

// RunModelRules feeds obj through the schema's model hooks.
func (a *Adapter) RunModelRules(ctx context.Context, obj *schema.Object) (*schema.Object, error) {
	for _, hook := range a.base.ModelHooks() {
		next, err := hook(ctx, obj)
		if err != nil {
			if verr := matchError(err); verr != nil {
				return nil, verr
			}
			return nil, schema.NewValidationError(a.base.Name(), schema.Error{
				Code:    schema.CodeValueError,
				Message: "Value error, " + err.Error(),
			})
		}
		if next != nil {
			obj = next
		}
	}
	return obj, nil
}

// Convert is the identity translation: the native failure shape already is
// the canonical one.
func (a *Adapter) Convert(err error) *schema.ValidationError {
	if verr := matchError(err); verr != nil {
		return verr
	}
	return schema.NewValidationError(a.base.Name(), schema.Error{
		Code:    schema.CodeValueError,
		Message: err.Error(),
	})
}

// MatchesError reports whether err is a canonical validation error.
func (a *Adapter) MatchesError(err error) bool {
	return matchError(err) != nil
}

// Synthesize projects the wrapped schema through the request: field subset,
// overlays, then the request base's hooks on top. The wrapped schema's own
// hooks are not copied; they are the adapter's rules and reattach during
// enrichment through RunFieldRules and RunModelRules.
func (a *Adapter) Synthesize(req schema.SynthesizeRequest) (*schema.Schema, error) {
	if len(req.Fields) > 0 && len(req.Exclude) > 0 {
		return nil, errors.New("native: cannot specify both fields and exclude")
	}

	keep, err := a.selectFields(req)
	if err != nil {
		return nil, err
	}

	fields := make(schema.Fields, len(keep))
	for _, name := range keep {
		spec, _ := a.base.Field(name)
		if overlay, ok := req.FieldSpecs[name]; ok {
			merged := overlay.MergeConstraints(spec.Constraints)
			if merged.Type.Kind == "" {
				nullable := merged.Type.Nullable
				merged.Type = spec.Type
				merged.Type.Nullable = merged.Type.Nullable || nullable
			}
			spec = merged
		}
		fields[name] = spec
	}
	for name := range req.FieldSpecs {
		if _, ok := a.base.Field(name); !ok {
			return nil, fmt.Errorf("native: field %q not found in schema %q", name, a.base.Name())
		}
	}

	name := req.Name
	if name == "" {
		name = a.base.Name()
	}
	opts := []schema.Option{
		schema.WithDoc(a.base.Doc()),
		schema.WithProvenance(schema.Provenance{Model: a.base, Adapter: a}),
	}
	if req.Base != nil {
		if req.Base.Doc() != "" {
			opts = append(opts, schema.WithDoc(req.Base.Doc()))
		}
		for _, fname := range keep {
			for _, hook := range req.Base.FieldHooks(fname) {
				opts = append(opts, schema.WithFieldHook(fname, hook))
			}
		}
		for _, hook := range req.Base.ModelHooks() {
			opts = append(opts, schema.WithModelHook(hook))
		}
	}
	return schema.New(name, fields, opts...)
}

func (a *Adapter) selectFields(req schema.SynthesizeRequest) ([]string, error) {
	if len(req.Fields) > 0 {
		for _, name := range req.Fields {
			if _, ok := a.base.Field(name); !ok {
				return nil, fmt.Errorf("native: field %q not found in schema %q", name, a.base.Name())
			}
		}
		return append([]string(nil), req.Fields...), nil
	}
	excluded := make(map[string]bool, len(req.Exclude))
	for _, name := range req.Exclude {
		if _, ok := a.base.Field(name); !ok {
			return nil, fmt.Errorf("native: field %q not found in schema %q", name, a.base.Name())
		}
		excluded[name] = true
	}
	var keep []string
	for _, name := range a.base.FieldNames() {
		if !excluded[name] {
			keep = append(keep, name)
		}
	}
	return keep, nil
}

// Materialize returns the object unchanged; the validated object already
// is the schema's instance form and there is no storage to write back into.
func (a *Adapter) Materialize(ctx context.Context, obj *schema.Object) (any, error) {
	return obj, nil
}

func matchError(err error) *schema.ValidationError {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return nil
}
