package schema

import "context"

// FieldHandle is an opaque reference to one source-model field. Adapters own
// the concrete type; callers only thread handles back into the adapter that
// produced them.
type FieldHandle interface {
	FieldName() string
}

// ConstraintSource exposes one getter per constraint kind. Getters never fail
// for a handle produced by the same adapter; absence of an opinion is the
// undefined state, not an error.
type ConstraintSource interface {
	MaxLength(FieldHandle) Opt[int]
	MinLength(FieldHandle) Opt[int]
	Pattern(FieldHandle) Opt[string]
	GreaterThan(FieldHandle) Opt[any]
	GreaterOrEqual(FieldHandle) Opt[any]
	LessThan(FieldHandle) Opt[any]
	LessOrEqual(FieldHandle) Opt[any]
	MultipleOf(FieldHandle) Opt[any]
	MaxDigits(FieldHandle) Opt[int]
	DecimalPlaces(FieldHandle) Opt[int]
	Description(FieldHandle) Opt[string]
	Default(FieldHandle) Opt[any]
	DefaultFunc(FieldHandle) Opt[func() any]
}

// CollectConstraints gathers every getter of src for one handle into a
// constraint set, giving merge code a single value to work with.
func CollectConstraints(src ConstraintSource, h FieldHandle) Constraints {
	return Constraints{
		MaxLength:      src.MaxLength(h),
		MinLength:      src.MinLength(h),
		Pattern:        src.Pattern(h),
		GreaterThan:    src.GreaterThan(h),
		GreaterOrEqual: src.GreaterOrEqual(h),
		LessThan:       src.LessThan(h),
		LessOrEqual:    src.LessOrEqual(h),
		MultipleOf:     src.MultipleOf(h),
		MaxDigits:      src.MaxDigits(h),
		DecimalPlaces:  src.DecimalPlaces(h),
		Description:    src.Description(h),
		Default:        src.Default(h),
		DefaultFunc:    src.DefaultFunc(h),
	}
}

// SynthesizeRequest parameterizes fresh schema synthesis from a source model.
type SynthesizeRequest struct {
	// Name of the produced schema; adapters default it when empty.
	Name string
	// Fields restricts synthesis to the named model fields. Mutually
	// exclusive with Exclude.
	Fields []string
	// Exclude drops the named model fields.
	Exclude []string
	// FieldSpecs overlays explicit specs onto synthesized fields; every key
	// must name a model field.
	FieldSpecs map[string]FieldSpec
	// Base contributes its hooks and description to the result.
	Base *Schema
}

// ModelAdapter translates one source model's metadata into the shared
// constraint vocabulary and validated data back into model instances.
// Implementations wrap exactly one model value and keep no other state; they
// are cheap to construct per synthesis call.
type ModelAdapter interface {
	ConstraintSource

	// Model returns the wrapped source model.
	Model() any

	// Field looks up a model field by name. A nil handle means the model has
	// no such field and there is nothing to enrich.
	Field(name string) FieldHandle

	// FieldPreCheck rejects structurally impossible merges before any
	// constraint work happens. Failures are configuration errors, never
	// validation errors.
	FieldPreCheck(name string, incoming FieldSpec) error

	// RunFieldRules applies the source model's own per-field validators to
	// value and returns the value, possibly normalized. Rejections surface
	// as *ValidationError.
	RunFieldRules(ctx context.Context, field FieldHandle, value any) (any, error)

	// RunModelRules applies whole-object rules such as uniqueness and
	// cross-field checks. Rejections aggregate every violation into one
	// *ValidationError.
	RunModelRules(ctx context.Context, obj *Object) (*Object, error)

	// Convert translates the source framework's native failure shape into
	// the canonical one.
	Convert(err error) *ValidationError

	// MatchesError reports whether err is the source framework's validation
	// failure type, for narrowing at generic catch sites.
	MatchesError(err error) bool

	// Synthesize builds a schema purely from the model's own fields.
	Synthesize(req SynthesizeRequest) (*Schema, error)

	// Materialize turns validated data back into a live model value,
	// recursing through nested validated objects.
	Materialize(ctx context.Context, obj *Object) (any, error)
}
