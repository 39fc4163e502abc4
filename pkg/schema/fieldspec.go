package schema

// NativeSpec carries descriptor attributes that belong to the validation
// layer itself rather than to any source model: presentation metadata and
// per-field enforcement switches. Enrichment preserves these verbatim; only
// constraint slots participate in merging.
type NativeSpec struct {
	// Alias accepts an alternate input key for the field.
	Alias string
	// Title and Examples feed documentation and export.
	Title    string
	Examples []any
	// Exclude drops the field from exported representations.
	Exclude    bool
	Deprecated bool
	// Frozen rejects hook-level replacement of the validated value.
	Frozen bool

	// Strict disables input coercion for the field.
	Strict bool
	// CoerceNumberToString accepts numeric input for string fields.
	CoerceNumberToString bool
	// AllowInfNaN accepts non-finite float input.
	AllowInfNaN bool
	// UnionMode is recorded for descriptor compatibility; the only union
	// this package models is nullability.
	UnionMode string
	// FailFast stops at the field's first violation instead of collecting
	// every failed constraint.
	FailFast bool
}

// FieldSpec pairs a value type with the constraint set and native attributes
// for one declared field.
type FieldSpec struct {
	Name        string
	Type        TypeRef
	Constraints Constraints
	Native      NativeSpec
}

// Required reports whether the field must be present in validated input.
func (f FieldSpec) Required() bool {
	return f.Constraints.Required()
}

// Optional reports whether the field's type admits null, either through an
// explicitly nullable type or a defined null default.
func (f FieldSpec) Optional() bool {
	return f.Type.Nullable || f.Constraints.Default.IsNull()
}

// Clone returns a copy safe to mutate.
func (f FieldSpec) Clone() FieldSpec {
	out := f
	out.Type = f.Type.Clone()
	if len(f.Native.Examples) > 0 {
		out.Native.Examples = append([]any(nil), f.Native.Examples...)
	}
	return out
}

// MergeConstraints returns a copy of f whose constraint set is merged with
// other (f's defined slots win). Type and native attributes stay untouched.
func (f FieldSpec) MergeConstraints(other Constraints) FieldSpec {
	out := f.Clone()
	out.Constraints = f.Constraints.Merge(other)
	return out
}
