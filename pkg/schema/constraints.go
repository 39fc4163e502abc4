package schema

// ConstraintKind names one rule category shared by every adapter.
type ConstraintKind string

const (
	KindMaxLength      ConstraintKind = "max_length"
	KindMinLength      ConstraintKind = "min_length"
	KindPattern        ConstraintKind = "pattern"
	KindGreaterThan    ConstraintKind = "greater_than"
	KindGreaterOrEqual ConstraintKind = "greater_or_equal"
	KindLessThan       ConstraintKind = "less_than"
	KindLessOrEqual    ConstraintKind = "less_or_equal"
	KindMultipleOf     ConstraintKind = "multiple_of"
	KindMaxDigits      ConstraintKind = "max_digits"
	KindDecimalPlaces  ConstraintKind = "decimal_places"
	KindDescription    ConstraintKind = "description"
	KindDefault        ConstraintKind = "default"
	KindDefaultFunc    ConstraintKind = "default_func"
)

// ConstraintKinds returns every kind in canonical order.
func ConstraintKinds() []ConstraintKind {
	return []ConstraintKind{
		KindMaxLength,
		KindMinLength,
		KindPattern,
		KindGreaterThan,
		KindGreaterOrEqual,
		KindLessThan,
		KindLessOrEqual,
		KindMultipleOf,
		KindMaxDigits,
		KindDecimalPlaces,
		KindDescription,
		KindDefault,
		KindDefaultFunc,
	}
}

// Constraints is the rule set attached to one field, one tri-state slot per
// constraint kind. Bound and multiple-of slots hold int64, uint64, float64 or
// decimal.Decimal values depending on the field's type kind.
type Constraints struct {
	MaxLength      Opt[int]
	MinLength      Opt[int]
	Pattern        Opt[string]
	GreaterThan    Opt[any]
	GreaterOrEqual Opt[any]
	LessThan       Opt[any]
	LessOrEqual    Opt[any]
	MultipleOf     Opt[any]
	MaxDigits      Opt[int]
	DecimalPlaces  Opt[int]
	Description    Opt[string]
	Default        Opt[any]
	DefaultFunc    Opt[func() any]
}

// Merge combines two constraint sets slot by slot. The receiver wins wherever
// it is defined; other fills the slots the receiver left undefined. Neither
// operand is mutated.
func (c Constraints) Merge(other Constraints) Constraints {
	return Constraints{
		MaxLength:      c.MaxLength.Or(other.MaxLength),
		MinLength:      c.MinLength.Or(other.MinLength),
		Pattern:        c.Pattern.Or(other.Pattern),
		GreaterThan:    c.GreaterThan.Or(other.GreaterThan),
		GreaterOrEqual: c.GreaterOrEqual.Or(other.GreaterOrEqual),
		LessThan:       c.LessThan.Or(other.LessThan),
		LessOrEqual:    c.LessOrEqual.Or(other.LessOrEqual),
		MultipleOf:     c.MultipleOf.Or(other.MultipleOf),
		MaxDigits:      c.MaxDigits.Or(other.MaxDigits),
		DecimalPlaces:  c.DecimalPlaces.Or(other.DecimalPlaces),
		Description:    c.Description.Or(other.Description),
		Default:        c.Default.Or(other.Default),
		DefaultFunc:    c.DefaultFunc.Or(other.DefaultFunc),
	}
}

// Required reports whether a field carrying these constraints must be present
// in validated input: neither a default value nor a default factory is
// defined.
func (c Constraints) Required() bool {
	return c.Default.IsUndefined() && c.DefaultFunc.IsUndefined()
}

// DefaultValue resolves the effective default: the factory result when one is
// defined, otherwise the default slot's value (nil for a null default). The
// second result is false when the field has no default at all.
func (c Constraints) DefaultValue() (any, bool) {
	if fn, ok := c.DefaultFunc.Get(); ok {
		return fn(), true
	}
	if !c.Default.IsDefined() {
		return nil, false
	}
	v, _ := c.Default.Get()
	return v, true
}
