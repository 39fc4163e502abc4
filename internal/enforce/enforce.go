// Package enforce applies constraint rules to canonical field values. It
// lives under internal/ to keep the go-playground/validator dependency hidden
// from consumers of the public schema package.
package enforce

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

// Error codes emitted by Check. The schema package surfaces them verbatim on
// its validation records.
const (
	CodeStringTooShort  = "string_too_short"
	CodeStringTooLong   = "string_too_long"
	CodePatternMismatch = "string_pattern_mismatch"
	CodeTooShort        = "too_short"
	CodeTooLong         = "too_long"
	CodeGreaterThan     = "greater_than"
	CodeGreaterOrEqual  = "greater_than_equal"
	CodeLessThan        = "less_than"
	CodeLessOrEqual     = "less_than_equal"
	CodeMultipleOf      = "multiple_of"
	CodeMaxDigits       = "decimal_max_digits"
	CodeDecimalPlaces   = "decimal_max_places"
	CodeUUIDParsing     = "uuid_parsing"
	CodeValueError      = "value_error"
)

// Rules is the constraint set for a single value. Nil and empty slots are not
// enforced.
type Rules struct {
	Format string

	MinLength *int
	MaxLength *int
	Pattern   string

	GreaterThan    any
	GreaterOrEqual any
	LessThan       any
	LessOrEqual    any
	MultipleOf     any

	MaxDigits     *int
	DecimalPlaces *int

	// FailFast stops after the first violation instead of collecting all of
	// them.
	FailFast bool
}

// Violation is one failed check.
type Violation struct {
	Code    string
	Message string
	Ctx     map[string]any
}

// Check runs every applicable rule against value and returns the violations
// in a fixed order: lengths, pattern, format, bounds, multiple-of, decimal
// shape. Checks that do not apply to the value's type are skipped.
func Check(r Rules, value any) []Violation {
	var out []Violation
	for _, check := range []func(Rules, any) *Violation{
		checkMinLength,
		checkMaxLength,
		checkPattern,
		checkFormat,
		checkGreaterThan,
		checkGreaterOrEqual,
		checkLessThan,
		checkLessOrEqual,
		checkMultipleOf,
		checkMaxDigits,
		checkDecimalPlaces,
	} {
		v := check(r, value)
		if v == nil {
			continue
		}
		out = append(out, *v)
		if r.FailFast {
			break
		}
	}
	return out
}

var backendOnce struct {
	sync.Once
	v *validator.Validate
}

func backend() *validator.Validate {
	backendOnce.Do(func() {
		backendOnce.v = validator.New()
	})
	return backendOnce.v
}

// passes evaluates a single go-playground tag against value.
func passes(value any, tag string) bool {
	return backend().Var(value, tag) == nil
}
