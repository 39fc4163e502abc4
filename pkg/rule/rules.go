package rule

import (
	"fmt"
	"math"
	"reflect"
	"regexp"
	"unicode/utf8"

	"github.com/goliatone/go-schemabind/internal/enforce"
)

// MinLenRule requires at least Limit runes on strings or Limit elements on
// slices and maps.
type MinLenRule struct {
	Limit int
}

// MinLen builds a minimum-length rule.
func MinLen(n int) MinLenRule { return MinLenRule{Limit: n} }

func (r MinLenRule) Validate(value any) error {
	n, ok := sizeOf(value)
	if !ok || n >= r.Limit {
		return nil
	}
	return &Error{
		Code:    "min_length",
		Message: fmt.Sprintf("Ensure this value has at least %d character%s (it has %d).", r.Limit, plural(r.Limit), n),
		Params:  map[string]any{"limit_value": r.Limit, "show_value": n, "value": value},
	}
}

// MaxLenRule allows at most Limit runes on strings or Limit elements on
// slices and maps.
type MaxLenRule struct {
	Limit int
}

// MaxLen builds a maximum-length rule.
func MaxLen(n int) MaxLenRule { return MaxLenRule{Limit: n} }

func (r MaxLenRule) Validate(value any) error {
	n, ok := sizeOf(value)
	if !ok || n <= r.Limit {
		return nil
	}
	return &Error{
		Code:    "max_length",
		Message: fmt.Sprintf("Ensure this value has at most %d character%s (it has %d).", r.Limit, plural(r.Limit), n),
		Params:  map[string]any{"limit_value": r.Limit, "show_value": n, "value": value},
	}
}

// MinRule requires the value to be at least Limit.
type MinRule struct {
	Limit any
}

// Min builds an inclusive lower bound rule.
func Min(limit any) MinRule { return MinRule{Limit: limit} }

func (r MinRule) Validate(value any) error {
	if len(enforce.Check(enforce.Rules{GreaterOrEqual: r.Limit}, normalize(value))) == 0 {
		return nil
	}
	return &Error{
		Code:    "min_value",
		Message: fmt.Sprintf("Ensure this value is greater than or equal to %v.", r.Limit),
		Params:  map[string]any{"limit_value": r.Limit, "value": value},
	}
}

// MaxRule requires the value to be at most Limit.
type MaxRule struct {
	Limit any
}

// Max builds an inclusive upper bound rule.
func Max(limit any) MaxRule { return MaxRule{Limit: limit} }

func (r MaxRule) Validate(value any) error {
	if len(enforce.Check(enforce.Rules{LessOrEqual: r.Limit}, normalize(value))) == 0 {
		return nil
	}
	return &Error{
		Code:    "max_value",
		Message: fmt.Sprintf("Ensure this value is less than or equal to %v.", r.Limit),
		Params:  map[string]any{"limit_value": r.Limit, "value": value},
	}
}

// StepRule requires the value to land on a multiple of Step. A non-nil
// Offset shifts the grid so valid values are Offset, Offset+Step and so on;
// adapters only lift offset-free steps into multiple-of constraints.
type StepRule struct {
	Step   any
	Offset any
}

// Step builds a step-size rule anchored at zero.
func Step(step any) StepRule { return StepRule{Step: step} }

func (r StepRule) Validate(value any) error {
	probe := normalize(value)
	if r.Offset != nil {
		shifted, ok := shift(probe, normalize(r.Offset))
		if !ok {
			return nil
		}
		probe = shifted
	}
	if len(enforce.Check(enforce.Rules{MultipleOf: r.Step}, probe)) == 0 {
		return nil
	}
	if r.Offset != nil {
		return &Error{
			Code:    "step_size",
			Message: fmt.Sprintf("Ensure this value is a multiple of step size %v, starting from %v.", r.Step, r.Offset),
			Params:  map[string]any{"limit_value": r.Step, "offset": r.Offset, "value": value},
		}
	}
	return &Error{
		Code:    "step_size",
		Message: fmt.Sprintf("Ensure this value is a multiple of step size %v.", r.Step),
		Params:  map[string]any{"limit_value": r.Step, "value": value},
	}
}

// MatchRule requires strings to match an RE2 pattern. Message overrides the
// default failure text.
type MatchRule struct {
	Pattern string
	Message string

	re *regexp.Regexp
}

// Match builds a pattern rule. It panics when the pattern does not compile,
// so malformed patterns surface where the rule is declared.
func Match(pattern string) MatchRule {
	return MatchRule{Pattern: pattern, re: regexp.MustCompile(pattern)}
}

// WithMessage returns a copy of the rule with a custom failure message.
func (r MatchRule) WithMessage(message string) MatchRule {
	r.Message = message
	return r
}

func (r MatchRule) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	re := r.re
	if re == nil {
		var err error
		re, err = regexp.Compile(r.Pattern)
		if err != nil {
			return nil
		}
	}
	if re.MatchString(s) {
		return nil
	}
	message := r.Message
	if message == "" {
		message = "Enter a valid value."
	}
	return &Error{
		Code:    "invalid",
		Message: message,
		Params:  map[string]any{"value": value},
	}
}

// EmailRule requires strings to be well-formed email addresses.
type EmailRule struct{}

// Email builds an email rule.
func Email() EmailRule { return EmailRule{} }

func (EmailRule) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	if len(enforce.Check(enforce.Rules{Format: "email"}, s)) == 0 {
		return nil
	}
	return &Error{
		Code:    "invalid",
		Message: "Enter a valid email address.",
		Params:  map[string]any{"value": value},
	}
}

// URLRule requires strings to be absolute URLs.
type URLRule struct{}

// URL builds a URL rule.
func URL() URLRule { return URLRule{} }

func (URLRule) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	if len(enforce.Check(enforce.Rules{Format: "url"}, s)) == 0 {
		return nil
	}
	return &Error{
		Code:    "invalid",
		Message: "Enter a valid URL.",
		Params:  map[string]any{"value": value},
	}
}

// SlugRule requires strings made of letters, numbers, underscores or hyphens.
type SlugRule struct{}

// Slug builds a slug rule.
func Slug() SlugRule { return SlugRule{} }

func (SlugRule) Validate(value any) error {
	s, ok := value.(string)
	if !ok {
		return nil
	}
	if len(enforce.Check(enforce.Rules{Format: "slug"}, s)) == 0 {
		return nil
	}
	return &Error{
		Code:    "invalid",
		Message: "Enter a valid slug consisting of letters, numbers, underscores or hyphens.",
		Params:  map[string]any{"value": value},
	}
}

type byRule struct {
	fn func(value any) error
}

// By wraps an arbitrary check into a rule. Adapters cannot lift it into a
// constraint, so it runs only when the field's rules run.
func By(fn func(value any) error) Rule {
	return byRule{fn: fn}
}

func (r byRule) Validate(value any) error {
	return r.fn(value)
}

func sizeOf(value any) (int, bool) {
	if s, ok := value.(string); ok {
		return utf8.RuneCountInString(s), true
	}
	switch rv := reflect.ValueOf(value); rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

// normalize widens source-model numerics so the enforcement backend sees its
// canonical kinds.
func normalize(value any) any {
	switch v := value.(type) {
	case int:
		return int64(v)
	case int8:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case uint:
		return int64(v)
	case uint8:
		return int64(v)
	case uint16:
		return int64(v)
	case uint32:
		return int64(v)
	case uint64:
		if v <= math.MaxInt64 {
			return int64(v)
		}
		return float64(v)
	case float32:
		return float64(v)
	}
	return value
}

func shift(value, offset any) (any, bool) {
	switch v := value.(type) {
	case int64:
		if o, ok := offset.(int64); ok {
			return v - o, true
		}
		if o, ok := offset.(float64); ok {
			return float64(v) - o, true
		}
	case float64:
		if o, ok := offset.(float64); ok {
			return v - o, true
		}
		if o, ok := offset.(int64); ok {
			return v - float64(o), true
		}
	}
	return nil, false
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
