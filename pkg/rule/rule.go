// Package rule provides validation rules that source models attach to their
// fields. Rules carry their parameters in exported fields so adapters can
// lift them into schema constraints; every rule also runs standalone against
// a value, which is how adapters enforce the ones they cannot lift.
package rule

import (
	"context"
	"fmt"
	"reflect"
	"strings"
)

// Rule validates a single value. A nil return means the value passed.
type Rule interface {
	Validate(value any) error
}

// Error is a rule failure: a stable code, a formatted message and the
// parameters that produced it. Params conventionally includes "value", the
// input that failed.
type Error struct {
	Code    string
	Message string
	Params  map[string]any
}

// NewError builds a rule error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Errorf builds a rule error with a formatted message.
func Errorf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string { return e.Message }

// WithParams returns a copy of the error with params attached.
func (e *Error) WithParams(params map[string]any) *Error {
	out := *e
	out.Params = params
	return &out
}

// FieldErrors maps field names to rule failures. Model-level rules return it
// when they can blame specific fields; a plain error blames the whole model.
type FieldErrors map[string][]*Error

func (e FieldErrors) Error() string {
	parts := make([]string, 0, len(e))
	for field, errs := range e {
		for _, err := range errs {
			parts = append(parts, field+": "+err.Message)
		}
	}
	return strings.Join(parts, "; ")
}

// Choice is one member of a field's closed value set.
type Choice struct {
	Value any
	Label string
}

// FieldRules is implemented by models that attach rules to their fields.
// Adapters resolve the keys, so Go field names and column names both work.
type FieldRules interface {
	FieldRules() map[string][]Rule
}

// FieldChoices is implemented by models that restrict fields to closed value
// sets.
type FieldChoices interface {
	FieldChoices() map[string][]Choice
}

// FieldDefaults is implemented by models whose fields have generated
// defaults. The factories run at validation time, never at schema build.
type FieldDefaults interface {
	FieldDefaults() map[string]func() any
}

// ModelValidator is implemented by models with whole-record rules that need
// several fields at once. Returning a FieldErrors blames specific fields; any
// other error blames the record.
type ModelValidator interface {
	ValidateModel(ctx context.Context, values map[string]any) error
}

// IsEmpty reports whether v is one of the empty values rule runs short-circuit
// on: nil, an empty string, or an empty slice, array or map.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Ptr:
		return rv.IsNil()
	}
	return false
}
