package schema

import (
	"fmt"
	"strings"
)

// Canonical error codes. Constraint and parsing failures raised by this
// package always use one of these; adapter-translated failures may carry
// source-native codes that have no canonical equivalent.
const (
	CodeMissing         = "missing"
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
	CodeEnum            = "enum"
	CodeValueError      = "value_error"
	CodeUnique          = "unique"

	CodeStringType      = "string_type"
	CodeIntType         = "int_type"
	CodeIntParsing      = "int_parsing"
	CodeFloatParsing    = "float_parsing"
	CodeBoolParsing     = "bool_parsing"
	CodeDecimalParsing  = "decimal_parsing"
	CodeDateParsing     = "date_parsing"
	CodeTimeParsing     = "time_parsing"
	CodeDateTimeParsing = "datetime_parsing"
	CodeDurationParsing = "duration_parsing"
	CodeUUIDParsing     = "uuid_parsing"
	CodeBytesType       = "bytes_type"
	CodeListType        = "list_type"
	CodeModelType       = "model_type"
	CodeFiniteNumber    = "finite_number"
	CodeJSONInvalid     = "json_invalid"
)

// Error is one validation failure: a code, a human message, a location path
// into the object (empty meaning the whole object), the offending input and
// optional context values.
type Error struct {
	Code    string
	Message string
	Loc     []string
	Input   any
	Ctx     map[string]any
}

// NewError builds a raw error record.
func NewError(code, message string, loc []string, input any) Error {
	return Error{Code: code, Message: message, Loc: loc, Input: input}
}

// Error implements the error interface.
func (e Error) Error() string {
	if len(e.Loc) == 0 {
		return e.Message
	}
	return strings.Join(e.Loc, ".") + ": " + e.Message
}

// At returns a copy of the record with its location replaced.
func (e Error) At(loc ...string) Error {
	e.Loc = loc
	return e
}

// ValidationError aggregates every failure from one validation pass, in
// discovery order.
type ValidationError struct {
	Title  string
	Errors []Error
}

// NewValidationError builds a validation error for the named schema.
func NewValidationError(title string, errs ...Error) *ValidationError {
	return &ValidationError{Title: title, Errors: errs}
}

// Error implements the error interface with a one-failure-per-block layout.
func (e *ValidationError) Error() string {
	var b strings.Builder
	if len(e.Errors) == 1 {
		fmt.Fprintf(&b, "1 validation error for %s", e.Title)
	} else {
		fmt.Fprintf(&b, "%d validation errors for %s", len(e.Errors), e.Title)
	}
	for _, rec := range e.Errors {
		loc := strings.Join(rec.Loc, ".")
		if loc == "" {
			loc = "(object)"
		}
		fmt.Fprintf(&b, "\n%s\n  %s [code=%s]", loc, rec.Message, rec.Code)
	}
	return b.String()
}

// HasCode reports whether any record carries the given code.
func (e *ValidationError) HasCode(code string) bool {
	for _, rec := range e.Errors {
		if rec.Code == code {
			return true
		}
	}
	return false
}

// ByField groups records by their first location segment. Whole-object
// records group under the empty key.
func (e *ValidationError) ByField() map[string][]Error {
	out := make(map[string][]Error)
	for _, rec := range e.Errors {
		key := ""
		if len(rec.Loc) > 0 {
			key = rec.Loc[0]
		}
		out[key] = append(out[key], rec)
	}
	return out
}
