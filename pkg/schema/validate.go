package schema

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-schemabind/internal/enforce"
)

// Validate checks input against every field spec and returns a populated
// Object. Fields run in canonical order through presence and default
// resolution, type coercion, constraint enforcement and finally the field
// hooks; model hooks run once after every field passed. Keys in input that
// the schema does not know are ignored. On failure the returned error is a
// *ValidationError carrying one record per failed check.
func (s *Schema) Validate(ctx context.Context, input map[string]any) (*Object, error) {
	if input == nil {
		input = map[string]any{}
	}
	values := make(map[string]any, len(s.order))
	var records []Error
	for _, name := range s.order {
		spec := s.fields[name]
		raw, present := input[name]
		if !present && spec.Native.Alias != "" {
			raw, present = input[spec.Native.Alias]
		}
		if !present {
			def, ok := spec.Constraints.DefaultValue()
			if !ok {
				records = append(records, Error{
					Code:    CodeMissing,
					Message: "Field required",
					Loc:     []string{name},
				})
				continue
			}
			// Defaults are trusted as-is, they do not re-enter the pipeline.
			values[name] = def
			continue
		}
		value, fieldRecords := s.validateField(ctx, name, spec, raw)
		if len(fieldRecords) > 0 {
			records = append(records, fieldRecords...)
			continue
		}
		values[name] = value
	}
	if len(records) > 0 {
		return nil, NewValidationError(s.name, records...)
	}

	obj := &Object{schema: s, values: values}
	for _, hook := range s.modelHooks {
		next, err := hook(ctx, obj)
		if err != nil {
			if verr := asValidationError(err); verr != nil {
				return nil, verr
			}
			return nil, NewValidationError(s.name, Error{
				Code:    CodeValueError,
				Message: "Value error, " + err.Error(),
			})
		}
		if next != nil {
			obj = next
		}
	}
	return obj, nil
}

// ValidateJSON decodes data and validates the resulting document. Numbers
// decode as json.Number so integer fields keep full 64-bit precision.
func (s *Schema) ValidateJSON(ctx context.Context, data []byte) (*Object, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var input map[string]any
	if err := dec.Decode(&input); err != nil {
		return nil, NewValidationError(s.name, Error{
			Code:    CodeJSONInvalid,
			Message: "Invalid JSON: " + err.Error(),
		})
	}
	return s.Validate(ctx, input)
}

func (s *Schema) validateField(ctx context.Context, name string, spec FieldSpec, raw any) (any, []Error) {
	var value any
	if raw == nil && spec.Type.Nullable {
		// Explicit null on a nullable field skips coercion and constraint
		// checks but still visits the hooks, which may substitute a value.
		value = nil
	} else {
		coerced, coerceRecords := coerce(ctx, spec.Type, spec.Native, raw)
		if len(coerceRecords) > 0 {
			return nil, locate(coerceRecords, name)
		}
		if len(spec.Type.Enum) > 0 && !spec.Type.AllowsValue(coerced) {
			expected := enumExpected(spec.Type.Enum)
			return nil, []Error{{
				Code:    CodeEnum,
				Message: "Input should be " + expected,
				Loc:     []string{name},
				Input:   raw,
				Ctx:     map[string]any{"expected": expected},
			}}
		}
		violations := enforce.Check(rulesFor(spec), coerced)
		if len(violations) > 0 {
			records := make([]Error, len(violations))
			for i, v := range violations {
				records[i] = Error{
					Code:    v.Code,
					Message: v.Message,
					Loc:     []string{name},
					Input:   raw,
					Ctx:     v.Ctx,
				}
			}
			return nil, records
		}
		value = coerced
	}

	for _, hook := range s.fieldHooks[name] {
		next, err := hook(ctx, value)
		if err != nil {
			// Hooks that hand back a *ValidationError keep their records
			// verbatim, locations included. Anything else is wrapped.
			if verr := asValidationError(err); verr != nil {
				return nil, verr.Errors
			}
			return nil, []Error{{
				Code:    CodeValueError,
				Message: "Value error, " + err.Error(),
				Loc:     []string{name},
				Input:   raw,
			}}
		}
		if !spec.Native.Frozen {
			value = next
		}
	}
	return value, nil
}

// rulesFor lowers a field spec's defined constraint slots into the enforce
// rule set. Null and undefined slots stay unset and are not enforced.
func rulesFor(spec FieldSpec) enforce.Rules {
	r := enforce.Rules{
		Format:   spec.Type.Format,
		FailFast: spec.Native.FailFast,
	}
	if n, ok := spec.Constraints.MinLength.Get(); ok {
		r.MinLength = &n
	}
	if n, ok := spec.Constraints.MaxLength.Get(); ok {
		r.MaxLength = &n
	}
	if p, ok := spec.Constraints.Pattern.Get(); ok {
		r.Pattern = p
	}
	if b, ok := spec.Constraints.GreaterThan.Get(); ok {
		r.GreaterThan = b
	}
	if b, ok := spec.Constraints.GreaterOrEqual.Get(); ok {
		r.GreaterOrEqual = b
	}
	if b, ok := spec.Constraints.LessThan.Get(); ok {
		r.LessThan = b
	}
	if b, ok := spec.Constraints.LessOrEqual.Get(); ok {
		r.LessOrEqual = b
	}
	if m, ok := spec.Constraints.MultipleOf.Get(); ok {
		r.MultipleOf = m
	}
	if n, ok := spec.Constraints.MaxDigits.Get(); ok {
		r.MaxDigits = &n
	}
	if n, ok := spec.Constraints.DecimalPlaces.Get(); ok {
		r.DecimalPlaces = &n
	}
	return r
}

// locate prefixes every record's location with the field name.
func locate(records []Error, name string) []Error {
	for i := range records {
		records[i].Loc = append([]string{name}, records[i].Loc...)
	}
	return records
}

func enumExpected(enum []EnumValue) string {
	parts := make([]string, len(enum))
	for i, ev := range enum {
		switch v := ev.Value.(type) {
		case string:
			parts[i] = "'" + v + "'"
		default:
			parts[i] = fmt.Sprintf("%v", v)
		}
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return strings.Join(parts[:len(parts)-1], ", ") + " or " + parts[len(parts)-1]
}

func asValidationError(err error) *ValidationError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	return nil
}
