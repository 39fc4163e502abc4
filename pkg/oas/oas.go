// Package oas exports validator schemas as OpenAPI 3 schemas. The mapping is
// one way: properties follow canonical field order, required lists the fields
// without a default, and constraint slots land on the matching OpenAPI
// keywords. Fields marked Exclude stay out of the document entirely.
package oas

import (
	"errors"
	"fmt"
	"math"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-schemabind/pkg/schema"
)

// maxSafeInteger is the largest magnitude float64 represents exactly for
// integers. Bounds beyond it are omitted rather than distorted.
const maxSafeInteger = float64(1 << 53)

// Export builds an object schema: one property per field in canonical order,
// nested validators and list elements recursively.
func Export(s *schema.Schema) (*openapi3.Schema, error) {
	if s == nil {
		return nil, errors.New("oas: schema is required")
	}
	names := s.FieldNames()
	out := &openapi3.Schema{
		Type:        &openapi3.Types{openapi3.TypeObject},
		Title:       s.Name(),
		Description: s.Doc(),
		Properties:  make(openapi3.Schemas, len(names)),
	}
	for _, name := range names {
		spec, _ := s.Field(name)
		if spec.Native.Exclude {
			continue
		}
		prop, err := fieldSchema(s.Name(), spec)
		if err != nil {
			return nil, err
		}
		out.Properties[name] = openapi3.NewSchemaRef("", prop)
		if spec.Required() {
			out.Required = append(out.Required, name)
		}
	}
	return out, nil
}

// Components collects named schemas for a components block.
func Components(schemas ...*schema.Schema) (openapi3.Schemas, error) {
	out := make(openapi3.Schemas, len(schemas))
	for _, s := range schemas {
		if s == nil {
			return nil, errors.New("oas: nil schema")
		}
		if _, dup := out[s.Name()]; dup {
			return nil, fmt.Errorf("oas: duplicate schema %s", s.Name())
		}
		exported, err := Export(s)
		if err != nil {
			return nil, err
		}
		out[s.Name()] = openapi3.NewSchemaRef("", exported)
	}
	return out, nil
}

func fieldSchema(owner string, spec schema.FieldSpec) (*openapi3.Schema, error) {
	out, err := typeSchema(owner, spec.Name, spec.Type)
	if err != nil {
		return nil, err
	}
	if spec.Native.Title != "" {
		out.Title = spec.Native.Title
	}
	out.Deprecated = spec.Native.Deprecated
	if len(spec.Native.Examples) > 0 {
		out.Example = spec.Native.Examples[0]
	}

	c := spec.Constraints
	if desc, ok := c.Description.Get(); ok {
		out.Description = desc
	}
	if def, ok := c.Default.Get(); ok {
		out.Default = def
	}
	if pattern, ok := c.Pattern.Get(); ok {
		out.Pattern = pattern
	}
	// Length slots count items on list fields and characters elsewhere.
	if spec.Type.Kind == schema.TypeList {
		if n, ok := c.MinLength.Get(); ok && n > 0 {
			out.MinItems = uint64(n)
		}
		if n, ok := c.MaxLength.Get(); ok && n >= 0 {
			limit := uint64(n)
			out.MaxItems = &limit
		}
	} else {
		if n, ok := c.MinLength.Get(); ok && n > 0 {
			out.MinLength = uint64(n)
		}
		if n, ok := c.MaxLength.Get(); ok && n >= 0 {
			limit := uint64(n)
			out.MaxLength = &limit
		}
	}
	if v, ok := bound(c.GreaterOrEqual); ok {
		out.Min = &v
	}
	if v, ok := bound(c.GreaterThan); ok {
		out.Min = &v
		out.ExclusiveMin = true
	}
	if v, ok := bound(c.LessOrEqual); ok {
		out.Max = &v
	}
	if v, ok := bound(c.LessThan); ok {
		out.Max = &v
		out.ExclusiveMax = true
	}
	if v, ok := bound(c.MultipleOf); ok {
		out.MultipleOf = &v
	}
	if n, ok := c.MaxDigits.Get(); ok {
		setExtension(out, "x-max-digits", n)
	}
	if n, ok := c.DecimalPlaces.Get(); ok {
		setExtension(out, "x-decimal-places", n)
	}
	return out, nil
}

func typeSchema(owner, field string, t schema.TypeRef) (*openapi3.Schema, error) {
	out := &openapi3.Schema{Nullable: t.Nullable}
	switch t.Kind {
	case schema.TypeString:
		out.Type = &openapi3.Types{openapi3.TypeString}
		out.Format = stringFormat(t.Format)
	case schema.TypeInt:
		out.Type = &openapi3.Types{openapi3.TypeInteger}
	case schema.TypeFloat:
		out.Type = &openapi3.Types{openapi3.TypeNumber}
	case schema.TypeBool:
		out.Type = &openapi3.Types{openapi3.TypeBoolean}
	case schema.TypeDecimal:
		out.Type = &openapi3.Types{openapi3.TypeNumber}
		out.Format = "decimal"
	case schema.TypeDate:
		out.Type = &openapi3.Types{openapi3.TypeString}
		out.Format = "date"
	case schema.TypeTime:
		out.Type = &openapi3.Types{openapi3.TypeString}
		out.Format = "time"
	case schema.TypeDateTime:
		out.Type = &openapi3.Types{openapi3.TypeString}
		out.Format = "date-time"
	case schema.TypeDuration:
		out.Type = &openapi3.Types{openapi3.TypeString}
		out.Format = "duration"
	case schema.TypeBytes:
		out.Type = &openapi3.Types{openapi3.TypeString}
		out.Format = "byte"
	case schema.TypeList:
		if t.Elem == nil {
			return nil, fmt.Errorf("oas: %s.%s: list without element type", owner, field)
		}
		items, err := typeSchema(owner, field, *t.Elem)
		if err != nil {
			return nil, err
		}
		out.Type = &openapi3.Types{openapi3.TypeArray}
		out.Items = openapi3.NewSchemaRef("", items)
	case schema.TypeObject:
		if t.Object == nil {
			return nil, fmt.Errorf("oas: %s.%s: object without schema", owner, field)
		}
		nested, err := Export(t.Object)
		if err != nil {
			return nil, err
		}
		nested.Nullable = t.Nullable
		return nested, nil
	default:
		return nil, fmt.Errorf("oas: %s.%s: no exportable type", owner, field)
	}
	if len(t.Enum) > 0 {
		out.Enum = make([]any, len(t.Enum))
		for i, ev := range t.Enum {
			out.Enum[i] = ev.Value
		}
	}
	return out, nil
}

// stringFormat maps the url refinement onto OpenAPI's registered uri format;
// every other refinement already reads as a format name.
func stringFormat(format string) string {
	if format == schema.FormatURL {
		return "uri"
	}
	return format
}

// bound converts a defined numeric bound to float64. float inputs pass
// through; integer and decimal inputs are dropped once their magnitude leaves
// the exactly representable range.
func bound(o schema.Opt[any]) (float64, bool) {
	v, ok := o.Get()
	if !ok {
		return 0, false
	}
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return safeInt(int64(x))
	case int8:
		return safeInt(int64(x))
	case int16:
		return safeInt(int64(x))
	case int32:
		return safeInt(int64(x))
	case int64:
		return safeInt(x)
	case uint:
		return safeFloat(float64(x))
	case uint64:
		return safeFloat(float64(x))
	case decimal.Decimal:
		f, _ := x.Float64()
		return safeFloat(f)
	default:
		return 0, false
	}
}

func safeInt(v int64) (float64, bool) {
	return safeFloat(float64(v))
}

func safeFloat(f float64) (float64, bool) {
	if math.Abs(f) > maxSafeInteger {
		return 0, false
	}
	return f, true
}

func setExtension(s *openapi3.Schema, key string, value any) {
	if s.Extensions == nil {
		s.Extensions = map[string]any{}
	}
	s.Extensions[key] = value
}
