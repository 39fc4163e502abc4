package bind

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strings"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-schemabind/pkg/schema"
)

// Overlay documents declare field specs without Go literals, typically for
// the WithFieldSpecs option:
//
//	fields:
//	  email:
//	    title: Email address
//	    max_length: 128
//	  bio:
//	    description: null   # defined null clears a model-discovered slot
//	    nullable: true
//
// Constraint keys are tri-state: an absent key leaves the slot undefined, an
// explicit null defines the slot as empty, anything else defines a value.

type overlayDoc struct {
	Fields map[string]overlayField `yaml:"fields"`
}

type overlayField struct {
	Type     string `yaml:"type"`
	Format   string `yaml:"format"`
	Nullable bool   `yaml:"nullable"`

	Alias      string `yaml:"alias"`
	Title      string `yaml:"title"`
	Examples   []any  `yaml:"examples"`
	Exclude    bool   `yaml:"exclude"`
	Deprecated bool   `yaml:"deprecated"`
	Frozen     bool   `yaml:"frozen"`
	Strict     bool   `yaml:"strict"`

	Description   yaml.Node `yaml:"description"`
	MaxLength     yaml.Node `yaml:"max_length"`
	MinLength     yaml.Node `yaml:"min_length"`
	Pattern       yaml.Node `yaml:"pattern"`
	GreaterThan   yaml.Node `yaml:"gt"`
	GreaterEqual  yaml.Node `yaml:"ge"`
	LessThan      yaml.Node `yaml:"lt"`
	LessEqual     yaml.Node `yaml:"le"`
	MultipleOf    yaml.Node `yaml:"multiple_of"`
	MaxDigits     yaml.Node `yaml:"max_digits"`
	DecimalPlaces yaml.Node `yaml:"decimal_places"`
	Default       yaml.Node `yaml:"default"`
}

// OverlayFromYAML parses a fields document into specs keyed by field name.
// Unknown keys are rejected so typos surface at parse time instead of
// silently leaving a slot undefined.
func OverlayFromYAML(data []byte) (map[string]schema.FieldSpec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var doc overlayDoc
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]schema.FieldSpec{}, nil
		}
		return nil, fmt.Errorf("bind: parse overlay: %w", err)
	}
	out := make(map[string]schema.FieldSpec, len(doc.Fields))
	for name, f := range doc.Fields {
		spec, err := f.spec()
		if err != nil {
			return nil, fmt.Errorf("bind: overlay field %q: %w", name, err)
		}
		out[name] = spec
	}
	return out, nil
}

// MergeOverlays layers overlay documents, dst first. Earlier documents win
// slot by slot; undefined slots fall through to later documents. The inputs
// are not mutated.
func MergeOverlays(dst map[string]schema.FieldSpec, srcs ...map[string]schema.FieldSpec) (map[string]schema.FieldSpec, error) {
	out := make(map[string]schema.FieldSpec, len(dst))
	for name, spec := range dst {
		out[name] = spec.Clone()
	}
	for _, src := range srcs {
		for _, name := range sortedKeys(src) {
			spec := src[name]
			existing, ok := out[name]
			if !ok {
				out[name] = spec.Clone()
				continue
			}
			merged := existing.Clone()
			if err := mergo.Merge(&merged, spec.Clone(), mergo.WithTransformers(overlayTransformer{})); err != nil {
				return nil, fmt.Errorf("bind: merge overlay field %q: %w", name, err)
			}
			out[name] = merged
		}
	}
	return out, nil
}

// overlayTransformer teaches mergo about tri-state slots and nested schemas:
// both are filled only when the destination slot is still zero, and neither
// is descended into.
type overlayTransformer struct{}

func (overlayTransformer) Transformer(t reflect.Type) func(dst, src reflect.Value) error {
	switch {
	case t == reflect.TypeOf((*schema.Schema)(nil)):
		return fillIfZero
	case t.PkgPath() == optPkgPath && strings.HasPrefix(t.Name(), "Opt["):
		return fillIfZero
	}
	return nil
}

var optPkgPath = reflect.TypeOf(schema.Constraints{}).PkgPath()

func fillIfZero(dst, src reflect.Value) error {
	if dst.CanSet() && dst.IsZero() {
		dst.Set(src)
	}
	return nil
}

func (f overlayField) spec() (schema.FieldSpec, error) {
	var spec schema.FieldSpec
	t, err := f.typeRef()
	if err != nil {
		return spec, err
	}
	spec.Type = t
	spec.Native = schema.NativeSpec{
		Alias:      f.Alias,
		Title:      f.Title,
		Examples:   f.Examples,
		Exclude:    f.Exclude,
		Deprecated: f.Deprecated,
		Frozen:     f.Frozen,
		Strict:     f.Strict,
	}
	c := &spec.Constraints
	for _, slot := range []struct {
		key  string
		node yaml.Node
		set  func(yaml.Node) error
	}{
		{"description", f.Description, func(n yaml.Node) (err error) { c.Description, err = optString(n); return }},
		{"max_length", f.MaxLength, func(n yaml.Node) (err error) { c.MaxLength, err = optInt(n); return }},
		{"min_length", f.MinLength, func(n yaml.Node) (err error) { c.MinLength, err = optInt(n); return }},
		{"pattern", f.Pattern, func(n yaml.Node) (err error) { c.Pattern, err = optString(n); return }},
		{"gt", f.GreaterThan, func(n yaml.Node) (err error) { c.GreaterThan, err = optAny(n); return }},
		{"ge", f.GreaterEqual, func(n yaml.Node) (err error) { c.GreaterOrEqual, err = optAny(n); return }},
		{"lt", f.LessThan, func(n yaml.Node) (err error) { c.LessThan, err = optAny(n); return }},
		{"le", f.LessEqual, func(n yaml.Node) (err error) { c.LessOrEqual, err = optAny(n); return }},
		{"multiple_of", f.MultipleOf, func(n yaml.Node) (err error) { c.MultipleOf, err = optAny(n); return }},
		{"max_digits", f.MaxDigits, func(n yaml.Node) (err error) { c.MaxDigits, err = optInt(n); return }},
		{"decimal_places", f.DecimalPlaces, func(n yaml.Node) (err error) { c.DecimalPlaces, err = optInt(n); return }},
		{"default", f.Default, func(n yaml.Node) (err error) { c.Default, err = optAny(n); return }},
	} {
		if err := slot.set(slot.node); err != nil {
			return spec, fmt.Errorf("%s: %w", slot.key, err)
		}
	}
	return spec, nil
}

func (f overlayField) typeRef() (schema.TypeRef, error) {
	var t schema.TypeRef
	if f.Type != "" {
		switch kind := schema.TypeKind(f.Type); kind {
		case schema.TypeString, schema.TypeInt, schema.TypeFloat, schema.TypeBool,
			schema.TypeDecimal, schema.TypeDate, schema.TypeTime, schema.TypeDateTime,
			schema.TypeDuration, schema.TypeBytes:
			t.Kind = kind
		default:
			return t, fmt.Errorf("unsupported type %q", f.Type)
		}
	}
	t.Format = f.Format
	t.Nullable = f.Nullable
	return t, nil
}

func optInt(n yaml.Node) (schema.Opt[int], error) {
	if n.IsZero() {
		return schema.Undefined[int](), nil
	}
	if n.Tag == "!!null" {
		return schema.Null[int](), nil
	}
	var v int
	if err := n.Decode(&v); err != nil {
		return schema.Undefined[int](), err
	}
	return schema.Value(v), nil
}

func optString(n yaml.Node) (schema.Opt[string], error) {
	if n.IsZero() {
		return schema.Undefined[string](), nil
	}
	if n.Tag == "!!null" {
		return schema.Null[string](), nil
	}
	var v string
	if err := n.Decode(&v); err != nil {
		return schema.Undefined[string](), err
	}
	return schema.Value(v), nil
}

func optAny(n yaml.Node) (schema.Opt[any], error) {
	if n.IsZero() {
		return schema.Undefined[any](), nil
	}
	if n.Tag == "!!null" {
		return schema.Null[any](), nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return schema.Undefined[any](), err
	}
	return schema.Value(normalizeNumber(v)), nil
}

// normalizeNumber widens YAML scalars to the canonical numeric types the
// constraint evaluator compares with.
func normalizeNumber(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint:
		return int64(x)
	case uint64:
		if x > math.MaxInt64 {
			return float64(x)
		}
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}

func sortedKeys(m map[string]schema.FieldSpec) []string {
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
