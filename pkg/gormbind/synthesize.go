package gormbind

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	gormschema "gorm.io/gorm/schema"

	"github.com/goliatone/go-schemabind/pkg/schema"
)

var (
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	uuidType     = reflect.TypeOf(uuid.UUID{})
	decimalType  = reflect.TypeOf(decimal.Decimal{})
)

// kind maps the handle's storage onto a value kind. Belongs-to relations
// validate as the referenced primary key, many-to-many relations as a list
// of them. An empty kind means the field type has no mapping.
func (h *fieldHandle) kind() schema.TypeKind {
	if h.rel != nil {
		if h.rel.Type == gormschema.Many2Many {
			return schema.TypeList
		}
		return schema.TypeInt
	}
	gf := h.gf
	if gf == nil {
		return ""
	}
	switch gf.IndirectFieldType {
	case timeType:
		switch strings.ToLower(gf.TagSettings["TYPE"]) {
		case "date":
			return schema.TypeDate
		case "time", "timetz":
			return schema.TypeTime
		}
		return schema.TypeDateTime
	case durationType:
		return schema.TypeDuration
	case uuidType:
		return schema.TypeString
	case decimalType:
		return schema.TypeDecimal
	}
	switch gf.IndirectFieldType.Kind() {
	case reflect.String:
		return schema.TypeString
	case reflect.Bool:
		return schema.TypeBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return schema.TypeInt
	case reflect.Float32, reflect.Float64:
		return schema.TypeFloat
	case reflect.Slice:
		if gf.IndirectFieldType.Elem().Kind() == reflect.Uint8 {
			return schema.TypeBytes
		}
	}
	return ""
}

// typeOf builds the full type reference for one handle: kind, format,
// choices and nullability. Optional fields accept null regardless of how
// the column is stored.
func (a *Adapter) typeOf(fh *fieldHandle) (schema.TypeRef, error) {
	k := fh.kind()
	if k == "" {
		return schema.TypeRef{}, fmt.Errorf("gormbind: unsupported field type %s for %s.%s", fh.goType(), a.gs.Name, fh.name)
	}
	t := schema.TypeRef{Kind: k}
	if fh.rel != nil && fh.rel.Type == gormschema.Many2Many {
		t = schema.ListOf(schema.IntType())
	}
	if k == schema.TypeString {
		switch {
		case fh.gf != nil && fh.gf.IndirectFieldType == uuidType:
			t.Format = schema.FormatUUID
		case fh.sb.format != "":
			t.Format = fh.sb.format
		}
	}
	for _, c := range fh.choices {
		t.Enum = append(t.Enum, schema.EnumValue{Label: c.Label, Value: c.Value})
	}
	if !fh.required() {
		t.Nullable = true
	}
	return t, nil
}

// fieldNames lists every synthesizable field: real columns minus the raw
// foreign keys that belongs-to relations cover, plus the relations
// themselves.
func (a *Adapter) fieldNames() []string {
	var out []string
	for _, gf := range a.gs.Fields {
		if gf.DBName == "" || a.fkCols[gf.DBName] {
			continue
		}
		out = append(out, gf.DBName)
	}
	for name := range a.rels {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Synthesize builds a schema from the model's fields alone. Constraints are
// not attached here; enrichment layers them on afterwards so that an
// explicitly authored schema and a synthesized one go through the same
// merge. Overlay specs win over the synthesized type, and a Base schema
// contributes its description and hooks.
func (a *Adapter) Synthesize(req schema.SynthesizeRequest) (*schema.Schema, error) {
	if len(req.Fields) > 0 && len(req.Exclude) > 0 {
		return nil, fmt.Errorf("gormbind: cannot specify both fields and exclude")
	}
	selected, err := a.selectFields(req)
	if err != nil {
		return nil, err
	}
	fields := make(schema.Fields, len(selected))
	for _, name := range selected {
		fh := a.handle(name)
		t, err := a.typeOf(fh)
		if err != nil {
			return nil, err
		}
		spec := schema.FieldSpec{Type: t}
		if overlay, ok := req.FieldSpecs[name]; ok {
			spec = overlay.Clone()
			if spec.Type.Kind == "" {
				nullable := spec.Type.Nullable
				spec.Type = t
				spec.Type.Nullable = t.Nullable || nullable
			}
		}
		fields[name] = spec
	}

	name := req.Name
	if name == "" {
		name = a.gs.Name + "Validator"
	}
	opts := []schema.Option{
		schema.WithProvenance(schema.Provenance{Model: a.model, Adapter: a}),
	}
	if req.Base != nil {
		if doc := req.Base.Doc(); doc != "" {
			opts = append(opts, schema.WithDoc(doc))
		}
		for _, fname := range req.Base.FieldNames() {
			if _, ok := fields[fname]; !ok {
				continue
			}
			for _, hook := range req.Base.FieldHooks(fname) {
				opts = append(opts, schema.WithFieldHook(fname, hook))
			}
		}
		for _, hook := range req.Base.ModelHooks() {
			opts = append(opts, schema.WithModelHook(hook))
		}
	}
	return schema.New(name, fields, opts...)
}

func (a *Adapter) selectFields(req schema.SynthesizeRequest) ([]string, error) {
	names := a.fieldNames()
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	check := func(n string) error {
		if !known[n] {
			return fmt.Errorf("gormbind: field %q not found in model %s", n, a.gs.Name)
		}
		return nil
	}
	for _, n := range req.Fields {
		if err := check(n); err != nil {
			return nil, err
		}
	}
	for _, n := range req.Exclude {
		if err := check(n); err != nil {
			return nil, err
		}
	}
	for n := range req.FieldSpecs {
		if err := check(n); err != nil {
			return nil, err
		}
	}

	if len(req.Fields) > 0 {
		return append([]string(nil), req.Fields...), nil
	}
	if len(req.Exclude) == 0 {
		return names, nil
	}
	drop := make(map[string]bool, len(req.Exclude))
	for _, n := range req.Exclude {
		drop[n] = true
	}
	var out []string
	for _, n := range names {
		if !drop[n] {
			out = append(out, n)
		}
	}
	return out, nil
}
