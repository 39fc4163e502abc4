package gormbind

import (
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	gormschema "gorm.io/gorm/schema"

	"github.com/goliatone/go-schemabind/pkg/rule"
	"github.com/goliatone/go-schemabind/pkg/schema"
)

// MaxLength prefers a declared MaxLenRule, then the column size for string
// fields. Integer columns carry their bit width in Size, so the column
// fallback is gated on the string kind.
func (a *Adapter) MaxLength(h schema.FieldHandle) schema.Opt[int] {
	fh := a.own(h)
	if fh == nil {
		return schema.Undefined[int]()
	}
	for _, r := range fh.rules {
		if lr, ok := r.(rule.MaxLenRule); ok {
			return schema.Value(lr.Limit)
		}
	}
	if fh.kind() == schema.TypeString && fh.gf != nil && fh.gf.Size > 0 {
		return schema.Value(fh.gf.Size)
	}
	return schema.Undefined[int]()
}

// MinLength reads a declared MinLenRule. A required many-to-many relation
// implies at least one element.
func (a *Adapter) MinLength(h schema.FieldHandle) schema.Opt[int] {
	fh := a.own(h)
	if fh == nil {
		return schema.Undefined[int]()
	}
	for _, r := range fh.rules {
		if lr, ok := r.(rule.MinLenRule); ok {
			return schema.Value(lr.Limit)
		}
	}
	if fh.rel != nil && fh.rel.Type == gormschema.Many2Many && fh.required() {
		return schema.Value(1)
	}
	return schema.Undefined[int]()
}

// Pattern reads the first declared MatchRule.
func (a *Adapter) Pattern(h schema.FieldHandle) schema.Opt[string] {
	fh := a.own(h)
	if fh == nil {
		return schema.Undefined[string]()
	}
	for _, r := range fh.rules {
		if mr, ok := r.(rule.MatchRule); ok {
			return schema.Value(mr.Pattern)
		}
	}
	return schema.Undefined[string]()
}

// GreaterThan always reports no opinion; model rules express bounds
// inclusively.
func (a *Adapter) GreaterThan(schema.FieldHandle) schema.Opt[any] {
	return schema.Undefined[any]()
}

// LessThan always reports no opinion; model rules express bounds
// inclusively.
func (a *Adapter) LessThan(schema.FieldHandle) schema.Opt[any] {
	return schema.Undefined[any]()
}

// GreaterOrEqual prefers a declared MinRule. Integer fields without one
// fall back to the lower bound of their Go storage type, so an int16 column
// rejects values it cannot hold before the database does.
func (a *Adapter) GreaterOrEqual(h schema.FieldHandle) schema.Opt[any] {
	fh := a.own(h)
	if fh == nil {
		return schema.Undefined[any]()
	}
	for _, r := range fh.rules {
		if mr, ok := r.(rule.MinRule); ok {
			return schema.Value(canonical(mr.Limit))
		}
	}
	if lo, _, ok := intRange(fh); ok {
		return schema.Value(any(lo))
	}
	return schema.Undefined[any]()
}

// LessOrEqual mirrors GreaterOrEqual with MaxRule and the storage type's
// upper bound.
func (a *Adapter) LessOrEqual(h schema.FieldHandle) schema.Opt[any] {
	fh := a.own(h)
	if fh == nil {
		return schema.Undefined[any]()
	}
	for _, r := range fh.rules {
		if mr, ok := r.(rule.MaxRule); ok {
			return schema.Value(canonical(mr.Limit))
		}
	}
	if _, hi, ok := intRange(fh); ok {
		return schema.Value(any(hi))
	}
	return schema.Undefined[any]()
}

// MultipleOf lifts a declared StepRule when its grid is anchored at zero.
// An offset step cannot be expressed as a multiple-of constraint and stays
// a rule.
func (a *Adapter) MultipleOf(h schema.FieldHandle) schema.Opt[any] {
	fh := a.own(h)
	if fh == nil {
		return schema.Undefined[any]()
	}
	for _, r := range fh.rules {
		if sr, ok := r.(rule.StepRule); ok {
			if offsetFree(sr.Offset) {
				return schema.Value(canonical(sr.Step))
			}
			return schema.Undefined[any]()
		}
	}
	return schema.Undefined[any]()
}

// MaxDigits reads the column precision of decimal fields.
func (a *Adapter) MaxDigits(h schema.FieldHandle) schema.Opt[int] {
	fh := a.own(h)
	if fh == nil || fh.kind() != schema.TypeDecimal || fh.gf == nil {
		return schema.Undefined[int]()
	}
	if fh.gf.Precision > 0 {
		return schema.Value(fh.gf.Precision)
	}
	return schema.Undefined[int]()
}

// DecimalPlaces reads the column scale of decimal fields.
func (a *Adapter) DecimalPlaces(h schema.FieldHandle) schema.Opt[int] {
	fh := a.own(h)
	if fh == nil || fh.kind() != schema.TypeDecimal || fh.gf == nil {
		return schema.Undefined[int]()
	}
	if fh.gf.Scale > 0 {
		return schema.Value(fh.gf.Scale)
	}
	return schema.Undefined[int]()
}

// Description reads the column comment.
func (a *Adapter) Description(h schema.FieldHandle) schema.Opt[string] {
	fh := a.own(h)
	if fh == nil || fh.gf == nil || fh.gf.Comment == "" {
		return schema.Undefined[string]()
	}
	return schema.Value(fh.gf.Comment)
}

// Default resolves the model's default for optional fields: the declared
// column default when one parses, an empty string for optional string
// fields stored without a pointer, otherwise null. Required fields and
// fields with a default factory report no opinion.
func (a *Adapter) Default(h schema.FieldHandle) schema.Opt[any] {
	fh := a.own(h)
	if fh == nil {
		return schema.Undefined[any]()
	}
	if fh.defFn != nil {
		return schema.Undefined[any]()
	}
	if fh.required() {
		return schema.Undefined[any]()
	}
	if v, ok := declaredDefault(fh); ok {
		return schema.Value(v)
	}
	if fh.storageString() && !fh.storageNullable() {
		return schema.Value(any(""))
	}
	return schema.Null[any]()
}

// DefaultFunc exposes a factory declared through rule.FieldDefaults.
func (a *Adapter) DefaultFunc(h schema.FieldHandle) schema.Opt[func() any] {
	fh := a.own(h)
	if fh == nil || fh.defFn == nil {
		return schema.Undefined[func() any]()
	}
	return schema.Value(fh.defFn)
}

// declaredDefault parses the column's declared default into the field's
// value space. SQL expressions belong to the database and do not parse.
func declaredDefault(fh *fieldHandle) (any, bool) {
	gf := fh.gf
	if gf == nil || !gf.HasDefaultValue {
		return nil, false
	}
	if gf.DefaultValueInterface != nil {
		return canonical(gf.DefaultValueInterface), true
	}
	raw := strings.TrimSpace(gf.DefaultValue)
	if raw == "" || strings.ContainsRune(raw, '(') {
		return nil, false
	}
	switch fh.kind() {
	case schema.TypeString:
		return strings.Trim(raw, `'"`), true
	case schema.TypeInt:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n, true
		}
	case schema.TypeFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f, true
		}
	case schema.TypeBool:
		if b, err := strconv.ParseBool(raw); err == nil {
			return b, true
		}
	case schema.TypeDecimal:
		if d, err := decimal.NewFromString(raw); err == nil {
			return d, true
		}
	}
	return nil, false
}

// intRange returns the bounds implied by an integer field's Go storage
// type. Unsigned 64-bit storage caps at the signed maximum because that is
// as far as validated integers reach.
func intRange(fh *fieldHandle) (int64, int64, bool) {
	if fh.kind() != schema.TypeInt || fh.gf == nil {
		return 0, 0, false
	}
	switch fh.gf.IndirectFieldType.Kind() {
	case reflect.Int8:
		return math.MinInt8, math.MaxInt8, true
	case reflect.Int16:
		return math.MinInt16, math.MaxInt16, true
	case reflect.Int32:
		return math.MinInt32, math.MaxInt32, true
	case reflect.Int, reflect.Int64:
		return math.MinInt64, math.MaxInt64, true
	case reflect.Uint8:
		return 0, math.MaxUint8, true
	case reflect.Uint16:
		return 0, math.MaxUint16, true
	case reflect.Uint32:
		return 0, math.MaxUint32, true
	case reflect.Uint, reflect.Uint64:
		return 0, math.MaxInt64, true
	}
	return 0, 0, false
}

// canonical widens model-side numerics to the kinds constraint slots hold.
func canonical(v any) any {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return float64(n)
		}
		return int64(n)
	case float32:
		return float64(n)
	}
	return v
}

func offsetFree(offset any) bool {
	if offset == nil {
		return true
	}
	switch v := canonical(offset).(type) {
	case int64:
		return v == 0
	case float64:
		return v == 0
	case decimal.Decimal:
		return v.IsZero()
	}
	return false
}
