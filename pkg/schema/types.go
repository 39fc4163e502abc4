package schema

import "reflect"

// TypeKind enumerates the value types a field can accept.
type TypeKind string

const (
	TypeString   TypeKind = "string"
	TypeInt      TypeKind = "integer"
	TypeFloat    TypeKind = "float"
	TypeBool     TypeKind = "boolean"
	TypeDecimal  TypeKind = "decimal"
	TypeDate     TypeKind = "date"
	TypeTime     TypeKind = "time"
	TypeDateTime TypeKind = "datetime"
	TypeDuration TypeKind = "duration"
	TypeBytes    TypeKind = "bytes"
	TypeList     TypeKind = "list"
	TypeObject   TypeKind = "object"
)

// Format refinements for string fields. Formats add validation on top of the
// base kind and map to the matching OpenAPI format on export.
const (
	FormatEmail = "email"
	FormatURL   = "url"
	FormatUUID  = "uuid"
	FormatIP    = "ipaddr"
	FormatSlug  = "slug"
	FormatFile  = "file"
)

// EnumValue is one member of a closed choice set.
type EnumValue struct {
	Label string
	Value any
}

// TypeRef describes the value type accepted by one field. Nullable widens the
// type to also accept null, independent of whether the field is required.
type TypeRef struct {
	Kind     TypeKind
	Format   string
	Nullable bool
	// Elem is the element type for list fields.
	Elem *TypeRef
	// Enum restricts accepted values to a closed set.
	Enum []EnumValue
	// Object is the nested validator for object fields.
	Object *Schema
}

// StringType returns a plain string type.
func StringType() TypeRef { return TypeRef{Kind: TypeString} }

// IntType returns a plain integer type.
func IntType() TypeRef { return TypeRef{Kind: TypeInt} }

// FloatType returns a plain float type.
func FloatType() TypeRef { return TypeRef{Kind: TypeFloat} }

// BoolType returns a plain boolean type.
func BoolType() TypeRef { return TypeRef{Kind: TypeBool} }

// DecimalType returns a fixed-point decimal type.
func DecimalType() TypeRef { return TypeRef{Kind: TypeDecimal} }

// ListOf returns a list type with the given element type.
func ListOf(elem TypeRef) TypeRef {
	e := elem
	return TypeRef{Kind: TypeList, Elem: &e}
}

// ObjectOf returns an object type validated by the given schema.
func ObjectOf(s *Schema) TypeRef {
	return TypeRef{Kind: TypeObject, Object: s}
}

// AsNullable returns a copy of t that also accepts null.
func (t TypeRef) AsNullable() TypeRef {
	t.Nullable = true
	return t
}

// WithFormat returns a copy of t carrying a format refinement.
func (t TypeRef) WithFormat(format string) TypeRef {
	t.Format = format
	return t
}

// Clone returns a copy safe to mutate. Nested schemas are shared, not copied;
// they are immutable by construction.
func (t TypeRef) Clone() TypeRef {
	out := t
	if t.Elem != nil {
		elem := t.Elem.Clone()
		out.Elem = &elem
	}
	if len(t.Enum) > 0 {
		out.Enum = append([]EnumValue(nil), t.Enum...)
	}
	return out
}

// AllowsValue reports whether v is a member of the enum set. Always true when
// no enum is declared. Integer members compare across Go integer widths so a
// coerced int64 matches an enum declared with plain ints.
func (t TypeRef) AllowsValue(v any) bool {
	if len(t.Enum) == 0 {
		return true
	}
	for _, ev := range t.Enum {
		if memberEqual(ev.Value, v) {
			return true
		}
	}
	return false
}

func memberEqual(a, b any) bool {
	if ai, ok := asInt64(a); ok {
		bi, ok := asInt64(b)
		return ok && ai == bi
	}
	if af, ok := asFloat64(a); ok {
		bf, ok := asFloat64(b)
		return ok && af == bf
	}
	return reflect.DeepEqual(a, b)
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
