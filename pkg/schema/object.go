package schema

// Object is the result of a successful validation: the producing schema plus
// the accepted values.
type Object struct {
	schema *Schema
	values map[string]any
}

// NewObject pairs a schema with validated values. Validate is the usual
// constructor; this one serves adapters and tests.
func NewObject(s *Schema, values map[string]any) *Object {
	copied := make(map[string]any, len(values))
	for k, v := range values {
		copied[k] = v
	}
	return &Object{schema: s, values: copied}
}

// Schema returns the schema that produced the object.
func (o *Object) Schema() *Schema { return o.schema }

// Get returns one field value and whether it is set.
func (o *Object) Get(name string) (any, bool) {
	v, ok := o.values[name]
	return v, ok
}

// Value returns one field value, nil when unset.
func (o *Object) Value(name string) any {
	return o.values[name]
}

// Values returns a copy of all field values.
func (o *Object) Values() map[string]any {
	out := make(map[string]any, len(o.values))
	for k, v := range o.values {
		out[k] = v
	}
	return out
}

// WithValue derives a new object with one value replaced. Hooks use this to
// normalize data without mutating the input object.
func (o *Object) WithValue(name string, value any) *Object {
	out := NewObject(o.schema, o.values)
	out.values[name] = value
	return out
}
