package schema

import (
	"fmt"
	"reflect"
)

type optState uint8

const (
	stateUndefined optState = iota
	stateNull
	stateValue
)

// Opt is a tri-state constraint slot. Undefined means the adapter or author
// has no opinion; an explicit null is a defined value ("no limit", "no
// default") and participates in merges like any concrete value. The zero
// value is undefined.
type Opt[T any] struct {
	state optState
	value T
}

// Value wraps a concrete value.
func Value[T any](v T) Opt[T] {
	return Opt[T]{state: stateValue, value: v}
}

// Null returns a defined null slot.
func Null[T any]() Opt[T] {
	return Opt[T]{state: stateNull}
}

// Undefined returns the no-opinion slot.
func Undefined[T any]() Opt[T] {
	return Opt[T]{}
}

// IsDefined reports whether the slot holds either a null or a concrete value.
func (o Opt[T]) IsDefined() bool { return o.state != stateUndefined }

// IsNull reports whether the slot holds an explicit null.
func (o Opt[T]) IsNull() bool { return o.state == stateNull }

// IsUndefined reports whether the slot holds no opinion.
func (o Opt[T]) IsUndefined() bool { return o.state == stateUndefined }

// Get returns the concrete value when present. The second result is false
// for both null and undefined slots.
func (o Opt[T]) Get() (T, bool) {
	if o.state != stateValue {
		var zero T
		return zero, false
	}
	return o.value, true
}

// GetOr returns the concrete value or fallback.
func (o Opt[T]) GetOr(fallback T) T {
	if o.state == stateValue {
		return o.value
	}
	return fallback
}

// Or returns o when it is defined, otherwise fallback. This is the merge
// primitive: a defined slot, null included, always wins over undefined.
func (o Opt[T]) Or(fallback Opt[T]) Opt[T] {
	if o.IsDefined() {
		return o
	}
	return fallback
}

// Equal reports slot equality; concrete values compare deeply. Used by
// go-cmp in tests.
func (o Opt[T]) Equal(other Opt[T]) bool {
	if o.state != other.state {
		return false
	}
	if o.state != stateValue {
		return true
	}
	return reflect.DeepEqual(o.value, other.value)
}

// String renders the slot for diagnostics and test failure output.
func (o Opt[T]) String() string {
	switch o.state {
	case stateNull:
		return "null"
	case stateValue:
		return fmt.Sprintf("%v", o.value)
	default:
		return "undefined"
	}
}
