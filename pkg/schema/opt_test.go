package schema_test

import (
	"testing"

	"github.com/goliatone/go-schemabind/pkg/schema"
)

func TestOptZeroValueIsUndefined(t *testing.T) {
	var slot schema.Opt[int]

	if !slot.IsUndefined() {
		t.Fatalf("zero slot should be undefined")
	}
	if slot.IsDefined() {
		t.Fatalf("zero slot should not be defined")
	}
	if slot.IsNull() {
		t.Fatalf("zero slot should not be null")
	}
	if _, ok := slot.Get(); ok {
		t.Fatalf("Get on undefined slot should report absent")
	}
}

func TestOptStates(t *testing.T) {
	cases := []struct {
		name      string
		slot      schema.Opt[string]
		defined   bool
		null      bool
		undefined bool
		value     string
		has       bool
	}{
		{name: "value", slot: schema.Value("hi"), defined: true, value: "hi", has: true},
		{name: "empty value", slot: schema.Value(""), defined: true, value: "", has: true},
		{name: "null", slot: schema.Null[string](), defined: true, null: true},
		{name: "undefined", slot: schema.Undefined[string](), undefined: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.slot.IsDefined(); got != tc.defined {
				t.Fatalf("IsDefined = %v, want %v", got, tc.defined)
			}
			if got := tc.slot.IsNull(); got != tc.null {
				t.Fatalf("IsNull = %v, want %v", got, tc.null)
			}
			if got := tc.slot.IsUndefined(); got != tc.undefined {
				t.Fatalf("IsUndefined = %v, want %v", got, tc.undefined)
			}
			v, ok := tc.slot.Get()
			if ok != tc.has {
				t.Fatalf("Get ok = %v, want %v", ok, tc.has)
			}
			if v != tc.value {
				t.Fatalf("Get value = %q, want %q", v, tc.value)
			}
		})
	}
}

func TestOptOrPrefersDefinedSlots(t *testing.T) {
	if got := schema.Value(3).Or(schema.Value(9)); got.GetOr(0) != 3 {
		t.Fatalf("defined slot should win over fallback, got %v", got)
	}

	// Null counts as defined: it must not be replaced by a fallback value.
	if got := schema.Null[int]().Or(schema.Value(9)); !got.IsNull() {
		t.Fatalf("null slot should survive Or, got %v", got)
	}

	if got := schema.Undefined[int]().Or(schema.Value(9)); got.GetOr(0) != 9 {
		t.Fatalf("undefined slot should take the fallback, got %v", got)
	}
	if got := schema.Undefined[int]().Or(schema.Null[int]()); !got.IsNull() {
		t.Fatalf("undefined slot should take a null fallback, got %v", got)
	}
	if got := schema.Undefined[int]().Or(schema.Undefined[int]()); !got.IsUndefined() {
		t.Fatalf("two undefined slots should stay undefined, got %v", got)
	}
}

func TestOptGetOr(t *testing.T) {
	if got := schema.Value(4).GetOr(7); got != 4 {
		t.Fatalf("GetOr on value = %d, want 4", got)
	}
	if got := schema.Null[int]().GetOr(7); got != 7 {
		t.Fatalf("GetOr on null = %d, want fallback 7", got)
	}
	if got := schema.Undefined[int]().GetOr(7); got != 7 {
		t.Fatalf("GetOr on undefined = %d, want fallback 7", got)
	}
}

func TestOptString(t *testing.T) {
	if got := schema.Value(12).String(); got != "12" {
		t.Fatalf("String on value = %q", got)
	}
	if got := schema.Null[int]().String(); got != "null" {
		t.Fatalf("String on null = %q", got)
	}
	if got := schema.Undefined[int]().String(); got != "undefined" {
		t.Fatalf("String on undefined = %q", got)
	}
}
