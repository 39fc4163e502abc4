package schema_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemabind/pkg/schema"
)

func TestConstraintsMergeIsSlotWise(t *testing.T) {
	overlay := schema.Constraints{
		MaxLength:   schema.Value(80),
		Description: schema.Null[string](),
	}
	discovered := schema.Constraints{
		MaxLength:   schema.Value(255),
		MinLength:   schema.Value(1),
		Description: schema.Value("from the column comment"),
	}

	merged := overlay.Merge(discovered)

	want := schema.Constraints{
		MaxLength:   schema.Value(80),
		MinLength:   schema.Value(1),
		Description: schema.Null[string](),
	}
	if diff := cmp.Diff(want, merged); diff != "" {
		t.Fatalf("merged constraints mismatch (-want +got):\n%s", diff)
	}
}

func TestConstraintsMergeNullSuppressesFallback(t *testing.T) {
	// An explicit null is a decision, not an absence: merging must not let
	// the other side's value resurface.
	overlay := schema.Constraints{MaxLength: schema.Null[int]()}
	discovered := schema.Constraints{MaxLength: schema.Value(255)}

	merged := overlay.Merge(discovered)
	if !merged.MaxLength.IsNull() {
		t.Fatalf("max length should stay null, got %v", merged.MaxLength)
	}
}

func TestConstraintsRequired(t *testing.T) {
	if !(schema.Constraints{}).Required() {
		t.Fatalf("constraints without defaults should be required")
	}
	withDefault := schema.Constraints{Default: schema.Value[any]("user")}
	if withDefault.Required() {
		t.Fatalf("a default value makes the field optional")
	}
	withNullDefault := schema.Constraints{Default: schema.Null[any]()}
	if withNullDefault.Required() {
		t.Fatalf("a null default still makes the field optional")
	}
	withFactory := schema.Constraints{DefaultFunc: schema.Value(func() any { return 1 })}
	if withFactory.Required() {
		t.Fatalf("a default factory makes the field optional")
	}
}

func TestConstraintsDefaultValue(t *testing.T) {
	none := schema.Constraints{}
	if _, ok := none.DefaultValue(); ok {
		t.Fatalf("no default declared, DefaultValue should report absent")
	}

	plain := schema.Constraints{Default: schema.Value[any](42)}
	if v, ok := plain.DefaultValue(); !ok || v != 42 {
		t.Fatalf("DefaultValue = %v, %v; want 42, true", v, ok)
	}

	null := schema.Constraints{Default: schema.Null[any]()}
	if v, ok := null.DefaultValue(); !ok || v != nil {
		t.Fatalf("DefaultValue = %v, %v; want nil, true", v, ok)
	}

	factory := schema.Constraints{
		Default:     schema.Value[any]("ignored"),
		DefaultFunc: schema.Value(func() any { return "generated" }),
	}
	if v, ok := factory.DefaultValue(); !ok || v != "generated" {
		t.Fatalf("DefaultValue = %v, %v; want factory result", v, ok)
	}
}
