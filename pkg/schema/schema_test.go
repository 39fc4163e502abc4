package schema_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemabind/pkg/schema"
)

func TestNewOrdersFieldsByName(t *testing.T) {
	s, err := schema.New("User", schema.Fields{
		"title": {Type: schema.StringType()},
		"age":   {Type: schema.IntType()},
		"email": {Type: schema.StringType().WithFormat(schema.FormatEmail)},
	})
	if err != nil {
		t.Fatalf("new schema: %v", err)
	}

	want := []string{"age", "email", "title"}
	if diff := cmp.Diff(want, s.FieldNames()); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
	if s.Len() != 3 {
		t.Fatalf("Len = %d, want 3", s.Len())
	}
}

func TestNewRequiresAName(t *testing.T) {
	if _, err := schema.New("", schema.Fields{}); err == nil {
		t.Fatalf("expected error for empty schema name")
	}
}

func TestNewRejectsInvalidPattern(t *testing.T) {
	_, err := schema.New("User", schema.Fields{
		"code": {
			Type:        schema.StringType(),
			Constraints: schema.Constraints{Pattern: schema.Value("([unclosed")},
		},
	})
	if err == nil {
		t.Fatalf("expected error for invalid pattern")
	}
	if !strings.Contains(err.Error(), "invalid pattern") {
		t.Fatalf("error should mention the pattern: %v", err)
	}
}

func TestFieldSpecsAreCopiedIn(t *testing.T) {
	spec := schema.FieldSpec{
		Type:        schema.StringType(),
		Constraints: schema.Constraints{MaxLength: schema.Value(10)},
	}
	s := schema.MustNew("User", schema.Fields{"name": spec})

	spec.Constraints.MaxLength = schema.Value(99)

	got, ok := s.Field("name")
	if !ok {
		t.Fatalf("field name not found")
	}
	if got.Constraints.MaxLength.GetOr(0) != 10 {
		t.Fatalf("schema field should not share state with the caller's spec")
	}
	if got.Name != "name" {
		t.Fatalf("field name should be stamped on the spec, got %q", got.Name)
	}
}

func TestWithFieldHookRejectsUnknownField(t *testing.T) {
	hook := func(ctx context.Context, value any) (any, error) { return value, nil }
	_, err := schema.New("User",
		schema.Fields{"name": {Type: schema.StringType()}},
		schema.WithFieldHook("nope", hook),
	)
	if err == nil {
		t.Fatalf("expected error for hook on unknown field")
	}
	if !strings.Contains(err.Error(), `unknown field "nope"`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCloneDerivesIndependentSchema(t *testing.T) {
	base := schema.MustNew("User", schema.Fields{
		"name": {Type: schema.StringType(), Constraints: schema.Constraints{MaxLength: schema.Value(10)}},
	})

	derived, err := base.Clone(
		schema.WithName("UserPatch"),
		schema.WithFieldSpec("name", schema.FieldSpec{
			Type:        schema.StringType(),
			Constraints: schema.Constraints{MaxLength: schema.Value(5)},
		}),
		schema.WithFieldSpec("note", schema.FieldSpec{Type: schema.StringType()}),
	)
	if err != nil {
		t.Fatalf("clone: %v", err)
	}

	if derived.Name() != "UserPatch" {
		t.Fatalf("derived name = %q", derived.Name())
	}
	if diff := cmp.Diff([]string{"name", "note"}, derived.FieldNames()); diff != "" {
		t.Fatalf("derived field order mismatch (-want +got):\n%s", diff)
	}

	baseName, _ := base.Field("name")
	if baseName.Constraints.MaxLength.GetOr(0) != 10 {
		t.Fatalf("base schema mutated by clone")
	}
	if base.Len() != 1 {
		t.Fatalf("base schema gained fields from clone")
	}
}

func TestProvenanceRoundTrip(t *testing.T) {
	base := schema.MustNew("User", schema.Fields{"name": {Type: schema.StringType()}})
	if _, ok := base.Provenance(); ok {
		t.Fatalf("fresh schema should carry no provenance")
	}

	model := struct{ Name string }{}
	stamped, err := base.Clone(schema.WithProvenance(schema.Provenance{Model: model}))
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	prov, ok := stamped.Provenance()
	if !ok {
		t.Fatalf("stamped schema should expose provenance")
	}
	if prov.Model != model {
		t.Fatalf("provenance model mismatch: %#v", prov.Model)
	}
}

func TestObjectWithValueDerives(t *testing.T) {
	s := schema.MustNew("User", schema.Fields{"name": {Type: schema.StringType()}})
	obj := schema.NewObject(s, map[string]any{"name": "ada"})

	next := obj.WithValue("name", "grace")

	if obj.Value("name") != "ada" {
		t.Fatalf("original object mutated: %v", obj.Value("name"))
	}
	if next.Value("name") != "grace" {
		t.Fatalf("derived object missing new value: %v", next.Value("name"))
	}
	if next.Schema() != s {
		t.Fatalf("derived object should keep the schema")
	}
}
