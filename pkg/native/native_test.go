package native_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemabind/pkg/native"
	"github.com/goliatone/go-schemabind/pkg/schema"
)

func baseSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New("User", schema.Fields{
		"name": {
			Type: schema.StringType(),
			Constraints: schema.Constraints{
				MaxLength:   schema.Value(50),
				Description: schema.Value("Display name"),
			},
		},
		"age": {
			Type:        schema.IntType(),
			Constraints: schema.Constraints{GreaterOrEqual: schema.Value[any](0)},
		},
		"email": {
			Type: schema.StringType().WithFormat(schema.FormatEmail),
		},
	})
	if err != nil {
		t.Fatalf("new schema: %v", err)
	}
	return s
}

func TestAdapterEchoesConstraintSlots(t *testing.T) {
	adapter := native.New(baseSchema(t))

	name := adapter.Field("name")
	if name == nil {
		t.Fatalf("expected handle for declared field")
	}
	if got := adapter.MaxLength(name); got.GetOr(0) != 50 {
		t.Fatalf("max length = %v", got)
	}
	if got := adapter.Description(name); got.GetOr("") != "Display name" {
		t.Fatalf("description = %v", got)
	}
	// Slots the schema never set stay undefined.
	if got := adapter.MinLength(name); !got.IsUndefined() {
		t.Fatalf("min length should be undefined, got %v", got)
	}
	if got := adapter.Pattern(name); !got.IsUndefined() {
		t.Fatalf("pattern should be undefined, got %v", got)
	}
}

func TestAdapterFieldUnknown(t *testing.T) {
	adapter := native.New(baseSchema(t))
	if h := adapter.Field("nope"); h != nil {
		t.Fatalf("unknown field should yield a nil handle, got %v", h)
	}
}

func TestAdapterFieldPreCheck(t *testing.T) {
	adapter := native.New(baseSchema(t))

	if err := adapter.FieldPreCheck("age", schema.FieldSpec{Type: schema.IntType()}); err != nil {
		t.Fatalf("matching kinds should pass: %v", err)
	}
	err := adapter.FieldPreCheck("age", schema.FieldSpec{Type: schema.StringType()})
	if err == nil {
		t.Fatalf("expected kind conflict")
	}
	if !strings.Contains(err.Error(), "conflicts with declared type") {
		t.Fatalf("unexpected error: %v", err)
	}
	// Fields the schema does not declare have nothing to conflict with.
	if err := adapter.FieldPreCheck("nope", schema.FieldSpec{Type: schema.StringType()}); err != nil {
		t.Fatalf("unknown field should pass: %v", err)
	}
}

func TestAdapterRunFieldRules(t *testing.T) {
	base, err := baseSchema(t).Clone(schema.WithFieldHook("name", func(ctx context.Context, value any) (any, error) {
		s := value.(string)
		if s == "root" {
			return nil, errors.New("name is reserved")
		}
		return strings.TrimSpace(s), nil
	}))
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	adapter := native.New(base)
	handle := adapter.Field("name")

	got, err := adapter.RunFieldRules(context.Background(), handle, "  ada  ")
	if err != nil {
		t.Fatalf("run field rules: %v", err)
	}
	if got != "ada" {
		t.Fatalf("normalized value = %#v", got)
	}

	_, err = adapter.RunFieldRules(context.Background(), handle, "root")
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if verr.Errors[0].Message != "Value error, name is reserved" {
		t.Fatalf("message = %q", verr.Errors[0].Message)
	}
	if diff := cmp.Diff([]string{"name"}, verr.Errors[0].Loc); diff != "" {
		t.Fatalf("loc mismatch (-want +got):\n%s", diff)
	}
	if !adapter.MatchesError(err) {
		t.Fatalf("adapter should recognize its own failure shape")
	}
}

func TestAdapterSynthesizeSubset(t *testing.T) {
	adapter := native.New(baseSchema(t))

	s, err := adapter.Synthesize(schema.SynthesizeRequest{
		Name:   "UserPublic",
		Fields: []string{"name", "email"},
	})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if diff := cmp.Diff([]string{"email", "name"}, s.FieldNames()); diff != "" {
		t.Fatalf("field set mismatch (-want +got):\n%s", diff)
	}
	prov, ok := s.Provenance()
	if !ok {
		t.Fatalf("synthesized schema should carry provenance")
	}
	if prov.Adapter != schema.ModelAdapter(adapter) {
		t.Fatalf("provenance adapter mismatch")
	}
}

func TestAdapterSynthesizeExclude(t *testing.T) {
	adapter := native.New(baseSchema(t))

	s, err := adapter.Synthesize(schema.SynthesizeRequest{Exclude: []string{"age"}})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if diff := cmp.Diff([]string{"email", "name"}, s.FieldNames()); diff != "" {
		t.Fatalf("field set mismatch (-want +got):\n%s", diff)
	}
}

func TestAdapterSynthesizeRejectsFieldsWithExclude(t *testing.T) {
	adapter := native.New(baseSchema(t))
	_, err := adapter.Synthesize(schema.SynthesizeRequest{
		Fields:  []string{"name"},
		Exclude: []string{"age"},
	})
	if err == nil {
		t.Fatalf("expected error for fields combined with exclude")
	}
}

func TestAdapterSynthesizeUnknownField(t *testing.T) {
	adapter := native.New(baseSchema(t))
	_, err := adapter.Synthesize(schema.SynthesizeRequest{Fields: []string{"nope"}})
	if err == nil || !strings.Contains(err.Error(), `field "nope" not found`) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAdapterSynthesizeOverlayWins(t *testing.T) {
	adapter := native.New(baseSchema(t))

	s, err := adapter.Synthesize(schema.SynthesizeRequest{
		FieldSpecs: map[string]schema.FieldSpec{
			"name": {Constraints: schema.Constraints{MaxLength: schema.Value(10)}},
		},
	})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	spec, _ := s.Field("name")
	if spec.Constraints.MaxLength.GetOr(0) != 10 {
		t.Fatalf("overlay should win, got %v", spec.Constraints.MaxLength)
	}
	// Slots the overlay left undefined keep the declared values.
	if spec.Constraints.Description.GetOr("") != "Display name" {
		t.Fatalf("declared description lost: %v", spec.Constraints.Description)
	}
	if spec.Type.Kind != schema.TypeString {
		t.Fatalf("declared type lost: %v", spec.Type.Kind)
	}
}

func TestAdapterMaterializeIsIdentity(t *testing.T) {
	base := baseSchema(t)
	adapter := native.New(base)
	obj := schema.NewObject(base, map[string]any{"name": "ada", "age": int64(36)})

	got, err := adapter.Materialize(context.Background(), obj)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if got != any(obj) {
		t.Fatalf("got %T, want the object back", got)
	}
}
