package bind_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-schemabind/pkg/bind"
	"github.com/goliatone/go-schemabind/pkg/schema"
)

func TestOverlayFromYAML(t *testing.T) {
	doc := []byte(`
fields:
  email:
    title: Email address
    type: string
    format: email
    max_length: 254
    pattern: "^[^@]+@[^@]+$"
    examples: ["a@b.co"]
  age:
    ge: 13
    le: 130
    nullable: true
    default: null
  bio:
    description: null
    max_length: 280
    deprecated: true
    strict: true
  priority:
    type: integer
    multiple_of: 5
    default: 0
`)
	got, err := bind.OverlayFromYAML(doc)
	if err != nil {
		t.Fatalf("parse overlay: %v", err)
	}
	want := map[string]schema.FieldSpec{
		"email": {
			Type: schema.TypeRef{Kind: schema.TypeString, Format: schema.FormatEmail},
			Constraints: schema.Constraints{
				MaxLength: schema.Value(254),
				Pattern:   schema.Value("^[^@]+@[^@]+$"),
			},
			Native: schema.NativeSpec{Title: "Email address", Examples: []any{"a@b.co"}},
		},
		"age": {
			Type: schema.TypeRef{Nullable: true},
			Constraints: schema.Constraints{
				GreaterOrEqual: schema.Value[any](int64(13)),
				LessOrEqual:    schema.Value[any](int64(130)),
				Default:        schema.Null[any](),
			},
		},
		"bio": {
			Constraints: schema.Constraints{
				Description: schema.Null[string](),
				MaxLength:   schema.Value(280),
			},
			Native: schema.NativeSpec{Deprecated: true, Strict: true},
		},
		"priority": {
			Type: schema.TypeRef{Kind: schema.TypeInt},
			Constraints: schema.Constraints{
				MultipleOf: schema.Value[any](int64(5)),
				Default:    schema.Value[any](int64(0)),
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("overlay mismatch (-want +got):\n%s", diff)
	}
}

func TestOverlayFromYAMLEmpty(t *testing.T) {
	for _, doc := range []string{"", "# nothing here", "fields:"} {
		got, err := bind.OverlayFromYAML([]byte(doc))
		if err != nil {
			t.Fatalf("parse %q: %v", doc, err)
		}
		if len(got) != 0 {
			t.Fatalf("parse %q = %v, want empty", doc, got)
		}
	}
}

func TestOverlayFromYAMLRejectsUnknownKey(t *testing.T) {
	doc := []byte("fields:\n  email:\n    max_lenght: 3\n")
	_, err := bind.OverlayFromYAML(doc)
	if err == nil || !strings.Contains(err.Error(), "max_lenght") {
		t.Fatalf("err = %v, want unknown key rejected", err)
	}
}

func TestOverlayFromYAMLRejectsBadValue(t *testing.T) {
	doc := []byte("fields:\n  email:\n    max_length: banana\n")
	_, err := bind.OverlayFromYAML(doc)
	if err == nil || !strings.Contains(err.Error(), `field "email"`) {
		t.Fatalf("err = %v, want the field named", err)
	}
	if !strings.Contains(err.Error(), "max_length") {
		t.Fatalf("err = %v, want the key named", err)
	}
}

func TestOverlayFromYAMLRejectsUnsupportedType(t *testing.T) {
	doc := []byte("fields:\n  grid:\n    type: matrix\n")
	_, err := bind.OverlayFromYAML(doc)
	if err == nil || !strings.Contains(err.Error(), `unsupported type "matrix"`) {
		t.Fatalf("err = %v, want unsupported type", err)
	}
}

func TestMergeOverlays(t *testing.T) {
	dst := map[string]schema.FieldSpec{
		"email": {Constraints: schema.Constraints{MaxLength: schema.Value(128)}},
		"bio":   {Constraints: schema.Constraints{Description: schema.Null[string]()}},
	}
	src1 := map[string]schema.FieldSpec{
		"email": {
			Constraints: schema.Constraints{
				MaxLength:   schema.Value(254),
				Description: schema.Value("contact address"),
			},
			Native: schema.NativeSpec{Title: "Email"},
		},
		"age": {Constraints: schema.Constraints{GreaterOrEqual: schema.Value[any](int64(13))}},
	}
	src2 := map[string]schema.FieldSpec{
		"age": {Constraints: schema.Constraints{
			GreaterOrEqual: schema.Value[any](int64(18)),
			LessOrEqual:    schema.Value[any](int64(130)),
		}},
		"bio": {Constraints: schema.Constraints{Description: schema.Value("free text")}},
	}

	got, err := bind.MergeOverlays(dst, src1, src2)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	want := map[string]schema.FieldSpec{
		"email": {
			Constraints: schema.Constraints{
				MaxLength:   schema.Value(128),
				Description: schema.Value("contact address"),
			},
			Native: schema.NativeSpec{Title: "Email"},
		},
		"age": {Constraints: schema.Constraints{
			GreaterOrEqual: schema.Value[any](int64(13)),
			LessOrEqual:    schema.Value[any](int64(130)),
		}},
		"bio": {Constraints: schema.Constraints{Description: schema.Null[string]()}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("merge mismatch (-want +got):\n%s", diff)
	}

	if dst["email"].Constraints.Description.IsDefined() {
		t.Fatal("merge mutated its input")
	}
}

func TestMergeOverlaysFromDocuments(t *testing.T) {
	local, err := bind.OverlayFromYAML([]byte("fields:\n  email:\n    max_length: 128\n"))
	if err != nil {
		t.Fatalf("parse local: %v", err)
	}
	shared, err := bind.OverlayFromYAML([]byte("fields:\n  email:\n    title: Email\n    max_length: 254\n"))
	if err != nil {
		t.Fatalf("parse shared: %v", err)
	}
	got, err := bind.MergeOverlays(local, shared)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	spec := got["email"]
	if n, _ := spec.Constraints.MaxLength.Get(); n != 128 {
		t.Fatalf("max length = %d, want the local 128", n)
	}
	if spec.Native.Title != "Email" {
		t.Fatalf("title = %q, want filled from shared doc", spec.Native.Title)
	}
}

func TestFromModelOverlayKeepsNullable(t *testing.T) {
	overlay, err := bind.OverlayFromYAML([]byte("fields:\n  bio:\n    nullable: true\n"))
	if err != nil {
		t.Fatalf("parse overlay: %v", err)
	}
	s, err := bind.FromModel(modelSchema(t), bind.WithFieldSpecs(overlay))
	if err != nil {
		t.Fatalf("from model: %v", err)
	}
	spec, _ := s.Field("bio")
	if spec.Type.Kind != schema.TypeString || !spec.Type.Nullable {
		t.Fatalf("bio type = %+v, want nullable string", spec.Type)
	}
}
