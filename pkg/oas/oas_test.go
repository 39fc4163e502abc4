package oas_test

import (
	"math"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"github.com/goliatone/go-schemabind/pkg/oas"
	"github.com/goliatone/go-schemabind/pkg/schema"
)

func profileSchema(t *testing.T) *schema.Schema {
	t.Helper()
	return schema.MustNew("Profile", schema.Fields{
		"city": {
			Type:        schema.StringType(),
			Constraints: schema.Constraints{MaxLength: schema.Value(80)},
		},
	})
}

func accountSchema(t *testing.T) *schema.Schema {
	t.Helper()
	return schema.MustNew("Account", schema.Fields{
		"email": {
			Type: schema.StringType().WithFormat(schema.FormatEmail),
			Constraints: schema.Constraints{
				MaxLength:   schema.Value(254),
				MinLength:   schema.Value(3),
				Pattern:     schema.Value("^[^@]+@"),
				Description: schema.Value("contact address"),
			},
			Native: schema.NativeSpec{Title: "Email", Examples: []any{"a@b.co"}},
		},
		"age": {
			Type: schema.IntType().AsNullable(),
			Constraints: schema.Constraints{
				GreaterOrEqual: schema.Value[any](int64(13)),
				LessThan:       schema.Value[any](int64(200)),
				Default:        schema.Null[any](),
			},
		},
		"balance": {
			Type: schema.DecimalType(),
			Constraints: schema.Constraints{
				GreaterOrEqual: schema.Value[any](decimal.New(0, 0)),
				MaxDigits:      schema.Value(10),
				DecimalPlaces:  schema.Value(2),
				Default:        schema.Null[any](),
			},
		},
		"plan": {
			Type: schema.TypeRef{Kind: schema.TypeString, Enum: []schema.EnumValue{
				{Label: "Free", Value: "free"},
				{Label: "Pro", Value: "pro"},
			}},
			Constraints: schema.Constraints{Default: schema.Value[any]("free")},
		},
		"homepage": {Type: schema.StringType().WithFormat(schema.FormatURL)},
		"tags": {
			Type: schema.ListOf(schema.IntType()),
			Constraints: schema.Constraints{
				MinLength: schema.Value(1),
				MaxLength: schema.Value(5),
			},
		},
		"profile": {Type: schema.ObjectOf(profileSchema(t)).AsNullable()},
		"secret":  {Type: schema.StringType(), Native: schema.NativeSpec{Exclude: true}},
		"big": {
			Type: schema.IntType(),
			Constraints: schema.Constraints{
				GreaterOrEqual: schema.Value[any](int64(math.MinInt64)),
				LessOrEqual:    schema.Value[any](int64(math.MaxInt64)),
				Default:        schema.Null[any](),
			},
		},
	}, schema.WithDoc("account payload"))
}

func export(t *testing.T) *openapi3.Schema {
	t.Helper()
	out, err := oas.Export(accountSchema(t))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	return out
}

func prop(t *testing.T, s *openapi3.Schema, name string) *openapi3.Schema {
	t.Helper()
	ref, ok := s.Properties[name]
	if !ok || ref.Value == nil {
		t.Fatalf("property %s missing", name)
	}
	return ref.Value
}

func TestExportObjectShape(t *testing.T) {
	out := export(t)
	if !out.Type.Is(openapi3.TypeObject) {
		t.Fatalf("type = %v, want object", out.Type)
	}
	if out.Title != "Account" || out.Description != "account payload" {
		t.Fatalf("title/description = %q/%q", out.Title, out.Description)
	}
	if len(out.Properties) != 8 {
		t.Fatalf("properties = %d, want 8", len(out.Properties))
	}
	want := []string{"email", "homepage", "profile", "tags"}
	if diff := cmp.Diff(want, out.Required); diff != "" {
		t.Fatalf("required mismatch (-want +got):\n%s", diff)
	}
}

func TestExportStringConstraints(t *testing.T) {
	email := prop(t, export(t), "email")
	if !email.Type.Is(openapi3.TypeString) || email.Format != "email" {
		t.Fatalf("type/format = %v/%q", email.Type, email.Format)
	}
	if email.MinLength != 3 || email.MaxLength == nil || *email.MaxLength != 254 {
		t.Fatalf("length bounds = %d/%v", email.MinLength, email.MaxLength)
	}
	if email.Pattern != "^[^@]+@" {
		t.Fatalf("pattern = %q", email.Pattern)
	}
	if email.Description != "contact address" || email.Title != "Email" {
		t.Fatalf("description/title = %q/%q", email.Description, email.Title)
	}
	if email.Example != "a@b.co" {
		t.Fatalf("example = %v", email.Example)
	}
}

func TestExportNumericBounds(t *testing.T) {
	age := prop(t, export(t), "age")
	if !age.Type.Is(openapi3.TypeInteger) || !age.Nullable {
		t.Fatalf("type = %v nullable = %v", age.Type, age.Nullable)
	}
	if age.Min == nil || *age.Min != 13 || age.ExclusiveMin {
		t.Fatalf("min = %v exclusive = %v", age.Min, age.ExclusiveMin)
	}
	if age.Max == nil || *age.Max != 200 || !age.ExclusiveMax {
		t.Fatalf("max = %v exclusive = %v", age.Max, age.ExclusiveMax)
	}
	if age.Default != nil {
		t.Fatalf("default = %v, want omitted for null", age.Default)
	}
}

func TestExportDecimal(t *testing.T) {
	balance := prop(t, export(t), "balance")
	if !balance.Type.Is(openapi3.TypeNumber) || balance.Format != "decimal" {
		t.Fatalf("type/format = %v/%q", balance.Type, balance.Format)
	}
	if balance.Min == nil || *balance.Min != 0 {
		t.Fatalf("min = %v", balance.Min)
	}
	if got := balance.Extensions["x-max-digits"]; got != 10 {
		t.Fatalf("x-max-digits = %v", got)
	}
	if got := balance.Extensions["x-decimal-places"]; got != 2 {
		t.Fatalf("x-decimal-places = %v", got)
	}
}

func TestExportEnumAndDefault(t *testing.T) {
	plan := prop(t, export(t), "plan")
	if diff := cmp.Diff([]any{"free", "pro"}, plan.Enum); diff != "" {
		t.Fatalf("enum mismatch (-want +got):\n%s", diff)
	}
	if plan.Default != "free" {
		t.Fatalf("default = %v", plan.Default)
	}
}

func TestExportURLFormat(t *testing.T) {
	homepage := prop(t, export(t), "homepage")
	if homepage.Format != "uri" {
		t.Fatalf("format = %q, want uri", homepage.Format)
	}
}

func TestExportList(t *testing.T) {
	tags := prop(t, export(t), "tags")
	if !tags.Type.Is(openapi3.TypeArray) {
		t.Fatalf("type = %v, want array", tags.Type)
	}
	if tags.MinItems != 1 || tags.MaxItems == nil || *tags.MaxItems != 5 {
		t.Fatalf("item bounds = %d/%v", tags.MinItems, tags.MaxItems)
	}
	if tags.Items == nil || tags.Items.Value == nil || !tags.Items.Value.Type.Is(openapi3.TypeInteger) {
		t.Fatalf("items = %v", tags.Items)
	}
}

func TestExportNestedObject(t *testing.T) {
	profile := prop(t, export(t), "profile")
	if !profile.Type.Is(openapi3.TypeObject) || !profile.Nullable {
		t.Fatalf("type = %v nullable = %v", profile.Type, profile.Nullable)
	}
	if profile.Title != "Profile" {
		t.Fatalf("title = %q", profile.Title)
	}
	city := prop(t, profile, "city")
	if city.MaxLength == nil || *city.MaxLength != 80 {
		t.Fatalf("city max length = %v", city.MaxLength)
	}
	if diff := cmp.Diff([]string{"city"}, profile.Required); diff != "" {
		t.Fatalf("nested required mismatch (-want +got):\n%s", diff)
	}
}

func TestExportSkipsExcludedFields(t *testing.T) {
	out := export(t)
	if _, ok := out.Properties["secret"]; ok {
		t.Fatal("excluded field exported")
	}
	for _, name := range out.Required {
		if name == "secret" {
			t.Fatal("excluded field listed as required")
		}
	}
}

func TestExportOmitsUnsafeBounds(t *testing.T) {
	big := prop(t, export(t), "big")
	if big.Min != nil || big.Max != nil {
		t.Fatalf("bounds = %v/%v, want omitted", big.Min, big.Max)
	}
}

func TestComponents(t *testing.T) {
	session := schema.MustNew("Session", schema.Fields{
		"token": {Type: schema.StringType()},
	})
	components, err := oas.Components(accountSchema(t), session)
	if err != nil {
		t.Fatalf("components: %v", err)
	}
	if len(components) != 2 {
		t.Fatalf("components = %d, want 2", len(components))
	}
	for _, name := range []string{"Account", "Session"} {
		ref, ok := components[name]
		if !ok || ref.Value == nil {
			t.Fatalf("component %s missing", name)
		}
		if ref.Value.Title != name {
			t.Fatalf("component %s title = %q", name, ref.Value.Title)
		}
	}
}

func TestComponentsRejectsDuplicates(t *testing.T) {
	s := accountSchema(t)
	if _, err := oas.Components(s, s); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("err = %v, want duplicate rejected", err)
	}
}

func TestComponentsRejectsNil(t *testing.T) {
	if _, err := oas.Components(nil); err == nil {
		t.Fatal("expected error for nil schema")
	}
}

func TestExportErrors(t *testing.T) {
	cases := []struct {
		name   string
		fields schema.Fields
		want   string
	}{
		{"kindless", schema.Fields{"x": {}}, "no exportable type"},
		{"bare list", schema.Fields{"xs": {Type: schema.TypeRef{Kind: schema.TypeList}}}, "list without element type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := oas.Export(schema.MustNew("Broken", tc.fields))
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want %q", err, tc.want)
			}
		})
	}
	if _, err := oas.Export(nil); err == nil {
		t.Fatal("expected error for nil schema")
	}
}
