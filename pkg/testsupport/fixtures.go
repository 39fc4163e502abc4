// Package testsupport provides the shared model fixtures the package tests
// build schemas from: a user/article/tag graph with a foreign key, a
// many-to-many join, rules, choices and generated defaults. Helpers fatal on
// setup failure to keep the tests that use them concise.
package testsupport

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/goliatone/go-schemabind/pkg/bind"
	"github.com/goliatone/go-schemabind/pkg/gormbind"
	"github.com/goliatone/go-schemabind/pkg/rule"
	"github.com/goliatone/go-schemabind/pkg/schema"
)

// User is the root of the fixture graph.
type User struct {
	ID          uint      `gorm:"primaryKey"`
	Email       string    `gorm:"size:254;uniqueIndex;comment:contact address" sb:"email"`
	DisplayName string    `gorm:"size:150"`
	Age         int16     `sb:"optional"`
	Bio         string    `sb:"optional"`
	Website     *string   `sb:"url"`
	Plan        string    `gorm:"size:20;default:free"`
	APIKey      uuid.UUID `sb:"optional"`
	CreatedAt   time.Time
}

func (User) FieldRules() map[string][]rule.Rule {
	return map[string][]rule.Rule{
		"DisplayName": {rule.MinLen(3)},
		"Age":         {rule.Min(13), rule.Max(130)},
	}
}

func (User) FieldChoices() map[string][]rule.Choice {
	return map[string][]rule.Choice{
		"Plan": {
			{Value: "free", Label: "Free"},
			{Value: "pro", Label: "Pro"},
		},
	}
}

func (User) FieldDefaults() map[string]func() any {
	return map[string]func() any{
		"APIKey": func() any { return uuid.NewString() },
	}
}

func (User) ValidateModel(ctx context.Context, values map[string]any) error {
	if values["display_name"] == "root" {
		return rule.FieldErrors{
			"display_name": {rule.NewError("reserved", "This name is reserved.")},
		}
	}
	return nil
}

// Article belongs to a User and carries the many-to-many side of the graph.
type Article struct {
	ID          uint            `gorm:"primaryKey"`
	Title       string          `gorm:"size:200"`
	Slug        string          `gorm:"size:80;uniqueIndex" sb:"slug"`
	Body        string          `sb:"optional"`
	Rating      decimal.Decimal `gorm:"precision:4;scale:2" sb:"optional"`
	PublishedAt *time.Time      `sb:"optional"`
	AuthorID    uint
	Author      User
	Tags        []Tag `gorm:"many2many:article_tags"`
	CreatedAt   time.Time
}

func (Article) FieldRules() map[string][]rule.Rule {
	return map[string][]rule.Rule{
		"Title": {rule.MinLen(3)},
	}
}

// Tag labels articles.
type Tag struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:50;uniqueIndex"`
}

// MustAdapter builds a GORM adapter for the model.
func MustAdapter(t *testing.T, model any, opts ...gormbind.Option) *gormbind.Adapter {
	t.Helper()
	adapter, err := gormbind.New(model, opts...)
	if err != nil {
		t.Fatalf("adapter for %T: %v", model, err)
	}
	return adapter
}

// MustSchema synthesizes and enriches a schema straight from the model.
// Callers can append further bind options, including a WithAdapter that
// overrides the default one.
func MustSchema(t *testing.T, model any, opts ...bind.Option) *schema.Schema {
	t.Helper()
	all := append([]bind.Option{bind.WithAdapter(MustAdapter(t, model))}, opts...)
	s, err := bind.FromModel(model, all...)
	if err != nil {
		t.Fatalf("schema for %T: %v", model, err)
	}
	return s
}

// MustObject validates values into an object.
func MustObject(t *testing.T, s *schema.Schema, values map[string]any) *schema.Object {
	t.Helper()
	obj, err := s.Validate(context.Background(), values)
	if err != nil {
		t.Fatalf("validate %s: %v", s.Name(), err)
	}
	return obj
}

// FieldNames extracts the sorted top-level field locations from a validation
// error, one entry per field regardless of how many records blame it.
func FieldNames(t *testing.T, err error) []string {
	t.Helper()
	var verr *schema.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("not a validation error: %v", err)
	}
	seen := make(map[string]bool, len(verr.Errors))
	out := make([]string, 0, len(verr.Errors))
	for _, rec := range verr.Errors {
		if len(rec.Loc) == 0 || seen[rec.Loc[0]] {
			continue
		}
		seen[rec.Loc[0]] = true
		out = append(out, rec.Loc[0])
	}
	sort.Strings(out)
	return out
}

// MockDB opens a gorm handle over sqlmock for uniqueness checks and row
// fetches.
func MockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{})
	if err != nil {
		t.Fatalf("open gorm: %v", err)
	}
	return db, mock
}
