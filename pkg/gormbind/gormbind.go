// Package gormbind adapts GORM-mapped structs to the schema constraint
// vocabulary. The adapter reads column metadata straight out of gorm's
// schema parser, lifts introspectable rules declared through pkg/rule into
// constraints, and runs the rest as field and model hooks. Schemas built
// here validate input the way the database will store it.
//
// Requiredness follows the struct, not the column: a field is optional when
// its Go type is a pointer, when its sb tag says so, when it carries a
// declared default, or when it is an auto-increment primary key. The sb tag
// also names string formats:
//
//	Email string `gorm:"size:254" sb:"email"`
//	Bio   string `sb:"optional"`
//
// Recognized tokens are optional, email, url, uuid, ip, slug and file.
package gormbind

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormschema "gorm.io/gorm/schema"

	"github.com/goliatone/go-schemabind/pkg/rule"
	"github.com/goliatone/go-schemabind/pkg/schema"
)

// parseCache is shared across adapters; gorm parses each model type once.
var parseCache = &sync.Map{}

var _ schema.ModelAdapter = (*Adapter)(nil)

// Adapter wraps one GORM model value.
type Adapter struct {
	model any
	gs    *gormschema.Schema
	db    *gorm.DB
	log   zerolog.Logger
	namer gormschema.Namer

	rules    map[string][]rule.Rule
	choices  map[string][]rule.Choice
	defaults map[string]func() any

	// rels holds belongs-to and many-to-many relations keyed by their
	// column-style field name; fkCols marks the raw foreign key columns
	// those relations already cover.
	rels   map[string]*gormschema.Relationship
	fkCols map[string]bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithDB supplies the connection used for uniqueness checks and primary key
// fetches. Without one those paths are skipped.
func WithDB(db *gorm.DB) Option {
	return func(a *Adapter) { a.db = db }
}

// WithLogger replaces the no-op default.
func WithLogger(log zerolog.Logger) Option {
	return func(a *Adapter) { a.log = log }
}

// Match reports whether model is something this adapter can wrap: a struct
// or pointer to struct that is not already a schema.
func Match(model any) bool {
	if model == nil {
		return false
	}
	if _, ok := model.(*schema.Schema); ok {
		return false
	}
	t := reflect.TypeOf(model)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Kind() == reflect.Struct
}

// New parses model's GORM metadata and builds an adapter around it. Rules,
// choices and default factories declared on the model are resolved against
// its fields here, so a rule naming an unknown field fails fast.
func New(model any, opts ...Option) (*Adapter, error) {
	if !Match(model) {
		return nil, fmt.Errorf("gormbind: model %T is not a struct", model)
	}
	namer := gormschema.NamingStrategy{IdentifierMaxLength: 64}
	gs, err := gormschema.Parse(model, parseCache, namer)
	if err != nil {
		return nil, fmt.Errorf("gormbind: parse %T: %w", model, err)
	}
	a := &Adapter{
		model: model,
		gs:    gs,
		log:   zerolog.Nop(),
		namer: namer,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.indexRelations()
	if err := a.indexRules(); err != nil {
		return nil, err
	}
	return a, nil
}

// Model returns the wrapped model value.
func (a *Adapter) Model() any { return a.model }

// Name returns the model's struct name.
func (a *Adapter) Name() string { return a.gs.Name }

// Field resolves name to a handle. Both column names and Go field names are
// accepted; belongs-to and many-to-many relations resolve under their
// column-style name ("group" for a Group field). Nil means the model has no
// such field.
func (a *Adapter) Field(name string) schema.FieldHandle {
	if h := a.handle(name); h != nil {
		return h
	}
	return nil
}

func (a *Adapter) handle(name string) *fieldHandle {
	if rel, ok := a.rels[name]; ok {
		return a.relHandle(name, rel)
	}
	gf := a.gs.LookUpField(name)
	if gf == nil {
		return nil
	}
	if gf.DBName == "" {
		// Relation struct field referenced by its Go name.
		if rel, ok := a.rels[a.columnName(gf.Name)]; ok {
			return a.relHandle(a.columnName(gf.Name), rel)
		}
		return nil
	}
	return &fieldHandle{
		name:    gf.DBName,
		gf:      gf,
		sb:      parseTag(gf.Tag),
		rules:   a.rules[gf.DBName],
		choices: a.choices[gf.DBName],
		defFn:   a.defaults[gf.DBName],
	}
}

func (a *Adapter) relHandle(name string, rel *gormschema.Relationship) *fieldHandle {
	h := &fieldHandle{
		name:    name,
		rel:     rel,
		sb:      parseTag(rel.Field.Tag),
		rules:   a.rules[name],
		choices: a.choices[name],
		defFn:   a.defaults[name],
	}
	if rel.Type == gormschema.BelongsTo {
		h.gf = ownForeignKey(rel)
	}
	return h
}

// own narrows a handle back to this adapter's concrete type. Handles from
// other adapters read as absent.
func (a *Adapter) own(h schema.FieldHandle) *fieldHandle {
	fh, _ := h.(*fieldHandle)
	return fh
}

func (a *Adapter) columnName(structName string) string {
	return a.namer.ColumnName(a.gs.Table, structName)
}

func (a *Adapter) indexRelations() {
	a.rels = make(map[string]*gormschema.Relationship)
	a.fkCols = make(map[string]bool)
	for _, rel := range a.gs.Relationships.BelongsTo {
		a.rels[a.columnName(rel.Name)] = rel
		if fk := ownForeignKey(rel); fk != nil {
			a.fkCols[fk.DBName] = true
		}
	}
	for _, rel := range a.gs.Relationships.Many2Many {
		a.rels[a.columnName(rel.Name)] = rel
	}
}

func (a *Adapter) indexRules() error {
	if src, ok := a.model.(rule.FieldRules); ok {
		a.rules = make(map[string][]rule.Rule)
		for name, rs := range src.FieldRules() {
			resolved, err := a.resolveName(name)
			if err != nil {
				return err
			}
			a.rules[resolved] = rs
		}
	}
	if src, ok := a.model.(rule.FieldChoices); ok {
		a.choices = make(map[string][]rule.Choice)
		for name, cs := range src.FieldChoices() {
			resolved, err := a.resolveName(name)
			if err != nil {
				return err
			}
			a.choices[resolved] = cs
		}
	}
	if src, ok := a.model.(rule.FieldDefaults); ok {
		a.defaults = make(map[string]func() any)
		for name, fn := range src.FieldDefaults() {
			resolved, err := a.resolveName(name)
			if err != nil {
				return err
			}
			a.defaults[resolved] = fn
		}
	}
	return nil
}

// resolveName maps a rule map key, Go field name or column name alike, to
// the canonical column-style name handles use.
func (a *Adapter) resolveName(name string) (string, error) {
	if _, ok := a.rels[name]; ok {
		return name, nil
	}
	if gf := a.gs.LookUpField(name); gf != nil {
		if gf.DBName != "" {
			return gf.DBName, nil
		}
		if cn := a.columnName(gf.Name); a.rels[cn] != nil {
			return cn, nil
		}
	}
	return "", fmt.Errorf("gormbind: %s declares rules for unknown field %q", a.gs.Name, name)
}

// ownForeignKey returns the foreign key column a belongs-to relation stores
// on its own table.
func ownForeignKey(rel *gormschema.Relationship) *gormschema.Field {
	for _, ref := range rel.References {
		if !ref.OwnPrimaryKey && ref.ForeignKey != nil {
			return ref.ForeignKey
		}
	}
	return nil
}

// fieldHandle carries everything the getters need for one model field. For
// belongs-to relations gf is the foreign key column; for many-to-many
// relations there is no storage column and gf is nil.
type fieldHandle struct {
	name    string
	gf      *gormschema.Field
	rel     *gormschema.Relationship
	sb      sbTag
	rules   []rule.Rule
	choices []rule.Choice
	defFn   func() any
}

func (h *fieldHandle) FieldName() string { return h.name }

// required reports whether validated input must carry the field.
func (h *fieldHandle) required() bool {
	if h.sb.optional {
		return false
	}
	if h.rel != nil && h.rel.Type == gormschema.Many2Many {
		return true
	}
	gf := h.gf
	if gf == nil {
		return true
	}
	if gf.FieldType.Kind() == reflect.Pointer {
		return false
	}
	if gf.PrimaryKey && gf.AutoIncrement {
		return false
	}
	if gf.HasDefaultValue {
		return false
	}
	if gf.AutoCreateTime != 0 || gf.AutoUpdateTime != 0 {
		return false
	}
	return true
}

// storageNullable reports whether the struct can hold the absence of a
// value, which is what a pointer field does.
func (h *fieldHandle) storageNullable() bool {
	return h.gf != nil && h.gf.FieldType.Kind() == reflect.Pointer
}

// storageString reports whether the struct stores the field as a Go string.
// UUID fields validate as strings but are stored as byte arrays, so they
// stay out of the empty-string handling reserved for real string storage.
func (h *fieldHandle) storageString() bool {
	return h.gf != nil && h.gf.IndirectFieldType.Kind() == reflect.String
}

func (h *fieldHandle) goType() string {
	if h.gf != nil {
		return h.gf.FieldType.String()
	}
	if h.rel != nil && h.rel.Field != nil {
		return h.rel.Field.FieldType.String()
	}
	return "<unknown>"
}

type sbTag struct {
	optional bool
	format   string
}

func parseTag(tag reflect.StructTag) sbTag {
	var out sbTag
	raw, ok := tag.Lookup("sb")
	if !ok {
		return out
	}
	for _, tok := range strings.Split(raw, ",") {
		switch strings.TrimSpace(tok) {
		case "optional":
			out.optional = true
		case "email":
			out.format = schema.FormatEmail
		case "url":
			out.format = schema.FormatURL
		case "uuid":
			out.format = schema.FormatUUID
		case "ip":
			out.format = schema.FormatIP
		case "slug":
			out.format = schema.FormatSlug
		case "file":
			out.format = schema.FormatFile
		}
	}
	return out
}
