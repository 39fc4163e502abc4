package gormbind

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	gormschema "gorm.io/gorm/schema"

	"github.com/goliatone/go-schemabind/pkg/rule"
	"github.com/goliatone/go-schemabind/pkg/schema"
)

// FieldPreCheck rejects merges that would loosen requiredness: a field the
// model requires must not pick up a default from the schema side, or
// validation would wave through records the model cannot hold.
func (a *Adapter) FieldPreCheck(name string, incoming schema.FieldSpec) error {
	fh := a.handle(name)
	if fh == nil {
		return nil
	}
	if fh.required() && !incoming.Required() {
		return fmt.Errorf("gormbind: field %s.%s is required on the model but has a default in the schema", a.gs.Name, name)
	}
	return nil
}

// RunFieldRules applies the model's declared rules to one value. A nil
// value on a string field stored without a pointer normalizes to the empty
// string first, and empty values skip the rules entirely; requiredness is
// the schema's job. Every failing rule contributes one record to the
// returned error.
func (a *Adapter) RunFieldRules(ctx context.Context, h schema.FieldHandle, value any) (any, error) {
	fh := a.own(h)
	if fh == nil {
		return value, nil
	}
	if value == nil && fh.storageString() && !fh.storageNullable() {
		value = ""
	}
	if rule.IsEmpty(value) {
		return value, nil
	}
	var recs []schema.Error
	for _, r := range fh.rules {
		if err := r.Validate(value); err != nil {
			recs = append(recs, ruleRecord(r, err))
		}
	}
	if len(recs) > 0 {
		return value, schema.NewValidationError(a.gs.Name, recs...)
	}
	return value, nil
}

// RunModelRules checks uniqueness for unique columns and runs the model's
// own whole-record rules, collecting every violation into one error.
func (a *Adapter) RunModelRules(ctx context.Context, obj *schema.Object) (*schema.Object, error) {
	recs, err := a.checkUnique(ctx, obj)
	if err != nil {
		return nil, err
	}
	if mv, ok := a.model.(rule.ModelValidator); ok {
		if err := mv.ValidateModel(ctx, obj.Values()); err != nil {
			if verr := a.Convert(err); verr != nil {
				recs = append(recs, verr.Errors...)
			}
		}
	}
	if len(recs) > 0 {
		return nil, schema.NewValidationError(a.gs.Name, recs...)
	}
	return obj, nil
}

// checkUnique counts existing rows for each unique column's value, leaving
// out the record's own row when it carries a primary key. Without a
// connection the checks are skipped.
func (a *Adapter) checkUnique(ctx context.Context, obj *schema.Object) ([]schema.Error, error) {
	if a.db == nil {
		a.log.Debug().Str("model", a.gs.Name).Msg("no db configured, skipping uniqueness checks")
		return nil, nil
	}
	pkName, pkVal := a.primaryKey(obj)
	var out []schema.Error
	for _, gf := range a.gs.Fields {
		if gf.DBName == "" || gf.PrimaryKey || !isUnique(gf) {
			continue
		}
		v, ok := obj.Get(gf.DBName)
		if !ok || rule.IsEmpty(v) {
			continue
		}
		tx := a.db.WithContext(ctx).Model(a.model).Where(gf.DBName+" = ?", v)
		if pkVal != nil {
			tx = tx.Where(pkName+" <> ?", pkVal)
		}
		var n int64
		if err := tx.Count(&n).Error; err != nil {
			return nil, fmt.Errorf("gormbind: unique check %s.%s: %w", a.gs.Name, gf.DBName, err)
		}
		if n > 0 {
			out = append(out, schema.Error{
				Code:    schema.CodeUnique,
				Message: fmt.Sprintf("%s with this %s already exists.", a.gs.Name, label(gf.DBName)),
				Loc:     []string{gf.DBName},
				Input:   v,
			})
		}
	}
	return out, nil
}

// primaryKey returns the primary key column and its value in obj, nil when
// the record is new.
func (a *Adapter) primaryKey(obj *schema.Object) (string, any) {
	pf := a.gs.PrioritizedPrimaryField
	if pf == nil {
		return "", nil
	}
	v, ok := obj.Get(pf.DBName)
	if !ok || v == nil {
		return pf.DBName, nil
	}
	return pf.DBName, v
}

// Convert translates rule failures into the canonical error shape. Field
// errors blame their field; a bare rule error or plain error blames the
// whole record.
func (a *Adapter) Convert(err error) *schema.ValidationError {
	if err == nil {
		return nil
	}
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return verr
	}
	var fe rule.FieldErrors
	if errors.As(err, &fe) {
		fields := make([]string, 0, len(fe))
		for name := range fe {
			fields = append(fields, name)
		}
		sort.Strings(fields)
		var recs []schema.Error
		for _, name := range fields {
			for _, re := range fe[name] {
				rec := errorRecord(re)
				rec.Loc = []string{name}
				recs = append(recs, rec)
			}
		}
		return schema.NewValidationError(a.gs.Name, recs...)
	}
	var re *rule.Error
	if errors.As(err, &re) {
		return schema.NewValidationError(a.gs.Name, errorRecord(re))
	}
	return schema.NewValidationError(a.gs.Name, schema.Error{
		Code:    schema.CodeValueError,
		Message: err.Error(),
	})
}

// MatchesError reports whether err carries rule failures this adapter can
// convert.
func (a *Adapter) MatchesError(err error) bool {
	var re *rule.Error
	var fe rule.FieldErrors
	return errors.As(err, &re) || errors.As(err, &fe)
}

// ruleRecord builds the error record for one failing rule. Rules with a
// constraint counterpart report under the same code the constraint would
// use, so callers cannot tell which layer caught the value.
func ruleRecord(r rule.Rule, err error) schema.Error {
	rec := schema.Error{Code: schema.CodeValueError, Message: err.Error()}
	var re *rule.Error
	if errors.As(err, &re) {
		rec = errorRecord(re)
	}
	if code := liftCode(r); code != "" {
		rec.Code = code
	}
	return rec
}

func errorRecord(re *rule.Error) schema.Error {
	rec := schema.Error{Code: schema.CodeValueError, Message: re.Message}
	if re.Code != "" {
		rec.Code = re.Code
	}
	if v, ok := re.Params["value"]; ok {
		rec.Input = v
	}
	return rec
}

func liftCode(r rule.Rule) string {
	switch r.(type) {
	case rule.EmailRule:
		return schema.CodeValueError
	case rule.MinLenRule:
		return schema.CodeTooShort
	case rule.MaxLenRule:
		return schema.CodeTooLong
	case rule.StepRule:
		return schema.CodeMultipleOf
	}
	return ""
}

// isUnique covers both spellings GORM understands.
func isUnique(gf *gormschema.Field) bool {
	if gf.Unique {
		return true
	}
	_, ok := gf.TagSettings["UNIQUEINDEX"]
	return ok
}

// label renders a column name the way a human would say it.
func label(name string) string {
	out := strings.ReplaceAll(name, "_", " ")
	if out == "" {
		return out
	}
	return strings.ToUpper(out[:1]) + out[1:]
}
