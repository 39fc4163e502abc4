package gormbind

import (
	"context"
	"fmt"
	"reflect"

	gormschema "gorm.io/gorm/schema"

	"github.com/goliatone/go-schemabind/pkg/schema"
)

// Materialize turns a validated object into a model value, returned as a
// pointer to the model struct. A primary key in the data loads the existing
// row when a connection is configured; the remaining values overwrite its
// columns. Belongs-to fields accept either a key, which lands on the
// foreign key column, or a nested validated object, which materializes
// through its own source model. Many-to-many values are left for the
// caller to associate, and nil values leave the struct's zero value in
// place.
func (a *Adapter) Materialize(ctx context.Context, obj *schema.Object) (any, error) {
	rv, err := a.instance(ctx, obj)
	if err != nil {
		return nil, err
	}
	elem := rv.Elem()
	var pkName string
	if pf := a.gs.PrioritizedPrimaryField; pf != nil {
		pkName = pf.DBName
	}
	for _, name := range obj.Schema().FieldNames() {
		value, ok := obj.Get(name)
		if !ok || name == pkName {
			continue
		}
		if rel, ok := a.rels[name]; ok {
			if rel.Type == gormschema.Many2Many {
				continue
			}
			if err := a.setBelongsTo(ctx, elem, rel, value); err != nil {
				return nil, err
			}
			continue
		}
		if _, ok := value.(*schema.Object); ok {
			return nil, fmt.Errorf("gormbind: nested objects are only supported on belongs-to fields, got one for %s.%s", a.gs.Name, name)
		}
		gf := a.gs.LookUpField(name)
		if gf == nil || value == nil {
			continue
		}
		if err := gf.Set(ctx, elem, value); err != nil {
			return nil, fmt.Errorf("gormbind: set %s.%s: %w", a.gs.Name, name, err)
		}
	}
	return rv.Interface(), nil
}

// instance builds the model value to fill: a fetched row when the data
// carries a primary key and a connection exists, otherwise a fresh struct.
func (a *Adapter) instance(ctx context.Context, obj *schema.Object) (reflect.Value, error) {
	rv := reflect.New(a.gs.ModelType)
	pf := a.gs.PrioritizedPrimaryField
	if pf == nil {
		return rv, nil
	}
	pkVal, ok := obj.Get(pf.DBName)
	if !ok || pkVal == nil {
		return rv, nil
	}
	if a.db == nil {
		if err := pf.Set(ctx, rv.Elem(), pkVal); err != nil {
			return reflect.Value{}, fmt.Errorf("gormbind: set %s.%s: %w", a.gs.Name, pf.DBName, err)
		}
		return rv, nil
	}
	if err := a.db.WithContext(ctx).First(rv.Interface(), pkVal).Error; err != nil {
		return reflect.Value{}, fmt.Errorf("gormbind: fetch %s %v: %w", a.gs.Name, pkVal, err)
	}
	return rv, nil
}

func (a *Adapter) setBelongsTo(ctx context.Context, elem reflect.Value, rel *gormschema.Relationship, value any) error {
	if value == nil {
		return nil
	}
	if nested, ok := value.(*schema.Object); ok {
		prov, ok := nested.Schema().Provenance()
		if !ok || prov.Adapter == nil {
			return fmt.Errorf("gormbind: nested object %s has no source model to materialize through", nested.Schema().Name())
		}
		inst, err := prov.Adapter.Materialize(ctx, nested)
		if err != nil {
			return err
		}
		if err := rel.Field.Set(ctx, elem, inst); err != nil {
			return fmt.Errorf("gormbind: set %s.%s: %w", a.gs.Name, rel.Name, err)
		}
		return nil
	}
	fk := ownForeignKey(rel)
	if fk == nil {
		return nil
	}
	if err := fk.Set(ctx, elem, value); err != nil {
		return fmt.Errorf("gormbind: set %s.%s: %w", a.gs.Name, fk.DBName, err)
	}
	return nil
}
