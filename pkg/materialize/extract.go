package materialize

import (
	"reflect"

	"github.com/Thejuampi/memris-sub005/pkg/descriptor"
	"github.com/Thejuampi/memris-sub005/pkg/errs"
	"github.com/Thejuampi/memris-sub005/pkg/table"
	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

// CascadeSave is supplied by RepositoryCore so ExtractRow can save a
// *_ONE relationship's child before binding its id into the foreign
// key column, without materialize importing repository back.
type CascadeSave func(target *descriptor.RecordDescriptor, child any) (id any, err error)

// PendingRelationship describes a collection relationship ExtractRow
// could not resolve inline — it names the field and its source slice,
// left for RepositoryCore's deferred post-insert pass (it needs the
// parent's own, possibly just-generated, id first).
type PendingRelationship struct {
	Field    descriptor.FieldMapping
	Children reflect.Value
}

// ExtractRow walks d's field mappings in column order and produces the
// row of storage Values RepositoryCore hands to Table.Insert/Update.
// *_ONE relationships are cascaded eagerly via save; collection
// relationships are returned as PendingRelationship for the caller to
// apply once the row (and its id) exist.
func ExtractRow(d *descriptor.RecordDescriptor, record any, save CascadeSave) ([]table.Value, []PendingRelationship, error) {
	rv := reflect.ValueOf(record)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}

	persistent := d.ColumnOrder()
	values := make([]table.Value, len(persistent))
	var pending []PendingRelationship

	for _, f := range d.Fields {
		switch f.RelationshipKind {
		case descriptor.None:
			if f.ColumnPosition < 0 {
				continue
			}
			v, err := extractLeaf(rv, f)
			if err != nil {
				return nil, nil, err
			}
			values[f.ColumnPosition] = v
		case descriptor.OneToOne, descriptor.ManyToOne:
			v, err := extractToOne(rv, f, save)
			if err != nil {
				return nil, nil, err
			}
			values[f.ColumnPosition] = v
		case descriptor.OneToMany, descriptor.ManyToMany:
			fv, err := fieldByPath(rv, f.PropertyPath)
			if err != nil {
				return nil, nil, err
			}
			if fv.IsValid() && fv.Len() > 0 {
				pending = append(pending, PendingRelationship{Field: f, Children: fv})
			}
		}
	}

	return values, pending, nil
}

func extractLeaf(rv reflect.Value, f descriptor.FieldMapping) (table.Value, error) {
	fv, err := fieldByPath(rv, f.PropertyPath)
	if err != nil {
		return table.Value{}, err
	}

	var raw any
	isNull := false
	if fv.Kind() == reflect.Ptr {
		if fv.IsNil() {
			isNull = true
		} else {
			raw = fv.Elem().Interface()
		}
	} else {
		raw = fv.Interface()
	}

	if f.Converter != nil && !isNull {
		converted, err := f.Converter.ToStorage(raw)
		if err != nil {
			return table.Value{}, err
		}
		raw = converted
	}

	if isNull {
		return table.Value{IsNull: f.StorageType == typeset.String, V: typeset.ZeroValue(f.StorageType)}, nil
	}
	return table.Value{V: raw}, nil
}

func extractToOne(rv reflect.Value, f descriptor.FieldMapping, save CascadeSave) (table.Value, error) {
	fv, err := fieldByPath(rv, f.PropertyPath)
	if err != nil {
		return table.Value{}, err
	}
	if fv.Kind() == reflect.Ptr && fv.IsNil() {
		return table.Value{IsNull: f.StorageType == typeset.String, V: typeset.ZeroValue(f.StorageType)}, nil
	}
	child := fv.Interface()
	id, err := save(f.TargetRecord, child)
	if err != nil {
		return table.Value{}, err
	}
	return table.Value{V: id}, nil
}

func fieldByPath(rv reflect.Value, propertyPath string) (reflect.Value, error) {
	cur := rv
	for _, seg := range splitPath(propertyPath) {
		if cur.Kind() == reflect.Ptr {
			if cur.IsNil() {
				return reflect.Value{}, nil
			}
			cur = cur.Elem()
		}
		cur = cur.FieldByName(seg)
		if !cur.IsValid() {
			return reflect.Value{}, errs.NewUnknownPropertyPath(rv.Type().String(), propertyPath)
		}
	}
	return cur, nil
}
