// Package materialize implements the Materializer: the bidirectional
// mapping between user records and column-row storage. A row is built
// or read by walking a descriptor.RecordDescriptor's field mappings in
// order; each field's value is read from its table column by column
// name.
package materialize

import (
	"reflect"

	"github.com/Thejuampi/memris-sub005/pkg/arena"
	"github.com/Thejuampi/memris-sub005/pkg/descriptor"
	"github.com/Thejuampi/memris-sub005/pkg/errs"
	"github.com/Thejuampi/memris-sub005/pkg/table"
	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

// Materializer converts between Table rows and user records for every
// descriptor registered in one Arena.
type Materializer struct {
	arena *arena.Arena
}

// New creates a Materializer bound to a.
func New(a *arena.Arena) *Materializer {
	return &Materializer{arena: a}
}

type cycleKey struct {
	recordType reflect.Type
	id         any
}

// MaterializeRow builds a record instance from row of d's table,
// following relationship fields eagerly and guarding against cyclic
// object graphs.
func (m *Materializer) MaterializeRow(d *descriptor.RecordDescriptor, row int) (any, error) {
	return m.materializeRow(d, row, make(map[cycleKey]any))
}

func (m *Materializer) materializeRow(d *descriptor.RecordDescriptor, row int, seen map[cycleKey]any) (any, error) {
	t := m.arena.GetTable(d)
	if t == nil {
		return nil, errs.NewUnknownPropertyPath(d.RecordType.String(), "<table not created>")
	}

	instance := reflect.New(d.RecordType)
	rv := instance.Elem()

	if d.IDField != nil {
		idVal, err := readColumn(t, *d.IDField, row)
		if err != nil {
			return nil, err
		}
		key := cycleKey{recordType: d.RecordType, id: idVal}
		if existing, ok := seen[key]; ok {
			return existing, nil
		}
		seen[key] = instance.Interface()
	}

	for _, f := range d.Fields {
		switch f.RelationshipKind {
		case descriptor.None:
			if f.ColumnPosition < 0 {
				continue
			}
			v, err := readColumn(t, f, row)
			if err != nil {
				return nil, err
			}
			if err := assignPath(rv, f.PropertyPath, v); err != nil {
				return nil, err
			}
		case descriptor.OneToOne, descriptor.ManyToOne:
			if err := m.materializeToOne(rv, t, row, f, seen); err != nil {
				return nil, err
			}
		case descriptor.OneToMany:
			if err := m.materializeOneToMany(rv, d, row, f, seen); err != nil {
				return nil, err
			}
		case descriptor.ManyToMany:
			if err := m.materializeManyToMany(rv, d, row, f, seen); err != nil {
				return nil, err
			}
		}
	}

	if d.PostLoad != nil {
		if err := d.PostLoad(instance.Interface()); err != nil {
			return nil, err
		}
	}

	return instance.Interface(), nil
}

func (m *Materializer) materializeToOne(rv reflect.Value, t *table.Table, row int, f descriptor.FieldMapping, seen map[cycleKey]any) error {
	target := f.TargetRecord
	fkCol := target.IDField
	rawFK, err := readColumnByName(t, f.ReferencedColumnName, fkCol.StorageType, row)
	if err != nil {
		return err
	}
	if isZeroID(rawFK) {
		return nil
	}
	ids := m.arena.Indexes().Hash(target.TableName, fkCol.ColumnName).Lookup(rawFK)
	if len(ids) == 0 {
		return nil
	}
	targetTable := m.arena.GetTable(target)
	childRow := ids[0].RowIndex(targetTable.PageSize())
	child, err := m.materializeRow(target, childRow, seen)
	if err != nil {
		return err
	}
	return assignPath(rv, f.PropertyPath, reflect.ValueOf(child))
}

func (m *Materializer) materializeOneToMany(rv reflect.Value, d *descriptor.RecordDescriptor, row int, f descriptor.FieldMapping, seen map[cycleKey]any) error {
	target := f.TargetRecord
	backRef := target.Field(f.MappedBy)
	if backRef == nil {
		return errs.NewUnknownPropertyPath(target.RecordType.String(), f.MappedBy)
	}
	parentTable := m.arena.GetTable(d)
	parentID, err := readColumn(parentTable, *d.IDField, row)
	if err != nil {
		return err
	}
	targetTable := m.arena.GetTable(target)
	if targetTable == nil {
		return nil
	}

	sliceType := f.GoType
	out := reflect.MakeSlice(sliceType, 0, 0)
	sel := targetTable.ScanAll()
	for _, id := range sel.IDs() {
		childRow := id.RowIndex(targetTable.PageSize())
		fk, err := readColumnByName(targetTable, backRef.ReferencedColumnName, d.IDField.StorageType, childRow)
		if err != nil {
			return err
		}
		if fk != parentID {
			continue
		}
		child, err := m.materializeRow(target, childRow, seen)
		if err != nil {
			return err
		}
		out = reflect.Append(out, reflect.ValueOf(child))
	}
	rv.FieldByName(f.PropertyPath).Set(out)
	return nil
}

func (m *Materializer) materializeManyToMany(rv reflect.Value, d *descriptor.RecordDescriptor, row int, f descriptor.FieldMapping, seen map[cycleKey]any) error {
	target := f.TargetRecord
	leftCol := d.TableName + "_id"
	rightCol := target.TableName + "_id"
	joinTable, err := m.arena.GetOrCreateRawTable(f.JoinTable, []table.ColumnSpec{
		{Name: leftCol, Code: d.IDField.StorageType},
		{Name: rightCol, Code: target.IDField.StorageType},
	})
	if err != nil {
		return err
	}
	parentTable := m.arena.GetTable(d)
	parentID, err := readColumn(parentTable, *d.IDField, row)
	if err != nil {
		return err
	}
	targetTable := m.arena.GetTable(target)
	if targetTable == nil {
		return nil
	}

	elemType := f.GoType.Elem()
	out := reflect.MakeSlice(f.GoType, 0, 0)
	sel := joinTable.ScanAll()
	for _, id := range sel.IDs() {
		joinRow := id.RowIndex(joinTable.PageSize())
		left, err := readColumnByName(joinTable, leftCol, d.IDField.StorageType, joinRow)
		if err != nil {
			return err
		}
		if left != parentID {
			continue
		}
		rightID, err := readColumnByName(joinTable, rightCol, target.IDField.StorageType, joinRow)
		if err != nil {
			return err
		}
		ids := m.arena.Indexes().Hash(target.TableName, target.IDField.ColumnName).Lookup(rightID)
		for _, childID := range ids {
			childRow := childID.RowIndex(targetTable.PageSize())
			child, err := m.materializeRow(target, childRow, seen)
			if err != nil {
				return err
			}
			cv := reflect.ValueOf(child)
			if elemType.Kind() != reflect.Ptr {
				cv = cv.Elem()
			}
			out = reflect.Append(out, cv)
		}
	}
	rv.FieldByName(f.PropertyPath).Set(out)
	return nil
}

// MaterializeProjection reads only the named top-level persisted
// properties of row into a map, skipping relationship traversal —
// RepositoryCore uses this for projected queries that ask for a few
// columns rather than a whole record.
func (m *Materializer) MaterializeProjection(d *descriptor.RecordDescriptor, row int, paths []string) (map[string]any, error) {
	t := m.arena.GetTable(d)
	if t == nil {
		return nil, errs.NewUnknownPropertyPath(d.RecordType.String(), "<table not created>")
	}
	out := make(map[string]any, len(paths))
	for _, p := range paths {
		f := d.Field(p)
		if f == nil || f.ColumnPosition < 0 {
			continue
		}
		v, err := readColumn(t, *f, row)
		if err != nil {
			return nil, err
		}
		out[p] = v
	}
	return out, nil
}

func isZeroID(v any) bool {
	switch x := v.(type) {
	case int64:
		return x == 0
	case string:
		return x == ""
	default:
		return v == nil
	}
}

// readColumn reads f's column value from row and applies f's
// converter, if any, returning the user-level value. A null value is
// returned as nil without passing through the converter.
func readColumn(t *table.Table, f descriptor.FieldMapping, row int) (any, error) {
	v, err := readColumnByName(t, f.ColumnName, f.StorageType, row)
	if err != nil {
		return nil, err
	}
	if f.Converter != nil && v != nil {
		return f.Converter.FromStorage(v)
	}
	return v, nil
}

func readColumnByName(t *table.Table, column string, code typeset.Code, row int) (any, error) {
	switch code {
	case typeset.Int8:
		return t.GetInt8(column, row)
	case typeset.Int16:
		return t.GetInt16(column, row)
	case typeset.Int32:
		return t.GetInt32(column, row)
	case typeset.Int64:
		return t.GetInt64(column, row)
	case typeset.Char:
		return t.GetChar(column, row)
	case typeset.String:
		v, err := t.GetString(column, row)
		if err != nil {
			return nil, err
		}
		isNull, _ := t.IsNull(column, row)
		if isNull {
			return nil, nil
		}
		return v, nil
	case typeset.Float32:
		return t.GetFloat32(column, row)
	case typeset.Float64:
		return t.GetFloat64(column, row)
	case typeset.Bool:
		return t.GetBool(column, row)
	default:
		return nil, errs.NewTypeMismatch(column, code.String(), "unknown")
	}
}

// assignPath sets the field named by propertyPath on rv, following
// dotted paths by allocating any nil intermediate struct pointers it
// encounters along the way.
func assignPath(rv reflect.Value, propertyPath string, value any) error {
	segs := splitPath(propertyPath)
	cur := rv
	for i, seg := range segs {
		field := cur.FieldByName(seg)
		if !field.IsValid() {
			return errs.NewUnknownPropertyPath(rv.Type().String(), propertyPath)
		}
		if i == len(segs)-1 {
			return setLeaf(field, value)
		}
		if field.Kind() == reflect.Ptr {
			if field.IsNil() {
				if field.Type().Elem().Kind() != reflect.Struct {
					return errs.NewMissingDefaultConstructor(field.Type().Elem().String())
				}
				field.Set(reflect.New(field.Type().Elem()))
			}
			cur = field.Elem()
		} else {
			cur = field
		}
	}
	return nil
}

func setLeaf(field reflect.Value, value any) error {
	if rv, ok := value.(reflect.Value); ok {
		if !rv.IsValid() {
			return nil
		}
		if field.Kind() == reflect.Ptr && rv.Kind() != reflect.Ptr {
			ptr := reflect.New(rv.Type())
			ptr.Elem().Set(rv)
			rv = ptr
		}
		field.Set(rv)
		return nil
	}
	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}
	v := reflect.ValueOf(value)
	target := field.Type()
	if field.Kind() == reflect.Ptr && v.Kind() != reflect.Ptr {
		target = target.Elem()
	}
	if target != v.Type() && v.Type().ConvertibleTo(target) {
		v = v.Convert(target)
	}
	if target != field.Type() {
		ptr := reflect.New(target)
		ptr.Elem().Set(v)
		v = ptr
	}
	field.Set(v)
	return nil
}

func splitPath(propertyPath string) []string {
	var segs []string
	start := 0
	for i := 0; i < len(propertyPath); i++ {
		if propertyPath[i] == '.' {
			segs = append(segs, propertyPath[start:i])
			start = i + 1
		}
	}
	segs = append(segs, propertyPath[start:])
	return segs
}
