package materialize

import (
	"reflect"

	"github.com/Thejuampi/memris-sub005/pkg/descriptor"
)

// GetID reads record's id field, reporting false if d declares no id
// field at all (distinct from a zero-valued id, which GetID still
// returns with ok=true — callers compare against the type's zero value
// themselves to decide insert vs. update).
func GetID(d *descriptor.RecordDescriptor, record any) (any, bool) {
	if d.IDField == nil {
		return nil, false
	}
	rv := reflect.ValueOf(record)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	fv := rv.FieldByName(d.IDField.PropertyPath)
	if !fv.IsValid() {
		return nil, false
	}
	return fv.Interface(), true
}

// SetID writes value into record's id field.
func SetID(d *descriptor.RecordDescriptor, record any, value any) error {
	rv := reflect.ValueOf(record)
	for rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	fv := rv.FieldByName(d.IDField.PropertyPath)
	v := reflect.ValueOf(value)
	if v.Type() != fv.Type() && v.Type().ConvertibleTo(fv.Type()) {
		v = v.Convert(fv.Type())
	}
	fv.Set(v)
	return nil
}

// IsZeroID reports whether value is the zero value for its type, the
// signal save uses to choose id generation over update.
func IsZeroID(value any) bool {
	if value == nil {
		return true
	}
	rv := reflect.ValueOf(value)
	return rv.IsZero()
}
