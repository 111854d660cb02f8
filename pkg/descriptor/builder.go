package descriptor

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

// Build reflects over a zero value of a tagged Go struct and produces
// a RecordDescriptor, so the engine is usable without a separate
// code-generation step. RepositoryCore and the Materializer never
// reflect themselves — they only ever see the RecordDescriptor this
// function (or a hand-written equivalent) produces.
//
// Tag syntax, on exported fields only:
//
//	`memris:"column=sku,index=hash"`
//	`memris:"column=id,id"`
//	`memris:"-"` skips the field (transient)
//
// Nested struct fields without a relationship tag are NOT walked —
// Build only resolves flat, directly-persisted fields plus the two
// relationship shapes described below. Anything more exotic (join
// tables with extra columns, composite ids) needs a hand-written
// RecordDescriptor.
//
// Relationship fields add `relationship=many_to_one` (or one_to_one,
// one_to_many, many_to_many) plus `fk=columnName` (for *_ONE),
// `mappedBy=property` (for one_to_many: the child's back-reference
// property) or `joinTable=name` (for many_to_many); the referenced
// type's own descriptor must be supplied via targets.
func Build(sample any, registry *typeset.Registry, targets map[reflect.Type]*RecordDescriptor) (*RecordDescriptor, error) {
	t := reflect.TypeOf(sample)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("descriptor: %s is not a struct", t)
	}

	d := &RecordDescriptor{
		RecordType: t,
		TableName:  t.Name(),
		IDStrategy: Auto,
	}

	pos := 0
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("memris")
		if tag == "-" {
			continue
		}
		opts := parseTag(tag)

		fm := FieldMapping{
			PropertyPath:     f.Name,
			ColumnName:       opts["column"],
			GoType:           f.Type,
			ColumnPosition:   -1,
			RelationshipKind: None,
		}
		if fm.ColumnName == "" {
			fm.ColumnName = f.Name
		}

		if kind, ok := opts["relationship"]; ok {
			if err := buildRelationship(&fm, kind, opts, targets); err != nil {
				return nil, err
			}
			if fm.RelationshipKind == OneToOne || fm.RelationshipKind == ManyToOne {
				fm.ColumnName = fm.ReferencedColumnName
				fm.StorageType = fm.TargetRecord.IDField.StorageType
				fm.ColumnPosition = pos
				pos++
			}
			d.Fields = append(d.Fields, fm)
			continue
		}

		code, conv, err := resolveStorageType(f.Type, registry)
		if err != nil {
			return nil, fmt.Errorf("descriptor: field %s: %w", f.Name, err)
		}
		fm.StorageType = code
		fm.Converter = conv
		fm.ColumnPosition = pos
		pos++

		d.Fields = append(d.Fields, fm)
		if _, isID := opts["id"]; isID {
			idCopy := fm
			d.IDField = &idCopy
			if code == typeset.String {
				d.IDStrategy = UUID
			} else {
				d.IDStrategy = Identity
			}
		}
		if kind, ok := opts["index"]; ok {
			d.Indexes = append(d.Indexes, IndexSpec{ColumnName: fm.ColumnName, Kind: kind})
		}
	}

	for i := range d.Fields {
		if d.IDField != nil && d.Fields[i].PropertyPath == d.IDField.PropertyPath {
			d.IDField = &d.Fields[i]
		}
	}

	return d, nil
}

func buildRelationship(fm *FieldMapping, kind string, opts map[string]string, targets map[reflect.Type]*RecordDescriptor) error {
	switch strings.ToLower(kind) {
	case "one_to_one":
		fm.RelationshipKind = OneToOne
	case "many_to_one":
		fm.RelationshipKind = ManyToOne
	case "one_to_many":
		fm.RelationshipKind = OneToMany
		fm.IsCollection = true
	case "many_to_many":
		fm.RelationshipKind = ManyToMany
		fm.IsCollection = true
	default:
		return fmt.Errorf("descriptor: unknown relationship kind %q", kind)
	}

	elem := fm.GoType
	for elem.Kind() == reflect.Ptr || elem.Kind() == reflect.Slice {
		elem = elem.Elem()
	}
	if target, ok := targets[elem]; ok {
		fm.TargetRecord = target
	} else {
		return fmt.Errorf("descriptor: no target RecordDescriptor registered for %s", elem)
	}

	switch fm.RelationshipKind {
	case OneToOne, ManyToOne:
		fm.ReferencedColumnName = opts["fk"]
		if fm.ReferencedColumnName == "" {
			fm.ReferencedColumnName = fm.PropertyPath + "Id"
		}
		fm.ColumnPosition = -1
	case OneToMany:
		fm.MappedBy = opts["mappedBy"]
		fm.ColumnPosition = -1
	case ManyToMany:
		fm.JoinTable = opts["joinTable"]
		fm.ColumnPosition = -1
	}
	return nil
}

func parseTag(tag string) map[string]string {
	opts := make(map[string]string)
	if tag == "" {
		return opts
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if eq := strings.IndexByte(part, '='); eq >= 0 {
			opts[part[:eq]] = part[eq+1:]
		} else {
			opts[part] = ""
		}
	}
	return opts
}

var (
	int8Kind    = reflect.TypeOf(int8(0)).Kind()
	int16Kind   = reflect.TypeOf(int16(0)).Kind()
	int32Kind   = reflect.TypeOf(int32(0)).Kind()
	int64Kind   = reflect.TypeOf(int64(0)).Kind()
	float32Kind = reflect.TypeOf(float32(0)).Kind()
	float64Kind = reflect.TypeOf(float64(0)).Kind()
	stringKind  = reflect.TypeOf("").Kind()
	boolKind    = reflect.TypeOf(false).Kind()
)

func resolveStorageType(t reflect.Type, registry *typeset.Registry) (typeset.Code, *typeset.Converter, error) {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if registry != nil {
		if conv, ok := registry.Lookup(t.String()); ok {
			return conv.StorageType, conv, nil
		}
	}
	switch t.Kind() {
	case int8Kind:
		return typeset.Int8, nil, nil
	case int16Kind:
		return typeset.Int16, nil, nil
	case int32Kind:
		return typeset.Int32, nil, nil
	case int64Kind, reflect.Int:
		return typeset.Int64, nil, nil
	case float32Kind:
		return typeset.Float32, nil, nil
	case float64Kind:
		return typeset.Float64, nil, nil
	case stringKind:
		return typeset.String, nil, nil
	case boolKind:
		return typeset.Bool, nil, nil
	default:
		return 0, nil, fmt.Errorf("no storage mapping for Go type %s; register a typeset.Converter", t)
	}
}
