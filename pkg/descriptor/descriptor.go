// Package descriptor defines RecordDescriptor, FieldMapping, and
// ColumnAccessPlan — the precompiled metadata RepositoryCore and the
// Materializer consume. The metadata can be written by hand or
// produced by Build, the package's reflection-based default builder
// for memris-tagged Go structs.
package descriptor

import (
	"reflect"

	"github.com/Thejuampi/memris-sub005/pkg/typeset"
)

// RelationshipKind classifies how a FieldMapping's value is stored.
type RelationshipKind string

const (
	None       RelationshipKind = "NONE"
	OneToOne   RelationshipKind = "ONE_TO_ONE"
	ManyToOne  RelationshipKind = "MANY_TO_ONE"
	OneToMany  RelationshipKind = "ONE_TO_MANY"
	ManyToMany RelationshipKind = "MANY_TO_MANY"
)

// IDStrategy selects how a save generates a missing id.
type IDStrategy string

const (
	Auto     IDStrategy = "AUTO"
	Identity IDStrategy = "IDENTITY"
	UUID     IDStrategy = "UUID"
	Custom   IDStrategy = "CUSTOM"
)

// FieldMapping describes one field of a record type and how it maps
// onto a storage column (or a relationship to another record type).
type FieldMapping struct {
	PropertyPath         string
	ColumnName           string
	GoType               reflect.Type
	StorageType          typeset.Code
	ColumnPosition       int // -1: not persisted directly (transient, collection, mapped-by)
	RelationshipKind     RelationshipKind
	TargetRecord         *RecordDescriptor
	JoinTable            string
	ReferencedColumnName string
	MappedBy             string
	IsCollection         bool
	Converter            *typeset.Converter
}

// ColumnAccessPlan is the precompiled path the Materializer walks to
// read or write one property, including intermediate nested-record
// segments for dotted paths like "profile.address.city".
type ColumnAccessPlan struct {
	PropertyPath string
	ColumnIndex  int
	TypeCode     typeset.Code
	Segments     []string
}

// Callback is an optional lifecycle hook invoked by RepositoryCore or
// the Materializer at a documented point; nil means no hook declared.
type Callback func(record any) error

// IndexSpec names one secondary index Build (or a hand-written
// descriptor) wants the Arena to create alongside the table.
type IndexSpec struct {
	ColumnName string
	Kind       string // "hash", "range" or "text"
}

// RecordDescriptor is the immutable, precompiled metadata for one
// user record type.
type RecordDescriptor struct {
	RecordType      reflect.Type
	TableName       string
	Fields          []FieldMapping
	AccessPlans     []ColumnAccessPlan
	IDField         *FieldMapping
	IDStrategy      IDStrategy
	IDGeneratorName string // only meaningful when IDStrategy == Custom
	Indexes         []IndexSpec
	PrePersist      Callback
	PreUpdate       Callback
	PostLoad        Callback
}

// Field returns the mapping for propertyPath, or nil.
func (d *RecordDescriptor) Field(propertyPath string) *FieldMapping {
	for i := range d.Fields {
		if d.Fields[i].PropertyPath == propertyPath {
			return &d.Fields[i]
		}
	}
	return nil
}

// FieldByColumn returns the mapping whose ColumnName is columnName, or
// nil.
func (d *RecordDescriptor) FieldByColumn(columnName string) *FieldMapping {
	for i := range d.Fields {
		if d.Fields[i].ColumnName == columnName {
			return &d.Fields[i]
		}
	}
	return nil
}

// ColumnOrder returns the field mappings a Table is built from: every
// persistent (ColumnPosition >= 0) field, in column order.
func (d *RecordDescriptor) ColumnOrder() []FieldMapping {
	persistent := make([]FieldMapping, 0, len(d.Fields))
	for _, f := range d.Fields {
		if f.ColumnPosition >= 0 {
			persistent = append(persistent, f)
		}
	}
	return persistent
}
