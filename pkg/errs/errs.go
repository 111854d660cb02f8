// Package errs defines Memris's error taxonomy: a small set of leaf
// error types, one per failure kind the engine can raise. Each carries
// just enough context (table, column, type, id) to diagnose the
// failure without wrapping a chain — these are terminal errors raised
// directly to the caller, never retried or logged internally.
package errs

import "fmt"

// ArenaClosed is returned by any operation on an Arena after Close.
type ArenaClosed struct {
	ArenaID string
}

func (e *ArenaClosed) Error() string {
	return fmt.Sprintf("arena %s is closed", e.ArenaID)
}

// NewArenaClosed builds an ArenaClosed error for the given arena id.
func NewArenaClosed(arenaID string) *ArenaClosed {
	return &ArenaClosed{ArenaID: arenaID}
}

// UnknownColumn is returned when a predicate or getter names a column
// that does not exist on the table.
type UnknownColumn struct {
	TableName  string
	ColumnName string
}

func (e *UnknownColumn) Error() string {
	return fmt.Sprintf("unknown column %q on table %q", e.ColumnName, e.TableName)
}

func NewUnknownColumn(tableName, columnName string) *UnknownColumn {
	return &UnknownColumn{TableName: tableName, ColumnName: columnName}
}

// UnknownPropertyPath is returned when the materializer is asked to
// resolve a field path absent from the record descriptor.
type UnknownPropertyPath struct {
	RecordType   string
	PropertyPath string
}

func (e *UnknownPropertyPath) Error() string {
	return fmt.Sprintf("unknown property path %q on record %s", e.PropertyPath, e.RecordType)
}

func NewUnknownPropertyPath(recordType, propertyPath string) *UnknownPropertyPath {
	return &UnknownPropertyPath{RecordType: recordType, PropertyPath: propertyPath}
}

// TypeMismatch is returned when a value's type is incompatible with a
// column's storage type code, in either a getter, a setter, or a
// predicate comparison.
type TypeMismatch struct {
	ColumnName string
	Expected   string
	Got        string
}

func (e *TypeMismatch) Error() string {
	return fmt.Sprintf("type mismatch on column %q: expected %s, got %s", e.ColumnName, e.Expected, e.Got)
}

func NewTypeMismatch(columnName, expected, got string) *TypeMismatch {
	return &TypeMismatch{ColumnName: columnName, Expected: expected, Got: got}
}

// MissingDefaultConstructor is returned when the materializer cannot
// allocate a nested record because an intermediate type in a
// multi-segment path has no usable zero value / no-arg constructor
// equivalent (a nil pointer type with no element type to allocate, or
// a non-struct).
type MissingDefaultConstructor struct {
	TypeName string
}

func (e *MissingDefaultConstructor) Error() string {
	return fmt.Sprintf("type %s has no usable default constructor", e.TypeName)
}

func NewMissingDefaultConstructor(typeName string) *MissingDefaultConstructor {
	return &MissingDefaultConstructor{TypeName: typeName}
}

// MissingId is returned when save is asked to perform an update but
// the descriptor declares no id column.
type MissingId struct {
	RecordType string
}

func (e *MissingId) Error() string {
	return fmt.Sprintf("record %s has no id column", e.RecordType)
}

func NewMissingId(recordType string) *MissingId {
	return &MissingId{RecordType: recordType}
}

// UnsupportedIdType is returned when AUTO id generation is requested
// on a type with no registered converter and no built-in strategy.
type UnsupportedIdType struct {
	TypeName string
}

func (e *UnsupportedIdType) Error() string {
	return fmt.Sprintf("no id generation strategy for type %s", e.TypeName)
}

func NewUnsupportedIdType(typeName string) *UnsupportedIdType {
	return &UnsupportedIdType{TypeName: typeName}
}

// OutOfRange is returned when a row index falls outside [0, length).
type OutOfRange struct {
	Index  int
	Length int
}

func (e *OutOfRange) Error() string {
	return fmt.Sprintf("row index %d out of range [0, %d)", e.Index, e.Length)
}

func NewOutOfRange(index, length int) *OutOfRange {
	return &OutOfRange{Index: index, Length: length}
}

// GeneratorNotFound is returned when a CUSTOM id strategy names an
// unregistered generator.
type GeneratorNotFound struct {
	Name string
}

func (e *GeneratorNotFound) Error() string {
	return fmt.Sprintf("id generator %q is not registered", e.Name)
}

func NewGeneratorNotFound(name string) *GeneratorNotFound {
	return &GeneratorNotFound{Name: name}
}

// InsertFailure is returned when a row insert fails partway through
// conversion, leaving the table unchanged.
type InsertFailure struct {
	TableName string
	Reason    string
}

func (e *InsertFailure) Error() string {
	return fmt.Sprintf("insert into %q failed: %s", e.TableName, e.Reason)
}

func NewInsertFailure(tableName, reason string) *InsertFailure {
	return &InsertFailure{TableName: tableName, Reason: reason}
}
