// Package typeset defines Memris's closed set of storage type codes
// and the converter registry that maps user-level Go values to and
// from those storage representations. Every ColumnStore, Table getter,
// and predicate comparison dispatches on exactly one Code via an
// exhaustive switch — there is no reflection-based type dispatch
// anywhere below the Materializer.
package typeset

import "fmt"

// Code is the closed set of storage type codes a Column can hold.
type Code uint8

const (
	Int8 Code = iota
	Int16
	Int32
	Int64
	Char // u16-char: a single UTF-16-ish code unit, stored as rune/int32
	String
	Float32
	Float64
	Bool
)

func (c Code) String() string {
	switch c {
	case Int8:
		return "i8"
	case Int16:
		return "i16"
	case Int32:
		return "i32"
	case Int64:
		return "i64"
	case Char:
		return "char"
	case String:
		return "string"
	case Float32:
		return "f32"
	case Float64:
		return "f64"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("Code(%d)", uint8(c))
	}
}

// Converter maps a user-level value to and from its storage
// representation for a single Go type. ToStorage must return a value
// assignable to the Column identified by StorageType; FromStorage is
// the inverse.
type Converter struct {
	// GoType names the user-level type this converter handles (e.g.
	// "uuid.UUID", "time.Time", "MyEnum"). Used only as a registry key.
	GoType      string
	StorageType Code
	ToStorage   func(value any) (any, error)
	FromStorage func(stored any) (any, error)
}

// Registry is a collection of Converters keyed by GoType. It is not
// global state: a caller passes one to descriptor.Build, which
// resolves each field's converter from it. The Factory and the Arena
// do not take or hold a Registry.
type Registry struct {
	byGoType map[string]*Converter
}

// NewRegistry creates an empty converter registry.
func NewRegistry() *Registry {
	return &Registry{byGoType: make(map[string]*Converter)}
}

// Register adds or replaces a converter for its GoType.
func (r *Registry) Register(c *Converter) {
	r.byGoType[c.GoType] = c
}

// Lookup returns the converter registered for goType, if any.
func (r *Registry) Lookup(goType string) (*Converter, bool) {
	c, ok := r.byGoType[goType]
	return c, ok
}

// Clone returns a copy of the registry that a caller may extend
// without affecting the original.
func (r *Registry) Clone() *Registry {
	clone := NewRegistry()
	for k, v := range r.byGoType {
		clone.byGoType[k] = v
	}
	return clone
}

// ZeroValue returns the type-appropriate zero value memris substitutes
// when a record's field is nil/absent but the column's storage type is
// non-nullable, per the Materializer's write-path contract.
func ZeroValue(code Code) any {
	switch code {
	case Int8:
		return int8(0)
	case Int16:
		return int16(0)
	case Int32:
		return int32(0)
	case Int64:
		return int64(0)
	case Char:
		return rune(0)
	case String:
		return ""
	case Float32:
		return float32(0)
	case Float64:
		return float64(0)
	case Bool:
		return false
	default:
		return nil
	}
}
