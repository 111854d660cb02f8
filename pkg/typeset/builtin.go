package typeset

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultRegistry returns a Registry pre-populated with the common
// conversions most domain models need out of the box: UUID -> string
// and time.Time -> i64 epoch millis. Enum types are not registered;
// EnumConverter builds a converter the caller registers. Decimal types have
// no canonical Go representation, so callers register their own
// converter for whichever decimal type they use, storing it as String.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(uuidConverter())
	r.Register(timeConverter())
	return r
}

func uuidConverter() *Converter {
	return &Converter{
		GoType:      "uuid.UUID",
		StorageType: String,
		ToStorage: func(value any) (any, error) {
			id, ok := value.(uuid.UUID)
			if !ok {
				return nil, fmt.Errorf("uuid converter: expected uuid.UUID, got %T", value)
			}
			return id.String(), nil
		},
		FromStorage: func(stored any) (any, error) {
			s, ok := stored.(string)
			if !ok {
				return nil, fmt.Errorf("uuid converter: expected string, got %T", stored)
			}
			if s == "" {
				return uuid.Nil, nil
			}
			return uuid.Parse(s)
		},
	}
}

func timeConverter() *Converter {
	return &Converter{
		GoType:      "time.Time",
		StorageType: Int64,
		ToStorage: func(value any) (any, error) {
			t, ok := value.(time.Time)
			if !ok {
				return nil, fmt.Errorf("time converter: expected time.Time, got %T", value)
			}
			return t.UnixMilli(), nil
		},
		FromStorage: func(stored any) (any, error) {
			ms, ok := stored.(int64)
			if !ok {
				return nil, fmt.Errorf("time converter: expected int64, got %T", stored)
			}
			return time.UnixMilli(ms).UTC(), nil
		},
	}
}

// EnumConverter builds a converter for a Go enum-like type backed by
// an underlying string or int32 representation. toStr/fromStr convert
// between the enum's storage form and a user callback; Memris never
// reflects on the enum type itself.
func EnumConverter(goType string, asString bool, toStr func(any) (string, error), fromStr func(string) (any, error), toI32 func(any) (int32, error), fromI32 func(int32) (any, error)) *Converter {
	if asString {
		return &Converter{
			GoType:      goType,
			StorageType: String,
			ToStorage: func(value any) (any, error) {
				return toStr(value)
			},
			FromStorage: func(stored any) (any, error) {
				s, ok := stored.(string)
				if !ok {
					return nil, fmt.Errorf("enum converter %s: expected string, got %T", goType, stored)
				}
				return fromStr(s)
			},
		}
	}
	return &Converter{
		GoType:      goType,
		StorageType: Int32,
		ToStorage: func(value any) (any, error) {
			return toI32(value)
		},
		FromStorage: func(stored any) (any, error) {
			i, ok := stored.(int32)
			if !ok {
				return nil, fmt.Errorf("enum converter %s: expected int32, got %T", goType, stored)
			}
			return fromI32(i)
		},
	}
}
