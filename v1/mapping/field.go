package mapping

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// Field describes one property of T: its name, its value type and how to
// assign a raw value to it.
type Field[T any] struct {
	name      string
	valueType reflect.Type
	assign    func(target *T, raw any) error
}

// Name returns the property name.
func (f Field[T]) Name() string {
	return f.name
}

// ValueType returns the declared type of the property.
func (f Field[T]) ValueType() reflect.Type {
	return f.valueType
}

// Assign converts raw and stores it on target.
func (f Field[T]) Assign(target *T, raw any) error {
	if f.assign == nil {
		return fmt.Errorf("mapping: field %q has no accessor: %w", f.name, ErrMappingFailed)
	}
	return f.assign(target, raw)
}

// Value declares a property of type V. The accessor accepts a V as is; a string
// is converted with parse when parse is not nil.
func Value[T, V any](name string, set func(*T, V), parse func(string) (V, error)) Field[T] {
	return Field[T]{
		name:      name,
		valueType: reflect.TypeFor[V](),
		assign: func(target *T, raw any) error {
			switch v := raw.(type) {
			case V:
				set(target, v)
				return nil
			case string:
				if parse == nil {
					break
				}
				parsed, err := parse(v)
				if err != nil {
					return fmt.Errorf("mapping: property %q: %w: %w", name, ErrMappingFailed, err)
				}
				set(target, parsed)
				return nil
			}
			return fmt.Errorf("mapping: property %q: cannot assign %T to %s: %w", name, raw, reflect.TypeFor[V](), ErrMappingFailed)
		},
	}
}

// Optional declares a property of type *V. The accessor accepts a V, a *V or a
// string converted with parse.
func Optional[T, V any](name string, set func(*T, *V), parse func(string) (V, error)) Field[T] {
	return Field[T]{
		name:      name,
		valueType: reflect.TypeFor[*V](),
		assign: func(target *T, raw any) error {
			switch v := raw.(type) {
			case *V:
				set(target, v)
				return nil
			case V:
				set(target, &v)
				return nil
			case string:
				if parse == nil {
					break
				}
				parsed, err := parse(v)
				if err != nil {
					return fmt.Errorf("mapping: property %q: %w: %w", name, ErrMappingFailed, err)
				}
				set(target, &parsed)
				return nil
			}
			return fmt.Errorf("mapping: property %q: cannot assign %T to %s: %w", name, raw, reflect.TypeFor[*V](), ErrMappingFailed)
		},
	}
}

// String declares a string property; strings are taken as is.
func String[T any](name string, set func(*T, string)) Field[T] {
	return Value(name, set, func(s string) (string, error) { return s, nil })
}

// Int declares an int property parsed from decimal strings.
func Int[T any](name string, set func(*T, int)) Field[T] {
	return Value(name, set, parseInt)
}

// OptionalInt declares an *int property; a missing value leaves it nil.
func OptionalInt[T any](name string, set func(*T, *int)) Field[T] {
	return Optional(name, set, parseInt)
}

// Uint16 declares a uint16 property such as a port number.
func Uint16[T any](name string, set func(*T, uint16)) Field[T] {
	return Value(name, set, parseUint16)
}

// OptionalUint16 declares a *uint16 property; a missing value leaves it nil.
func OptionalUint16[T any](name string, set func(*T, *uint16)) Field[T] {
	return Optional(name, set, parseUint16)
}

// Bool declares a bool property parsed with strconv.ParseBool.
func Bool[T any](name string, set func(*T, bool)) Field[T] {
	return Value(name, set, func(s string) (bool, error) {
		return strconv.ParseBool(strings.TrimSpace(s))
	})
}

// Duration accepts time.Duration values and strings such as "10s" or "1m30s".
// A bare integer string is a number of seconds.
func Duration[T any](name string, set func(*T, time.Duration)) Field[T] {
	return Value(name, set, ParseDuration)
}

// ParseDuration parses s as a whole number of seconds or, failing that, with
// time.ParseDuration.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// StringSlice accepts []string values and comma separated strings. Blank
// entries are dropped.
func StringSlice[T any](name string, set func(*T, []string)) Field[T] {
	return Value(name, set, func(s string) ([]string, error) {
		var out []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil
	})
}

func parseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func parseUint16(s string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
