package mapping

import (
	"fmt"
	"reflect"
)

// Schema is the explicit property list of T. It stands in for runtime
// discovery of T's readable properties and is what converters are compiled
// from.
//
// Example:
//
//	var EndpointSchema = mapping.NewSchema("EndpointSettings",
//	    mapping.String("QueueName", func(s *EndpointSettings, v string) { s.QueueName = v }),
//	    mapping.OptionalInt("ConsumerLimit", func(s *EndpointSettings, v *int) { s.ConsumerLimit = v }),
//	)
type Schema[T any] struct {
	name   string
	fields []Field[T]
}

// NewSchema declares a schema for T. An empty name falls back to the type name.
func NewSchema[T any](name string, fields ...Field[T]) *Schema[T] {
	if name == "" {
		name = reflect.TypeFor[T]().String()
	}
	return &Schema[T]{name: name, fields: append([]Field[T](nil), fields...)}
}

// Name returns the schema name.
func (s *Schema[T]) Name() string {
	return s.name
}

// Type returns the reflect.Type of T.
func (s *Schema[T]) Type() reflect.Type {
	return reflect.TypeFor[T]()
}

// PropertyNames returns the field names in declaration order.
func (s *Schema[T]) PropertyNames() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.name
	}
	return names
}

// Fields returns a copy of the field list.
func (s *Schema[T]) Fields() []Field[T] {
	return append([]Field[T](nil), s.fields...)
}

// BuildConverter validates the schema and returns a converter producing T
// values. Property names must be unique and non-empty.
func (s *Schema[T]) BuildConverter() (Converter, error) {
	seen := make(map[string]struct{}, len(s.fields))
	for i, f := range s.fields {
		if f.name == "" {
			return nil, fmt.Errorf("mapping: schema %s: field %d has no name: %w", s.name, i, ErrMappingFailed)
		}
		if _, dup := seen[f.name]; dup {
			return nil, fmt.Errorf("mapping: schema %s: duplicate property %q: %w", s.name, f.name, ErrMappingFailed)
		}
		if f.assign == nil {
			return nil, fmt.Errorf("mapping: schema %s: property %q has no accessor: %w", s.name, f.name, ErrMappingFailed)
		}
		seen[f.name] = struct{}{}
	}

	fields := s.Fields()
	return ConverterFunc(func(values ValueProvider) (any, error) {
		return populate(fields, values)
	}), nil
}

// Populate builds a T from values without going through a converter cache.
func (s *Schema[T]) Populate(values ValueProvider) (T, error) {
	return populate(s.fields, values)
}

func populate[T any](fields []Field[T], values ValueProvider) (T, error) {
	var target T
	if values == nil {
		return target, nil
	}
	for _, f := range fields {
		raw, ok := values.TryGetValue(f.name)
		if !ok {
			continue
		}
		if err := f.assign(&target, raw); err != nil {
			var zero T
			return zero, err
		}
	}
	return target, nil
}
