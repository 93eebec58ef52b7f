package mapping

import "reflect"

// ValueProvider looks up raw property values by name.
//
// This interface is implemented by the concrete *DictionaryValueProvider type.
type ValueProvider interface {
	// TryGetValue returns the value stored for name. found=false means the
	// property should keep its zero value.
	TryGetValue(name string) (value any, found bool)
}

// Dictionary is a read-only keyed source. Any type implementing it can back a
// DictionaryValueProvider.
type Dictionary interface {
	Lookup(key string) (value any, found bool)
}

// Descriptor is the type-erased view of a Schema.
//
// This interface is implemented by *Schema[T].
type Descriptor interface {
	// Name identifies the schema in logs and errors.
	Name() string

	// Type is the Go type produced by converters built from this schema.
	Type() reflect.Type

	// PropertyNames lists the readable, non-indexed properties in declaration order.
	PropertyNames() []string

	// BuildConverter compiles the schema.
	BuildConverter() (Converter, error)
}

// Converter produces a new object from a ValueProvider.
type Converter interface {
	GetObject(values ValueProvider) (any, error)
}

// ConverterFunc adapts a function to the Converter interface.
type ConverterFunc func(values ValueProvider) (any, error)

// GetObject calls f(values).
func (f ConverterFunc) GetObject(values ValueProvider) (any, error) {
	return f(values)
}

// ConverterBuilder compiles a Descriptor into a Converter. Implementations may
// be expensive; ConverterCache guarantees each type is built at most once.
type ConverterBuilder interface {
	Build(d Descriptor) (Converter, error)
}

// ObjectMapper turns a keyed source into a typed object.
//
// This interface is implemented by *ConverterMapper and *BindingMapper.
type ObjectMapper interface {
	// MapObject builds a new object of d.Type() whose properties are the values
	// visible through (prefix, source). A nil source maps to an object with
	// every property at its zero value.
	MapObject(prefix string, source any, d Descriptor) (any, error)
}
