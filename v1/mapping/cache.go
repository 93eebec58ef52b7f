package mapping

import (
	"fmt"
	"reflect"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// DefaultBuilder compiles a Descriptor by calling its BuildConverter.
type DefaultBuilder struct{}

// Build validates d and returns its converter.
func (DefaultBuilder) Build(d Descriptor) (Converter, error) {
	if d == nil {
		return nil, fmt.Errorf("mapping: descriptor is nil: %w", ErrInvalidArgument)
	}
	c, err := d.BuildConverter()
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("mapping: schema %s produced no converter: %w", d.Name(), ErrMappingFailed)
	}
	return c, nil
}

// ConverterCache memoizes one Converter per schema. Schemas are told apart by
// descriptor identity, so two schemas declared for the same type get their own
// converters. Concurrent first requests for the same schema share a single
// build; a failed build is not cached and is retried by the next request.
type ConverterCache struct {
	builder    ConverterBuilder
	converters sync.Map // Descriptor -> Converter
	group      singleflight.Group

	mu   sync.Mutex
	keys map[Descriptor]string
}

// NewConverterCache creates a cache over builder.
func NewConverterCache(builder ConverterBuilder) (*ConverterCache, error) {
	if builder == nil {
		return nil, fmt.Errorf("mapping: converter builder is nil: %w", ErrInvalidArgument)
	}
	return &ConverterCache{builder: builder, keys: make(map[Descriptor]string)}, nil
}

// GetConverter returns the converter for d, building it on first use.
// Every caller observes the same converter instance for a given schema.
// Descriptors must be comparable; *Schema[T] is.
func (c *ConverterCache) GetConverter(d Descriptor) (Converter, error) {
	if d == nil {
		return nil, fmt.Errorf("mapping: descriptor is nil: %w", ErrInvalidArgument)
	}
	if !reflect.TypeOf(d).Comparable() {
		return nil, fmt.Errorf("mapping: descriptor %T is not comparable: %w", d, ErrInvalidArgument)
	}
	if conv, ok := c.converters.Load(d); ok {
		return conv.(Converter), nil
	}

	v, err, _ := c.group.Do(c.flightKey(d), func() (any, error) {
		if conv, ok := c.converters.Load(d); ok {
			return conv, nil
		}
		conv, err := c.builder.Build(d)
		if err != nil {
			return nil, err
		}
		actual, _ := c.converters.LoadOrStore(d, conv)
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Converter), nil
}

// Len returns the number of cached converters.
func (c *ConverterCache) Len() int {
	n := 0
	c.converters.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// flightKey hands out one singleflight key per descriptor.
func (c *ConverterCache) flightKey(d Descriptor) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	key, ok := c.keys[d]
	if !ok {
		key = strconv.Itoa(len(c.keys))
		c.keys[d] = key
	}
	return key
}
