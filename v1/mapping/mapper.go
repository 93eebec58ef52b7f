package mapping

import (
	"fmt"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

// ConverterMapper maps through converters compiled once per schema type.
type ConverterMapper struct {
	cache *ConverterCache
}

// NewConverterMapper returns a mapper backed by cache.
func NewConverterMapper(cache *ConverterCache) (*ConverterMapper, error) {
	if cache == nil {
		return nil, fmt.Errorf("mapping: converter cache is nil: %w", ErrInvalidArgument)
	}
	return &ConverterMapper{cache: cache}, nil
}

func (m *ConverterMapper) MapObject(prefix string, source any, d Descriptor) (any, error) {
	if d == nil {
		return nil, fmt.Errorf("mapping: descriptor is nil: %w", ErrInvalidArgument)
	}
	values, err := valuesFor(source, prefix)
	if err != nil {
		return nil, err
	}
	conv, err := m.cache.GetConverter(d)
	if err != nil {
		return nil, err
	}
	return conv.GetObject(values)
}

// BindingMapper collects the schema's properties visible through (prefix,
// source) and binds them onto a new value with mapstructure. Property names
// must match the target's field names (case-insensitively) or its
// `mapstructure` tags.
type BindingMapper struct{}

// NewBindingMapper returns a BindingMapper.
func NewBindingMapper() *BindingMapper {
	return &BindingMapper{}
}

func (m *BindingMapper) MapObject(prefix string, source any, d Descriptor) (any, error) {
	if d == nil {
		return nil, fmt.Errorf("mapping: descriptor is nil: %w", ErrInvalidArgument)
	}
	values, err := valuesFor(source, prefix)
	if err != nil {
		return nil, err
	}

	input := make(map[string]any)
	for _, name := range d.PropertyNames() {
		if v, ok := values.TryGetValue(name); ok {
			input[name] = v
		}
	}

	target := reflect.New(d.Type())
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target.Interface(),
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			durationHook,
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("mapping: schema %s: %w: %w", d.Name(), ErrMappingFailed, err)
	}
	if err := decoder.Decode(input); err != nil {
		return nil, fmt.Errorf("mapping: schema %s: %w: %w", d.Name(), ErrMappingFailed, err)
	}
	return target.Elem().Interface(), nil
}

// MapObject is the typed form of ObjectMapper.MapObject.
func MapObject[T any](m ObjectMapper, prefix string, source any, schema *Schema[T]) (T, error) {
	var zero T
	if m == nil || schema == nil {
		return zero, fmt.Errorf("mapping: mapper and schema are required: %w", ErrInvalidArgument)
	}
	v, err := m.MapObject(prefix, source, schema)
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("mapping: schema %s produced %T: %w", schema.Name(), v, ErrMappingFailed)
	}
	return typed, nil
}

func valuesFor(source any, prefix string) (*DictionaryValueProvider, error) {
	if source == nil {
		source = map[string]any{}
	}
	return NewDictionaryValueProvider(source, prefix)
}

// durationHook decodes strings into time.Duration with ParseDuration, so bare
// integers are read as seconds.
func durationHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeFor[time.Duration]() {
		return data, nil
	}
	return ParseDuration(reflect.ValueOf(data).String())
}
