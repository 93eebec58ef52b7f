package settings

import (
	"fmt"
	"sync"

	"github.com/Aleph-Alpha/bushost/v1/configuration"
	"github.com/Aleph-Alpha/bushost/v1/mapping"
)

// ConfigurationProvider reads T from a configuration.Provider through an
// ObjectMapper. Settings are found when at least one of T's properties
// resolves under the prefix.
type ConfigurationProvider[T any] struct {
	source configuration.Provider
	mapper mapping.ObjectMapper
	schema *mapping.Schema[T]
}

// NewConfigurationProvider returns a provider for T.
func NewConfigurationProvider[T any](source configuration.Provider, mapper mapping.ObjectMapper, schema *mapping.Schema[T]) (*ConfigurationProvider[T], error) {
	if source == nil || mapper == nil || schema == nil {
		return nil, fmt.Errorf("settings: source, mapper and schema are required: %w", ErrInvalidArgument)
	}
	return &ConfigurationProvider[T]{source: source, mapper: mapper, schema: schema}, nil
}

func (p *ConfigurationProvider[T]) TryGetSettings() (T, bool, error) {
	return p.TryGetSettingsWithPrefix("")
}

func (p *ConfigurationProvider[T]) TryGetSettingsWithPrefix(prefix string) (T, bool, error) {
	var zero T

	view, err := NewPropertyKeyDictionary(p.source, p.schema, prefix)
	if err != nil {
		return zero, false, err
	}
	if view.Count() == 0 {
		return zero, false, nil
	}

	settings, err := mapping.MapObject(p.mapper, prefix, view, p.schema)
	if err != nil {
		return zero, false, fmt.Errorf("settings: mapping %s: %w", p.schema.Name(), err)
	}
	return settings, true, nil
}

// Options is a lazily configured settings snapshot. The configure functions
// run once, on the first call to Value.
type Options[T any] struct {
	once      sync.Once
	configure []func(*T)
	value     T
}

// NewOptions returns options configured by the given functions, in order.
func NewOptions[T any](configure ...func(*T)) *Options[T] {
	return &Options[T]{configure: configure}
}

// Value returns the configured snapshot.
func (o *Options[T]) Value() T {
	o.once.Do(func() {
		for _, fn := range o.configure {
			if fn != nil {
				fn(&o.value)
			}
		}
		o.configure = nil
	})
	return o.value
}

// OptionsProvider serves settings from Options. It always reports found.
type OptionsProvider[T any] struct {
	options *Options[T]
}

// NewOptionsProvider returns a provider over options.
func NewOptionsProvider[T any](options *Options[T]) (*OptionsProvider[T], error) {
	if options == nil {
		return nil, fmt.Errorf("settings: options are required: %w", ErrInvalidArgument)
	}
	return &OptionsProvider[T]{options: options}, nil
}

func (p *OptionsProvider[T]) TryGetSettings() (T, bool, error) {
	return p.options.Value(), true, nil
}

// TryGetSettingsWithPrefix ignores prefix: options have no notion of key
// prefixes, so every prefix returns the same snapshot.
func (p *OptionsProvider[T]) TryGetSettingsWithPrefix(string) (T, bool, error) {
	return p.TryGetSettings()
}
