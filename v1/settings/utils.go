package settings

import (
	"fmt"

	"github.com/Aleph-Alpha/bushost/v1/configuration"
	"github.com/Aleph-Alpha/bushost/v1/container"
	"github.com/Aleph-Alpha/bushost/v1/mapping"
)

// Resolver finds the Provider[T] registered in a container for any T, so
// callers can ask for settings without knowing where they come from.
type Resolver struct {
	services container.Resolver
}

// NewResolver returns a Resolver over services.
func NewResolver(services container.Resolver) (*Resolver, error) {
	if services == nil {
		return nil, fmt.Errorf("settings: service resolver is required: %w", ErrInvalidArgument)
	}
	return &Resolver{services: services}, nil
}

// TryGetSettings resolves Provider[T] and delegates to it. A missing
// registration is reported as not found.
func TryGetSettings[T any](r *Resolver) (T, bool, error) {
	return TryGetSettingsWithPrefix[T](r, "")
}

// TryGetSettingsWithPrefix is TryGetSettings with a key prefix.
func TryGetSettingsWithPrefix[T any](r *Resolver, prefix string) (T, bool, error) {
	var zero T
	if r == nil {
		return zero, false, fmt.Errorf("settings: resolver is nil: %w", ErrInvalidArgument)
	}

	provider, ok, err := container.TryResolve[Provider[T]](r.services)
	if err != nil {
		return zero, false, err
	}
	if !ok || provider == nil {
		return zero, false, nil
	}

	settings, found, err := provider.TryGetSettingsWithPrefix(prefix)
	if err != nil || !found {
		return zero, false, err
	}
	return settings, true, nil
}

// AddConfigurationProvider registers a singleton ConfigurationProvider[T] as
// Provider[T]. The container must be able to resolve configuration.Provider
// and mapping.ObjectMapper.
func AddConfigurationProvider[T any](c *container.Collection, schema *mapping.Schema[T]) error {
	if schema == nil {
		return fmt.Errorf("settings: schema is required: %w", ErrInvalidArgument)
	}
	return container.Provide(c, container.Singleton, func(r container.Resolver) (Provider[T], error) {
		source, err := container.Resolve[configuration.Provider](r)
		if err != nil {
			return nil, err
		}
		mapper, err := container.Resolve[mapping.ObjectMapper](r)
		if err != nil {
			return nil, err
		}
		return NewConfigurationProvider(source, mapper, schema)
	})
}

// AddOptionsProvider registers Options[T] built from configure and a
// singleton OptionsProvider[T] as Provider[T].
func AddOptionsProvider[T any](c *container.Collection, configure ...func(*T)) error {
	options := NewOptions(configure...)
	if err := container.Instance(c, options); err != nil {
		return err
	}
	return container.Provide(c, container.Singleton, func(r container.Resolver) (Provider[T], error) {
		o, err := container.Resolve[*Options[T]](r)
		if err != nil {
			return nil, err
		}
		return NewOptionsProvider(o)
	})
}

// AddResolver registers the settings Resolver as a scoped service bound to
// the resolving scope.
func AddResolver(c *container.Collection) bool {
	return container.TryProvide(c, container.Scoped, NewResolver)
}
