package rabbit

import (
	"reflect"

	"github.com/Aleph-Alpha/bushost/v1/bus"
	"github.com/Aleph-Alpha/bushost/v1/container"
	"github.com/Aleph-Alpha/bushost/v1/logger"
	"github.com/Aleph-Alpha/bushost/v1/observability"
	"github.com/Aleph-Alpha/bushost/v1/settings"
)

// AddRabbitMq registers RabbitMQ as the bus transport. Settings are read from
// configuration under "RabbitMQ." and fall back to the defaults when the
// section is missing; configure callbacks run after that and may override any
// field.
//
// A *logger.Logger, observability.Observer and bus.Tracer are picked up from
// the container when registered.
func AddRabbitMq(c *container.Collection, configure ...func(*Settings)) error {
	if !c.Contains(reflect.TypeFor[settings.Provider[Settings]]()) {
		if err := settings.AddConfigurationProvider(c, SettingsSchema); err != nil {
			return err
		}
	}
	settings.AddResolver(c)

	return container.Provide(c, container.Scoped, func(r container.Resolver) (bus.HostFactory, error) {
		return newHostFactory(r, configure)
	})
}

func newHostFactory(r container.Resolver, configure []func(*Settings)) (*HostFactory, error) {
	resolver, err := container.Resolve[*settings.Resolver](r)
	if err != nil {
		return nil, err
	}
	s, _, err := settings.TryGetSettingsWithPrefix[Settings](resolver, SettingsPrefix)
	if err != nil {
		return nil, err
	}
	for _, fn := range configure {
		if fn != nil {
			fn(&s)
		}
	}

	factory, err := NewHostFactory(s)
	if err != nil {
		return nil, err
	}
	if log, ok, err := container.TryResolve[*logger.Logger](r); err != nil {
		return nil, err
	} else if ok {
		factory.WithLogger(log)
	}
	if observer, ok, err := container.TryResolve[observability.Observer](r); err != nil {
		return nil, err
	} else if ok {
		factory.WithObserver(observer)
	}
	if t, ok, err := container.TryResolve[bus.Tracer](r); err != nil {
		return nil, err
	} else if ok {
		if carrier, ok := t.(Tracer); ok {
			factory.WithTracer(carrier)
		}
	}
	return factory, nil
}
