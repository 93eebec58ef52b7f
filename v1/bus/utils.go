package bus

import (
	"fmt"
	"reflect"

	"github.com/Aleph-Alpha/bushost/v1/container"
	"github.com/Aleph-Alpha/bushost/v1/observability"
	"github.com/Aleph-Alpha/bushost/v1/settings"
)

// AddConsumer registers C as a scoped service built by factory and a receive
// endpoint whose EndpointSettings are read under prefix, for example
// "Endpoints.Orders.".
//
//	bus.AddConsumer(services, "Endpoints.Orders.", func(r container.Resolver) (*OrderConsumer, error) {
//	    return &OrderConsumer{}, nil
//	})
func AddConsumer[C Consumer](c *container.Collection, prefix string, factory func(r container.Resolver) (C, error)) error {
	if err := container.Provide(c, container.Scoped, factory); err != nil {
		return err
	}
	if !c.Contains(reflect.TypeFor[settings.Provider[EndpointSettings]]()) {
		if err := settings.AddConfigurationProvider(c, EndpointSettingsSchema); err != nil {
			return err
		}
	}
	return container.Append(c, container.Transient, func(r container.Resolver) (EndpointSpecification, error) {
		return newConsumerEndpoint[C](r, prefix)
	})
}

func newConsumerEndpoint[C Consumer](r container.Resolver, prefix string) (*ConsumerEndpoint[C], error) {
	resolver, err := container.Resolve[*settings.Resolver](r)
	if err != nil {
		return nil, err
	}
	endpoint, found, err := settings.TryGetSettingsWithPrefix[EndpointSettings](resolver, prefix)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("bus: no endpoint settings under %q: %w", prefix, ErrEndpointNotConfigured)
	}

	scopes, err := container.Resolve[container.ScopeFactory](r)
	if err != nil {
		return nil, err
	}
	factory, err := NewResolvingConsumerFactory[C](scopes)
	if err != nil {
		return nil, err
	}
	if observer, ok, err := container.TryResolve[observability.Observer](r); err != nil {
		return nil, err
	} else if ok {
		factory.WithObserver(observer)
	}
	if tracer, ok, err := container.TryResolve[Tracer](r); err != nil {
		return nil, err
	} else if ok {
		factory.WithTracer(tracer)
	}

	return NewConsumerEndpoint[C](endpoint, factory)
}

// AddServiceSpecification registers a bus-wide specification.
func AddServiceSpecification(c *container.Collection, factory func(r container.Resolver) (ServiceSpecification, error)) error {
	return container.Append(c, container.Transient, factory)
}

// AddObserver registers a bus lifecycle observer.
func AddObserver(c *container.Collection, factory func(r container.Resolver) (Observer, error)) error {
	return container.Append(c, container.Singleton, factory)
}

// AddServiceConfigurator registers the default ServiceConfigurator, built from
// every registered specification and observer. The container must resolve a
// bus.Logger.
func AddServiceConfigurator(c *container.Collection) bool {
	return container.TryProvide(c, container.Scoped, func(r container.Resolver) (ServiceConfigurator, error) {
		logger, err := container.Resolve[Logger](r)
		if err != nil {
			return nil, err
		}
		services, err := container.ResolveAll[ServiceSpecification](r)
		if err != nil {
			return nil, err
		}
		endpoints, err := container.ResolveAll[EndpointSpecification](r)
		if err != nil {
			return nil, err
		}
		observers, err := container.ResolveAll[Observer](r)
		if err != nil {
			return nil, err
		}
		return NewBusServiceConfigurator(logger, services, endpoints, observers)
	})
}
