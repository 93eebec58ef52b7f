package hosting

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/bushost/v1/bus"
	"github.com/Aleph-Alpha/bushost/v1/configuration"
	"github.com/Aleph-Alpha/bushost/v1/container"
	"github.com/Aleph-Alpha/bushost/v1/logger"
	"github.com/Aleph-Alpha/bushost/v1/mapping"
	"github.com/Aleph-Alpha/bushost/v1/observability"
	"github.com/Aleph-Alpha/bushost/v1/settings"
)

// RegistrationGroup is the fx value group RegisterFuncs are collected from.
const RegistrationGroup = "bus.registrations"

// FXModule hosts the bus inside an fx application. It builds the service
// container from the collaborators available in fx plus every RegisterFunc in
// the "bus.registrations" group, starts the bus when the application starts
// and stops it, then closes the container, when the application stops.
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    configuration.FXModule,
//	    hosting.FXModule,
//	    rabbit.FXModule,
//	    hosting.Register(func(services *container.Collection) error {
//	        return bus.AddConsumer(services, "Endpoints.Orders.", NewOrderConsumer)
//	    }),
//	)
//
// Dependencies required by this module:
// - A configuration.Provider
// - A *logger.Logger
// Optional: mapping.ObjectMapper, observability.Observer, bus.Tracer.
var FXModule = fx.Module("hosting",
	fx.Provide(
		NewServiceProvider,
		NewServiceHost,
		NewSettingsResolver,
	),
	fx.Invoke(RegisterHostingLifecycle),
)

// Register contributes fn to the bus container.
func Register(fn RegisterFunc) fx.Option {
	return fx.Provide(fx.Annotated{
		Group:  RegistrationGroup,
		Target: func() RegisterFunc { return fn },
	})
}

// ProviderParams groups the dependencies of NewServiceProvider.
type ProviderParams struct {
	fx.In

	Logger        *logger.Logger
	Configuration configuration.Provider
	Mapper        mapping.ObjectMapper   `optional:"true"`
	Observer      observability.Observer `optional:"true"`
	Tracer        bus.Tracer             `optional:"true"`
	Registrations []RegisterFunc         `group:"bus.registrations"`
}

// NewServiceProvider builds the bus container.
func NewServiceProvider(p ProviderParams) (*container.Provider, error) {
	services := container.NewCollection()

	if err := container.Instance(services, p.Logger); err != nil {
		return nil, err
	}
	if err := container.Instance[bus.Logger](services, p.Logger); err != nil {
		return nil, err
	}
	if err := container.Instance(services, p.Configuration); err != nil {
		return nil, err
	}
	if p.Mapper != nil {
		if err := container.Instance(services, p.Mapper); err != nil {
			return nil, err
		}
	}
	if p.Observer != nil {
		if err := container.Instance(services, p.Observer); err != nil {
			return nil, err
		}
	}
	if p.Tracer != nil {
		if err := container.Instance(services, p.Tracer); err != nil {
			return nil, err
		}
	}

	for i, register := range p.Registrations {
		if register == nil {
			continue
		}
		if err := register(services); err != nil {
			return nil, fmt.Errorf("hosting: registration %d: %w", i, err)
		}
	}
	AddBusHosting(services)

	return services.Build(), nil
}

// NewServiceHost returns the host running the bus from provider.
func NewServiceHost(provider *container.Provider, log *logger.Logger) (*bus.ServiceHost, error) {
	return bus.NewServiceHost(provider, log)
}

// NewSettingsResolver exposes typed settings lookup to the rest of the application.
func NewSettingsResolver(provider *container.Provider) (*settings.Resolver, error) {
	return settings.NewResolver(provider.Root())
}

// RegisterHostingLifecycle starts the bus host on application start. On stop
// it stops the host and then closes the container with its singletons. A
// failed start closes the container right away, since fx skips OnStop for a
// hook whose OnStart failed.
func RegisterHostingLifecycle(lc fx.Lifecycle, host *bus.ServiceHost, provider *container.Provider, log *logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting bus host", nil)
			if err := host.Start(ctx); err != nil {
				return errors.Join(err, provider.Close())
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping bus host", nil)
			if err := host.Stop(ctx); err != nil {
				_ = provider.Close()
				return err
			}
			return provider.Close()
		},
	})
}
