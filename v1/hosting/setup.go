package hosting

import (
	"go.uber.org/zap"

	"github.com/Aleph-Alpha/bushost/v1/bus"
	"github.com/Aleph-Alpha/bushost/v1/container"
	"github.com/Aleph-Alpha/bushost/v1/logger"
	"github.com/Aleph-Alpha/bushost/v1/mapping"
	"github.com/Aleph-Alpha/bushost/v1/settings"
)

// RegisterFunc adds services to the collection the bus container is built from.
type RegisterFunc func(services *container.Collection) error

// AddBusHosting registers the services the bus host needs unless the
// application already registered its own: the settings resolver, the service
// configurator, a converter-backed ObjectMapper and a no-op bus.Logger.
//
// The application still registers a configuration.Provider, a bus.HostFactory
// (for example with rabbit.AddRabbitMq) and its consumers.
func AddBusHosting(services *container.Collection) {
	settings.AddResolver(services)
	bus.AddServiceConfigurator(services)

	container.TryProvide(services, container.Singleton, func(container.Resolver) (mapping.ObjectMapper, error) {
		return mapping.NewObjectMapper(mapping.MapperParams{})
	})
	container.TryProvide(services, container.Singleton, func(container.Resolver) (bus.Logger, error) {
		return logger.NewFromZap(zap.NewNop(), false), nil
	})
}
