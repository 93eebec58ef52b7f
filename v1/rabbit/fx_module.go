package rabbit

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/bushost/v1/container"
	"github.com/Aleph-Alpha/bushost/v1/hosting"
)

// FXModule makes RabbitMQ the transport of the hosted bus, with settings read
// from configuration under "RabbitMQ.".
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    configuration.FXModule,
//	    hosting.FXModule,
//	    rabbit.FXModule,
//	)
//
// Dependencies required by this module:
// - hosting.FXModule
var FXModule = Module()

// Module is FXModule with configure callbacks applied to the settings after
// they are read from configuration.
func Module(configure ...func(*Settings)) fx.Option {
	return fx.Module("rabbit",
		hosting.Register(func(services *container.Collection) error {
			return AddRabbitMq(services, configure...)
		}),
	)
}
