package kafka

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/bushost/v1/container"
	"github.com/Aleph-Alpha/bushost/v1/hosting"
)

// FXModule makes Kafka the transport of the hosted bus, with settings read
// from configuration under "Kafka.".
//
// Usage:
//
//	app := fx.New(
//	    logger.FXModule,
//	    configuration.FXModule,
//	    hosting.FXModule,
//	    kafka.FXModule,
//	)
//
// Dependencies required by this module:
// - hosting.FXModule
var FXModule = Module()

// Module is FXModule with configure callbacks applied to the settings after
// they are read from configuration.
func Module(configure ...func(*Settings)) fx.Option {
	return fx.Module("kafka",
		hosting.Register(func(services *container.Collection) error {
			return AddKafka(services, configure...)
		}),
	)
}
