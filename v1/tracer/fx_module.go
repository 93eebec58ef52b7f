package tracer

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/bushost/v1/bus"
)

// FXModule provides a *Tracer from a tracer.Config, exposes it as the
// bus.Tracer used for consume spans, and shuts it down when the application
// stops so pending spans are flushed.
//
//	app := fx.New(
//	    tracer.FXModule,
//	    fx.Supply(tracer.Config{ServiceName: "orders", EnableExport: true}),
//	)
var FXModule = fx.Module("tracer",
	fx.Provide(
		NewClient,
		func(t *Tracer) bus.Tracer { return t },
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// RegisterTracerLifecycle shuts the tracer down on application stop.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tracer.Shutdown(ctx)
		},
	})
}
