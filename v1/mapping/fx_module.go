package mapping

import "go.uber.org/fx"

// FXModule provides a shared *ConverterCache and the ObjectMapper selected by
// an optional mapping.Config.
//
//	app := fx.New(
//	    mapping.FXModule,
//	    fx.Supply(mapping.Config{Strategy: mapping.StrategyBinding}),
//	)
var FXModule = fx.Module("mapping",
	fx.Provide(
		newDefaultCache,
		NewObjectMapper,
	),
)
