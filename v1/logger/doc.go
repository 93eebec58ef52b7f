// Package logger provides structured logging for bushost components.
//
// It wraps Uber's zap with a small, uniform call shape used across the module:
//
//	log.Info("Configuring Endpoint", nil, map[string]interface{}{"queue_name": "orders"})
//	log.Error("Failed to stop bus", err, nil)
//
// Packages that log declare their own Logger interface with the methods they
// need, so *Logger can be passed in directly and tests can use generated mocks.
//
// # FX Module Integration
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(func() logger.Config {
//			return logger.Config{Level: logger.Info, ServiceName: "orders"}
//		}),
//	)
//
// # Configuration
//
//	ZAP_LOGGER_LEVEL=debug          # debug, info, warning, error
//	LOGGER_SERVICE_NAME=orders      # value of the "service" field
//	LOGGER_ENABLE_TRACING=true      # add trace_id/span_id in *WithContext methods
//
// All methods are safe for concurrent use.
package logger
