package minio

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/bushost/v1/configuration"
	"github.com/Aleph-Alpha/bushost/v1/observability"
)

// loadTimeout bounds the initial download.
const loadTimeout = 30 * time.Second

// FXModule loads a YAML settings document from object storage at startup and
// chains it in front of the application's configuration.Provider. Like
// redis.FXModule it is a plain option set so the decoration is global.
//
// Usage:
//
//	app := fx.New(
//	    configuration.FXModule,
//	    minio.FXModule,
//	    fx.Supply(minio.Config{
//	        Endpoint:  "minio:9000",
//	        Bucket:    "config",
//	        ObjectKey: "orders/settings.yaml",
//	    }),
//	    hosting.FXModule,
//	)
var FXModule = fx.Options(
	fx.Provide(NewSettingsWithDI),
	fx.Decorate(DecorateProvider),
)

// MinioParams groups the dependencies of NewSettingsWithDI.
type MinioParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewSettingsWithDI loads the document once at construction.
func NewSettingsWithDI(params MinioParams) (*configuration.FileProvider, error) {
	loader, err := NewSettingsLoader(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Observer != nil {
		loader.WithObserver(params.Observer)
	}

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	provider, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	if params.Logger != nil {
		params.Logger.Info("Loaded settings document from object storage", nil, map[string]interface{}{
			"bucket": params.Config.Bucket,
			"object": params.Config.ObjectKey,
		})
	}
	return provider, nil
}

// DecorateProvider chains the downloaded document in front of base.
func DecorateProvider(base configuration.Provider, document *configuration.FileProvider) (configuration.Provider, error) {
	return configuration.NewChainProvider(document, base)
}
