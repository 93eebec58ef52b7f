package redis

import (
	"context"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/bushost/v1/configuration"
	"github.com/Aleph-Alpha/bushost/v1/observability"
)

// FXModule loads settings from a Redis hash and puts them in front of the
// application's configuration.Provider, so values in Redis win over files and
// the environment. It is a plain option set rather than an fx.Module so that
// the decoration reaches every module of the application.
//
// Usage:
//
//	app := fx.New(
//	    configuration.FXModule,
//	    redis.FXModule,
//	    fx.Supply(redis.Config{Host: "redis", Key: "orders:settings", RefreshInterval: time.Minute}),
//	    hosting.FXModule,
//	)
//
// Dependencies required by this module:
// - A redis.Config
// - A configuration.Provider
var FXModule = fx.Options(
	fx.Provide(NewSourceWithDI),
	fx.Decorate(DecorateProvider),
	fx.Invoke(RegisterRedisLifecycle),
)

// RedisParams groups the dependencies of NewSourceWithDI.
type RedisParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewSourceWithDI connects and loads the hash once, so settings are available
// to every constructor that runs after it.
func NewSourceWithDI(params RedisParams) (*Source, error) {
	source, err := NewSource(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Logger != nil {
		source.WithLogger(params.Logger)
	}
	if params.Observer != nil {
		source.WithObserver(params.Observer)
	}

	ctx, cancel := context.WithTimeout(context.Background(), source.cfg.DialTimeout+source.cfg.ReadTimeout)
	defer cancel()
	if err := source.Refresh(ctx); err != nil {
		_ = source.Close()
		return nil, err
	}
	if params.Logger != nil {
		params.Logger.Info("Loaded settings from Redis", nil, map[string]interface{}{
			"key":      source.Key(),
			"settings": source.Len(),
		})
	}
	return source, nil
}

// DecorateProvider chains source in front of base.
func DecorateProvider(base configuration.Provider, source *Source) (configuration.Provider, error) {
	return configuration.NewChainProvider(source, base)
}

// RegisterRedisLifecycle runs the refresh loop while the application runs and
// closes the connection on stop.
func RegisterRedisLifecycle(lc fx.Lifecycle, source *Source) {
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go source.Run(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			err := source.Close()
			select {
			case <-source.Done():
			case <-ctx.Done():
				return ctx.Err()
			}
			return err
		},
	})
}
