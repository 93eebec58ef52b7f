package postgres

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/bushost/v1/configuration"
	"github.com/Aleph-Alpha/bushost/v1/observability"
)

// loadTimeout bounds migration and the initial load.
const loadTimeout = 30 * time.Second

// FXModule serves settings from a PostgreSQL table, chained in front of the
// application's configuration.Provider. It is a plain option set so the
// decoration is global.
//
// Usage:
//
//	app := fx.New(
//	    configuration.FXModule,
//	    postgres.FXModule,
//	    fx.Supply(postgres.Config{
//	        Connection: postgres.Connection{Host: "db", User: "bus", DbName: "orders"},
//	        AutoMigrate: true,
//	    }),
//	    hosting.FXModule,
//	)
var FXModule = fx.Options(
	fx.Provide(NewStoreWithDI),
	fx.Decorate(DecorateProvider),
	fx.Invoke(RegisterPostgresLifecycle),
)

// PostgresParams groups the dependencies of NewStoreWithDI.
type PostgresParams struct {
	fx.In

	Config   Config
	Logger   Logger                 `optional:"true"`
	Observer observability.Observer `optional:"true"`
}

// NewStoreWithDI connects, migrates when configured and loads the table once.
func NewStoreWithDI(params PostgresParams) (*Store, error) {
	store, err := NewStore(params.Config)
	if err != nil {
		return nil, err
	}
	if params.Observer != nil {
		store.WithObserver(params.Observer)
	}

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()
	if params.Config.AutoMigrate {
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, err
		}
	}
	if err := store.Load(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}
	if params.Logger != nil {
		params.Logger.Info("Loaded settings from PostgreSQL", nil, map[string]interface{}{
			"table":    store.Table(),
			"settings": store.Len(),
		})
	}
	return store, nil
}

// DecorateProvider chains store in front of base.
func DecorateProvider(base configuration.Provider, store *Store) (configuration.Provider, error) {
	return configuration.NewChainProvider(store, base)
}

// RegisterPostgresLifecycle closes the connection pool on stop.
func RegisterPostgresLifecycle(lc fx.Lifecycle, store *Store) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return store.Close()
		},
	})
}
