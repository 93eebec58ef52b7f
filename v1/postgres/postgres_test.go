package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Aleph-Alpha/bushost/v1/configuration"
	"github.com/Aleph-Alpha/bushost/v1/observability"
)

// newDryRunStore returns a Store whose statements are built but never sent.
func newDryRunStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost dbname=bushost sslmode=disable"}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)
	return newStore(db, DefaultTable)
}

func TestConfigValidate(t *testing.T) {
	valid := Config{Connection: Connection{Host: "db", DbName: "orders"}}
	assert.NoError(t, valid.Validate())
	assert.Equal(t, DefaultTable, valid.table())

	assert.ErrorIs(t, Config{}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{Connection: Connection{Host: "db"}}.Validate(), ErrInvalidConfig)

	withSchema := valid
	withSchema.Table = "config.bus_settings"
	assert.NoError(t, withSchema.Validate())

	injected := valid
	injected.Table = "settings; DROP TABLE users"
	assert.ErrorIs(t, injected.Validate(), ErrInvalidConfig)
}

func TestDSN(t *testing.T) {
	assert.Equal(t,
		"host=db port=5432 user=bus password=secret dbname=orders sslmode=disable",
		Connection{Host: "db", User: "bus", Password: "secret", DbName: "orders"}.DSN())
	assert.Equal(t,
		"host=db port=6432 user= password= dbname=orders sslmode=require",
		Connection{Host: "db", Port: "6432", DbName: "orders", SSLMode: "require"}.DSN())
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, TranslateError(nil))
	assert.ErrorIs(t, TranslateError(&pgconn.PgError{Code: "42P01"}), ErrTableNotFound)
	assert.ErrorIs(t, TranslateError(&pgconn.PgError{Code: "42501"}), ErrAccessDenied)

	other := &pgconn.PgError{Code: "23505"}
	assert.Same(t, error(other), TranslateError(other))
	plain := errors.New("plain")
	assert.Same(t, plain, TranslateError(plain))
}

func TestStatements(t *testing.T) {
	store := newDryRunStore(t)

	query := store.db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		var rows []setting
		return store.selectAll(tx, &rows)
	})
	assert.Contains(t, query, `FROM "bus_settings"`)
	assert.Contains(t, query, `"name"`)
	assert.Contains(t, query, `"value"`)
	assert.Contains(t, query, "ORDER BY name")

	upsert := store.db.ToSQL(func(tx *gorm.DB) *gorm.DB {
		return store.upsert(tx, &setting{Name: "RabbitMQ.Host", Value: "rabbit-0"})
	})
	assert.Contains(t, upsert, `INSERT INTO "bus_settings"`)
	assert.Contains(t, upsert, `ON CONFLICT ("name") DO UPDATE SET`)
	assert.Contains(t, upsert, `"value"="excluded"."value"`)
}

func TestLoadAndSetOnDryRun(t *testing.T) {
	store := newDryRunStore(t)
	var ops []observability.OperationContext
	store.WithObserver(observability.ObserverFunc(func(ctx observability.OperationContext) {
		ops = append(ops, ctx)
	}))

	require.NoError(t, store.Load(context.Background()))
	assert.Equal(t, 0, store.Len())

	require.NoError(t, store.Set(context.Background(), "RabbitMQ.Host", "rabbit-0"))
	assert.ErrorIs(t, store.Set(context.Background(), "", "x"), ErrInvalidConfig)

	require.Len(t, ops, 2)
	assert.Equal(t, "postgres", ops[0].Component)
	assert.Equal(t, "load", ops[0].Operation)
	assert.Equal(t, "set", ops[1].Operation)
	assert.Equal(t, "RabbitMQ.Host", ops[1].SubResource)
}

func TestDecorateProvider(t *testing.T) {
	store := newDryRunStore(t)
	values := map[string]string{"RabbitMQ.Host": "from-db"}
	store.snapshot.Store(&values)

	provider, err := DecorateProvider(configuration.MapProvider{
		"RabbitMQ.Host": "from-file",
		"RabbitMQ.Port": "5673",
	}, store)
	require.NoError(t, err)

	v, _ := provider.TryGetSetting("RabbitMQ.Host")
	assert.Equal(t, "from-db", v)
	v, _ = provider.TryGetSetting("RabbitMQ.Port")
	assert.Equal(t, "5673", v)
}
