package minio

import (
	"context"
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/bushost/v1/configuration"
	"github.com/Aleph-Alpha/bushost/v1/observability"
)

const document = `
appSettings:
  RabbitMQ.Host: rabbit-0
  Endpoints.Orders.QueueName: orders
staging:
  RabbitMQ.Host: rabbit-staging
connectionStrings:
  orders:
    connectionString: amqp://rabbit-0
`

func newTestLoader(cfg Config, data string, err error) *SettingsLoader {
	return &SettingsLoader{cfg: cfg, fetch: func(ctx context.Context, bucket, key string) ([]byte, error) {
		if err != nil {
			return nil, err
		}
		return []byte(data), nil
	}}
}

func TestConfigValidate(t *testing.T) {
	assert.ErrorIs(t, Config{}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{Endpoint: "minio:9000"}.Validate(), ErrInvalidConfig)
	assert.ErrorIs(t, Config{Endpoint: "minio:9000", Bucket: "config"}.Validate(), ErrInvalidConfig)
	assert.NoError(t, Config{Endpoint: "minio:9000", Bucket: "config", ObjectKey: "settings.yaml"}.Validate())

	_, err := NewSettingsLoader(Config{})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	loader, err := NewSettingsLoader(Config{Endpoint: "minio:9000", Bucket: "config", ObjectKey: "settings.yaml"})
	require.NoError(t, err)
	assert.NotNil(t, loader)
}

func TestLoad(t *testing.T) {
	var ops []observability.OperationContext
	loader := newTestLoader(Config{Bucket: "config", ObjectKey: "orders.yaml"}, document, nil).
		WithObserver(observability.ObserverFunc(func(ctx observability.OperationContext) {
			ops = append(ops, ctx)
		}))

	provider, err := loader.Load(context.Background())
	require.NoError(t, err)

	v, ok := provider.TryGetSetting("RabbitMQ.Host")
	assert.True(t, ok)
	assert.Equal(t, "rabbit-0", v)

	require.Len(t, ops, 1)
	assert.Equal(t, "minio", ops[0].Component)
	assert.Equal(t, "load", ops[0].Operation)
	assert.Equal(t, "config", ops[0].Resource)
	assert.Equal(t, "orders.yaml", ops[0].SubResource)
	assert.Equal(t, int64(len(document)), ops[0].Size)
}

func TestLoadWithSection(t *testing.T) {
	loader := newTestLoader(Config{SectionName: "staging"}, document, nil)
	provider, err := loader.Load(context.Background())
	require.NoError(t, err)

	v, _ := provider.TryGetSetting("RabbitMQ.Host")
	assert.Equal(t, "rabbit-staging", v)
}

func TestLoadErrors(t *testing.T) {
	_, err := newTestLoader(Config{}, "", errors.New("unreachable")).Load(context.Background())
	assert.ErrorContains(t, err, "unreachable")

	_, err = newTestLoader(Config{}, "appSettings: [", nil).Load(context.Background())
	assert.Error(t, err)

	notFound := minio.ErrorResponse{Code: "NoSuchKey", Message: "The specified key does not exist."}
	assert.ErrorIs(t, translateError(notFound), ErrObjectNotFound)
	assert.NotErrorIs(t, translateError(errors.New("plain")), ErrObjectNotFound)
}

func TestDecorateProvider(t *testing.T) {
	doc, err := newTestLoader(Config{}, document, nil).Load(context.Background())
	require.NoError(t, err)

	provider, err := DecorateProvider(configuration.MapProvider{
		"RabbitMQ.Host": "local",
		"RabbitMQ.Port": "5673",
	}, doc)
	require.NoError(t, err)

	v, _ := provider.TryGetSetting("RabbitMQ.Host")
	assert.Equal(t, "rabbit-0", v)
	v, _ = provider.TryGetSetting("RabbitMQ.Port")
	assert.Equal(t, "5673", v)
}
