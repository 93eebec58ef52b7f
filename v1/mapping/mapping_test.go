package mapping

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokerSettings struct {
	Host          string
	Port          uint16
	Heartbeat     time.Duration
	Durable       bool
	Members       []string
	ConsumerLimit *int
	RetryCount    int
}

var brokerSchema = NewSchema("BrokerSettings",
	String("Host", func(s *brokerSettings, v string) { s.Host = v }),
	Uint16("Port", func(s *brokerSettings, v uint16) { s.Port = v }),
	Duration("Heartbeat", func(s *brokerSettings, v time.Duration) { s.Heartbeat = v }),
	Bool("Durable", func(s *brokerSettings, v bool) { s.Durable = v }),
	StringSlice("Members", func(s *brokerSettings, v []string) { s.Members = v }),
	OptionalInt("ConsumerLimit", func(s *brokerSettings, v *int) { s.ConsumerLimit = v }),
	Int("RetryCount", func(s *brokerSettings, v int) { s.RetryCount = v }),
)

type queueSettings struct {
	QueueName string
	Queue     string
}

var (
	queueNameSchema = NewSchema("QueueByName",
		String("QueueName", func(s *queueSettings, v string) { s.QueueName = v }),
	)
	queueSchema = NewSchema("QueueShort",
		String("Queue", func(s *queueSettings, v string) { s.Queue = v }),
	)
)

type staticDictionary map[string]any

func (d staticDictionary) Lookup(key string) (any, bool) {
	v, ok := d[key]
	return v, ok
}

func TestDictionaryValueProvider(t *testing.T) {
	tests := []struct {
		name   string
		source any
	}{
		{"StringObjectMap", map[string]any{"App.Host": "rabbit", "Other": "x"}},
		{"StringStringMap", map[string]string{"App.Host": "rabbit", "Other": "x"}},
		{"HeterogeneousMap", map[any]any{"App.Host": "rabbit", "Other": "x"}},
		{"Dictionary", staticDictionary{"App.Host": "rabbit", "Other": "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewDictionaryValueProvider(tt.source, "App.")
			require.NoError(t, err)

			v, ok := p.TryGetValue("Host")
			assert.True(t, ok)
			assert.Equal(t, "rabbit", v)

			_, ok = p.TryGetValue("Other")
			assert.False(t, ok, "keys are looked up with the prefix")

			_, ok = p.TryGetValue("Missing")
			assert.False(t, ok)
		})
	}
}

func TestDictionaryValueProviderEdgeCases(t *testing.T) {
	t.Run("NilSource", func(t *testing.T) {
		_, err := NewDictionaryValueProvider(nil, "")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("UnsupportedSource", func(t *testing.T) {
		_, err := NewDictionaryValueProvider(42, "")
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})

	t.Run("NilInHeterogeneousMapIsMissing", func(t *testing.T) {
		p, err := NewDictionaryValueProvider(map[any]any{"Host": nil}, "")
		require.NoError(t, err)
		_, ok := p.TryGetValue("Host")
		assert.False(t, ok)
	})

	t.Run("TypedLookupRequiresMatchingType", func(t *testing.T) {
		p, err := NewDictionaryValueProvider(map[string]any{"Port": "5672", "Limit": 8}, "")
		require.NoError(t, err)

		_, ok := TryGetValueAs[int](p, "Port")
		assert.False(t, ok, "a string is not an int even though the key exists")

		limit, ok := TryGetValueAs[int](p, "Limit")
		assert.True(t, ok)
		assert.Equal(t, 8, limit)
	})
}

func TestSchema(t *testing.T) {
	assert.Equal(t, "BrokerSettings", brokerSchema.Name())
	assert.Equal(t,
		[]string{"Host", "Port", "Heartbeat", "Durable", "Members", "ConsumerLimit", "RetryCount"},
		brokerSchema.PropertyNames())

	t.Run("DuplicateNames", func(t *testing.T) {
		s := NewSchema("Dup",
			String("Host", func(s *brokerSettings, v string) { s.Host = v }),
			String("Host", func(s *brokerSettings, v string) { s.Host = v }),
		)
		_, err := s.BuildConverter()
		assert.ErrorIs(t, err, ErrMappingFailed)
	})

	t.Run("EmptyName", func(t *testing.T) {
		s := NewSchema("", String("", func(s *brokerSettings, v string) { s.Host = v }))
		_, err := s.BuildConverter()
		assert.ErrorIs(t, err, ErrMappingFailed)
		assert.NotEmpty(t, s.Name())
	})
}

func mappers(t *testing.T) map[string]ObjectMapper {
	t.Helper()
	cache, err := NewConverterCache(DefaultBuilder{})
	require.NoError(t, err)
	converter, err := NewConverterMapper(cache)
	require.NoError(t, err)
	return map[string]ObjectMapper{
		StrategyConverter: converter,
		StrategyBinding:   NewBindingMapper(),
	}
}

func TestMapObject(t *testing.T) {
	for name, m := range mappers(t) {
		t.Run(name, func(t *testing.T) {
			t.Run("StringValues", func(t *testing.T) {
				source := map[string]string{
					"RabbitMQ.Host":          "broker.local",
					"RabbitMQ.Port":          "5671",
					"RabbitMQ.Heartbeat":     "15s",
					"RabbitMQ.Durable":       "true",
					"RabbitMQ.Members":       "a,b",
					"RabbitMQ.ConsumerLimit": "12",
				}

				got, err := MapObject(m, "RabbitMQ.", source, brokerSchema)
				require.NoError(t, err)
				assert.Equal(t, "broker.local", got.Host)
				assert.EqualValues(t, 5671, got.Port)
				assert.Equal(t, 15*time.Second, got.Heartbeat)
				assert.True(t, got.Durable)
				assert.Equal(t, []string{"a", "b"}, got.Members)
				require.NotNil(t, got.ConsumerLimit)
				assert.Equal(t, 12, *got.ConsumerLimit)
				assert.Zero(t, got.RetryCount, "missing properties keep their zero value")
			})

			t.Run("TypedValues", func(t *testing.T) {
				source := map[string]any{"Port": uint16(5672), "RetryCount": 3}

				got, err := MapObject(m, "", source, brokerSchema)
				require.NoError(t, err)
				assert.EqualValues(t, 5672, got.Port)
				assert.Equal(t, 3, got.RetryCount)
				assert.Nil(t, got.ConsumerLimit)
			})

			t.Run("NilSource", func(t *testing.T) {
				got, err := MapObject(m, "RabbitMQ.", nil, brokerSchema)
				require.NoError(t, err)
				assert.Equal(t, brokerSettings{}, got)
			})

			t.Run("HeartbeatInSeconds", func(t *testing.T) {
				got, err := MapObject(m, "", map[string]string{"Heartbeat": "10"}, brokerSchema)
				require.NoError(t, err)
				assert.Equal(t, 10*time.Second, got.Heartbeat)
			})

			t.Run("SchemasForOneType", func(t *testing.T) {
				source := map[string]string{"QueueName": "orders", "Queue": "billing"}

				byName, err := MapObject(m, "", source, queueNameSchema)
				require.NoError(t, err)
				assert.Equal(t, queueSettings{QueueName: "orders"}, byName)

				short, err := MapObject(m, "", source, queueSchema)
				require.NoError(t, err)
				assert.Equal(t, queueSettings{Queue: "billing"}, short)
			})

			t.Run("UnparsableValue", func(t *testing.T) {
				_, err := MapObject(m, "", map[string]string{"Port": "not-a-port"}, brokerSchema)
				assert.ErrorIs(t, err, ErrMappingFailed)
			})
		})
	}
}

type countingBuilder struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (b *countingBuilder) Build(d Descriptor) (Converter, error) {
	b.calls.Add(1)
	time.Sleep(b.delay)
	if b.err != nil {
		return nil, b.err
	}
	return DefaultBuilder{}.Build(d)
}

func TestConverterCache(t *testing.T) {
	t.Run("BuildsOncePerType", func(t *testing.T) {
		builder := &countingBuilder{delay: 10 * time.Millisecond}
		cache, err := NewConverterCache(builder)
		require.NoError(t, err)

		var wg sync.WaitGroup
		converters := make([]Converter, 16)
		for i := range converters {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				c, err := cache.GetConverter(brokerSchema)
				if err == nil {
					converters[i] = c
				}
			}(i)
		}
		wg.Wait()

		assert.EqualValues(t, 1, builder.calls.Load())
		for _, c := range converters {
			require.NotNil(t, c)
		}
		assert.Equal(t, 1, cache.Len())

		again, err := cache.GetConverter(brokerSchema)
		require.NoError(t, err)
		assert.NotNil(t, again)
		assert.EqualValues(t, 1, builder.calls.Load())
	})

	t.Run("FailedBuildIsRetried", func(t *testing.T) {
		builder := &countingBuilder{err: errors.New("compile failed")}
		cache, err := NewConverterCache(builder)
		require.NoError(t, err)

		_, err = cache.GetConverter(brokerSchema)
		require.Error(t, err)
		_, err = cache.GetConverter(brokerSchema)
		require.Error(t, err)

		assert.EqualValues(t, 2, builder.calls.Load())
		assert.Zero(t, cache.Len())
	})

	t.Run("OneConverterPerSchema", func(t *testing.T) {
		builder := &countingBuilder{}
		cache, err := NewConverterCache(builder)
		require.NoError(t, err)

		first, err := cache.GetConverter(queueNameSchema)
		require.NoError(t, err)
		second, err := cache.GetConverter(queueSchema)
		require.NoError(t, err)

		assert.EqualValues(t, 2, builder.calls.Load())
		assert.Equal(t, 2, cache.Len())

		values, err := NewDictionaryValueProvider(map[string]string{"Queue": "billing"}, "")
		require.NoError(t, err)
		v, err := second.GetObject(values)
		require.NoError(t, err)
		assert.Equal(t, queueSettings{Queue: "billing"}, v)

		again, err := cache.GetConverter(queueNameSchema)
		require.NoError(t, err)
		assert.NotNil(t, first)
		assert.NotNil(t, again)
		assert.EqualValues(t, 2, builder.calls.Load())
	})

	t.Run("NilBuilder", func(t *testing.T) {
		_, err := NewConverterCache(nil)
		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestParseDuration(t *testing.T) {
	for in, want := range map[string]time.Duration{
		"10":    10 * time.Second,
		" 10 ":  10 * time.Second,
		"10s":   10 * time.Second,
		"1m30s": 90 * time.Second,
		"0":     0,
	} {
		got, err := ParseDuration(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseDuration("ten")
	assert.Error(t, err)
}

func TestNewObjectMapper(t *testing.T) {
	m, err := NewObjectMapper(MapperParams{})
	require.NoError(t, err)
	assert.IsType(t, &ConverterMapper{}, m)

	m, err = NewObjectMapper(MapperParams{Config: Config{Strategy: StrategyBinding}})
	require.NoError(t, err)
	assert.IsType(t, &BindingMapper{}, m)

	_, err = NewObjectMapper(MapperParams{Config: Config{Strategy: "reflection"}})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}
