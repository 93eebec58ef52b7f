package redis

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/redis/go-redis/v9"

	"github.com/Aleph-Alpha/bushost/v1/observability"
)

// Source serves settings from a Redis hash. It keeps the last loaded snapshot
// in memory, so lookups never touch the network and keep answering when Redis
// is unreachable. Source implements configuration.Provider.
type Source struct {
	client   hashClient
	cfg      Config
	logger   Logger
	observer observability.Observer

	snapshot atomic.Pointer[map[string]string]
	closed   atomic.Bool
	started  atomic.Bool

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewSource connects to Redis as described by cfg. The hash is not read until
// Refresh is called.
func NewSource(cfg Config) (*Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	var tlsConfig *tls.Config
	if cfg.TLS.Enabled {
		var err error
		tlsConfig, err = createTLSConfig(cfg.TLS, cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("redis: create TLS config: %w", err)
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Host + ":" + strconv.Itoa(cfg.Port),
		Username:    cfg.Username,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
		ReadTimeout: cfg.ReadTimeout,
		TLSConfig:   tlsConfig,
	})
	return newSource(client, cfg), nil
}

func newSource(client hashClient, cfg Config) *Source {
	s := &Source{
		client: client,
		cfg:    cfg.withDefaults(),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	empty := map[string]string{}
	s.snapshot.Store(&empty)
	return s
}

// WithLogger attaches a logger for background refresh failures.
func (s *Source) WithLogger(logger Logger) *Source {
	s.logger = logger
	return s
}

// WithObserver attaches an observer for refresh operations.
func (s *Source) WithObserver(observer observability.Observer) *Source {
	s.observer = observer
	return s
}

// Key returns the hash the settings are read from.
func (s *Source) Key() string {
	return s.cfg.Key
}

func createTLSConfig(cfg TLSConfig, defaultServerName string) (*tls.Config, error) {
	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify,
		MinVersion:         tls.VersionTLS12,
	}
	if cfg.ServerName != "" {
		tlsConfig.ServerName = cfg.ServerName
	} else {
		tlsConfig.ServerName = defaultServerName
	}

	if cfg.CACertPath != "" {
		caCert, err := os.ReadFile(cfg.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read CA cert: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA cert: %w", ErrInvalidConfig)
		}
		tlsConfig.RootCAs = caCertPool
	}

	if cfg.ClientCertPath != "" && cfg.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCertPath, cfg.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}
	return tlsConfig, nil
}
