package rabbit

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Aleph-Alpha/bushost/v1/bus"
	"github.com/Aleph-Alpha/bushost/v1/observability"
)

// HostFactory creates RabbitMQ buses. It implements bus.HostFactory.
type HostFactory struct {
	settings Settings
	logger   Logger
	observer observability.Observer
	tracer   Tracer
	dial     dialFunc
}

type dialFunc func(url string, cfg amqp.Config) (*amqp.Connection, error)

// NewHostFactory returns a factory for buses connecting with settings.
// Unset fields take their defaults.
func NewHostFactory(settings Settings) (*HostFactory, error) {
	settings = settings.WithDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &HostFactory{settings: settings, dial: amqp.DialConfig}, nil
}

// WithLogger attaches a logger to every bus the factory creates.
func (f *HostFactory) WithLogger(logger Logger) *HostFactory {
	f.logger = logger
	return f
}

// WithObserver attaches an observer for consume and publish operations.
func (f *HostFactory) WithObserver(observer observability.Observer) *HostFactory {
	f.observer = observer
	return f
}

// WithTracer propagates trace context through message headers.
func (f *HostFactory) WithTracer(tracer Tracer) *HostFactory {
	f.tracer = tracer
	return f
}

// Settings returns the effective settings, defaults applied.
func (f *HostFactory) Settings() Settings {
	return f.settings
}

// CreateBus applies configurator and returns a bus that is not started yet.
// Observers registered through the configurator are told about the new bus.
func (f *HostFactory) CreateBus(configurator bus.ServiceConfigurator, serviceName string) (bus.Control, error) {
	if configurator == nil {
		return nil, fmt.Errorf("rabbit: configurator is required: %w", ErrInvalidSettings)
	}

	b := &RabbitBus{
		settings:    f.settings,
		serviceName: serviceName,
		logger:      f.logger,
		observer:    f.observer,
		tracer:      f.tracer,
		dial:        f.dial,
	}
	cfg := &busConfigurator{bus: b}
	if err := configurator.Configure(cfg); err != nil {
		cfg.observers.CreateFaulted(err)
		return nil, err
	}
	if err := errors.Join(cfg.errs...); err != nil {
		cfg.observers.CreateFaulted(err)
		return nil, err
	}
	b.endpoints = cfg.endpoints
	b.observers = cfg.observers
	b.observers.PostCreate(b)
	return b, nil
}

// busConfigurator collects endpoints and observers for a bus being created.
type busConfigurator struct {
	bus       *RabbitBus
	endpoints []*receiveEndpoint
	observers bus.Observers
	errs      []error
}

func (c *busConfigurator) ReceiveEndpoint(queueName string, consumerLimit int, configure func(bus.EndpointConfigurator)) {
	if queueName == "" {
		c.errs = append(c.errs, fmt.Errorf("rabbit: receive endpoint needs a queue name: %w", ErrInvalidSettings))
		return
	}
	for _, ep := range c.endpoints {
		if ep.queue == queueName {
			c.errs = append(c.errs, fmt.Errorf("rabbit: queue %q is configured twice: %w", queueName, ErrInvalidSettings))
			return
		}
	}
	if consumerLimit <= 0 {
		consumerLimit = bus.DefaultConsumerLimit
	}
	ep := &receiveEndpoint{
		queue:   queueName,
		limit:   consumerLimit,
		address: c.bus.endpointAddress(queueName),
	}
	if configure != nil {
		configure(ep)
	}
	c.endpoints = append(c.endpoints, ep)
}

func (c *busConfigurator) BusObserver(o bus.Observer) {
	if o != nil {
		c.observers = append(c.observers, o)
	}
}

// receiveEndpoint is one consumed queue.
type receiveEndpoint struct {
	queue    string
	limit    int
	address  string
	handlers []bus.Handler
}

func (e *receiveEndpoint) InputAddress() string { return e.address }

func (e *receiveEndpoint) Handle(h bus.Handler) {
	if h != nil {
		e.handlers = append(e.handlers, h)
	}
}

// tlsConfig builds the client TLS configuration. It returns nil for plain AMQP.
// With UseCert the CA bundle and client key pair are loaded for mutual TLS;
// otherwise only the server is verified.
func tlsConfig(s Settings) (*tls.Config, error) {
	if !s.IsSSLEnabled {
		return nil, nil
	}
	cfg := &tls.Config{ServerName: s.ServerName, MinVersion: tls.VersionTLS12}
	if s.CACertPath != "" {
		caCert, err := os.ReadFile(s.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("rabbit: read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("rabbit: no certificates in %s: %w", s.CACertPath, ErrInvalidSettings)
		}
		cfg.RootCAs = pool
	}
	if s.UseCert {
		cert, err := tls.LoadX509KeyPair(s.ClientCertPath, s.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("rabbit: load client cert: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

// newConnection dials Host and then every cluster member until one accepts.
func newConnection(ctx context.Context, s Settings, connectionName string, dial dialFunc, logger Logger) (*amqp.Connection, error) {
	tlsCfg, err := tlsConfig(s)
	if err != nil {
		return nil, err
	}
	amqpCfg := amqp.Config{
		Heartbeat:       s.Heartbeat,
		TLSClientConfig: tlsCfg,
		Vhost:           s.VirtualHost,
		Properties:      amqp.NewConnectionProperties(),
	}
	if connectionName != "" {
		amqpCfg.Properties.SetClientConnectionName(connectionName)
	}

	var errs []error
	for _, endpoint := range s.Endpoints() {
		conn, err := dial(s.URL(endpoint), amqpCfg)
		if err == nil {
			return conn, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", endpoint, TranslateError(err)))
		if logger != nil {
			logger.WarnWithContext(ctx, "Failed to connect to RabbitMQ", err, map[string]interface{}{"endpoint": endpoint})
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrConnectionFailed, errors.Join(errs...))
}
