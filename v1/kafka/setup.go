package kafka

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"

	"github.com/Aleph-Alpha/bushost/v1/bus"
	"github.com/Aleph-Alpha/bushost/v1/observability"
)

// reader is the consuming side of *kafka.Reader.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// writer is the producing side of *kafka.Writer.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// HostFactory creates Kafka buses. It implements bus.HostFactory.
type HostFactory struct {
	settings Settings
	logger   Logger
	observer observability.Observer
	tracer   Tracer

	newReader func(topic, groupID string) (reader, error)
	newWriter func() (writer, error)
}

// NewHostFactory returns a factory for buses using settings. Unset fields
// take their defaults.
func NewHostFactory(settings Settings) (*HostFactory, error) {
	settings = settings.WithDefaults()
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	f := &HostFactory{settings: settings}
	f.newReader = f.createReader
	f.newWriter = f.createWriter
	return f, nil
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
func (f *HostFactory) CreateBus(configurator bus.ServiceConfigurator, serviceName string) (bus.Control, error) {
	if configurator == nil {
		return nil, fmt.Errorf("kafka: configurator is required: %w", ErrInvalidSettings)
	}

	groupID := f.settings.GroupID
	if groupID == "" {
		groupID = serviceName
	}
	if groupID == "" {
		groupID = defaultGroupID
	}

	b := &KafkaBus{
		settings:    f.settings,
		serviceName: serviceName,
		groupID:     groupID,
		logger:      f.logger,
		observer:    f.observer,
		tracer:      f.tracer,
		newReader:   f.newReader,
		newWriter:   f.newWriter,
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

type busConfigurator struct {
	bus       *KafkaBus
	endpoints []*receiveEndpoint
	observers bus.Observers
	errs      []error
}

func (c *busConfigurator) ReceiveEndpoint(topic string, consumerLimit int, configure func(bus.EndpointConfigurator)) {
	if topic == "" {
		c.errs = append(c.errs, fmt.Errorf("kafka: receive endpoint needs a topic: %w", ErrInvalidSettings))
		return
	}
	for _, ep := range c.endpoints {
		if ep.topic == topic {
			c.errs = append(c.errs, fmt.Errorf("kafka: topic %q is configured twice: %w", topic, ErrInvalidSettings))
			return
		}
	}
	if consumerLimit <= 0 {
		consumerLimit = bus.DefaultConsumerLimit
	}
	ep := &receiveEndpoint{
		topic:   topic,
		limit:   consumerLimit,
		address: c.bus.settings.Address() + "/" + topic,
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

type receiveEndpoint struct {
	topic    string
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

func (f *HostFactory) dialer() (*kafka.Dialer, error) {
	tlsCfg, err := createTLSConfig(f.settings)
	if err != nil {
		return nil, err
	}
	mechanism, err := createSASLMechanism(f.settings)
	if err != nil {
		return nil, err
	}
	return &kafka.Dialer{
		ClientID:      f.settings.ClientID,
		TLS:           tlsCfg,
		SASLMechanism: mechanism,
		DualStack:     true,
	}, nil
}

func (f *HostFactory) createReader(topic, groupID string) (reader, error) {
	dialer, err := f.dialer()
	if err != nil {
		return nil, err
	}
	startOffset, err := f.settings.startOffset()
	if err != nil {
		return nil, err
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     f.settings.Brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    f.settings.MinBytes,
		MaxBytes:    f.settings.MaxBytes,
		MaxWait:     f.settings.MaxWait,
		StartOffset: startOffset,
		Dialer:      dialer,
		ErrorLogger: f.errorLogger(),
	}), nil
}

func (f *HostFactory) createWriter() (writer, error) {
	tlsCfg, err := createTLSConfig(f.settings)
	if err != nil {
		return nil, err
	}
	mechanism, err := createSASLMechanism(f.settings)
	if err != nil {
		return nil, err
	}
	acks, err := f.settings.requiredAcks()
	if err != nil {
		return nil, err
	}
	compression, err := f.settings.compression()
	if err != nil {
		return nil, err
	}
	return &kafka.Writer{
		Addr:                   kafka.TCP(f.settings.Brokers...),
		Balancer:               &kafka.Hash{},
		MaxAttempts:            f.settings.MaxAttempts,
		WriteTimeout:           f.settings.WriteTimeout,
		RequiredAcks:           acks,
		Compression:            compression,
		AllowAutoTopicCreation: f.settings.AllowAutoTopicCreation,
		ErrorLogger:            f.errorLogger(),
		Transport: &kafka.Transport{
			ClientID: f.settings.ClientID,
			TLS:      tlsCfg,
			SASL:     mechanism,
		},
	}, nil
}

// errorLogger forwards kafka-go's internal errors. The result is a nil
// interface without a logger so kafka-go falls back to discarding them.
func (f *HostFactory) errorLogger() kafka.Logger {
	if f.logger == nil {
		return nil
	}
	return kafka.LoggerFunc(func(msg string, args ...interface{}) {
		f.logger.ErrorWithContext(context.Background(), "Kafka internal error", nil, map[string]interface{}{
			"error": fmt.Sprintf(msg, args...),
		})
	})
}

// createTLSConfig returns nil when TLS is disabled.
func createTLSConfig(s Settings) (*tls.Config, error) {
	if !s.EnableTLS {
		return nil, nil
	}
	cfg := &tls.Config{InsecureSkipVerify: s.InsecureSkipVerify, MinVersion: tls.VersionTLS12}
	if s.CACertPath != "" {
		caCert, err := os.ReadFile(s.CACertPath)
		if err != nil {
			return nil, fmt.Errorf("kafka: read CA cert: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("kafka: no certificates in %s: %w", s.CACertPath, ErrInvalidSettings)
		}
		cfg.RootCAs = pool
	}
	if s.ClientCertPath != "" && s.ClientKeyPath != "" {
		cert, err := tls.LoadX509KeyPair(s.ClientCertPath, s.ClientKeyPath)
		if err != nil {
			return nil, fmt.Errorf("kafka: load client cert: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

// createSASLMechanism returns nil when SASL is disabled.
func createSASLMechanism(s Settings) (sasl.Mechanism, error) {
	switch strings.ToUpper(s.SASLMechanism) {
	case "":
		return nil, nil
	case "PLAIN":
		return plain.Mechanism{Username: s.SASLUsername, Password: s.SASLPassword}, nil
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, s.SASLUsername, s.SASLPassword)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, s.SASLUsername, s.SASLPassword)
	default:
		return nil, fmt.Errorf("kafka: unsupported SASL mechanism %q: %w", s.SASLMechanism, ErrInvalidSettings)
	}
}
