package kafka

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Aleph-Alpha/bushost/v1/mapping"
)

// SettingsPrefix is the key prefix Kafka settings are read under, e.g. "Kafka.Brokers".
const SettingsPrefix = "Kafka."

const (
	defaultBroker       = "localhost:9092"
	defaultGroupID      = "bushost"
	defaultMinBytes     = 1
	defaultMaxBytes     = 10_000_000
	defaultMaxWait      = 500 * time.Millisecond
	defaultWriteTimeout = 10 * time.Second
	defaultMaxAttempts  = 10
	defaultContentType  = "application/octet-stream"
)

// Header names used to carry bus message fields.
const (
	HeaderMessageID   = "message-id"
	HeaderContentType = "content-type"
)

// Settings holds the connection parameters of the Kafka transport. A receive
// endpoint's queue name is the topic it consumes.
type Settings struct {
	// Brokers are the bootstrap brokers, "host:port".
	Brokers []string

	// GroupID is the consumer group of every endpoint. Defaults to the service
	// name, or "bushost" without one.
	GroupID string

	ClientID string

	MinBytes int
	MaxBytes int
	MaxWait  time.Duration

	// StartOffset is "first" or "last" and applies to groups without a
	// committed offset. Defaults to "first".
	StartOffset string

	// RequiredAcks is "all", "one" or "none". Defaults to "all".
	RequiredAcks string

	// Compression is one of gzip, snappy, lz4 or zstd. Empty disables it.
	Compression string

	WriteTimeout time.Duration
	MaxAttempts  int

	EnableTLS          bool
	InsecureSkipVerify bool
	CACertPath         string
	ClientCertPath     string
	ClientKeyPath      string

	// SASLMechanism is PLAIN, SCRAM-SHA-256 or SCRAM-SHA-512. Empty disables SASL.
	SASLMechanism string
	SASLUsername  string
	SASLPassword  string

	// AllowAutoTopicCreation lets Publish create missing topics.
	AllowAutoTopicCreation bool

	ContentType string
}

// SettingsSchema lists the properties read from configuration.
var SettingsSchema = mapping.NewSchema("KafkaSettings",
	mapping.StringSlice("Brokers", func(s *Settings, v []string) { s.Brokers = v }),
	mapping.String("GroupID", func(s *Settings, v string) { s.GroupID = v }),
	mapping.String("ClientID", func(s *Settings, v string) { s.ClientID = v }),
	mapping.Int("MinBytes", func(s *Settings, v int) { s.MinBytes = v }),
	mapping.Int("MaxBytes", func(s *Settings, v int) { s.MaxBytes = v }),
	mapping.Duration("MaxWait", func(s *Settings, v time.Duration) { s.MaxWait = v }),
	mapping.String("StartOffset", func(s *Settings, v string) { s.StartOffset = v }),
	mapping.String("RequiredAcks", func(s *Settings, v string) { s.RequiredAcks = v }),
	mapping.String("Compression", func(s *Settings, v string) { s.Compression = v }),
	mapping.Duration("WriteTimeout", func(s *Settings, v time.Duration) { s.WriteTimeout = v }),
	mapping.Int("MaxAttempts", func(s *Settings, v int) { s.MaxAttempts = v }),
	mapping.Bool("EnableTLS", func(s *Settings, v bool) { s.EnableTLS = v }),
	mapping.Bool("InsecureSkipVerify", func(s *Settings, v bool) { s.InsecureSkipVerify = v }),
	mapping.String("CACertPath", func(s *Settings, v string) { s.CACertPath = v }),
	mapping.String("ClientCertPath", func(s *Settings, v string) { s.ClientCertPath = v }),
	mapping.String("ClientKeyPath", func(s *Settings, v string) { s.ClientKeyPath = v }),
	mapping.String("SASLMechanism", func(s *Settings, v string) { s.SASLMechanism = v }),
	mapping.String("SASLUsername", func(s *Settings, v string) { s.SASLUsername = v }),
	mapping.String("SASLPassword", func(s *Settings, v string) { s.SASLPassword = v }),
	mapping.Bool("AllowAutoTopicCreation", func(s *Settings, v bool) { s.AllowAutoTopicCreation = v }),
	mapping.String("ContentType", func(s *Settings, v string) { s.ContentType = v }),
)

// WithDefaults fills every unset field with its default.
func (s Settings) WithDefaults() Settings {
	if len(s.Brokers) == 0 {
		s.Brokers = []string{defaultBroker}
	}
	if s.MinBytes <= 0 {
		s.MinBytes = defaultMinBytes
	}
	if s.MaxBytes <= 0 {
		s.MaxBytes = defaultMaxBytes
	}
	if s.MaxWait <= 0 {
		s.MaxWait = defaultMaxWait
	}
	if s.StartOffset == "" {
		s.StartOffset = "first"
	}
	if s.RequiredAcks == "" {
		s.RequiredAcks = "all"
	}
	if s.WriteTimeout <= 0 {
		s.WriteTimeout = defaultWriteTimeout
	}
	if s.MaxAttempts <= 0 {
		s.MaxAttempts = defaultMaxAttempts
	}
	if s.ContentType == "" {
		s.ContentType = defaultContentType
	}
	return s
}

// Validate reports settings the transport cannot use.
func (s Settings) Validate() error {
	if _, err := s.startOffset(); err != nil {
		return err
	}
	if _, err := s.requiredAcks(); err != nil {
		return err
	}
	if _, err := s.compression(); err != nil {
		return err
	}
	switch strings.ToUpper(s.SASLMechanism) {
	case "", "PLAIN", "SCRAM-SHA-256", "SCRAM-SHA-512":
	default:
		return fmt.Errorf("kafka: unsupported SASL mechanism %q: %w", s.SASLMechanism, ErrInvalidSettings)
	}
	if s.MinBytes > s.MaxBytes && s.MaxBytes > 0 {
		return fmt.Errorf("kafka: MinBytes exceeds MaxBytes: %w", ErrInvalidSettings)
	}
	return nil
}

// Address identifies the cluster by its first broker.
func (s Settings) Address() string {
	if len(s.Brokers) == 0 {
		return "kafka://"
	}
	return "kafka://" + s.Brokers[0]
}

func (s Settings) startOffset() (int64, error) {
	switch strings.ToLower(s.StartOffset) {
	case "", "first", "earliest":
		return kafka.FirstOffset, nil
	case "last", "latest":
		return kafka.LastOffset, nil
	default:
		return 0, fmt.Errorf("kafka: unknown start offset %q: %w", s.StartOffset, ErrInvalidSettings)
	}
}

func (s Settings) requiredAcks() (kafka.RequiredAcks, error) {
	switch strings.ToLower(s.RequiredAcks) {
	case "", "all":
		return kafka.RequireAll, nil
	case "one":
		return kafka.RequireOne, nil
	case "none":
		return kafka.RequireNone, nil
	default:
		return 0, fmt.Errorf("kafka: unknown required acks %q: %w", s.RequiredAcks, ErrInvalidSettings)
	}
}

func (s Settings) compression() (kafka.Compression, error) {
	switch strings.ToLower(s.Compression) {
	case "", "none":
		return 0, nil
	case "gzip":
		return kafka.Gzip, nil
	case "snappy":
		return kafka.Snappy, nil
	case "lz4":
		return kafka.Lz4, nil
	case "zstd":
		return kafka.Zstd, nil
	default:
		return 0, fmt.Errorf("kafka: unknown compression %q: %w", s.Compression, ErrInvalidSettings)
	}
}

// Logger is the context-aware logging surface of this package. It is
// satisfied by *logger.Logger.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	ErrorWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// Tracer propagates trace context through message headers. It is satisfied
// by *tracer.Tracer.
type Tracer interface {
	GetCarrier(ctx context.Context) map[string]string
	SetCarrierOnContext(ctx context.Context, carrier map[string]string) context.Context
}
