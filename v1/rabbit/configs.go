package rabbit

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/Aleph-Alpha/bushost/v1/mapping"
)

// SettingsPrefix is the key prefix RabbitMQ settings are read under, e.g. "RabbitMQ.Host".
const SettingsPrefix = "RabbitMQ."

const (
	defaultHost        = "localhost"
	defaultPort        = 5672
	defaultSSLPort     = 5671
	defaultVirtualHost = "/"
	defaultUsername    = "guest"
	defaultPassword    = "guest"
	defaultHeartbeat   = 10 * time.Second
	defaultContentType = "application/octet-stream"
)

// Settings holds the connection parameters of the RabbitMQ transport.
type Settings struct {
	// Host is the broker hostname. ClusterMembers are tried after it.
	Host string

	// Port defaults to 5672, or 5671 when IsSSLEnabled is set.
	Port uint16

	// VirtualHost defaults to "/".
	VirtualHost string

	Username string
	Password string

	// Heartbeat is the AMQP heartbeat interval. Configuration may give it as a
	// duration ("10s") or as whole seconds ("10").
	Heartbeat time.Duration

	// ClusterMembers are additional broker hosts ("host" or "host:port") used
	// when Host cannot be reached.
	ClusterMembers []string

	// IsSSLEnabled switches to amqps.
	IsSSLEnabled bool

	// UseCert sends the client certificate for mutual TLS.
	UseCert bool

	CACertPath     string
	ClientCertPath string
	ClientKeyPath  string

	// ServerName overrides the name verified against the server certificate.
	ServerName string

	// ContentType is used for published messages that do not set one.
	ContentType string
}

// SettingsSchema lists the properties read from configuration.
var SettingsSchema = mapping.NewSchema("RabbitMqSettings",
	mapping.String("Host", func(s *Settings, v string) { s.Host = v }),
	mapping.Uint16("Port", func(s *Settings, v uint16) { s.Port = v }),
	mapping.String("VirtualHost", func(s *Settings, v string) { s.VirtualHost = v }),
	mapping.String("Username", func(s *Settings, v string) { s.Username = v }),
	mapping.String("Password", func(s *Settings, v string) { s.Password = v }),
	mapping.Duration("Heartbeat", func(s *Settings, v time.Duration) { s.Heartbeat = v }),
	mapping.StringSlice("ClusterMembers", func(s *Settings, v []string) { s.ClusterMembers = v }),
	mapping.Bool("IsSSLEnabled", func(s *Settings, v bool) { s.IsSSLEnabled = v }),
	mapping.Bool("UseCert", func(s *Settings, v bool) { s.UseCert = v }),
	mapping.String("CACertPath", func(s *Settings, v string) { s.CACertPath = v }),
	mapping.String("ClientCertPath", func(s *Settings, v string) { s.ClientCertPath = v }),
	mapping.String("ClientKeyPath", func(s *Settings, v string) { s.ClientKeyPath = v }),
	mapping.String("ServerName", func(s *Settings, v string) { s.ServerName = v }),
	mapping.String("ContentType", func(s *Settings, v string) { s.ContentType = v }),
)

// WithDefaults fills every unset field with its default.
func (s Settings) WithDefaults() Settings {
	if s.Host == "" {
		s.Host = defaultHost
	}
	if s.Port == 0 {
		s.Port = defaultPort
		if s.IsSSLEnabled {
			s.Port = defaultSSLPort
		}
	}
	if s.VirtualHost == "" {
		s.VirtualHost = defaultVirtualHost
	}
	if s.Username == "" {
		s.Username = defaultUsername
		if s.Password == "" {
			s.Password = defaultPassword
		}
	}
	if s.Heartbeat <= 0 {
		s.Heartbeat = defaultHeartbeat
	}
	if s.ContentType == "" {
		s.ContentType = defaultContentType
	}
	return s
}

// Validate reports settings that cannot produce a connection.
func (s Settings) Validate() error {
	if s.UseCert && !s.IsSSLEnabled {
		return fmt.Errorf("rabbit: UseCert requires IsSSLEnabled: %w", ErrInvalidSettings)
	}
	if s.UseCert && (s.ClientCertPath == "" || s.ClientKeyPath == "") {
		return fmt.Errorf("rabbit: UseCert requires ClientCertPath and ClientKeyPath: %w", ErrInvalidSettings)
	}
	return nil
}

// Endpoints returns host:port for Host followed by every cluster member.
func (s Settings) Endpoints() []string {
	port := strconv.Itoa(int(s.Port))
	out := []string{net.JoinHostPort(s.Host, port)}
	for _, member := range s.ClusterMembers {
		if _, _, err := net.SplitHostPort(member); err == nil {
			out = append(out, member)
			continue
		}
		out = append(out, net.JoinHostPort(member, port))
	}
	return out
}

// URL returns the AMQP URL for endpoint including credentials.
func (s Settings) URL(endpoint string) string {
	u := url.URL{
		Scheme: s.scheme(),
		User:   url.UserPassword(s.Username, s.Password),
		Host:   endpoint,
	}
	s.setPath(&u)
	return u.String()
}

// Address identifies the broker without credentials.
func (s Settings) Address() string {
	u := url.URL{
		Scheme: s.scheme(),
		Host:   net.JoinHostPort(s.Host, strconv.Itoa(int(s.Port))),
	}
	s.setPath(&u)
	return u.String()
}

// setPath encodes the virtual host as the single path segment, so "/" becomes "%2F".
func (s Settings) setPath(u *url.URL) {
	u.Path = "/" + s.VirtualHost
	u.RawPath = "/" + url.PathEscape(s.VirtualHost)
}

func (s Settings) scheme() string {
	if s.IsSSLEnabled {
		return "amqps"
	}
	return "amqp"
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
