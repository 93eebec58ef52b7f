package configuration

import (
	"fmt"
	"os"
	"strings"
)

// MapProvider serves settings from an in-memory map.
type MapProvider map[string]string

// TryGetSetting looks name up in the map.
func (m MapProvider) TryGetSetting(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

// EnvProvider reads settings from environment variables. A key such as
// "RabbitMQ.Host" with prefix "APP" is read from APP_RABBITMQ_HOST.
type EnvProvider struct {
	prefix string
	lookup func(string) (string, bool)
}

// NewEnvProvider returns an EnvProvider reading the process environment.
func NewEnvProvider(prefix string) *EnvProvider {
	return &EnvProvider{prefix: prefix, lookup: os.LookupEnv}
}

// TryGetSetting reads the variable EnvName(name).
func (p *EnvProvider) TryGetSetting(name string) (string, bool) {
	return p.lookup(p.EnvName(name))
}

var envReplacer = strings.NewReplacer(".", "_", ":", "_", "-", "_")

// EnvName translates a settings key into the environment variable name.
func (p *EnvProvider) EnvName(name string) string {
	key := strings.ToUpper(envReplacer.Replace(name))
	if p.prefix == "" {
		return key
	}
	return strings.ToUpper(envReplacer.Replace(p.prefix)) + "_" + key
}

// ChainProvider queries its sources in order and returns the first answer.
type ChainProvider struct {
	sources []Provider
}

// NewChainProvider chains sources. Nil sources are rejected.
func NewChainProvider(sources ...Provider) (*ChainProvider, error) {
	for i, s := range sources {
		if s == nil {
			return nil, fmt.Errorf("configuration: source %d is nil: %w", i, ErrInvalidArgument)
		}
	}
	return &ChainProvider{sources: append([]Provider(nil), sources...)}, nil
}

func (c *ChainProvider) TryGetSetting(name string) (string, bool) {
	for _, s := range c.sources {
		if v, ok := s.TryGetSetting(name); ok {
			return v, true
		}
	}
	return "", false
}

// Len returns the number of chained sources.
func (c *ChainProvider) Len() int {
	return len(c.sources)
}
