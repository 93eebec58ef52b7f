package configuration

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// ConnectionString is one entry of the connectionStrings section.
type ConnectionString struct {
	ConnectionString string `yaml:"connectionString"`
	ProviderName     string `yaml:"providerName"`
}

type document struct {
	Sections          map[string]map[string]string `yaml:",inline"`
	ConnectionStrings map[string]ConnectionString  `yaml:"connectionStrings"`
}

// FileProvider serves settings from a YAML document made of named sections.
// Flat settings come from the default section, "appSettings" unless changed
// with SetDefaultSectionName.
//
//	appSettings:
//	  RabbitMQ.Host: broker.internal
//	  RabbitMQ.Port: "5672"
//	connectionStrings:
//	  orders:
//	    connectionString: postgres://orders
//	    providerName: pgx
type FileProvider struct {
	mu          sync.RWMutex
	sectionName string
	doc         document
}

// NewFileProvider reads and parses the YAML file at path.
func NewFileProvider(path string) (*FileProvider, error) {
	if path == "" {
		return nil, fmt.Errorf("configuration: file path is empty: %w", ErrInvalidArgument)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("configuration: reading %s: %w", path, err)
	}
	return ParseFileProvider(data)
}

// ParseFileProvider parses an in-memory YAML document.
func ParseFileProvider(data []byte) (*FileProvider, error) {
	var doc document
	if len(bytes.TrimSpace(data)) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("configuration: %w: %w", ErrInvalidDocument, err)
		}
	}
	return &FileProvider{sectionName: DefaultSectionName, doc: doc}, nil
}

// DefaultSectionName returns the section flat settings are read from.
func (p *FileProvider) DefaultSectionName() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sectionName
}

// SetDefaultSectionName changes the section flat settings are read from.
func (p *FileProvider) SetDefaultSectionName(name string) error {
	if name == "" {
		return fmt.Errorf("configuration: section name is empty: %w", ErrInvalidArgument)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sectionName = name
	return nil
}

func (p *FileProvider) TryGetSetting(name string) (string, bool) {
	section, ok := p.TryGetNameValueSection(p.DefaultSectionName())
	if !ok {
		return "", false
	}
	v, ok := section[name]
	return v, ok
}

// GetSection returns the named section, or nil when it does not exist.
func (p *FileProvider) GetSection(name string) map[string]string {
	section, _ := p.TryGetNameValueSection(name)
	return section
}

// TryGetNameValueSection returns a copy of a flat name/value section.
func (p *FileProvider) TryGetNameValueSection(name string) (map[string]string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	section, ok := p.doc.Sections[name]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(section))
	for k, v := range section {
		out[k] = v
	}
	return out, true
}

// TryGetConnectionString looks up a named connection string.
func (p *FileProvider) TryGetConnectionString(name string) (ConnectionString, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	cs, ok := p.doc.ConnectionStrings[name]
	return cs, ok
}
