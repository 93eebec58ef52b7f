package mapping

import "fmt"

// DictionaryValueProvider reads property values from a keyed source, looking
// each property up under prefix + name.
//
// Supported sources are map[string]any, map[string]string, map[any]any and any
// Dictionary. For map[any]any a stored nil is treated as missing.
type DictionaryValueProvider struct {
	lookup func(key string) (any, bool)
	prefix string
}

// NewDictionaryValueProvider wraps source. It fails with ErrInvalidArgument
// for a nil source or one of an unsupported type.
func NewDictionaryValueProvider(source any, prefix string) (*DictionaryValueProvider, error) {
	var lookup func(key string) (any, bool)

	switch s := source.(type) {
	case nil:
		return nil, fmt.Errorf("mapping: source is nil: %w", ErrInvalidArgument)
	case Dictionary:
		lookup = s.Lookup
	case map[string]any:
		lookup = func(key string) (any, bool) {
			v, ok := s[key]
			return v, ok
		}
	case map[string]string:
		lookup = func(key string) (any, bool) {
			v, ok := s[key]
			if !ok {
				return nil, false
			}
			return v, true
		}
	case map[any]any:
		lookup = func(key string) (any, bool) {
			v, ok := s[key]
			if !ok || v == nil {
				return nil, false
			}
			return v, true
		}
	default:
		return nil, fmt.Errorf("mapping: unsupported source type %T: %w", source, ErrInvalidArgument)
	}

	return &DictionaryValueProvider{lookup: lookup, prefix: prefix}, nil
}

// Prefix returns the key prefix applied to every lookup.
func (p *DictionaryValueProvider) Prefix() string {
	return p.prefix
}

// TryGetValue looks up prefix + name.
func (p *DictionaryValueProvider) TryGetValue(name string) (any, bool) {
	return p.lookup(p.prefix + name)
}

// TryGetValueAs is the typed variant of ValueProvider.TryGetValue. It reports
// found=false when the stored value is not a V, even though the key exists.
func TryGetValueAs[V any](p ValueProvider, name string) (V, bool) {
	var zero V
	if p == nil {
		return zero, false
	}
	raw, ok := p.TryGetValue(name)
	if !ok {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		return zero, false
	}
	return v, true
}
