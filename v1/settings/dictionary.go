package settings

import (
	"fmt"
	"iter"

	"github.com/Aleph-Alpha/bushost/v1/configuration"
	"github.com/Aleph-Alpha/bushost/v1/mapping"
)

// PropertyKeyDictionary is a read-only view of a configuration.Provider
// restricted to the keys prefix + property name of one schema. The key set is
// fixed at construction; which of those keys currently resolve is read live
// from the source on every call.
type PropertyKeyDictionary struct {
	source configuration.Provider
	keys   []string
	index  map[string]struct{}
}

// NewPropertyKeyDictionary builds the view. An empty prefix means no prefix.
func NewPropertyKeyDictionary(source configuration.Provider, d mapping.Descriptor, prefix string) (*PropertyKeyDictionary, error) {
	if source == nil || d == nil {
		return nil, fmt.Errorf("settings: source and descriptor are required: %w", ErrInvalidArgument)
	}

	names := d.PropertyNames()
	keys := make([]string, 0, len(names))
	index := make(map[string]struct{}, len(names))
	for _, name := range names {
		key := prefix + name
		if _, dup := index[key]; dup {
			continue
		}
		index[key] = struct{}{}
		keys = append(keys, key)
	}

	return &PropertyKeyDictionary{source: source, keys: keys, index: index}, nil
}

// Count returns how many of the fixed keys currently resolve in the source.
func (d *PropertyKeyDictionary) Count() int {
	n := 0
	for _, key := range d.keys {
		if _, ok := d.source.TryGetSetting(key); ok {
			n++
		}
	}
	return n
}

// ContainsKey reports whether key is one of the fixed keys and resolves.
func (d *PropertyKeyDictionary) ContainsKey(key string) bool {
	_, ok := d.TryGetValue(key)
	return ok
}

// TryGetValue returns the source value for key. Keys outside the fixed set
// are never found, even when the source has them.
func (d *PropertyKeyDictionary) TryGetValue(key string) (string, bool) {
	if _, known := d.index[key]; !known {
		return "", false
	}
	return d.source.TryGetSetting(key)
}

// Get returns the value for key or "" when it does not resolve.
func (d *PropertyKeyDictionary) Get(key string) string {
	v, _ := d.TryGetValue(key)
	return v
}

// Lookup implements mapping.Dictionary.
func (d *PropertyKeyDictionary) Lookup(key string) (any, bool) {
	v, ok := d.TryGetValue(key)
	if !ok {
		return nil, false
	}
	return v, true
}

// Contains reports whether key resolves to exactly value.
func (d *PropertyKeyDictionary) Contains(key, value string) bool {
	v, ok := d.TryGetValue(key)
	return ok && v == value
}

// ContainsValue reports whether any resolving key has value.
func (d *PropertyKeyDictionary) ContainsValue(value string) bool {
	for _, v := range d.All() {
		if v == value {
			return true
		}
	}
	return false
}

// All yields the resolving keys and their values in schema order.
func (d *PropertyKeyDictionary) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		for _, key := range d.keys {
			v, ok := d.source.TryGetSetting(key)
			if !ok {
				continue
			}
			if !yield(key, v) {
				return
			}
		}
	}
}

// Keys returns a read-only collection of the resolving keys.
func (d *PropertyKeyDictionary) Keys() *KeyCollection {
	return &KeyCollection{parent: d}
}

// Values returns a read-only collection of the values of the resolving keys.
func (d *PropertyKeyDictionary) Values() *ValueCollection {
	return &ValueCollection{parent: d}
}

// PropertyKeys returns the fixed key set, whether or not each key resolves.
func (d *PropertyKeyDictionary) PropertyKeys() []string {
	return append([]string(nil), d.keys...)
}

func (d *PropertyKeyDictionary) IsReadOnly() bool { return true }
func (d *PropertyKeyDictionary) IsFixedSize() bool { return true }

func (d *PropertyKeyDictionary) Add(key, value string) error { return ErrUnsupportedOperation }
func (d *PropertyKeyDictionary) Set(key, value string) error { return ErrUnsupportedOperation }
func (d *PropertyKeyDictionary) Remove(key string) error     { return ErrUnsupportedOperation }
func (d *PropertyKeyDictionary) Clear() error                { return ErrUnsupportedOperation }

// KeyCollection is the live key view of a PropertyKeyDictionary.
type KeyCollection struct {
	parent *PropertyKeyDictionary
}

func (c *KeyCollection) Count() int { return c.parent.Count() }

func (c *KeyCollection) Contains(key string) bool { return c.parent.ContainsKey(key) }

func (c *KeyCollection) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for k := range c.parent.All() {
			if !yield(k) {
				return
			}
		}
	}
}

func (c *KeyCollection) IsReadOnly() bool { return true }

func (c *KeyCollection) Add(string) error    { return ErrUnsupportedOperation }
func (c *KeyCollection) Remove(string) error { return ErrUnsupportedOperation }
func (c *KeyCollection) Clear() error        { return ErrUnsupportedOperation }

// ValueCollection is the live value view of a PropertyKeyDictionary.
type ValueCollection struct {
	parent *PropertyKeyDictionary
}

func (c *ValueCollection) Count() int { return c.parent.Count() }

func (c *ValueCollection) Contains(value string) bool { return c.parent.ContainsValue(value) }

func (c *ValueCollection) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, v := range c.parent.All() {
			if !yield(v) {
				return
			}
		}
	}
}

func (c *ValueCollection) IsReadOnly() bool { return true }

func (c *ValueCollection) Add(string) error    { return ErrUnsupportedOperation }
func (c *ValueCollection) Remove(string) error { return ErrUnsupportedOperation }
func (c *ValueCollection) Clear() error        { return ErrUnsupportedOperation }
