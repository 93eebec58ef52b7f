package configuration

// Provider is a flat, string-keyed settings source.
//
//go:generate mockgen -source=interface.go -destination=mock_provider.go -package=configuration
type Provider interface {
	// TryGetSetting returns the raw value stored under name. found=false means
	// the source has no entry for name; an empty string is a valid value.
	TryGetSetting(name string) (value string, found bool)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(name string) (string, bool)

// TryGetSetting calls f(name).
func (f ProviderFunc) TryGetSetting(name string) (string, bool) {
	return f(name)
}
