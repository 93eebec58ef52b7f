package settings

// Provider returns typed settings. found=false is always paired with the
// zero value and a nil error.
//
// This interface is implemented by *ConfigurationProvider[T] and
// *OptionsProvider[T].
type Provider[T any] interface {
	TryGetSettings() (settings T, found bool, err error)

	// TryGetSettingsWithPrefix reads the settings under prefix. An empty prefix
	// behaves like TryGetSettings.
	TryGetSettingsWithPrefix(prefix string) (settings T, found bool, err error)
}
