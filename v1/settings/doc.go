// Package settings resolves typed settings objects.
//
// A Provider[T] returns settings of type T and reports whether any were found.
// ConfigurationProvider[T] reads them from a configuration.Provider: it builds
// a PropertyKeyDictionary over the schema's prefixed keys and, when at least
// one key resolves, maps the view onto a new T. OptionsProvider[T] serves a
// configured in-memory snapshot and always reports found.
//
// Providers are registered in a container and looked up through a Resolver:
//
//	services := container.NewCollection()
//	_ = settings.AddConfigurationProvider(services, rabbit.SettingsSchema)
//	...
//	cfg, found, err := settings.TryGetSettingsWithPrefix[rabbit.Settings](resolver, "RabbitMQ.")
package settings
