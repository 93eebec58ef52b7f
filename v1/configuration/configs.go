package configuration

const (
	// DefaultSectionName is the section FileProvider reads flat settings from.
	DefaultSectionName = "appSettings"

	// ConnectionStringsSection holds named connection strings.
	ConnectionStringsSection = "connectionStrings"
)

// Config describes the sources FXModule chains together. Sources are queried
// in the order file, environment, static values; the first one that knows a
// key answers.
type Config struct {
	// FilePath points to a YAML settings file. Empty disables the file source.
	FilePath string `yaml:"file_path" envconfig:"BUSHOST_SETTINGS_FILE"`

	// SectionName overrides DefaultSectionName for the file source.
	SectionName string `yaml:"section_name" envconfig:"BUSHOST_SETTINGS_SECTION"`

	// EnvPrefix enables the environment source when not empty. Keys are
	// translated by EnvProvider.
	EnvPrefix string `yaml:"env_prefix" envconfig:"BUSHOST_ENV_PREFIX"`

	// EnableEnv enables the environment source without a prefix.
	EnableEnv bool `yaml:"enable_env" envconfig:"BUSHOST_ENABLE_ENV"`

	// Values are static settings consulted last.
	Values map[string]string `yaml:"values"`
}
