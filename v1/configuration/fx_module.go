package configuration

import "go.uber.org/fx"

// FXModule provides a configuration.Provider assembled from a
// configuration.Config.
//
//	app := fx.New(
//	    configuration.FXModule,
//	    fx.Supply(configuration.Config{
//	        FilePath:  "settings.yaml",
//	        EnvPrefix: "ORDERS",
//	    }),
//	)
var FXModule = fx.Module("configuration",
	fx.Provide(NewProvider),
)

// NewProvider builds the source chain described by cfg: file, then
// environment, then static values. A config with no sources yields an
// empty chain that answers nothing.
func NewProvider(cfg Config) (Provider, error) {
	var sources []Provider

	if cfg.FilePath != "" {
		file, err := NewFileProvider(cfg.FilePath)
		if err != nil {
			return nil, err
		}
		if cfg.SectionName != "" {
			if err := file.SetDefaultSectionName(cfg.SectionName); err != nil {
				return nil, err
			}
		}
		sources = append(sources, file)
	}

	if cfg.EnvPrefix != "" || cfg.EnableEnv {
		sources = append(sources, NewEnvProvider(cfg.EnvPrefix))
	}

	if len(cfg.Values) > 0 {
		sources = append(sources, MapProvider(cfg.Values))
	}

	return NewChainProvider(sources...)
}
