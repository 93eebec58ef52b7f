package mapping

const (
	// StrategyConverter maps through compiled, cached converters.
	StrategyConverter = "converter"

	// StrategyBinding maps by binding property values with mapstructure.
	StrategyBinding = "binding"
)

// Config selects the ObjectMapper implementation provided by FXModule.
type Config struct {
	// Strategy is StrategyConverter (the default when empty) or StrategyBinding.
	Strategy string `yaml:"strategy" envconfig:"MAPPING_STRATEGY"`
}
