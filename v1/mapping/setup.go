package mapping

import (
	"fmt"

	"go.uber.org/fx"
)

// MapperParams groups the dependencies of NewObjectMapper.
type MapperParams struct {
	fx.In

	Config Config          `optional:"true"`
	Cache  *ConverterCache `optional:"true"`
}

// NewObjectMapper builds the ObjectMapper selected by the config. The
// converter strategy needs a cache; one is created when none is supplied.
func NewObjectMapper(p MapperParams) (ObjectMapper, error) {
	switch p.Config.Strategy {
	case "", StrategyConverter:
		cache := p.Cache
		if cache == nil {
			var err error
			if cache, err = NewConverterCache(DefaultBuilder{}); err != nil {
				return nil, err
			}
		}
		return NewConverterMapper(cache)
	case StrategyBinding:
		return NewBindingMapper(), nil
	default:
		return nil, fmt.Errorf("mapping: unknown strategy %q: %w", p.Config.Strategy, ErrInvalidArgument)
	}
}

func newDefaultCache() (*ConverterCache, error) {
	return NewConverterCache(DefaultBuilder{})
}
