package langchain

import (
	"github.com/poiesic/ontomap/matcher"
)

// NewFactory wires the four langchain-backed strategies into a registry.
// The config is validated once here; builders share it.
func NewFactory(config *Config) (*matcher.Registry, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	reg := matcher.NewRegistry()
	reg.Register(matcher.StrategyST, func(req matcher.Request) (matcher.Matcher, error) {
		return newSTMatcher(config, req)
	})
	reg.Register(matcher.StrategyLM, func(req matcher.Request) (matcher.Matcher, error) {
		return newLMMatcher(config, req)
	})
	reg.Register(matcher.StrategyRAG, func(req matcher.Request) (matcher.Matcher, error) {
		return newRAGMatcher(config, req)
	})
	reg.Register(matcher.StrategyBIE, func(req matcher.Request) (matcher.Matcher, error) {
		return newBIEMatcher(config, req)
	})
	return reg, nil
}
