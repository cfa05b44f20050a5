// Package llm provides centralized LLM configuration and client abstractions.
// Every generation call site in the pipeline goes through the Client interface so it can
// be faked in tests and guarded with a timeout in production.
package llm

import "time"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

// TierStandard is for structured output and personalized messages
const TierStandard ModelTier = "standard"

// Defaults applied when the configuration leaves a value unset.
const (
	DefaultTemperature = 0.7
	DefaultTimeout     = 30 * time.Second
)

// Config holds the Gemini model configuration for the application
type Config struct {
	Models      map[ModelTier]string
	Temperature float32
	Timeout     time.Duration
}

// DefaultConfig returns the default Gemini configuration
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierStandard: "gemini-2.5-flash",
		},
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
}

// GetModel returns the model name for a given tier, falling back to the standard tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	return c.Models[TierStandard]
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := &Config{
		Models:      make(map[ModelTier]string),
		Temperature: c.Temperature,
		Timeout:     c.Timeout,
	}
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return newConfig
}

// Params returns generation parameters for a tier using the configured temperature.
func (c *Config) Params(tier ModelTier) Params {
	return Params{
		Model:       c.GetModel(tier),
		Temperature: c.Temperature,
	}
}
