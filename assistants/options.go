package assistants

import (
	"github.com/effective-security/dairinin/pkg/llms"
)

const (
	// DefaultName is the name used in logs and metrics
	DefaultName = "dairinin"
	// DefaultWebSearchMaxUses limits web searches per request
	DefaultWebSearchMaxUses = 5
)

// Option is a function that can be used to modify the behavior of the Assistant Config.
type Option func(*Config)

type Config struct {
	// Name is the name of the Assistant
	Name string

	// Model is the model to use in an LLM call.
	Model string

	// MaxTokens is the maximum number of tokens to generate to use in an LLM call.
	MaxTokens int

	// Temperature is the temperature for sampling to use in an LLM call, between 0 and 1.
	Temperature float64

	// WebSearchMaxUses enables the hosted web search tool when greater than zero
	WebSearchMaxUses int

	// CallbackHandler is the callback handler for the turn events
	CallbackHandler Callback
}

func NewConfig(opts ...Option) *Config {
	cfg := &Config{
		Name:             DefaultName,
		WebSearchMaxUses: DefaultWebSearchMaxUses,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithName sets the name of the Assistant
func WithName(name string) Option {
	return func(o *Config) {
		o.Name = name
	}
}

// WithModel is an option for LLM.Call.
func WithModel(model string) Option {
	return func(o *Config) {
		o.Model = model
	}
}

// WithMaxTokens is an option for LLM.Call.
func WithMaxTokens(maxTokens int) Option {
	return func(o *Config) {
		o.MaxTokens = maxTokens
	}
}

// WithTemperature is an option for LLM.Call.
func WithTemperature(temperature float64) Option {
	return func(o *Config) {
		o.Temperature = temperature
	}
}

// WithWebSearch enables the hosted web search tool,
// zero disables it.
func WithWebSearch(maxUses int) Option {
	return func(o *Config) {
		o.WebSearchMaxUses = maxUses
	}
}

// WithCallback allows setting a custom Callback Handler.
func WithCallback(callbackHandler Callback) Option {
	return func(o *Config) {
		o.CallbackHandler = callbackHandler
	}
}

// GetCallOptions returns options for LLM call
func (c *Config) GetCallOptions() []llms.CallOption {
	var opts []llms.CallOption
	if c.Model != "" {
		opts = append(opts, llms.WithModel(c.Model))
	}
	if c.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(c.MaxTokens))
	}
	if c.Temperature > 0 {
		opts = append(opts, llms.WithTemperature(c.Temperature))
	}
	return opts
}
