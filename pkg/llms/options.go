package llms

import (
	"github.com/invopop/jsonschema"
)

// MetadataUserID is the metadata key of the opaque end user identifier
const MetadataUserID = "user_id"

// CallOption is a function that configures a CallOptions.
type CallOption func(*CallOptions)

// CallOptions is a set of options for calling models. Not all models support
// all options.
type CallOptions struct {
	// Model is the model to use.
	Model string
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int
	// Temperature is the temperature for sampling, between 0 and 1.
	Temperature float64
	// SystemPrompt is the fixed instruction sent with every request.
	SystemPrompt string

	// Tools is a list of tools the model may request.
	Tools []Tool
	// WebSearchMaxUses enables the provider hosted web search tool
	// when greater than zero.
	WebSearchMaxUses int

	// Metadata is a map of metadata to include in the request.
	// The meaning of this field is specific to the backend in use,
	// Anthropic accepts MetadataUserID.
	Metadata map[string]any
}

// Tool is a tool that can be used by the model.
type Tool struct {
	// Type is the type of the tool.
	Type string `json:"type"`
	// Function is the function to call.
	Function *FunctionDefinition `json:"function,omitempty"`
}

// FunctionDefinition is a definition of a function that can be called by the model.
type FunctionDefinition struct {
	// Name is the name of the function.
	Name string `json:"name"`
	// Description is a description of the function.
	Description string `json:"description"`
	// Parameters is the JSON schema of the function input.
	Parameters *jsonschema.Schema `json:"parameters,omitempty"`
}

// WithModel specifies which model name to use.
func WithModel(model string) CallOption {
	return func(o *CallOptions) {
		o.Model = model
	}
}

// WithMaxTokens specifies the max number of tokens to generate.
func WithMaxTokens(maxTokens int) CallOption {
	return func(o *CallOptions) {
		o.MaxTokens = maxTokens
	}
}

// WithTemperature specifies the model temperature, a hyperparameter that
// regulates the randomness, or creativity, of the AI's responses.
func WithTemperature(temperature float64) CallOption {
	return func(o *CallOptions) {
		o.Temperature = temperature
	}
}

// WithSystemPrompt specifies the system instruction.
func WithSystemPrompt(prompt string) CallOption {
	return func(o *CallOptions) {
		o.SystemPrompt = prompt
	}
}

// WithTools will add an option to set the tools to use.
func WithTools(tools []Tool) CallOption {
	return func(o *CallOptions) {
		o.Tools = tools
	}
}

// WithWebSearch enables the hosted web search tool, limited to maxUses per request.
func WithWebSearch(maxUses int) CallOption {
	return func(o *CallOptions) {
		o.WebSearchMaxUses = maxUses
	}
}

// WithMetadata will add an option to set metadata to include in the request.
// The meaning of this field is specific to the backend in use.
func WithMetadata(metadata map[string]any) CallOption {
	return func(o *CallOptions) {
		o.Metadata = metadata
	}
}

// NewCallOptions applies the options in order.
func NewCallOptions(options ...CallOption) *CallOptions {
	opts := &CallOptions{}
	for _, opt := range options {
		opt(opts)
	}
	return opts
}
