package anthropic

import (
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	TokenEnvVarName = "ANTHROPIC_API_KEY" //nolint:gosec
)

type Options struct {
	Token          string
	Model          string
	MaxTokens      int
	BaseURL        string
	HttpClient     option.HTTPClient
	RequestTimeout time.Duration
}

type Option func(*Options)

// WithToken passes the Anthropic API token to the client. If not set, the token
// is read from the ANTHROPIC_API_KEY environment variable.
func WithToken(token string) Option {
	return func(opts *Options) {
		opts.Token = token
	}
}

// WithModel passes the Anthropic model to the client.
func WithModel(model string) Option {
	return func(opts *Options) {
		if model != "" {
			opts.Model = model
		}
	}
}

// WithMaxTokens sets the default limit of generated tokens per request.
func WithMaxTokens(maxTokens int) Option {
	return func(opts *Options) {
		if maxTokens > 0 {
			opts.MaxTokens = maxTokens
		}
	}
}

// WithBaseUrl passes the Anthropic base URL to the client.
// If not set, the default base URL is used.
func WithBaseURL(baseURL string) Option {
	return func(opts *Options) {
		if baseURL != "" {
			opts.BaseURL = baseURL
		}
	}
}

// WithHTTPClient allows setting a custom HTTP client. If not set, the default value
// is http.DefaultClient.
func WithHTTPClient(client option.HTTPClient) Option {
	return func(opts *Options) {
		opts.HttpClient = client
	}
}

// WithRequestTimeout limits the duration of a single request.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(opts *Options) {
		opts.RequestTimeout = timeout
	}
}
