package llmfactory

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/dairinin/config"
	"github.com/effective-security/dairinin/pkg/llms"
	"github.com/effective-security/dairinin/pkg/llms/anthropic"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/dairinin", "llmfactory")

// ErrUnsupportedProvider is returned for a provider without a client
var ErrUnsupportedProvider = errors.New("unsupported provider")

// NewLLM is a wrapper for CreateLLM to allow for overriding the default implementation.
var NewLLM = CreateLLM

// ProviderConfig for the model client
type ProviderConfig struct {
	// Provider is the type of the provider, ANTHROPIC by default
	Provider llms.ProviderType
	Token    string
	BaseURL  string
	// Model is the model name, the provider default if empty
	Model string
	// MaxTokens limits the response size, the provider default if zero
	MaxTokens int
}

// FromEnvironment returns the provider config,
// non-empty model and maxTokens override the environment.
func FromEnvironment(env *config.Environment, model string, maxTokens int) *ProviderConfig {
	return &ProviderConfig{
		Provider:  llms.ProviderAnthropic,
		Token:     env.APIKey,
		BaseURL:   env.BaseURL,
		Model:     values.StringsCoalesce(model, env.Model),
		MaxTokens: values.NumbersCoalesce(maxTokens, env.MaxTokens),
	}
}

// CreateLLM returns the model client for the provider
func CreateLLM(cfg *ProviderConfig) (llms.Model, error) {
	provider := llms.ProviderType(strings.ToUpper(string(cfg.Provider)))
	switch provider {
	case "", llms.ProviderAnthropic:
		llm, err := anthropic.New(
			anthropic.WithToken(cfg.Token),
			anthropic.WithBaseURL(cfg.BaseURL),
			anthropic.WithModel(cfg.Model),
			anthropic.WithMaxTokens(cfg.MaxTokens),
		)
		if err != nil {
			return nil, err
		}
		logger.KV(xlog.DEBUG,
			"status", "created",
			"provider", llms.ProviderAnthropic,
			"model", llm.GetName(),
		)
		return llm, nil
	default:
		return nil, errors.WithMessagef(ErrUnsupportedProvider, "%s", cfg.Provider)
	}
}
