package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// APIKeyEnvVarName is the environment variable with the Anthropic API key
const APIKeyEnvVarName = "ANTHROPIC_API_KEY" //nolint:gosec

// Environment is the process environment consumed at startup
type Environment struct {
	APIKey    string `env:"ANTHROPIC_API_KEY,required,notEmpty"`
	BaseURL   string `env:"ANTHROPIC_BASE_URL" validate:"omitempty,url"`
	Model     string `env:"DAIRININ_MODEL"`
	MaxTokens int    `env:"DAIRININ_MAX_TOKENS" validate:"gte=0"`
}

// LoadEnvironment parses and validates the environment.
// Absent API key is reported as ErrMissingCredential.
func LoadEnvironment() (*Environment, error) {
	cfg := new(Environment)
	if err := env.Parse(cfg); err != nil {
		if os.Getenv(APIKeyEnvVarName) == "" {
			return nil, errors.Mark(errors.WithMessagef(err, "%s is required", APIKeyEnvVarName), ErrMissingCredential)
		}
		return nil, errors.Mark(errors.WithMessage(err, "invalid environment variables"), ErrConfig)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Mark(errors.WithMessage(err, "invalid environment variables"), ErrConfig)
	}
	return cfg, nil
}
