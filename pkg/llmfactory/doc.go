// Package llmfactory creates the model client for the configured provider.
package llmfactory
