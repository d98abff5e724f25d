package llms

import (
	"context"
)

// ProviderType is the type of provider.
type ProviderType string

const (
	// ProviderAnthropic is the type of provider.
	ProviderAnthropic ProviderType = "ANTHROPIC"
)

//go:generate mockgen -source=llms.go -destination=../../mocks/mockllms/llms_mock.gen.go -package mockllms

// Model is an interface the remote completion service implements.
type Model interface {
	// GetName returns the name of the model.
	GetName() string
	// GetProviderType returns the type of provider.
	GetProviderType() ProviderType
	// GenerateContent sends the full message sequence to the model and
	// returns the content blocks of its reply.
	// The service is stateless per call, the caller must resend the
	// whole history every time.
	GenerateContent(ctx context.Context, messages []Message, options ...CallOption) (*ContentResponse, error)
}

// Capability is a bitmask indicating supported features of an LLM provider.
type Capability uint64

const (
	// CapabilityText is basic text or chat generation
	CapabilityText Capability = 1 << iota
	// CapabilityFunctionCalling is function/tool calling
	CapabilityFunctionCalling
	// CapabilitySystemPrompt is system prompt support
	CapabilitySystemPrompt
	// CapabilityThinking is extended thinking blocks in responses
	CapabilityThinking
	// CapabilityWebSearch is the server side web search tool
	CapabilityWebSearch
)

var providerCapabilities = map[ProviderType]Capability{
	ProviderAnthropic: CapabilityText |
		CapabilityFunctionCalling |
		CapabilitySystemPrompt |
		CapabilityThinking |
		CapabilityWebSearch,
}

func ProviderCapabilities(pt ProviderType) Capability {
	return providerCapabilities[pt]
}

func (p ProviderType) Supports(cap Capability) bool {
	return ProviderCapabilities(p)&cap != 0
}
