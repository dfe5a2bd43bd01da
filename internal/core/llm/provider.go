package llm

import (
	"context"
)

// ProviderName identifies an LLM provider.
type ProviderName string

// Provider name constants.
const (
	ProviderOpenAI    ProviderName = "openai"
	ProviderAnthropic ProviderName = "anthropic"
	ProviderGoogle    ProviderName = "google"
	ProviderMock      ProviderName = "mock"
)

// Provider sends a single-turn prompt to a model and returns its text reply.
type Provider interface {
	// Name returns the provider identifier.
	Name() ProviderName

	// IsAvailable returns true if the provider is configured with a credential.
	IsAvailable() bool

	// Complete returns the model's reply to prompt.
	Complete(ctx context.Context, prompt, model string) (string, error)
}
