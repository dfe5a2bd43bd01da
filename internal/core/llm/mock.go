package llm

import (
	"context"
)

// mockProvider answers every prompt affirmatively. It exercises the whole
// pipeline without network access (model "mock").
type mockProvider struct{}

// NewMockProvider creates a new mock LLM provider.
func NewMockProvider() *mockProvider {
	return &mockProvider{}
}

// Name returns the provider identifier.
func (p *mockProvider) Name() ProviderName {
	return ProviderMock
}

// IsAvailable returns true as mock is always available.
func (p *mockProvider) IsAvailable() bool {
	return true
}

// Complete implements Provider interface.
func (p *mockProvider) Complete(_ context.Context, _, _ string) (string, error) {
	return mockAnswer, nil
}
