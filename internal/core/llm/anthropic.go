package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"

	"github.com/lueurxax/framing-eval/internal/core/errors"
	"github.com/lueurxax/framing-eval/internal/platform/config"
)

// anthropicProvider implements the Provider interface for Anthropic Claude.
type anthropicProvider struct {
	client    anthropic.Client
	apiKey    string
	maxTokens int64
	logger    *zerolog.Logger
}

// NewAnthropicProvider creates a new Anthropic LLM provider.
func NewAnthropicProvider(cfg config.LLMConfig, logger *zerolog.Logger) *anthropicProvider {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &anthropicProvider{
		client:    anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey)),
		apiKey:    cfg.AnthropicAPIKey,
		maxTokens: int64(maxTokens),
		logger:    logger,
	}
}

// Name returns the provider identifier.
func (p *anthropicProvider) Name() ProviderName {
	return ProviderAnthropic
}

// IsAvailable returns true if the provider is configured and available.
func (p *anthropicProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// Complete implements Provider interface.
func (p *anthropicProvider) Complete(ctx context.Context, prompt, model string) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf(errAnthropicCompletion, err)
	}

	if len(resp.Content) == 0 {
		return "", fmt.Errorf(errAnthropicCompletion, errors.ErrEmptyResponse)
	}

	return extractTextFromResponse(resp), nil
}

func extractTextFromResponse(resp *anthropic.Message) string {
	var result strings.Builder

	for _, block := range resp.Content {
		if block.Type == contentTypeText {
			result.WriteString(block.Text)
		}
	}

	return result.String()
}
