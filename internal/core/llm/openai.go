package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/lueurxax/framing-eval/internal/core/errors"
	"github.com/lueurxax/framing-eval/internal/platform/config"
)

type openaiProvider struct {
	client    *openai.Client
	available bool
	logger    *zerolog.Logger
}

// NewOpenAIProvider creates a provider for the OpenAI chat completions API or
// any endpoint compatible with it (OPENAI_BASE_URL).
func NewOpenAIProvider(cfg config.LLMConfig, logger *zerolog.Logger) *openaiProvider {
	clientCfg := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientCfg.BaseURL = cfg.OpenAIBaseURL
	}

	return &openaiProvider{
		client:    openai.NewClientWithConfig(clientCfg),
		available: cfg.OpenAIAPIKey != "" || cfg.OpenAIBaseURL != "",
		logger:    logger,
	}
}

// Name returns the provider identifier.
func (p *openaiProvider) Name() ProviderName {
	return ProviderOpenAI
}

// IsAvailable returns true if an API key or a custom endpoint is configured.
func (p *openaiProvider) IsAvailable() bool {
	return p.available
}

// Complete implements Provider interface.
func (p *openaiProvider) Complete(ctx context.Context, prompt, model string) (string, error) {
	if model == "" {
		model = openai.GPT4oMini
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf(errOpenAIChatCompletion, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf(errOpenAIChatCompletion, errors.ErrEmptyResponse)
	}

	content := resp.Choices[0].Message.Content
	p.logger.Debug().Str(logKeyModel, model).Str("content", content).Msg("LLM response")

	return content, nil
}
