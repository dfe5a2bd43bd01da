package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"github.com/lueurxax/framing-eval/internal/core/errors"
	"github.com/lueurxax/framing-eval/internal/platform/config"
)

// sanitizeUTF8 replaces invalid UTF-8 sequences, which Google's protobuf API rejects.
func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}

	return strings.ToValidUTF8(s, string(utf8.RuneError))
}

// googleProvider implements the Provider interface for Google Gemini.
type googleProvider struct {
	client *genai.Client
	logger *zerolog.Logger
}

// NewGoogleProvider creates a new Google Gemini LLM provider. Without an API
// key the provider is registered but reports itself unavailable.
func NewGoogleProvider(ctx context.Context, cfg config.LLMConfig, logger *zerolog.Logger) (*googleProvider, error) {
	if cfg.GoogleAPIKey == "" {
		return &googleProvider{logger: logger}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GoogleAPIKey))
	if err != nil {
		return nil, fmt.Errorf("creating google genai client: %w", err)
	}

	return &googleProvider{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Google client.
func (p *googleProvider) Close() error {
	if p.client != nil {
		if err := p.client.Close(); err != nil {
			return fmt.Errorf("closing google genai client: %w", err)
		}
	}

	return nil
}

// Name returns the provider identifier.
func (p *googleProvider) Name() ProviderName {
	return ProviderGoogle
}

// IsAvailable returns true if the provider is configured and available.
func (p *googleProvider) IsAvailable() bool {
	return p.client != nil
}

// Complete implements Provider interface.
func (p *googleProvider) Complete(ctx context.Context, prompt, model string) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf(errGoogleGenAICompletion, errors.ErrProviderUnavailable)
	}

	genModel := p.client.GenerativeModel(model)

	resp, err := genModel.GenerateContent(ctx, genai.Text(sanitizeUTF8(prompt)))
	if err != nil {
		return "", fmt.Errorf(errGoogleGenAICompletion, err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf(errGoogleGenAICompletion, errors.ErrEmptyResponse)
	}

	return extractGoogleResponseText(resp), nil
}

func extractGoogleResponseText(resp *genai.GenerateContentResponse) string {
	var result strings.Builder

	for _, candidate := range resp.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					result.WriteString(string(text))
				}
			}
		}
	}

	return result.String()
}
