package llm

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/lueurxax/framing-eval/internal/core/errors"
	"github.com/lueurxax/framing-eval/internal/platform/config"
	"github.com/lueurxax/framing-eval/internal/platform/observability"
)

// Registry routes a model identifier to the provider that serves it. It is
// built once at startup with credentials from config and passed to the
// evaluation runner as its model client.
type Registry struct {
	mu        sync.RWMutex
	providers map[ProviderName]Provider
	limiter   *rate.Limiter
	timeout   time.Duration
	logger    *zerolog.Logger
}

// NewRegistry creates an empty registry. rps <= 0 disables rate limiting and
// timeout <= 0 leaves requests bounded only by the caller's context.
func NewRegistry(rps float64, timeout time.Duration, logger *zerolog.Logger) *Registry {
	var limiter *rate.Limiter
	if rps > 0 {
		limiter = rate.NewLimiter(rate.Limit(rps), rateLimiterBurst)
	}

	return &Registry{
		providers: make(map[ProviderName]Provider),
		limiter:   limiter,
		timeout:   timeout,
		logger:    logger,
	}
}

// NewDefaultRegistry registers every built-in provider configured from cfg.
func NewDefaultRegistry(ctx context.Context, cfg config.LLMConfig, logger *zerolog.Logger) (*Registry, error) {
	r := NewRegistry(cfg.RateLimitRPS, cfg.RequestTimeout, logger)

	r.Register(NewOpenAIProvider(cfg, logger))
	r.Register(NewAnthropicProvider(cfg, logger))

	google, err := NewGoogleProvider(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	r.Register(google)
	r.Register(NewMockProvider())

	return r, nil
}

// Register adds a provider, replacing any previous one with the same name.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[p.Name()] = p

	r.logger.Debug().
		Str(logKeyProvider, string(p.Name())).
		Bool("available", p.IsAvailable()).
		Msg("registered LLM provider")
}

// Route returns the provider name a model identifier is served by.
func Route(model string) ProviderName {
	m := strings.ToLower(strings.TrimSpace(model))

	switch {
	case m == modelMock:
		return ProviderMock
	case strings.HasPrefix(m, modelPrefixClaude):
		return ProviderAnthropic
	case strings.HasPrefix(m, modelPrefixGemini):
		return ProviderGoogle
	default:
		return ProviderOpenAI
	}
}

func (r *Registry) provider(model string) (Provider, error) {
	name := Route(model)

	r.mu.RLock()
	p, ok := r.providers[name]
	r.mu.RUnlock()

	if !ok || !p.IsAvailable() {
		return nil, fmt.Errorf("%w: %s for model %q", errors.ErrProviderUnavailable, name, model)
	}

	return p, nil
}

// Check fails when the provider serving model is missing or has no credential.
// Callers use it to fail fast before a batch starts.
func (r *Registry) Check(model string) error {
	_, err := r.provider(model)
	return err
}

// Complete sends prompt to the provider that serves model.
func (r *Registry) Complete(ctx context.Context, prompt, model string) (string, error) {
	p, err := r.provider(model)
	if err != nil {
		return "", err
	}

	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf(errRateLimiter, err)
		}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := p.Complete(ctx, prompt, model)

	observability.LLMRequestDuration.WithLabelValues(model).Observe(time.Since(start).Seconds())

	if err != nil {
		observability.LLMRequests.WithLabelValues(string(p.Name()), observability.StatusError).Inc()

		return "", err
	}

	observability.LLMRequests.WithLabelValues(string(p.Name()), observability.StatusSuccess).Inc()

	return text, nil
}

// Close releases provider resources.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for name, p := range r.providers {
		if closer, ok := p.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				return fmt.Errorf("closing %s provider: %w", name, err)
			}
		}
	}

	return nil
}
