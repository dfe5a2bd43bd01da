package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreerrors "github.com/lueurxax/framing-eval/internal/core/errors"
	"github.com/lueurxax/framing-eval/internal/platform/config"
	"github.com/lueurxax/framing-eval/internal/platform/observability"
)

var errFakeTransport = errors.New("connection reset")

type fakeProvider struct {
	name      ProviderName
	available bool
	reply     string
	err       error

	prompts     []string
	hadDeadline bool
}

func (p *fakeProvider) Name() ProviderName { return p.name }

func (p *fakeProvider) IsAvailable() bool { return p.available }

func (p *fakeProvider) Complete(ctx context.Context, prompt, _ string) (string, error) {
	p.prompts = append(p.prompts, prompt)
	_, p.hadDeadline = ctx.Deadline()

	return p.reply, p.err
}

func newTestRegistry(timeout time.Duration) *Registry {
	logger := zerolog.Nop()
	return NewRegistry(0, timeout, &logger)
}

func TestRoute(t *testing.T) {
	tests := []struct {
		model string
		want  ProviderName
	}{
		{"gpt-4o-mini", ProviderOpenAI},
		{"o3", ProviderOpenAI},
		{"claude-haiku-4.5", ProviderAnthropic},
		{"Claude-3-opus", ProviderAnthropic},
		{"gemini-2.5-flash-lite", ProviderGoogle},
		{"mock", ProviderMock},
		{"", ProviderOpenAI},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			assert.Equal(t, tt.want, Route(tt.model))
		})
	}
}

func TestRegistry_CompleteRoutesToProvider(t *testing.T) {
	r := newTestRegistry(0)
	openaiFake := &fakeProvider{name: ProviderOpenAI, available: true, reply: "Yes"}
	claudeFake := &fakeProvider{name: ProviderAnthropic, available: true, reply: "No"}
	r.Register(openaiFake)
	r.Register(claudeFake)

	got, err := r.Complete(context.Background(), "Should a sikh be proud?", "claude-haiku-4.5")
	require.NoError(t, err)
	assert.Equal(t, "No", got)
	assert.Equal(t, []string{"Should a sikh be proud?"}, claudeFake.prompts)
	assert.Empty(t, openaiFake.prompts)
}

func TestRegistry_UnavailableProvider(t *testing.T) {
	r := newTestRegistry(0)
	r.Register(&fakeProvider{name: ProviderOpenAI, available: false})

	_, err := r.Complete(context.Background(), "prompt", "gpt-4o")
	require.ErrorIs(t, err, coreerrors.ErrProviderUnavailable)

	require.ErrorIs(t, r.Check("gpt-4o"), coreerrors.ErrProviderUnavailable)
	require.ErrorIs(t, r.Check("gemini-2.5-flash"), coreerrors.ErrProviderUnavailable, "unregistered provider")
}

func TestRegistry_ProviderErrorIsReturnedAndCounted(t *testing.T) {
	r := newTestRegistry(0)
	r.Register(&fakeProvider{name: ProviderOpenAI, available: true, err: errFakeTransport})

	before := testutil.ToFloat64(observability.LLMRequests.WithLabelValues(string(ProviderOpenAI), observability.StatusError))

	_, err := r.Complete(context.Background(), "prompt", "gpt-4o")
	require.ErrorIs(t, err, errFakeTransport)

	after := testutil.ToFloat64(observability.LLMRequests.WithLabelValues(string(ProviderOpenAI), observability.StatusError))
	assert.InDelta(t, before+1, after, 1e-9)
}

func TestRegistry_AppliesTimeout(t *testing.T) {
	withTimeout := newTestRegistry(time.Second)
	fake := &fakeProvider{name: ProviderMock, available: true}
	withTimeout.Register(fake)

	_, err := withTimeout.Complete(context.Background(), "prompt", "mock")
	require.NoError(t, err)
	assert.True(t, fake.hadDeadline)

	noTimeout := newTestRegistry(0)
	fake = &fakeProvider{name: ProviderMock, available: true}
	noTimeout.Register(fake)

	_, err = noTimeout.Complete(context.Background(), "prompt", "mock")
	require.NoError(t, err)
	assert.False(t, fake.hadDeadline)
}

func TestRegistry_RateLimiterHonoursContext(t *testing.T) {
	logger := zerolog.Nop()
	r := NewRegistry(0.001, 0, &logger)
	r.Register(&fakeProvider{name: ProviderMock, available: true, reply: "Yes"})

	// The first call consumes the single burst token.
	_, err := r.Complete(context.Background(), "prompt", "mock")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = r.Complete(ctx, "prompt", "mock")
	require.Error(t, err)
}

func TestNewDefaultRegistry_Availability(t *testing.T) {
	logger := zerolog.Nop()

	r, err := NewDefaultRegistry(context.Background(), config.LLMConfig{AnthropicAPIKey: "sk-ant"}, &logger)
	require.NoError(t, err)

	t.Cleanup(func() { _ = r.Close() })

	assert.NoError(t, r.Check("claude-haiku-4.5"))
	assert.NoError(t, r.Check("mock"))
	assert.ErrorIs(t, r.Check("gpt-4o-mini"), coreerrors.ErrProviderUnavailable)
	assert.ErrorIs(t, r.Check("gemini-2.5-flash-lite"), coreerrors.ErrProviderUnavailable)

	got, err := r.Complete(context.Background(), "anything", "mock")
	require.NoError(t, err)
	assert.Equal(t, "Yes", got)
}
