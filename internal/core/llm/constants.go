package llm

// Error message templates
const (
	errRateLimiter           = "rate limiter error: %w"
	errOpenAIChatCompletion  = "openai chat completion error: %w"
	errAnthropicCompletion   = "anthropic completion: %w"
	errGoogleGenAICompletion = "google genai completion: %w"
)

// Model routing prefixes
const (
	modelPrefixClaude = "claude"
	modelPrefixGemini = "gemini"
	modelMock         = "mock"
)

// Log field keys
const (
	logKeyProvider = "provider"
	logKeyModel    = "model"
)

const (
	rateLimiterBurst = 1
	contentTypeText  = "text"
	mockAnswer       = "Yes"
	defaultMaxTokens = 1024
)
