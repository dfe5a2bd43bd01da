package config

import "time"

// LLMConfig holds model client settings. Keys are injected into the
// providers once at startup; nothing below the cmd layer reads the
// environment.
type LLMConfig struct {
	OpenAIAPIKey    string        `env:"OPENAI_API_KEY"`
	OpenAIBaseURL   string        `env:"OPENAI_BASE_URL"`
	AnthropicAPIKey string        `env:"ANTHROPIC_API_KEY"`
	GoogleAPIKey    string        `env:"GOOGLE_API_KEY"`
	RateLimitRPS    float64       `env:"LLM_RATE_LIMIT_RPS" envDefault:"0"`
	RequestTimeout  time.Duration `env:"LLM_REQUEST_TIMEOUT" envDefault:"60s"`
	MaxTokens       int           `env:"LLM_MAX_TOKENS" envDefault:"1024"`
}

// DatabaseConfig holds the optional run archive connection settings.
type DatabaseConfig struct {
	PostgresDSN       string        `env:"POSTGRES_DSN"`
	MaxConnections    int32         `env:"DB_MAX_CONNECTIONS" envDefault:"4"`
	MinConnections    int32         `env:"DB_MIN_CONNECTIONS" envDefault:"0"`
	MaxConnIdleTime   time.Duration `env:"DB_MAX_CONN_IDLE_TIME" envDefault:"5m"`
	MaxConnLifetime   time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"1h"`
	HealthCheckPeriod time.Duration `env:"DB_HEALTH_CHECK_PERIOD" envDefault:"1m"`
}

// Enabled reports whether runs should be archived.
func (c DatabaseConfig) Enabled() bool {
	return c.PostgresDSN != ""
}

// TelegramConfig holds the optional report notifier settings.
type TelegramConfig struct {
	BotToken string `env:"TELEGRAM_BOT_TOKEN"`
	ChatID   int64  `env:"TELEGRAM_CHAT_ID"`
}

// Enabled reports whether finished reports should be posted.
func (c TelegramConfig) Enabled() bool {
	return c.BotToken != "" && c.ChatID != 0
}

// OutputConfig controls where artifacts go and how they look.
type OutputConfig struct {
	ResultsDir      string `env:"RESULTS_DIR" envDefault:"."`
	MetricsTextfile string `env:"METRICS_TEXTFILE"`
	NoColor         bool   `env:"NO_COLOR" envDefault:"false"`
}
