package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"local"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	LLM      LLMConfig
	Database DatabaseConfig
	Telegram TelegramConfig
	Output   OutputConfig
}

func Load() (*Config, error) {
	_ = godotenv.Load() //nolint:errcheck // .env file is optional, error is expected when not present

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment config: %w", err)
	}

	applyAliases(cfg)

	return cfg, nil
}

// applyAliases accepts the shorter legacy variable names when the primary
// ones are unset.
func applyAliases(cfg *Config) {
	if !hasEnv("OPENAI_API_KEY") {
		setStringFromEnv("LLM_API_KEY", &cfg.LLM.OpenAIAPIKey)
	}

	if !hasEnv("TELEGRAM_BOT_TOKEN") {
		setStringFromEnv("BOT_TOKEN", &cfg.Telegram.BotToken)
	}

	if !hasEnv("TELEGRAM_CHAT_ID") {
		setInt64FromEnv("TARGET_CHAT_ID", &cfg.Telegram.ChatID)
	}
}

func hasEnv(key string) bool {
	_, ok := os.LookupEnv(key)
	return ok
}

func setStringFromEnv(key string, target *string) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	val = strings.TrimSpace(val)
	if val == "" {
		return
	}

	*target = val
}

func setInt64FromEnv(key string, target *int64) {
	val, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	parsed, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
	if err != nil {
		return
	}

	*target = parsed
}
