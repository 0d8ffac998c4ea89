package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	TelegramToken     string        `env:"TELEGRAM_BOT_TOKEN,required,notEmpty"`
	ChannelID         string        `env:"TELEGRAM_CHANNEL_ID,required,notEmpty"`
	OpenAIAPIKey      string        `env:"OPENAI_API_KEY,required,notEmpty"`
	OpenAIModel       string        `env:"OPENAI_MODEL"        envDefault:"gpt-5-mini"`
	Port              string        `env:"PORT"                envDefault:"8080"`
	Schedule          []string      `env:"SCHEDULE"            envDefault:"09:00,12:00,16:00,21:00"`
	PostLanguage      string        `env:"POST_LANGUAGE"       envDefault:"Turkmen"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT"  envDefault:"90s"`
	GenerationRetries int           `env:"GENERATION_RETRIES"  envDefault:"0"`
	DeliveryTimeout   time.Duration `env:"DELIVERY_TIMEOUT"    envDefault:"30s"`
	FiringTimeout     time.Duration `env:"FIRING_TIMEOUT"      envDefault:"10m"`
	LogLevel          slog.Level    `env:"LOG_LEVEL"           envDefault:"INFO"`
}

func Load() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if cfg.GenerationRetries < 0 {
		return Config{}, fmt.Errorf("GENERATION_RETRIES must not be negative, got %d", cfg.GenerationRetries)
	}

	return cfg, nil
}
