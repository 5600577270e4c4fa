package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPAddr string     `env:"HTTP_ADDR" envDefault:":8080"`
	DBPath   string     `env:"DB_PATH" envDefault:"data/tacquiz.db"`
	RedisURL string     `env:"REDIS_URL"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`

	// Game pacing. Defaults match the browser client.
	HeartbeatInterval time.Duration `env:"HEARTBEAT_INTERVAL" envDefault:"5s"`
	QuestionTime      time.Duration `env:"QUESTION_TIME" envDefault:"60s"`
	RevealDelay       time.Duration `env:"REVEAL_DELAY" envDefault:"5s"`
	KickGrace         time.Duration `env:"KICK_GRACE" envDefault:"10s"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
