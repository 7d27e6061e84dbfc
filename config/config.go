package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver string `env:"DB_DRIVER" envDefault:"sqlite3"`
	DBPath   string `env:"DB_PATH" envDefault:"./db/dialog_control.db"`

	DynamoTablePrefix string `env:"DYNAMO_TABLE_NAME_PREFIX" envDefault:"dialog_control"`
	DynamoLocal       bool   `env:"DYNAMO_LOCAL" envDefault:"false"`

	// Spam guard: reject when the user has more than SpamTurnThreshold
	// turns and the SpamTurnThreshold-th most recent one is younger than
	// SpamWindowSeconds.
	SpamTurnThreshold int `env:"SPAM_TURN_THRESHOLD" envDefault:"5"`
	SpamWindowSeconds int `env:"SPAM_WINDOW_SECONDS" envDefault:"60"`

	// History windowing: how far back to look for the active conversation
	// and how many answered pairs to keep.
	HistoryWindowMinutes int `env:"HISTORY_WINDOW_MINUTES" envDefault:"30"`
	HistoryMaxPairs      int `env:"HISTORY_MAX_PAIRS" envDefault:"5"`
}

// New loads configuration from the environment. A .env file is read first
// when present so local runs match the deployed setup.
func New() (*Config, error) {
	_ = godotenv.Load()
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
