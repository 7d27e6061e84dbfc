package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_Defaults(t *testing.T) {
	cfg, err := New()
	assert.NoError(t, err)

	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, 5, cfg.SpamTurnThreshold)
	assert.Equal(t, 60, cfg.SpamWindowSeconds)
	assert.Equal(t, 30, cfg.HistoryWindowMinutes)
	assert.Equal(t, 5, cfg.HistoryMaxPairs)
}

func TestNew_Overrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "dynamodb")
	t.Setenv("SPAM_TURN_THRESHOLD", "10")
	t.Setenv("HISTORY_MAX_PAIRS", "3")

	cfg, err := New()
	assert.NoError(t, err)

	assert.Equal(t, "dynamodb", cfg.DBDriver)
	assert.Equal(t, 10, cfg.SpamTurnThreshold)
	assert.Equal(t, 3, cfg.HistoryMaxPairs)
}
