package config

import (
	"testing"
	"time"

	"github.com/SAP-F-2025/story-survey-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, models.VariantLikert, cfg.Survey.Variant)
	assert.Equal(t, 10*time.Second, cfg.Survey.TrialFetchTimeout)
	assert.Equal(t, "redis", cfg.Storage.SessionStore)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Events.KafkaBrokers)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SURVEY_VARIANT", "mcq")
	t.Setenv("TRIAL_FETCH_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "7")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("EVENTS_ENABLED", "true")
	t.Setenv("SESSION_STORE", "memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, models.VariantMCQ, cfg.Survey.Variant)
	assert.Equal(t, 3*time.Second, cfg.Survey.TrialFetchTimeout)
	assert.Equal(t, 2.5, cfg.HTTP.RateLimitRPS)
	assert.Equal(t, 7, cfg.HTTP.RateLimitBurst)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.KafkaBrokers)
	assert.True(t, cfg.Events.Enabled)
	assert.Equal(t, "memory", cfg.Storage.SessionStore)
}

func TestLoadConfig_EmptyListFallsBack(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CORS_ALLOWED_ORIGINS", " , ,")
	t.Setenv("KAFKA_BROKERS", ",")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSOrigins)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Events.KafkaBrokers)
	assert.Empty(t, cfg.HTTP.OperatorSecret)
}

func TestLoadConfig_OperatorSecret(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPERATOR_JWT_SECRET", "ops-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "ops-secret", cfg.HTTP.OperatorSecret)
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"SURVEY_VARIANT", "essay"},
		{"COLLECTOR_MODE", "smtp"},
		{"SESSION_STORE", "disk"},
		{"SUBMISSION_STORE", "mysql"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
