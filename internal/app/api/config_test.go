package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/client"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "POSTGRES_DSN", "TEMPORAL_ADDRESS", "TEMPORAL_NAMESPACE", "TEMPORAL_DISABLED",
		"REDIS_ADDR", "PAYMENT_REFERENCE_TTL_MINUTES", "KAFKA_BROKERS", "KAFKA_TOPIC",
		"PAYMENT_SIMULATOR_URL", "PUBLIC_BASE_URL", "SESSION_TTL_HOURS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, client.DefaultHostPort, cfg.TemporalAddress)
	assert.Equal(t, client.DefaultNamespace, cfg.TemporalNamespace)
	assert.False(t, cfg.TemporalDisabled)
	assert.Equal(t, 24*time.Hour, cfg.ReferenceTTL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "marketplace.lifecycle", cfg.KafkaTopic)
	assert.Equal(t, "http://localhost:8080", cfg.PublicBaseURL)
}

func TestLoadConfigOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("TEMPORAL_DISABLED", "true")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("PAYMENT_REFERENCE_TTL_MINUTES", "15")
	t.Setenv("SESSION_TTL_HOURS", "2")
	t.Setenv("PUBLIC_BASE_URL", "https://market.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr())
	assert.True(t, cfg.TemporalDisabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 15*time.Minute, cfg.ReferenceTTL)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "https://market.example", cfg.PublicBaseURL)
}

func TestLoadConfigRejectsInvalidDurations(t *testing.T) {
	clearEnv(t)
	t.Setenv("PAYMENT_REFERENCE_TTL_MINUTES", "-1")
	_, err := LoadConfig()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("SESSION_TTL_HOURS", "soon")
	_, err = LoadConfig()
	assert.Error(t, err)

	clearEnv(t)
	t.Setenv("PORT", "http")
	_, err = LoadConfig()
	assert.Error(t, err)
}
