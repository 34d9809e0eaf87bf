package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, EventStoreMemory, cfg.EventStore)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 2*time.Second, cfg.CardProcessingDelay)
	assert.Equal(t, 5*time.Second, cfg.MobileMoneyPollInterval)
	assert.Equal(t, 60, cfg.MobileMoneyMaxPolls)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("EVENT_STORE", "postgres")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("MOBILE_MONEY_POLL_INTERVAL", "250ms")
	t.Setenv("MOBILE_MONEY_MAX_POLLS", "3")
	t.Setenv("REDIS_DB", "2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, EventStorePostgres, cfg.EventStore)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 250*time.Millisecond, cfg.MobileMoneyPollInterval)
	assert.Equal(t, 3, cfg.MobileMoneyMaxPolls)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestLoad_EmptyEnvDisablesBackends(t *testing.T) {
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "storefront-events", cfg.KafkaTopic)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storefront.env")
	require.NoError(t, os.WriteFile(path, []byte("KAFKA_TOPIC=from-file\nSMTP_PORT=2525\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.KafkaTopic)
	assert.Equal(t, "2525", cfg.SMTPPort)
}

func TestLoad_RejectsUnknownEventStore(t *testing.T) {
	t.Setenv("EVENT_STORE", "dynamo")

	_, err := Load()
	assert.ErrorIs(t, err, ErrUnknownEventStore)
}

func TestLoad_RejectsNonPositivePolling(t *testing.T) {
	t.Setenv("MOBILE_MONEY_MAX_POLLS", "0")

	_, err := Load()
	assert.ErrorIs(t, err, ErrInvalidPollSetting)
}

func TestValidateAPI(t *testing.T) {
	cfg := &Config{}
	assert.ErrorIs(t, cfg.ValidateAPI(), ErrMissingJWTSecret)

	cfg.JWTSecret = "short"
	assert.ErrorIs(t, cfg.ValidateAPI(), ErrWeakJWTSecret)

	cfg.JWTSecret = strings.Repeat("s", 32)
	assert.NoError(t, cfg.ValidateAPI())
}
