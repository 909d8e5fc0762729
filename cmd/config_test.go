package cmd_test

import (
	"testing"
	"time"

	"github.com/RuslanFatikhov/q-ryer/cmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"HTTP_PORT", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
	"STORAGE", "LOG_LEVEL", "CATALOG_DIR", "REGIONS", "DEFAULT_REGION", "CATALOG_REFRESH_SCHEDULE",
	"KAFKA_BROKERS", "KAFKA_AGENT_EVENTS_TOPIC", "EXPIRY_SWEEP_SCHEDULE",
	"SEARCH_TICK", "SEARCH_MIN_TICKS", "SEARCH_MAX_TICKS",
	"MATCH_MIN_DROPOFF_KM", "MATCH_MAX_DROPOFF_KM", "MATCH_VENDOR_TOP_K",
	"SEARCH_RADIUS_MIN_KM", "SEARCH_RADIUS_MAX_KM", "SEARCH_RADIUS_DEFAULT_KM",
	"ECONOMY_BASE_PAYMENT", "ECONOMY_ON_TIME_BONUS", "ECONOMY_DELIVERY_SPEED_KMH", "MAX_GPS_ACCURACY_M",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := cmd.LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, cmd.StoragePostgres, cfg.Storage)
	assert.Equal(t, "almaty", cfg.DefaultRegion)
	assert.Empty(t, cfg.Regions)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, time.Second, cfg.Search.Tick)
	assert.Equal(t, 5, cfg.Search.MinTicks)
	assert.Equal(t, 15, cfg.Search.MaxTicks)
	assert.InDelta(t, 1.50, cfg.Economy.BasePayment, 1e-9)
	assert.Equal(t, 3600, cfg.Economy.PickupTimeoutSec)
	assert.Equal(t, "host=localhost port=5432 user=postgres password= dbname=qryer sslmode=disable", cfg.PostgresDSN())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORAGE", "memory")
	t.Setenv("REGIONS", "almaty, astana ,")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("SEARCH_TICK", "250ms")
	t.Setenv("SEARCH_MIN_TICKS", "2")
	t.Setenv("SEARCH_MAX_TICKS", "4")
	t.Setenv("ECONOMY_ON_TIME_BONUS", "2.5")
	t.Setenv("MAX_GPS_ACCURACY_M", "80")

	cfg, err := cmd.LoadConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, cmd.StorageMemory, cfg.Storage)
	assert.Equal(t, []string{"almaty", "astana"}, cfg.Regions)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.Tick)
	assert.Equal(t, 2, cfg.Search.MinTicks)
	assert.Equal(t, 4, cfg.Search.MaxTicks)
	assert.InDelta(t, 2.5, cfg.Economy.OnTimeBonus, 1e-9)
	assert.InDelta(t, 80, cfg.Economy.MaxGpsAccuracyM, 1e-9)
}

func TestLoadConfig_FlagsWinOverEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("STORAGE", "postgres")

	cfg, err := cmd.LoadConfig([]string{"-p", "7070", "--storage=memory", "--regions", "astana"})
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.HTTPPort)
	assert.Equal(t, cmd.StorageMemory, cfg.Storage)
	assert.Equal(t, []string{"astana"}, cfg.Regions)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "HTTP_PORT", "70000"},
		{"unknown storage", "STORAGE", "sqlite"},
		{"malformed number", "ECONOMY_BASE_PAYMENT", "cheap"},
		{"malformed duration", "SEARCH_TICK", "soon"},
		{"inverted tick range", "SEARCH_MIN_TICKS", "20"},
		{"zero speed", "ECONOMY_DELIVERY_SPEED_KMH", "0"},
		{"default radius outside bounds", "SEARCH_RADIUS_DEFAULT_KM", "40"},
		{"no vendor candidates", "MATCH_VENDOR_TOP_K", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.val)

			_, err := cmd.LoadConfig(nil)

			require.Error(t, err)
		})
	}
}

func TestLoadConfig_UnknownFlag(t *testing.T) {
	clearEnv(t)

	_, err := cmd.LoadConfig([]string{"--no-such-flag"})

	require.Error(t, err)
}
