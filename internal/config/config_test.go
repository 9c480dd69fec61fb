package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBroker = "localhost:9092"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)

	assert.Equal(t, "https://a.windbornesystems.com/treasure", cfg.SnapshotBaseURL)
	assert.Equal(t, 24, cfg.SnapshotHours)
	assert.Equal(t, 10*time.Second, cfg.SnapshotTimeout)
	assert.Equal(t, 10*time.Minute, cfg.RefreshInterval)

	assert.True(t, cfg.WindEnabled)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.WindBaseURL)
	assert.Equal(t, 5*time.Second, cfg.WindTimeout)
	assert.Equal(t, 40, cfg.WindSubsetSize)
	assert.Equal(t, 8, cfg.WindBatchSize)
	assert.Equal(t, 1000, cfg.WindCacheSize)

	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{defaultBroker}, cfg.KafkaBrokers)
	assert.Equal(t, "balloon-trajectories", cfg.KafkaSinkTopic)

	assert.True(t, cfg.RelayEnabled)
	assert.Equal(t, "/treasure/", cfg.RelayPrefix)
	assert.Equal(t, "https://a.windbornesystems.com/treasure/", cfg.RelayUpstream)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("SNAPSHOT_BASE_URL", "http://mock-upstream:8000/treasure/")
	t.Setenv("SNAPSHOT_HOURS", "12")
	t.Setenv("SNAPSHOT_TIMEOUT", "3s")
	t.Setenv("REFRESH_INTERVAL", "1m")
	t.Setenv("WIND_ENABLED", "false")
	t.Setenv("WIND_TIMEOUT", "2s")
	t.Setenv("WIND_SUBSET_SIZE", "10")
	t.Setenv("WIND_BATCH_SIZE", "4")
	t.Setenv("WIND_CACHE_SIZE", "50")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SINK_TOPIC", "custom-sink")
	t.Setenv("RELAY_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "http://mock-upstream:8000/treasure", cfg.SnapshotBaseURL)
	assert.Equal(t, 12, cfg.SnapshotHours)
	assert.Equal(t, 3*time.Second, cfg.SnapshotTimeout)
	assert.Equal(t, time.Minute, cfg.RefreshInterval)
	assert.False(t, cfg.WindEnabled)
	assert.Equal(t, 2*time.Second, cfg.WindTimeout)
	assert.Equal(t, 10, cfg.WindSubsetSize)
	assert.Equal(t, 4, cfg.WindBatchSize)
	assert.Equal(t, 50, cfg.WindCacheSize)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-sink", cfg.KafkaSinkTopic)
	assert.False(t, cfg.RelayEnabled)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDurations(t *testing.T) {
	for _, key := range []string{"SNAPSHOT_TIMEOUT", "REFRESH_INTERVAL", "WIND_TIMEOUT"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "-5s")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_InvalidCounts(t *testing.T) {
	for _, key := range []string{"SNAPSHOT_HOURS", "WIND_SUBSET_SIZE", "WIND_BATCH_SIZE"} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, "0")
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoad_SnapshotHoursTooLarge(t *testing.T) {
	t.Setenv("SNAPSHOT_HOURS", "25")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SNAPSHOT_HOURS")
}

func TestLoad_InvalidSnapshotBaseURL(t *testing.T) {
	t.Setenv("SNAPSHOT_BASE_URL", "not a url")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SNAPSHOT_BASE_URL")
}

func TestLoad_InvalidRelayPrefix(t *testing.T) {
	t.Setenv("RELAY_PREFIX", "treasure/")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RELAY_PREFIX")
}

func TestLoad_InvalidWindCacheSizeFallsBack(t *testing.T) {
	t.Setenv("WIND_CACHE_SIZE", "lots")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.WindCacheSize)
}
