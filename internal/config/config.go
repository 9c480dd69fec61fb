package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Upstream hourly snapshots.
	SnapshotBaseURL string
	SnapshotHours   int
	SnapshotTimeout time.Duration
	RefreshInterval time.Duration

	// Wind enrichment configuration.
	WindEnabled    bool
	WindBaseURL    string
	WindTimeout    time.Duration
	WindSubsetSize int
	WindBatchSize  int
	WindCacheSize  int

	// Optional Kafka snapshot sink.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string

	// Pass-through relay to the snapshot upstream.
	RelayEnabled  bool
	RelayPrefix   string
	RelayUpstream string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	snapshotTimeout, err := parseDuration("SNAPSHOT_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "10m")
	if err != nil {
		return nil, err
	}
	windTimeout, err := parseDuration("WIND_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	snapshotHours, err := parsePositiveInt("SNAPSHOT_HOURS", 24)
	if err != nil {
		return nil, err
	}
	if snapshotHours > 24 {
		return nil, errors.New("invalid SNAPSHOT_HOURS: must be between 1 and 24")
	}
	subsetSize, err := parsePositiveInt("WIND_SUBSET_SIZE", 40)
	if err != nil {
		return nil, err
	}
	batchSize, err := parsePositiveInt("WIND_BATCH_SIZE", 8)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		SnapshotBaseURL: strings.TrimRight(sharedcfg.EnvOrDefault("SNAPSHOT_BASE_URL", "https://a.windbornesystems.com/treasure"), "/"),
		SnapshotHours:   snapshotHours,
		SnapshotTimeout: snapshotTimeout,
		RefreshInterval: refreshInterval,

		WindEnabled:    os.Getenv("WIND_ENABLED") != "false",
		WindBaseURL:    sharedcfg.EnvOrDefault("WIND_BASE_URL", "https://api.open-meteo.com/v1/forecast"),
		WindTimeout:    windTimeout,
		WindSubsetSize: subsetSize,
		WindBatchSize:  batchSize,
		WindCacheSize:  parseWindCacheSize(),

		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "balloon-trajectories"),
		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",

		RelayEnabled:  os.Getenv("RELAY_ENABLED") != "false",
		RelayPrefix:   sharedcfg.EnvOrDefault("RELAY_PREFIX", "/treasure/"),
		RelayUpstream: sharedcfg.EnvOrDefault("RELAY_UPSTREAM", "https://a.windbornesystems.com/treasure/"),
	}

	if _, err := url.ParseRequestURI(cfg.SnapshotBaseURL); err != nil {
		return nil, errors.New("invalid SNAPSHOT_BASE_URL")
	}
	if cfg.WindEnabled {
		if _, err := url.ParseRequestURI(cfg.WindBaseURL); err != nil {
			return nil, errors.New("invalid WIND_BASE_URL")
		}
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	if cfg.RelayEnabled {
		if _, err := url.ParseRequestURI(cfg.RelayUpstream); err != nil {
			return nil, errors.New("invalid RELAY_UPSTREAM")
		}
		if !strings.HasPrefix(cfg.RelayPrefix, "/") {
			return nil, errors.New("invalid RELAY_PREFIX: must start with /")
		}
	}

	return cfg, nil
}

func parseDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parsePositiveInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("invalid " + key)
	}
	return n, nil
}

func parseWindCacheSize() int {
	if s := os.Getenv("WIND_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
