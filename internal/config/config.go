package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string
	KafkaSourceTopic string
	KafkaSinkTopic   string
	KafkaGroupID     string
	HTTPAddr         string
	LogLevel         string
	LogFormat        string
	ShutdownTimeout  time.Duration

	BatchSize          int
	BatchFlushInterval time.Duration

	// Station registry configuration.
	RegistryURL       string
	RegistryToken     string
	RegistryEnabled   bool
	RegistryTimeout   time.Duration
	RegistryCacheSize int

	// Display preference storage.
	PrefsDBPath  string
	DefaultTheme string
}

// Load reads configuration from environment variables, applying defaults where
// unset. A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	// Best effort: absence of a .env file is the normal production case.
	_ = godotenv.Load()

	shutdownTimeout, err := parsePositiveDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}

	batchSize, err := parseBatchSize()
	if err != nil {
		return nil, err
	}

	flushInterval, err := parsePositiveDuration("BATCH_FLUSH_INTERVAL", "500ms")
	if err != nil {
		return nil, err
	}

	registryTimeout, err := parsePositiveDuration("REGISTRY_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}

	registryURL := os.Getenv("REGISTRY_URL")
	registryEnabled := registryURL != ""
	if v := os.Getenv("REGISTRY_ENABLED"); v != "" {
		registryEnabled = v == "true"
	}

	defaultTheme := envOrDefault("DEFAULT_THEME", "light")
	if defaultTheme != "light" && defaultTheme != "dark" {
		return nil, fmt.Errorf("invalid DEFAULT_THEME %q (allowed: light, dark)", defaultTheme)
	}

	cfg := &Config{
		KafkaBrokers:       splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSourceTopic:   envOrDefault("KAFKA_SOURCE_TOPIC", "raw-station-readings"),
		KafkaSinkTopic:     envOrDefault("KAFKA_SINK_TOPIC", "wetbulb-readings"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "wetbulb-etl"),
		HTTPAddr:           envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:           envOrDefault("LOG_LEVEL", "info"),
		LogFormat:          envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout:    shutdownTimeout,
		BatchSize:          batchSize,
		BatchFlushInterval: flushInterval,

		RegistryURL:       registryURL,
		RegistryToken:     os.Getenv("REGISTRY_TOKEN"),
		RegistryEnabled:   registryEnabled,
		RegistryTimeout:   registryTimeout,
		RegistryCacheSize: parseRegistryCacheSize(),

		PrefsDBPath:  envOrDefault("PREFS_DB_PATH", "data/prefs.db"),
		DefaultTheme: defaultTheme,
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.RegistryEnabled && cfg.RegistryURL == "" {
		return nil, errors.New("REGISTRY_ENABLED is true but REGISTRY_URL is not set")
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			out = append(out, b)
		}
	}
	return out
}

func parsePositiveDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBatchSize() (int, error) {
	s := envOrDefault("BATCH_SIZE", "50")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 1000 {
		return 0, fmt.Errorf("invalid BATCH_SIZE %q (allowed: 1-1000)", s)
	}
	return n, nil
}

func parseRegistryCacheSize() int {
	if s := os.Getenv("REGISTRY_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 1000
}
