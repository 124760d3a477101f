package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddress    = ":8080"
	defaultSessionTTL     = 24 * time.Hour
	defaultKFactor        = 32
	defaultRateLimitRPS   = 5
	defaultRateLimitBurst = 10
)

// Config struct to hold the configuration settings
type Config struct {
	Postgres      PostgresConfig      `yaml:"postgres"`
	NATS          NATSConfig          `yaml:"nats"`
	Redis         RedisConfig         `yaml:"redis"`
	HTTP          HTTPConfig          `yaml:"http"`
	Worldcup      WorldcupConfig      `yaml:"worldcup"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// PostgresConfig holds Postgres configuration.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// NATSConfig holds NATS configuration. An empty URL keeps events in-process.
type NATSConfig struct {
	URL string `yaml:"url"`
}

// RedisConfig holds Redis configuration. An empty URL keeps sessions in memory.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Address string `yaml:"address"`
}

// WorldcupConfig holds tournament and rating settings.
type WorldcupConfig struct {
	SessionTTL     time.Duration `yaml:"session_ttl"`
	KFactor        float64       `yaml:"k_factor"`
	RateLimitRPS   float64       `yaml:"rate_limit_rps"`
	RateLimitBurst int           `yaml:"rate_limit_burst"`
}

// ObservabilityConfig holds configuration for observability components
type ObservabilityConfig struct {
	MetricsAddress string `yaml:"metrics_address"`
	Environment    string `yaml:"environment"`
}

// LoadConfig loads the configuration from a YAML file.
func LoadConfig(filename string) (*Config, error) {
	// Try reading configuration from the file first
	data, err := os.ReadFile(filename)
	if err != nil {
		// If the file is not found, try loading from environment variables
		return loadConfigFromEnv()
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// --- OVERRIDE WITH ENV VARS IF PRESENT ---
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.DSN = v
	}
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.NATS.URL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("METRICS_ADDRESS"); v != "" {
		cfg.Observability.MetricsAddress = v
	}
	if v := os.Getenv("ENV"); v != "" {
		cfg.Observability.Environment = v
	}
	if err := applyWorldcupEnv(&cfg.Worldcup); err != nil {
		return nil, err
	}

	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("postgres dsn not configured")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// loadConfigFromEnv loads the configuration from environment variables.
func loadConfigFromEnv() (*Config, error) {
	var cfg Config

	// Load Postgres DSN
	cfg.Postgres.DSN = os.Getenv("DATABASE_URL")
	if cfg.Postgres.DSN == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable not set")
	}

	// Optional transports; empty values fall back to in-process implementations
	cfg.NATS.URL = os.Getenv("NATS_URL")
	cfg.Redis.URL = os.Getenv("REDIS_URL")
	cfg.HTTP.Address = os.Getenv("HTTP_ADDRESS")

	cfg.Observability.MetricsAddress = os.Getenv("METRICS_ADDRESS") // optional; empty disables metrics
	cfg.Observability.Environment = os.Getenv("ENV")

	if err := applyWorldcupEnv(&cfg.Worldcup); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func applyWorldcupEnv(wc *WorldcupConfig) error {
	if v := os.Getenv("WORLDCUP_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid WORLDCUP_SESSION_TTL value: %v", err)
		}
		wc.SessionTTL = d
	}
	if v := os.Getenv("WORLDCUP_RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid WORLDCUP_RATE_LIMIT_RPS value: %v", err)
		}
		wc.RateLimitRPS = f
	}
	if v := os.Getenv("WORLDCUP_RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid WORLDCUP_RATE_LIMIT_BURST value: %v", err)
		}
		wc.RateLimitBurst = n
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = defaultHTTPAddress
	}
	if c.Worldcup.SessionTTL <= 0 {
		c.Worldcup.SessionTTL = defaultSessionTTL
	}
	if c.Worldcup.KFactor <= 0 {
		c.Worldcup.KFactor = defaultKFactor
	}
	if c.Worldcup.RateLimitRPS <= 0 {
		c.Worldcup.RateLimitRPS = defaultRateLimitRPS
	}
	if c.Worldcup.RateLimitBurst <= 0 {
		c.Worldcup.RateLimitBurst = defaultRateLimitBurst
	}
	if c.Observability.Environment == "" {
		c.Observability.Environment = "development"
	}
}
