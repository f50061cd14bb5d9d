package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"todoserver/pkg/validation"
)

const (
	DefaultPort         = "3000"
	DefaultMaxBodyBytes = 100 << 10

	StoreDriverMemory = "memory"
	StoreDriverSQLite = "sqlite"
)

type AppConfig struct {
	Port        string `toml:"port" validate:"required,numeric"`
	Environment string `toml:"environment" validate:"required"`
	GinMode     string `toml:"gin_mode" validate:"oneof=debug release test"`
	LogLevel    string `toml:"log_level" validate:"oneof=debug info warn error"`
	LokiURL     string `toml:"loki_url" validate:"omitempty,url"`

	StoreDriver  string `toml:"store_driver" validate:"oneof=memory sqlite"`
	MaxBodyBytes int64  `toml:"max_body_bytes" validate:"gt=0"`

	RateLimitEnabled bool            `toml:"rate_limit_enabled"`
	RateLimit        RateLimitConfig `toml:"rate_limit"`

	Telemetry TelemetryConfig `toml:"telemetry"`
}

type RateLimitConfig struct {
	Requests int           `toml:"requests" validate:"gt=0"`
	Window   time.Duration `toml:"window" validate:"gt=0"`
}

type TelemetryConfig struct {
	Enabled        bool   `toml:"enabled"`
	ServiceName    string `toml:"service_name" validate:"required"`
	ServiceVersion string `toml:"service_version"`
	MetricsPort    string `toml:"metrics_port" validate:"required,numeric"`
	OTLPEndpoint   string `toml:"otlp_endpoint" validate:"required,hostname_port"`
}

func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Port:         DefaultPort,
		Environment:  "development",
		GinMode:      "debug",
		LogLevel:     "info",
		StoreDriver:  StoreDriverMemory,
		MaxBodyBytes: DefaultMaxBodyBytes,

		RateLimitEnabled: false,
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   time.Minute,
		},

		Telemetry: TelemetryConfig{
			Enabled:        false,
			ServiceName:    "todoserver",
			ServiceVersion: "1.0.0",
			MetricsPort:    "9091",
			OTLPEndpoint:   "localhost:4317",
		},
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// CONFIG_FILE (if set), then the environment, and validates the result.
func Load() (*AppConfig, error) {
	config := GetDefaultConfig()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := config.LoadFile(path); err != nil {
			return nil, err
		}
	}

	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFile overlays the keys present in a TOML file; absent keys keep their value.
func (c *AppConfig) LoadFile(path string) error {
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("load config file %s: %w", path, err)
	}

	return nil
}

func (c *AppConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	if port, ok := lookup("PORT"); ok && port != "" {
		c.Port = port
	}

	if mode, ok := lookup("GIN_MODE"); ok && mode != "" {
		c.GinMode = mode

		if mode == "release" {
			c.Environment = "production"
		}
	}

	if level, ok := lookup("LOG_LEVEL"); ok && level != "" {
		c.LogLevel = level
	}

	if url, ok := lookup("LOKI_URL"); ok {
		c.LokiURL = url
	}

	if driver, ok := lookup("STORE_DRIVER"); ok && driver != "" {
		c.StoreDriver = driver
	}

	if endpoint, ok := lookup("OTLP_ENDPOINT"); ok && endpoint != "" {
		c.Telemetry.OTLPEndpoint = endpoint
	}

	if port, ok := lookup("METRICS_PORT"); ok && port != "" {
		c.Telemetry.MetricsPort = port
	}

	boolVars := map[string]*bool{
		"TELEMETRY_ENABLED":  &c.Telemetry.Enabled,
		"RATE_LIMIT_ENABLED": &c.RateLimitEnabled,
	}

	for name, target := range boolVars {
		raw, ok := lookup(name)

		if !ok || raw == "" {
			continue
		}

		value, err := strconv.ParseBool(raw)

		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", name, raw, err)
		}

		*target = value
	}

	return nil
}

func (c *AppConfig) Validate() error {
	return validation.Error(validation.ValidateStruct(c))
}

func (c *AppConfig) Addr() string {
	return ":" + c.Port
}
