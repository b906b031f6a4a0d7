package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig is read from the environment (optionally seeded from .env).
type AppConfig struct {
	Port     string `mapstructure:"port" validate:"required,numeric"`
	LogLevel string `mapstructure:"log_level" validate:"oneof=debug info warn error"`

	SMHIBaseURL string `mapstructure:"smhi_base_url" validate:"required,url"`

	FetchTimeout       time.Duration `mapstructure:"fetch_timeout" validate:"gt=0"`
	FetchRetries       int           `mapstructure:"fetch_retries" validate:"min=0,max=10"`
	FetchRetryCooldown time.Duration `mapstructure:"fetch_retry_cooldown" validate:"min=0"`
	RateLimitCooldown  time.Duration `mapstructure:"rate_limit_cooldown" validate:"gt=0"`

	BreakerEnabled     bool          `mapstructure:"breaker_enabled"`
	BreakerMaxFailures uint32        `mapstructure:"breaker_max_failures" validate:"required_if=BreakerEnabled true"`
	BreakerOpenTimeout time.Duration `mapstructure:"breaker_open_timeout" validate:"required_if=BreakerEnabled true"`

	// Address lookup is disabled without a key.
	GeocoderAPIKey string `mapstructure:"geocoder_api_key"`

	// The raw payload archive is disabled without an endpoint.
	ArchiveEndpoint  string `mapstructure:"archive_endpoint"`
	ArchiveAccessKey string `mapstructure:"archive_access_key" validate:"required_with=ArchiveEndpoint"`
	ArchiveSecretKey string `mapstructure:"archive_secret_key" validate:"required_with=ArchiveEndpoint"`
	ArchiveBucket    string `mapstructure:"archive_bucket" validate:"required_with=ArchiveEndpoint"`
	ArchiveUseSSL    bool   `mapstructure:"archive_use_ssl"`

	// EnvFileLoaded reports whether a .env file was found.
	EnvFileLoaded bool `mapstructure:"-"`
}

var defaults = map[string]any{
	"port":                 "8080",
	"log_level":            "info",
	"smhi_base_url":        "https://opendata-download-metfcst.smhi.se",
	"fetch_timeout":        "30s",
	"fetch_retries":        3,
	"fetch_retry_cooldown": "7s",
	"rate_limit_cooldown":  "60s",
	"breaker_enabled":      false,
	"breaker_max_failures": 10,
	"breaker_open_timeout": "2m",
	"geocoder_api_key":     "",
	"archive_endpoint":     "",
	"archive_access_key":   "",
	"archive_secret_key":   "",
	"archive_bucket":       "",
	"archive_use_ssl":      true,
}

var validate = validator.New()

// Load reads configuration from the environment with sensible defaults.
func Load() (*AppConfig, error) {
	envErr := godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.EnvFileLoaded = envErr == nil

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ArchiveEnabled reports whether fetched payloads should be archived.
func (c *AppConfig) ArchiveEnabled() bool {
	return c.ArchiveEndpoint != ""
}

// GeocoderEnabled reports whether city/country lookup is available.
func (c *AppConfig) GeocoderEnabled() bool {
	return c.GeocoderAPIKey != ""
}
