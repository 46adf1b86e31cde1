// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Body size limits in bytes
const (
	DefaultBodySizeLimit int64 = 10 * 1024 * 1024
	MinBodySizeLimit     int64 = 1024
	MaxBodySizeLimit     int64 = 100 * 1024 * 1024
)

// Upstream error modes
const (
	UpstreamErrorsPassthrough = "passthrough"
	UpstreamErrorsNormalize   = "normalize"
)

// Log formats, shared with internal/logging
const (
	LogFormatAuto = "auto"
	LogFormatJSON = "json"
	LogFormatText = "text"
)

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	OpenAI   ProviderConfig `mapstructure:"openai"`
	Gemini   ProviderConfig `mapstructure:"gemini"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string `mapstructure:"port"`
	// BodySizeLimit is a byte count with an optional K, M or G unit ("10M", "512KB")
	BodySizeLimit string `mapstructure:"body_size_limit"`
}

// ProviderConfig holds credentials and endpoint overrides for one provider.
// An empty APIKey is allowed; the upstream rejects the call instead.
type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

// UpstreamConfig controls outbound calls and how upstream errors reach callers
type UpstreamConfig struct {
	// Errors is "passthrough" (return upstream error bodies verbatim) or "normalize"
	Errors                string        `mapstructure:"errors"`
	Timeout               time.Duration `mapstructure:"timeout"`
	ResponseHeaderTimeout time.Duration `mapstructure:"response_header_timeout"`
}

// MetricsConfig holds Prometheus exposition settings
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Format string `mapstructure:"format"`
	Level  string `mapstructure:"level"`
}

// binding ties a config key to its environment variable and default value.
type binding struct {
	key        string
	env        string
	defaultVal any
}

var bindings = []binding{
	{"server.port", "PORT", "8080"},
	{"server.body_size_limit", "BODY_SIZE_LIMIT", "10M"},
	{"openai.api_key", "OPENAI_API_KEY", ""},
	{"openai.base_url", "OPENAI_BASE_URL", ""},
	{"gemini.api_key", "GEMINI_API_KEY", ""},
	{"gemini.base_url", "GEMINI_BASE_URL", ""},
	{"upstream.errors", "UPSTREAM_ERRORS", UpstreamErrorsPassthrough},
	{"upstream.timeout", "HTTP_TIMEOUT", "600s"},
	{"upstream.response_header_timeout", "HTTP_RESPONSE_HEADER_TIMEOUT", "600s"},
	{"metrics.enabled", "METRICS_ENABLED", false},
	{"metrics.endpoint", "METRICS_ENDPOINT", "/metrics"},
	{"log.format", "LOG_FORMAT", LogFormatAuto},
	{"log.level", "LOG_LEVEL", "info"},
}

// Load reads configuration from .env, an optional config/config.yaml, and the environment.
// Environment variables win over the YAML file; the .env file never overrides variables
// that are already set.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit YAML config file. An empty path searches
// ./config/config.yaml and ./config.yaml and tolerates their absence.
func LoadFile(path string) (*Config, error) {
	// Optional; a missing .env is not an error
	_ = godotenv.Load()

	v := viper.New()
	for _, b := range bindings {
		v.SetDefault(b.key, b.defaultVal)
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", b.env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(secondsOrDurationHook())); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Server.Port) == "" {
		return fmt.Errorf("server port must not be empty")
	}
	if err := ValidateBodySizeLimit(c.Server.BodySizeLimit); err != nil {
		return err
	}
	switch c.Upstream.Errors {
	case UpstreamErrorsPassthrough, UpstreamErrorsNormalize:
	default:
		return fmt.Errorf("invalid UPSTREAM_ERRORS %q: expected %q or %q",
			c.Upstream.Errors, UpstreamErrorsPassthrough, UpstreamErrorsNormalize)
	}
	switch c.Log.Format {
	case LogFormatAuto, LogFormatJSON, LogFormatText:
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q: expected auto, json or text", c.Log.Format)
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// ValidateBodySizeLimit checks that s parses and lies between 1KB and 100MB.
// An empty value is valid and means DefaultBodySizeLimit.
func ValidateBodySizeLimit(s string) error {
	_, err := ParseBodySizeLimit(s)
	return err
}

// ParseBodySizeLimit converts "1048576", "100K", "10MB" or "1G" into bytes.
// Units are binary and case-insensitive; a bare "B" suffix is rejected.
func ParseBodySizeLimit(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultBodySizeLimit, nil
	}

	digits := strings.TrimSuffix(s, "B")
	if digits != s && (digits == "" || digits[len(digits)-1] < 'A') {
		return 0, fmt.Errorf("invalid BODY_SIZE_LIMIT %q: a B suffix needs a K, M or G unit", s)
	}

	multiplier := int64(1)
	switch {
	case strings.HasSuffix(digits, "K"):
		multiplier = 1024
	case strings.HasSuffix(digits, "M"):
		multiplier = 1024 * 1024
	case strings.HasSuffix(digits, "G"):
		multiplier = 1024 * 1024 * 1024
	}
	if multiplier > 1 {
		digits = digits[:len(digits)-1]
	}

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid BODY_SIZE_LIMIT %q: expected a whole number with an optional K, M or G unit", s)
	}
	if n > MaxBodySizeLimit/multiplier {
		return 0, fmt.Errorf("invalid BODY_SIZE_LIMIT %q: must be between 1K and 100M", s)
	}
	size := n * multiplier
	if size < MinBodySizeLimit {
		return 0, fmt.Errorf("invalid BODY_SIZE_LIMIT %q: must be between 1K and 100M", s)
	}
	return size, nil
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q: %w", l.Level, err)
	}
	return level, nil
}

// secondsOrDurationHook decodes durations from plain integers (seconds) or Go duration
// strings such as "10m" or "1h30m".
func secondsOrDurationHook() mapstructure.DecodeHookFuncType {
	durationType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durationType || from == durationType {
			return data, nil
		}
		switch from.Kind() {
		case reflect.String:
			s := strings.TrimSpace(data.(string))
			if secs, err := strconv.Atoi(s); err == nil {
				return time.Duration(secs) * time.Second, nil
			}
			return time.ParseDuration(s)
		case reflect.Int, reflect.Int32, reflect.Int64:
			return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
		case reflect.Float64:
			return time.Duration(data.(float64) * float64(time.Second)), nil
		}
		return data, nil
	}
}
