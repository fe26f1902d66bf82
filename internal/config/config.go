package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/chargeable-weight/internal/calculator"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
	defaultLogLevel       = "info"
	defaultSessionTTL     = 30 * time.Minute
	defaultMaxSessions    = 10_000
	defaultMaxBoxes       = 1000
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	LogLevel             string
	RateLimitRPS         float64
	RateLimitBurst       int
	SessionTTL           time.Duration
	MaxSessions          int
	MaxBoxes             int

	// SessionDefaults seeds new sessions and stateless requests that omit selections.
	SessionDefaults calculator.Config
}

// yamlConfig represents the YAML configuration file structure.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging *bool         `yaml:"enable_request_logging"`
	LogLevel             string        `yaml:"log_level"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
	Sessions             yamlSessions  `yaml:"sessions"`
	Defaults             yamlDefaults  `yaml:"defaults"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   *float64 `yaml:"rps"`
	Burst *int     `yaml:"burst"`
}

type yamlSessions struct {
	TTL         string `yaml:"ttl"`
	MaxSessions int    `yaml:"max_sessions"`
	MaxBoxes    int    `yaml:"max_boxes"`
}

type yamlDefaults struct {
	ShippingMode  string `yaml:"shipping_mode"`
	WeightUnit    string `yaml:"weight_unit"`
	DimensionUnit string `yaml:"dimension_unit"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	LogLevel       *string
	ShippingMode   *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	// Load from YAML file if specified
	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		if err := applyYAMLConfig(&cfg, yamlCfg); err != nil {
			return Config{}, fmt.Errorf("apply YAML config: %w", err)
		}
	}

	// Apply environment variables (override YAML)
	applyEnvConfig(&cfg)

	// Apply CLI overrides (highest precedence)
	if overrides != nil {
		if err := applyCLIOverrides(&cfg, overrides); err != nil {
			return Config{}, err
		}
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		LogLevel:             defaultLogLevel,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
		SessionTTL:           defaultSessionTTL,
		MaxSessions:          defaultMaxSessions,
		MaxBoxes:             defaultMaxBoxes,
		SessionDefaults:      calculator.DefaultConfig(),
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) error {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	durations := []struct {
		raw string
		dst *time.Duration
	}{
		{yamlCfg.ShutdownGracePeriod, &cfg.ShutdownGracePeriod},
		{yamlCfg.ReadHeaderTimeout, &cfg.ReadHeaderTimeout},
		{yamlCfg.WriteTimeout, &cfg.WriteTimeout},
		{yamlCfg.IdleTimeout, &cfg.IdleTimeout},
		{yamlCfg.Sessions.TTL, &cfg.SessionTTL},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		if parsed, err := time.ParseDuration(d.raw); err == nil {
			*d.dst = parsed
		}
	}

	if yamlCfg.EnableRequestLogging != nil {
		cfg.EnableRequestLogging = *yamlCfg.EnableRequestLogging
	}

	if yamlCfg.LogLevel != "" {
		cfg.LogLevel = yamlCfg.LogLevel
	}

	if yamlCfg.RateLimit.RPS != nil && *yamlCfg.RateLimit.RPS >= 0 {
		cfg.RateLimitRPS = *yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst != nil && *yamlCfg.RateLimit.Burst >= 0 {
		cfg.RateLimitBurst = *yamlCfg.RateLimit.Burst
	}

	if yamlCfg.Sessions.MaxSessions > 0 {
		cfg.MaxSessions = yamlCfg.Sessions.MaxSessions
	}

	if yamlCfg.Sessions.MaxBoxes > 0 {
		cfg.MaxBoxes = yamlCfg.Sessions.MaxBoxes
	}

	return applyDefaults(&cfg.SessionDefaults, yamlCfg.Defaults.ShippingMode, yamlCfg.Defaults.WeightUnit, yamlCfg.Defaults.DimensionUnit)
}

// applyEnvConfig applies environment variable configuration.
// Malformed values are ignored so that a bad variable never blocks startup.
func applyEnvConfig(cfg *Config) {
	if port := env("PORT"); port != "" {
		cfg.Port = port
	}

	if level := env("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	if rps := env("RATE_LIMIT_RPS"); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := env("RATE_LIMIT_BURST"); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}

	if ttl := env("SESSION_TTL"); ttl != "" {
		if value, err := time.ParseDuration(ttl); err == nil && value > 0 {
			cfg.SessionTTL = value
		}
	}

	if maxSessions := env("MAX_SESSIONS"); maxSessions != "" {
		if value, err := strconv.Atoi(maxSessions); err == nil && value > 0 {
			cfg.MaxSessions = value
		}
	}

	if maxBoxes := env("MAX_BOXES"); maxBoxes != "" {
		if value, err := strconv.Atoi(maxBoxes); err == nil && value > 0 {
			cfg.MaxBoxes = value
		}
	}

	defaults := cfg.SessionDefaults
	if err := applyDefaults(&defaults, env("DEFAULT_SHIPPING_MODE"), env("DEFAULT_WEIGHT_UNIT"), env("DEFAULT_DIMENSION_UNIT")); err == nil {
		cfg.SessionDefaults = defaults
	}
}

// applyCLIOverrides applies command-line flag overrides.
func applyCLIOverrides(cfg *Config, overrides *CLIOverrides) error {
	if overrides.Port != nil && *overrides.Port != "" {
		cfg.Port = *overrides.Port
	}

	if overrides.LogLevel != nil && *overrides.LogLevel != "" {
		cfg.LogLevel = *overrides.LogLevel
	}

	if overrides.ShippingMode != nil && *overrides.ShippingMode != "" {
		if err := applyDefaults(&cfg.SessionDefaults, *overrides.ShippingMode, "", ""); err != nil {
			return fmt.Errorf("parse shipping mode: %w", err)
		}
	}

	if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
		cfg.RateLimitRPS = *overrides.RateLimitRPS
	}

	if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
		cfg.RateLimitBurst = *overrides.RateLimitBurst
	}

	return nil
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}
	if cfg.MaxSessions <= 0 {
		return fmt.Errorf("max sessions must be positive")
	}
	if cfg.MaxBoxes <= 0 {
		return fmt.Errorf("max boxes must be positive")
	}
	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	return nil
}

// applyDefaults parses the non-empty selections into dst. dst is left
// untouched when any of them is invalid.
func applyDefaults(dst *calculator.Config, mode, weightUnit, dimensionUnit string) error {
	next := *dst
	if mode != "" {
		m, err := calculator.ParseShippingMode(mode)
		if err != nil {
			return err
		}
		next.ShippingMode = m
	}
	if weightUnit != "" {
		u, err := calculator.ParseWeightUnit(weightUnit)
		if err != nil {
			return err
		}
		next.WeightUnit = u
	}
	if dimensionUnit != "" {
		u, err := calculator.ParseDimensionUnit(dimensionUnit)
		if err != nil {
			return err
		}
		next.DimensionUnit = u
	}
	*dst = next
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
