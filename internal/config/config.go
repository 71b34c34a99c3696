// Package config loads vibe-risk settings from viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/inodb/vibe-risk/internal/risk"
)

// EnvPrefix is the prefix for environment overrides, e.g. VIBE_RISK_SERVER_ADDR.
const EnvPrefix = "VIBE_RISK"

// FileName is the config file name in the user's home directory.
const FileName = ".vibe-risk.yaml"

// Config holds all settings.
type Config struct {
	Analyzer        AnalyzerConfig        `mapstructure:"analyzer"`
	Catalog         CatalogConfig         `mapstructure:"catalog"`
	Input           InputConfig           `mapstructure:"input"`
	Recommendations RecommendationsConfig `mapstructure:"recommendations"`
	Server          ServerConfig          `mapstructure:"server"`
	Log             LogConfig             `mapstructure:"log"`
}

// AnalyzerConfig configures the external analyzer process.
type AnalyzerConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Command string        `mapstructure:"command"`
	Args    []string      `mapstructure:"args"`
	Timeout time.Duration `mapstructure:"timeout"`
	TempDir string        `mapstructure:"temp_dir"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig configures the circuit breaker around the analyzer.
type BreakerConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Failures uint32        `mapstructure:"failures"`
	Cooldown time.Duration `mapstructure:"cooldown"`
}

// CatalogConfig selects the signature catalog. An empty path is the built-in catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// InputConfig bounds how uploaded bytes are decoded.
type InputConfig struct {
	MaxDecodedBytes int64 `mapstructure:"max_decoded_bytes"`
}

// RecommendationsConfig selects how recommendation text is attached.
type RecommendationsConfig struct {
	Mode string `mapstructure:"mode"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr           string        `mapstructure:"addr"`
	MaxUploadBytes int64         `mapstructure:"max_upload_bytes"`
	RateLimit      float64       `mapstructure:"rate_limit"` // requests per second, 0 disables
	Burst          int           `mapstructure:"burst"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("analyzer.enabled", true)
	v.SetDefault("analyzer.command", "python3")
	v.SetDefault("analyzer.args", []string{"scripts/dna_variant_analyzer.py"})
	v.SetDefault("analyzer.timeout", "30s")
	v.SetDefault("analyzer.temp_dir", "")
	v.SetDefault("analyzer.breaker.enabled", true)
	v.SetDefault("analyzer.breaker.failures", 3)
	v.SetDefault("analyzer.breaker.cooldown", "60s")

	v.SetDefault("catalog.path", "")
	v.SetDefault("input.max_decoded_bytes", 128<<20)
	v.SetDefault("recommendations.mode", string(risk.ModeFixed))

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.max_upload_bytes", 100<<20)
	v.SetDefault("server.rate_limit", 5)
	v.SetDefault("server.burst", 10)
	v.SetDefault("server.read_timeout", "60s")
	v.SetDefault("server.write_timeout", "90s")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// BindEnv enables VIBE_RISK_* environment overrides on v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals and validates the settings held by v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	if c.Analyzer.Enabled && c.Analyzer.Command == "" {
		return fmt.Errorf("analyzer.command is required when analyzer.enabled is true")
	}
	if c.Analyzer.Timeout < 0 {
		return fmt.Errorf("invalid analyzer.timeout: %s", c.Analyzer.Timeout)
	}
	if c.Input.MaxDecodedBytes <= 0 {
		return fmt.Errorf("invalid input.max_decoded_bytes: %d", c.Input.MaxDecodedBytes)
	}
	if _, err := risk.ParseMode(c.Recommendations.Mode); err != nil {
		return fmt.Errorf("invalid recommendations.mode: %w", err)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("invalid server.max_upload_bytes: %d", c.Server.MaxUploadBytes)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("invalid server.rate_limit: %v", c.Server.RateLimit)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log.level: %s", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log.format: %s", c.Log.Format)
	}
	return nil
}

// RecommendationMode returns the parsed recommendation mode.
func (c *Config) RecommendationMode() risk.Mode {
	m, err := risk.ParseMode(c.Recommendations.Mode)
	if err != nil {
		return risk.ModeFixed
	}
	return m
}
