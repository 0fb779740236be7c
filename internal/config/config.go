package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Insight   InsightConfig   `yaml:"insight" mapstructure:"insight"`
	Grid      GridConfig      `yaml:"grid" mapstructure:"grid"`
	Scenario  ScenarioConfig  `yaml:"scenario" mapstructure:"scenario"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	CacheTTL    string  `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// InsightConfig tunes rate limiting, retries and the circuit breaker around
// the insight provider.
type InsightConfig struct {
	RatePerSecond       float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	Burst               int     `yaml:"burst" mapstructure:"burst"`
	MaxAttempts         int     `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs    int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs        int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
	BreakerThreshold    int     `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerCooldownSecs int     `yaml:"breaker_cooldown_secs" mapstructure:"breaker_cooldown_secs"`
}

// GridConfig configures grid generation and the grid cache.
type GridConfig struct {
	Workers      int `yaml:"workers" mapstructure:"workers"`
	CacheEntries int `yaml:"cache_entries" mapstructure:"cache_entries"`
	CacheTTLMins int `yaml:"cache_ttl_mins" mapstructure:"cache_ttl_mins"`
}

// ScenarioConfig selects the zone dataset and timeline. An empty File uses
// the embedded scenario; empty Checkpoints use the default timeline.
type ScenarioConfig struct {
	File        string             `yaml:"file" mapstructure:"file"`
	Checkpoints []CheckpointConfig `yaml:"checkpoints" mapstructure:"checkpoints"`
}

// CheckpointConfig is one configured timeline checkpoint.
type CheckpointConfig struct {
	Label          string `yaml:"label" mapstructure:"label"`
	Year           int    `yaml:"year" mapstructure:"year"`
	RecoveryFactor int    `yaml:"recovery_factor" mapstructure:"recovery_factor"`
}

// Load reads configuration from config.yaml and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LANDSCOPE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("anthropic.temperature", 0.3)
	v.SetDefault("anthropic.cache_ttl", "5m")
	v.SetDefault("anthropic.timeout_secs", 60)
	v.SetDefault("insight.rate_per_second", 2.0)
	v.SetDefault("insight.burst", 2)
	v.SetDefault("insight.max_attempts", 3)
	v.SetDefault("insight.initial_backoff_ms", 500)
	v.SetDefault("insight.max_backoff_ms", 10000)
	v.SetDefault("insight.breaker_threshold", 5)
	v.SetDefault("insight.breaker_cooldown_secs", 30)
	v.SetDefault("grid.workers", 4)
	v.SetDefault("grid.cache_entries", 16)
	v.SetDefault("grid.cache_ttl_mins", 60)
	v.SetDefault("scenario.file", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the settings a command depends on are present.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "grid", "classify", "timeline", "zones", "export", "blend":
	case "insight":
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required")
		}
		problems = append(problems, c.insightProblems()...)
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, fmt.Sprintf("server.port must be > 0 and <= 65535 (got %d)", c.Server.Port))
		}
		problems = append(problems, c.insightProblems()...)
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Grid.Workers < 1 {
		problems = append(problems, fmt.Sprintf("grid.workers must be >= 1 (got %d)", c.Grid.Workers))
	}
	for i, cp := range c.Scenario.Checkpoints {
		if cp.Label == "" {
			problems = append(problems, fmt.Sprintf("scenario.checkpoints[%d].label is required", i))
		}
	}

	if len(problems) > 0 {
		return eris.Errorf("config: invalid for %s: %s", mode, strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) insightProblems() []string {
	var problems []string
	if c.Insight.RatePerSecond < 0 {
		problems = append(problems, "insight.rate_per_second must be >= 0")
	}
	if c.Insight.MaxAttempts < 1 {
		problems = append(problems, fmt.Sprintf("insight.max_attempts must be >= 1 (got %d)", c.Insight.MaxAttempts))
	}
	switch c.Anthropic.CacheTTL {
	case "", "5m", "1h":
	default:
		problems = append(problems, fmt.Sprintf("anthropic.cache_ttl must be 5m or 1h (got %q)", c.Anthropic.CacheTTL))
	}
	return problems
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
