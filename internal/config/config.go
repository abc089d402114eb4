package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Provider   ProviderConfig   `yaml:"provider" mapstructure:"provider"`
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Serper     SerperConfig     `yaml:"serper" mapstructure:"serper"`
	Perplexity PerplexityConfig `yaml:"perplexity" mapstructure:"perplexity"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Comparison ComparisonConfig `yaml:"comparison" mapstructure:"comparison"`
	Retry      RetryConfig      `yaml:"retry" mapstructure:"retry"`
	Scoring    ScoringConfig    `yaml:"scoring" mapstructure:"scoring"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ProviderConfig selects and tunes the business data provider.
type ProviderConfig struct {
	// Kind is "mock" or "serper".
	Kind string `yaml:"kind" mapstructure:"kind"`

	// MockStrict makes the mock provider fail unknown identifiers
	// instead of fabricating a fallback profile.
	MockStrict bool `yaml:"mock_strict" mapstructure:"mock_strict"`

	// Location biases live search results, e.g. "Helsinki, Finland".
	Location string `yaml:"location" mapstructure:"location"`
}

// LLMConfig selects the analysis provider.
type LLMConfig struct {
	// Kind is "mock", "perplexity", or "anthropic".
	Kind string `yaml:"kind" mapstructure:"kind"`
}

// SerperConfig holds Serper.dev API settings.
type SerperConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// PerplexityConfig holds Perplexity API settings.
type PerplexityConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
	Model   string `yaml:"model" mapstructure:"model"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// ComparisonConfig tunes the comparison orchestrator.
type ComparisonConfig struct {
	CompetitorLimit     int `yaml:"competitor_limit" mapstructure:"competitor_limit"`
	FetchConcurrency    int `yaml:"fetch_concurrency" mapstructure:"fetch_concurrency"`
	FetchTimeoutSecs    int `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	AnalysisTimeoutSecs int `yaml:"analysis_timeout_secs" mapstructure:"analysis_timeout_secs"`
}

// RetryConfig tunes provider-call retries.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
}

// ScoringConfig overrides completeness score weights. Zero values keep
// the defaults.
type ScoringConfig struct {
	PerBooleanField float64 `yaml:"per_boolean_field" mapstructure:"per_boolean_field"`
	ReviewBonus     float64 `yaml:"review_bonus" mapstructure:"review_bonus"`
	ImageBonus      float64 `yaml:"image_bonus" mapstructure:"image_bonus"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("INSIGHTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "insights.db")
	v.SetDefault("provider.kind", "mock")
	v.SetDefault("provider.mock_strict", false)
	v.SetDefault("provider.location", "Helsinki, Finland")
	v.SetDefault("llm.kind", "mock")
	v.SetDefault("serper.base_url", "https://google.serper.dev")
	v.SetDefault("perplexity.base_url", "https://api.perplexity.ai")
	v.SetDefault("perplexity.model", "sonar")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("comparison.competitor_limit", 5)
	v.SetDefault("comparison.fetch_concurrency", 4)
	v.SetDefault("comparison.fetch_timeout_secs", 10)
	v.SetDefault("comparison.analysis_timeout_secs", 30)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff_ms", 500)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})

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

// Validate checks the configuration for the given run mode. Modes:
// "serve" for the HTTP server, "compare" for one-shot CLI comparisons.
func (c *Config) Validate(mode string) error {
	var problems []string

	switch mode {
	case "serve":
		if c.Server.Port <= 0 {
			problems = append(problems, "server.port must be > 0")
		}
	case "compare":
		// No extra requirements beyond the common checks.
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	switch c.Store.Driver {
	case "sqlite":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for postgres")
		}
	case "none":
		// Persistence disabled.
	default:
		problems = append(problems, "store.driver must be one of: sqlite, postgres, none")
	}

	switch c.Provider.Kind {
	case "mock":
	case "serper":
		if c.Serper.Key == "" {
			problems = append(problems, "serper.key is required for provider.kind=serper")
		}
	default:
		problems = append(problems, "provider.kind must be one of: mock, serper")
	}

	switch c.LLM.Kind {
	case "mock":
	case "perplexity":
		if c.Perplexity.Key == "" {
			problems = append(problems, "perplexity.key is required for llm.kind=perplexity")
		}
	case "anthropic":
		if c.Anthropic.Key == "" {
			problems = append(problems, "anthropic.key is required for llm.kind=anthropic")
		}
	default:
		problems = append(problems, "llm.kind must be one of: mock, perplexity, anthropic")
	}

	if c.Comparison.CompetitorLimit < 1 || c.Comparison.CompetitorLimit > 20 {
		problems = append(problems, "comparison.competitor_limit must be between 1 and 20")
	}
	if c.Comparison.FetchConcurrency < 1 || c.Comparison.FetchConcurrency > 16 {
		problems = append(problems, "comparison.fetch_concurrency must be between 1 and 16")
	}
	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > 10 {
		problems = append(problems, "retry.max_attempts must be between 1 and 10")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
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
