// Package config loads the service configuration from file and
// environment, with working defaults for a zero-config start.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the dashboard backend.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	Quotes    QuotesConfig    `mapstructure:"quotes"`
	Feeds     FeedsConfig     `mapstructure:"feeds"`
	Extract   ExtractConfig   `mapstructure:"extract"`
	Video     VideoConfig     `mapstructure:"video"`
	Scores    ScoresConfig    `mapstructure:"scores"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig configures the chat-completion provider behind planning and
// summarization. An empty API key disables the model paths; every
// consumer degrades to its deterministic fallback.
type LLMConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	PlanTimeout time.Duration `mapstructure:"plan_timeout"`
}

// QuotesConfig configures the quote resolver and its advisory cache.
type QuotesConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

// RedisConfig is the optional shared cache backend. Disabled, the
// resolver memoizes in process memory only.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r RedisConfig) Validate() error {
	if r.Enabled && r.Addr == "" {
		return errors.New("quotes.redis.addr is required when redis is enabled")
	}
	return nil
}

// FeedsConfig configures the feed parser.
type FeedsConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ExtractConfig configures the text and preview extractor.
type ExtractConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// VideoConfig configures the video metadata client.
type VideoConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// ScoresConfig configures the football scoreboard client.
type ScoresConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	Leagues []string      `mapstructure:"leagues"`
}

// TelemetryConfig toggles the metrics endpoint.
type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig loads config from the given file, or from the default
// search paths when path is empty. A missing file is not an error; the
// defaults plus HOMEBOARD_* environment variables apply.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("general.default_timeout", "12s")
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.timeout", "20s")
	viper.SetDefault("llm.plan_timeout", "10s")
	viper.SetDefault("quotes.timeout", "10s")
	viper.SetDefault("quotes.redis.enabled", false)
	viper.SetDefault("feeds.timeout", "10s")
	viper.SetDefault("extract.timeout", "12s")
	viper.SetDefault("video.timeout", "8s")
	viper.SetDefault("scores.timeout", "10s")
	viper.SetDefault("telemetry.enabled", true)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("HOMEBOARD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.Quotes.Redis.Validate(); err != nil {
		panic(err)
	}
	return &config
}
