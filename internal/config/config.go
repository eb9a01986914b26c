// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Pipeline   PipelineConfig   `mapstructure:"pipeline"`
	Search     SearchConfig     `mapstructure:"search"`
	Notices    NoticesConfig    `mapstructure:"notices"`
	Summarizer SummarizerConfig `mapstructure:"summarizer"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// PipelineConfig governs the worker pool and default result budgets.
type PipelineConfig struct {
	Workers int `mapstructure:"workers"`
	WebTopK int `mapstructure:"web_top_k"`
}

// SearchConfig holds web/profile search credentials.
type SearchConfig struct {
	TavilyAPIKey string `mapstructure:"tavily_api_key"`
}

// NoticesConfig configures the notice-portal sources.
type NoticesConfig struct {
	FeedURL        string             `mapstructure:"feed_url"`
	PortalURL      string             `mapstructure:"portal_url"`
	PortalAPIKey   string             `mapstructure:"portal_api_key"`
	ATopK          int                `mapstructure:"a_top_k"`
	BTopK          int                `mapstructure:"b_top_k"`
	WebTopK        int                `mapstructure:"web_top_k"`
	UseWebFallback bool               `mapstructure:"use_web_fallback"`
	Trust          map[string]float64 `mapstructure:"trust"`
}

// SummarizerConfig selects the summarization capability. An empty API
// key disables summarization rather than failing.
type SummarizerConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// HTTPConfig configures outbound HTTP client behavior.
type HTTPConfig struct {
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	UserAgent      string `mapstructure:"user_agent"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("FINSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("pipeline.workers", 4)
	v.SetDefault("pipeline.web_top_k", 6)
	// Credential and URL keys default to empty so environment
	// overrides are visible to Unmarshal.
	v.SetDefault("search.tavily_api_key", "")
	v.SetDefault("notices.feed_url", "")
	v.SetDefault("notices.portal_url", "")
	v.SetDefault("notices.portal_api_key", "")
	v.SetDefault("summarizer.api_key", "")
	v.SetDefault("http.user_agent", "")
	v.SetDefault("notices.a_top_k", 3)
	v.SetDefault("notices.b_top_k", 2)
	v.SetDefault("notices.web_top_k", 2)
	v.SetDefault("notices.use_web_fallback", true)
	v.SetDefault("summarizer.model", "gemini-2.0-flash")
	v.SetDefault("http.timeout_seconds", 20)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Pipeline.Workers <= 0 {
		return fmt.Errorf("pipeline.workers must be > 0")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	return nil
}

// RequestTimeout converts the HTTP timeout config into a duration.
func (c Config) RequestTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
