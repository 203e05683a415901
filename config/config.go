package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the regulatory assistant.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
	WebSearch WebSearchConfig `mapstructure:"web_search"`
	Knowledge KnowledgeConfig `mapstructure:"knowledge"`
	Feedback  FeedbackConfig  `mapstructure:"feedback"`
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

// LLMConfig configures the completion service.
type LLMConfig struct {
	Provider        string        `mapstructure:"provider"` // openai
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	CompletionModel string        `mapstructure:"completion_model"`
	EmbeddingModel  string        `mapstructure:"embedding_model"`
	Temperature     float64       `mapstructure:"temperature"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// WebSearchConfig configures live web-search augmentation.
type WebSearchConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Provider   string        `mapstructure:"provider"` // serper, brave
	APIKey     string        `mapstructure:"api_key"`
	MaxResults int           `mapstructure:"max_results"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// KnowledgeConfig contains retrieval and ingestion tunables. The
// confidence threshold and top-k are deployment knobs, not derived
// values.
type KnowledgeConfig struct {
	TopK                int     `mapstructure:"top_k"`
	ConfidenceThreshold float64 `mapstructure:"confidence_threshold"`
	HistoryWindow       int     `mapstructure:"history_window"`
	DocumentCharBudget  int     `mapstructure:"document_char_budget"`
}

// FeedbackConfig contains feedback aggregation settings.
type FeedbackConfig struct {
	RecentLimit int `mapstructure:"recent_limit"`
}

// Load reads configuration from file (json) and REGFAQ_* environment
// variables. A missing config file is fine; defaults and env cover
// everything.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")

	v.SetDefault("general.debug", false)
	v.SetDefault("general.default_timeout", 30*time.Second)
	v.SetDefault("server.address", ":10020")
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.completion_model", "gpt-4o-mini")
	v.SetDefault("llm.embedding_model", "text-embedding-3-small")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 1500)
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("web_search.enabled", true)
	v.SetDefault("web_search.provider", "serper")
	v.SetDefault("web_search.max_results", 5)
	v.SetDefault("web_search.timeout", 10*time.Second)
	v.SetDefault("knowledge.top_k", 5)
	v.SetDefault("knowledge.confidence_threshold", 0.35)
	v.SetDefault("knowledge.history_window", 6)
	v.SetDefault("knowledge.document_char_budget", 12000)
	v.SetDefault("feedback.recent_limit", 10)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("REGFAQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if v.GetString("llm.api_key") == "" {
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			v.Set("llm.api_key", key)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}
