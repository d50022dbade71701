package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Chat      ChatConfig      `mapstructure:"chat"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Policies  PoliciesConfig  `mapstructure:"policies"`
}

type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AnthropicConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	APIKey    string        `mapstructure:"api_key"`
	Model     string        `mapstructure:"model"`
	MaxTokens int           `mapstructure:"max_tokens"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type ChatConfig struct {
	HistoryLimit    int           `mapstructure:"history_limit"`
	ConversationTTL time.Duration `mapstructure:"conversation_ttl"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
}

type RateLimitConfig struct {
	PerMinute     int           `mapstructure:"per_minute"`
	PerHour       int           `mapstructure:"per_hour"`
	IdleTTL       time.Duration `mapstructure:"idle_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type PoliciesConfig struct {
	Dir string `mapstructure:"dir"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("POLICY_CHAT")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.TrimSpace(config.Anthropic.APIKey) == "" {
		config.Anthropic.APIKey = viper.GetString("ANTHROPIC_API_KEY")
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "90s")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	// Anthropic defaults
	viper.SetDefault("anthropic.base_url", "https://api.anthropic.com/v1")
	viper.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	viper.SetDefault("anthropic.max_tokens", 1500)
	viper.SetDefault("anthropic.timeout", "60s")

	// Chat defaults: 10 exchanges of history, 2h idle lifetime, 30m sweep
	viper.SetDefault("chat.history_limit", 20)
	viper.SetDefault("chat.conversation_ttl", "2h")
	viper.SetDefault("chat.sweep_interval", "30m")

	// Rate limit defaults
	viper.SetDefault("rate_limit.per_minute", 10)
	viper.SetDefault("rate_limit.per_hour", 50)
	viper.SetDefault("rate_limit.idle_ttl", "2h")
	viper.SetDefault("rate_limit.sweep_interval", "30m")

	// Policy documents directory
	viper.SetDefault("policies.dir", "PolicyDocuments")
}

func validateConfig(config *Config) error {
	if strings.TrimSpace(config.Anthropic.APIKey) == "" {
		return fmt.Errorf(`Anthropic API key is required.

Set it in config.yaml:
anthropic:
  api_key: "your_api_key_here"

Alternatively, use the environment variable: %s`,
			strings.Join(GetAnthropicEnvVars(), " or "))
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if strings.TrimSpace(config.Anthropic.Model) == "" {
		return fmt.Errorf("anthropic model is required")
	}

	if config.Anthropic.MaxTokens <= 0 {
		return fmt.Errorf("anthropic max_tokens must be positive: %d", config.Anthropic.MaxTokens)
	}

	// History holds user/assistant pairs, so the limit must be even.
	if config.Chat.HistoryLimit <= 0 || config.Chat.HistoryLimit%2 != 0 {
		return fmt.Errorf("chat history limit must be a positive even number: %d", config.Chat.HistoryLimit)
	}

	if config.Chat.ConversationTTL <= 0 {
		return fmt.Errorf("conversation TTL must be positive: %s", config.Chat.ConversationTTL)
	}

	if config.RateLimit.PerMinute <= 0 || config.RateLimit.PerHour <= 0 {
		return fmt.Errorf("rate limits must be positive: %d/min, %d/hour",
			config.RateLimit.PerMinute, config.RateLimit.PerHour)
	}

	if strings.TrimSpace(config.Policies.Dir) == "" {
		return fmt.Errorf("policies directory is required")
	}

	return nil
}

// GetAnthropicEnvVars returns the recommended environment variables for the
// Anthropic API key.
func GetAnthropicEnvVars() []string {
	return []string{
		"POLICY_CHAT_ANTHROPIC_API_KEY",
	}
}
