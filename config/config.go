package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server  ServerConfig
	Vision  VisionConfig
	Session SessionConfig
	Logging LoggingConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// VisionConfig holds the vision completion API configuration
type VisionConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	ExtractTimeout    time.Duration `mapstructure:"extract_timeout"`
	ClassifyTimeout   time.Duration `mapstructure:"classify_timeout"`
	ExtractMaxTokens  int           `mapstructure:"extract_max_tokens"`
	ClassifyMaxTokens int           `mapstructure:"classify_max_tokens"`
}

// SessionConfig holds storage configuration for completed scans
type SessionConfig struct {
	Type     string        `mapstructure:"type"` // "memory" or "redis"
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Load loads configuration from .env files, environment variables and config files
func Load() (*Config, error) {
	// .env is optional; real environment variables always win
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/shelfscan/")

	v.SetEnvPrefix("SHELFSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// The proxy historically read the key from OPENAI_API_KEY
	if config.Vision.APIKey == "" {
		config.Vision.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:*"})

	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.base_url", "https://api.openai.com/v1")
	v.SetDefault("vision.model", "gpt-4o")
	v.SetDefault("vision.extract_timeout", "60s")
	v.SetDefault("vision.classify_timeout", "30s")
	v.SetDefault("vision.extract_max_tokens", 1000)
	v.SetDefault("vision.classify_max_tokens", 50)

	v.SetDefault("session.type", "memory")
	v.SetDefault("session.redis_url", "")
	v.SetDefault("session.ttl", "2h")

	v.SetDefault("logging.level", "info")
}

// validate validates the configuration. The vision API key is optional here
// because callers may supply it per request.
func validate(config *Config) error {
	if config.Vision.BaseURL == "" {
		return fmt.Errorf("vision base URL is required (set SHELFSCAN_VISION_BASE_URL)")
	}

	if config.Vision.ExtractTimeout <= 0 || config.Vision.ClassifyTimeout <= 0 {
		return fmt.Errorf("vision timeouts must be positive")
	}

	if config.Vision.ExtractMaxTokens <= 0 || config.Vision.ClassifyMaxTokens <= 0 {
		return fmt.Errorf("vision token budgets must be positive")
	}

	if config.Session.Type != "memory" && config.Session.Type != "redis" {
		return fmt.Errorf("session type must be 'memory' or 'redis', got: %s", config.Session.Type)
	}

	if config.Session.Type == "redis" && config.Session.RedisURL == "" {
		return fmt.Errorf("redis URL is required when session type is 'redis'")
	}

	if config.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}

	return nil
}
