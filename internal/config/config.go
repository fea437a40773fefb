package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for ideaforge
type Config struct {
	Server    ServerConfig
	Providers ProvidersConfig
	Cache     CacheConfig
	Redis     RedisConfig
	Generate  GenerateConfig
	Templates TemplatesConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string
	Port int
}

// ProvidersConfig holds local LLM endpoint configuration
type ProvidersConfig struct {
	OllamaEndpoint   string
	LMStudioEndpoint string
	ProbeTimeout     time.Duration
	PollInterval     time.Duration
}

// CacheConfig holds provider cache configuration
type CacheConfig struct {
	TTL time.Duration
}

// RedisConfig holds Redis configuration. An empty address keeps the
// provider cache in memory.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// Enabled reports whether a Redis address is configured
func (c RedisConfig) Enabled() bool {
	return c.Address != ""
}

// GenerateConfig holds idea generation configuration
type GenerateConfig struct {
	Timeout       time.Duration
	RatePerMinute int
}

// TemplatesConfig holds templates configuration
type TemplatesConfig struct {
	Dir string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level slog.Level
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "127.0.0.1"),
			Port: getEnvAsInt("SERVER_PORT", 8080),
		},
		Providers: ProvidersConfig{
			OllamaEndpoint:   getEnv("OLLAMA_ENDPOINT", "http://localhost:11434"),
			LMStudioEndpoint: getEnv("LMSTUDIO_ENDPOINT", "http://localhost:1234"),
			ProbeTimeout:     getEnvAsDuration("PROBE_TIMEOUT", 3*time.Second),
			PollInterval:     getEnvAsDuration("PROVIDER_POLL_INTERVAL", 30*time.Second),
		},
		Cache: CacheConfig{
			TTL: getEnvAsDuration("PROVIDER_CACHE_TTL", 5*time.Minute),
		},
		Redis: RedisConfig{
			Address:  getEnv("REDIS_ADDRESS", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Generate: GenerateConfig{
			Timeout:       getEnvAsDuration("GENERATE_TIMEOUT", 120*time.Second),
			RatePerMinute: getEnvAsInt("GENERATE_RATE_PER_MINUTE", 30),
		},
		Templates: TemplatesConfig{
			Dir: getEnv("TEMPLATES_DIR", ""),
		},
		Log: LogConfig{
			Level: getEnvAsLevel("LOG_LEVEL", slog.LevelInfo),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	for name, endpoint := range map[string]string{
		"OLLAMA_ENDPOINT":   c.Providers.OllamaEndpoint,
		"LMSTUDIO_ENDPOINT": c.Providers.LMStudioEndpoint,
	} {
		u, err := url.Parse(endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid %s: %q", name, endpoint)
		}
	}

	if c.Providers.ProbeTimeout <= 0 {
		return fmt.Errorf("probe timeout must be positive")
	}
	if c.Providers.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive")
	}
	if c.Generate.Timeout <= 0 {
		return fmt.Errorf("generate timeout must be positive")
	}
	if c.Generate.RatePerMinute < 0 {
		return fmt.Errorf("generate rate must not be negative")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvAsLevel(key string, defaultValue slog.Level) slog.Level {
	if value, exists := os.LookupEnv(key); exists {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.TrimSpace(value))); err == nil {
			return level
		}
	}
	return defaultValue
}
