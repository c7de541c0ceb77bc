package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the engine.
type Config struct {
	OpenAI    OpenAIConfig
	Redis     RedisConfig
	Adventure AdventureConfig
	SRD       SRDConfig
	Log       LogConfig
}

// OpenAIConfig holds the narrator/tactician model configuration.
type OpenAIConfig struct {
	APIKey         string
	NarratorModel  string
	TacticianModel string
}

// RedisConfig holds Redis-specific configuration. An empty URL means the
// engine runs with in-memory persistence only.
type RedisConfig struct {
	URL string
	DB  int
}

// AdventureConfig points at the adventure definition file.
type AdventureConfig struct {
	Path string
}

// SRDConfig holds the external rules-lookup API configuration.
type SRDConfig struct {
	BaseURL string
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string // "json" or "console"
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		OpenAI: OpenAIConfig{
			APIKey:         os.Getenv("OPENAI_API_KEY"),
			NarratorModel:  getEnvOrDefault("NARRATOR_MODEL", "gpt-4o"),
			TacticianModel: getEnvOrDefault("TACTICIAN_MODEL", "gpt-4o-mini"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
			DB:  getEnvAsIntOrDefault("REDIS_DB", 0),
		},
		Adventure: AdventureConfig{
			Path: getEnvOrDefault("ADVENTURE_PATH", "adventure.json"),
		},
		SRD: SRDConfig{
			BaseURL: getEnvOrDefault("SRD_API_URL", "https://www.dnd5eapi.co/api"),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "console"),
		},
	}

	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
