package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Dictionary sources.
const (
	DictionaryEmbedded = "embedded"
	DictionaryDir      = "dir"
	DictionaryRedis    = "redis"
)

// Config holds the application configuration.
type Config struct {
	ServerPort string
	LogLevel   string
	LogFormat  string

	DictionarySource string
	DictionaryDir    string

	RedisURL       string
	RedisKeyPrefix string
}

// Load reads an optional .env file and then the environment.
func Load() *Config {
	// A missing .env file is fine.
	_ = godotenv.Load()

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		DictionarySource: getEnv("DICTIONARY_SOURCE", DictionaryEmbedded),
		DictionaryDir:    getEnv("DICTIONARY_DIR", "dictionaries"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisKeyPrefix:   getEnv("REDIS_KEY_PREFIX", "dictionary:"),
	}
}

// Validate reports settings that cannot work.
func (c *Config) Validate() error {
	switch c.DictionarySource {
	case DictionaryEmbedded, DictionaryDir, DictionaryRedis:
	default:
		return fmt.Errorf("unknown dictionary source %q", c.DictionarySource)
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.LogFormat)
	}
	if c.ServerPort == "" {
		return fmt.Errorf("server port must not be empty")
	}
	return nil
}

// Level maps LogLevel onto a slog level, defaulting to info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
