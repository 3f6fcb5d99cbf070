package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings for the ledger server
type Config struct {
	ServerPort      string
	LogLevel        string
	LogFormat       string
	MaxInflight     int
	ShutdownTimeout time.Duration
	KafkaBrokers    []string
	KafkaTopic      string
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:      getEnv("LEDGER_HTTP_PORT", "8080"),
		LogLevel:        strings.ToLower(getEnv("LEDGER_LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getEnv("LEDGER_LOG_FORMAT", "json")),
		MaxInflight:     getIntEnv("LEDGER_HTTP_MAX_INFLIGHT", 64),
		ShutdownTimeout: getDurationEnv("LEDGER_SHUTDOWN_TIMEOUT", 30*time.Second),
		KafkaBrokers:    splitList(os.Getenv("LEDGER_KAFKA_BROKERS")),
		KafkaTopic:      getEnv("LEDGER_KAFKA_TOPIC", "ledger-events"),
	}
}

// SlogLevel maps LogLevel onto slog levels, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
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

// EventsEnabled reports whether ledger events go to Kafka.
func (c *Config) EventsEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getDurationEnv(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
