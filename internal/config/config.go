package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/vocabuddy/progress/internal/logger"
)

// Remote mirror drivers.
const (
	RemoteNone     = "none"
	RemotePostgres = "postgres"
	RemoteMySQL    = "mysql"
)

type Config struct {
	Addr            string
	DBPath          string
	LogLevel        string
	RemoteDriver    string
	RemoteDSN       string
	PushWorkerCount int
	PushQueueSize   int
	PushTimeout     time.Duration
	AuthSecret      string
	AssistantURL    string
	AssistantKey    string
	AssistantModel  string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:            envOr("ADDR", ":8080"),
		DBPath:          envOr("DB_PATH", "file:vocabuddy.db"),
		LogLevel:        strings.ToUpper(envOr("LOG_LEVEL", "INFO")),
		RemoteDriver:    strings.ToLower(envOr("REMOTE_DRIVER", RemoteNone)),
		RemoteDSN:       envOr("REMOTE_DSN", ""),
		PushWorkerCount: envIntOr("PUSH_WORKER_COUNT", 1),
		PushQueueSize:   envIntOr("PUSH_QUEUE_SIZE", 128),
		PushTimeout:     time.Duration(envIntOr("PUSH_TIMEOUT_SECONDS", 10)) * time.Second,
		AuthSecret:      envOr("AUTH_SECRET", ""),
		AssistantURL:    envOr("ASSISTANT_API_URL", "https://openrouter.ai/api/v1/chat/completions"),
		AssistantKey:    envOr("ASSISTANT_API_KEY", ""),
		AssistantModel:  envOr("ASSISTANT_MODEL", "openai/gpt-4o-mini"),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("DB_PATH cannot be empty"))
	}
	if !logger.ValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Errorf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	switch c.RemoteDriver {
	case RemoteNone:
	case RemotePostgres, RemoteMySQL:
		if c.RemoteDSN == "" {
			errs = append(errs, fmt.Errorf("REMOTE_DSN is required when REMOTE_DRIVER=%s", c.RemoteDriver))
		}
	default:
		errs = append(errs, fmt.Errorf("REMOTE_DRIVER %q must be none, postgres or mysql", c.RemoteDriver))
	}
	if c.PushWorkerCount <= 0 {
		errs = append(errs, errors.New("PUSH_WORKER_COUNT must be positive"))
	}
	if c.PushQueueSize <= 0 {
		errs = append(errs, errors.New("PUSH_QUEUE_SIZE must be positive"))
	}
	if c.PushTimeout <= 0 {
		errs = append(errs, errors.New("PUSH_TIMEOUT_SECONDS must be positive"))
	}
	if c.AuthSecret != "" && len(c.AuthSecret) < 16 {
		errs = append(errs, errors.New("AUTH_SECRET must be at least 16 characters"))
	}
	return errors.Join(errs...)
}

// RemoteEnabled reports whether a remote mirror should be opened.
func (c Config) RemoteEnabled() bool {
	return c.RemoteDriver == RemotePostgres || c.RemoteDriver == RemoteMySQL
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
