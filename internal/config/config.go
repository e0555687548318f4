package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// DevSecretKey is the fallback signing key. Validate warns about it through
// Warnings; it is never acceptable outside local development.
const DevSecretKey = "dev-secret-change-me"

type Config struct {
	// HTTP Server
	Port     string `env:"PORT" envDefault:"8081"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Financial record backend
	DataBackend  string `env:"DATA_BACKEND" envDefault:"file"`
	DataFile     string `env:"DATA_FILE" envDefault:"data.json"`
	SQLiteDBPath string `env:"SQLITE_DB_PATH" envDefault:"./data/finboard.db"`

	// Session
	SecretKey           string        `env:"SECRET_KEY" envDefault:"dev-secret-change-me"`
	SessionCookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"session"`
	SessionMaxAge       time.Duration `env:"SESSION_MAX_AGE" envDefault:"12h"`
	SessionSecureCookie bool          `env:"SESSION_SECURE_COOKIE" envDefault:"false"`

	// Dashboard credentials
	Username     string `env:"DASHBOARD_USERNAME" envDefault:"user"`
	Password     string `env:"DASHBOARD_PASSWORD" envDefault:"pass"`
	PasswordHash string `env:"DASHBOARD_PASSWORD_HASH"`

	// Text generation
	GeminiAPIKey      string        `env:"GEMINI_API_KEY"`
	GeminiModel       string        `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash-latest"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"30s"`
	ChatRequireLogin  bool          `env:"CHAT_REQUIRE_LOGIN" envDefault:"false"`

	// Presentation
	CurrencySymbol string `env:"CURRENCY_SYMBOL" envDefault:"RM"`

	// AMQP chat audit (disabled when AMQP_URL is empty)
	AMQPURL      string `env:"AMQP_URL"`
	AMQPExchange string `env:"AMQP_EXCHANGE" envDefault:"finboard"`
	AMQPQueue    string `env:"AMQP_QUEUE" envDefault:"chat_audit"`
}

// Load parses the configuration from the process environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	// Validate port
	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if _, ok := ParseLogLevel(c.LogLevel); !ok {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	// Validate data backend
	validBackends := []string{BackendFile, BackendSQLite}
	if !slices.Contains(validBackends, c.DataBackend) {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == BackendFile && c.DataFile == "" {
		errors = append(errors, "data file path cannot be empty when using file backend")
	}

	// Validate SQLite configuration if backend is sqlite
	if c.DataBackend == BackendSQLite {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// Session
	if c.SecretKey == "" {
		errors = append(errors, "secret key cannot be empty")
	}
	if c.SessionCookieName == "" {
		errors = append(errors, "session cookie name cannot be empty")
	}
	if c.SessionMaxAge < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session max age %v: must be at least 1 minute", c.SessionMaxAge))
	}

	// Credentials
	if c.Username == "" {
		errors = append(errors, "dashboard username cannot be empty")
	}
	if c.Password == "" && c.PasswordHash == "" {
		errors = append(errors, "either DASHBOARD_PASSWORD or DASHBOARD_PASSWORD_HASH must be provided")
	}
	if c.PasswordHash != "" && !strings.HasPrefix(c.PasswordHash, "$2") {
		errors = append(errors, "dashboard password hash must be a bcrypt hash")
	}

	// Generation
	if c.GeminiModel == "" {
		errors = append(errors, "Gemini model name cannot be empty")
	}
	if c.GenerationTimeout < time.Second {
		errors = append(errors, fmt.Sprintf("invalid generation timeout %v: must be at least 1 second", c.GenerationTimeout))
	} else if c.GenerationTimeout > 5*time.Minute {
		errors = append(errors, fmt.Sprintf("invalid generation timeout %v: must be at most 5 minutes", c.GenerationTimeout))
	}

	// Validate AMQP URL if provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	// Return combined errors
	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// Warnings lists settings that are valid but unsafe or degraded.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.SecretKey == DevSecretKey {
		warnings = append(warnings, "SECRET_KEY is the development default; sessions can be forged")
	}
	if c.PasswordHash == "" && c.Password == "pass" {
		warnings = append(warnings, "dashboard password is the development default")
	}
	if c.GeminiAPIKey == "" {
		warnings = append(warnings, "GEMINI_API_KEY is not set; chat will answer with the error reply")
	}
	return warnings
}
