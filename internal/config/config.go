// Package config loads server settings from the environment.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// EnvProduction enables Secure cookies and mandatory secrets.
const EnvProduction = "production"

// csrfKeyBytes is the gorilla/csrf auth key length.
const csrfKeyBytes = 32

var (
	ErrMissingSecret  = errors.New("secret is required in production")
	ErrInvalidCSRFKey = errors.New("BOGONINJA_CSRF_KEY must be 64 hex characters (32 bytes)")
	ErrInvalidDriver  = errors.New("BOGONINJA_DB_DRIVER must be sqlite or pgx")
	ErrInvalidLevel   = errors.New("BOGONINJA_LOG_LEVEL must be debug, info, warn or error")
)

// Config is the full server configuration.
type Config struct {
	Env      string `env:"BOGONINJA_ENV" envDefault:"development"`
	Addr     string `env:"BOGONINJA_ADDR" envDefault:":8080"`
	LogLevel string `env:"BOGONINJA_LOG_LEVEL" envDefault:"info"`

	DBDriver    string `env:"BOGONINJA_DB_DRIVER" envDefault:"sqlite"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"bogoninja.db"`

	JWTSecret         string `env:"JWT_SECRET"`
	UnsubscribeSecret string `env:"UNSUBSCRIBE_SECRET"`
	CSRFKeyHex        string `env:"BOGONINJA_CSRF_KEY"`

	BaseURL        string   `env:"BOGONINJA_BASE_URL" envDefault:"https://bogota.ninja"`
	StaticDir      string   `env:"BOGONINJA_STATIC_DIR" envDefault:"public"`
	TrustedOrigins []string `env:"BOGONINJA_TRUSTED_ORIGINS" envSeparator:","`

	Resend Resend

	RateLimit     int `env:"BOGONINJA_RATE_LIMIT" envDefault:"10"`
	SlowRequestMs int `env:"BOGONINJA_SLOW_REQUEST_MS" envDefault:"200"`
	SlowQueryMs   int `env:"BOGONINJA_SLOW_QUERY_MS" envDefault:"50"`

	AdminEmail    string `env:"BOGONINJA_ADMIN_EMAIL"`
	AdminPassword string `env:"BOGONINJA_ADMIN_PASSWORD"`

	// CSRFKey is decoded from CSRFKeyHex by Load.
	CSRFKey []byte
}

// Resend holds the email provider settings. An empty APIKey selects the noop sender.
type Resend struct {
	APIKey string `env:"RESEND_API_KEY"`
	Sender string `env:"RESEND_SENDER" envDefault:"Bogoninja <noreply@bogota.ninja>"`
	Copy   string `env:"RESEND_COPY"`
}

// IsProduction reports whether the server runs with production guarantees.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads the process environment.
func Load() (Config, error) {
	return load(env.Options{})
}

// LoadFrom reads configuration from vars instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return load(env.Options{Environment: vars})
}

// load parses, validates and fills in secrets.
// POST: In production every secret is set; in development missing secrets are random
func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.DBDriver != "sqlite" && cfg.DBDriver != "pgx" {
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidDriver, cfg.DBDriver)
	}
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrInvalidLevel, cfg.LogLevel)
	}

	if cfg.CSRFKeyHex != "" {
		key, err := hex.DecodeString(cfg.CSRFKeyHex)
		if err != nil || len(key) != csrfKeyBytes {
			return Config{}, ErrInvalidCSRFKey
		}
		cfg.CSRFKey = key
	}

	secrets := []struct {
		name  string
		value *string
	}{
		{"JWT_SECRET", &cfg.JWTSecret},
		{"UNSUBSCRIBE_SECRET", &cfg.UnsubscribeSecret},
	}
	for _, s := range secrets {
		if *s.value != "" {
			continue
		}
		if cfg.IsProduction() {
			return Config{}, fmt.Errorf("%s: %w", s.name, ErrMissingSecret)
		}
		*s.value = randomHex(32)
		slog.Warn("config_event", "event", "random_secret", "var", s.name,
			"detail", "sessions and links won't survive restart")
	}

	if cfg.CSRFKey == nil {
		if cfg.IsProduction() {
			return Config{}, fmt.Errorf("BOGONINJA_CSRF_KEY: %w", ErrMissingSecret)
		}
		cfg.CSRFKey, _ = hex.DecodeString(randomHex(csrfKeyBytes))
		slog.Warn("config_event", "event", "random_secret", "var", "BOGONINJA_CSRF_KEY")
	}

	if cfg.Resend.APIKey == "" && cfg.IsProduction() {
		slog.Warn("config_event", "event", "email_disabled", "detail", "RESEND_API_KEY is empty; emails are only logged")
	}
	return cfg, nil
}

func randomHex(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("crypto/rand: %v", err))
	}
	return hex.EncodeToString(b)
}
