package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Backend names accepted by PORTFOLIO_BACKEND.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendNeo4j    = "neo4j"
)

// Config errors
var (
	ErrUnknownBackend   = errors.New("unknown backend")
	ErrMissingSecret    = errors.New("required secret is not set in production")
	ErrMissingBackendDS = errors.New("backend connection settings are incomplete")
)

// Config holds every runtime setting. Values come from PORTFOLIO_* environment variables.
type Config struct {
	Env     string `env:"PORTFOLIO_ENV"     envDefault:"development"`
	Addr    string `env:"PORTFOLIO_ADDR"    envDefault:":8080"`
	Backend string `env:"PORTFOLIO_BACKEND" envDefault:"sqlite"`

	DataDir     string `env:"PORTFOLIO_DATA_DIR"     envDefault:"data"`
	SQLitePath  string `env:"PORTFOLIO_SQLITE_PATH"  envDefault:"portfolio.db"`
	PostgresDSN string `env:"PORTFOLIO_POSTGRES_DSN"`

	Neo4jURI      string `env:"PORTFOLIO_NEO4J_URI"`
	Neo4jUser     string `env:"PORTFOLIO_NEO4J_USER"     envDefault:"neo4j"`
	Neo4jPassword string `env:"PORTFOLIO_NEO4J_PASSWORD"`
	Neo4jDatabase string `env:"PORTFOLIO_NEO4J_DATABASE" envDefault:"neo4j"`

	AdminEmail    string `env:"PORTFOLIO_ADMIN_EMAIL"    envDefault:"admin@example.com"`
	AdminPassword string `env:"PORTFOLIO_ADMIN_PASSWORD"`

	CSRFKey        string        `env:"PORTFOLIO_CSRF_KEY"`
	CookieKey      string        `env:"PORTFOLIO_COOKIE_KEY"`
	SessionTTL     time.Duration `env:"PORTFOLIO_SESSION_TTL"     envDefault:"24h"`
	TrustedOrigins []string      `env:"PORTFOLIO_TRUSTED_ORIGINS" envSeparator:","`

	ResendKey string `env:"PORTFOLIO_RESEND_KEY"`
	EmailFrom string `env:"PORTFOLIO_EMAIL_FROM" envDefault:"Portfolio <noreply@example.com>"`
	NotifyTo  string `env:"PORTFOLIO_NOTIFY_TO"`

	SlowQueryMs        int     `env:"PORTFOLIO_SLOW_QUERY_MS"        envDefault:"50"`
	SlowRequestMs      int     `env:"PORTFOLIO_SLOW_REQUEST_MS"      envDefault:"200"`
	RateLimitPerMinute int     `env:"PORTFOLIO_RATE_LIMIT_PER_MINUTE" envDefault:"5"`
	OTelEndpoint       string  `env:"PORTFOLIO_OTEL_ENDPOINT"`
	LogLevel           string  `env:"PORTFOLIO_LOG_LEVEL"            envDefault:"info"`
	TraceSampleRatio   float64 `env:"PORTFOLIO_TRACE_SAMPLE_RATIO"   envDefault:"1"`
}

// Load parses the environment into a Config and validates it.
// POST: returned Config passed Validate
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProduction reports whether PORTFOLIO_ENV is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks backend settings and, in production, required secrets.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: PORTFOLIO_POSTGRES_DSN", ErrMissingBackendDS)
		}
	case BackendNeo4j:
		if c.Neo4jURI == "" {
			return fmt.Errorf("%w: PORTFOLIO_NEO4J_URI", ErrMissingBackendDS)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownBackend, c.Backend)
	}
	if !c.IsProduction() {
		return nil
	}
	// PORTFOLIO_ADMIN_PASSWORD is checked at startup, and only while no
	// account exists.
	for name, v := range map[string]string{
		"PORTFOLIO_CSRF_KEY":   c.CSRFKey,
		"PORTFOLIO_COOKIE_KEY": c.CookieKey,
	} {
		if v == "" {
			return fmt.Errorf("%w: %s", ErrMissingSecret, name)
		}
	}
	return nil
}

// Level maps LogLevel onto a slog level. Unknown values fall back to info.
func (c Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds the process logger: JSON in production, text otherwise.
func (c Config) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.Level()}
	if c.IsProduction() {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
