// Package config loads server settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Host    string
	Port    int
	WebRoot string

	// TrustProxy honours X-Forwarded-For / X-Real-IP. Only enable it behind
	// a reverse proxy that overwrites those headers; otherwise clients can
	// pick their own address and dodge the login rate limit.
	TrustProxy bool

	Store   StoreConfig
	Session SessionConfig
	Auth    AuthConfig
	GitHub  GitHubConfig
	Log     LogConfig

	MaxBodyBytes int64

	// parse errors collected while reading the environment, reported by
	// Validate
	errs []error
}

type StoreConfig struct {
	Backend  string // json | sqlite
	DataFile string
	DBPath   string
}

type SessionConfig struct {
	Backend       string // memory | redis | jwt
	TTL           time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	JWTSecret     string
}

type AuthConfig struct {
	PasswordHash string // sha256 | bcrypt
	BcryptCost   int
	RateLimit    int // requests per minute per IP on login/signup
	RateBurst    int
}

type GitHubConfig struct {
	ClientID     string
	ClientSecret string
	CallbackURL  string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env from the working directory when present, then the
// environment. Variables already set in the environment win over .env.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: reading .env: %w", err)
	}
	return FromEnv(), nil
}

// FromEnv builds a Config from the process environment and the defaults.
func FromEnv() *Config {
	c := &Config{}

	c.Host = getEnv("HOST", "0.0.0.0")
	c.Port = c.getEnvAsInt("PORT", 8000)
	c.WebRoot = getEnv("WEB_ROOT", "web")
	c.TrustProxy = c.getEnvAsBool("TRUST_PROXY", false)
	c.MaxBodyBytes = int64(c.getEnvAsInt("MAX_BODY_BYTES", 1<<20))

	c.Store = StoreConfig{
		Backend:  getEnv("STORE_BACKEND", "json"),
		DataFile: getEnv("DATA_FILE", "data/db.json"),
		DBPath:   getEnv("DB_PATH", "data/kanban.db"),
	}
	c.Session = SessionConfig{
		Backend:       getEnv("SESSION_BACKEND", "memory"),
		TTL:           c.getEnvAsDuration("SESSION_TTL", 0),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       c.getEnvAsInt("REDIS_DB", 0),
		JWTSecret:     getEnv("JWT_SECRET", ""),
	}
	c.Auth = AuthConfig{
		PasswordHash: getEnv("PASSWORD_HASH", "sha256"),
		BcryptCost:   c.getEnvAsInt("BCRYPT_COST", 12),
		RateLimit:    c.getEnvAsInt("AUTH_RATE_LIMIT", 30),
		RateBurst:    c.getEnvAsInt("AUTH_RATE_BURST", 10),
	}
	c.GitHub = GitHubConfig{
		ClientID:     getEnv("GITHUB_CLIENT_ID", ""),
		ClientSecret: getEnv("GITHUB_CLIENT_SECRET", ""),
		CallbackURL:  getEnv("GITHUB_CALLBACK_URL", ""),
	}
	c.Log = LogConfig{
		Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}
	return c
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	errs := append([]error(nil), c.errs...)
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.Port < 1 || c.Port > 65535 {
		add("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxBodyBytes <= 0 {
		add("MAX_BODY_BYTES must be positive")
	}

	switch c.Store.Backend {
	case "json":
		if c.Store.DataFile == "" {
			add("DATA_FILE is required for the json store")
		}
	case "sqlite":
		if c.Store.DBPath == "" {
			add("DB_PATH is required for the sqlite store")
		}
	default:
		add("STORE_BACKEND must be json or sqlite, got %q", c.Store.Backend)
	}

	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Session.RedisAddr == "" {
			add("REDIS_ADDR is required for redis sessions")
		}
	case "jwt":
		if len(c.Session.JWTSecret) < 16 {
			add("JWT_SECRET must be at least 16 characters for jwt sessions")
		}
	default:
		add("SESSION_BACKEND must be memory, redis or jwt, got %q", c.Session.Backend)
	}
	if c.Session.TTL < 0 {
		add("SESSION_TTL must not be negative")
	}

	switch c.Auth.PasswordHash {
	case "sha256":
	case "bcrypt":
		if c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31 {
			add("BCRYPT_COST must be between 4 and 31, got %d", c.Auth.BcryptCost)
		}
	default:
		add("PASSWORD_HASH must be sha256 or bcrypt, got %q", c.Auth.PasswordHash)
	}
	if c.Auth.RateLimit < 0 || c.Auth.RateBurst < 0 {
		add("AUTH_RATE_LIMIT and AUTH_RATE_BURST must not be negative")
	}

	if c.GitHub.ClientID != "" && c.GitHub.ClientSecret == "" {
		add("GITHUB_CLIENT_SECRET is required when GITHUB_CLIENT_ID is set")
	}

	if _, err := parseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		add("LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}

	return errors.Join(errs...)
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) GitHubEnabled() bool {
	return c.GitHub.ClientID != ""
}

// GitHubCallback returns the configured callback URL or the local default.
func (c *Config) GitHubCallback() string {
	if c.GitHub.CallbackURL != "" {
		return c.GitHub.CallbackURL
	}
	return fmt.Sprintf("http://localhost:%d/auth/github/callback", c.Port)
}

// RateLimitEnabled is false when AUTH_RATE_LIMIT is 0.
func (c *Config) RateLimitEnabled() bool {
	return c.Auth.RateLimit > 0
}

// NewLogger builds the process logger. Invalid levels fall back to info;
// Validate reports them.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", s)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s must be an integer, got %q", key, value))
		return defaultValue
	}
	return intValue
}

func (c *Config) getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		c.errs = append(c.errs, fmt.Errorf("%s must be true or false, got %q", key, value))
		return defaultValue
	}
	return boolValue
}

// getEnvAsDuration accepts Go durations ("24h") and bare seconds ("3600").
func (c *Config) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	c.errs = append(c.errs, fmt.Errorf("%s must be a duration like 24h, got %q", key, value))
	return defaultValue
}
