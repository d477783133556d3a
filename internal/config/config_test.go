package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	"HOST", "PORT", "WEB_ROOT", "MAX_BODY_BYTES", "TRUST_PROXY",
	"STORE_BACKEND", "DATA_FILE", "DB_PATH",
	"SESSION_BACKEND", "SESSION_TTL", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "JWT_SECRET",
	"PASSWORD_HASH", "BCRYPT_COST", "AUTH_RATE_LIMIT", "AUTH_RATE_BURST",
	"GITHUB_CLIENT_ID", "GITHUB_CLIENT_SECRET", "GITHUB_CALLBACK_URL",
	"LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every key so the host environment cannot leak in.
// getEnv treats "" as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	c := FromEnv()

	assert.Equal(t, "0.0.0.0", c.Host)
	assert.Equal(t, 8000, c.Port)
	assert.Equal(t, "0.0.0.0:8000", c.Addr())
	assert.Equal(t, "web", c.WebRoot)
	assert.False(t, c.TrustProxy)
	assert.Equal(t, int64(1<<20), c.MaxBodyBytes)
	assert.Equal(t, StoreConfig{Backend: "json", DataFile: "data/db.json", DBPath: "data/kanban.db"}, c.Store)
	assert.Equal(t, "memory", c.Session.Backend)
	assert.Equal(t, time.Duration(0), c.Session.TTL)
	assert.Equal(t, "localhost:6379", c.Session.RedisAddr)
	assert.Equal(t, AuthConfig{PasswordHash: "sha256", BcryptCost: 12, RateLimit: 30, RateBurst: 10}, c.Auth)
	assert.False(t, c.GitHubEnabled())
	assert.Equal(t, "http://localhost:8000/auth/github/callback", c.GitHubCallback())
	assert.True(t, c.RateLimitEnabled())
	assert.NoError(t, c.Validate())
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "sqlite")
	t.Setenv("SESSION_BACKEND", "jwt")
	t.Setenv("JWT_SECRET", "0123456789abcdef")
	t.Setenv("SESSION_TTL", "3600")
	t.Setenv("AUTH_RATE_LIMIT", "0")
	t.Setenv("GITHUB_CLIENT_ID", "id")
	t.Setenv("GITHUB_CLIENT_SECRET", "secret")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("TRUST_PROXY", "true")

	c := FromEnv()
	assert.True(t, c.TrustProxy)
	assert.Equal(t, 9090, c.Port)
	assert.Equal(t, "sqlite", c.Store.Backend)
	assert.Equal(t, time.Hour, c.Session.TTL)
	assert.False(t, c.RateLimitEnabled())
	assert.True(t, c.GitHubEnabled())
	assert.Equal(t, "debug", c.Log.Level)
	assert.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"non-numeric port", map[string]string{"PORT": "http"}, "PORT must be an integer"},
		{"port out of range", map[string]string{"PORT": "70000"}, "PORT must be between"},
		{"unknown store", map[string]string{"STORE_BACKEND": "postgres"}, "STORE_BACKEND"},
		{"unknown session backend", map[string]string{"SESSION_BACKEND": "etcd"}, "SESSION_BACKEND"},
		{"jwt without secret", map[string]string{"SESSION_BACKEND": "jwt"}, "JWT_SECRET"},
		{"bad ttl", map[string]string{"SESSION_TTL": "forever"}, "SESSION_TTL"},
		{"negative ttl", map[string]string{"SESSION_TTL": "-1h"}, "SESSION_TTL must not be negative"},
		{"unknown hash", map[string]string{"PASSWORD_HASH": "md5"}, "PASSWORD_HASH"},
		{"bcrypt cost", map[string]string{"PASSWORD_HASH": "bcrypt", "BCRYPT_COST": "40"}, "BCRYPT_COST"},
		{"github without secret", map[string]string{"GITHUB_CLIENT_ID": "id"}, "GITHUB_CLIENT_SECRET"},
		{"log level", map[string]string{"LOG_LEVEL": "loud"}, "LOG_LEVEL"},
		{"log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
		{"body limit", map[string]string{"MAX_BODY_BYTES": "-5"}, "MAX_BODY_BYTES"},
		{"trust proxy", map[string]string{"TRUST_PROXY": "sometimes"}, "TRUST_PROXY must be true or false"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			err := FromEnv().Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "0")
	t.Setenv("LOG_FORMAT", "xml")

	err := FromEnv().Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PORT")
	assert.Contains(t, err.Error(), "LOG_FORMAT")
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("WEB_ROOT=public\nHOST=127.0.0.1\n"), 0o644))
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	// Set in the real environment, so .env must not override it.
	t.Setenv("HOST", "10.0.0.1")
	os.Unsetenv("WEB_ROOT")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "public", c.WebRoot)
	assert.Equal(t, "10.0.0.1", c.Host)
}

func TestLoad_NoDotEnv(t *testing.T) {
	clearEnv(t)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8000, c.Port)
}

func TestNewLogger(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "warn")

	var buf bytes.Buffer
	logger := FromEnv().NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
