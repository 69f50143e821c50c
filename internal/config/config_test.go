package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"POSHANA_BASE_URL", "POSHANA_USER_ID", "POSHANA_LANG", "POSHANA_DB",
		"POSHANA_LOG_FILE", "POSHANA_LOG_LEVEL", "POSHANA_REFRESH_DELAY",
		"POSHANA_TIMEOUT", "POSHANA_RECOGNIZER", "POSHANA_SYNTHESIZER",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("LANG", "de_DE.UTF-8")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultUserID, cfg.UserID)
	assert.Equal(t, "de", cfg.Lang)
	assert.Equal(t, 500*time.Millisecond, cfg.RefreshDelay)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "poshana.db", filepath.Base(cfg.DBPath))
	assert.Empty(t, cfg.Recognizer)
	assert.Empty(t, cfg.Synthesizer)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "poshana.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: https://chat.example.com
user_id: "42"
lang: es
refresh_delay: 2s
synthesizer: espeak --stdin
`), 0o600))

	t.Setenv("POSHANA_USER_ID", "99")
	t.Setenv("POSHANA_TIMEOUT", "3s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://chat.example.com", cfg.BaseURL)
	assert.Equal(t, "99", cfg.UserID, "env wins over file")
	assert.Equal(t, "es", cfg.Lang)
	assert.Equal(t, 2*time.Second, cfg.RefreshDelay)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "espeak --stdin", cfg.Synthesizer)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("base_url: [unterminated"), 0o600))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "parse config")

	t.Setenv("POSHANA_BASE_URL", "localhost:8000")
	_, err = Load("")
	assert.ErrorContains(t, err, "invalid base url")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"ftp scheme", func(c *Config) { c.BaseURL = "ftp://host" }, "invalid base url"},
		{"blank user", func(c *Config) { c.UserID = "  " }, "user id"},
		{"zero refresh", func(c *Config) { c.RefreshDelay = 0 }, "refresh delay"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"upper level", func(c *Config) { c.LogLevel = "DEBUG" }, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		locale string
		want   string
	}{
		{"en_US.UTF-8", "en"},
		{"fr_CA.UTF-8", "fr"},
		{"ru_RU", "ru"},
		{"de_DE@euro", "de"},
		{"pt-BR", "pt"},
		{"C", "en"},
		{"POSIX", "en"},
		{"", "en"},
		{"!!", "en"},
	}

	for _, tc := range tests {
		t.Run(tc.locale, func(t *testing.T) {
			assert.Equal(t, tc.want, DetectLanguage(tc.locale))
		})
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("POSHANA_TEST_SET", "hello")
	t.Setenv("POSHANA_TEST_EMPTY", "")

	assert.Equal(t, "hello", getEnvOrDefault("POSHANA_TEST_SET", "default"))
	assert.Equal(t, "default", getEnvOrDefault("POSHANA_TEST_EMPTY", "default"))
}

func TestGetEnvAsDurationOrDefault(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected time.Duration
	}{
		{"parses duration", "250ms", 250 * time.Millisecond},
		{"uses default for empty", "", time.Second},
		{"uses default for garbage", "soon", time.Second},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("POSHANA_TEST_DURATION", tc.envValue)
			assert.Equal(t, tc.expected, getEnvAsDurationOrDefault("POSHANA_TEST_DURATION", time.Second))
		})
	}
}
