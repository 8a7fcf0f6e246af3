// ABOUTME: Tests for configuration loading
// ABOUTME: Covers defaults, TOML decoding, env overrides, and validation
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every lookup Load performs at a fresh temp directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv(EnvConfigPath, "")
	t.Setenv(EnvAppToken, "")
	t.Setenv(EnvLogLevel, "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "", cfg.AppToken)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 30*time.Second, cfg.SearchTimeout)
	assert.Equal(t, 50000, cfg.MaxResponseBytes)
	assert.Equal(t, 5, cfg.TruncateItems)
	assert.Equal(t, "socrata-mcp/"+Version, cfg.UserAgent)
}

func TestLoadFile(t *testing.T) {
	dir := isolate(t)

	content := `
app_token = "file-token"
timeout = "15s"
search_timeout = "5s"
max_response_bytes = 1024
log_level = "debug"
`
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file-token", cfg.AppToken)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, 5*time.Second, cfg.SearchTimeout)
	assert.Equal(t, 1024, cfg.MaxResponseBytes)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5, cfg.TruncateItems, "unset keys keep defaults")
}

func TestLoadDefaultPath(t *testing.T) {
	dir := isolate(t)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, AppName), 0755))
	require.NoError(t, os.WriteFile(DefaultPath(), []byte(`truncate_items = 3`), 0600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.TruncateItems)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	_, err := Load(filepath.Join(dir, "nope.toml"))
	require.Error(t, err)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "c.toml")
	require.NoError(t, os.WriteFile(path, []byte(`app_token = "file-token"`), 0600))
	t.Setenv(EnvConfigPath, path)
	t.Setenv(EnvAppToken, "env-token")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.AppToken)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"zero search timeout", func(c *Config) { c.SearchTimeout = 0 }},
		{"zero response bytes", func(c *Config) { c.MaxResponseBytes = 0 }},
		{"zero truncate items", func(c *Config) { c.TruncateItems = 0 }},
		{"negative rate limit", func(c *Config) { c.RateLimit = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, Default().Validate())
}

func TestLoadEnvFile(t *testing.T) {
	dir := isolate(t)

	t.Run("missing file is ignored", func(t *testing.T) {
		assert.NoError(t, LoadEnvFile(filepath.Join(dir, ".env")))
	})

	t.Run("sets unset variables only", func(t *testing.T) {
		path := filepath.Join(dir, ".env")
		require.NoError(t, os.WriteFile(path, []byte("SOCRATA_TEST_ONE=from-file\nSOCRATA_TEST_TWO=from-file\n"), 0600))
		t.Setenv("SOCRATA_TEST_ONE", "")
		_ = os.Unsetenv("SOCRATA_TEST_ONE")
		t.Setenv("SOCRATA_TEST_TWO", "from-env")

		require.NoError(t, LoadEnvFile(path))
		assert.Equal(t, "from-file", os.Getenv("SOCRATA_TEST_ONE"))
		assert.Equal(t, "from-env", os.Getenv("SOCRATA_TEST_TWO"))
	})
}

func TestMasked(t *testing.T) {
	cfg := Default()
	cfg.AppToken = "abcdefgh1234"

	masked := cfg.Masked()
	assert.Equal(t, "********1234", masked.AppToken)
	assert.Equal(t, "abcdefgh1234", cfg.AppToken, "original is untouched")

	short := Default()
	short.AppToken = "abc"
	assert.Equal(t, "***", short.Masked().AppToken)
}

func TestWriteTOML(t *testing.T) {
	cfg := Default()
	cfg.AppToken = "secret-token"

	var buf bytes.Buffer
	require.NoError(t, cfg.WriteTOML(&buf))

	out := buf.String()
	assert.Contains(t, out, "app_token")
	assert.Contains(t, out, "********oken")
	assert.False(t, strings.Contains(out, "secret-token"), "token must be masked")
	assert.Contains(t, out, "max_response_bytes = 50000")
}
