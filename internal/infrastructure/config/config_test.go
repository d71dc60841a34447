package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.True(t, cfg.Server.Compression)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)

	assert.Equal(t, 4, cfg.Sandbox.MaxConcurrent)
	assert.Equal(t, 5*time.Second, cfg.Sandbox.AcquireTimeout())
	assert.Equal(t, 2*time.Second, cfg.Sandbox.RenderTimeout())

	assert.Equal(t, 1920, cfg.Composition.Width)
	assert.Equal(t, 1080, cfg.Composition.Height)
	assert.Equal(t, 30.0, cfg.Composition.FPS)
	assert.Equal(t, 150, cfg.Composition.DurationInFrames)
	assert.Equal(t, 108000, cfg.Composition.MaxDurationInFrames)
	assert.Equal(t, 300, cfg.Sandbox.MaxFrames)

	assert.Equal(t, 10*time.Second, cfg.Remote.Timeout())
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                      "9000",
		"HOST":                      "127.0.0.1",
		"LOG_LEVEL":                 "debug",
		"LOG_DEV":                   "true",
		"RATE_LIMIT_RPS":            "500",
		"RATE_LIMIT_BURST":          "1000",
		"RATE_LIMIT_ENABLED":        "false",
		"SANDBOX_MAX_CONCURRENT":    "8",
		"SANDBOX_RENDER_TIMEOUT_MS": "750",
		"COMPOSITION_FPS":           "60",
		"ANIMFORGE_URL":             "http://render:8000",
		"CORS_ORIGINS":              "https://a.example,https://b.example",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
	assert.Equal(t, 8, cfg.Sandbox.MaxConcurrent)
	assert.Equal(t, 750*time.Millisecond, cfg.Sandbox.RenderTimeout())
	assert.Equal(t, 60.0, cfg.Composition.FPS)
	assert.Equal(t, "http://render:8000", cfg.Remote.URL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSOrigins)
}

func TestLoadWithPartialEnvironmentVariables(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 1920, cfg.Composition.Width)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"unparsable number", "SANDBOX_MAX_CONCURRENT", "many"},
		{"zero concurrency", "SANDBOX_MAX_CONCURRENT", "0"},
		{"zero fps", "COMPOSITION_FPS", "0"},
		{"negative width", "COMPOSITION_WIDTH", "-1"},
		{"duration over the maximum", "COMPOSITION_DURATION", "200000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)

			cfg := LoadOrDefault()
			assert.Equal(t, Default(), cfg)
		})
	}
}

func TestLoadFileYAML(t *testing.T) {
	path := writeFile(t, "animforge.yaml", `
server:
  port: "7000"
  compression: false
sandbox:
  max_concurrent: 2
  render_timeout_ms: 500
composition:
  width: 1280
  height: 720
  fps: 24
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.False(t, cfg.Server.Compression)
	assert.Equal(t, 2, cfg.Sandbox.MaxConcurrent)
	assert.Equal(t, 500*time.Millisecond, cfg.Sandbox.RenderTimeout())
	assert.Equal(t, 1280, cfg.Composition.Width)
	assert.Equal(t, 24.0, cfg.Composition.FPS)
	assert.Equal(t, 150, cfg.Composition.DurationInFrames)
	assert.Equal(t, 108000, cfg.Composition.MaxDurationInFrames)
	assert.Equal(t, 300, cfg.Sandbox.MaxFrames)
}

func TestLoadFileTOML(t *testing.T) {
	path := writeFile(t, "animforge.toml", `
[logging]
level = "debug"

[rate_limit]
rps = 5
burst = 10

[remote]
url = "http://example:9000"
retries = 1
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
	assert.Equal(t, "http://example:9000", cfg.Remote.URL)
	assert.Equal(t, 1, cfg.Remote.Retries)
}

func TestLoadFileEnvironmentWins(t *testing.T) {
	path := writeFile(t, "animforge.yml", "server:\n  port: \"7000\"\n")
	t.Setenv("PORT", "7100")

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "7100", cfg.Server.Port)
}

func TestLoadFileErrors(t *testing.T) {
	_, err := LoadFile(writeFile(t, "animforge.json", "{}"))
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "bad.toml", "[server\nport = "))
	assert.Error(t, err)

	_, err = LoadFile(writeFile(t, "invalid.yaml", "composition:\n  fps: 0\n"))
	assert.ErrorContains(t, err, "fps")
}
