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
		"RADIOLAB_SERVER_ADDR", "RADIOLAB_LOG_LEVEL", "RADIOLAB_REDIS_ADDR", "RADIOLAB_MODELS", EnvSimSeed, EnvConfig,
		"ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL", "GEMINI_API_KEY", "GOOGLE_API_KEY",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "radiolab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
	assert.Equal(t, "127.0.0.1:5001", cfg.Server.Addr)
	assert.Len(t, cfg.Planner.Models, 5)
	assert.True(t, cfg.Planner.Decompose)
	assert.False(t, cfg.Bridge.StopOnError)
	assert.Zero(t, cfg.Redis.LockTTL, "zero derives the lock expiry from the probe budget")
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
log_level: debug
server:
  addr: 127.0.0.1:6001
  probe_interval: 250ms
planner:
  models:
    - gemini:gemini-2.0-flash
    - claude-3-haiku-20240307
  max_tokens: 1024
bridge:
  stop_on_error: true
redis:
  addr: localhost:6379
  lock_ttl: 10s
sim:
  seed: 7
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "127.0.0.1:6001", cfg.Server.Addr)
	assert.Equal(t, 250*time.Millisecond, cfg.Server.ProbeInterval)
	assert.Equal(t, 20, cfg.Server.ProbeAttempts, "unset keys keep defaults")
	assert.Equal(t, []string{"gemini:gemini-2.0-flash", "claude-3-haiku-20240307"}, cfg.Planner.Models)
	assert.Equal(t, 1024, cfg.Planner.MaxTokens)
	assert.True(t, cfg.Bridge.StopOnError)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 10*time.Second, cfg.Redis.LockTTL)
	assert.Equal(t, uint64(7), cfg.Sim.Seed)
	assert.Equal(t, path, cfg.Path)

	refs, err := cfg.Planner.ModelRefs()
	require.NoError(t, err)
	assert.Equal(t, []ModelRef{
		{Provider: ProviderGemini, Model: "gemini-2.0-flash"},
		{Provider: ProviderAnthropic, Model: "claude-3-haiku-20240307"},
	}, refs)
}

func TestLoad_PathFromEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "log_level: warn\n")
	t.Setenv(EnvConfig, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_RejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  adr: 127.0.0.1:1\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "adr")
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "server:\n  addr: 127.0.0.1:6001\n")
	t.Setenv("RADIOLAB_SERVER_ADDR", "127.0.0.1:7001")
	t.Setenv("RADIOLAB_MODELS", "gemini:gemini-2.0-flash, anthropic:claude-3-opus-20240229")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("GOOGLE_API_KEY", "g-key")
	t.Setenv(EnvSimSeed, "42")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7001", cfg.Server.Addr)
	assert.Equal(t, []string{"gemini:gemini-2.0-flash", "anthropic:claude-3-opus-20240229"}, cfg.Planner.Models)
	assert.Equal(t, "sk-ant", cfg.Planner.AnthropicAPIKey)
	assert.Equal(t, "g-key", cfg.Planner.GeminiAPIKey)
	assert.Equal(t, uint64(42), cfg.Sim.Seed)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad level", func(c *Config) { c.LogLevel = "loud" }, "invalid log level"},
		{"no addr", func(c *Config) { c.Server.Addr = "" }, "server.addr is required"},
		{"no attempts", func(c *Config) { c.Server.ProbeAttempts = 0 }, "probe_attempts"},
		{"negative lock ttl", func(c *Config) { c.Redis.LockTTL = -time.Second }, "lock_ttl"},
		{"bad tokens", func(c *Config) { c.Planner.MaxTokens = 0 }, "max_tokens"},
		{"bad provider", func(c *Config) { c.Planner.Models = []string{"openai:gpt-4"} }, "unknown model provider"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	assert.NoError(t, Default().Validate())
}

func TestParseModel(t *testing.T) {
	ref, err := ParseModel("gemini:gemini-1.5-pro")
	require.NoError(t, err)
	assert.Equal(t, "gemini:gemini-1.5-pro", ref.String())

	ref, err = ParseModel("claude-3-opus-20240229")
	require.NoError(t, err)
	assert.Equal(t, ProviderAnthropic, ref.Provider)

	_, err = ParseModel("anthropic:")
	assert.Error(t, err)
}
