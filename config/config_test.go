package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5, cfg.Pool.MaxSessions)
	assert.Equal(t, 5*time.Minute, cfg.Pool.IdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.Pool.MaintenanceInterval)

	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 60*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, 1280, cfg.Browser.ViewportWidth)
	assert.Equal(t, 800, cfg.Browser.ViewportHeight)
	assert.Equal(t, "screenshots", cfg.Browser.ScreenshotDir)

	assert.Equal(t, 3, cfg.Evaluation.MaxConcurrentJobs)
	assert.Equal(t, int64(0), cfg.Evaluation.Seed)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, []string{"stderr"}, cfg.Log.OutputPaths)

	assert.NoError(t, cfg.Validate())
}

func TestLoader_LoadFromYAML(t *testing.T) {
	content := `
pool:
  max_sessions: 8
  idle_timeout: 2m
browser:
  headless: false
  viewport_width: 1920
  viewport_height: 1080
evaluation:
  max_concurrent_jobs: 6
  seed: 42
log:
  level: debug
  format: console
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Pool.MaxSessions)
	assert.Equal(t, 2*time.Minute, cfg.Pool.IdleTimeout)
	// 文件未覆盖的字段保持默认值
	assert.Equal(t, 30*time.Second, cfg.Pool.MaintenanceInterval)

	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, 1920, cfg.Browser.ViewportWidth)
	assert.Equal(t, 1080, cfg.Browser.ViewportHeight)

	assert.Equal(t, 6, cfg.Evaluation.MaxConcurrentJobs)
	assert.Equal(t, int64(42), cfg.Evaluation.Seed)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().
		WithConfigPath(filepath.Join(t.TempDir(), "nope.yaml")).
		Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	content := `
pool:
  max_sessions: 8
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	t.Setenv("SHOPSIM_POOL_MAX_SESSIONS", "12")
	t.Setenv("SHOPSIM_POOL_IDLE_TIMEOUT", "90s")
	t.Setenv("SHOPSIM_BROWSER_HEADLESS", "false")
	t.Setenv("SHOPSIM_BROWSER_USER_AGENT", "shopsim-test/1.0")
	t.Setenv("SHOPSIM_LOG_OUTPUT_PATHS", "stdout, /tmp/shopsim.log")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Pool.MaxSessions)
	assert.Equal(t, 90*time.Second, cfg.Pool.IdleTimeout)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "shopsim-test/1.0", cfg.Browser.UserAgent)
	assert.Equal(t, []string{"stdout", "/tmp/shopsim.log"}, cfg.Log.OutputPaths)
}

func TestLoader_CustomEnvPrefix(t *testing.T) {
	t.Setenv("SIM_EVALUATION_SEED", "7")

	cfg, err := NewLoader().WithEnvPrefix("SIM").Load()
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.Evaluation.Seed)
}

func TestLoader_ValidationFailures(t *testing.T) {
	content := `
pool:
  max_sessions: 0
browser:
  viewport_width: -1
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := NewLoader().WithConfigPath(path).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pool.max_sessions must be positive")
	assert.Contains(t, err.Error(), "browser viewport must be positive")
}

func TestLoader_CustomValidator(t *testing.T) {
	called := false
	_, err := NewLoader().
		WithValidator(func(cfg *Config) error {
			called = true
			return nil
		}).
		Load()
	require.NoError(t, err)
	assert.True(t, called)
}

func TestLoader_InvalidEnvValue(t *testing.T) {
	t.Setenv("SHOPSIM_POOL_MAX_SESSIONS", "many")

	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOPSIM_POOL_MAX_SESSIONS")
}

func TestBrowserPoolConfigConversion(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Pool.MaxSessions = 2
	cfg.Browser.UserAgent = "shopsim/1.0"

	pool := cfg.BrowserPoolConfig()
	assert.Equal(t, 2, pool.MaxSessions)
	assert.Equal(t, cfg.Pool.IdleTimeout, pool.IdleTimeout)
	assert.Equal(t, cfg.Pool.MaintenanceInterval, pool.MaintenanceInterval)
	assert.Equal(t, "shopsim/1.0", pool.Session.UserAgent)
	assert.Equal(t, cfg.Browser.ScreenshotDir, pool.Session.ScreenshotDir)
}

func TestLogConfig_BuildLogger(t *testing.T) {
	logger, err := (&LogConfig{Level: "debug", Format: "console"}).BuildLogger()
	require.NoError(t, err)
	require.NotNil(t, logger)

	_, err = (&LogConfig{Level: "verbose"}).BuildLogger()
	assert.Error(t, err)
}

func TestMustLoadPanicsOnInvalidConfig(t *testing.T) {
	content := `
pool:
  max_sessions: 0
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	assert.Panics(t, func() { MustLoad(path) })
}
