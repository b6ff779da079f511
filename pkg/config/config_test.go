package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/logger"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	t.Setenv("MVC_TEST_DSN", "file:app.db")

	path := writeFile(t, "app.yaml", `
title: Demo
base_url: https://example.com/
server:
  addr: ":9000"
  release: true
router:
  forwarders:
    - pattern: "^old/(.*)$"
      replacement: "new/$1"
log:
  location: console
  memory_delta: false
databases:
  default:
    driver: sqlite
    dsn: ${MVC_TEST_DSN}
    retry_interval: 2s
components: [settings, auth, pagecache]
cache_output: true
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Demo", cfg.Title)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.True(t, cfg.Server.Release)
	assert.True(t, cfg.Server.CompressOutput, "default kept")
	assert.Equal(t, "Index", cfg.Router.DefaultController)
	require.Len(t, cfg.Router.Forwarders, 1)
	assert.Equal(t, "new/$1", cfg.Router.Forwarders[0].Replacement)

	loc, err := cfg.LogLocation()
	require.NoError(t, err)
	assert.Equal(t, logger.LocationConsole, loc)
	assert.True(t, cfg.Log.MemoryUsage)
	assert.False(t, cfg.Log.MemoryDelta)

	assert.Equal(t, "file:app.db", cfg.Databases["default"].DSN)
	assert.Equal(t, 2*time.Second, cfg.Databases["default"].RetryInterval)
	assert.Equal(t, []string{"settings", "auth", "pagecache"}, cfg.Components)
	assert.Len(t, cfg.SettingsAutoload, 3)
}

func TestLoad_TOML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "app.toml", `
title = "Demo"

[log]
location = "3"

[databases.default]
driver = "postgres"
dsn = "postgres://localhost/app"
retry_interval = "1s"

[sweeper]
enabled = true
schedule = "@every 1m"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Databases["default"].Driver)
	assert.Equal(t, time.Second, cfg.Databases["default"].RetryInterval)
	assert.True(t, cfg.Sweeper.Enabled)

	loc, err := cfg.LogLocation()
	require.NoError(t, err)
	assert.Equal(t, logger.LocationStore, loc)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := config.Load(writeFile(t, "app.json", `{}`))
	require.ErrorIs(t, err, config.ErrUnsupportedFormat)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, config.ErrRead)

	_, err = config.Load(writeFile(t, "bad.yaml", "title: [unclosed"))
	require.ErrorIs(t, err, config.ErrParse)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	t.Run("defaults need a default database", func(t *testing.T) {
		t.Parallel()

		err := config.Defaults().Validate()
		require.ErrorIs(t, err, config.ErrInvalid)
		assert.Contains(t, err.Error(), "databases.default is required")
	})

	t.Run("collects every problem", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.Parse([]byte(`
router:
  forwarders:
    - pattern: "("
log:
  location: syslog
components: [auth, bogus]
cache:
  backend: redis
sweeper:
  enabled: true
  schedule: "every tuesday"
`), config.FormatYAML)
		require.NoError(t, err)

		err = cfg.Validate()
		require.ErrorIs(t, err, config.ErrInvalid)
		msg := err.Error()
		assert.Contains(t, msg, "router.forwarders[0]")
		assert.Contains(t, msg, "log.location")
		assert.Contains(t, msg, `unknown component "bogus"`)
		assert.Contains(t, msg, "auth requires settings")
		assert.Contains(t, msg, "redis.url is required")
		assert.Contains(t, msg, "sweeper.schedule")
	})

	t.Run("minimal valid", func(t *testing.T) {
		t.Parallel()

		cfg, err := config.Parse([]byte(`
databases:
  default:
    dsn: "file:x.db"
`), config.FormatYAML)
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())
	})
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("MVC_TEST_NAME", "world")

	assert.Equal(t, "hello world!", config.ExpandEnv("hello ${MVC_TEST_NAME}!"))
	assert.Equal(t, "x=", config.ExpandEnv("x=${MVC_TEST_UNSET_VAR}"))
	assert.Equal(t, "$HOME stays", config.ExpandEnv("$HOME stays"))
}
