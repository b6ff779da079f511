package mvc_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc"
	"github.com/dmitrymomot/mvc/middlewares"
	"github.com/dmitrymomot/mvc/pkg/config"
	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/entity"
)

type indexController struct{}

func (indexController) Name() string { return "Index" }

func (h indexController) Actions(r mvc.ActionRouter) {
	r.Action("default_index", 0, h.index)
	r.Action("visits", 0, h.visits)
	r.Action("fail", 0, h.fail)
}

func (indexController) index(c mvc.Context, _ []string) error {
	view, err := c.Settings().Get(c, "core.view.default")
	if err != nil {
		return err
	}
	return c.String(http.StatusOK, "view="+view)
}

func (indexController) visits(c mvc.Context, _ []string) error {
	n, err := c.Settings().Int(c, "site.visits", 0)
	if err != nil {
		return err
	}
	if err := c.Settings().Set(c, "site.visits", strconv.FormatInt(n+1, 10)); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int64{"visits": n + 1})
}

func (indexController) fail(mvc.Context, []string) error {
	return errors.New("database exploded")
}

func testConfig(t *testing.T) mvc.Config {
	t.Helper()

	cfg := mvc.DefaultConfig()
	cfg.Title = "Test Site"
	cfg.Databases = map[string]db.Config{
		db.DefaultName: {
			Driver:      db.DriverSQLite,
			DSN:         "file:" + filepath.Join(t.TempDir(), "app.db") + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
			AutoMigrate: true,
		},
	}
	cfg.Log.Location = "store"
	cfg.Logger.Level = "error"
	cfg.Server.Release = true
	cfg.Server.CompressOutput = false
	cfg.Server.Metrics = true
	return cfg
}

func bootstrap(t *testing.T, cfg mvc.Config, opts ...mvc.Option) *mvc.App {
	t.Helper()

	app, err := mvc.Bootstrap(context.Background(), cfg, opts...)
	require.NoError(t, err)
	return app
}

func get(app *mvc.App, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	app.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

// --- Bootstrap ---

func TestBootstrap(t *testing.T) {
	t.Parallel()

	app := bootstrap(t, testConfig(t),
		mvc.WithControllers(indexController{}),
		mvc.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
	)

	t.Run("settings from migrated defaults", func(t *testing.T) {
		w := get(app, "/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "view=default", w.Body.String())
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("settings persist between requests", func(t *testing.T) {
		assert.JSONEq(t, `{"visits":1}`, get(app, "/index/visits").Body.String())
		assert.JSONEq(t, `{"visits":2}`, get(app, "/index/visits").Body.String())
	})

	t.Run("readiness includes the database", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
		req.Header.Set("Accept", "application/json")
		app.Router().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"db:default"`)
	})

	t.Run("metrics are served", func(t *testing.T) {
		w := get(app, "/metrics")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "mvc_requests_total")
	})
}

func TestBootstrap_FailedRequestIsStored(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	app := bootstrap(t, cfg, mvc.WithControllers(indexController{}))

	w := get(app, "/index/fail")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "database exploded")

	d, err := db.Open(context.Background(), "check", cfg.Databases[db.DefaultName], nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	reg := db.NewRegistry(map[string]*db.Database{db.DefaultName: d})
	t.Cleanup(func() { _ = reg.Close(context.Background()) })

	require.Eventually(t, func() bool {
		recent, err := entity.NewLogs(reg.Default()).Recent(context.Background(), 5)
		return err == nil && len(recent) == 1 && recent[0].Level == "ERROR"
	}, 2*time.Second, 20*time.Millisecond)

	recent, err := entity.NewLogs(reg.Default()).Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Contains(t, recent[0].Body, "database exploded")
}

func TestBootstrap_InvalidConfig(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Router.Forwarders = []config.Forwarder{{Pattern: "(", Replacement: "x"}}

	_, err := mvc.Bootstrap(context.Background(), cfg)
	require.Error(t, err)

	cfg = testConfig(t)
	_, err = mvc.Bootstrap(context.Background(), cfg,
		mvc.WithControllers(indexController{}, indexController{}))
	require.ErrorIs(t, err, mvc.ErrInvalidConfig)
}

// --- New ---

func TestNew_Minimal(t *testing.T) {
	t.Parallel()

	app, err := mvc.New(mvc.WithControllers(indexController{}))
	require.NoError(t, err)

	w := get(app, "/index/fail")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "database exploded", "debug mode shows the error")
}
