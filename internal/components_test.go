package internal_test

import (
	"context"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/mvc/internal"
	"github.com/dmitrymomot/mvc/pkg/auth"
	"github.com/dmitrymomot/mvc/pkg/cache"
	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/db/dbtest"
	"github.com/dmitrymomot/mvc/pkg/entity"
	"github.com/dmitrymomot/mvc/pkg/pagecache"
)

// --- Settings ---

func TestSettingsComponent(t *testing.T) {
	t.Parallel()

	t.Run("autoload serves Get from the request cache", func(t *testing.T) {
		t.Parallel()

		d := dbtest.Open(t)
		shared := cache.NewMemory[entity.Setting]()
		t.Cleanup(func() { _ = shared.Close() })

		var queries int64
		ctrl := controller{name: "Index", actions: func(r internal.ActionRouter) {
			r.Action("default_index", 0, func(c internal.Context, _ []string) error {
				view, err := c.Settings().Get(c, "core.view.default")
				if err != nil {
					return err
				}
				queries = c.DB().QueryCount()
				return c.String(http.StatusOK, view)
			})
		}}
		app := newApp(t,
			internal.WithDatabases(map[string]*db.Database{db.DefaultName: d}),
			internal.WithSettingsCache(shared, 0),
			internal.WithComponents(internal.SettingsComponent("core.view.default")),
			internal.WithControllers(ctrl),
		)

		w := serve(app.Router(), http.MethodGet, "/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "default", w.Body.String())
		assert.Equal(t, int64(1), queries)

		ok, err := shared.Has(context.Background(), "core.view.default")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing property fails the request", func(t *testing.T) {
		t.Parallel()

		d := dbtest.Open(t)
		sink := &reports{}

		var reached bool
		ctrl := controller{name: "Index", actions: func(r internal.ActionRouter) {
			r.Action("default_index", 0, func(c internal.Context, _ []string) error {
				reached = true
				return c.String(http.StatusOK, "served")
			})
		}}
		app := newApp(t,
			internal.WithDatabases(map[string]*db.Database{db.DefaultName: d}),
			internal.WithComponents(internal.SettingsComponent("core.view.default", "missing.property")),
			internal.WithControllers(ctrl),
			internal.WithRelease(true),
			debugLog(sink),
		)

		w := serve(app.Router(), http.MethodGet, "/")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "served")
		assert.False(t, reached, "action runs after a failed preload")

		report := sink.last(t)
		assert.True(t, report.HasErrors())
		text := sink.text(t)
		assert.Contains(t, text, "request failed")
		assert.Contains(t, text, "missing.property")
	})
}

// --- Auth ---

func TestAuthComponent(t *testing.T) {
	t.Parallel()

	d := dbtest.Open(t)
	hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}

	hash, err := hasher.Hash("s3cret")
	require.NoError(t, err)
	reg := db.NewRegistry(map[string]*db.Database{db.DefaultName: d})
	t.Cleanup(func() { _ = reg.Close(context.Background()) })
	_, err = entity.NewUsers(reg.Default()).Create(context.Background(), entity.User{
		Username:      "alice",
		Password:      hash,
		PermissionsID: 2,
	})
	require.NoError(t, err)

	ctrl := controller{name: "Account", actions: func(r internal.ActionRouter) {
		r.Action("default_index", 0, func(c internal.Context, _ []string) error {
			return c.String(http.StatusOK, c.Auth().State().String())
		})
		r.Action("login", 0, func(c internal.Context, _ []string) error {
			ok, err := c.Auth().Login(c, c.Form("username"), c.Form("password"))
			if err != nil {
				return err
			}
			if !ok {
				return c.Info("Login", "Wrong username or password.")
			}
			return c.Redirect("/account")
		})
		r.Action("members", 0, func(c internal.Context, _ []string) error {
			if err := c.Auth().RequireSession(); err != nil {
				return err
			}
			return c.String(http.StatusOK, "welcome "+c.Auth().User().Username)
		})
		r.Action("register", 0, func(c internal.Context, _ []string) error {
			ok, err := c.Auth().Permission(entity.CanRegister)
			if err != nil {
				return err
			}
			if !ok {
				return c.String(http.StatusOK, "closed")
			}
			return c.String(http.StatusOK, "open")
		})
	}}
	app := newApp(t,
		internal.WithDatabases(map[string]*db.Database{db.DefaultName: d}),
		internal.WithHasher(hasher),
		internal.WithComponents(internal.SettingsComponent(), internal.AuthComponent()),
		internal.WithControllers(ctrl),
	)

	t.Run("anonymous visitor", func(t *testing.T) {
		w := serve(app.Router(), http.MethodGet, "/account")
		assert.Equal(t, auth.Anonymous.String(), w.Body.String())

		w = serve(app.Router(), http.MethodGet, "/account/register")
		assert.Equal(t, "open", w.Body.String(), "guests may register")
	})

	t.Run("session required", func(t *testing.T) {
		w := serve(app.Router(), http.MethodGet, "/account/members")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Contains(t, w.Body.String(), "You must be logged in to use this feature.")
	})

	t.Run("login then authenticated", func(t *testing.T) {
		w := serve(app.Router(), http.MethodPost, "/account/login", func(r *http.Request) {
			r.PostForm = map[string][]string{"username": {"alice"}, "password": {"s3cret"}}
		})
		require.Equal(t, http.StatusFound, w.Code)

		var session *http.Cookie
		for _, ck := range w.Result().Cookies() {
			if ck.Name == auth.SessionCookie {
				session = ck
			}
		}
		require.NotNil(t, session, "session cookie issued")

		// The visit cookie keeps Verify from rotating the session secret.
		withSession := func(r *http.Request) {
			r.AddCookie(session)
			r.AddCookie(&http.Cookie{Name: auth.VisitCookie, Value: "1"})
		}
		w = serve(app.Router(), http.MethodGet, "/account/members", withSession)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "welcome alice", w.Body.String())

		w = serve(app.Router(), http.MethodGet, "/account/register", withSession)
		assert.Equal(t, "closed", w.Body.String(), "members cannot register")
	})

	t.Run("wrong password", func(t *testing.T) {
		w := serve(app.Router(), http.MethodPost, "/account/login", func(r *http.Request) {
			r.PostForm = map[string][]string{"username": {"alice"}, "password": {"nope"}}
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Wrong username or password.")
	})
}

// --- Page cache ---

func TestPageCacheComponent(t *testing.T) {
	t.Parallel()

	store := cache.NewMemory[[]byte]()
	t.Cleanup(func() { _ = store.Close() })

	var hits atomic.Int32
	ctrl := controller{name: "Index", actions: func(r internal.ActionRouter) {
		r.Action("default_index", 0, func(c internal.Context, _ []string) error {
			hits.Add(1)
			return c.HTML(http.StatusOK, "<p>rendered</p>")
		})
		r.Action("missing", 0, func(c internal.Context, _ []string) error {
			hits.Add(1)
			return c.Error(http.StatusNotFound, "Nothing here.")
		})
	}}
	app := newApp(t,
		internal.WithComponents(internal.PageCacheComponent(pagecache.New(store))),
		internal.WithControllers(ctrl),
	)

	t.Run("second request served from cache", func(t *testing.T) {
		for range 2 {
			w := serve(app.Router(), http.MethodGet, "/?page=1")
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "<p>rendered</p>", w.Body.String())
		}
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("keyed by session cookie", func(t *testing.T) {
		before := hits.Load()
		serve(app.Router(), http.MethodGet, "/?page=1", func(r *http.Request) {
			r.AddCookie(&http.Cookie{Name: auth.SessionCookie, Value: "1-abc"})
		})
		assert.Equal(t, before+1, hits.Load())
	})

	t.Run("post bypasses cache", func(t *testing.T) {
		before := hits.Load()
		serve(app.Router(), http.MethodPost, "/?page=1")
		assert.Equal(t, before+1, hits.Load())
	})

	t.Run("errors are not stored", func(t *testing.T) {
		before := hits.Load()
		for range 2 {
			w := serve(app.Router(), http.MethodGet, "/index/missing")
			assert.Equal(t, http.StatusNotFound, w.Code)
		}
		assert.Equal(t, before+2, hits.Load())
	})
}
