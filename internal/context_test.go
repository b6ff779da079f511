package internal_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/internal"
)

// requestVia serves req through an App whose only action calls fn.
// The action takes every path segment after /index/probe/ as arguments.
func requestVia(t *testing.T, req *http.Request, opts []internal.Option, fn func(c internal.Context)) *httptest.ResponseRecorder {
	t.Helper()

	called := false
	probe := controller{name: "Index", actions: func(r internal.ActionRouter) {
		r.Action("probe", 0, func(c internal.Context, _ []string) error {
			called = true
			fn(c)
			return nil
		})
	}}
	app := newApp(t, append(opts, internal.WithControllers(probe))...)

	w := httptest.NewRecorder()
	app.Router().ServeHTTP(w, req)
	require.True(t, called, "action not reached")
	return w
}

type ctxKey struct{}

// --- Extractor ---

func TestExtractor(t *testing.T) {
	t.Parallel()

	t.Run("empty sources returns false", func(t *testing.T) {
		t.Parallel()

		ext := internal.NewExtractor()
		req := httptest.NewRequest(http.MethodGet, "/index/probe", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			v, ok := ext.Extract(c)
			assert.False(t, ok)
			assert.Empty(t, v)
		})
	})

	t.Run("first source wins", func(t *testing.T) {
		t.Parallel()

		ext := internal.NewExtractor(internal.FromHeader("X-First"), internal.FromHeader("X-Second"))
		req := httptest.NewRequest(http.MethodGet, "/index/probe", nil)
		req.Header.Set("X-First", "first-val")
		req.Header.Set("X-Second", "second-val")

		requestVia(t, req, nil, func(c internal.Context) {
			v, ok := ext.Extract(c)
			assert.True(t, ok)
			assert.Equal(t, "first-val", v)
		})
	})

	t.Run("falls through missing sources", func(t *testing.T) {
		t.Parallel()

		ext := internal.NewExtractor(
			internal.FromHeader("X-Missing"),
			internal.FromCookie("missing"),
			internal.FromQuery("token"),
		)
		req := httptest.NewRequest(http.MethodGet, "/index/probe?token=abc", nil)

		requestVia(t, req, nil, func(c internal.Context) {
			v, ok := ext.Extract(c)
			assert.True(t, ok)
			assert.Equal(t, "abc", v)
		})
	})

	t.Run("positional argument", func(t *testing.T) {
		t.Parallel()

		ext := internal.NewExtractor(internal.FromArg(1), internal.FromArg(0))
		req := httptest.NewRequest(http.MethodGet, "/index/probe/only", nil)

		requestVia(t, req, nil, func(c internal.Context) {
			v, ok := ext.Extract(c)
			assert.True(t, ok)
			assert.Equal(t, "only", v)
		})
	})

	t.Run("form field", func(t *testing.T) {
		t.Parallel()

		form := url.Values{"name": {"alice"}}
		req := httptest.NewRequest(http.MethodPost, "/index/probe", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		requestVia(t, req, nil, func(c internal.Context) {
			v, ok := internal.NewExtractor(internal.FromForm("name")).Extract(c)
			assert.True(t, ok)
			assert.Equal(t, "alice", v)
		})
	})

	t.Run("bearer token", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			header string
			want   string
			ok     bool
		}{
			{"Bearer abc", "abc", true},
			{"bearer xyz", "xyz", true},
			{"Bearer ", "", false},
			{"Basic abc", "", false},
			{"", "", false},
		}
		for _, tt := range tests {
			req := httptest.NewRequest(http.MethodGet, "/index/probe", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			requestVia(t, req, nil, func(c internal.Context) {
				v, ok := internal.NewExtractor(internal.FromBearerToken()).Extract(c)
				assert.Equal(t, tt.ok, ok, tt.header)
				assert.Equal(t, tt.want, v, tt.header)
			})
		}
	})
}

// --- Typed helpers ---

func TestArg(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/index/probe/42/3.5/true/word", nil)
	requestVia(t, req, nil, func(c internal.Context) {
		assert.Equal(t, []string{"42", "3.5", "true", "word"}, c.Args())
		assert.Equal(t, 42, internal.Arg[int](c, 0))
		assert.Equal(t, int64(42), internal.Arg[int64](c, 0))
		assert.InDelta(t, 3.5, internal.Arg[float64](c, 1), 0.0001)
		assert.True(t, internal.Arg[bool](c, 2))
		assert.Equal(t, "word", internal.Arg[string](c, 3))

		assert.Zero(t, internal.Arg[int](c, 3), "unparsable")
		assert.Zero(t, internal.Arg[int](c, 9), "out of range")
		assert.Zero(t, internal.Arg[int](c, -1), "negative index")
	})
}

func TestQuery(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/index/probe?page=3&q=go&bad=x", nil)
	requestVia(t, req, nil, func(c internal.Context) {
		assert.Equal(t, 3, internal.Query[int](c, "page"))
		assert.Equal(t, "go", internal.Query[string](c, "q"))
		assert.Zero(t, internal.Query[int](c, "bad"))

		assert.Equal(t, 3, internal.QueryDefault(c, "page", 1))
		assert.Equal(t, 1, internal.QueryDefault(c, "missing", 1))
		assert.Equal(t, 10, internal.QueryDefault(c, "bad", 10))
	})
}

func TestContextValue(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/index/probe", nil)
	requestVia(t, req, nil, func(c internal.Context) {
		assert.Empty(t, internal.ContextValue[string](c, ctxKey{}))

		c.Set(ctxKey{}, "stored")
		assert.Equal(t, "stored", internal.ContextValue[string](c, ctxKey{}))
		assert.Equal(t, "stored", c.Value(ctxKey{}), "visible through context.Context")
		assert.Zero(t, internal.ContextValue[int](c, ctxKey{}), "wrong type")
	})
}

// --- Context ---

func TestContext_Route(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/index/probe/a/b", nil)
	requestVia(t, req, nil, func(c internal.Context) {
		route := c.Route()
		assert.Equal(t, "Index", route.Controller)
		assert.Equal(t, "probe", route.Method)
		assert.Equal(t, "index/probe/a/b", route.Path)
	})
}

func TestContext_Cookies(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/index/probe", nil)
	req.AddCookie(&http.Cookie{Name: "theme", Value: "dark"})

	w := requestVia(t, req, nil, func(c internal.Context) {
		v, err := c.Cookie("theme")
		require.NoError(t, err)
		assert.Equal(t, "dark", v)

		c.SetCookie("lang", "en", time.Now().Add(time.Hour))
		c.DeleteCookie("theme")
	})

	cookies := map[string]*http.Cookie{}
	for _, ck := range w.Result().Cookies() {
		cookies[ck.Name] = ck
	}
	require.Contains(t, cookies, "lang")
	assert.Equal(t, "en", cookies["lang"].Value)
	require.Contains(t, cookies, "theme")
	assert.Negative(t, cookies["theme"].MaxAge)
}

func TestContext_Responses(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/index/probe", nil)
		w := requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.JSON(http.StatusCreated, map[string]int{"id": 7}))
			assert.True(t, c.Written())
		})

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
		assert.JSONEq(t, `{"id":7}`, w.Body.String())
	})

	t.Run("info page", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/index/probe", nil)
		w := requestVia(t, req, []internal.Option{internal.WithSite("Demo", "", "/assets/")},
			func(c internal.Context) {
				require.NoError(t, c.Info("Saved", "Your changes were <strong>saved</strong>."))
			})

		assert.Equal(t, http.StatusOK, w.Code)
		body := w.Body.String()
		assert.Contains(t, body, "<title>Demo - Saved</title>")
		assert.Contains(t, body, "<strong>saved</strong>")
		assert.Contains(t, body, `href="/assets/css/main.css"`)
	})

	t.Run("nothing written until teardown", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/index/probe", nil)
		requestVia(t, req, nil, func(c internal.Context) {
			require.NoError(t, c.String(http.StatusOK, "buffered"))
			assert.Equal(t, "buffered", string(c.ResponseWriter().Body()))
			assert.False(t, c.ResponseWriter().Committed())
		})
	})
}
