package internal_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/internal"
	"github.com/dmitrymomot/mvc/pkg/config"
)

func known(names ...string) func(string) bool {
	return func(name string) bool {
		for _, n := range names {
			if n == name {
				return true
			}
		}
		return false
	}
}

func TestRouter_Parse(t *testing.T) {
	t.Parallel()

	r, err := internal.NewRouter(config.RouterConfig{}, known("Index", "User", "FooBar"))
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
		want internal.Route
	}{
		{
			name: "root",
			path: "/",
			want: internal.Route{Controller: "Index", Method: "default_index", Path: "", Args: []string{}},
		},
		{
			name: "controller only",
			path: "/user",
			want: internal.Route{Controller: "User", Method: "default_index", Path: "user", Args: []string{}},
		},
		{
			name: "controller method args",
			path: "/user/view/7/extra",
			want: internal.Route{Controller: "User", Method: "view", Path: "user/view/7/extra", Args: []string{"7", "extra"}},
		},
		{
			name: "hyphenated names",
			path: "/foo-bar/do-thing",
			want: internal.Route{Controller: "FooBar", Method: "do_thing", Path: "foo-bar/do-thing", Args: []string{}},
		},
		{
			name: "unknown controller falls back to default",
			path: "/nope/view/1",
			want: internal.Route{Controller: "Index", Method: "view", Path: "nope/view/1", Args: []string{"1"}},
		},
		{
			name: "empty method segment",
			path: "/user/",
			want: internal.Route{Controller: "User", Method: "default_index", Path: "user/", Args: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, r.Parse(tt.path))
		})
	}
}

func TestRouter_Defaults(t *testing.T) {
	t.Parallel()

	r, err := internal.NewRouter(config.RouterConfig{
		DefaultController: "Home",
		DefaultMethod:     "main",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "main", r.DefaultMethod())
	route := r.Parse("")
	assert.Equal(t, "Home", route.Controller)
	assert.Equal(t, "main", route.Method)

	// nil known accepts any identifier
	assert.Equal(t, "Anything", r.Parse("/anything").Controller)
}

func TestRouter_Forwarders(t *testing.T) {
	t.Parallel()

	r, err := internal.NewRouter(config.RouterConfig{
		Forwarders: []config.Forwarder{
			{Pattern: `^u/(\d+)$`, Replacement: "user/view/$1"},
			{Pattern: `^user/view/(?P<id>\d+)$`, Replacement: "user/show/${id}"},
			{Pattern: `a`, Replacement: "b"},
		},
	}, known("User"))
	require.NoError(t, err)

	t.Run("chained in order", func(t *testing.T) {
		t.Parallel()

		route := r.Parse("/u/42")
		assert.Equal(t, "user/show/42", route.Path)
		assert.Equal(t, "User", route.Controller)
		assert.Equal(t, "show", route.Method)
		assert.Equal(t, []string{"42"}, route.Args)
	})

	t.Run("first match only", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "bbaa", r.Forward("abaa"))
		assert.Equal(t, "xbxa", r.Forward("xaxa"))
	})

	t.Run("no match", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "user/list", r.Forward("user/list"))
	})
}

func TestRouter_InvalidForwarder(t *testing.T) {
	t.Parallel()

	_, err := internal.NewRouter(config.RouterConfig{
		Forwarders: []config.Forwarder{{Pattern: "("}},
	}, nil)
	require.ErrorIs(t, err, internal.ErrInvalidForwarder)
}
