package internal

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mvc/pkg/auth"
	"github.com/dmitrymomot/mvc/pkg/pagecache"
)

// ComponentFunc adapts a pair of functions to Component. Either may be nil.
type ComponentFunc struct {
	Run  func(c Context) error
	Exit func(c Context) error
}

func (f ComponentFunc) OnRun(c Context) error {
	if f.Run == nil {
		return nil
	}
	return f.Run(c)
}

func (f ComponentFunc) OnExit(c Context) error {
	if f.Exit == nil {
		return nil
	}
	return f.Exit(c)
}

// SettingsComponent preloads properties in one query so later Get calls are
// served from the request cache. A missing property fails the request with
// settings.ErrPartialLoad: the app is misconfigured.
func SettingsComponent(autoload ...string) ComponentFactory {
	return func(Context) Component {
		return ComponentFunc{
			Run: func(c Context) error {
				if len(autoload) == 0 {
					return nil
				}
				return c.Settings().Load(c, autoload)
			},
		}
	}
}

// AuthComponent verifies the session cookie and resolves permissions before
// routing. A banned account ends the request with the denial page.
func AuthComponent() ComponentFactory {
	return func(Context) Component {
		return ComponentFunc{
			Run: func(c Context) error {
				a := c.Auth()
				if err := a.Verify(c); err != nil {
					return err
				}
				return a.LoadPermissions(c)
			},
		}
	}
}

type pageCacheComponent struct {
	cache *pagecache.Cache
	key   string
	hit   bool
}

// PageCacheComponent serves GET and HEAD requests from the output cache.
// A miss that ends with 200 stores the body for the next request with the
// same session cookie and URI.
func PageCacheComponent(pc *pagecache.Cache) ComponentFactory {
	return func(Context) Component {
		return &pageCacheComponent{cache: pc}
	}
}

func (p *pageCacheComponent) OnRun(c Context) error {
	r := c.Request()
	if !pagecache.Cacheable(r) {
		return nil
	}

	var session string
	if ck, err := r.Cookie(c.Cookies().Name(auth.SessionCookie)); err == nil {
		session = ck.Value
	}
	p.key = pagecache.Key(session, r.URL.RequestURI())

	body, ok := p.cache.Lookup(c, p.key)
	if !ok {
		return nil
	}
	p.hit = true
	c.Log().Line("(Page Cache) Served " + r.URL.RequestURI())
	if err := c.HTML(http.StatusOK, string(body)); err != nil {
		return err
	}
	return ErrHandled
}

func (p *pageCacheComponent) OnExit(c Context) error {
	if p.hit || p.key == "" {
		return nil
	}
	rw := c.ResponseWriter()
	if rw.Status() != http.StatusOK || rw.Size() == 0 {
		return nil
	}
	if err := p.cache.Store(c, p.key, rw.Body()); err != nil {
		c.Logger().WarnContext(c, "page cache store failed", slog.String("error", err.Error()))
	}
	return nil
}
