package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mvc/pkg/cookie"
)

const testSecret = "this-is-a-32-byte-or-longer-key!"

// roundTrip copies the cookies written to w onto a fresh request.
func roundTrip(w *httptest.ResponseRecorder) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, c := range w.Result().Cookies() {
		r.AddCookie(c)
	}
	return r
}

func TestManager(t *testing.T) {
	t.Parallel()

	t.Run("prefix applies to every name", func(t *testing.T) {
		t.Parallel()

		m, err := cookie.New(cookie.Config{Prefix: "app_"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		m.Set(w, "session", "12-abc", time.Now().Add(time.Hour))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "app_session", cookies[0].Name)
		assert.Equal(t, "/", cookies[0].Path)
		assert.True(t, cookies[0].HttpOnly)
		assert.False(t, cookies[0].Expires.IsZero())

		v, err := m.Get(roundTrip(w), "session")
		require.NoError(t, err)
		assert.Equal(t, "12-abc", v)
	})

	t.Run("session scoped cookie has no expiry", func(t *testing.T) {
		t.Parallel()

		m, err := cookie.New(cookie.Config{})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		m.Set(w, "visit", "1", time.Time{})

		header := w.Header().Get("Set-Cookie")
		assert.NotContains(t, header, "Expires")
		assert.NotContains(t, header, "Max-Age")
	})

	t.Run("missing cookie", func(t *testing.T) {
		t.Parallel()

		m, err := cookie.New(cookie.Config{Prefix: "app_"})
		require.NoError(t, err)

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "session", Value: "unprefixed"})
		_, err = m.Get(r, "session")
		require.ErrorIs(t, err, cookie.ErrNotFound)
	})

	t.Run("delete expires the cookie", func(t *testing.T) {
		t.Parallel()

		m, err := cookie.New(cookie.Config{Prefix: "app_"})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		m.Delete(w, "session")

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "app_session", cookies[0].Name)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})

	t.Run("same site parsing", func(t *testing.T) {
		t.Parallel()

		m, err := cookie.New(cookie.Config{SameSite: "Strict", Secure: true})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		m.Set(w, "x", "y", time.Time{})
		c := w.Result().Cookies()[0]
		assert.Equal(t, http.SameSiteStrictMode, c.SameSite)
		assert.True(t, c.Secure)
	})
}

// --- Signing ---

func TestManagerSigned(t *testing.T) {
	t.Parallel()

	t.Run("short secret rejected", func(t *testing.T) {
		t.Parallel()

		_, err := cookie.New(cookie.Config{Secret: "short"})
		require.ErrorIs(t, err, cookie.ErrBadSecret)
	})

	t.Run("signed round trip", func(t *testing.T) {
		t.Parallel()

		m, err := cookie.New(cookie.Config{Secret: testSecret})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		m.Set(w, "session", "12-abc", time.Time{})
		assert.NotEqual(t, "12-abc", w.Result().Cookies()[0].Value)

		v, err := m.Get(roundTrip(w), "session")
		require.NoError(t, err)
		assert.Equal(t, "12-abc", v)
	})

	t.Run("tampered value", func(t *testing.T) {
		t.Parallel()

		m, err := cookie.New(cookie.Config{Secret: testSecret})
		require.NoError(t, err)

		w := httptest.NewRecorder()
		m.Set(w, "session", "12-abc", time.Time{})
		raw := w.Result().Cookies()[0].Value
		_, sig, _ := strings.Cut(raw, ".")

		for _, bad := range []string{"plain", "MTMtYWJj." + sig, "!!!.???"} {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.AddCookie(&http.Cookie{Name: "session", Value: bad})
			_, err := m.Get(r, "session")
			require.ErrorIs(t, err, cookie.ErrBadSig, bad)
		}
	})
}
