package cookie

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
)

var (
	ErrNotFound  = errors.New("cookie: not found")
	ErrBadSecret = errors.New("cookie: secret must be 32+ bytes")
	ErrBadSig    = errors.New("cookie: invalid signature")
)

// Config describes how the framework's cookies are written.
type Config struct {
	// Prefix is prepended to every cookie name, so several applications
	// can share a domain.
	Prefix string `yaml:"prefix" toml:"prefix"`
	Domain string `yaml:"domain" toml:"domain"`
	// Secret enables HMAC signing of every value when set.
	Secret   string `yaml:"secret" toml:"secret"`
	SameSite string `yaml:"same_site" toml:"same_site"`
	Secure   bool   `yaml:"secure" toml:"secure"`
}

// Manager reads and writes prefixed cookies.
type Manager struct {
	secret   []byte // nil = unsigned
	prefix   string
	domain   string
	path     string
	sameSite http.SameSite
	secure   bool
}

// New creates a Manager. A Secret shorter than 32 bytes is rejected.
func New(cfg Config) (*Manager, error) {
	m := &Manager{
		prefix:   cfg.Prefix,
		domain:   cfg.Domain,
		path:     "/",
		secure:   cfg.Secure,
		sameSite: parseSameSite(cfg.SameSite),
	}
	if cfg.Secret != "" {
		if len(cfg.Secret) < 32 {
			return nil, ErrBadSecret
		}
		m.secret = []byte(cfg.Secret)
	}
	return m, nil
}

// Name returns the full cookie name for name.
func (m *Manager) Name(name string) string {
	return m.prefix + name
}

// Get returns the value of the prefixed cookie name, verifying its
// signature when the manager signs.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(m.Name(name))
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrNotFound
		}
		return "", err
	}
	if m.secret == nil {
		return c.Value, nil
	}
	return m.verify(c.Value)
}

// Set writes the prefixed cookie name. A zero expires makes it a browser
// session cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, expires time.Time) {
	if m.secret != nil {
		value = m.sign(value)
	}
	c := m.cookie(name, value)
	if !expires.IsZero() {
		c.Expires = expires
	}
	http.SetCookie(w, c)
}

// Delete expires the prefixed cookie name.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	c := m.cookie(name, "")
	c.MaxAge = -1
	c.Expires = time.Unix(1, 0)
	http.SetCookie(w, c)
}

func (m *Manager) cookie(name, value string) *http.Cookie {
	return &http.Cookie{
		Name:     m.Name(name),
		Value:    value,
		Path:     m.path,
		Domain:   m.domain,
		Secure:   m.secure,
		HttpOnly: true,
		SameSite: m.sameSite,
	}
}

// sign renders base64(value).base64(hmac).
func (m *Manager) sign(value string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(value))
	return base64.RawURLEncoding.EncodeToString([]byte(value)) +
		"." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func (m *Manager) verify(raw string) (string, error) {
	encoded, encodedSig, ok := strings.Cut(raw, ".")
	if !ok {
		return "", ErrBadSig
	}
	value, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", ErrBadSig
	}
	sig, err := base64.RawURLEncoding.DecodeString(encodedSig)
	if err != nil {
		return "", ErrBadSig
	}

	mac := hmac.New(sha256.New, m.secret)
	mac.Write(value)
	if !hmac.Equal(sig, mac.Sum(nil)) {
		return "", ErrBadSig
	}
	return string(value), nil
}

func parseSameSite(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
