// Package cookie writes the framework's cookies under a configured prefix.
//
// Every name passed to a Manager is prefixed, so with Prefix "app_" the
// session cookie is "app_session" and the visit marker "app_visit". Cookies
// are HttpOnly with path "/". A zero expiry produces a browser session
// cookie:
//
//	m, err := cookie.New(cookie.Config{Prefix: "app_"})
//	m.Set(w, "session", "12-"+secret, time.Now().Add(14*24*time.Hour))
//	m.Set(w, "visit", "1", time.Time{})
//
// With a Secret of at least 32 bytes every value is HMAC-SHA256 signed and
// Get returns ErrBadSig for values that were tampered with.
package cookie
