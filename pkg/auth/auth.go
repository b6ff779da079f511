package auth

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/mvc/pkg/cookie"
	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/entity"
	"github.com/dmitrymomot/mvc/pkg/logger"
)

// Cookie names, before the manager's prefix is applied.
const (
	SessionCookie = "session"
	VisitCookie   = "visit"
)

// Settings consulted during verification.
const (
	PropertySessionMaxTime  = "core.user.session_max_time"
	PropertyVerifyUserAgent = "core.user.session_verify_user_agent"
)

const (
	secretLength    = 40
	secretAlphabet  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultMaxTime  = int64(14 * 24 * 60 * 60)
	cookieSeparator = "-"
)

// State is the verification state of a request.
type State int

const (
	Unverified State = iota
	Anonymous
	Authenticated
)

func (s State) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "unverified"
	}
}

// Settings is the subset of the settings component used by Auth.
type Settings interface {
	Int(ctx context.Context, property string, def ...int64) (int64, error)
	Bool(ctx context.Context, property string, def ...bool) (bool, error)
}

// Auth is the per-request authentication state.
type Auth struct {
	users       entity.Users
	sessions    entity.Sessions
	permissions entity.Permissions
	settings    Settings
	cookies     *cookie.Manager
	hasher      Hasher
	log         *slog.Logger
	now         func() time.Time
	w           http.ResponseWriter
	r           *http.Request

	perms        *entity.PermissionSet
	ip           string
	user         entity.User
	sessionID    int64
	permissionID int64
	guestID      int64
	state        State
}

// Option configures Auth.
type Option func(*Auth)

// WithHasher sets the password hasher. Default: BcryptHasher.
func WithHasher(h Hasher) Option {
	return func(a *Auth) {
		if h != nil {
			a.hasher = h
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Auth) {
		if l != nil {
			a.log = l
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Auth) {
		if now != nil {
			a.now = now
		}
	}
}

// WithGuestPermissionID sets the permission group of anonymous visitors.
// Default: entity.GuestPermissionID.
func WithGuestPermissionID(id int64) Option {
	return func(a *Auth) {
		if id > 0 {
			a.guestID = id
		}
	}
}

// New creates the auth state of one request. Cookies are written to w,
// which must not have sent its headers yet.
func New(gw *db.Gateway, settings Settings, cookies *cookie.Manager, w http.ResponseWriter, r *http.Request, opts ...Option) *Auth {
	a := &Auth{
		users:       entity.NewUsers(gw),
		sessions:    entity.NewSessions(gw),
		permissions: entity.NewPermissions(gw),
		settings:    settings,
		cookies:     cookies,
		hasher:      BcryptHasher{},
		log:         logger.NewNope(),
		now:         time.Now,
		guestID:     entity.GuestPermissionID,
		w:           w,
		r:           r,
		ip:          ClientIP(r),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.permissionID = a.guestID
	return a
}

// State returns the current verification state.
func (a *Auth) State() State { return a.state }

// IsLoggedIn reports whether the request is Authenticated.
func (a *Auth) IsLoggedIn() bool { return a.state == Authenticated }

// User returns the logged in account, or the zero User.
func (a *Auth) User() entity.User { return a.user }

// UserID returns the logged in account id, or 0.
func (a *Auth) UserID() int64 { return a.user.ID }

// SessionID returns the session row id, or 0.
func (a *Auth) SessionID() int64 { return a.sessionID }

// IP returns the client address recorded on sessions.
func (a *Auth) IP() string { return a.ip }

// PermissionID returns the permission group in effect.
func (a *Auth) PermissionID() int64 { return a.permissionID }

// Verify checks the session cookie once per request. Later calls return nil
// without doing anything. A cookie that does not match a live session is
// removed and the request continues as Anonymous. A banned account is
// logged out and a *DeniedError is returned.
func (a *Auth) Verify(ctx context.Context) error {
	if a.state != Unverified {
		return nil
	}
	a.state = Anonymous

	raw, err := a.cookies.Get(a.r, SessionCookie)
	if err != nil {
		if errors.Is(err, cookie.ErrBadSig) {
			a.cookies.Delete(a.w, SessionCookie)
		}
		return nil
	}

	id, secret, ok := parseSessionCookie(raw)
	if !ok {
		a.log.DebugContext(ctx, "malformed session cookie")
		return nil
	}

	sess, err := a.sessions.WithUser(ctx, id)
	if errors.Is(err, db.ErrNoRows) {
		a.cookies.Delete(a.w, SessionCookie)
		return nil
	}
	if err != nil {
		return err
	}

	if subtle.ConstantTimeCompare([]byte(sess.Hash), []byte(secret)) != 1 {
		a.log.InfoContext(ctx, "session secret mismatch", slog.Int64("session_id", id))
		a.cookies.Delete(a.w, SessionCookie)
		return nil
	}

	if sess.User.Banned {
		a.cookies.Delete(a.w, SessionCookie)
		if err := a.sessions.DeleteDeferred(sess.ID); err != nil {
			return err
		}
		a.log.InfoContext(ctx, "banned user refused", slog.Int64("user_id", sess.UserID))
		return errBanned(sess.User.BanReason)
	}

	checkAgent, err := a.settings.Bool(ctx, PropertyVerifyUserAgent, false)
	if err != nil {
		return err
	}
	if checkAgent && sess.UserAgent != agentDigest(a.r) {
		a.log.InfoContext(ctx, "session user agent mismatch", slog.Int64("session_id", id))
		a.cookies.Delete(a.w, SessionCookie)
		return nil
	}

	maxTime, err := a.maxTime(ctx)
	if err != nil {
		return err
	}
	now := a.now().Unix()
	if sess.LastActive+maxTime <= now {
		a.cookies.Delete(a.w, SessionCookie)
		return a.sessions.DeleteDeferred(sess.ID)
	}

	if err := a.sessions.TouchDeferred(sess.ID, a.ip, now); err != nil {
		return err
	}

	a.state = Authenticated
	a.sessionID = sess.ID
	a.user = sess.User
	a.permissionID = sess.User.PermissionsID

	if _, err := a.cookies.Get(a.r, VisitCookie); err != nil {
		if err := a.Regenerate(ctx); err != nil {
			return err
		}
		a.cookies.Set(a.w, VisitCookie, "1", time.Time{})
	}
	return nil
}

// Login starts a session for username. It reports false for unknown users,
// wrong passwords, banned accounts and when the session cannot be stored.
// A request that is already logged in reports true.
func (a *Auth) Login(ctx context.Context, username, password string) (bool, error) {
	if a.state == Authenticated {
		return true, nil
	}
	if username == "" {
		return false, nil
	}

	user, err := a.users.ByUsername(ctx, username)
	if errors.Is(err, db.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !a.hasher.Compare(user.Password, password) || user.Banned {
		return false, nil
	}

	secret, err := newSecret()
	if err != nil {
		return false, err
	}
	maxTime, err := a.maxTime(ctx)
	if err != nil {
		return false, err
	}

	now := a.now()
	id, err := a.sessions.Create(ctx, entity.Session{
		UserID:     user.ID,
		Hash:       secret,
		LastActive: now.Unix(),
		UserAgent:  agentDigest(a.r),
		IPv4:       a.ip,
	})
	if err != nil {
		a.log.ErrorContext(ctx, "failed to create session",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		return false, nil
	}

	a.state = Authenticated
	a.sessionID = id
	a.user = user
	a.permissionID = user.PermissionsID
	a.cookies.Set(a.w, SessionCookie, formatSessionCookie(id, secret), now.Add(time.Duration(maxTime)*time.Second))

	if err := a.LoadPermissions(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Logout ends the session. The row is removed with the deferred transaction.
func (a *Auth) Logout(ctx context.Context) error {
	if a.state != Authenticated {
		return nil
	}

	a.cookies.Delete(a.w, SessionCookie)
	if err := a.sessions.DeleteDeferred(a.sessionID); err != nil {
		return err
	}

	a.state = Anonymous
	a.sessionID = 0
	a.user = entity.User{}
	a.permissionID = a.guestID
	return a.LoadPermissions(ctx)
}

// Regenerate rotates the session secret and reissues the cookie.
func (a *Auth) Regenerate(ctx context.Context) error {
	if a.state != Authenticated {
		return nil
	}

	secret, err := newSecret()
	if err != nil {
		return err
	}
	maxTime, err := a.maxTime(ctx)
	if err != nil {
		return err
	}

	now := a.now()
	if err := a.sessions.RehashDeferred(a.sessionID, secret, a.ip, now.Unix()); err != nil {
		return err
	}
	a.cookies.Set(a.w, SessionCookie, formatSessionCookie(a.sessionID, secret), now.Add(time.Duration(maxTime)*time.Second))
	return nil
}

// LoadPermissions resolves the permission group in effect.
func (a *Auth) LoadPermissions(ctx context.Context) error {
	set, err := a.permissions.PermissionSet(ctx, a.permissionID)
	if err != nil {
		return err
	}
	a.perms = &set
	return nil
}

// Permissions returns the resolved group, or nil before LoadPermissions.
func (a *Auth) Permissions() *entity.PermissionSet { return a.perms }

// Permission reports whether flag is granted.
func (a *Auth) Permission(flag string) (bool, error) {
	if a.perms == nil {
		return false, ErrPermissionsNotLoaded
	}
	return a.perms.Has(flag), nil
}

// RequireSession denies anonymous callers.
func (a *Auth) RequireSession() error {
	if a.state != Authenticated {
		return errNotLoggedIn()
	}
	return nil
}

// RequireNoSession denies logged in callers.
func (a *Auth) RequireNoSession() error {
	if a.state == Authenticated {
		return errLoggedIn()
	}
	return nil
}

// RequirePermissions denies callers that are anonymous or lack any of flags.
func (a *Auth) RequirePermissions(flags ...string) error {
	if err := a.RequireSession(); err != nil {
		return err
	}
	for _, flag := range flags {
		ok, err := a.Permission(flag)
		if err != nil {
			return err
		}
		if !ok {
			return errInsufficientPermissions()
		}
	}
	return nil
}

func (a *Auth) maxTime(ctx context.Context) (int64, error) {
	return a.settings.Int(ctx, PropertySessionMaxTime, defaultMaxTime)
}

// ClientIP returns the host part of r.RemoteAddr.
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func parseSessionCookie(raw string) (int64, string, bool) {
	parts := strings.Split(raw, cookieSeparator)
	if len(parts) != 2 || parts[1] == "" {
		return 0, "", false
	}
	id, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, "", false
	}
	return id, parts[1], true
}

func formatSessionCookie(id int64, secret string) string {
	return strconv.FormatInt(id, 10) + cookieSeparator + secret
}

func agentDigest(r *http.Request) string {
	sum := md5.Sum([]byte(r.UserAgent()))
	return hex.EncodeToString(sum[:])
}

func newSecret() (string, error) {
	return secretFrom(rand.Reader)
}

// secretFrom draws secretLength alphabet characters from src. Bytes at or
// above the largest multiple of the alphabet size are dropped so every
// character is equally likely.
func secretFrom(src io.Reader) (string, error) {
	limit := 256 - 256%len(secretAlphabet)
	out := make([]byte, 0, secretLength)
	buf := make([]byte, secretLength)
	for len(out) < secretLength {
		if _, err := io.ReadFull(src, buf); err != nil {
			return "", err
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, secretAlphabet[int(b)%len(secretAlphabet)])
			if len(out) == secretLength {
				break
			}
		}
	}
	return string(out), nil
}
