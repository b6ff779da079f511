// Package auth verifies the session cookie of a request and tracks who the
// caller is.
//
// An Auth value belongs to one request and starts Unverified. Verify moves it
// to Anonymous or Authenticated by checking the "<prefix>session" cookie
// against the Sessions table:
//
//	a := auth.New(registry.Default(), s, cookies, w, r)
//	if err := a.Verify(ctx); err != nil {
//		return err // *DeniedError for banned accounts
//	}
//	if err := a.LoadPermissions(ctx); err != nil {
//		return err
//	}
//	if err := a.RequirePermissions(entity.CanEditUsers); err != nil {
//		return err
//	}
//
// Activity updates and session removal are queued on the gateway's deferred
// transaction and land when the request is flushed. Login and Logout take
// effect for the rest of the request immediately.
//
// Guards return a *DeniedError, which matches ErrAccessDenied and carries the
// title and message shown to the visitor.
package auth
