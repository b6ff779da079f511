package auth

import (
	"errors"
	"net/http"
)

var (
	ErrAccessDenied         = errors.New("auth: access denied")
	ErrPermissionsNotLoaded = errors.New("auth: permissions not loaded")
	ErrHashPassword         = errors.New("auth: failed to hash password")
)

// DeniedError is a refusal the visitor should see. It matches ErrAccessDenied.
type DeniedError struct {
	Title   string
	Message string
	Status  int
}

func (e *DeniedError) Error() string {
	return "auth: " + e.Title + " " + e.Message
}

func (e *DeniedError) Unwrap() error { return ErrAccessDenied }

func deny(title, message string) *DeniedError {
	return &DeniedError{Title: title, Message: message, Status: http.StatusForbidden}
}

func errNotLoggedIn() *DeniedError {
	return deny("Error: User Not Logged In.", "You must be logged in to use this feature.")
}

func errLoggedIn() *DeniedError {
	return deny("Error: User Logged In.", "You must not be logged in to use this feature.")
}

func errInsufficientPermissions() *DeniedError {
	return deny("Permission Error", "You do not have sufficient permissions to access this page.")
}

func errBanned(reason string) *DeniedError {
	msg := "Your account has been banned."
	if reason != "" {
		msg += " Reason: " + reason
	}
	return deny("Error: Account Banned.", msg)
}
