// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package browser

import (
	"errors"
	"fmt"
	"strings"
)

// AuthKind classifies login failures so callers can pick the right
// follow-up: reject bad credentials, report a user cancel, or fall back
// to interactive login.
type AuthKind string

const (
	// KindInvalidCredential means the site rejected the supplied login.
	KindInvalidCredential AuthKind = "invalid_credential"

	// KindCancelled means the user closed the browser window before
	// completing the login.
	KindCancelled AuthKind = "cancelled"

	// KindTimeout means the login did not complete within the allowed
	// window.
	KindTimeout AuthKind = "timeout"
)

// AuthError reports a failed login attempt.
type AuthError struct {
	Kind AuthKind
	Err  error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("login failed (%s): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("login failed (%s)", e.Kind)
}

func (e *AuthError) Unwrap() error { return e.Err }

// ErrCredentialRejected is wrapped inside an invalid-credential
// AuthError so saved-credential flows can offer an interactive retry.
var ErrCredentialRejected = errors.New("credentials rejected by site")

// NewAuthError builds an AuthError of the given kind.
func NewAuthError(kind AuthKind, err error) *AuthError {
	return &AuthError{Kind: kind, Err: err}
}

// IsCancelled reports whether err is a user-cancelled login.
func IsCancelled(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr) && authErr.Kind == KindCancelled
}

// IsCredentialRejected reports whether err means the site refused the
// supplied email/password pair.
func IsCredentialRejected(err error) bool {
	return errors.Is(err, ErrCredentialRejected)
}

// browserClosedMarkers are substrings of DevTools errors raised when the
// user closes the window or the browser process dies mid-operation.
var browserClosedMarkers = []string{
	"no such window",
	"invalid session id",
	"target window already closed",
	"disconnected: not connected to devtools",
	"web view not found",
	"context canceled",
	"websocket: close",
	"cdp.Error",
	"browser has been closed",
}

// isBrowserClosedErr reports whether err looks like the browser window
// went away, which during login means the user cancelled.
func isBrowserClosedErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range browserClosedMarkers {
		if strings.Contains(msg, strings.ToLower(marker)) {
			return true
		}
	}
	return false
}
