// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package browser

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

// Session is an authenticated browser session. It owns the launched
// browser process; Close tears everything down.
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	userID   string
}

// UserID returns the site user key extracted during login.
func (s *Session) UserID() string {
	return s.userID
}

// PageHTML navigates the session's page to url and returns the rendered
// HTML. The caller bounds the operation through ctx.
func (s *Session) PageHTML(ctx context.Context, url string) (string, error) {
	page := s.page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		if isBrowserClosedErr(err) {
			return "", NewAuthError(KindCancelled, err)
		}
		return "", fmt.Errorf("navigate to %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		if isBrowserClosedErr(err) {
			return "", NewAuthError(KindCancelled, err)
		}
		return "", fmt.Errorf("wait for %s: %w", url, err)
	}

	html, err := page.HTML()
	if err != nil {
		if isBrowserClosedErr(err) {
			return "", NewAuthError(KindCancelled, err)
		}
		return "", fmt.Errorf("read page %s: %w", url, err)
	}
	return html, nil
}

// Close shuts down the browser and cleans up the launcher's temp state.
// Safe to call after the user already closed the window.
func (s *Session) Close() error {
	err := s.browser.Close()
	if s.launcher != nil {
		s.launcher.Cleanup()
	}
	if err != nil && !isBrowserClosedErr(err) {
		return err
	}
	return nil
}
