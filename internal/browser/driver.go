// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

// Package browser drives a real Chrome/Chromium instance through the
// site's login flow. Two paths exist: automated form fill with saved
// credentials, and interactive login where the user completes the form
// (or a social login) in a visible window while we poll for completion.
//
// Each login attempt gets a fresh browser. The window closing before
// login completes is treated as a user cancel, not an error to retry.
package browser

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/tomtom215/reelsync/internal/config"
	"github.com/tomtom215/reelsync/internal/logging"
	"github.com/tomtom215/reelsync/internal/models"
)

// emailSelectors covers the login form variants the site has shipped.
var emailSelectors = []string{
	`input[name="email"]`,
	`input[type="email"]`,
	`#email`,
	`input[name="mail"]`,
	`input[name*="mail"]`,
	`input[autocomplete="username"]`,
	`input[autocomplete="email"]`,
}

var passwordSelectors = []string{
	`input[name="password"]`,
	`input[type="password"]`,
	`#password`,
	`input[autocomplete="current-password"]`,
}

var submitSelectors = []string{
	`button[type="submit"]`,
	`input[type="submit"]`,
	`button[class*="login"]`,
}

// Driver launches browsers and runs login attempts.
type Driver struct {
	cfg      config.BrowserConfig
	siteRoot string
}

// NewDriver builds a driver from browser configuration.
func NewDriver(cfg config.BrowserConfig) *Driver {
	root := ""
	if u, err := url.Parse(cfg.LoginURL); err == nil {
		root = u.Scheme + "://" + u.Host
	}
	return &Driver{cfg: cfg, siteRoot: root}
}

// Login runs a login attempt in a fresh browser and returns an
// authenticated session. Empty email or password selects the
// interactive path. On failure the browser is torn down before return.
func (d *Driver) Login(ctx context.Context, email, password string) (*Session, error) {
	l := launcher.New().Headless(d.cfg.Headless)
	if d.cfg.Bin != "" {
		l = l.Bin(d.cfg.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		l.Cleanup()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	teardown := func() {
		_ = b.Close()
		l.Cleanup()
	}

	page, err := b.Page(proto.TargetCreateTarget{URL: d.cfg.LoginURL})
	if err != nil {
		teardown()
		if isBrowserClosedErr(err) {
			return nil, NewAuthError(KindCancelled, err)
		}
		return nil, fmt.Errorf("open login page: %w", err)
	}
	_ = page.Timeout(d.cfg.FormTimeout).WaitLoad()

	var userID string
	if email == "" || password == "" {
		userID, err = d.interactiveLogin(ctx, page)
	} else {
		userID, err = d.formLogin(ctx, page, email, password)
	}
	if err != nil {
		teardown()
		return nil, err
	}

	logging.Info().Str("user_id", userID).Msg("Login completed")
	return &Session{browser: b, launcher: l, page: page, userID: userID}, nil
}

// interactiveLogin waits for the user to finish logging in themselves.
// Completion is detected by a URL change followed by a stable logged-in
// page state.
func (d *Driver) interactiveLogin(ctx context.Context, page *rod.Page) (string, error) {
	initialURL, err := currentURL(page)
	if err != nil {
		if isBrowserClosedErr(err) {
			return "", NewAuthError(KindCancelled, err)
		}
		return "", fmt.Errorf("read login page url: %w", err)
	}

	logging.Info().
		Dur("timeout", d.cfg.InteractiveTimeout).
		Msg("Waiting for interactive login in the browser window")

	deadline := time.Now().Add(d.cfg.InteractiveTimeout)
	urlChanged := false

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return "", NewAuthError(KindCancelled, ctx.Err())
		case <-time.After(d.cfg.PollInterval):
		}

		current, err := currentURL(page)
		if err != nil {
			if isBrowserClosedErr(err) {
				return "", NewAuthError(KindCancelled, err)
			}
			continue
		}
		if current != initialURL {
			urlChanged = true
		}
		// Only trust page-state checks after the user actually navigated;
		// the login page itself can momentarily look logged in.
		if !urlChanged {
			continue
		}

		html, err := page.HTML()
		if err != nil {
			if isBrowserClosedErr(err) {
				return "", NewAuthError(KindCancelled, err)
			}
			continue
		}
		if !isLoggedIn(current, html) {
			continue
		}

		// Re-check after a short pause so a transient redirect page does
		// not pass as a completed login.
		time.Sleep(time.Second)
		current, html, err = pageState(page)
		if err != nil {
			if isBrowserClosedErr(err) {
				return "", NewAuthError(KindCancelled, err)
			}
			continue
		}
		if !isLoggedIn(current, html) {
			continue
		}

		return d.resolveUserID(page, current)
	}

	return "", NewAuthError(KindTimeout,
		fmt.Errorf("login not completed within %s", d.cfg.InteractiveTimeout))
}

// formLogin fills the login form with the supplied credentials and polls
// for the outcome. A persistent logged-out header after submit means the
// site rejected the credentials.
func (d *Driver) formLogin(ctx context.Context, page *rod.Page, email, password string) (string, error) {
	logging.Debug().
		Str("email", models.MaskEmail(email)).
		Msg("Attempting automated form login")

	emailField, err := findFirst(page, emailSelectors, 8*time.Second)
	if err != nil {
		if isBrowserClosedErr(err) {
			return "", NewAuthError(KindCancelled, err)
		}
		return "", NewAuthError(KindInvalidCredential,
			fmt.Errorf("email field not found: %w", err))
	}
	_ = emailField.SelectAllText()
	if err := emailField.Input(email); err != nil {
		return "", classifyFormErr("fill email", err)
	}

	passwordField, err := findFirst(page, passwordSelectors, 8*time.Second)
	if err != nil {
		if isBrowserClosedErr(err) {
			return "", NewAuthError(KindCancelled, err)
		}
		return "", NewAuthError(KindInvalidCredential,
			fmt.Errorf("password field not found: %w", err))
	}
	_ = passwordField.SelectAllText()
	if err := passwordField.Input(password); err != nil {
		return "", classifyFormErr("fill password", err)
	}

	submit, err := findFirst(page, submitSelectors, 8*time.Second)
	if err != nil {
		if isBrowserClosedErr(err) {
			return "", NewAuthError(KindCancelled, err)
		}
		return "", NewAuthError(KindInvalidCredential,
			fmt.Errorf("submit button not found: %w", err))
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return "", classifyFormErr("submit login form", err)
	}

	deadline := time.Now().Add(d.cfg.FormTimeout)
	waited := time.Duration(0)

	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return "", NewAuthError(KindCancelled, ctx.Err())
		case <-time.After(d.cfg.PollInterval):
			waited += d.cfg.PollInterval
		}

		current, html, err := pageState(page)
		if err != nil {
			if isBrowserClosedErr(err) {
				return "", NewAuthError(KindCancelled, err)
			}
			continue
		}

		if id := extractUserID(current); id != "" {
			return id, nil
		}
		if isLoggedIn(current, html) {
			return d.resolveUserID(page, current)
		}
		// Give the redirect chain a couple of polls before reading a
		// logged-out header as a rejection.
		if waited >= 2*d.cfg.PollInterval && isLoggedOutUI(current, html) {
			return "", NewAuthError(KindInvalidCredential, ErrCredentialRejected)
		}
	}

	return "", NewAuthError(KindTimeout,
		fmt.Errorf("login state not confirmed within %s", d.cfg.FormTimeout))
}

// resolveUserID determines the logged-in user's key, first from the
// current URL and then by visiting the mypage view.
func (d *Driver) resolveUserID(page *rod.Page, loginURL string) (string, error) {
	if id := extractUserID(loginURL); id != "" {
		return id, nil
	}

	mypage := d.siteRoot + "/mypage/"
	if err := page.Timeout(15 * time.Second).Navigate(mypage); err != nil {
		if isBrowserClosedErr(err) {
			return "", NewAuthError(KindCancelled, err)
		}
		return "", fmt.Errorf("open mypage: %w", err)
	}
	_ = page.Timeout(15 * time.Second).WaitLoad()

	current, html, err := pageState(page)
	if err != nil {
		if isBrowserClosedErr(err) {
			return "", NewAuthError(KindCancelled, err)
		}
		return "", fmt.Errorf("read mypage: %w", err)
	}
	if id := extractUserID(current); id != "" {
		return id, nil
	}
	if id := extractUserIDFromHTML(html); id != "" {
		return id, nil
	}

	return "", fmt.Errorf("could not determine user id after login")
}

// findFirst polls the page for the first element matching any of the
// selectors, in order.
func findFirst(page *rod.Page, selectors []string, timeout time.Duration) (*rod.Element, error) {
	deadline := time.Now().Add(timeout)
	for {
		for _, sel := range selectors {
			el, err := page.Timeout(500 * time.Millisecond).Element(sel)
			if err == nil {
				return el.CancelTimeout(), nil
			}
			if isBrowserClosedErr(err) {
				return nil, err
			}
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("no element matched any of %d selectors", len(selectors))
		}
		time.Sleep(500 * time.Millisecond)
	}
}

func currentURL(page *rod.Page) (string, error) {
	info, err := page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func pageState(page *rod.Page) (url, html string, err error) {
	url, err = currentURL(page)
	if err != nil {
		return "", "", err
	}
	html, err = page.HTML()
	if err != nil {
		return "", "", err
	}
	return url, html, nil
}

func classifyFormErr(op string, err error) error {
	if isBrowserClosedErr(err) {
		return NewAuthError(KindCancelled, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
