// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package browser

import (
	"errors"
	"fmt"
	"testing"
)

func TestExtractUserID(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://eiga.com/user/267148/movie/", "267148"},
		{"https://eiga.com/user/some-slug/", "some-slug"},
		{"https://eiga.com/user/267148/movie/?page=2", "267148"},
		{"https://eiga.com/login/", ""},
		{"https://eiga.com/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := extractUserID(tt.url); got != tt.want {
			t.Errorf("extractUserID(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestExtractUserIDFromHTML(t *testing.T) {
	html := `
		<a href="/user/267148/movie/">My history</a>
		<a href="/user/267148/movie/?page=2">More</a>
		<a href="/user/99/movie/">Someone else</a>
	`
	if got := extractUserIDFromHTML(html); got != "267148" {
		t.Errorf("extractUserIDFromHTML = %q, want 267148 (most frequent key)", got)
	}

	if got := extractUserIDFromHTML("<p>no links here</p>"); got != "" {
		t.Errorf("extractUserIDFromHTML on empty page = %q, want \"\"", got)
	}
}

func TestIsLoggedIn(t *testing.T) {
	tests := []struct {
		name string
		url  string
		html string
		want bool
	}{
		{
			name: "authorize screen never counts",
			url:  "https://id.example.com/authorize/?cid=login",
			html: `<p>ログアウト</p>`,
			want: false,
		},
		{
			name: "login page never counts",
			url:  "https://eiga.com/login/",
			html: `<p>マイページ</p>`,
			want: false,
		},
		{
			name: "oauth callback with logout marker counts",
			url:  "https://eiga.com/login/oauth/gid/?code=abc",
			html: `<a>ログアウト</a>`,
			want: true,
		},
		{
			name: "logged out header wins over markers",
			url:  "https://eiga.com/",
			html: `<div class="head-account log-out"><a>ログイン</a></div>`,
			want: false,
		},
		{
			name: "mypage marker",
			url:  "https://eiga.com/user/267148/movie/",
			html: `<a href="/mypage/">マイページ</a>`,
			want: true,
		},
		{
			name: "no login form suggests logged in",
			url:  "https://eiga.com/user/267148/movie/",
			html: `<div class="list-my-data"></div>`,
			want: true,
		},
		{
			name: "login form present",
			url:  "https://id.example.com/signin",
			html: `<input name="email"><input type="password" name="password">`,
			want: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isLoggedIn(tt.url, tt.html); got != tt.want {
				t.Errorf("isLoggedIn = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsLoggedOutUI(t *testing.T) {
	if !isLoggedOutUI("https://eiga.com/login/", "<html></html>") {
		t.Error("login URL should read as logged out")
	}
	if isLoggedOutUI("https://eiga.com/login/oauth/gid/?code=x", "<html></html>") {
		t.Error("oauth callback URL should not read as logged out")
	}
	html := `<div class="head-account log-out"> <a> ログイン </a> </div>`
	if !isLoggedOutUI("https://eiga.com/", html) {
		t.Error("logged-out header should be detected")
	}
	if isLoggedOutUI("https://eiga.com/", `<div class="head-account"></div>`) {
		t.Error("plain header should not read as logged out")
	}
}

func TestIsBrowserClosedErr(t *testing.T) {
	closed := []error{
		errors.New("No such window: target window already closed"),
		errors.New("invalid session id"),
		errors.New("disconnected: not connected to DevTools"),
		errors.New("web view not found"),
		fmt.Errorf("wrapped: %w", errors.New("websocket: close 1006")),
	}
	for _, err := range closed {
		if !isBrowserClosedErr(err) {
			t.Errorf("isBrowserClosedErr(%v) = false, want true", err)
		}
	}

	open := []error{
		nil,
		errors.New("element not found"),
		errors.New("net::ERR_NAME_NOT_RESOLVED"),
	}
	for _, err := range open {
		if isBrowserClosedErr(err) {
			t.Errorf("isBrowserClosedErr(%v) = true, want false", err)
		}
	}
}

func TestAuthErrorClassification(t *testing.T) {
	cancelled := NewAuthError(KindCancelled, errors.New("window closed"))
	if !IsCancelled(cancelled) {
		t.Error("IsCancelled should match a cancelled AuthError")
	}
	if IsCancelled(NewAuthError(KindTimeout, nil)) {
		t.Error("IsCancelled should not match a timeout")
	}

	rejected := NewAuthError(KindInvalidCredential, ErrCredentialRejected)
	if !IsCredentialRejected(rejected) {
		t.Error("IsCredentialRejected should unwrap through AuthError")
	}
	if IsCredentialRejected(cancelled) {
		t.Error("IsCredentialRejected should not match a cancel")
	}

	wrapped := fmt.Errorf("sync: %w", rejected)
	if !IsCredentialRejected(wrapped) {
		t.Error("IsCredentialRejected should see through extra wrapping")
	}
}
