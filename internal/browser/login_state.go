// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package browser

import (
	"regexp"
	"strings"
)

var (
	userIDPattern      = regexp.MustCompile(`/user/([^/]+)/`)
	loggedOutHeaderRe  = regexp.MustCompile(`class="[^"]*head-account[^"]*log-out[^"]*"`)
	loggedOutAnchorRe  = regexp.MustCompile(`>\s*ログイン\s*<`)
	loggedInMarkerRe   = regexp.MustCompile(`ログアウト|マイページ`)
	emailInputRe       = regexp.MustCompile(`<input[^>]+name="email"`)
	passwordInputRe    = regexp.MustCompile(`<input[^>]+type="password"`)
	userMoviePageKeyRe = regexp.MustCompile(`/user/([^/]+)/movie/`)
)

// extractUserID pulls the user key out of a /user/{key}/ URL. Returns ""
// when the URL has no user segment.
func extractUserID(url string) string {
	m := userIDPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// extractUserIDFromHTML collects /user/{key}/movie/ links from a page and
// returns the most frequent key. Used on the mypage view where the user's
// own history links dominate.
func extractUserIDFromHTML(html string) string {
	matches := userMoviePageKeyRe.FindAllStringSubmatch(html, -1)
	if len(matches) == 0 {
		return ""
	}
	counts := make(map[string]int, len(matches))
	best, bestCount := "", 0
	for _, m := range matches {
		counts[m[1]]++
		if counts[m[1]] > bestCount {
			best, bestCount = m[1], counts[m[1]]
		}
	}
	return best
}

// isLoggedOutUI detects the site's logged-out header chrome.
func isLoggedOutUI(currentURL, html string) bool {
	lower := strings.ToLower(currentURL)
	if strings.Contains(lower, "/login/") && !strings.Contains(lower, "oauth/gid") {
		return true
	}
	return loggedOutHeaderRe.MatchString(html) && loggedOutAnchorRe.MatchString(html)
}

// isLoggedIn judges login state from the page content. Cookie checks are
// deliberately avoided: the OAuth consent screen carries session cookies
// while the user is still mid-login.
func isLoggedIn(currentURL, html string) bool {
	lower := strings.ToLower(currentURL)

	// The OAuth consent screen is not a logged-in state.
	if strings.Contains(lower, "authorize") {
		return false
	}
	if strings.Contains(lower, "/login/") && !strings.Contains(lower, "oauth/gid") {
		return false
	}
	if isLoggedOutUI(currentURL, html) {
		return false
	}
	if loggedInMarkerRe.MatchString(html) {
		return true
	}
	// No login form on the page suggests an authenticated view.
	if !emailInputRe.MatchString(html) && !passwordInputRe.MatchString(html) {
		return true
	}
	return false
}
