// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package reconcile

import (
	"regexp"
	"strings"
	"time"

	"github.com/tomtom215/reelsync/internal/models"
)

var titleWhitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeTitle produces the comparison form used for title-based movie
// matching: trimmed, whitespace-collapsed, lower-cased.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(titleWhitespaceRe.ReplaceAllString(title, " ")))
}

// mapViewingMethod folds the site's free-form method strings onto the
// catalog enum. Unknown values become MethodOther.
func mapViewingMethod(raw string) models.ViewingMethod {
	switch models.ViewingMethod(strings.ToLower(strings.TrimSpace(raw))) {
	case models.MethodTheater:
		return models.MethodTheater
	case models.MethodStreaming:
		return models.MethodStreaming
	case models.MethodTV:
		return models.MethodTV
	case models.MethodDVD:
		return models.MethodDVD
	default:
		return models.MethodOther
	}
}

// dateOnly truncates a timestamp to its UTC calendar day. Viewing dates
// carry day precision; the occurrence dedup key must not split on
// sub-day noise.
func dateOnly(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
