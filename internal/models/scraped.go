// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package models

import "time"

// ScrapedEntry is one viewing event extracted from the external site's
// watch-history listing. Entries are transient: they exist only for the
// duration of a single sync attempt and are consumed entirely by
// reconciliation.
//
// ExternalID may be empty when the site's markup exposed no movie id; such
// entries deduplicate on (Title, ReleasedYear, WatchedAt, RawMethod).
type ScrapedEntry struct {
	ExternalID   string    `json:"external_id,omitempty"`
	Title        string    `json:"title"`
	ReleasedYear *int      `json:"released_year,omitempty"`
	WatchedAt    time.Time `json:"watched_at"`
	Rating       *float64  `json:"rating,omitempty"`
	RawMethod    string    `json:"raw_method,omitempty"`
	Director     *string   `json:"director,omitempty"`
	ImageURL     *string   `json:"image_url,omitempty"`
	MovieURL     string    `json:"movie_url,omitempty"`
}
