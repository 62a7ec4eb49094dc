// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package models

import "time"

// Movie represents a title in the local catalog.
//
// ExternalID, when present, is the stable identifier assigned by the
// external site and is the primary deduplication key across syncs.
// (Title, ReleasedYear) is the fallback key for entries the site exposes
// without an id.
type Movie struct {
	ID              int64      `json:"id"`
	ExternalID      *string    `json:"external_id,omitempty"`
	Title           string     `json:"title"`
	ReleasedYear    *int       `json:"released_year,omitempty"`
	Director        *string    `json:"director,omitempty"`
	Genre           *string    `json:"genre,omitempty"`
	ImageURL        *string    `json:"image_url,omitempty"`
	DetailFetchedAt *time.Time `json:"detail_fetched_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// MoviePatch carries partial updates for a movie. Nil fields are left
// untouched. ExternalID is settable only by reconciliation backfill, not
// through the public API.
type MoviePatch struct {
	Title        *string `json:"title,omitempty"`
	ReleasedYear *int    `json:"released_year,omitempty"`
	Director     *string `json:"director,omitempty"`
	Genre        *string `json:"genre,omitempty"`
	ImageURL     *string `json:"image_url,omitempty"`
	ExternalID   *string `json:"-"`
}
