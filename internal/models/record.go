// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package models

import "time"

// RecordSource identifies how a viewing record entered the catalog.
type RecordSource string

const (
	// SourceManual marks records created by hand through the API.
	SourceManual RecordSource = "manual"
	// SourceSynced marks records created by history reconciliation.
	SourceSynced RecordSource = "synced"
)

// ViewingMethod enumerates how a movie was watched.
type ViewingMethod string

// Viewing methods recognized by the catalog.
const (
	MethodTheater   ViewingMethod = "theater"
	MethodStreaming ViewingMethod = "streaming"
	MethodTV        ViewingMethod = "tv"
	MethodDVD       ViewingMethod = "dvd"
	MethodOther     ViewingMethod = "other"
)

// ValidViewingMethod reports whether m is a known viewing method.
func ValidViewingMethod(m ViewingMethod) bool {
	switch m {
	case MethodTheater, MethodStreaming, MethodTV, MethodDVD, MethodOther:
		return true
	}
	return false
}

// Mood enumerates the viewer's mood attached to a record.
type Mood string

// Moods recognized by the catalog.
const (
	MoodHappy      Mood = "happy"
	MoodSad        Mood = "sad"
	MoodExcited    Mood = "excited"
	MoodRelaxed    Mood = "relaxed"
	MoodThoughtful Mood = "thoughtful"
	MoodScary      Mood = "scary"
	MoodRomantic   Mood = "romantic"
)

// ValidMood reports whether m is a known mood.
func ValidMood(m Mood) bool {
	switch m {
	case MoodHappy, MoodSad, MoodExcited, MoodRelaxed, MoodThoughtful, MoodScary, MoodRomantic:
		return true
	}
	return false
}

// ViewingRecord represents one viewing event of a movie.
//
// For Source == SourceSynced the pair (MovieID, ExternalID) - or
// (MovieID, ViewedDate, ViewingMethod) when the site exposed no id - is
// unique: re-running a sync never inserts a second record for the same
// external viewing event.
//
// EditedAt is stamped whenever the user edits a synced record through the
// API. Reconciliation consults it to avoid clobbering manual edits.
type ViewingRecord struct {
	ID            int64         `json:"id"`
	MovieID       int64         `json:"movie_id"`
	ViewedDate    time.Time     `json:"viewed_date"`
	ViewingMethod ViewingMethod `json:"viewing_method"`
	Rating        *float64      `json:"rating,omitempty"`
	Mood          *Mood         `json:"mood,omitempty"`
	Comment       *string       `json:"comment,omitempty"`
	Source        RecordSource  `json:"source"`
	ExternalID    *string       `json:"external_id,omitempty"`
	EditedAt      *time.Time    `json:"edited_at,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// RecordPatch carries partial updates for a viewing record. Nil fields are
// left untouched.
type RecordPatch struct {
	ViewedDate    *time.Time     `json:"viewed_date,omitempty"`
	ViewingMethod *ViewingMethod `json:"viewing_method,omitempty"`
	Rating        *float64       `json:"rating,omitempty"`
	Mood          *Mood          `json:"mood,omitempty"`
	Comment       *string        `json:"comment,omitempty"`
}
