// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

// Package reconcile merges scraped watch-history entries into the local
// movie catalog. The merge is idempotent: re-running over an identical
// entry sequence creates nothing new and changes nothing. A single bad
// entry never aborts the batch; its failure is counted and surfaced in
// the result.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tomtom215/reelsync/internal/logging"
	"github.com/tomtom215/reelsync/internal/metrics"
	"github.com/tomtom215/reelsync/internal/models"
)

// Result aggregates the outcome of one reconciliation pass.
type Result struct {
	Added         int          `json:"added"`
	Existing      int          `json:"existing"`
	UpdatedMovies int          `json:"updated_movies"`
	Errors        []EntryError `json:"errors,omitempty"`
}

// EntryError records a single entry that could not be persisted.
type EntryError struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	Err   string `json:"error"`
}

// Engine merges scraped entries into the catalog through a Store.
type Engine struct {
	store Store

	// overwriteManualEdits controls whether refreshing a synced record
	// may touch records the user edited by hand. Default is to preserve
	// the user's edits.
	overwriteManualEdits bool
}

// New builds an engine. overwriteManualEdits mirrors the
// sync.overwrite_manual_edits setting.
func New(store Store, overwriteManualEdits bool) *Engine {
	return &Engine{store: store, overwriteManualEdits: overwriteManualEdits}
}

// Reconcile processes entries in input order. Each entry resolves (or
// creates) a movie, then resolves (or creates) its viewing record.
// Per-entry persistence failures are collected, not fatal. The returned
// error is non-nil only when the whole pass had to stop (context
// cancellation).
func (e *Engine) Reconcile(ctx context.Context, entries []models.ScrapedEntry) (*Result, error) {
	res := &Result{}

	// Per-run caches: movie lookups are repeated across entries of the
	// same title, and a duplicate entry within one scrape must count as
	// existing without a second insert.
	moviesByExternalID := make(map[string]*models.Movie)
	moviesByTitleYear := make(map[string]*models.Movie)
	seenRecordKeys := make(map[string]bool)

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("reconciliation interrupted at entry %d: %w", i, err)
		}

		if err := e.reconcileEntry(ctx, entry, res, moviesByExternalID, moviesByTitleYear, seenRecordKeys); err != nil {
			res.Errors = append(res.Errors, EntryError{Index: i, Title: entry.Title, Err: err.Error()})
			logging.Warn().Int("index", i).Str("title", entry.Title).Err(err).Msg("Entry reconciliation failed")
		}
	}

	metrics.SyncRecordsAdded.Add(float64(res.Added))
	metrics.SyncRecordsExisting.Add(float64(res.Existing))

	logging.Info().
		Int("added", res.Added).
		Int("existing", res.Existing).
		Int("updated_movies", res.UpdatedMovies).
		Int("errors", len(res.Errors)).
		Msg("Reconciliation complete")

	return res, nil
}

func (e *Engine) reconcileEntry(
	ctx context.Context,
	entry models.ScrapedEntry,
	res *Result,
	moviesByExternalID map[string]*models.Movie,
	moviesByTitleYear map[string]*models.Movie,
	seenRecordKeys map[string]bool,
) error {
	if NormalizeTitle(entry.Title) == "" {
		return errors.New("entry has no title")
	}

	movie, err := e.resolveMovie(ctx, entry, res, moviesByExternalID, moviesByTitleYear)
	if err != nil {
		return err
	}

	key := recordKey(movie.ID, entry)
	if seenRecordKeys[key] {
		// Duplicate within this run: already handled, count as existing.
		res.Existing++
		return nil
	}

	record, err := e.findRecord(ctx, movie.ID, entry)
	if err != nil {
		return fmt.Errorf("find record: %w", err)
	}

	if record == nil {
		if _, err := e.store.CreateRecord(ctx, e.newRecord(movie.ID, entry)); err != nil {
			return fmt.Errorf("create record: %w", err)
		}
		res.Added++
	} else {
		res.Existing++
		if err := e.refreshRecord(ctx, record, entry); err != nil {
			return fmt.Errorf("refresh record: %w", err)
		}
	}

	seenRecordKeys[key] = true
	return nil
}

// resolveMovie finds the catalog movie for an entry, creating a stub if
// none exists. Found movies are enriched with fields the catalog is
// missing; a non-empty catalog value is never overwritten.
func (e *Engine) resolveMovie(
	ctx context.Context,
	entry models.ScrapedEntry,
	res *Result,
	moviesByExternalID map[string]*models.Movie,
	moviesByTitleYear map[string]*models.Movie,
) (*models.Movie, error) {
	titleKey := movieTitleKey(entry)

	var movie *models.Movie
	var err error

	if entry.ExternalID != "" {
		if cached, ok := moviesByExternalID[entry.ExternalID]; ok {
			return cached, nil
		}
		movie, err = e.store.FindMovieByExternalID(ctx, entry.ExternalID)
		if err != nil {
			return nil, fmt.Errorf("find movie by external id: %w", err)
		}
	}
	if movie == nil {
		if cached, ok := moviesByTitleYear[titleKey]; ok {
			return cached, nil
		}
		movie, err = e.store.FindMovieByTitleYear(ctx, NormalizeTitle(entry.Title), entry.ReleasedYear)
		if err != nil {
			return nil, fmt.Errorf("find movie by title/year: %w", err)
		}
	}

	if movie == nil {
		movie, err = e.createMovieStub(ctx, entry)
		if err != nil {
			return nil, err
		}
	} else if patch, changed := movieEnrichment(movie, entry); changed {
		movie, err = e.store.UpdateMovie(ctx, movie.ID, patch)
		if err != nil {
			return nil, fmt.Errorf("enrich movie: %w", err)
		}
		res.UpdatedMovies++
	}

	if entry.ExternalID != "" {
		moviesByExternalID[entry.ExternalID] = movie
	}
	moviesByTitleYear[titleKey] = movie
	return movie, nil
}

// createMovieStub inserts a minimal movie. Rich detail (genre, full
// metadata) is fetched lazily by the detail collaborator, never during
// sync.
func (e *Engine) createMovieStub(ctx context.Context, entry models.ScrapedEntry) (*models.Movie, error) {
	stub := &models.Movie{
		Title:        entry.Title,
		ReleasedYear: entry.ReleasedYear,
		Director:     entry.Director,
		ImageURL:     entry.ImageURL,
	}
	if entry.ExternalID != "" {
		externalID := entry.ExternalID
		stub.ExternalID = &externalID
	}

	movie, err := e.store.CreateMovie(ctx, stub)
	if err != nil {
		return nil, fmt.Errorf("create movie: %w", err)
	}
	return movie, nil
}

// movieEnrichment computes the fill-only patch for an existing movie:
// missing catalog fields take the entry's values, and a movie matched by
// title gains its external id for future syncs.
func movieEnrichment(movie *models.Movie, entry models.ScrapedEntry) (models.MoviePatch, bool) {
	var patch models.MoviePatch
	changed := false

	if movie.ExternalID == nil && entry.ExternalID != "" {
		externalID := entry.ExternalID
		patch.ExternalID = &externalID
		changed = true
	}
	if movie.ReleasedYear == nil && entry.ReleasedYear != nil {
		patch.ReleasedYear = entry.ReleasedYear
		changed = true
	}
	if emptyStr(movie.Director) && !emptyStr(entry.Director) {
		patch.Director = entry.Director
		changed = true
	}
	if emptyStr(movie.ImageURL) && !emptyStr(entry.ImageURL) {
		patch.ImageURL = entry.ImageURL
		changed = true
	}

	return patch, changed
}

// findRecord looks up the synced record under the entry's dedup key.
func (e *Engine) findRecord(ctx context.Context, movieID int64, entry models.ScrapedEntry) (*models.ViewingRecord, error) {
	if entry.ExternalID != "" {
		return e.store.FindSyncedRecordByExternalID(ctx, movieID, entry.ExternalID)
	}
	return e.store.FindSyncedRecordByOccurrence(ctx, movieID, dateOnly(entry.WatchedAt), mapViewingMethod(entry.RawMethod))
}

func (e *Engine) newRecord(movieID int64, entry models.ScrapedEntry) *models.ViewingRecord {
	record := &models.ViewingRecord{
		MovieID:       movieID,
		ViewedDate:    dateOnly(entry.WatchedAt),
		ViewingMethod: mapViewingMethod(entry.RawMethod),
		Rating:        entry.Rating,
		Source:        models.SourceSynced,
	}
	if entry.ExternalID != "" {
		externalID := entry.ExternalID
		record.ExternalID = &externalID
	}
	return record
}

// refreshRecord updates mutable fields of an existing synced record from
// the fresh scrape. Records the user edited are left alone unless the
// overwrite setting is on; manually-created records are never touched.
func (e *Engine) refreshRecord(ctx context.Context, record *models.ViewingRecord, entry models.ScrapedEntry) error {
	if record.Source != models.SourceSynced {
		return nil
	}
	if record.EditedAt != nil && !e.overwriteManualEdits {
		return nil
	}

	var patch models.RecordPatch
	changed := false

	if entry.Rating != nil && (record.Rating == nil || *record.Rating != *entry.Rating) {
		patch.Rating = entry.Rating
		changed = true
	}
	if !changed {
		return nil
	}

	_, err := e.store.UpdateRecord(ctx, record.ID, patch)
	return err
}

// recordKey is the in-run dedup key for viewing records.
func recordKey(movieID int64, entry models.ScrapedEntry) string {
	if entry.ExternalID != "" {
		return "ext:" + strconv.FormatInt(movieID, 10) + ":" + entry.ExternalID
	}
	return "occ:" + strconv.FormatInt(movieID, 10) + ":" +
		dateOnly(entry.WatchedAt).Format(time.DateOnly) + ":" + string(mapViewingMethod(entry.RawMethod))
}

// movieTitleKey is the in-run cache key for title/year movie lookups.
func movieTitleKey(entry models.ScrapedEntry) string {
	year := ""
	if entry.ReleasedYear != nil {
		year = strconv.Itoa(*entry.ReleasedYear)
	}
	return NormalizeTitle(entry.Title) + "|" + year
}

func emptyStr(s *string) bool {
	return s == nil || *s == ""
}
