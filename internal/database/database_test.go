// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/reelsync/internal/config"
	"github.com/tomtom215/reelsync/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "256MB", Threads: 2})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strPtr(s string) *string    { return &s }
func intPtr(i int) *int          { return &i }
func floatPtr(f float64) *float64 { return &f }

func TestCreateAndGetMovie(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := db.CreateMovie(ctx, &models.Movie{
		ExternalID:   strPtr("12345"),
		Title:        "素晴らしき映画",
		ReleasedYear: intPtr(2023),
		Director:     strPtr("渡辺一貴"),
	})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}
	if created.ID == 0 {
		t.Error("created movie has zero id")
	}

	got, err := db.GetMovie(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetMovie: %v", err)
	}
	if got.Title != "素晴らしき映画" || *got.ExternalID != "12345" || *got.ReleasedYear != 2023 {
		t.Errorf("got %+v", got)
	}

	if _, err := db.GetMovie(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMovie(missing) = %v, want ErrNotFound", err)
	}
}

func TestFindMovieByExternalID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := db.CreateMovie(ctx, &models.Movie{ExternalID: strPtr("777"), Title: "Movie"})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}

	found, err := db.FindMovieByExternalID(ctx, "777")
	if err != nil {
		t.Fatalf("FindMovieByExternalID: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Errorf("found = %+v, want id %d", found, created.ID)
	}

	missing, err := db.FindMovieByExternalID(ctx, "nope")
	if err != nil || missing != nil {
		t.Errorf("missing lookup = (%+v, %v), want (nil, nil)", missing, err)
	}
}

func TestFindMovieByTitleYear(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateMovie(ctx, &models.Movie{Title: "Some  Movie", ReleasedYear: intPtr(2020)}); err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}
	if _, err := db.CreateMovie(ctx, &models.Movie{Title: "Some Movie"}); err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}

	// Lookup goes through the normalized title.
	withYear, err := db.FindMovieByTitleYear(ctx, "some movie", intPtr(2020))
	if err != nil {
		t.Fatalf("FindMovieByTitleYear: %v", err)
	}
	if withYear == nil || withYear.ReleasedYear == nil || *withYear.ReleasedYear != 2020 {
		t.Errorf("withYear = %+v", withYear)
	}

	// nil year matches only the year-less row.
	noYear, err := db.FindMovieByTitleYear(ctx, "some movie", nil)
	if err != nil {
		t.Fatalf("FindMovieByTitleYear(nil): %v", err)
	}
	if noYear == nil || noYear.ReleasedYear != nil {
		t.Errorf("noYear = %+v", noYear)
	}

	absent, err := db.FindMovieByTitleYear(ctx, "other movie", intPtr(1999))
	if err != nil || absent != nil {
		t.Errorf("absent lookup = (%+v, %v), want (nil, nil)", absent, err)
	}
}

func TestUpdateMovie(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	created, err := db.CreateMovie(ctx, &models.Movie{Title: "Old Title"})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}

	updated, err := db.UpdateMovie(ctx, created.ID, models.MoviePatch{
		Title:      strPtr("New Title"),
		Director:   strPtr("someone"),
		ExternalID: strPtr("42"),
	})
	if err != nil {
		t.Fatalf("UpdateMovie: %v", err)
	}
	if updated.Title != "New Title" || *updated.Director != "someone" || *updated.ExternalID != "42" {
		t.Errorf("updated = %+v", updated)
	}

	// Renaming updates the normalized lookup key too.
	found, err := db.FindMovieByTitleYear(ctx, "new title", nil)
	if err != nil || found == nil {
		t.Errorf("lookup after rename = (%+v, %v)", found, err)
	}

	if _, err := db.UpdateMovie(ctx, 9999, models.MoviePatch{Title: strPtr("x")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateMovie(missing) = %v, want ErrNotFound", err)
	}
}

func TestDeleteMovieCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	movie, err := db.CreateMovie(ctx, &models.Movie{Title: "Doomed"})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}
	if _, err := db.CreateRecord(ctx, &models.ViewingRecord{
		MovieID:       movie.ID,
		ViewedDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ViewingMethod: models.MethodOther,
		Source:        models.SourceManual,
	}); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	if err := db.DeleteMovie(ctx, movie.ID); err != nil {
		t.Fatalf("DeleteMovie: %v", err)
	}

	if _, err := db.GetMovie(ctx, movie.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetMovie after delete = %v, want ErrNotFound", err)
	}
	records, total, err := db.ListRecords(ctx, &movie.ID, 1, 10)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if total != 0 || len(records) != 0 {
		t.Errorf("records survived movie delete: total=%d", total)
	}

	if err := db.DeleteMovie(ctx, movie.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteMovie = %v, want ErrNotFound", err)
	}
}

func TestListMoviesPaginationAndSearch(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	titles := []string{"Alpha", "Beta", "Gamma", "Alphaville", "Delta"}
	for _, title := range titles {
		if _, err := db.CreateMovie(ctx, &models.Movie{Title: title}); err != nil {
			t.Fatalf("CreateMovie(%s): %v", title, err)
		}
	}

	page1, total, err := db.ListMovies(ctx, "", 1, 2)
	if err != nil {
		t.Fatalf("ListMovies: %v", err)
	}
	if total != 5 || len(page1) != 2 {
		t.Errorf("page1: total=%d len=%d, want 5/2", total, len(page1))
	}
	if page1[0].Title != "Alpha" || page1[1].Title != "Alphaville" {
		t.Errorf("page1 order: %q, %q", page1[0].Title, page1[1].Title)
	}

	page3, _, err := db.ListMovies(ctx, "", 3, 2)
	if err != nil {
		t.Fatalf("ListMovies page 3: %v", err)
	}
	if len(page3) != 1 {
		t.Errorf("page3 len = %d, want 1", len(page3))
	}

	matched, total, err := db.ListMovies(ctx, "ALPHA", 1, 10)
	if err != nil {
		t.Fatalf("ListMovies(search): %v", err)
	}
	if total != 2 || len(matched) != 2 {
		t.Errorf("search: total=%d len=%d, want 2/2", total, len(matched))
	}
}

func TestRecordLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	movie, err := db.CreateMovie(ctx, &models.Movie{Title: "Movie"})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}

	created, err := db.CreateRecord(ctx, &models.ViewingRecord{
		MovieID:       movie.ID,
		ViewedDate:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		ViewingMethod: models.MethodTheater,
		Rating:        floatPtr(4.5),
		Source:        models.SourceManual,
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	if created.EditedAt != nil {
		t.Error("fresh record should not carry edited_at")
	}

	got, err := db.GetRecord(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got.ViewingMethod != models.MethodTheater || *got.Rating != 4.5 {
		t.Errorf("got %+v", got)
	}

	if err := db.DeleteRecord(ctx, created.ID); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if err := db.DeleteRecord(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteRecord = %v, want ErrNotFound", err)
	}
}

func TestEditRecordStampsEditedAt(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	movie, err := db.CreateMovie(ctx, &models.Movie{Title: "Movie"})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}
	created, err := db.CreateRecord(ctx, &models.ViewingRecord{
		MovieID:       movie.ID,
		ViewedDate:    time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
		ViewingMethod: models.MethodOther,
		Source:        models.SourceSynced,
		ExternalID:    strPtr("e1"),
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	// Reconcile-style refresh leaves edited_at alone.
	refreshed, err := db.UpdateRecord(ctx, created.ID, models.RecordPatch{Rating: floatPtr(3.0)})
	if err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}
	if refreshed.EditedAt != nil {
		t.Error("UpdateRecord must not stamp edited_at")
	}

	// A user edit stamps it.
	edited, err := db.EditRecord(ctx, created.ID, models.RecordPatch{Rating: floatPtr(2.0)})
	if err != nil {
		t.Fatalf("EditRecord: %v", err)
	}
	if edited.EditedAt == nil {
		t.Error("EditRecord must stamp edited_at")
	}
	if *edited.Rating != 2.0 {
		t.Errorf("Rating = %v, want 2.0", *edited.Rating)
	}
}

func TestFindSyncedRecords(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	movie, err := db.CreateMovie(ctx, &models.Movie{Title: "Movie"})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}

	date := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	withID, err := db.CreateRecord(ctx, &models.ViewingRecord{
		MovieID: movie.ID, ViewedDate: date, ViewingMethod: models.MethodOther,
		Source: models.SourceSynced, ExternalID: strPtr("x9"),
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	withoutID, err := db.CreateRecord(ctx, &models.ViewingRecord{
		MovieID: movie.ID, ViewedDate: date, ViewingMethod: models.MethodStreaming,
		Source: models.SourceSynced,
	})
	if err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	// A manual record must never match the synced lookups.
	if _, err := db.CreateRecord(ctx, &models.ViewingRecord{
		MovieID: movie.ID, ViewedDate: date, ViewingMethod: models.MethodTV,
		Source: models.SourceManual,
	}); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	byExt, err := db.FindSyncedRecordByExternalID(ctx, movie.ID, "x9")
	if err != nil {
		t.Fatalf("FindSyncedRecordByExternalID: %v", err)
	}
	if byExt == nil || byExt.ID != withID.ID {
		t.Errorf("byExt = %+v, want id %d", byExt, withID.ID)
	}

	byOcc, err := db.FindSyncedRecordByOccurrence(ctx, movie.ID, date, models.MethodStreaming)
	if err != nil {
		t.Fatalf("FindSyncedRecordByOccurrence: %v", err)
	}
	if byOcc == nil || byOcc.ID != withoutID.ID {
		t.Errorf("byOcc = %+v, want id %d", byOcc, withoutID.ID)
	}

	manualOcc, err := db.FindSyncedRecordByOccurrence(ctx, movie.ID, date, models.MethodTV)
	if err != nil || manualOcc != nil {
		t.Errorf("manual record matched synced lookup: (%+v, %v)", manualOcc, err)
	}
}

func TestListRecordsFilterAndOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	m1, err := db.CreateMovie(ctx, &models.Movie{Title: "One"})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}
	m2, err := db.CreateMovie(ctx, &models.Movie{Title: "Two"})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}

	dates := []time.Time{
		time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		if _, err := db.CreateRecord(ctx, &models.ViewingRecord{
			MovieID: m1.ID, ViewedDate: d, ViewingMethod: models.MethodOther,
			Source: models.SourceManual,
		}); err != nil {
			t.Fatalf("CreateRecord: %v", err)
		}
	}
	if _, err := db.CreateRecord(ctx, &models.ViewingRecord{
		MovieID: m2.ID, ViewedDate: dates[0], ViewingMethod: models.MethodOther,
		Source: models.SourceManual,
	}); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}

	all, total, err := db.ListRecords(ctx, nil, 1, 10)
	if err != nil {
		t.Fatalf("ListRecords(all): %v", err)
	}
	if total != 4 || len(all) != 4 {
		t.Errorf("all: total=%d len=%d, want 4/4", total, len(all))
	}

	forM1, total, err := db.ListRecords(ctx, &m1.ID, 1, 10)
	if err != nil {
		t.Fatalf("ListRecords(m1): %v", err)
	}
	if total != 3 {
		t.Errorf("m1 total = %d, want 3", total)
	}
	// Newest first.
	if !forM1[0].ViewedDate.After(forM1[1].ViewedDate) || !forM1[1].ViewedDate.After(forM1[2].ViewedDate) {
		t.Errorf("records not ordered newest first: %v, %v, %v",
			forM1[0].ViewedDate, forM1[1].ViewedDate, forM1[2].ViewedDate)
	}
}

func TestStatsSummary(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	movie, err := db.CreateMovie(ctx, &models.Movie{Title: "Movie"})
	if err != nil {
		t.Fatalf("CreateMovie: %v", err)
	}

	seed := []struct {
		date   time.Time
		method models.ViewingMethod
		rating *float64
	}{
		{time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), models.MethodTheater, floatPtr(4.0)},
		{time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), models.MethodTheater, floatPtr(2.0)},
		{time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), models.MethodStreaming, nil},
	}
	for _, s := range seed {
		if _, err := db.CreateRecord(ctx, &models.ViewingRecord{
			MovieID: movie.ID, ViewedDate: s.date, ViewingMethod: s.method,
			Rating: s.rating, Source: models.SourceManual,
		}); err != nil {
			t.Fatalf("CreateRecord: %v", err)
		}
	}

	summary, err := db.StatsSummary(ctx)
	if err != nil {
		t.Fatalf("StatsSummary: %v", err)
	}

	if summary.TotalMovies != 1 || summary.TotalRecords != 3 {
		t.Errorf("totals = %d movies / %d records, want 1/3", summary.TotalMovies, summary.TotalRecords)
	}
	if summary.AverageRating == nil || *summary.AverageRating != 3.0 {
		t.Errorf("AverageRating = %v, want 3.0", summary.AverageRating)
	}

	methods := map[models.ViewingMethod]int{}
	for _, mc := range summary.ByMethod {
		methods[mc.Method] = mc.Count
	}
	if methods[models.MethodTheater] != 2 || methods[models.MethodStreaming] != 1 {
		t.Errorf("ByMethod = %v", summary.ByMethod)
	}

	years := map[int]int{}
	for _, yc := range summary.ByYear {
		years[yc.Year] = yc.Count
	}
	if years[2026] != 2 || years[2025] != 1 {
		t.Errorf("ByYear = %v", summary.ByYear)
	}
}

func TestStatsSummaryEmpty(t *testing.T) {
	db := newTestDB(t)

	summary, err := db.StatsSummary(context.Background())
	if err != nil {
		t.Fatalf("StatsSummary: %v", err)
	}
	if summary.TotalMovies != 0 || summary.TotalRecords != 0 {
		t.Errorf("totals = %+v, want zeros", summary)
	}
	if summary.AverageRating != nil {
		t.Errorf("AverageRating = %v, want nil on empty table", summary.AverageRating)
	}
}
