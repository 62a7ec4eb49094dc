// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package reconcile

import (
	"context"
	"time"

	"github.com/tomtom215/reelsync/internal/models"
)

// Store is the catalog surface reconciliation writes through. Lookups
// return (nil, nil) when nothing matches.
type Store interface {
	FindMovieByExternalID(ctx context.Context, externalID string) (*models.Movie, error)
	FindMovieByTitleYear(ctx context.Context, normalizedTitle string, year *int) (*models.Movie, error)
	CreateMovie(ctx context.Context, movie *models.Movie) (*models.Movie, error)
	UpdateMovie(ctx context.Context, id int64, patch models.MoviePatch) (*models.Movie, error)

	FindSyncedRecordByExternalID(ctx context.Context, movieID int64, externalID string) (*models.ViewingRecord, error)
	FindSyncedRecordByOccurrence(ctx context.Context, movieID int64, viewedDate time.Time, method models.ViewingMethod) (*models.ViewingRecord, error)
	CreateRecord(ctx context.Context, record *models.ViewingRecord) (*models.ViewingRecord, error)
	UpdateRecord(ctx context.Context, id int64, patch models.RecordPatch) (*models.ViewingRecord, error)
}
