// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/reelsync/internal/metrics"
	"github.com/tomtom215/reelsync/internal/models"
)

const recordColumns = `id, movie_id, viewed_date, viewing_method, rating,
	mood, comment, source, external_id, edited_at, created_at, updated_at`

func scanRecord(row rowScanner) (*models.ViewingRecord, error) {
	var r models.ViewingRecord
	err := row.Scan(&r.ID, &r.MovieID, &r.ViewedDate, &r.ViewingMethod,
		&r.Rating, &r.Mood, &r.Comment, &r.Source, &r.ExternalID,
		&r.EditedAt, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRecord inserts a viewing record and returns the stored row.
func (db *DB) CreateRecord(ctx context.Context, record *models.ViewingRecord) (*models.ViewingRecord, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO viewing_records (movie_id, viewed_date, viewing_method, rating, mood, comment, source, external_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+recordColumns,
		record.MovieID, record.ViewedDate, record.ViewingMethod, record.Rating,
		record.Mood, record.Comment, record.Source, record.ExternalID)

	created, err := scanRecord(row)
	metrics.ObserveDBQuery("insert", "viewing_records", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert viewing record: %w", err)
	}
	return created, nil
}

// GetRecord returns a viewing record by id, or ErrNotFound.
func (db *DB) GetRecord(ctx context.Context, id int64) (*models.ViewingRecord, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM viewing_records WHERE id = ?`, id)

	r, err := scanRecord(row)
	metrics.ObserveDBQuery("select", "viewing_records", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get viewing record: %w", err)
	}
	return r, nil
}

// FindSyncedRecordByExternalID returns the synced record for a movie with
// the given site id, or (nil, nil).
func (db *DB) FindSyncedRecordByExternalID(ctx context.Context, movieID int64, externalID string) (*models.ViewingRecord, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM viewing_records
		WHERE movie_id = ? AND external_id = ? AND source = 'synced'
		LIMIT 1`, movieID, externalID)

	r, err := scanRecord(row)
	metrics.ObserveDBQuery("select", "viewing_records", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find record by external id: %w", err)
	}
	return r, nil
}

// FindSyncedRecordByOccurrence returns the synced record without a site id
// matching (movie, date, method), or (nil, nil).
func (db *DB) FindSyncedRecordByOccurrence(ctx context.Context, movieID int64, viewedDate time.Time, method models.ViewingMethod) (*models.ViewingRecord, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM viewing_records
		WHERE movie_id = ? AND viewed_date = ? AND viewing_method = ?
		  AND source = 'synced' AND external_id IS NULL
		LIMIT 1`, movieID, viewedDate, method)

	r, err := scanRecord(row)
	metrics.ObserveDBQuery("select", "viewing_records", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find record by occurrence: %w", err)
	}
	return r, nil
}

// UpdateRecord applies a partial update without touching edited_at. This is
// the refresh path used by reconciliation.
func (db *DB) UpdateRecord(ctx context.Context, id int64, patch models.RecordPatch) (*models.ViewingRecord, error) {
	return db.updateRecord(ctx, id, patch, false)
}

// EditRecord applies a partial update and stamps edited_at. This is the
// user-facing PATCH path: the stamp tells later syncs to leave the record
// alone unless overwrite_manual_edits is on.
func (db *DB) EditRecord(ctx context.Context, id int64, patch models.RecordPatch) (*models.ViewingRecord, error) {
	return db.updateRecord(ctx, id, patch, true)
}

func (db *DB) updateRecord(ctx context.Context, id int64, patch models.RecordPatch, markEdited bool) (*models.ViewingRecord, error) {
	setClauses := []string{"updated_at = CURRENT_TIMESTAMP"}
	var args []any

	if markEdited {
		setClauses = append(setClauses, "edited_at = CURRENT_TIMESTAMP")
	}
	if patch.ViewedDate != nil {
		setClauses = append(setClauses, "viewed_date = ?")
		args = append(args, *patch.ViewedDate)
	}
	if patch.ViewingMethod != nil {
		setClauses = append(setClauses, "viewing_method = ?")
		args = append(args, *patch.ViewingMethod)
	}
	if patch.Rating != nil {
		setClauses = append(setClauses, "rating = ?")
		args = append(args, *patch.Rating)
	}
	if patch.Mood != nil {
		setClauses = append(setClauses, "mood = ?")
		args = append(args, *patch.Mood)
	}
	if patch.Comment != nil {
		setClauses = append(setClauses, "comment = ?")
		args = append(args, *patch.Comment)
	}

	query := "UPDATE viewing_records SET " + joinClauses(setClauses) + " WHERE id = ? RETURNING " + recordColumns
	args = append(args, id)

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query, args...)

	r, err := scanRecord(row)
	metrics.ObserveDBQuery("update", "viewing_records", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update viewing record: %w", err)
	}
	return r, nil
}

// DeleteRecord removes a viewing record. Returns ErrNotFound when it does
// not exist.
func (db *DB) DeleteRecord(ctx context.Context, id int64) error {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx, `DELETE FROM viewing_records WHERE id = ?`, id)
	metrics.ObserveDBQuery("delete", "viewing_records", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to delete viewing record: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRecords returns a page of viewing records ordered by viewed date
// (newest first), optionally scoped to a movie, and the total match count.
func (db *DB) ListRecords(ctx context.Context, movieID *int64, page, pageSize int) ([]*models.ViewingRecord, int, error) {
	offset := (page - 1) * pageSize

	where := ""
	countArgs := []any{}
	listArgs := []any{}
	if movieID != nil {
		where = " WHERE movie_id = ?"
		countArgs = append(countArgs, *movieID)
		listArgs = append(listArgs, *movieID)
	}
	listArgs = append(listArgs, pageSize, offset)

	start := time.Now()

	var total int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM viewing_records`+where, countArgs...).Scan(&total)
	if err != nil {
		metrics.ObserveDBQuery("select", "viewing_records", time.Since(start), err)
		return nil, 0, fmt.Errorf("failed to count viewing records: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM viewing_records`+where+`
		ORDER BY viewed_date DESC, id DESC
		LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		metrics.ObserveDBQuery("select", "viewing_records", time.Since(start), err)
		return nil, 0, fmt.Errorf("failed to list viewing records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*models.ViewingRecord
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			metrics.ObserveDBQuery("select", "viewing_records", time.Since(start), err)
			return nil, 0, fmt.Errorf("failed to scan viewing record: %w", err)
		}
		records = append(records, r)
	}
	err = rows.Err()
	metrics.ObserveDBQuery("select", "viewing_records", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to iterate viewing records: %w", err)
	}
	return records, total, nil
}
