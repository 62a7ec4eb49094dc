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
	"github.com/tomtom215/reelsync/internal/reconcile"
)

const movieColumns = `id, external_id, title, released_year, director, genre,
	image_url, detail_fetched_at, created_at, updated_at`

// rowScanner abstracts sql.Row and sql.Rows for shared scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(row rowScanner) (*models.Movie, error) {
	var m models.Movie
	err := row.Scan(&m.ID, &m.ExternalID, &m.Title, &m.ReleasedYear,
		&m.Director, &m.Genre, &m.ImageURL, &m.DetailFetchedAt,
		&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMovie inserts a movie and returns the stored row.
func (db *DB) CreateMovie(ctx context.Context, movie *models.Movie) (*models.Movie, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx, `
		INSERT INTO movies (external_id, title, title_normalized, released_year, director, genre, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING `+movieColumns,
		movie.ExternalID, movie.Title, reconcile.NormalizeTitle(movie.Title),
		movie.ReleasedYear, movie.Director, movie.Genre, movie.ImageURL)

	created, err := scanMovie(row)
	metrics.ObserveDBQuery("insert", "movies", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert movie: %w", err)
	}
	return created, nil
}

// GetMovie returns a movie by id, or ErrNotFound.
func (db *DB) GetMovie(ctx context.Context, id int64) (*models.Movie, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE id = ?`, id)

	m, err := scanMovie(row)
	metrics.ObserveDBQuery("select", "movies", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get movie: %w", err)
	}
	return m, nil
}

// FindMovieByExternalID returns the movie with the given site id, or
// (nil, nil) when none exists.
func (db *DB) FindMovieByExternalID(ctx context.Context, externalID string) (*models.Movie, error) {
	start := time.Now()
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE external_id = ?`, externalID)

	m, err := scanMovie(row)
	metrics.ObserveDBQuery("select", "movies", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find movie by external id: %w", err)
	}
	return m, nil
}

// FindMovieByTitleYear returns the movie with a matching normalized title
// and release year, or (nil, nil). A nil year matches only movies without
// a stored year.
func (db *DB) FindMovieByTitleYear(ctx context.Context, normalizedTitle string, year *int) (*models.Movie, error) {
	start := time.Now()

	var row *sql.Row
	if year == nil {
		row = db.conn.QueryRowContext(ctx, `
			SELECT `+movieColumns+` FROM movies
			WHERE title_normalized = ? AND released_year IS NULL
			LIMIT 1`, normalizedTitle)
	} else {
		row = db.conn.QueryRowContext(ctx, `
			SELECT `+movieColumns+` FROM movies
			WHERE title_normalized = ? AND released_year = ?
			LIMIT 1`, normalizedTitle, *year)
	}

	m, err := scanMovie(row)
	metrics.ObserveDBQuery("select", "movies", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find movie by title/year: %w", err)
	}
	return m, nil
}

// UpdateMovie applies a partial update and returns the stored row.
// Returns ErrNotFound when the movie does not exist.
func (db *DB) UpdateMovie(ctx context.Context, id int64, patch models.MoviePatch) (*models.Movie, error) {
	setClauses := []string{"updated_at = CURRENT_TIMESTAMP"}
	var args []any

	if patch.Title != nil {
		setClauses = append(setClauses, "title = ?", "title_normalized = ?")
		args = append(args, *patch.Title, reconcile.NormalizeTitle(*patch.Title))
	}
	if patch.ReleasedYear != nil {
		setClauses = append(setClauses, "released_year = ?")
		args = append(args, *patch.ReleasedYear)
	}
	if patch.Director != nil {
		setClauses = append(setClauses, "director = ?")
		args = append(args, *patch.Director)
	}
	if patch.Genre != nil {
		setClauses = append(setClauses, "genre = ?")
		args = append(args, *patch.Genre)
	}
	if patch.ImageURL != nil {
		setClauses = append(setClauses, "image_url = ?")
		args = append(args, *patch.ImageURL)
	}
	if patch.ExternalID != nil {
		setClauses = append(setClauses, "external_id = ?")
		args = append(args, *patch.ExternalID)
	}

	query := "UPDATE movies SET " + joinClauses(setClauses) + " WHERE id = ? RETURNING " + movieColumns
	args = append(args, id)

	start := time.Now()
	row := db.conn.QueryRowContext(ctx, query, args...)

	m, err := scanMovie(row)
	metrics.ObserveDBQuery("update", "movies", time.Since(start), ignoreNoRows(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update movie: %w", err)
	}
	return m, nil
}

// DeleteMovie removes a movie and all of its viewing records.
// Returns ErrNotFound when the movie does not exist.
func (db *DB) DeleteMovie(ctx context.Context, id int64) error {
	start := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM viewing_records WHERE movie_id = ?`, id); err != nil {
		metrics.ObserveDBQuery("delete", "movies", time.Since(start), err)
		return fmt.Errorf("failed to delete viewing records: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		metrics.ObserveDBQuery("delete", "movies", time.Since(start), err)
		return fmt.Errorf("failed to delete movie: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	err = tx.Commit()
	metrics.ObserveDBQuery("delete", "movies", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// ListMovies returns a page of movies ordered by title, with an optional
// case-insensitive substring filter, and the total match count.
func (db *DB) ListMovies(ctx context.Context, query string, page, pageSize int) ([]*models.Movie, int, error) {
	offset := (page - 1) * pageSize
	filter := "%" + reconcile.NormalizeTitle(query) + "%"

	start := time.Now()

	var total int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM movies WHERE title_normalized LIKE ?`, filter).Scan(&total)
	if err != nil {
		metrics.ObserveDBQuery("select", "movies", time.Since(start), err)
		return nil, 0, fmt.Errorf("failed to count movies: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT `+movieColumns+` FROM movies
		WHERE title_normalized LIKE ?
		ORDER BY title_normalized, id
		LIMIT ? OFFSET ?`, filter, pageSize, offset)
	if err != nil {
		metrics.ObserveDBQuery("select", "movies", time.Since(start), err)
		return nil, 0, fmt.Errorf("failed to list movies: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var movies []*models.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			metrics.ObserveDBQuery("select", "movies", time.Since(start), err)
			return nil, 0, fmt.Errorf("failed to scan movie: %w", err)
		}
		movies = append(movies, m)
	}
	err = rows.Err()
	metrics.ObserveDBQuery("select", "movies", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to iterate movies: %w", err)
	}
	return movies, total, nil
}

func joinClauses(clauses []string) string {
	out := clauses[0]
	for _, c := range clauses[1:] {
		out += ", " + c
	}
	return out
}

// ignoreNoRows keeps expected absent-row results out of the error metrics.
func ignoreNoRows(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}
