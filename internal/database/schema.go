// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// createSchema creates tables, sequences and indexes. All statements are
// idempotent so startup re-runs them safely.
func (db *DB) createSchema() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS movies_id_seq START 1`,
		`CREATE SEQUENCE IF NOT EXISTS viewing_records_id_seq START 1`,

		`CREATE TABLE IF NOT EXISTS movies (
			id BIGINT PRIMARY KEY DEFAULT nextval('movies_id_seq'),
			external_id TEXT,
			title TEXT NOT NULL,
			title_normalized TEXT NOT NULL,
			released_year INTEGER,
			director TEXT,
			genre TEXT,
			image_url TEXT,
			detail_fetched_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS viewing_records (
			id BIGINT PRIMARY KEY DEFAULT nextval('viewing_records_id_seq'),
			movie_id BIGINT NOT NULL,
			viewed_date DATE NOT NULL,
			viewing_method TEXT NOT NULL,
			rating DOUBLE,
			mood TEXT,
			comment TEXT,
			source TEXT NOT NULL,
			external_id TEXT,
			edited_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// Lookup paths used by reconciliation.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_movies_external_id
			ON movies(external_id) WHERE external_id IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_movies_title_year
			ON movies(title_normalized, released_year)`,
		`CREATE INDEX IF NOT EXISTS idx_records_movie_id
			ON viewing_records(movie_id)`,
		`CREATE INDEX IF NOT EXISTS idx_records_viewed_date
			ON viewing_records(viewed_date)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_records_synced_external
			ON viewing_records(movie_id, external_id)
			WHERE source = 'synced' AND external_id IS NOT NULL`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}
