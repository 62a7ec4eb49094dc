// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/reelsync/internal/metrics"
	"github.com/tomtom215/reelsync/internal/models"
)

// StatsSummary aggregates the catalog: totals, per viewing-method counts,
// per viewed-year counts and the average rating across all records.
func (db *DB) StatsSummary(ctx context.Context) (*models.StatsSummary, error) {
	start := time.Now()
	summary, err := db.statsSummary(ctx)
	metrics.ObserveDBQuery("select", "stats", time.Since(start), err)
	return summary, err
}

func (db *DB) statsSummary(ctx context.Context) (*models.StatsSummary, error) {
	var summary models.StatsSummary

	err := db.conn.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM movies),
			(SELECT COUNT(*) FROM viewing_records),
			(SELECT AVG(rating) FROM viewing_records WHERE rating IS NOT NULL)
	`).Scan(&summary.TotalMovies, &summary.TotalRecords, &summary.AverageRating)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT viewing_method, COUNT(*)
		FROM viewing_records
		GROUP BY viewing_method
		ORDER BY COUNT(*) DESC, viewing_method`)
	if err != nil {
		return nil, fmt.Errorf("failed to query method counts: %w", err)
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var mc models.MethodCount
		if err := rows.Scan(&mc.Method, &mc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan method count: %w", err)
		}
		summary.ByMethod = append(summary.ByMethod, mc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate method counts: %w", err)
	}

	yearRows, err := db.conn.QueryContext(ctx, `
		SELECT CAST(EXTRACT(year FROM viewed_date) AS INTEGER) AS y, COUNT(*)
		FROM viewing_records
		GROUP BY y
		ORDER BY y DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query year counts: %w", err)
	}
	defer func() { _ = yearRows.Close() }()
	for yearRows.Next() {
		var yc models.YearViewCount
		if err := yearRows.Scan(&yc.Year, &yc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan year count: %w", err)
		}
		summary.ByYear = append(summary.ByYear, yc)
	}
	if err := yearRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate year counts: %w", err)
	}

	return &summary, nil
}
