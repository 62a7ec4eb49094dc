// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package models

import "time"

// StatsSummary aggregates the catalog for the dashboard.
type StatsSummary struct {
	TotalMovies   int             `json:"total_movies"`
	TotalRecords  int             `json:"total_records"`
	AverageRating *float64        `json:"average_rating,omitempty"`
	ByMethod      []MethodCount   `json:"by_method"`
	ByYear        []YearViewCount `json:"by_year"`
	LastSync      *time.Time      `json:"last_sync,omitempty"`
}

// MethodCount is the number of viewing records per viewing method.
type MethodCount struct {
	Method ViewingMethod `json:"method"`
	Count  int           `json:"count"`
}

// YearViewCount is the number of viewing records per viewed year.
type YearViewCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// HealthStatus is the health check response.
type HealthStatus struct {
	Status            string  `json:"status"`
	Version           string  `json:"version"`
	DatabaseConnected bool    `json:"database_connected"`
	Uptime            float64 `json:"uptime_seconds"`
}
