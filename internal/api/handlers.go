// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

// Package api provides the HTTP surface: sync trigger, credential
// management, movie/record CRUD and catalog statistics, all wrapped in
// the standard APIResponse envelope.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/reelsync/internal/config"
	"github.com/tomtom215/reelsync/internal/models"
)

// Catalog is the slice of the database the handlers need.
type Catalog interface {
	CreateMovie(ctx context.Context, movie *models.Movie) (*models.Movie, error)
	GetMovie(ctx context.Context, id int64) (*models.Movie, error)
	UpdateMovie(ctx context.Context, id int64, patch models.MoviePatch) (*models.Movie, error)
	DeleteMovie(ctx context.Context, id int64) error
	ListMovies(ctx context.Context, query string, page, pageSize int) ([]*models.Movie, int, error)

	CreateRecord(ctx context.Context, record *models.ViewingRecord) (*models.ViewingRecord, error)
	GetRecord(ctx context.Context, id int64) (*models.ViewingRecord, error)
	EditRecord(ctx context.Context, id int64, patch models.RecordPatch) (*models.ViewingRecord, error)
	DeleteRecord(ctx context.Context, id int64) error
	ListRecords(ctx context.Context, movieID *int64, page, pageSize int) ([]*models.ViewingRecord, int, error)

	StatsSummary(ctx context.Context) (*models.StatsSummary, error)
	Ping(ctx context.Context) error
}

// SyncService triggers sync attempts.
type SyncService interface {
	Sync(ctx context.Context, opts models.SyncOptions) (*models.SyncOutcome, error)
}

// CredentialService manages the saved login.
type CredentialService interface {
	Describe(ctx context.Context) (*models.CredentialView, error)
	Save(ctx context.Context, email, password string) error
	Delete(ctx context.Context) error
}

// Handler holds dependencies for all HTTP handlers.
type Handler struct {
	catalog     Catalog
	sync        SyncService
	credentials CredentialService
	cfg         config.APIConfig
	version     string
	startTime   time.Time
}

// NewHandler creates a handler with the given dependencies.
func NewHandler(catalog Catalog, sync SyncService, credentials CredentialService, cfg config.APIConfig, version string) *Handler {
	return &Handler{
		catalog:     catalog,
		sync:        sync,
		credentials: credentials,
		cfg:         cfg,
		version:     version,
		startTime:   time.Now(),
	}
}

// Health reports service and database health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	dbOK := h.catalog.Ping(ctx) == nil
	status := "healthy"
	code := http.StatusOK
	if !dbOK {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	respondSuccess(w, code, &models.HealthStatus{
		Status:            status,
		Version:           h.version,
		DatabaseConnected: dbOK,
		Uptime:            time.Since(h.startTime).Seconds(),
	}, start)
}
