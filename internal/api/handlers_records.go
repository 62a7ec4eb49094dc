// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reelsync/internal/database"
	"github.com/tomtom215/reelsync/internal/models"
)

// CreateRecordRequest is the POST /records body. Records created through
// the API carry source=manual and never collide with synced dedup keys.
type CreateRecordRequest struct {
	MovieID       int64    `json:"movie_id" validate:"required,gt=0"`
	ViewedDate    string   `json:"viewed_date" validate:"required,datetime=2006-01-02"`
	ViewingMethod string   `json:"viewing_method" validate:"required,oneof=theater streaming tv dvd other"`
	Rating        *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Mood          *string  `json:"mood" validate:"omitempty,oneof=happy sad excited relaxed thoughtful scary romantic"`
	Comment       *string  `json:"comment" validate:"omitempty,max=2000"`
}

// UpdateRecordRequest is the PATCH /records/{id} body. Nil fields are
// left untouched. Patching stamps edited_at, which protects the record
// from later sync refreshes.
type UpdateRecordRequest struct {
	ViewedDate    *string  `json:"viewed_date" validate:"omitempty,datetime=2006-01-02"`
	ViewingMethod *string  `json:"viewing_method" validate:"omitempty,oneof=theater streaming tv dvd other"`
	Rating        *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
	Mood          *string  `json:"mood" validate:"omitempty,oneof=happy sad excited relaxed thoughtful scary romantic"`
	Comment       *string  `json:"comment" validate:"omitempty,max=2000"`
}

// RecordsList returns a paginated record listing, optionally filtered by
// movie_id.
func (h *Handler) RecordsList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	page, pageSize := h.pagination(r)

	var movieID *int64
	if raw := r.URL.Query().Get("movie_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "INVALID_ID", "movie_id must be a positive integer", nil)
			return
		}
		movieID = &id
	}

	records, total, err := h.catalog.ListRecords(r.Context(), movieID, page, pageSize)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list records", err)
		return
	}
	if records == nil {
		records = []*models.ViewingRecord{}
	}

	respondSuccess(w, http.StatusOK, &models.Page{
		Items:    records,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, start)
}

// RecordCreate adds a manual viewing record.
func (h *Handler) RecordCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateRecordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	// The movie must exist; a dangling record would break the listing.
	if _, err := h.catalog.GetMovie(r.Context(), req.MovieID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to check movie", err)
		return
	}

	viewedDate, _ := time.Parse("2006-01-02", req.ViewedDate)

	var mood *models.Mood
	if req.Mood != nil {
		m := models.Mood(*req.Mood)
		mood = &m
	}

	record, err := h.catalog.CreateRecord(r.Context(), &models.ViewingRecord{
		MovieID:       req.MovieID,
		ViewedDate:    viewedDate,
		ViewingMethod: models.ViewingMethod(req.ViewingMethod),
		Rating:        req.Rating,
		Mood:          mood,
		Comment:       req.Comment,
		Source:        models.SourceManual,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create record", err)
		return
	}

	respondSuccess(w, http.StatusCreated, record, start)
}

// RecordPatch applies a partial update to a record and stamps edited_at.
func (h *Handler) RecordPatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateRecordRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	patch := models.RecordPatch{
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if req.ViewedDate != nil {
		d, _ := time.Parse("2006-01-02", *req.ViewedDate)
		patch.ViewedDate = &d
	}
	if req.ViewingMethod != nil {
		m := models.ViewingMethod(*req.ViewingMethod)
		patch.ViewingMethod = &m
	}
	if req.Mood != nil {
		m := models.Mood(*req.Mood)
		patch.Mood = &m
	}

	record, err := h.catalog.EditRecord(r.Context(), id, patch)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Record not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update record", err)
		return
	}

	respondSuccess(w, http.StatusOK, record, start)
}

// RecordDelete removes a viewing record.
func (h *Handler) RecordDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.catalog.DeleteRecord(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Record not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete record", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
