// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/reelsync/internal/database"
	"github.com/tomtom215/reelsync/internal/models"
)

// CreateMovieRequest is the POST /movies body.
type CreateMovieRequest struct {
	Title        string  `json:"title" validate:"required,min=1,max=500"`
	ReleasedYear *int    `json:"released_year" validate:"omitempty,gte=1870,lte=2100"`
	Director     *string `json:"director" validate:"omitempty,max=300"`
	Genre        *string `json:"genre" validate:"omitempty,max=100"`
	ImageURL     *string `json:"image_url" validate:"omitempty,url,max=2000"`
}

// UpdateMovieRequest is the PATCH /movies/{id} body. Nil fields are left
// untouched; external_id is not settable through the API.
type UpdateMovieRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=500"`
	ReleasedYear *int    `json:"released_year" validate:"omitempty,gte=1870,lte=2100"`
	Director     *string `json:"director" validate:"omitempty,max=300"`
	Genre        *string `json:"genre" validate:"omitempty,max=100"`
	ImageURL     *string `json:"image_url" validate:"omitempty,url,max=2000"`
}

// MoviesList returns a paginated movie listing with optional title search.
func (h *Handler) MoviesList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	page, pageSize := h.pagination(r)
	query := r.URL.Query().Get("q")

	movies, total, err := h.catalog.ListMovies(r.Context(), query, page, pageSize)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list movies", err)
		return
	}
	if movies == nil {
		movies = []*models.Movie{}
	}

	respondSuccess(w, http.StatusOK, &models.Page{
		Items:    movies,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, start)
}

// MovieGet returns a single movie.
func (h *Handler) MovieGet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	movie, err := h.catalog.GetMovie(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to get movie", err)
		return
	}

	respondSuccess(w, http.StatusOK, movie, start)
}

// MovieCreate adds a movie to the catalog.
func (h *Handler) MovieCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req CreateMovieRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	movie, err := h.catalog.CreateMovie(r.Context(), &models.Movie{
		Title:        req.Title,
		ReleasedYear: req.ReleasedYear,
		Director:     req.Director,
		Genre:        req.Genre,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create movie", err)
		return
	}

	respondSuccess(w, http.StatusCreated, movie, start)
}

// MoviePatch applies a partial update to a movie.
func (h *Handler) MoviePatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	var req UpdateMovieRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	movie, err := h.catalog.UpdateMovie(r.Context(), id, models.MoviePatch{
		Title:        req.Title,
		ReleasedYear: req.ReleasedYear,
		Director:     req.Director,
		Genre:        req.Genre,
		ImageURL:     req.ImageURL,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update movie", err)
		return
	}

	respondSuccess(w, http.StatusOK, movie, start)
}

// MovieDelete removes a movie and its viewing records.
func (h *Handler) MovieDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	if err := h.catalog.DeleteMovie(r.Context(), id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Movie not found", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete movie", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
