// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

// Package validation provides struct validation using go-playground/validator v10.
//
// This package wraps the go-playground/validator library to provide a thread-safe
// singleton validator instance with user-friendly error messages. It integrates
// with the application's API error format for consistent error responses.
//
// # Overview
//
// The package provides:
//   - Thread-safe singleton validator (initialized once, cached struct info)
//   - Error translation to human-readable messages
//   - APIError conversion matching the application's VALIDATION_ERROR format
//   - Built-in validator support (required, email, oneof, min/max, gte/lte)
//
// # Quick Start
//
//	type CreateMovieRequest struct {
//	    Title        string `validate:"required,min=1,max=500"`
//	    ReleasedYear *int   `validate:"omitempty,gte=1870,lte=2100"`
//	}
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//	    var req CreateMovieRequest
//	    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
//	        // handle decode error
//	    }
//
//	    if verr := validation.ValidateStruct(&req); verr != nil {
//	        apiErr := verr.ToAPIError()
//	        respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	        return
//	    }
//	}
//
// # Common Tags
//
//   - required: field must be non-zero
//   - omitempty: skip remaining tags when the field is the zero value
//   - min/max: length bounds for strings, value bounds for numbers
//   - gte/lte: inclusive numeric bounds
//   - oneof: value must be in a fixed set, e.g. `oneof=theater streaming tv dvd other`
//   - email: RFC 5322 address check
//   - datetime: layout check, e.g. `datetime=2006-01-02`
//
// # Error Translation
//
// Validator tags map to readable messages:
//
//	required -> "Title is required"
//	max      -> "Rating must be at most 5"
//	oneof    -> "Method must be one of: theater streaming tv dvd other"
//
// Multiple failures are joined with "; " and carried per-field in the
// APIError details map.
package validation
