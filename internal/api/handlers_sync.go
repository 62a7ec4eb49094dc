// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/reelsync/internal/logging"
	"github.com/tomtom215/reelsync/internal/models"
	"github.com/tomtom215/reelsync/internal/syncer"
)

// SyncRequest is the POST /sync body. Email and Password are optional:
// empty credentials select the interactive login flow.
type SyncRequest struct {
	Email               string `json:"email" validate:"omitempty,email"`
	Password            string `json:"password" validate:"omitempty,min=1,max=200"`
	UseSavedCredentials bool   `json:"use_saved_credentials"`
	SaveCredentials     bool   `json:"save_credentials"`
}

// Sync triggers a sync attempt. The handler blocks until the attempt
// finishes; a concurrent attempt is rejected with 409 immediately.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req SyncRequest
	if r.ContentLength > 0 {
		if !decodeBody(w, r, &req) {
			return
		}
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	if (req.Email == "") != (req.Password == "") {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			"email and password must be provided together", nil)
		return
	}

	// The attempt is user-paced: an interactive login alone can run for
	// minutes, well past the server's write timeout. Lift the write
	// deadline for this request so the outcome still reaches the caller.
	// httptest recorders don't support deadline control; that is fine.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		logging.Debug().Err(err).Msg("Write deadline not adjustable for sync request")
	}

	outcome, err := h.sync.Sync(r.Context(), models.SyncOptions{
		Email:               req.Email,
		Password:            req.Password,
		UseSavedCredentials: req.UseSavedCredentials,
		SaveCredentials:     req.SaveCredentials,
	})
	if err != nil {
		if errors.Is(err, syncer.ErrSyncInProgress) {
			respondError(w, http.StatusConflict, "SYNC_IN_PROGRESS",
				"A sync is already running", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "SYNC_FAILED",
			"Failed to start sync", err)
		return
	}

	respondSuccess(w, http.StatusOK, outcome, start)
}
