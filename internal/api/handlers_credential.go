// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package api

import (
	"net/http"
	"time"
)

// CredentialRequest is the PUT /credential body. The password is
// encrypted at rest and never echoed back by any endpoint.
type CredentialRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=1,max=200"`
}

// CredentialGet describes the saved credential without exposing it.
func (h *Handler) CredentialGet(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	view, err := h.credentials.Describe(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "VAULT_ERROR",
			"Failed to read credential state", err)
		return
	}

	respondSuccess(w, http.StatusOK, view, start)
}

// CredentialPut saves or replaces the stored credential.
func (h *Handler) CredentialPut(w http.ResponseWriter, r *http.Request) {
	var req CredentialRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	if err := h.credentials.Save(r.Context(), req.Email, req.Password); err != nil {
		respondError(w, http.StatusInternalServerError, "VAULT_ERROR",
			"Failed to save credential", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CredentialDelete removes the stored credential. Deleting an absent
// credential is a no-op.
func (h *Handler) CredentialDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.credentials.Delete(r.Context()); err != nil {
		respondError(w, http.StatusInternalServerError, "VAULT_ERROR",
			"Failed to delete credential", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
