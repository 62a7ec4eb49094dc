// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package models

// SyncOptions controls a single sync attempt.
//
// When UseSavedCredentials is set and Email/Password are empty, the saved
// credential is loaded from the vault. When both Email and Password are
// empty and no saved credential exists (or interactive login is requested),
// the attempt opens an interactive login surface and waits for the user.
type SyncOptions struct {
	Email               string `json:"email,omitempty"`
	Password            string `json:"password,omitempty"`
	UseSavedCredentials bool   `json:"use_saved_credentials"`
	SaveCredentials     bool   `json:"save_credentials"`
}

// SyncOutcome is the single structured result of a sync attempt. Every
// internal failure is collapsed into Success=false plus a human-readable
// Message; the orchestrator never surfaces a raw error chain.
type SyncOutcome struct {
	Success       bool `json:"success"`
	Added         int  `json:"added"`
	Existing      int  `json:"existing"`
	UpdatedMovies int  `json:"updated_movies"`

	// Skipped counts scraped entries dropped by parse failures; Errors
	// counts entries whose persistence failed during reconciliation.
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`

	Cancelled                bool   `json:"cancelled,omitempty"`
	CanFallbackToInteractive bool   `json:"can_fallback_to_interactive,omitempty"`
	Message                  string `json:"message,omitempty"`
}
