// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package models

import (
	"strings"
	"time"
)

// Credential is the optional saved login for the external site.
//
// Secret holds the AES-256-GCM ciphertext of the password, base64 encoded.
// It is only ever decrypted inside the browser driver's login step; no API
// surface returns the plaintext.
type Credential struct {
	Email     string     `json:"email"`
	Secret    string     `json:"secret"`
	UpdatedAt time.Time  `json:"updated_at"`
	LastSync  *time.Time `json:"last_sync,omitempty"`
}

// CredentialView is the display-safe projection of a stored credential.
type CredentialView struct {
	HasCredentials bool       `json:"has_credentials"`
	EmailMasked    string     `json:"email_masked,omitempty"`
	LastSync       *time.Time `json:"last_sync,omitempty"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// MaskEmail renders an email for display, keeping at most the first two
// characters of the local part and the full domain:
// "alice@example.com" -> "al***@example.com".
func MaskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return "***"
	}
	if len(local) <= 2 {
		return local[:1] + "***@" + domain
	}
	return local[:2] + "***@" + domain
}
