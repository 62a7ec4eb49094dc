// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package models

import "testing"

func TestMaskEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"typical address", "alice@example.com", "al***@example.com"},
		{"two char local part", "al@example.com", "a***@example.com"},
		{"single char local part", "a@example.com", "a***@example.com"},
		{"no at sign", "not-an-email", "***"},
		{"empty", "", "***"},
		{"empty local part", "@example.com", "***"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MaskEmail(tt.email); got != tt.want {
				t.Errorf("MaskEmail(%q) = %q, want %q", tt.email, got, tt.want)
			}
		})
	}
}

func TestMaskEmailNeverLeaksFullLocalPart(t *testing.T) {
	masked := MaskEmail("carol@example.com")
	if masked == "carol@example.com" {
		t.Fatal("masked email must differ from the original")
	}
	if len(masked) > 0 && masked != "***" && masked[2:5] != "***" {
		t.Errorf("expected masked local part, got %q", masked)
	}
}

func TestValidViewingMethod(t *testing.T) {
	for _, m := range []ViewingMethod{MethodTheater, MethodStreaming, MethodTV, MethodDVD, MethodOther} {
		if !ValidViewingMethod(m) {
			t.Errorf("ValidViewingMethod(%q) = false, want true", m)
		}
	}
	if ValidViewingMethod("cinema") {
		t.Error("ValidViewingMethod(\"cinema\") = true, want false")
	}
	if ValidViewingMethod("") {
		t.Error("ValidViewingMethod(\"\") = true, want false")
	}
}

func TestValidMood(t *testing.T) {
	for _, m := range []Mood{MoodHappy, MoodSad, MoodExcited, MoodRelaxed, MoodThoughtful, MoodScary, MoodRomantic} {
		if !ValidMood(m) {
			t.Errorf("ValidMood(%q) = false, want true", m)
		}
	}
	if ValidMood("bored") {
		t.Error("ValidMood(\"bored\") = true, want false")
	}
}
