// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package vault

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/reelsync/internal/config"
)

func newTestVault(t *testing.T) *Vault {
	t.Helper()

	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	enc, err := NewEncryptor("test-master-secret")
	if err != nil {
		t.Fatalf("NewEncryptor: %v", err)
	}

	return NewWithDB(db, enc)
}

func TestEncryptorRoundTrip(t *testing.T) {
	enc, err := NewEncryptor("some-secret")
	if err != nil {
		t.Fatalf("NewEncryptor: %v", err)
	}

	ciphertext, err := enc.Encrypt("hunter2")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if strings.Contains(ciphertext, "hunter2") {
		t.Error("ciphertext contains plaintext")
	}

	plaintext, err := enc.Decrypt(ciphertext)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if plaintext != "hunter2" {
		t.Errorf("Decrypt = %q, want hunter2", plaintext)
	}
}

func TestEncryptorRejectsTamperedCiphertext(t *testing.T) {
	enc, _ := NewEncryptor("some-secret")
	ciphertext, _ := enc.Encrypt("hunter2")

	other, _ := NewEncryptor("different-secret")
	if _, err := other.Decrypt(ciphertext); !errors.Is(err, ErrDecryptionFailed) {
		t.Errorf("Decrypt with wrong key = %v, want ErrDecryptionFailed", err)
	}

	if _, err := enc.Decrypt("not-base64!!!"); !errors.Is(err, ErrInvalidCiphertext) {
		t.Errorf("Decrypt garbage = %v, want ErrInvalidCiphertext", err)
	}

	if _, err := enc.Decrypt("AAAA"); !errors.Is(err, ErrCiphertextTooShort) {
		t.Errorf("Decrypt short = %v, want ErrCiphertextTooShort", err)
	}
}

func TestEncryptorEmptyInputs(t *testing.T) {
	if _, err := NewEncryptor(""); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("NewEncryptor(\"\") = %v, want ErrEmptySecret", err)
	}

	enc, _ := NewEncryptor("some-secret")
	if _, err := enc.Encrypt(""); !errors.Is(err, ErrEmptyPlaintext) {
		t.Errorf("Encrypt(\"\") = %v, want ErrEmptyPlaintext", err)
	}
	if _, err := enc.Decrypt(""); !errors.Is(err, ErrEmptyCiphertext) {
		t.Errorf("Decrypt(\"\") = %v, want ErrEmptyCiphertext", err)
	}
}

func TestSaveAndOpenSecret(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	if err := v.Save(ctx, "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	email, password, err := v.OpenSecret(ctx)
	if err != nil {
		t.Fatalf("OpenSecret: %v", err)
	}
	if email != "alice@example.com" || password != "hunter2" {
		t.Errorf("OpenSecret = (%q, %q), want (alice@example.com, hunter2)", email, password)
	}
}

func TestSecretNeverStoredInPlaintext(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	if err := v.Save(ctx, "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	cred, err := v.load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if strings.Contains(cred.Secret, "hunter2") {
		t.Error("stored secret contains plaintext password")
	}
}

func TestDescribe(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	view, err := v.Describe(ctx)
	if err != nil {
		t.Fatalf("Describe (empty): %v", err)
	}
	if view.HasCredentials {
		t.Error("HasCredentials = true for empty vault")
	}

	if err := v.Save(ctx, "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	view, err = v.Describe(ctx)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if !view.HasCredentials {
		t.Error("HasCredentials = false after Save")
	}
	if view.EmailMasked != "al***@example.com" {
		t.Errorf("EmailMasked = %q, want al***@example.com", view.EmailMasked)
	}
	if view.UpdatedAt == nil {
		t.Error("UpdatedAt should be set")
	}
	if view.LastSync != nil {
		t.Error("LastSync should be nil before any sync")
	}
}

func TestDeleteIdempotent(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	// Delete on empty vault succeeds.
	if err := v.Delete(ctx); err != nil {
		t.Fatalf("Delete (empty): %v", err)
	}

	if err := v.Save(ctx, "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := v.Delete(ctx); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := v.Delete(ctx); err != nil {
		t.Fatalf("Delete (again): %v", err)
	}

	if _, _, err := v.OpenSecret(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("OpenSecret after delete = %v, want ErrNotFound", err)
	}
}

func TestTouchLastSync(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	// No credential stored: no-op, no error.
	if err := v.TouchLastSync(ctx, time.Now()); err != nil {
		t.Fatalf("TouchLastSync (empty): %v", err)
	}

	if err := v.Save(ctx, "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("Save: %v", err)
	}

	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	if err := v.TouchLastSync(ctx, at); err != nil {
		t.Fatalf("TouchLastSync: %v", err)
	}

	view, err := v.Describe(ctx)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if view.LastSync == nil || !view.LastSync.Equal(at) {
		t.Errorf("LastSync = %v, want %v", view.LastSync, at)
	}
}

func TestSavePreservesLastSync(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	if err := v.Save(ctx, "alice@example.com", "hunter2"); err != nil {
		t.Fatalf("Save: %v", err)
	}
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	if err := v.TouchLastSync(ctx, at); err != nil {
		t.Fatalf("TouchLastSync: %v", err)
	}

	// Replacing the credential keeps the sync history.
	if err := v.Save(ctx, "alice@example.com", "new-password"); err != nil {
		t.Fatalf("Save (replace): %v", err)
	}

	view, err := v.Describe(ctx)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if view.LastSync == nil || !view.LastSync.Equal(at) {
		t.Errorf("LastSync = %v, want %v", view.LastSync, at)
	}
}

func TestSaveRejectsEmptyFields(t *testing.T) {
	v := newTestVault(t)
	ctx := context.Background()

	if err := v.Save(ctx, "", "hunter2"); err == nil {
		t.Error("Save with empty email should fail")
	}
	if err := v.Save(ctx, "alice@example.com", ""); err == nil {
		t.Error("Save with empty password should fail")
	}
}

func TestResolveMasterSecretGeneratesKeyFile(t *testing.T) {
	dir := t.TempDir()
	keyFile := filepath.Join(dir, "vault.key")

	secret, err := generateKeyFile(keyFile)
	if err != nil {
		t.Fatalf("generateKeyFile: %v", err)
	}
	if len(secret) != 64 { // 32 bytes hex encoded
		t.Errorf("secret length = %d, want 64", len(secret))
	}

	info, err := os.Stat(keyFile)
	if err != nil {
		t.Fatalf("stat key file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("key file permissions = %o, want 600", perm)
	}

	// A second resolve reads the same key back instead of regenerating.
	again, err := resolveMasterSecret(config.VaultConfig{KeyFile: keyFile})
	if err != nil {
		t.Fatalf("resolveMasterSecret: %v", err)
	}
	if again != secret {
		t.Error("resolveMasterSecret should return the previously generated key")
	}
}
