// Reelsync - Movie Watch History Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelsync

package vault

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/reelsync/internal/config"
	"github.com/tomtom215/reelsync/internal/logging"
	"github.com/tomtom215/reelsync/internal/models"
)

// credentialKey is the BadgerDB key for the single stored credential.
const credentialKey = "credential:account"

var (
	// ErrNotFound is returned when no credential is stored.
	ErrNotFound = errors.New("no saved credential")

	// ErrEncryptionUnavailable is returned when the vault cannot encrypt
	// or decrypt, typically because key material is missing or corrupt.
	ErrEncryptionUnavailable = errors.New("credential encryption unavailable")
)

// Vault persists the (at most one) account credential in BadgerDB with
// the password field encrypted at rest.
type Vault struct {
	db        *badger.DB
	encryptor *Encryptor
}

// New opens the vault at cfg.Path. Key material comes from cfg.Key if
// set, otherwise from cfg.KeyFile; a missing key file is generated with
// 0600 permissions on first use.
func New(cfg config.VaultConfig) (*Vault, error) {
	secret, err := resolveMasterSecret(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionUnavailable, err)
	}

	encryptor, err := NewEncryptor(secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionUnavailable, err)
	}
	if err := encryptor.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionUnavailable, err)
	}

	if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path).
		WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open vault store: %w", err)
	}

	logging.Debug().Str("path", cfg.Path).Msg("Credential vault opened")

	return &Vault{db: db, encryptor: encryptor}, nil
}

// NewWithDB builds a vault on an existing BadgerDB handle. Used by tests
// and by callers that share one store across components.
func NewWithDB(db *badger.DB, encryptor *Encryptor) *Vault {
	return &Vault{db: db, encryptor: encryptor}
}

// Close releases the underlying store.
func (v *Vault) Close() error {
	return v.db.Close()
}

// Save encrypts the password and stores the credential, replacing any
// previous one. LastSync carries over from the existing record.
func (v *Vault) Save(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return errors.New("email and password must not be empty")
	}

	secret, err := v.encryptor.Encrypt(password)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncryptionUnavailable, err)
	}

	var lastSync *time.Time
	if existing, err := v.load(); err == nil {
		lastSync = existing.LastSync
	}

	cred := models.Credential{
		Email:     email,
		Secret:    secret,
		UpdatedAt: time.Now().UTC(),
		LastSync:  lastSync,
	}

	data, err := json.Marshal(&cred)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	err = v.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(credentialKey), data)
	})
	if err != nil {
		return fmt.Errorf("store credential: %w", err)
	}

	logging.Info().Str("email", models.MaskEmail(email)).Msg("Credential saved")
	return nil
}

// Describe returns the display-safe view of the stored credential. A
// missing credential is not an error; the view reports has_credentials
// false.
func (v *Vault) Describe(ctx context.Context) (*models.CredentialView, error) {
	cred, err := v.load()
	if errors.Is(err, ErrNotFound) {
		return &models.CredentialView{HasCredentials: false}, nil
	}
	if err != nil {
		return nil, err
	}

	updatedAt := cred.UpdatedAt
	return &models.CredentialView{
		HasCredentials: true,
		EmailMasked:    models.MaskEmail(cred.Email),
		LastSync:       cred.LastSync,
		UpdatedAt:      &updatedAt,
	}, nil
}

// OpenSecret decrypts and returns the stored login pair. Callers must
// not log or persist the returned password; the only intended consumer
// is the browser login step.
func (v *Vault) OpenSecret(ctx context.Context) (email, password string, err error) {
	cred, err := v.load()
	if err != nil {
		return "", "", err
	}

	password, err = v.encryptor.Decrypt(cred.Secret)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrEncryptionUnavailable, err)
	}

	return cred.Email, password, nil
}

// Delete removes the stored credential. Deleting when nothing is stored
// is not an error.
func (v *Vault) Delete(ctx context.Context) error {
	err := v.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(credentialKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}

	logging.Info().Msg("Credential deleted")
	return nil
}

// TouchLastSync records the completion time of the most recent
// successful sync on the stored credential. A missing credential is
// ignored: syncs can run with ad-hoc credentials that were never saved.
func (v *Vault) TouchLastSync(ctx context.Context, at time.Time) error {
	cred, err := v.load()
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	at = at.UTC()
	cred.LastSync = &at

	data, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("marshal credential: %w", err)
	}

	return v.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(credentialKey), data)
	})
}

// load reads the raw stored credential (password still encrypted).
func (v *Vault) load() (*models.Credential, error) {
	var cred models.Credential

	err := v.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(credentialKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get credential: %w", err)
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &cred)
		})
	})
	if err != nil {
		return nil, err
	}

	return &cred, nil
}

// resolveMasterSecret picks the master secret from config: an inline key
// wins, otherwise the key file is read, generating it if absent.
func resolveMasterSecret(cfg config.VaultConfig) (string, error) {
	if cfg.Key != "" {
		return cfg.Key, nil
	}
	if cfg.KeyFile == "" {
		return "", errors.New("no vault key or key file configured")
	}

	data, err := os.ReadFile(cfg.KeyFile)
	if err == nil {
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("key file %s is empty", cfg.KeyFile)
		}
		return secret, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("read key file: %w", err)
	}

	return generateKeyFile(cfg.KeyFile)
}

// generateKeyFile creates a fresh random master secret at path with
// owner-only permissions.
func generateKeyFile(path string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("generate key material: %w", err)
	}
	secret := hex.EncodeToString(raw)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return "", fmt.Errorf("create key directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(secret+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("write key file: %w", err)
	}

	logging.Info().Str("path", path).Msg("Generated new vault key file")
	return secret, nil
}
