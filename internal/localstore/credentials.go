package localstore

import (
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/crypto/chacha20poly1305"
)

// Credentials is the token pair kept for the signed-in account. It is
// sealed with the device key before touching disk.
type Credentials struct {
	UserID       string `json:"user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// ErrNoCredentials is returned when no account is signed in on this device
var ErrNoCredentials = errors.New("no stored credentials")

// loadOrCreateDeviceKey reads the device key, generating one on first use
func loadOrCreateDeviceKey(path string) ([]byte, error) {
	key, err := os.ReadFile(path)
	if err == nil {
		if len(key) != chacha20poly1305.KeySize {
			return nil, fmt.Errorf("device key at %s has invalid length %d", path, len(key))
		}
		return key, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read device key: %w", err)
	}

	key = make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate device key: %w", err)
	}
	if err := os.WriteFile(path, key, 0600); err != nil {
		return nil, fmt.Errorf("failed to write device key: %w", err)
	}
	return key, nil
}

// SaveCredentials seals and stores the token pair, replacing any
// previous account's credentials
func (s *Store) SaveCredentials(c Credentials) error {
	plaintext, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}

	aead, err := chacha20poly1305.NewX(s.deviceKey)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := aead.Seal(nonce, nonce, plaintext, nil)

	_, err = s.db.Exec(
		`INSERT INTO credentials (id, sealed) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET sealed = excluded.sealed`,
		sealed,
	)
	return err
}

// LoadCredentials opens the stored token pair, or ErrNoCredentials when
// no account is signed in
func (s *Store) LoadCredentials() (Credentials, error) {
	var sealed []byte
	err := s.db.QueryRow(`SELECT sealed FROM credentials WHERE id = 1`).Scan(&sealed)
	if errors.Is(err, sql.ErrNoRows) {
		return Credentials{}, ErrNoCredentials
	}
	if err != nil {
		return Credentials{}, err
	}

	aead, err := chacha20poly1305.NewX(s.deviceKey)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to create cipher: %w", err)
	}
	if len(sealed) < aead.NonceSize() {
		return Credentials{}, errors.New("stored credentials are corrupt")
	}

	nonce, ciphertext := sealed[:aead.NonceSize()], sealed[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to unseal credentials: %w", err)
	}

	var c Credentials
	if err := json.Unmarshal(plaintext, &c); err != nil {
		return Credentials{}, fmt.Errorf("failed to decode credentials: %w", err)
	}
	return c, nil
}

// ClearCredentials removes the stored token pair on sign-out
func (s *Store) ClearCredentials() error {
	_, err := s.db.Exec(`DELETE FROM credentials`)
	return err
}
