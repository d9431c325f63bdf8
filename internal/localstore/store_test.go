package localstore

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"tymer/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "tymer.db"), filepath.Join(dir, "device.key"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSettingsRoundTrip(t *testing.T) {
	store := openTestStore(t)

	if store.HasCompletedOnboarding() {
		t.Error("onboarding should default to false")
	}
	if err := store.SetHasCompletedOnboarding(true); err != nil {
		t.Fatalf("SetHasCompletedOnboarding failed: %v", err)
	}
	if !store.HasCompletedOnboarding() {
		t.Error("onboarding flag not persisted")
	}

	if store.DebugAlwaysOpen() {
		t.Error("debug override should default to false")
	}
	if err := store.SetDebugAlwaysOpen(true); err != nil {
		t.Fatalf("SetDebugAlwaysOpen failed: %v", err)
	}
	if !store.DebugAlwaysOpen() {
		t.Error("debug override not persisted")
	}
}

func TestLastPostDateRoundTrip(t *testing.T) {
	store := openTestStore(t)

	got, err := store.LastPostDate()
	if err != nil {
		t.Fatalf("LastPostDate failed: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("expected zero time before any post, got %v", got)
	}

	posted := time.Date(2025, 3, 14, 8, 30, 0, 0, time.UTC)
	if err := store.SetLastPostDate(posted); err != nil {
		t.Fatalf("SetLastPostDate failed: %v", err)
	}

	got, err = store.LastPostDate()
	if err != nil {
		t.Fatalf("LastPostDate failed: %v", err)
	}
	if !got.Equal(posted) {
		t.Errorf("LastPostDate = %v, want %v", got, posted)
	}
}

func TestLocalMomentForDay(t *testing.T) {
	store := openTestStore(t)

	today := time.Date(2025, 3, 14, 8, 30, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)
	author := models.User{ID: uuid.New(), Username: "paul"}

	old := models.NewMoment(author, "", "yesterday", yesterday)
	current := models.NewMoment(author, "local/pic.jpg", "today", today)
	if err := store.SaveLocalMoment(old); err != nil {
		t.Fatalf("SaveLocalMoment failed: %v", err)
	}
	if err := store.SaveLocalMoment(current); err != nil {
		t.Fatalf("SaveLocalMoment failed: %v", err)
	}

	got, err := store.LocalMomentForDay(today)
	if err != nil {
		t.Fatalf("LocalMomentForDay failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a moment for today")
	}
	if got.ID != current.ID {
		t.Errorf("got moment %v, want %v", got.ID, current.ID)
	}
	if got.Description != "today" {
		t.Errorf("Description = %q, want %q", got.Description, "today")
	}

	if err := store.DeleteLocalMoment(current.ID.String()); err != nil {
		t.Fatalf("DeleteLocalMoment failed: %v", err)
	}
	got, err = store.LocalMomentForDay(today)
	if err != nil {
		t.Fatalf("LocalMomentForDay failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected no moment after delete, got %v", got.ID)
	}
}

func TestCredentialsSealedRoundTrip(t *testing.T) {
	store := openTestStore(t)

	if _, err := store.LoadCredentials(); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials, got %v", err)
	}

	creds := Credentials{
		UserID:       uuid.New().String(),
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}
	if err := store.SaveCredentials(creds); err != nil {
		t.Fatalf("SaveCredentials failed: %v", err)
	}

	got, err := store.LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials failed: %v", err)
	}
	if got != creds {
		t.Errorf("LoadCredentials = %+v, want %+v", got, creds)
	}

	// The sealed blob must not contain the plaintext tokens.
	var sealed []byte
	if err := store.db.QueryRow(`SELECT sealed FROM credentials WHERE id = 1`).Scan(&sealed); err != nil {
		t.Fatalf("failed to read sealed blob: %v", err)
	}
	if bytes.Contains(sealed, []byte("refresh-token")) {
		t.Error("refresh token stored in plaintext")
	}

	if err := store.ClearCredentials(); err != nil {
		t.Fatalf("ClearCredentials failed: %v", err)
	}
	if _, err := store.LoadCredentials(); !errors.Is(err, ErrNoCredentials) {
		t.Fatalf("expected ErrNoCredentials after clear, got %v", err)
	}
}

