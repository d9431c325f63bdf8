package localstore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tymer/internal/models"
)

// Store is the on-device persistence layer: a small sqlite database
// holding settings, encrypted credentials and the local-only fallback
// moments kept when a post's remote write fails
type Store struct {
	db        *sql.DB
	deviceKey []byte
}

// Open opens (or creates) the store at dbPath. The device key at
// keyPath seals credentials at rest; it is created on first use.
func Open(dbPath, keyPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping local store: %w", err)
	}

	// WAL keeps reads cheap while background syncs write
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		db.Close()
		return nil, err
	}

	key, err := loadOrCreateDeviceKey(keyPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	store := &Store{db: db, deviceKey: key}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS local_moments (
			id TEXT PRIMARY KEY,
			captured_at DATETIME NOT NULL,
			payload TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS credentials (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			sealed BLOB NOT NULL
		);`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// GetSetting retrieves a setting value by key, empty when unset
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSetting updates or inserts a setting
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

// HasCompletedOnboarding reports whether onboarding was finished on
// this device
func (s *Store) HasCompletedOnboarding() bool {
	value, err := s.GetSetting("has_completed_onboarding")
	if err != nil {
		return false
	}
	return value == "true"
}

// SetHasCompletedOnboarding records onboarding completion
func (s *Store) SetHasCompletedOnboarding(done bool) error {
	return s.SetSetting("has_completed_onboarding", boolString(done))
}

// LastPostDate returns the timestamp of the last successful post, zero
// when never posted
func (s *Store) LastPostDate() (time.Time, error) {
	value, err := s.GetSetting("last_post_date")
	if err != nil || value == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, value)
}

// SetLastPostDate records when the user last posted
func (s *Store) SetLastPostDate(t time.Time) error {
	return s.SetSetting("last_post_date", t.Format(time.RFC3339))
}

// DebugAlwaysOpen reports whether the gating override is enabled on
// this device. It must never be on in a release build; the setting only
// exists so development builds can bypass the window schedule.
func (s *Store) DebugAlwaysOpen() bool {
	value, err := s.GetSetting("debug_always_open")
	if err != nil {
		return false
	}
	return value == "true"
}

// SetDebugAlwaysOpen toggles the gating override
func (s *Store) SetDebugAlwaysOpen(enabled bool) error {
	return s.SetSetting("debug_always_open", boolString(enabled))
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// SaveLocalMoment persists a moment that could not reach the backend,
// replacing any previous copy with the same id
func (s *Store) SaveLocalMoment(m models.Moment) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode moment: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO local_moments (id, captured_at, payload) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET captured_at = excluded.captured_at, payload = excluded.payload`,
		m.ID.String(), m.CapturedAt.UTC(), payload,
	)
	return err
}

// LocalMomentForDay returns the locally persisted moment captured on
// the same calendar day as t, or nil when there is none
func (s *Store) LocalMomentForDay(t time.Time) (*models.Moment, error) {
	rows, err := s.db.Query(`SELECT payload FROM local_moments ORDER BY captured_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var m models.Moment
		if err := json.Unmarshal(payload, &m); err != nil {
			return nil, fmt.Errorf("failed to decode stored moment: %w", err)
		}
		if m.IsFromSameDay(t) {
			return &m, nil
		}
	}
	return nil, rows.Err()
}

// DeleteLocalMoment removes a locally persisted moment, called once the
// backend has accepted a replacement
func (s *Store) DeleteLocalMoment(id string) error {
	_, err := s.db.Exec(`DELETE FROM local_moments WHERE id = ?`, id)
	return err
}

// ClearLocalMoments wipes all locally persisted moments, part of the
// account-switch reset
func (s *Store) ClearLocalMoments() error {
	_, err := s.db.Exec(`DELETE FROM local_moments`)
	return err
}
