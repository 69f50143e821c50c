package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gennadis/poshana/internal/chat"
	"github.com/jmoiron/sqlx"
)

// Slots is a local key/value store. The chat client mirrors the log it is
// showing into a slot after every change; the copy is never used to rebuild
// state.
type Slots struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewSlots creates a new Slots storage
func NewSlots(db *sqlx.DB) (*Slots, error) {
	createSlotsTable := `
	CREATE TABLE IF NOT EXISTS slots (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	)
	`
	if _, err := db.Exec(createSlotsTable); err != nil {
		return nil, fmt.Errorf("failed to create slots table: %w", err)
	}

	return &Slots{db: db, now: time.Now}, nil
}

// Write stores value under key, replacing any previous value
func (s *Slots) Write(key string, value []byte) error {
	upsertQuery := `
	INSERT INTO slots (key, value, timestamp) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, timestamp = excluded.timestamp
	`
	if _, err := s.db.Exec(upsertQuery, key, string(value), s.now().UTC()); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", key, err)
	}

	slog.Debug("slot written",
		slog.String("key", key),
		slog.Int("bytes", len(value)),
	)
	return nil
}

// Read returns the value under key, or nil if the slot is empty
func (s *Slots) Read(key string) ([]byte, error) {
	var value string
	err := s.db.Get(&value, "SELECT value FROM slots WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read slot %s: %w", key, err)
	}

	slog.Debug("slot read",
		slog.String("key", key),
		slog.Int("bytes", len(value)),
	)
	return []byte(value), nil
}

// Delete empties the slot under key
func (s *Slots) Delete(key string) error {
	if _, err := s.db.Exec("DELETE FROM slots WHERE key = ?", key); err != nil {
		return fmt.Errorf("failed to delete slot %s: %w", key, err)
	}

	slog.Debug("slot deleted", slog.String("key", key))
	return nil
}

// Save mirrors messages into the slot under key as JSON
func (s *Slots) Save(key string, messages []chat.Message) error {
	if messages == nil {
		messages = []chat.Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return fmt.Errorf("failed to encode messages: %w", err)
	}
	return s.Write(key, data)
}

// Messages returns the messages last saved under key
func (s *Slots) Messages(key string) ([]chat.Message, error) {
	data, err := s.Read(key)
	if err != nil || data == nil {
		return nil, err
	}
	var messages []chat.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode slot %s: %w", key, err)
	}
	return messages, nil
}
