package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver
)

// NewSqliteDB opens the sqlite database at file, creating its directory
func NewSqliteDB(file string) (*sqlx.DB, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database dir: %w", err)
	}
	return sqlx.Connect("sqlite", file)
}
