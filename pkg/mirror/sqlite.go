// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package mirror

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/teradata-labs/tripweave/internal/sqlitedriver"
)

// SQLite stores the value in a kv table. Useful when several tools share one
// tripweave database.
type SQLite struct {
	db  *sql.DB
	key string
}

// NewSQLite opens (or creates) the database at path.
func NewSQLite(path, key string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if key == "" {
		key = DefaultKey
	}
	if path != ":memory:" {
		if err := ensureParent(path); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(sqlitedriver.DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	s := &SQLite{db: db, key: key}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLite) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	return err
}

// Get implements Store.
func (s *SQLite) Get() (string, bool, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, s.key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", s.key, err)
	}
	return value, true, nil
}

// Set implements Store.
func (s *SQLite) Set(value string) error {
	_, err := s.db.Exec(`
	INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.key, value)
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", s.key, err)
	}
	return nil
}

// Remove implements Store.
func (s *SQLite) Remove() error {
	if _, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, s.key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", s.key, err)
	}
	return nil
}

// Close implements Store.
func (s *SQLite) Close() error {
	return s.db.Close()
}
