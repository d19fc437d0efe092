// Package cache stores dictionary lookup results in a local SQLite
// database so repeated runs over the same deck can skip the network.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/joeyxworks/anki-flashcard-builder/internal/dictionary"
)

const schema = `
CREATE TABLE IF NOT EXISTS lookups (
	word       TEXT NOT NULL,
	language   TEXT NOT NULL,
	audio_url  TEXT NOT NULL,
	definition TEXT NOT NULL,
	examples   TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	PRIMARY KEY (word, language)
);`

// ErrMiss is returned by Get when no entry is cached for a word.
var ErrMiss = errors.New("cache miss")

// Store is a lookup cache backed by SQLite. Entries are keyed by word and
// language together, since the same word yields different definitions per
// locale.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens the cache database at path, creating the file, its parent
// directories and the schema as needed.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Get returns the cached entry for word in language, or ErrMiss.
func (s *Store) Get(ctx context.Context, word, language string) (*dictionary.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT audio_url, definition, examples FROM lookups WHERE word = ? AND language = ?`,
		word, language)

	var entry dictionary.Entry
	var examples string
	if err := row.Scan(&entry.AudioURL, &entry.Definition, &examples); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	if err := json.Unmarshal([]byte(examples), &entry.Examples); err != nil {
		return nil, fmt.Errorf("failed to decode cached examples: %w", err)
	}
	if entry.Examples == nil {
		entry.Examples = []string{}
	}
	return &entry, nil
}

// Put stores entry for word in language, replacing any previous entry.
func (s *Store) Put(ctx context.Context, word, language string, entry *dictionary.Entry) error {
	examples, err := json.Marshal(entry.Examples)
	if err != nil {
		return fmt.Errorf("failed to encode examples: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO lookups (word, language, audio_url, definition, examples, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		word, language, entry.AudioURL, entry.Definition, string(examples), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
