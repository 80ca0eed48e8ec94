// Package db is the durable memory of the agent: processed submissions,
// learned patterns, and the reserved action-outcome log, all in one SQLite
// file.
package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the agent memory database and ensures the schema
// exists. Safe to call on every startup.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("[Store] Failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("[Store] Failed to open database: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("[Store] Failed to initialize schema: %w", err)
	}

	slog.Info("[Store] Database ready", slog.String("path", path))
	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS submissions (
		submission_id TEXT PRIMARY KEY,
		title TEXT,
		content TEXT,
		author TEXT,
		subreddit TEXT,
		created_utc INTEGER,
		processed_at INTEGER,
		sentiment REAL,
		topics TEXT,
		engagement_score REAL,
		utility_score REAL
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_subreddit ON submissions(subreddit);

	CREATE TABLE IF NOT EXISTS learned_patterns (
		pattern_id INTEGER PRIMARY KEY AUTOINCREMENT,
		subreddit TEXT,
		pattern_type TEXT,
		pattern_data TEXT,
		confidence REAL,
		utility_score REAL,
		last_updated INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_patterns_subreddit_confidence ON learned_patterns(subreddit, confidence DESC);

	-- Reserved for future action feedback; nothing writes it yet.
	CREATE TABLE IF NOT EXISTS action_outcomes (
		action_id INTEGER PRIMARY KEY AUTOINCREMENT,
		action_type TEXT,
		context TEXT,
		outcome_score REAL,
		timestamp INTEGER
	);
	`

	_, err := s.db.Exec(schema)
	return err
}
