package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store is the SQLite-backed persistence sink. It implements scrape.Sink.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the jobs database and runs the schema migration.
func Open(path string) (*Store, error) {
	// modernc sqlite DSN: file:foo.db?_pragma=busy_timeout(5000)
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// sqlite wants a single writer
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS jobs (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	identity_key     TEXT NOT NULL UNIQUE,
	source_site      TEXT NOT NULL,
	title            TEXT NOT NULL,
	company          TEXT NOT NULL DEFAULT '',
	location         TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	job_type         TEXT NOT NULL DEFAULT '',
	experience_level TEXT NOT NULL DEFAULT '',
	salary           TEXT NOT NULL DEFAULT '',
	date_posted      TEXT NOT NULL DEFAULT '',
	apply_url        TEXT NOT NULL DEFAULT '',
	scraped_at       TEXT NOT NULL,
	is_active        INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_jobs_source_site ON jobs(source_site);`)
	return err
}
