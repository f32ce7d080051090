// Package historydb persists one row per solve invocation to a local
// SQLite file, so the CLI can show "last N runs for this model" and flag
// solve-time regressions. This is host-level bookkeeping around the
// engine: internal/run never imports it, only cmd/alloysat does.
package historydb

import (
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kevinawalsh/alloysat/internal/run"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store is a SQLite-backed run-history log.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the SQLite database at dsn and
// applies any pending migrations.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("historydb: open: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("historydb: set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("historydb: enable foreign keys: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("historydb: migrate: %w", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, f := range files {
		var applied int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_migrations WHERE version = ?", f).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", f, err)
		}
		if applied > 0 {
			continue
		}
		content, err := migrationsFS.ReadFile("migrations/" + f)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", f, err)
		}
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("begin tx for %s: %w", f, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", f, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", f); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", f, err)
		}
	}
	return nil
}

// Entry is one recorded solve invocation.
type Entry struct {
	ID           string
	SourceDigest string
	CommandName  string
	Verdict      string
	Decisions    int64
	Propagations int64
	Conflicts    int64
	Restarts     int64
	SolveTimeMs  int64
	CreatedAt    time.Time
}

// Record inserts a new history row for a completed run.Result, keyed
// under sourceDigest (the caller's choice of content hash, typically of
// the source text the command was run against).
func (s *Store) Record(sourceDigest string, res *run.Result) error {
	id := uuid.NewString()
	_, err := s.db.Exec(`INSERT INTO runs
		(id, source_digest, command_name, verdict, decisions, propagations, conflicts, restarts, solve_time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, sourceDigest, res.Command.Name, res.Status.String(),
		res.Stats.Decisions, res.Stats.Propagations, res.Stats.Conflicts, res.Stats.Restarts, res.SolveTimeMs)
	if err != nil {
		return fmt.Errorf("historydb: record: %w", err)
	}
	return nil
}

// Recent returns the most recent n history rows for sourceDigest, newest
// first.
func (s *Store) Recent(sourceDigest string, n int) ([]Entry, error) {
	rows, err := s.db.Query(`SELECT id, source_digest, command_name, verdict,
		decisions, propagations, conflicts, restarts, solve_time_ms, created_at
		FROM runs WHERE source_digest = ? ORDER BY created_at DESC LIMIT ?`, sourceDigest, n)
	if err != nil {
		return nil, fmt.Errorf("historydb: recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SourceDigest, &e.CommandName, &e.Verdict,
			&e.Decisions, &e.Propagations, &e.Conflicts, &e.Restarts, &e.SolveTimeMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("historydb: scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
