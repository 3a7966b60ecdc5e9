// Package store persists reconciliation runs to SQLite so that coverage
// can be compared across invocations. It is batch-scoped: a run is written
// once, immutable afterwards.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"tracecov/internal/cover"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	created_at INTEGER NOT NULL,
	folder     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS file_coverage (
	run_id    TEXT NOT NULL REFERENCES runs(id),
	filename  TEXT NOT NULL,
	coverable INTEGER NOT NULL,
	executed  INTEGER NOT NULL,
	percent   REAL NOT NULL,
	vector    TEXT NOT NULL,
	PRIMARY KEY (run_id, filename)
);
CREATE INDEX IF NOT EXISTS idx_file_coverage_run ON file_coverage(run_id);
`

// Store is a SQLite-backed archive of reconciliation runs.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

// Run is one recorded invocation.
type Run struct {
	ID        string
	CreatedAt time.Time
	Folder    string
	Files     int
	Percent   float64
}

// FileRecord is one stored per-file result.
type FileRecord struct {
	Filename  string
	Coverable int
	Executed  int
	Percent   float64
	Vector    cover.Vector
}

// Open initializes the database at path, creating parent directories and
// the schema as needed.
func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Debug("set busy_timeout failed", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Debug("set journal_mode failed", zap.Error(err))
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun records one reconciliation batch and returns the new run ID.
func (s *Store) SaveRun(folder string, files []cover.FileCoverage) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO runs (id, created_at, folder) VALUES (?, ?, ?)",
		id, time.Now().Unix(), folder,
	); err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, fc := range files {
		sum := fc.Summary()
		if _, err := tx.Exec(
			"INSERT INTO file_coverage (run_id, filename, coverable, executed, percent, vector) VALUES (?, ?, ?, ?, ?, ?)",
			id, fc.Filename, sum.Coverable, sum.Executed, sum.Percent, encodeVector(fc.Coverage),
		); err != nil {
			return "", fmt.Errorf("insert file coverage for %s: %w", fc.Filename, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run: %w", err)
	}
	s.log.Debug("saved run", zap.String("run_id", id), zap.Int("files", len(files)))
	return id, nil
}

// ListRuns returns the most recent runs, newest first, with per-run file
// counts and mean file percentage.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT r.id, r.created_at, r.folder,
		       COUNT(fc.filename), COALESCE(AVG(fc.percent), 100)
		FROM runs r
		LEFT JOIN file_coverage fc ON fc.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at DESC, r.id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var created int64
		if err := rows.Scan(&r.ID, &created, &r.Folder, &r.Files, &r.Percent); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.CreatedAt = time.Unix(created, 0)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunFiles returns the per-file records of one run, sorted by filename.
func (s *Store) RunFiles(runID string) ([]FileRecord, error) {
	rows, err := s.db.Query(`
		SELECT filename, coverable, executed, percent, vector
		FROM file_coverage WHERE run_id = ? ORDER BY filename`, runID)
	if err != nil {
		return nil, fmt.Errorf("query run files: %w", err)
	}
	defer rows.Close()

	var records []FileRecord
	for rows.Next() {
		var rec FileRecord
		var encoded string
		if err := rows.Scan(&rec.Filename, &rec.Coverable, &rec.Executed, &rec.Percent, &encoded); err != nil {
			return nil, fmt.Errorf("scan file coverage: %w", err)
		}
		rec.Vector, err = decodeVector(encoded)
		if err != nil {
			return nil, fmt.Errorf("decode vector for %s: %w", rec.Filename, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// encodeVector renders a vector as comma-separated line counts, "-" for
// not-applicable entries, e.g. "-,3,-,0".
func encodeVector(v cover.Vector) string {
	parts := make([]string, len(v))
	for i, lc := range v {
		parts[i] = lc.String()
	}
	return strings.Join(parts, ",")
}

func decodeVector(s string) (cover.Vector, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	vec := make(cover.Vector, len(parts))
	for i, p := range parts {
		if p == "-" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad vector entry %q", p)
		}
		vec[i] = cover.Executions(n)
	}
	return vec, nil
}
