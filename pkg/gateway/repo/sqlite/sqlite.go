// Package sqlite implements gateway.RelationalStore on an embedded SQLite database.
package sqlite

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/tendant/simple-gateway/pkg/gateway"
	"github.com/tendant/simple-gateway/pkg/gateway/repo/sqlutil"
	_ "modernc.org/sqlite"
)

const (
	busyTimeoutMS   = 5000
	maxOpenConns    = 1
	connMaxLifetime = 5 * time.Minute
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS news (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	title      TEXT NOT NULL CHECK (title <> ''),
	content    TEXT NOT NULL CHECK (content <> ''),
	date       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS news_created_at_idx ON news (created_at);
`

// Store wraps the SQLite database.
type Store struct {
	db *sqlx.DB
}

// Open opens the database at path and bootstraps the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn, memory, err := dataSourceName(path)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := configure(ctx, db, memory); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate creates the news table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, query string, args ...any) ([]gateway.Row, error) {
	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []gateway.Row
	for rows.Next() {
		row := make(map[string]any)
		if err := rows.MapScan(row); err != nil {
			return nil, err
		}
		out = append(out, sqlutil.Normalize(row))
	}
	return out, rows.Err()
}

func (s *Store) Execute(ctx context.Context, query string, args ...any) (gateway.ExecResult, error) {
	if sqlutil.HasReturning(query) {
		var id int64
		if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
			return gateway.ExecResult{}, err
		}
		return gateway.ExecResult{Success: true, RowsAffected: 1, LastInsertID: id}, nil
	}

	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return gateway.ExecResult{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return gateway.ExecResult{}, err
	}
	lastID, _ := res.LastInsertId()
	return gateway.ExecResult{Success: true, RowsAffected: affected, LastInsertID: lastID}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func configure(ctx context.Context, db *sqlx.DB, memory bool) error {
	pragmas := []string{
		"PRAGMA foreign_keys = ON;",
		fmt.Sprintf("PRAGMA busy_timeout = %d;", busyTimeoutMS),
	}
	if !memory {
		pragmas = append(pragmas, "PRAGMA journal_mode = WAL;", "PRAGMA synchronous = NORMAL;")
	}
	for _, stmt := range pragmas {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxOpenConns)
	if memory {
		// The database lives only as long as its single connection.
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	} else {
		db.SetConnMaxLifetime(connMaxLifetime)
	}
	return nil
}

func dataSourceName(path string) (string, bool, error) {
	switch path {
	case "":
		return "", false, fmt.Errorf("db path is required")
	case MemoryPath, "memory":
		return MemoryPath, true, nil
	}
	u := url.URL{Scheme: "file", Path: path}
	return u.String(), false, nil
}
