// Package postgres implements gateway.RelationalStore on PostgreSQL via pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/tendant/simple-gateway/pkg/gateway"
	"github.com/tendant/simple-gateway/pkg/gateway/repo/sqlutil"
)

const schema = `
CREATE TABLE IF NOT EXISTS news (
	id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
	title      TEXT NOT NULL CHECK (title <> ''),
	content    TEXT NOT NULL CHECK (content <> ''),
	date       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS news_created_at_idx ON news (created_at);
`

// DBTX is satisfied by a pool, a connection or a transaction.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Store implements gateway.RelationalStore. Statements use "?" placeholders
// and are rebound to "$n" before execution.
type Store struct {
	db DBTX
}

// New wraps an existing connection.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// NewWithPool wraps a connection pool.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{db: pool}
}

// Connect opens a pool and, when schema is set, pins search_path on every connection.
func Connect(ctx context.Context, databaseURL, schemaName string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schemaName != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, "SET search_path TO "+pgx.Identifier{schemaName}.Sanitize())
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	return pool, nil
}

// Migrate creates the news table when missing.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return handlePostgresError("migrate", err)
	}
	return nil
}

func (s *Store) Query(ctx context.Context, query string, args ...any) ([]gateway.Row, error) {
	rows, err := s.db.Query(ctx, rebind(query), args...)
	if err != nil {
		return nil, handlePostgresError("query", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []gateway.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, handlePostgresError("query", err)
		}
		row := make(map[string]any, len(fields))
		for i, f := range fields {
			row[f.Name] = values[i]
		}
		out = append(out, sqlutil.Normalize(row))
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("query", err)
	}
	return out, nil
}

func (s *Store) Execute(ctx context.Context, query string, args ...any) (gateway.ExecResult, error) {
	if sqlutil.HasReturning(query) {
		var id int64
		if err := s.db.QueryRow(ctx, rebind(query), args...).Scan(&id); err != nil {
			return gateway.ExecResult{}, handlePostgresError("execute", err)
		}
		return gateway.ExecResult{Success: true, RowsAffected: 1, LastInsertID: id}, nil
	}

	tag, err := s.db.Exec(ctx, rebind(query), args...)
	if err != nil {
		return gateway.ExecResult{}, handlePostgresError("execute", err)
	}
	return gateway.ExecResult{Success: true, RowsAffected: tag.RowsAffected()}, nil
}

func rebind(query string) string {
	return sqlx.Rebind(sqlx.DOLLAR, query)
}

func handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("duplicate entry: %w", err)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing: %w", pgErr.ColumnName, err)
		case "23514": // check_violation
			return fmt.Errorf("constraint %s violated: %w", pgErr.ConstraintName, err)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required: %w", err)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("database error in %s: %w", operation, err)
}
