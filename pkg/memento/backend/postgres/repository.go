// Package postgres stores content records in a self-hosted PostgreSQL
// database with the same user_content layout as the hosted project.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/memento/pkg/memento"
)

// Schema creates the user_content table when it does not exist.
const Schema = `
CREATE TABLE IF NOT EXISTS user_content (
	id           BIGSERIAL PRIMARY KEY,
	user_id      TEXT,
	title        TEXT NOT NULL,
	content_type TEXT NOT NULL,
	content      TEXT NOT NULL,
	tags         TEXT[] NOT NULL DEFAULT '{}',
	is_private   BOOLEAN NOT NULL DEFAULT TRUE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements memento.RecordStore using PostgreSQL
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) *Repository {
	return &Repository{db: db}
}

// NewWithPool connects a pool to databaseURL and verifies it with a ping.
func NewWithPool(ctx context.Context, databaseURL string) (*Repository, *pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return New(pool), pool, nil
}

// EnsureSchema applies Schema.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return r.handlePostgresError("ensure schema", err)
	}
	return nil
}

// InsertRecord inserts record into table. Only user_content is supported.
func (r *Repository) InsertRecord(ctx context.Context, table string, record *memento.ContentRecord) error {
	if table != memento.TableUserContent {
		return fmt.Errorf("unsupported table %q", table)
	}

	query := `
		INSERT INTO user_content (
			user_id, title, content_type, content, tags, is_private
		) VALUES ($1, $2, $3, $4, $5, $6)`

	tags := record.Tags
	if tags == nil {
		tags = []string{}
	}
	_, err := r.db.Exec(ctx, query,
		record.UserID, record.Title, string(record.ContentType), record.Content, tags, record.IsPrivate)
	if err != nil {
		return r.handlePostgresError("insert record", err)
	}
	return nil
}

// Error handling helper
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "22P02": // invalid_text_representation
			return fmt.Errorf("invalid value: %s", pgErr.Message)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		case "42501": // insufficient_privilege
			return fmt.Errorf("permission denied: %s", pgErr.Message)
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}
