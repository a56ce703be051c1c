// Package dbexec provides read-only query execution abstractions over database/sql.
package dbexec

import (
	"context"
	"database/sql"
)

// Rows abstracts sql.Rows so query code can be exercised without a live driver.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

// QueryExecutor runs read queries. The server never issues writes.
type QueryExecutor interface {
	QueryContext(ctx context.Context, query string, args ...any) (Rows, error)
}

// StandardExecutor executes queries directly against a database handle.
type StandardExecutor struct {
	db *sql.DB
}

// NewStandardExecutor creates an executor that runs queries directly against the database.
func NewStandardExecutor(db *sql.DB) *StandardExecutor {
	return &StandardExecutor{db: db}
}

func (e *StandardExecutor) QueryContext(ctx context.Context, query string, args ...any) (Rows, error) {
	if e.db == nil {
		return nil, sql.ErrConnDone
	}
	return e.db.QueryContext(ctx, query, args...)
}

// Ping checks that the database is reachable.
func (e *StandardExecutor) Ping(ctx context.Context) error {
	if e.db == nil {
		return sql.ErrConnDone
	}
	return e.db.PingContext(ctx)
}
