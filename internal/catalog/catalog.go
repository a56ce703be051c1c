// Package catalog runs the read-only queries behind every endpoint against the
// video_games schema and returns typed records.
//
// Absent classifications (a game with no genre, a release with no year) come back
// as invalid sql.Null* values. Substituting a display label is left to rendering.
package catalog

import (
	"context"
	"time"

	"gamesales-api/internal/dbexec"
	"gamesales-api/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// Catalog answers reporting questions over the sales dataset.
type Catalog struct {
	exec     dbexec.QueryExecutor
	metrics  *observability.APIMetrics
	maxLimit int
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithMetrics records query duration, row counts and failures.
func WithMetrics(m *observability.APIMetrics) Option {
	return func(c *Catalog) { c.metrics = m }
}

// WithMaxLimit sets the largest row limit NewLimit accepts.
func WithMaxLimit(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.maxLimit = n
		}
	}
}

// New returns a Catalog that runs its queries through exec.
func New(exec dbexec.QueryExecutor, opts ...Option) *Catalog {
	c := &Catalog{exec: exec, maxLimit: DefaultMaxLimit}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MaxLimit reports the largest accepted row limit.
func (c *Catalog) MaxLimit() int {
	return c.maxLimit
}

// NewLimit validates n against this catalog's bound.
func (c *Catalog) NewLimit(n int) (Limit, error) {
	return NewLimit(n, c.maxLimit)
}

// queryAll runs one query and scans every row with scan. Each call gets its own
// span and metric sample keyed by key.
func queryAll[T any](ctx context.Context, c *Catalog, key, query string, args []any, scan func(dbexec.Rows) (T, error)) (out []T, err error) {
	ctx, span := observability.StartSpan(ctx, "catalog."+key,
		attribute.String("db.system", "mysql"),
		attribute.String("catalog.query", key),
	)
	start := time.Now()
	defer func() {
		c.metrics.RecordQuery(ctx, key, time.Since(start), len(out), err)
		observability.FinishSpan(span, err, attribute.Int("catalog.rows", len(out)))
	}()

	rows, err := c.exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item, scanErr := scan(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
