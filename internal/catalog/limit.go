package catalog

import "gamesales-api/internal/apperr"

// DefaultMaxLimit bounds row limits when the catalog is built without WithMaxLimit.
const DefaultMaxLimit = 1000

// Limit is a validated row count: at least 1 and at most the configured bound.
// The zero value is not valid; obtain one from NewLimit.
type Limit struct {
	n int
}

// NewLimit returns a Limit for n, or a bad-request error when n is out of range.
func NewLimit(n, max int) (Limit, error) {
	if n < 1 {
		return Limit{}, apperr.BadRequest("the number must be greater than zero")
	}
	if max > 0 && n > max {
		return Limit{}, apperr.BadRequest("the number must not exceed %d", max)
	}
	return Limit{n: n}, nil
}

// Int returns the row count.
func (l Limit) Int() int {
	return l.n
}

// Uint64 returns the row count in the form squirrel's Limit takes.
func (l Limit) Uint64() uint64 {
	return uint64(l.n)
}

// Valid reports whether l came from a successful NewLimit.
func (l Limit) Valid() bool {
	return l.n > 0
}
