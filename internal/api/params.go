package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"gamesales-api/internal/apperr"
	"gamesales-api/internal/catalog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func paramValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// countError turns a failed count validation into the message shown to callers.
func countError(err error, bound int) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apperr.BadRequest("invalid number")
	}
	switch fieldErrs[0].Tag() {
	case "lte":
		return apperr.BadRequest("the number must not exceed %d", bound)
	default:
		return apperr.BadRequest("the number must be greater than zero")
	}
}

// parseCount validates a top-N or limit value and returns it as a catalog Limit.
func (h *Handler) parseCount(raw string) (catalog.Limit, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return catalog.Limit{}, apperr.BadRequest("the number must be an integer, got %q", raw)
	}
	bound := h.catalog.MaxLimit()
	if err := paramValidator().Var(n, fmt.Sprintf("gt=0,lte=%d", bound)); err != nil {
		return catalog.Limit{}, countError(err, bound)
	}
	return h.catalog.NewLimit(n)
}

// topParam reads the {top} path segment.
func (h *Handler) topParam(r *http.Request, name string) (catalog.Limit, error) {
	return h.parseCount(chi.URLParam(r, name))
}

// limitQuery reads ?limit=, falling back to the configured default.
func (h *Handler) limitQuery(r *http.Request) (catalog.Limit, error) {
	raw := r.URL.Query().Get("limit")
	if strings.TrimSpace(raw) == "" {
		return h.catalog.NewLimit(h.defaultLimit)
	}
	return h.parseCount(raw)
}

// idParam reads an integer id path segment. A well-formed id too large for
// int64 cannot match any row, so it is reported as a missing noun.
func idParam(r *http.Request, name, noun string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && allDigits(raw) {
			return 0, apperr.NotFound("%s with id %s not found", noun, raw)
		}
		return 0, apperr.BadRequest("the id must be an integer, got %q", raw)
	}
	return id, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
