package observability

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName is the meter and tracer scope used across the server.
const InstrumentationName = "gamesales-api"

// APIMetrics holds the custom instruments for catalog queries, rendering and routes.
// A nil *APIMetrics is valid and records nothing.
type APIMetrics struct {
	queryDuration   metric.Float64Histogram
	queryRows       metric.Int64Histogram
	queryErrors     metric.Int64Counter
	renderDuration  metric.Float64Histogram
	requestCounter  metric.Int64Counter
	requestDuration metric.Float64Histogram
}

// InitAPIMetrics creates the instruments on the global meter provider.
func InitAPIMetrics() (*APIMetrics, error) {
	meter := otel.Meter(InstrumentationName)

	queryDuration, err := meter.Float64Histogram(
		"catalog.query.duration",
		metric.WithDescription("Duration of catalog queries in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create query duration histogram: %w", err)
	}

	queryRows, err := meter.Int64Histogram(
		"catalog.query.rows",
		metric.WithDescription("Number of rows returned by catalog queries"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create query rows histogram: %w", err)
	}

	queryErrors, err := meter.Int64Counter(
		"catalog.query.errors.total",
		metric.WithDescription("Total number of failed catalog queries"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create query error counter: %w", err)
	}

	renderDuration, err := meter.Float64Histogram(
		"render.duration",
		metric.WithDescription("Duration of response rendering in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create render duration histogram: %w", err)
	}

	requestCounter, err := meter.Int64Counter(
		"http.api.requests.total",
		metric.WithDescription("Total number of API requests by route"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request counter: %w", err)
	}

	requestDuration, err := meter.Float64Histogram(
		"http.api.request.duration",
		metric.WithDescription("Duration of API requests in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request duration histogram: %w", err)
	}

	return &APIMetrics{
		queryDuration:   queryDuration,
		queryRows:       queryRows,
		queryErrors:     queryErrors,
		renderDuration:  renderDuration,
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
	}, nil
}

// RecordQuery records one catalog query. query is the stable query key, not SQL text.
func (m *APIMetrics) RecordQuery(ctx context.Context, query string, duration time.Duration, rows int, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("query", query),
		attribute.String("outcome", outcome),
	)
	m.queryDuration.Record(ctx, durationMillis(duration), attrs)
	if err != nil {
		m.queryErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("query", query)))
		return
	}
	m.queryRows.Record(ctx, int64(rows), metric.WithAttributes(attribute.String("query", query)))
}

// RecordRender records the time spent producing a json, html or png body.
func (m *APIMetrics) RecordRender(ctx context.Context, format string, duration time.Duration, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.renderDuration.Record(ctx, durationMillis(duration), metric.WithAttributes(
		attribute.String("format", format),
		attribute.String("outcome", outcome),
	))
}

// RecordRequest records a completed request against its route pattern.
func (m *APIMetrics) RecordRequest(ctx context.Context, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("status_class", StatusClass(status)),
	)
	m.requestCounter.Add(ctx, 1, attrs)
	m.requestDuration.Record(ctx, durationMillis(duration), attrs)
}

// StatusClass buckets an HTTP status as "2xx", "4xx" and so on.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

func durationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
