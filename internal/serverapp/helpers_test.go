package serverapp

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gamesales-api/internal/catalog"
	"gamesales-api/internal/config"
	"gamesales-api/internal/dbexec"
	"gamesales-api/internal/middleware"
	"gamesales-api/internal/observability"

	"github.com/DATA-DOG/go-sqlmock"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func testRouterConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{HealthCheckTimeout: time.Second},
		API:    config.APIConfig{DefaultLimit: 100, MaxLimit: 1000},
	}
}

func newPingMock(t *testing.T) (sqlmock.Sqlmock, func() http.Handler) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	executor := dbexec.NewStandardExecutor(db)
	sales := catalog.New(executor, catalog.WithMaxLimit(1000))
	build := func() http.Handler {
		return buildRouter(testRouterConfig(), testLogger(), executor, sales, nil, nil)
	}
	return mock, build
}

func TestHealthHandler_Healthy(t *testing.T) {
	mock, build := newPingMock(t)
	mock.ExpectPing()

	rec := httptest.NewRecorder()
	build().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"healthy"`) {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	mock, build := newPingMock(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	rec := httptest.NewRecorder()
	build().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"status":"unhealthy"`) {
		t.Fatalf("unexpected body %s", body)
	}
	if strings.Contains(body, "connection refused") {
		t.Fatalf("health body leaked the driver error: %s", body)
	}
}

func TestBuildRouter_ServesAPIAndFallbacks(t *testing.T) {
	_, build := newPingMock(t)
	handler := build()

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Game Database API is running") {
		t.Fatalf("unexpected root response %d %s", rec.Code, rec.Body.String())
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Fatalf("expected request id header on routed response")
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/no-such-route", nil))
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), `"detail":"not found"`) {
		t.Fatalf("unexpected not-found response %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/tables", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected /metrics to be absent when metrics are disabled, got %d", rec.Code)
	}
}

func TestBuildRouter_MetricsEndpoint(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	cfg := testRouterConfig()
	cfg.Observability.MetricsEnabled = true
	executor := dbexec.NewStandardExecutor(db)
	handler := buildRouter(cfg, testLogger(), executor, catalog.New(executor), nil, &observability.MeterProvider{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
}

func TestBuildRouter_RecoversFromPanics(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	executor := dbexec.NewStandardExecutor(db)
	r := buildRouter(testRouterConfig(), testLogger(), executor, catalog.New(executor), nil, nil)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected JSON content type after panic, got %q", got)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != `{"detail":"internal server error"}` {
		t.Fatalf("unexpected panic body %s", body)
	}
}

func TestWaitForDatabase_RetriesUntilReady(t *testing.T) {
	attempts := 0
	ping := func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("not ready")
		}
		return nil
	}

	err := waitForDatabase(context.Background(), time.Second, time.Millisecond, testLogger(), ping)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestWaitForDatabase_ZeroTimeoutTriesOnce(t *testing.T) {
	attempts := 0
	ping := func(context.Context) error {
		attempts++
		return errors.New("down")
	}

	if err := waitForDatabase(context.Background(), 0, time.Millisecond, testLogger(), ping); err == nil {
		t.Fatalf("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}

func TestWaitForDatabase_GivesUpAfterTimeout(t *testing.T) {
	cause := errors.New("down")
	err := waitForDatabase(context.Background(), 20*time.Millisecond, 5*time.Millisecond, testLogger(),
		func(context.Context) error { return cause })
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped ping error, got %v", err)
	}
}

func TestWaitForDatabase_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := waitForDatabase(ctx, time.Minute, time.Millisecond, testLogger(),
		func(context.Context) error { return errors.New("down") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestWrapHTTPHandler_UsesHTTPRootSpanName(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSampler(sdktrace.AlwaysSample()))
	tp.RegisterSpanProcessor(recorder)
	originalTP := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(originalTP)
	})

	cfg := &config.Config{
		Observability: config.ObservabilityConfig{
			TracingEnabled: true,
		},
	}
	handler := wrapHTTPHandler(cfg, testLogger(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats/sales-by-genre", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
	}

	for _, span := range recorder.Ended() {
		if span.Name() == "GET /stats/*" {
			return
		}
	}
	t.Fatalf("expected GET /stats/* span")
}

func TestWrapHTTPHandler_AppliesCORSAndRateLimit(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{
			CORSEnabled:        true,
			CORSAllowedOrigins: []string{"*"},
			RateLimitEnabled:   true,
			RateLimitRequests:  1,
			RateLimitWindow:    time.Minute,
		},
	}
	handler := wrapHTTPHandler(cfg, testLogger(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/genres", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard CORS origin, got %q", got)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/genres", nil))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 once the budget is spent, got %d", rec.Code)
	}
}

func TestNormalizeHTTPSpanRoute(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "root", input: "/", expected: "/"},
		{name: "health", input: "/health", expected: "/health"},
		{name: "metrics", input: "/metrics", expected: "/metrics"},
		{name: "stats", input: "/stats/best-sellings-games/5", expected: "/stats/*"},
		{name: "charts", input: "/seaborn/top-editoras/3", expected: "/seaborn/*"},
		{name: "games list", input: "/games", expected: "/games"},
		{name: "game id", input: "/games/42/complete", expected: "/games/*"},
		{name: "unknown", input: "/users/123", expected: "/*"},
		{name: "empty", input: "", expected: "/*"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeHTTPSpanRoute(tt.input)
			if got != tt.expected {
				t.Fatalf("normalizeHTTPSpanRoute(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
