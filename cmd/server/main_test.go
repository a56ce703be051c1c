package main

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"gamesales-api/internal/config"
)

func TestReportValidation(t *testing.T) {
	tests := []struct {
		name      string
		result    config.ValidationResult
		expectErr bool
		wantLog   []string
	}{
		{
			name:   "clean result",
			result: config.ValidationResult{},
		},
		{
			name: "warnings only",
			result: config.ValidationResult{
				Warnings: []config.ValidationWarning{{Field: "server.rate_limit_enabled", Message: "rate limit values are set but rate limiting is disabled"}},
			},
			wantLog: []string{"configuration warning", "server.rate_limit_enabled"},
		},
		{
			name: "errors fail",
			result: config.ValidationResult{
				Errors: []config.ValidationError{{Field: "api.max_limit", Message: "max_limit must be at least 1"}},
			},
			expectErr: true,
			wantLog:   []string{"configuration error", "api.max_limit"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			err := reportValidation(&tt.result, logger)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got none")
				}
				if !strings.Contains(err.Error(), "api.max_limit") {
					t.Fatalf("expected error to name the field, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, want := range tt.wantLog {
				if !strings.Contains(buf.String(), want) {
					t.Fatalf("expected log to contain %q, got %s", want, buf.String())
				}
			}
		})
	}
}

func TestVersionString(t *testing.T) {
	if got := versionString(); got != "gamesales-api dev (none)" {
		t.Fatalf("unexpected version string %q", got)
	}
}
