package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestValidateAndExtractRequestID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		keepsID bool
	}{
		{name: "uuid", input: "3f1c2d9e-8a7b-4c6d-9e0f-1a2b3c4d5e6f", keepsID: true},
		{name: "simple token", input: "req_123.abc", keepsID: true},
		{name: "empty", input: "", keepsID: false},
		{name: "header injection", input: "abc\r\nX-Evil: 1", keepsID: false},
		{name: "too long", input: strings.Repeat("a", 129), keepsID: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateAndExtractRequestID(tt.input)
			if tt.keepsID {
				if got != tt.input {
					t.Errorf("got %q, want %q", got, tt.input)
				}
				return
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Errorf("expected generated uuid, got %q", got)
			}
		})
	}
}

func TestLoggerAddsContextAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{
		Service:       ServiceInfo{Name: "voltahome", Version: "test"},
		Environment:   EnvProd,
		DefaultModule: Module("api"),
		Writer:        &buf,
	})

	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithModule(ctx, Module("sweep"))
	logger.WarnContext(ctx, "hello", slog.String("event", "test"))

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}

	if entry["message"] != "hello" {
		t.Errorf("message = %v", entry["message"])
	}
	if entry["severity"] != "WARNING" {
		t.Errorf("severity = %v", entry["severity"])
	}
	if entry["request_id"] != "req-1" {
		t.Errorf("request_id = %v", entry["request_id"])
	}
	if entry["module"] != "sweep" {
		t.Errorf("module = %v", entry["module"])
	}
	service, _ := entry["service"].(map[string]any)
	if service["name"] != "voltahome" {
		t.Errorf("service = %v", entry["service"])
	}
}

func TestLoggerUsesDefaultModule(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Environment: EnvDev, DefaultModule: Module("api"), Writer: &buf})

	logger.With(slog.String("k", "v")).Info("hello")

	if !strings.Contains(buf.String(), "module=api") {
		t.Errorf("expected default module in %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
