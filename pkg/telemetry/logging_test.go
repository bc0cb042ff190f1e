package telemetry

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLogLevel(in); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConfigureSlog_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := ConfigureSlog(&buf, "info", "json")

	logger.Info("hello", "key", "value")

	line := buf.String()
	if !strings.HasPrefix(strings.TrimSpace(line), "{") {
		t.Fatalf("expected JSON output, got %q", line)
	}
	if !strings.Contains(line, `"key":"value"`) {
		t.Fatalf("expected attribute in output, got %q", line)
	}
}

func TestConfigureSlog_LevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger := ConfigureSlog(&buf, "warn", "text")

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatal("info record should have been filtered at warn level")
	}
	if !strings.Contains(out, "loud") {
		t.Fatal("warn record missing")
	}
}
