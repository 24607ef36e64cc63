package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Feature: storefront-api, Property: production logs are structured
func TestProperty_ProductionLogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("every production entry is JSON with level, timestamp, message and service", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer
			log, err := build("production", zapcore.AddSync(&buf))
			if err != nil {
				return false
			}

			switch level {
			case "warn":
				log.Warn(message)
			case "error":
				log.Error(message)
			default:
				log.Info(message)
			}
			_ = log.Sync()

			// Error entries carry a stacktrace, still one JSON object per line.
			line := strings.SplitN(buf.String(), "\n", 2)[0]

			var entry map[string]interface{}
			if err := json.Unmarshal([]byte(line), &entry); err != nil {
				t.Logf("not JSON: %q", line)
				return false
			}

			for _, key := range []string{"level", "timestamp", "message", "service"} {
				if _, ok := entry[key]; !ok {
					t.Logf("missing key %s in %v", key, entry)
					return false
				}
			}

			return entry["message"] == message && entry["service"] == ServiceName && entry["level"] == level
		},
		gen.AlphaString(),
		gen.OneConstOf("info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductionLoggerDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	log, err := build("production", zapcore.AddSync(&buf))
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	log.Debug("hidden")
	_ = log.Sync()

	if buf.Len() != 0 {
		t.Errorf("expected debug entry to be dropped, got %q", buf.String())
	}
}

func TestDevelopmentLoggerIsConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := build("development", zapcore.AddSync(&buf))
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}

	log.Debug("visible", zap.String("order_id", "abc"))
	_ = log.Sync()

	out := buf.String()
	if !strings.Contains(out, "visible") || !strings.Contains(out, "abc") {
		t.Errorf("expected console output with message and field, got %q", out)
	}
	if json.Valid([]byte(strings.TrimSpace(out))) {
		t.Errorf("expected console encoding, got JSON: %q", out)
	}
}

func TestNamedFallsBackToNop(t *testing.T) {
	if Named(nil, "orders") == nil {
		t.Fatal("Named should never return nil")
	}
}
