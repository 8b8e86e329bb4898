package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsLine(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "console", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger = NewComponentLogger(logger, "update")
	logger.Info("file tagged", Args(String("name", "photo.jpg"), Int("size", 12))...)

	line := buf.String()
	for _, want := range []string{" INFO ", "update: ", "file tagged", "name=photo.jpg", "size=12"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Format: "console", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Warn("conversion failed", Args(Error(errors.New("exit status 1")))...)
	if !strings.Contains(buf.String(), `error="exit status 1"`) {
		t.Fatalf("line %q missing quoted error", buf.String())
	}
}

func TestConsoleHandlerLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "warn", Format: "console", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("dropped")
	logger.Warn("kept")
	if strings.Contains(buf.String(), "dropped") {
		t.Fatal("info record written at warn level")
	}
	if !strings.Contains(buf.String(), "kept") {
		t.Fatal("warn record missing")
	}
}

func TestConsoleHandlerAddsSourceAtDebug(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "debug", Format: "console", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("tracing")
	if !strings.Contains(buf.String(), "[logger_test.go:") {
		t.Fatalf("line %q missing call site", buf.String())
	}
}

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Options{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatal(err)
	}
	NewComponentLogger(logger, "index").Info("page written", Args(String("page", "index.html"))...)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if record["msg"] != "page written" || record["component"] != "index" || record["page"] != "index.html" {
		t.Fatalf("unexpected record %v", record)
	}
	if record["level"] != "info" {
		t.Fatalf("level = %v", record["level"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNopLoggerSafeWithNilBase(t *testing.T) {
	logger := NewComponentLogger(nil, "anything")
	logger.Info("ignored")
}
