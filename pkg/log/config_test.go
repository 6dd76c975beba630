package log

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug": DebugLevel,
		"info":  InfoLevel,
		"warn":  WarnLevel,
		"WARN":  WarnLevel,
		"error": ErrorLevel,
		"fatal": FatalLevel,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %v want %v", in, got, want)
		}
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestApplyConfigRejectsBadFormat(t *testing.T) {
	if _, err := ApplyConfig(&Config{Format: "xml"}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
	if _, err := ApplyConfig(&Config{Output: "file"}); err == nil {
		t.Fatalf("expected error for file output without path")
	}
}

func TestLevelGating(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(
		WithLevel(WarnLevel),
		WithFormatter(&TextFormatter{DisableTimestamp: true}),
		WithOutput(NewConsoleOutputTo(&buf)),
	)
	l.Info("dropped")
	l.Warn("kept")
	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Fatalf("info should be gated at warn level: %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("warn should pass: %q", out)
	}
}

func TestJSONFormatterFields(t *testing.T) {
	f := &JSONFormatter{}
	entry := &Entry{
		Level:     InfoLevel,
		Message:   "hello",
		Fields:    Fields{"size": 11},
		Timestamp: time.Unix(0, 0).UTC(),
	}
	b, err := f.Format(entry)
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if m["msg"] != "hello" || m["level"] != "INFO" {
		t.Fatalf("unexpected entry: %v", m)
	}
	if m["size"] != float64(11) {
		t.Fatalf("missing field: %v", m)
	}
}

func TestWithFieldsPropagate(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(
		WithFormatter(&TextFormatter{DisableTimestamp: true}),
		WithOutput(NewConsoleOutputTo(&buf)),
	)
	l.With(Component("core"), Str("k", "v")).Info("tagged")
	out := buf.String()
	if !strings.Contains(out, "component=core") || !strings.Contains(out, "k=v") {
		t.Fatalf("fields not propagated: %q", out)
	}
}
