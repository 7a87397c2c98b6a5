package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   LevelDebug,
		"info":    LevelInfo,
		"warn":    LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"fatal":   LevelFatal,
		"bogus":   LevelInfo,
		"":        LevelInfo,
		" Debug ": LevelDebug,
	}

	for input, want := range cases {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLevel_ShouldLog(t *testing.T) {
	if !LevelError.ShouldLog(LevelInfo) {
		t.Error("error should log at info minimum")
	}
	if LevelDebug.ShouldLog(LevelInfo) {
		t.Error("debug should not log at info minimum")
	}
	if !LevelInfo.ShouldLog(LevelInfo) {
		t.Error("info should log at info minimum")
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := New("test").WithLevel(LevelWarn).WithOutput(&buf)

	logger.Debug("dropped")
	logger.Info("dropped")
	logger.Warn("kept")
	logger.Error("kept")

	lines := strings.Count(buf.String(), "\n")
	if lines != 2 {
		t.Errorf("line count = %d, want 2: %q", lines, buf.String())
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := New("sync").
		WithFormatter(NewJSONFormatter()).
		WithOutput(&buf).
		WithField("profile", "DE")

	logger.Info("poll tick", Fields{"key": "alpha-report"})

	var data map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if data["level"] != "info" {
		t.Errorf("level = %v, want info", data["level"])
	}
	if data["message"] != "poll tick" {
		t.Errorf("message = %v, want 'poll tick'", data["message"])
	}
	if data["logger"] != "sync" {
		t.Errorf("logger = %v, want sync", data["logger"])
	}
	if data["profile"] != "DE" {
		t.Errorf("profile = %v, want DE", data["profile"])
	}
	if data["key"] != "alpha-report" {
		t.Errorf("key = %v, want alpha-report", data["key"])
	}
}

func TestLogger_ErrorWithErr(t *testing.T) {
	var buf bytes.Buffer
	logger := New("conn").WithOutput(&buf)

	logger.ErrorWithErr("socket closed", errors.New("broken pipe"))

	out := buf.String()
	if !strings.Contains(out, "socket closed") {
		t.Errorf("output missing message: %q", out)
	}
	if !strings.Contains(out, "broken pipe") {
		t.Errorf("output missing error: %q", out)
	}
}

func TestLogger_CloneIsolation(t *testing.T) {
	var buf bytes.Buffer
	base := New("base").WithOutput(&buf).WithFormatter(NewJSONFormatter())
	child := base.WithField("panel", "bids")

	base.Info("base message")

	var data map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := data["panel"]; ok {
		t.Error("child field leaked into base logger")
	}

	buf.Reset()
	child.Info("child message")
	if !strings.Contains(buf.String(), "bids") {
		t.Errorf("child output missing field: %q", buf.String())
	}
}

func TestTextFormatter_SortedFields(t *testing.T) {
	entry := NewEntry(LevelInfo, "m")
	entry.Fields["zeta"] = 1
	entry.Fields["alpha"] = 2

	out, err := NewTextFormatter().Format(entry)
	if err != nil {
		t.Fatalf("Format() error: %v", err)
	}
	s := string(out)
	if strings.Index(s, "alpha") > strings.Index(s, "zeta") {
		t.Errorf("fields not sorted: %q", s)
	}
}

func TestNewLogger_Defaults(t *testing.T) {
	logger := NewLogger(DefaultLoggerConfig("cli"))

	if logger.GetLevel() != LevelInfo {
		t.Errorf("level = %v, want info", logger.GetLevel())
	}
	if !logger.IsLevelEnabled(LevelWarn) {
		t.Error("warn should be enabled at default level")
	}
	if logger.IsLevelEnabled(LevelDebug) {
		t.Error("debug should be disabled at default level")
	}
}
