package stream

import (
	"testing"
	"time"
)

func TestParseFrame(t *testing.T) {
	raw := []byte(`{"timestamp":"2026-03-01T09:30:00Z","level":"INFO","logger_name":"bid.optimizer","message":"raised bid for kw-17"}`)

	msg, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame() error: %v", err)
	}
	if msg.Level != LevelInfo {
		t.Errorf("Level = %v, want INFO", msg.Level)
	}
	if msg.Logger != "bid.optimizer" {
		t.Errorf("Logger = %v, want bid.optimizer", msg.Logger)
	}
	if msg.Text != "raised bid for kw-17" {
		t.Errorf("Text = %v", msg.Text)
	}
	want := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	if !msg.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", msg.Timestamp, want)
	}
}

// The backend emits naive timestamps without a timezone suffix; they
// are assumed UTC. This assumption is deliberate and load-bearing.
func TestParseFrame_NaiveTimestampAssumedUTC(t *testing.T) {
	raw := []byte(`{"timestamp":"2026-03-01T09:30:00.500000","level":"DEBUG","logger_name":"fsm","message":"tick"}`)

	msg, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame() error: %v", err)
	}
	want := time.Date(2026, 3, 1, 9, 30, 0, 500000000, time.UTC)
	if !msg.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v (naive input must parse as UTC)", msg.Timestamp, want)
	}
}

func TestParseFrame_ExplicitOffsetPreserved(t *testing.T) {
	raw := []byte(`{"timestamp":"2026-03-01T10:30:00+01:00","level":"INFO","logger_name":"fsm","message":"tick"}`)

	msg, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame() error: %v", err)
	}
	want := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	if !msg.Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", msg.Timestamp, want)
	}
}

func TestParseFrame_Malformed(t *testing.T) {
	cases := []string{
		"not json at all",
		`{"timestamp": 42}`,
		`{}`,
		"",
	}
	for _, raw := range cases {
		if _, err := ParseFrame([]byte(raw)); err == nil {
			t.Errorf("ParseFrame(%q) should fail", raw)
		}
	}
}

func TestParseFrame_BadTimestampKeepsLine(t *testing.T) {
	raw := []byte(`{"timestamp":"yesterday-ish","level":"WARN","logger_name":"inventory","message":"brake engaged"}`)

	msg, err := ParseFrame(raw)
	if err != nil {
		t.Fatalf("ParseFrame() error: %v (bad timestamp must not drop the line)", err)
	}
	if msg.Timestamp.IsZero() {
		t.Error("Timestamp should be substituted, not zero")
	}
	if msg.Text != "brake engaged" {
		t.Errorf("Text = %v", msg.Text)
	}
}

func TestNormalizeLevel(t *testing.T) {
	cases := map[string]string{
		"INFO":     LevelInfo,
		"info":     LevelInfo,
		"WARNING":  LevelWarn,
		"WARN":     LevelWarn,
		"CRITICAL": LevelError,
		"TRACE":    LevelDebug,
		"":         LevelInfo,
		"whatever": LevelInfo,
	}
	for input, want := range cases {
		if got := NormalizeLevel(input); got != want {
			t.Errorf("NormalizeLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestHasZoneSuffix(t *testing.T) {
	cases := map[string]bool{
		"2026-03-01T09:30:00Z":      true,
		"2026-03-01T09:30:00+01:00": true,
		"2026-03-01T09:30:00-0500":  true,
		"2026-03-01T09:30:00":       false,
		"2026-03-01 09:30:00":       false,
	}
	for input, want := range cases {
		if got := hasZoneSuffix(input); got != want {
			t.Errorf("hasZoneSuffix(%q) = %v, want %v", input, got, want)
		}
	}
}
