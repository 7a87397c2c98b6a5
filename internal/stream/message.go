// ============================================================================
// shadowctl - Shadow Mode PPC Console
// ============================================================================
//
// Package:     stream
// Description: Stream message parsing. One websocket frame carries one
//              JSON-encoded log line from the backend.
// License:     MIT
// ============================================================================

package stream

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Log level labels as the backend emits them
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Message is one unit of streamed information: a log line or a bid
// decision narrated by the optimizer. Messages are never deduplicated;
// two identical frames are two entries.
type Message struct {
	Timestamp time.Time
	Level     string
	Logger    string
	Text      string
}

// wireFrame matches the backend's frame shape
type wireFrame struct {
	Timestamp  string `json:"timestamp"`
	Level      string `json:"level"`
	LoggerName string `json:"logger_name"`
	Message    string `json:"message"`
}

// ParseFrame decodes one websocket frame into a Message. Callers drop
// the frame on error; a malformed frame must never reach the buffer.
func ParseFrame(raw []byte) (Message, error) {
	var frame wireFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return Message{}, fmt.Errorf("decode frame: %w", err)
	}
	if frame.Message == "" && frame.LoggerName == "" {
		return Message{}, fmt.Errorf("frame has no content")
	}

	ts, err := parseBackendTimestamp(frame.Timestamp)
	if err != nil {
		// A bad timestamp alone does not discard the line
		ts = time.Now().UTC()
	}

	return Message{
		Timestamp: ts,
		Level:     NormalizeLevel(frame.Level),
		Logger:    frame.LoggerName,
		Text:      frame.Message,
	}, nil
}

// NormalizeLevel maps backend level spellings onto the fixed label set
func NormalizeLevel(level string) string {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG", "TRACE":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR", "CRITICAL", "FATAL":
		return LevelError
	default:
		return LevelInfo
	}
}

// parseBackendTimestamp parses the backend's ISO-ish timestamps. The
// backend omits the timezone suffix on naive timestamps; those are
// assumed UTC and a "Z" is appended before parsing. If the backend ever
// starts emitting local offsets this assumption must be revisited.
func parseBackendTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	if !hasZoneSuffix(value) {
		value += "Z"
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999Z07:00",
		"2006-01-02 15:04:05Z07:00",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp: %s", value)
}

// hasZoneSuffix reports whether an ISO-ish timestamp already carries a
// timezone: a trailing Z or a +hh:mm / -hh:mm offset after the time part.
func hasZoneSuffix(value string) bool {
	if strings.HasSuffix(value, "Z") || strings.HasSuffix(value, "z") {
		return true
	}
	sep := strings.IndexAny(value, "T ")
	if sep < 0 {
		return false
	}
	timePart := value[sep+1:]
	return strings.ContainsAny(timePart, "+-")
}
