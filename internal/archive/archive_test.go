package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shadowmode/shadowctl/internal/stream"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(Config{
		Path:          filepath.Join(t.TempDir(), "test.db"),
		BatchSize:     4,
		FlushInterval: 50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func line(i int, level string) stream.Message {
	return stream.Message{
		Timestamp: time.Date(2026, 3, 1, 12, 0, i, 0, time.UTC),
		Level:     level,
		Logger:    "bidder.engine",
		Text:      "bid decision",
	}
}

func TestArchive_SinkPersistsLines(t *testing.T) {
	a := openTestArchive(t)
	sink := a.Sink()

	for i := 0; i < 10; i++ {
		sink(line(i, "INFO"))
	}
	if err := a.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	n, err := a.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 10 {
		t.Errorf("Count() = %d, want 10", n)
	}
}

func TestArchive_QueryFiltersByLevel(t *testing.T) {
	a := openTestArchive(t)
	sink := a.Sink()

	sink(line(1, "INFO"))
	sink(line(2, "ERROR"))
	sink(line(3, "ERROR"))
	a.Flush(context.Background())

	lines, err := a.Query(context.Background(), Filter{Level: "ERROR"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Query(ERROR) returned %d lines, want 2", len(lines))
	}
	for _, l := range lines {
		if l.Level != "ERROR" {
			t.Errorf("line level = %q, want ERROR", l.Level)
		}
	}
}

func TestArchive_QueryNewestFirstWithLimit(t *testing.T) {
	a := openTestArchive(t)
	sink := a.Sink()

	for i := 0; i < 5; i++ {
		sink(line(i, "INFO"))
	}
	a.Flush(context.Background())

	lines, err := a.Query(context.Background(), Filter{Limit: 2})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("Query(limit=2) returned %d lines", len(lines))
	}
	if !lines[0].Timestamp.After(lines[1].Timestamp) {
		t.Errorf("lines not newest first: %v then %v", lines[0].Timestamp, lines[1].Timestamp)
	}
}

func TestArchive_QuerySubstring(t *testing.T) {
	a := openTestArchive(t)
	sink := a.Sink()

	sink(stream.Message{Timestamp: time.Now().UTC(), Level: "INFO", Logger: "api", Text: "profile selected"})
	sink(stream.Message{Timestamp: time.Now().UTC(), Level: "INFO", Logger: "api", Text: "bid raised"})
	a.Flush(context.Background())

	lines, err := a.Query(context.Background(), Filter{Query: "profile"})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(lines) != 1 || lines[0].Text != "profile selected" {
		t.Errorf("Query(profile) = %+v, want single 'profile selected' line", lines)
	}
}

func TestArchive_BatchThresholdFlushes(t *testing.T) {
	a := openTestArchive(t)
	sink := a.Sink()

	// BatchSize is 4, so this triggers a flush without calling Flush
	for i := 0; i < 4; i++ {
		sink(line(i, "INFO"))
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if n, _ := a.Count(context.Background()); n == 4 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	n, _ := a.Count(context.Background())
	t.Errorf("Count() = %d after batch threshold, want 4", n)
}

func TestArchive_Prune(t *testing.T) {
	a := openTestArchive(t)
	sink := a.Sink()

	old := stream.Message{Timestamp: time.Now().Add(-48 * time.Hour), Level: "INFO", Logger: "api", Text: "old"}
	fresh := stream.Message{Timestamp: time.Now(), Level: "INFO", Logger: "api", Text: "fresh"}
	sink(old)
	sink(fresh)
	a.Flush(context.Background())

	removed, err := a.Prune(context.Background(), 24*time.Hour)
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("Prune() removed %d, want 1", removed)
	}

	n, _ := a.Count(context.Background())
	if n != 1 {
		t.Errorf("Count() = %d after prune, want 1", n)
	}
}

func TestArchive_CloseFlushesPending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "close.db")
	a, err := Open(Config{Path: path, BatchSize: 100, FlushInterval: time.Hour})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	sink := a.Sink()
	sink(line(1, "WARN"))
	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	re, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer re.Close()

	n, err := re.Count(context.Background())
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d after Close, want pending line flushed", n)
	}
}
