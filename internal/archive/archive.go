// ============================================================================
// shadowctl - Shadow Mode PPC Console
// ============================================================================
//
// Package:     archive
// Description: SQLite-backed persistence for streamed log lines. Lines
//              are collected in batches by a background writer so the
//              live stream never blocks on disk.
// License:     MIT
// ============================================================================

package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/shadowmode/shadowctl/internal/stream"
)

// Filter defines criteria for querying archived lines
type Filter struct {
	Level     string
	Logger    string
	Query     string
	StartTime time.Time
	EndTime   time.Time
	Limit     int
	Offset    int
}

// Config holds archive settings
type Config struct {
	Path          string
	BatchSize     int
	FlushInterval time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Path:          "./data/shadowctl.db",
		BatchSize:     64,
		FlushInterval: 2 * time.Second,
	}
}

// Archive persists streamed log lines to SQLite
type Archive struct {
	db *sql.DB

	mu      sync.Mutex
	pending []stream.Message

	batchSize int
	flushCh   chan struct{}
	stop      chan struct{}
	loopDone  chan struct{}
	closeOnce sync.Once
}

// Open creates or opens the archive database at cfg.Path
func Open(cfg Config) (*Archive, error) {
	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultConfig().FlushInterval
	}

	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	a := &Archive{
		db:        db,
		batchSize: cfg.BatchSize,
		flushCh:   make(chan struct{}, 1),
		stop:      make(chan struct{}),
		loopDone:  make(chan struct{}),
	}

	if err := a.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	go a.flushLoop(cfg.FlushInterval)

	return a, nil
}

func (a *Archive) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS log_lines (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		level TEXT NOT NULL,
		logger TEXT NOT NULL,
		message TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_lines_timestamp ON log_lines(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_lines_level ON log_lines(level);
	CREATE INDEX IF NOT EXISTS idx_lines_logger ON log_lines(logger);
	`

	_, err := a.db.Exec(schema)
	return err
}

// Sink returns a stream sink that enqueues every retained line for
// batched writing. Safe to register on a live buffer.
func (a *Archive) Sink() stream.Sink {
	return func(msg stream.Message) {
		a.mu.Lock()
		a.pending = append(a.pending, msg)
		n := len(a.pending)
		a.mu.Unlock()

		if n >= a.batchSize {
			select {
			case a.flushCh <- struct{}{}:
			default:
			}
		}
	}
}

// flushLoop writes pending batches on interval or when the batch
// threshold signals.
func (a *Archive) flushLoop(interval time.Duration) {
	defer close(a.loopDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-a.stop:
			a.flush(context.Background())
			return
		case <-ticker.C:
			a.flush(context.Background())
		case <-a.flushCh:
			a.flush(context.Background())
		}
	}
}

// flush writes all pending lines in one transaction
func (a *Archive) flush(ctx context.Context) error {
	a.mu.Lock()
	if len(a.pending) == 0 {
		a.mu.Unlock()
		return nil
	}
	batch := a.pending
	a.pending = nil
	a.mu.Unlock()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO log_lines (timestamp, level, logger, message)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, msg := range batch {
		if _, err := stmt.ExecContext(ctx, msg.Timestamp, msg.Level, msg.Logger, msg.Text); err != nil {
			return fmt.Errorf("failed to insert line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Query retrieves archived lines matching the filter, newest first
func (a *Archive) Query(ctx context.Context, filter Filter) ([]stream.Message, error) {
	query := `SELECT timestamp, level, logger, message FROM log_lines WHERE 1=1`
	var args []interface{}

	if filter.Level != "" {
		query += " AND level = ?"
		args = append(args, filter.Level)
	}
	if filter.Logger != "" {
		query += " AND logger = ?"
		args = append(args, filter.Logger)
	}
	if filter.Query != "" {
		query += " AND message LIKE ?"
		args = append(args, "%"+filter.Query+"%")
	}
	if !filter.StartTime.IsZero() {
		query += " AND timestamp >= ?"
		args = append(args, filter.StartTime)
	}
	if !filter.EndTime.IsZero() {
		query += " AND timestamp <= ?"
		args = append(args, filter.EndTime)
	}

	query += " ORDER BY timestamp DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query lines: %w", err)
	}
	defer rows.Close()

	var lines []stream.Message
	for rows.Next() {
		var msg stream.Message
		if err := rows.Scan(&msg.Timestamp, &msg.Level, &msg.Logger, &msg.Text); err != nil {
			return nil, fmt.Errorf("failed to scan line: %w", err)
		}
		lines = append(lines, msg)
	}

	return lines, rows.Err()
}

// Count returns the number of archived lines
func (a *Archive) Count(ctx context.Context) (int64, error) {
	var n int64
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM log_lines`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count lines: %w", err)
	}
	return n, nil
}

// Prune deletes lines older than the given age and returns the number
// removed.
func (a *Archive) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res, err := a.db.ExecContext(ctx, `DELETE FROM log_lines WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune lines: %w", err)
	}
	return res.RowsAffected()
}

// Flush forces any pending batch to disk
func (a *Archive) Flush(ctx context.Context) error {
	return a.flush(ctx)
}

// Close flushes pending lines and closes the database
func (a *Archive) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.stop)
		<-a.loopDone
		err = a.db.Close()
	})
	return err
}
