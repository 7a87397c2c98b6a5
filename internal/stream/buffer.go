// ============================================================================
// shadowctl - Shadow Mode PPC Console
// ============================================================================
//
// Package:     stream
// Description: Bounded, order-preserving retention buffer with a pause
//              gate. Exclusively owned by one connection's ingest path;
//              all mutation goes through Ingest and SetPaused.
// License:     MIT
// ============================================================================

package stream

import (
	"sync"

	"github.com/shadowmode/shadowctl/pkg/core/logging"
)

// Default retention bounds. Trimming happens in bulk down to the lower
// watermark so a busy stream does not trim on every append.
const (
	DefaultMaxRetained = 2000
	DefaultTrimTo      = 1500
)

// Sink receives every message that enters retained history, in order.
// Used by the local archive.
type Sink func(Message)

// Buffer retains streamed messages in arrival order up to a cap
type Buffer struct {
	mu        sync.Mutex
	msgs      []Message
	side      []Message
	paused    bool
	max       int
	trimTo    int
	malformed int
	sinks     []Sink
	subs      []chan struct{}
	logger    *logging.Logger
}

// NewBuffer creates a retention buffer with the given bounds. A zero or
// negative bound selects the default; trimTo is clamped to max.
func NewBuffer(max, trimTo int, logger *logging.Logger) *Buffer {
	if max <= 0 {
		max = DefaultMaxRetained
	}
	if trimTo <= 0 {
		trimTo = DefaultTrimTo
	}
	if trimTo > max {
		trimTo = max
	}
	if logger == nil {
		logger = logging.New("buffer")
	}
	return &Buffer{
		max:    max,
		trimTo: trimTo,
		logger: logger,
	}
}

// Ingest parses a raw frame and appends it. Malformed frames are
// counted and dropped; they never disturb buffer state.
func (b *Buffer) Ingest(raw []byte) {
	msg, err := ParseFrame(raw)
	if err != nil {
		b.mu.Lock()
		b.malformed++
		b.mu.Unlock()
		b.logger.Debug("dropped malformed frame", logging.Fields{"error": err.Error()})
		return
	}
	b.Append(msg)
}

// Append adds an already-parsed message, honoring the pause gate
func (b *Buffer) Append(msg Message) {
	b.mu.Lock()
	if b.paused {
		b.side = append(b.side, msg)
		b.mu.Unlock()
		return
	}
	b.msgs = append(b.msgs, msg)
	b.enforceCapLocked()
	sinks := b.sinks
	b.mu.Unlock()

	for _, sink := range sinks {
		sink(msg)
	}
	b.notify()
}

// SetPaused toggles the pause gate. Unpausing flushes the side buffer
// into retained history in arrival order, then re-enforces the cap.
func (b *Buffer) SetPaused(paused bool) {
	b.mu.Lock()
	if b.paused == paused {
		b.mu.Unlock()
		return
	}
	b.paused = paused

	var flushed []Message
	if !paused && len(b.side) > 0 {
		flushed = b.side
		b.msgs = append(b.msgs, flushed...)
		b.side = nil
		b.enforceCapLocked()
	}
	sinks := b.sinks
	b.mu.Unlock()

	for _, msg := range flushed {
		for _, sink := range sinks {
			sink(msg)
		}
	}
	if len(flushed) > 0 {
		b.notify()
	}
}

// Paused returns the current pause state
func (b *Buffer) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

// Snapshot returns a copy of the retained history in arrival order
func (b *Buffer) Snapshot() []Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Message, len(b.msgs))
	copy(out, b.msgs)
	return out
}

// Len returns the number of retained messages
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.msgs)
}

// PendingWhilePaused returns how many messages wait in the side buffer
func (b *Buffer) PendingWhilePaused() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.side)
}

// Malformed returns how many frames were dropped as unparseable
func (b *Buffer) Malformed() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.malformed
}

// Clear empties retained history (the side buffer is kept; a paused
// user clearing the screen still wants the backlog on resume)
func (b *Buffer) Clear() {
	b.mu.Lock()
	b.msgs = nil
	b.mu.Unlock()
	b.notify()
}

// AddSink registers a sink for every message entering retention.
// Register sinks before the stream starts; sinks run on the ingest path.
func (b *Buffer) AddSink(sink Sink) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sinks = append(b.sinks, sink)
}

// Subscribe returns a channel that receives a signal whenever retained
// history changes. Signals are coalesced; a slow consumer sees at most
// one pending signal.
func (b *Buffer) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)
	b.mu.Lock()
	b.subs = append(b.subs, ch)
	b.mu.Unlock()
	return ch
}

// enforceCapLocked trims oldest entries in one operation once the cap
// is exceeded. Caller holds b.mu.
func (b *Buffer) enforceCapLocked() {
	if len(b.msgs) <= b.max {
		return
	}
	excess := len(b.msgs) - b.trimTo
	b.msgs = append(b.msgs[:0:0], b.msgs[excess:]...)
}

func (b *Buffer) notify() {
	b.mu.Lock()
	subs := b.subs
	b.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
