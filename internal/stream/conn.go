// ============================================================================
// shadowctl - Shadow Mode PPC Console
// ============================================================================
//
// Package:     stream
// Description: Websocket connection manager for the live log stream.
//              Owns the socket lifecycle: token fetch, dial, read loop,
//              reconnect scheduling, and the fatal/retryable close
//              distinction.
// License:     MIT
// ============================================================================

package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/shadowmode/shadowctl/pkg/core/logging"
)

// State is the connection lifecycle state
type State int

const (
	// StateIdle means the manager is not running (before Start, after Stop)
	StateIdle State = iota

	// StateConnecting means a token fetch or handshake is in progress
	StateConnecting

	// StateOpen means the socket is established and messages may arrive
	StateOpen

	// StateRetryWait means the socket closed for a transient reason and
	// a reconnect is scheduled
	StateRetryWait

	// StateAuthFailed means the backend rejected our token; no automatic
	// reconnect happens until an explicit Start
	StateAuthFailed
)

// String returns the state as a string
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateRetryWait:
		return "reconnecting"
	case StateAuthFailed:
		return "auth-failed"
	default:
		return "unknown"
	}
}

// CloseAuthRejected is the close code the backend sends when it rejects
// the websocket token.
const CloseAuthRejected = 4001

// DefaultReconnectDelay is the fixed delay between reconnect attempts
const DefaultReconnectDelay = 3 * time.Second

// TokenSource supplies a fresh token and the socket URL for each
// connection attempt. Implemented by api.Client.
type TokenSource interface {
	WSToken(ctx context.Context) (string, error)
	WSURL(token string) (string, error)
}

// Manager owns one live-stream connection and feeds the retention
// buffer. Safe for concurrent use; Start and Stop may be called from
// any goroutine.
type Manager struct {
	tokens TokenSource
	buffer *Buffer
	delay  time.Duration
	dialer *websocket.Dialer
	logger *logging.Logger

	mu     sync.Mutex
	state  State
	ws     *websocket.Conn
	timer  *time.Timer
	cancel context.CancelFunc
	gen    int
	subs   []chan State
}

// NewManager creates a connection manager. delay <= 0 selects the
// default reconnect delay.
func NewManager(tokens TokenSource, buffer *Buffer, delay time.Duration, logger *logging.Logger) *Manager {
	if delay <= 0 {
		delay = DefaultReconnectDelay
	}
	if logger == nil {
		logger = logging.New("stream")
	}
	return &Manager{
		tokens: tokens,
		buffer: buffer,
		delay:  delay,
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger: logger,
	}
}

// Start begins the connect sequence. A no-op while already running;
// after an auth failure it restarts the whole sequence, which is the
// explicit user-triggered retry path.
func (m *Manager) Start() {
	m.mu.Lock()
	switch m.state {
	case StateConnecting, StateOpen, StateRetryWait:
		m.mu.Unlock()
		return
	}
	m.gen++
	gen := m.gen
	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.state = StateConnecting
	m.mu.Unlock()

	m.notifyState(StateConnecting)
	go m.connect(ctx, gen)
}

// Stop synchronously closes any open socket and cancels any pending
// reconnect timer. Required on teardown; a dangling timer or socket is
// a resource leak.
func (m *Manager) Stop() {
	m.mu.Lock()
	m.gen++
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.ws != nil {
		m.ws.Close()
		m.ws = nil
	}
	changed := m.state != StateIdle
	m.state = StateIdle
	m.mu.Unlock()

	if changed {
		m.notifyState(StateIdle)
	}
}

// State returns the current connection state
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe returns a channel receiving state transitions. Sends are
// non-blocking; a slow consumer may miss intermediate states and should
// treat each value as "current state", not an event log.
func (m *Manager) Subscribe() <-chan State {
	ch := make(chan State, 8)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// connect runs one full attempt: fresh token, dial, then read loop
func (m *Manager) connect(ctx context.Context, gen int) {
	token, err := m.tokens.WSToken(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.ErrorWithErr("token fetch failed, giving up until retried", err)
		m.transition(gen, StateAuthFailed)
		return
	}

	wsURL, err := m.tokens.WSURL(token)
	if err != nil {
		m.logger.ErrorWithErr("cannot build socket URL", err)
		m.transition(gen, StateAuthFailed)
		return
	}

	conn, resp, err := m.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			m.logger.Error("handshake rejected", logging.Fields{"status": resp.StatusCode})
			m.transition(gen, StateAuthFailed)
			return
		}
		m.logger.WarnWithErr("dial failed", err)
		m.scheduleReconnect(ctx, gen)
		return
	}

	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		conn.Close()
		return
	}
	m.ws = conn
	m.state = StateOpen
	m.mu.Unlock()

	m.notifyState(StateOpen)
	m.logger.Info("stream connected")
	m.readLoop(ctx, gen, conn)
}

// readLoop forwards frames to the buffer until the socket dies
func (m *Manager) readLoop(ctx context.Context, gen int, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err == nil {
			m.buffer.Ingest(data)
			continue
		}

		// Force-close rather than leave the socket half-open
		conn.Close()

		if ctx.Err() != nil {
			return
		}
		if closeErr, ok := err.(*websocket.CloseError); ok && closeErr.Code == CloseAuthRejected {
			m.logger.Error("backend rejected token, reconnect suspended")
			m.transition(gen, StateAuthFailed)
			return
		}
		m.logger.WarnWithErr("stream closed, scheduling reconnect", err)
		m.scheduleReconnect(ctx, gen)
		return
	}
}

// scheduleReconnect arms the fixed-delay retry timer. Every attempt
// starts over with a fresh token.
func (m *Manager) scheduleReconnect(ctx context.Context, gen int) {
	m.mu.Lock()
	if gen != m.gen || ctx.Err() != nil {
		m.mu.Unlock()
		return
	}
	m.ws = nil
	m.state = StateRetryWait
	m.timer = time.AfterFunc(m.delay, func() {
		m.mu.Lock()
		if gen != m.gen || ctx.Err() != nil {
			m.mu.Unlock()
			return
		}
		m.timer = nil
		m.state = StateConnecting
		m.mu.Unlock()

		m.notifyState(StateConnecting)
		m.connect(ctx, gen)
	})
	m.mu.Unlock()

	m.notifyState(StateRetryWait)
}

// transition moves to a terminal-ish state if this connection
// generation is still current.
func (m *Manager) transition(gen int, state State) {
	m.mu.Lock()
	if gen != m.gen {
		m.mu.Unlock()
		return
	}
	m.ws = nil
	m.state = state
	m.mu.Unlock()

	m.notifyState(state)
}

func (m *Manager) notifyState(state State) {
	m.mu.Lock()
	subs := m.subs
	m.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- state:
		default:
		}
	}
}
