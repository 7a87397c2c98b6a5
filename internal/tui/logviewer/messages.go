// ============================================================================
// shadowctl - Shadow Mode PPC Console
// ============================================================================
//
// Package:     logviewer
// Description: Message types for async operations in the live log view
// License:     MIT
// ============================================================================

package logviewer

import (
	"github.com/shadowmode/shadowctl/internal/stream"
)

// Message types for tea.Cmd async operations

// bufferChangedMsg is sent when new lines entered retained history
type bufferChangedMsg struct{}

// connStateMsg carries a connection state transition
type connStateMsg struct {
	state stream.State
}

// streamStoppedMsg is sent when the channel bridges shut down
type streamStoppedMsg struct{}
