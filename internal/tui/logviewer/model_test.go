// ============================================================================
// shadowctl - Shadow Mode PPC Console
// ============================================================================
//
// Package:     logviewer
// Description: Tests for the live log view key handling and scroll margin
// License:     MIT
// ============================================================================

package logviewer

import (
	"context"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/shadowmode/shadowctl/internal/stream"
	"github.com/shadowmode/shadowctl/pkg/core/logging"
)

type staticTokens struct{}

func (staticTokens) WSToken(ctx context.Context) (string, error) { return "t", nil }
func (staticTokens) WSURL(token string) (string, error)          { return "ws://localhost/ws", nil }

func newTestModel(t *testing.T, scrollMargin int) Model {
	t.Helper()
	logger := logging.New("test").WithOutput(io.Discard)
	buffer := stream.NewBuffer(100, 50, logger)
	manager := stream.NewManager(staticTokens{}, buffer, 0, logger)
	return New(buffer, manager, scrollMargin)
}

func TestSpaceKeyTogglesPause(t *testing.T) {
	m := newTestModel(t, 0)

	// A bare space arrives as the space key type, not as runes
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(Model)
	if !m.buffer.Paused() {
		t.Error("space should pause the stream")
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace})
	m = next.(Model)
	if m.buffer.Paused() {
		t.Error("second space should resume the stream")
	}
}

func TestPKeyTogglesPause(t *testing.T) {
	m := newTestModel(t, 0)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	m = next.(Model)
	if !m.buffer.Paused() {
		t.Error("p should pause the stream")
	}
}

func TestScrollMarginReachesScroller(t *testing.T) {
	m := newTestModel(t, 10)

	// 9 lines from the bottom, inside the margin: keep following
	m.scroller.Observe(0, 39, 30)
	if !m.scroller.ShouldFollow() {
		t.Error("ShouldFollow() = false inside a 10-line margin")
	}

	// 11 lines from the bottom, outside the margin: stop following
	m.scroller.Observe(0, 41, 30)
	if m.scroller.ShouldFollow() {
		t.Error("ShouldFollow() = true outside a 10-line margin")
	}
}

func TestZeroScrollMarginSelectsDefault(t *testing.T) {
	m := newTestModel(t, 0)

	// Just inside the default margin of 40
	m.scroller.Observe(0, 139, 100)
	if !m.scroller.ShouldFollow() {
		t.Error("ShouldFollow() = false inside the default margin")
	}

	m.scroller.Observe(0, 141, 100)
	if m.scroller.ShouldFollow() {
		t.Error("ShouldFollow() = true outside the default margin")
	}
}
