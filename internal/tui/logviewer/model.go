// ============================================================================
// shadowctl - Shadow Mode PPC Console
// ============================================================================
//
// Package:     logviewer
// Description: Main Bubbletea model for the live log view. Renders the
//              retained stream history with level and substring
//              filtering, pause, and autoscroll.
// License:     MIT
// ============================================================================

package logviewer

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shadowmode/shadowctl/internal/stream"
)

// Version is set during build
var Version = "0.1.0"

// Model is the main Bubbletea model for the log view
type Model struct {
	// State
	width     int
	height    int
	ready     bool
	searching bool
	connState stream.State

	// Components
	viewport    viewport.Model
	spinner     spinner.Model
	searchInput textinput.Model

	// Stream state
	buffer   *stream.Buffer
	manager  *stream.Manager
	criteria stream.Criteria
	scroller *stream.Autoscroller
	visible  []stream.Message

	// Channel bridges into the tea loop
	bufferCh <-chan struct{}
	stateCh  <-chan stream.State
}

// New creates a log view over a running buffer and connection manager.
// scrollMargin is the distance from the bottom (in lines) inside which
// the view keeps following new arrivals; zero selects the default.
func New(buffer *stream.Buffer, manager *stream.Manager, scrollMargin int) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	search := textinput.New()
	search.Placeholder = "substring filter"
	search.CharLimit = 120
	search.Width = 32

	return Model{
		spinner:     sp,
		searchInput: search,
		buffer:      buffer,
		manager:     manager,
		criteria:    stream.Criteria{Level: stream.LevelAll},
		scroller:    stream.NewAutoscroller(scrollMargin),
		connState:   manager.State(),
		bufferCh:    buffer.Subscribe(),
		stateCh:     manager.Subscribe(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForBuffer(m.bufferCh),
		waitForState(m.stateCh),
		tea.EnterAltScreen,
	)
}

// waitForBuffer blocks until the buffer signals new retained lines
func waitForBuffer(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return streamStoppedMsg{}
		}
		return bufferChangedMsg{}
	}
}

// waitForState blocks until the connection changes state
func waitForState(ch <-chan stream.State) tea.Cmd {
	return func() tea.Msg {
		state, ok := <-ch
		if !ok {
			return streamStoppedMsg{}
		}
		return connStateMsg{state: state}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Title + filter bar
		footerHeight := 4 // Status bar + help
		viewportHeight := msg.Height - headerHeight - footerHeight

		if !m.ready {
			m.viewport = viewport.New(msg.Width-4, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width - 4
			m.viewport.Height = viewportHeight
		}
		m.refreshContent()

	case spinner.TickMsg:
		if m.connState == stream.StateConnecting || m.connState == stream.StateRetryWait {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			cmds = append(cmds, m.spinner.Tick)
		}

	case bufferChangedMsg:
		m.refreshContent()
		cmds = append(cmds, waitForBuffer(m.bufferCh))

	case connStateMsg:
		m.connState = msg.state
		cmds = append(cmds, waitForState(m.stateCh))

	case streamStoppedMsg:
		return m, tea.Quit
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The search prompt swallows all keys while open
	if m.searching {
		switch msg.Type {
		case tea.KeyEnter:
			m.searching = false
			m.criteria.Query = m.searchInput.Value()
			m.searchInput.Blur()
			m.refreshContent()
			return m, nil
		case tea.KeyEsc:
			m.searching = false
			m.searchInput.SetValue(m.criteria.Query)
			m.searchInput.Blur()
			return m, nil
		case tea.KeyCtrlC:
			return m, tea.Quit
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	// The terminal reports a bare space as its own key type, not a rune
	case tea.KeySpace:
		m.buffer.SetPaused(!m.buffer.Paused())
		return m, nil

	case tea.KeyRunes:
		switch string(msg.Runes) {
		// Level filter - number keys select a single level
		case "1":
			m.toggleLevel(stream.LevelDebug)
			return m, nil
		case "2":
			m.toggleLevel(stream.LevelInfo)
			return m, nil
		case "3":
			m.toggleLevel(stream.LevelWarn)
			return m, nil
		case "4":
			m.toggleLevel(stream.LevelError)
			return m, nil
		case "0":
			m.criteria.Level = stream.LevelAll
			m.refreshContent()
			return m, nil

		// Substring search
		case "/":
			m.searching = true
			m.searchInput.SetValue(m.criteria.Query)
			m.searchInput.Focus()
			return m, textinput.Blink

		// Pause/Resume the stream
		case "p":
			m.buffer.SetPaused(!m.buffer.Paused())
			return m, nil

		// Retry after a fatal auth rejection
		case "r":
			if m.connState == stream.StateAuthFailed {
				m.manager.Start()
			}
			return m, nil

		// Auto-scroll toggle
		case "a":
			follow := !m.scroller.ShouldFollow()
			m.scroller.SetFollow(follow)
			if follow {
				m.viewport.GotoBottom()
			}
			return m, nil

		// Clear retained history
		case "c":
			m.buffer.Clear()
			m.refreshContent()
			return m, nil

		// Go to top
		case "g":
			m.viewport.GotoTop()
			m.scroller.SetFollow(false)
			return m, nil

		// Go to bottom
		case "G":
			m.viewport.GotoBottom()
			m.scroller.SetFollow(true)
			return m, nil
		}

	case tea.KeyPgUp:
		m.viewport.ViewUp()
		m.observeScroll()
		return m, nil

	case tea.KeyPgDown:
		m.viewport.ViewDown()
		m.observeScroll()
		return m, nil

	case tea.KeyUp:
		m.viewport.LineUp(1)
		m.observeScroll()
		return m, nil

	case tea.KeyDown:
		m.viewport.LineDown(1)
		m.observeScroll()
		return m, nil
	}

	return m, nil
}

// toggleLevel selects a single level, or back to all when re-pressed
func (m *Model) toggleLevel(level string) {
	if m.criteria.Level == level {
		m.criteria.Level = stream.LevelAll
	} else {
		m.criteria.Level = level
	}
	m.refreshContent()
}

// observeScroll reports the viewport position after a manual scroll so
// the follow flag flips based on distance from the bottom.
func (m *Model) observeScroll() {
	m.scroller.Observe(m.viewport.YOffset, m.viewport.TotalLineCount(), m.viewport.Height)
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Starting log view..."
	}

	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderFilterBar())
	b.WriteString("\n")
	b.WriteString(m.renderLogArea())
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")
	b.WriteString(m.renderHelpBar())

	return b.String()
}

// renderHeader renders the title with the connection badge
func (m Model) renderHeader() string {
	logo := LogoStyle.Render(Logo)

	var status string
	switch m.connState {
	case stream.StateOpen:
		status = StatusLiveStyle.Render("● live")
	case stream.StateConnecting:
		status = StatusRetryStyle.Render(m.spinner.View() + " connecting")
	case stream.StateRetryWait:
		status = StatusRetryStyle.Render(m.spinner.View() + " reconnecting")
	case stream.StateAuthFailed:
		status = StatusFatalStyle.Render("✗ auth required (r to retry)")
	default:
		status = HelpDescStyle.Render("○ idle")
	}

	pauseStatus := ""
	if m.buffer.Paused() {
		pauseStatus = "  " + StatusPausedStyle.Render(fmt.Sprintf("PAUSED (+%d pending)", m.buffer.PendingWhilePaused()))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Center,
		logo,
		strings.Repeat(" ", 3),
		status,
		pauseStatus,
	)

	return TitlePanelStyle.Width(m.width - 4).Render(header)
}

// renderFilterBar renders the level filter and search state
func (m Model) renderFilterBar() string {
	levels := []string{
		fmt.Sprintf("1:%s", RenderFilterStatus("DEBUG", m.levelActive(stream.LevelDebug))),
		fmt.Sprintf("2:%s", RenderFilterStatus("INFO", m.levelActive(stream.LevelInfo))),
		fmt.Sprintf("3:%s", RenderFilterStatus("WARN", m.levelActive(stream.LevelWarn))),
		fmt.Sprintf("4:%s", RenderFilterStatus("ERROR", m.levelActive(stream.LevelError))),
	}

	filterStr := strings.Join(levels, "  ")
	countStr := HelpDescStyle.Render(fmt.Sprintf("[%d/%d lines]", len(m.visible), m.buffer.Len()))

	var searchStr string
	if m.searching {
		searchStr = "  /" + m.searchInput.View()
	} else if m.criteria.Query != "" {
		searchStr = "  " + FilterActiveStyle.Render("/"+m.criteria.Query)
	}

	scrollStr := ""
	if m.scroller.ShouldFollow() {
		scrollStr = "  " + FilterActiveStyle.Render("[follow]")
	}

	return FilterBarStyle.Width(m.width - 2).Render(filterStr + "  " + countStr + searchStr + scrollStr)
}

func (m Model) levelActive(level string) bool {
	return m.criteria.Level == stream.LevelAll || m.criteria.Level == level
}

// renderLogArea renders the main log viewport
func (m Model) renderLogArea() string {
	style := LogPanelStyle.Width(m.width - 2).Height(m.viewport.Height + 2)
	return style.Render(m.viewport.View())
}

// renderStatusBar renders the status bar
func (m Model) renderStatusBar() string {
	leftPart := HelpDescStyle.Render(fmt.Sprintf("retained: %d", m.buffer.Len()))
	if n := m.buffer.Malformed(); n > 0 {
		leftPart += HelpDescStyle.Render(fmt.Sprintf("  dropped: %d", n))
	}

	centerPart := HelpDescStyle.Render("v" + Version)

	var rightPart string
	switch m.connState {
	case stream.StateOpen:
		rightPart = StatusLiveStyle.Render("stream open")
	case stream.StateAuthFailed:
		rightPart = StatusFatalStyle.Render("authentication rejected")
	default:
		rightPart = StatusRetryStyle.Render(m.connState.String())
	}

	leftLen := lipgloss.Width(leftPart)
	centerLen := lipgloss.Width(centerPart)
	rightLen := lipgloss.Width(rightPart)
	availableSpace := m.width - leftLen - centerLen - rightLen - 4
	if availableSpace < 2 {
		availableSpace = 2
	}
	leftPadding := availableSpace / 2
	rightPadding := availableSpace - leftPadding

	content := leftPart + strings.Repeat(" ", leftPadding) + centerPart + strings.Repeat(" ", rightPadding) + rightPart

	return StatusBarStyle.Width(m.width - 2).Render(content)
}

// renderHelpBar renders the help shortcuts bar
func (m Model) renderHelpBar() string {
	items := []string{
		RenderKeyHint("1-4", "Level"),
		RenderKeyHint("0", "All"),
		RenderKeyHint("/", "Search"),
		RenderKeyHint("p", "Pause"),
		RenderKeyHint("a", "Follow"),
		RenderKeyHint("g/G", "Top/Bottom"),
		RenderKeyHint("c", "Clear"),
		RenderKeyHint("Ctrl+C", "Quit"),
	}

	return HelpStyle.Render(strings.Join(items, "  "))
}

// refreshContent re-renders the viewport from the current buffer
// snapshot through the presentation filter.
func (m *Model) refreshContent() {
	m.visible = stream.Visible(m.buffer.Snapshot(), m.criteria)

	var content strings.Builder
	for _, msg := range m.visible {
		timeStr := LogTimestampStyle.Render(msg.Timestamp.Format("15:04:05"))
		levelStr := RenderLevelBadge(msg.Level)
		loggerStr := LogLoggerStyle.Render(fmt.Sprintf("[%-14s]", truncateString(msg.Logger, 14)))
		msgStr := LogMessageStyle.Render(msg.Text)

		content.WriteString(fmt.Sprintf("%s %s %s %s\n", timeStr, levelStr, loggerStr, msgStr))
	}

	m.viewport.SetContent(content.String())
	if m.scroller.ShouldFollow() {
		m.viewport.GotoBottom()
	}
}

// truncateString truncates a string to max length
func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "~"
}

// Run starts the log view and blocks until exit
func Run(buffer *stream.Buffer, manager *stream.Manager, scrollMargin int) error {
	p := tea.NewProgram(New(buffer, manager, scrollMargin), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
