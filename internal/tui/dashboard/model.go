// ============================================================================
// shadowctl - Shadow Mode PPC Console
// ============================================================================
//
// Package:     dashboard
// Description: Main Bubbletea model for the dashboard. Panels render
//              the latest polled snapshots: operating status, alpha
//              report, recent bid decisions, and the campaign listing.
// License:     MIT
// ============================================================================

package dashboard

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/shadowmode/shadowctl/internal/api"
	"github.com/shadowmode/shadowctl/internal/poll"
	"github.com/shadowmode/shadowctl/pkg/core/config"
)

// poll keys, one per panel
const (
	keyStatus    = "status"
	keyProfiles  = "profiles"
	keyAlpha     = "alpha"
	keyBids      = "bids"
	keyCampaigns = "campaigns"
)

// Backend is the control surface the dashboard drives
type Backend interface {
	api.SnapshotProvider
	SetShadowMode(ctx context.Context, enabled bool) error
	SelectProfile(ctx context.Context, id string) error
}

// ViewState represents the current view
type ViewState int

const (
	ViewMain ViewState = iota
	ViewHelp
)

// Model is the main Bubbletea model
type Model struct {
	// State
	viewState     ViewState
	width         int
	height        int
	selectedRow   int
	statusMessage string
	statusExpiry  time.Time

	// Components
	backend   Backend
	scheduler *poll.Scheduler
	intervals config.PollConfig
	spinner   spinner.Model

	// Latest snapshots
	status    *api.StatusSnapshot
	profiles  []api.Profile
	alpha     *api.AlphaReport
	bids      []api.BidDecision
	campaigns []api.Campaign
	stale     map[string]bool

	resultCh <-chan string
}

// Message types
type snapshotMsg struct{ key string }
type pollStoppedMsg struct{}
type statusClearMsg struct{}
type controlDoneMsg struct {
	action string
	err    error
}

// New creates a dashboard polling the backend on the configured
// intervals.
func New(backend Backend, scheduler *poll.Scheduler, intervals config.PollConfig) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	m := Model{
		backend:   backend,
		scheduler: scheduler,
		intervals: intervals,
		spinner:   s,
		stale:     make(map[string]bool),
		resultCh:  scheduler.Subscribe(),
	}
	m.scheduleAll()

	return m
}

// scheduleAll (re-)registers every panel query. Re-registering fires
// an immediate fetch, which is how forced refresh works.
func (m *Model) scheduleAll() {
	backend := m.backend
	m.scheduler.Schedule(keyStatus, func(ctx context.Context) (interface{}, error) {
		return backend.Status(ctx)
	}, m.intervals.StatusInterval.Duration)
	m.scheduler.Schedule(keyProfiles, func(ctx context.Context) (interface{}, error) {
		return backend.Profiles(ctx)
	}, m.intervals.ProfilesInterval.Duration)
	m.scheduler.Schedule(keyAlpha, func(ctx context.Context) (interface{}, error) {
		return backend.AlphaReport(ctx)
	}, m.intervals.AlphaInterval.Duration)
	m.scheduler.Schedule(keyBids, func(ctx context.Context) (interface{}, error) {
		return backend.RecentBids(ctx)
	}, m.intervals.BidsInterval.Duration)
	m.scheduler.Schedule(keyCampaigns, func(ctx context.Context) (interface{}, error) {
		return backend.Campaigns(ctx)
	}, m.intervals.CampaignsInterval.Duration)
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForSnapshot(m.resultCh),
		tea.EnterAltScreen,
	)
}

// waitForSnapshot blocks until a poll completes
func waitForSnapshot(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		key, ok := <-ch
		if !ok {
			return pollStoppedMsg{}
		}
		return snapshotMsg{key: key}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case snapshotMsg:
		m.applySnapshot(msg.key)
		return m, waitForSnapshot(m.resultCh)

	case pollStoppedMsg:
		return m, tea.Quit

	case controlDoneMsg:
		if msg.err != nil {
			m.setStatus("Error: " + msg.err.Error())
		} else {
			m.setStatus(msg.action)
			m.forceRefresh()
		}
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return statusClearMsg{}
		})

	case statusClearMsg:
		if time.Now().After(m.statusExpiry) {
			m.statusMessage = ""
		}
		return m, nil
	}

	return m, nil
}

// applySnapshot pulls the latest result for one key into the model
func (m *Model) applySnapshot(key string) {
	res, ok := m.scheduler.Latest(key)
	if !ok {
		return
	}
	m.stale[key] = res.Err != nil
	if res.Err != nil {
		return
	}

	switch key {
	case keyStatus:
		if v, ok := res.Value.(*api.StatusSnapshot); ok {
			m.status = v
		}
	case keyProfiles:
		if v, ok := res.Value.([]api.Profile); ok {
			m.profiles = v
			if m.selectedRow >= len(v) {
				m.selectedRow = 0
			}
		}
	case keyAlpha:
		if v, ok := res.Value.(*api.AlphaReport); ok {
			m.alpha = v
		}
	case keyBids:
		if v, ok := res.Value.([]api.BidDecision); ok {
			m.bids = v
		}
	case keyCampaigns:
		if v, ok := res.Value.([]api.Campaign); ok {
			m.campaigns = v
		}
	}
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.viewState == ViewHelp {
		switch msg.String() {
		case "q", "ctrl+c", "escape", "?", "h", "enter", " ":
			m.viewState = ViewMain
		}
		return m, nil
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "up", "k":
		if m.selectedRow > 0 {
			m.selectedRow--
		}

	case "down", "j":
		if m.selectedRow < len(m.profiles)-1 {
			m.selectedRow++
		}

	case "enter", " ":
		// Switch to the selected profile
		if m.selectedRow < len(m.profiles) {
			p := m.profiles[m.selectedRow]
			return m, m.selectProfile(p)
		}

	case "s":
		// Toggle shadow mode
		if m.status != nil {
			return m, m.toggleShadow(!m.status.ShadowEnabled)
		}

	case "r":
		m.forceRefresh()
		m.setStatus("Refreshing all panels...")

	case "?", "h":
		m.viewState = ViewHelp
	}

	return m, nil
}

func (m Model) selectProfile(p api.Profile) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := m.backend.SelectProfile(ctx, p.ID)
		return controlDoneMsg{action: fmt.Sprintf("Switched to %s", p.Name), err: err}
	}
}

func (m Model) toggleShadow(enabled bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err := m.backend.SetShadowMode(ctx, enabled)
		action := "Shadow mode disabled: bids will be APPLIED"
		if enabled {
			action = "Shadow mode enabled: bids recorded only"
		}
		return controlDoneMsg{action: action, err: err}
	}
}

// forceRefresh re-registers every query so each fetches immediately
func (m *Model) forceRefresh() {
	m.scheduleAll()
}

// setStatus sets a temporary status message
func (m *Model) setStatus(msg string) {
	m.statusMessage = msg
	m.statusExpiry = time.Now().Add(3 * time.Second)
}

// View renders the UI
func (m Model) View() string {
	if m.viewState == ViewHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// renderMain renders the panel layout
func (m Model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	half := (m.width - 6) / 2
	if half < 30 {
		half = 30
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top,
		PanelStyle.Width(half).Render(m.renderStatusPanel()),
		" ",
		PanelStyle.Width(half).Render(m.renderAlphaPanel()),
	)
	b.WriteString(top)
	b.WriteString("\n")

	mid := lipgloss.JoinHorizontal(lipgloss.Top,
		PanelStyle.Width(half).Render(m.renderProfilesPanel()),
		" ",
		PanelStyle.Width(half).Render(m.renderBidsPanel()),
	)
	b.WriteString(mid)
	b.WriteString("\n")

	b.WriteString(PanelStyle.Width(m.width - 4).Render(m.renderCampaignsPanel()))
	b.WriteString("\n")

	if m.statusMessage != "" && time.Now().Before(m.statusExpiry) {
		b.WriteString(StaleStyle.Render("▸ " + m.statusMessage))
		b.WriteString("\n")
	}

	b.WriteString(m.renderHelpBar())

	return b.String()
}

// renderHeader renders the title bar with the shadow mode badge
func (m Model) renderHeader() string {
	var badge string
	switch {
	case m.status == nil:
		badge = m.spinner.View() + " " + DimStyle.Render("loading")
	case m.status.ShadowEnabled:
		badge = ShadowOnStyle.Render("SHADOW MODE: observing only")
	default:
		badge = ShadowOffStyle.Render("LIVE: bids applied")
	}

	return TitlePanelStyle.Render(LogoStyle.Render(Logo) + "  " + badge)
}

func (m Model) panelTitle(title, key string) string {
	if m.stale[key] {
		return PanelTitleStyle.Render(title) + " " + StaleStyle.Render("[stale]")
	}
	return PanelTitleStyle.Render(title)
}

func (m Model) renderStatusPanel() string {
	var b strings.Builder
	b.WriteString(m.panelTitle("Status", keyStatus))
	b.WriteString("\n")

	if m.status == nil {
		b.WriteString(DimStyle.Render("waiting for first snapshot..."))
		return b.String()
	}

	rows := []struct{ label, value string }{
		{"Profile", m.status.ActiveProfile},
		{"Country", m.status.CountryCode},
		{"Optimizer", m.status.FSMState},
		{"Updated", m.status.UpdatedAt.Local().Format("15:04:05")},
	}
	for _, r := range rows {
		b.WriteString(LabelStyle.Width(12).Render(r.label))
		b.WriteString(ValueStyle.Render(r.value))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderAlphaPanel() string {
	var b strings.Builder
	b.WriteString(m.panelTitle("Alpha Report", keyAlpha))
	b.WriteString("\n")

	if m.alpha == nil {
		b.WriteString(DimStyle.Render("waiting for first snapshot..."))
		return b.String()
	}

	alphaStyle := PositiveStyle
	if m.alpha.ProfitAlpha < 0 {
		alphaStyle = NegativeStyle
	}

	b.WriteString(LabelStyle.Width(12).Render("Spend"))
	b.WriteString(ValueStyle.Render(fmt.Sprintf("%.2f %s", m.alpha.Spend, m.alpha.Currency)))
	b.WriteString("\n")
	b.WriteString(LabelStyle.Width(12).Render("Sales"))
	b.WriteString(ValueStyle.Render(fmt.Sprintf("%.2f %s", m.alpha.Sales, m.alpha.Currency)))
	b.WriteString("\n")
	b.WriteString(LabelStyle.Width(12).Render("Alpha"))
	b.WriteString(alphaStyle.Render(fmt.Sprintf("%+.2f %s", m.alpha.ProfitAlpha, m.alpha.Currency)))
	b.WriteString("\n")
	b.WriteString(LabelStyle.Width(12).Render("Window"))
	b.WriteString(DimStyle.Render(fmt.Sprintf("%d days", m.alpha.WindowDays)))
	return b.String()
}

func (m Model) renderProfilesPanel() string {
	var b strings.Builder
	b.WriteString(m.panelTitle("Profiles", keyProfiles))
	b.WriteString("\n")

	if len(m.profiles) == 0 {
		b.WriteString(DimStyle.Render("no profiles"))
		return b.String()
	}

	for i, p := range m.profiles {
		marker := "  "
		style := LabelStyle
		if i == m.selectedRow {
			marker = "▸ "
			style = SelectedRowStyle
		}
		active := ""
		if p.Active {
			active = PositiveStyle.Render(" ●")
		}
		b.WriteString(style.Render(fmt.Sprintf("%s%-20s %s", marker, truncate(p.Name, 20), p.CountryCode)))
		b.WriteString(active)
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderBidsPanel() string {
	var b strings.Builder
	b.WriteString(m.panelTitle("Recent Bid Decisions", keyBids))
	b.WriteString("\n")

	if len(m.bids) == 0 {
		b.WriteString(DimStyle.Render("no decisions yet"))
		return b.String()
	}

	max := 6
	if len(m.bids) < max {
		max = len(m.bids)
	}
	for _, bid := range m.bids[:max] {
		arrow := PositiveStyle.Render("↑")
		if bid.NewBid < bid.OldBid {
			arrow = NegativeStyle.Render("↓")
		} else if bid.NewBid == bid.OldBid {
			arrow = DimStyle.Render("=")
		}
		applied := DimStyle.Render("[shadow]")
		if bid.Applied {
			applied = PositiveStyle.Render("[applied]")
		}
		b.WriteString(fmt.Sprintf("%s %s %s %s %s\n",
			DimStyle.Render(bid.Timestamp.Local().Format("15:04")),
			ValueStyle.Render(truncate(bid.Keyword, 22)),
			arrow,
			LabelStyle.Render(fmt.Sprintf("%.2f→%.2f", bid.OldBid, bid.NewBid)),
			applied,
		))
	}
	return b.String()
}

func (m Model) renderCampaignsPanel() string {
	var b strings.Builder
	b.WriteString(m.panelTitle("Campaigns", keyCampaigns))
	b.WriteString("\n")

	if len(m.campaigns) == 0 {
		b.WriteString(DimStyle.Render("no campaigns"))
		return b.String()
	}

	b.WriteString(DimStyle.Render(fmt.Sprintf("%-24s %-9s %-10s %-8s %s", "NAME", "STATE", "BUDGET", "TYPE", "MANAGED")))
	b.WriteString("\n")

	max := 8
	if len(m.campaigns) < max {
		max = len(m.campaigns)
	}
	for _, c := range m.campaigns[:max] {
		stateStyle := PositiveStyle
		if c.State != "enabled" {
			stateStyle = DimStyle
		}
		managed := DimStyle.Render("—")
		if c.Managed {
			managed = PositiveStyle.Render("✓")
		}
		b.WriteString(fmt.Sprintf("%-24s %s %-10s %-8s %s\n",
			truncate(c.Name, 24),
			stateStyle.Width(10).Render(c.State),
			fmt.Sprintf("%.2f/day", c.DailyBudget),
			c.TargetingType,
			managed,
		))
	}
	return b.String()
}

// renderHelpBar renders the help shortcuts bar
func (m Model) renderHelpBar() string {
	items := []string{
		RenderKeyHint("j/k", "select profile"),
		RenderKeyHint("Enter", "switch profile"),
		RenderKeyHint("s", "toggle shadow"),
		RenderKeyHint("r", "refresh"),
		RenderKeyHint("?", "help"),
		RenderKeyHint("q", "quit"),
	}
	return HelpStyle.Render(strings.Join(items, "  "))
}

// renderHelp renders the help view
func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render("Shadow Mode Console - Help"))
	b.WriteString("\n\n")

	bindings := []struct {
		key  string
		desc string
	}{
		{"j/↓, k/↑", "Move profile selection"},
		{"Enter/Space", "Switch to selected profile"},
		{"s", "Toggle shadow mode on the backend"},
		{"r", "Force an immediate refresh"},
		{"?/h", "Show/hide this help"},
		{"q/Ctrl+C", "Quit"},
	}
	for _, binding := range bindings {
		b.WriteString("  ")
		b.WriteString(HelpKeyStyle.Width(15).Render(binding.key))
		b.WriteString(HelpDescStyle.Render(binding.desc))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(HelpDescStyle.Render("Panels refresh on independent intervals. A [stale] badge means\nthe last poll failed and the panel shows the previous snapshot."))
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("Press any key to return..."))

	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "~"
}

// Run starts the dashboard and blocks until exit
func Run(backend Backend, scheduler *poll.Scheduler, intervals config.PollConfig) error {
	p := tea.NewProgram(New(backend, scheduler, intervals), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
