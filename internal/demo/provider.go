// ============================================================================
// shadowctl - Shadow Mode PPC Console
// ============================================================================
//
// Package:     demo
// Description: Fixture-backed snapshot provider and log generator for
//              running the console without a backend. Fixtures load
//              from a YAML file or fall back to built-in data.
// License:     MIT
// ============================================================================

package demo

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shadowmode/shadowctl/internal/api"
)

// Fixtures is the on-disk shape of a demo data file
type Fixtures struct {
	Status    StatusFixture     `yaml:"status"`
	Profiles  []ProfileFixture  `yaml:"profiles"`
	Alpha     AlphaFixture      `yaml:"alpha_report"`
	Bids      []BidFixture      `yaml:"recent_bids"`
	Campaigns []CampaignFixture `yaml:"campaigns"`
}

type StatusFixture struct {
	ShadowEnabled bool   `yaml:"shadow_enabled"`
	ActiveProfile string `yaml:"active_profile"`
	CountryCode   string `yaml:"country_code"`
	FSMState      string `yaml:"fsm_state"`
}

type ProfileFixture struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	CountryCode string `yaml:"country_code"`
	Active      bool   `yaml:"active"`
}

type AlphaFixture struct {
	Currency    string  `yaml:"currency"`
	Spend       float64 `yaml:"spend"`
	Sales       float64 `yaml:"sales"`
	ProfitAlpha float64 `yaml:"profit_alpha"`
	WindowDays  int     `yaml:"window_days"`
}

type BidFixture struct {
	CampaignID string  `yaml:"campaign_id"`
	Keyword    string  `yaml:"keyword"`
	OldBid     float64 `yaml:"old_bid"`
	NewBid     float64 `yaml:"new_bid"`
	Reason     string  `yaml:"reason"`
	Applied    bool    `yaml:"applied"`
}

type CampaignFixture struct {
	ID            string  `yaml:"id"`
	Name          string  `yaml:"name"`
	State         string  `yaml:"state"`
	DailyBudget   float64 `yaml:"daily_budget"`
	TargetingType string  `yaml:"targeting_type"`
	Managed       bool    `yaml:"managed"`
}

// Provider serves snapshots from fixtures. Shadow mode toggles are
// kept in memory so the dashboard behaves like a live backend.
type Provider struct {
	mu       sync.Mutex
	fixtures Fixtures
	shadow   bool
	profile  string
}

// NewProvider builds a provider over the given fixtures
func NewProvider(f Fixtures) *Provider {
	return &Provider{
		fixtures: f,
		shadow:   f.Status.ShadowEnabled,
		profile:  f.Status.ActiveProfile,
	}
}

// LoadFile reads fixtures from a YAML file
func LoadFile(path string) (*Provider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}

	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return NewProvider(f), nil
}

// Default returns a provider over the built-in fixture set
func Default() *Provider {
	return NewProvider(defaultFixtures())
}

func defaultFixtures() Fixtures {
	return Fixtures{
		Status: StatusFixture{
			ShadowEnabled: true,
			ActiveProfile: "demo-de",
			CountryCode:   "DE",
			FSMState:      "OBSERVING",
		},
		Profiles: []ProfileFixture{
			{ID: "demo-de", Name: "Demo Store DE", CountryCode: "DE", Active: true},
			{ID: "demo-fr", Name: "Demo Store FR", CountryCode: "FR"},
			{ID: "demo-us", Name: "Demo Store US", CountryCode: "US"},
		},
		Alpha: AlphaFixture{
			Currency:    "EUR",
			Spend:       412.36,
			Sales:       1874.90,
			ProfitAlpha: 96.41,
			WindowDays:  30,
		},
		Bids: []BidFixture{
			{CampaignID: "cmp-101", Keyword: "garden hose 25m", OldBid: 0.42, NewBid: 0.51, Reason: "acos below target"},
			{CampaignID: "cmp-101", Keyword: "garden hose holder", OldBid: 0.88, NewBid: 0.61, Reason: "acos above target"},
			{CampaignID: "cmp-207", Keyword: "drip irrigation kit", OldBid: 0.35, NewBid: 0.35, Reason: "within band"},
		},
		Campaigns: []CampaignFixture{
			{ID: "cmp-101", Name: "SP Garden Auto", State: "enabled", DailyBudget: 25, TargetingType: "auto", Managed: true},
			{ID: "cmp-207", Name: "SP Irrigation Exact", State: "enabled", DailyBudget: 15, TargetingType: "manual", Managed: true},
			{ID: "cmp-318", Name: "SP Brand Defense", State: "paused", DailyBudget: 10, TargetingType: "manual"},
		},
	}
}

func (p *Provider) Status(ctx context.Context) (*api.StatusSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return &api.StatusSnapshot{
		ShadowEnabled: p.shadow,
		ActiveProfile: p.profile,
		CountryCode:   p.fixtures.Status.CountryCode,
		FSMState:      p.fixtures.Status.FSMState,
		UpdatedAt:     time.Now().UTC(),
	}, nil
}

func (p *Provider) Profiles(ctx context.Context) ([]api.Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	profiles := make([]api.Profile, 0, len(p.fixtures.Profiles))
	for _, f := range p.fixtures.Profiles {
		profiles = append(profiles, api.Profile{
			ID:          f.ID,
			Name:        f.Name,
			CountryCode: f.CountryCode,
			Active:      f.ID == p.profile,
		})
	}
	return profiles, nil
}

func (p *Provider) AlphaReport(ctx context.Context) (*api.AlphaReport, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	f := p.fixtures.Alpha
	return &api.AlphaReport{
		Profile:     p.profile,
		Currency:    f.Currency,
		Spend:       f.Spend,
		Sales:       f.Sales,
		ProfitAlpha: f.ProfitAlpha,
		WindowDays:  f.WindowDays,
		GeneratedAt: time.Now().UTC(),
	}, nil
}

func (p *Provider) RecentBids(ctx context.Context) ([]api.BidDecision, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	bids := make([]api.BidDecision, 0, len(p.fixtures.Bids))
	now := time.Now().UTC()
	for i, f := range p.fixtures.Bids {
		bids = append(bids, api.BidDecision{
			Timestamp:  now.Add(-time.Duration(i) * time.Minute),
			CampaignID: f.CampaignID,
			Keyword:    f.Keyword,
			OldBid:     f.OldBid,
			NewBid:     f.NewBid,
			Reason:     f.Reason,
			Applied:    f.Applied && !p.shadow,
		})
	}
	return bids, nil
}

func (p *Provider) Campaigns(ctx context.Context) ([]api.Campaign, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	campaigns := make([]api.Campaign, 0, len(p.fixtures.Campaigns))
	for _, f := range p.fixtures.Campaigns {
		campaigns = append(campaigns, api.Campaign{
			ID:            f.ID,
			Name:          f.Name,
			State:         f.State,
			DailyBudget:   f.DailyBudget,
			TargetingType: f.TargetingType,
			Managed:       f.Managed,
		})
	}
	return campaigns, nil
}

// SetShadowMode flips the simulated shadow flag
func (p *Provider) SetShadowMode(ctx context.Context, enabled bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shadow = enabled
	return nil
}

// SelectProfile switches the simulated active profile
func (p *Provider) SelectProfile(ctx context.Context, id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, f := range p.fixtures.Profiles {
		if f.ID == id {
			p.profile = id
			return nil
		}
	}
	return fmt.Errorf("unknown profile %q", id)
}

var _ api.SnapshotProvider = (*Provider)(nil)

// demo log vocabulary
var (
	demoLoggers = []string{"bidder.engine", "bidder.fsm", "api.amazon", "report.alpha", "sync.campaigns"}
	demoLevels  = []string{"DEBUG", "INFO", "INFO", "INFO", "WARN", "ERROR"}
	demoLines   = []string{
		"bid window evaluation started",
		"keyword acos within target band",
		"shadow mode: bid change recorded, not applied",
		"campaign snapshot refreshed",
		"report rows fetched from ads api",
		"rate limited by ads api, backing off",
		"profile token refreshed",
	}
)

// Generator emits synthetic log lines at an interval, for driving the
// log viewer without a backend.
type Generator struct {
	emit     func(ts time.Time, level, logger, text string)
	interval time.Duration
	rng      *rand.Rand

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewGenerator creates a generator delivering lines to emit
func NewGenerator(interval time.Duration, emit func(ts time.Time, level, logger, text string)) *Generator {
	if interval <= 0 {
		interval = 400 * time.Millisecond
	}
	return &Generator{
		emit:     emit,
		interval: interval,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins emitting lines until Stop
func (g *Generator) Start() {
	go func() {
		defer close(g.done)
		ticker := time.NewTicker(g.interval)
		defer ticker.Stop()
		for {
			select {
			case <-g.stop:
				return
			case <-ticker.C:
				g.emit(
					time.Now().UTC(),
					demoLevels[g.rng.Intn(len(demoLevels))],
					demoLoggers[g.rng.Intn(len(demoLoggers))],
					demoLines[g.rng.Intn(len(demoLines))],
				)
			}
		}
	}()
}

// Stop halts emission and waits for the loop to exit
func (g *Generator) Stop() {
	g.stopOnce.Do(func() { close(g.stop) })
	<-g.done
}
