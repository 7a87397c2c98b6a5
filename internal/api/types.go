package api

import (
	"context"
	"time"
)

// StatusSnapshot is the backend's current operating state
type StatusSnapshot struct {
	ShadowEnabled bool      `json:"shadow_enabled"`
	ActiveProfile string    `json:"active_profile"`
	CountryCode   string    `json:"country_code"`
	FSMState      string    `json:"fsm_state"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Profile identifies one advertising profile/country the backend manages
type Profile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	Active      bool   `json:"active"`
}

// AlphaReport is the financial snapshot computed by the backend.
// All numbers come from the backend; this client never recomputes them.
type AlphaReport struct {
	Profile     string    `json:"profile"`
	Currency    string    `json:"currency"`
	Spend       float64   `json:"spend"`
	Sales       float64   `json:"sales"`
	ProfitAlpha float64   `json:"profit_alpha"`
	WindowDays  int       `json:"window_days"`
	GeneratedAt time.Time `json:"generated_at"`
}

// BidDecision is one bid change the optimizer made (or would have made
// in shadow mode).
type BidDecision struct {
	Timestamp  time.Time `json:"timestamp"`
	CampaignID string    `json:"campaign_id"`
	Keyword    string    `json:"keyword"`
	OldBid     float64   `json:"old_bid"`
	NewBid     float64   `json:"new_bid"`
	Reason     string    `json:"reason"`
	Applied    bool      `json:"applied"`
}

// Campaign is one row of the campaigns browser listing
type Campaign struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	State         string  `json:"state"`
	DailyBudget   float64 `json:"daily_budget"`
	TargetingType string  `json:"targeting_type"`
	Managed       bool    `json:"managed"`
}

// SnapshotProvider is the read surface the dashboard panels poll.
// Client implements it against the backend; the demo provider
// implements it from fixtures.
type SnapshotProvider interface {
	Status(ctx context.Context) (*StatusSnapshot, error)
	Profiles(ctx context.Context) ([]Profile, error)
	AlphaReport(ctx context.Context) (*AlphaReport, error)
	RecentBids(ctx context.Context) ([]BidDecision, error)
	Campaigns(ctx context.Context) ([]Campaign, error)
}
