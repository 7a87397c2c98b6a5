package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config holds the complete application configuration. It is created once
// at startup and passed explicitly to every consumer; nothing in this
// codebase reads configuration through package globals.
type Config struct {
	Backend BackendConfig `toml:"backend"`
	Stream  StreamConfig  `toml:"stream"`
	Poll    PollConfig    `toml:"poll"`
	Archive ArchiveConfig `toml:"archive"`
	Logging LoggingConfig `toml:"logging"`
	Demo    DemoConfig    `toml:"demo"`
}

// BackendConfig holds connection settings for the Shadow Mode backend
type BackendConfig struct {
	BaseURL        string   `toml:"base_url"`
	WSPath         string   `toml:"ws_path"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// StreamConfig holds live log stream settings
type StreamConfig struct {
	ReconnectDelay Duration `toml:"reconnect_delay"`
	MaxRetained    int      `toml:"max_retained"`
	TrimTo         int      `toml:"trim_to"`
	ScrollMargin   int      `toml:"scroll_margin"`
}

// PollConfig holds snapshot polling intervals per panel
type PollConfig struct {
	StatusInterval    Duration `toml:"status_interval"`
	ProfilesInterval  Duration `toml:"profiles_interval"`
	AlphaInterval     Duration `toml:"alpha_interval"`
	BidsInterval      Duration `toml:"bids_interval"`
	CampaignsInterval Duration `toml:"campaigns_interval"`
}

// ArchiveConfig holds local bid-log archive settings
type ArchiveConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// LoggingConfig holds client-side logging settings
type LoggingConfig struct {
	Level      string `toml:"level"`
	Format     string `toml:"format"`
	FilePath   string `toml:"file_path"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// DemoConfig holds demo data provider settings
type DemoConfig struct {
	FixturesPath string `toml:"fixtures_path"`
}

// Duration wraps time.Duration for TOML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load loads configuration from a TOML file
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.expandEnvVars()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault loads the config file if it exists, falling back to
// defaults. Lookup order: explicit path, $SHADOWCTL_CONFIG, then the
// usual locations.
func LoadOrDefault(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("SHADOWCTL_CONFIG")
	}
	if path == "" {
		defaultPaths := []string{
			"./shadowctl.toml",
			filepath.Join(os.Getenv("HOME"), ".config/shadowctl/config.toml"),
		}
		for _, p := range defaultPaths {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Default returns a configuration with all defaults applied
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// Backend
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = "http://localhost:8000"
	}
	if c.Backend.WSPath == "" {
		c.Backend.WSPath = "/ws/logs"
	}
	if c.Backend.RequestTimeout.Duration == 0 {
		c.Backend.RequestTimeout.Duration = 10 * time.Second
	}

	// Stream
	if c.Stream.ReconnectDelay.Duration == 0 {
		c.Stream.ReconnectDelay.Duration = 3 * time.Second
	}
	if c.Stream.MaxRetained == 0 {
		c.Stream.MaxRetained = 2000
	}
	if c.Stream.TrimTo == 0 {
		c.Stream.TrimTo = 1500
	}
	if c.Stream.ScrollMargin == 0 {
		c.Stream.ScrollMargin = 40
	}

	// Poll
	if c.Poll.StatusInterval.Duration == 0 {
		c.Poll.StatusInterval.Duration = 5 * time.Second
	}
	if c.Poll.ProfilesInterval.Duration == 0 {
		c.Poll.ProfilesInterval.Duration = 60 * time.Second
	}
	if c.Poll.AlphaInterval.Duration == 0 {
		c.Poll.AlphaInterval.Duration = 30 * time.Second
	}
	if c.Poll.BidsInterval.Duration == 0 {
		c.Poll.BidsInterval.Duration = 15 * time.Second
	}
	if c.Poll.CampaignsInterval.Duration == 0 {
		c.Poll.CampaignsInterval.Duration = 120 * time.Second
	}

	// Archive
	if c.Archive.Path == "" {
		c.Archive.Path = "./data/bidlog.db"
	}

	// Logging
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.Backend.BaseURL = os.ExpandEnv(c.Backend.BaseURL)
	c.Archive.Path = os.ExpandEnv(c.Archive.Path)
	c.Logging.FilePath = os.ExpandEnv(c.Logging.FilePath)
	c.Demo.FixturesPath = os.ExpandEnv(c.Demo.FixturesPath)
}

// validate rejects configurations the stream layer cannot honor
func (c *Config) validate() error {
	if c.Stream.TrimTo > c.Stream.MaxRetained {
		return fmt.Errorf("stream.trim_to (%d) must not exceed stream.max_retained (%d)",
			c.Stream.TrimTo, c.Stream.MaxRetained)
	}
	if c.Stream.MaxRetained < 0 || c.Stream.TrimTo < 0 {
		return fmt.Errorf("stream retention bounds must be positive")
	}
	return nil
}
