package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shadowmode/shadowctl/internal/api"
	"github.com/shadowmode/shadowctl/internal/demo"
	"github.com/shadowmode/shadowctl/pkg/core/config"
	"github.com/shadowmode/shadowctl/pkg/core/logging"
)

var (
	cfgFile  string
	verbose  bool
	demoMode bool
)

var rootCmd = &cobra.Command{
	Use:   "shadowctl",
	Short: "Shadow Mode PPC Console",
	Long: `shadowctl is the terminal console for the Shadow Mode PPC optimizer.

It streams the optimizer's live log over websocket, polls status and
financial snapshots, and lets you switch profiles or flip shadow mode
without touching the web dashboard.

Commands:
  logs      - live log stream viewer
  watch     - dashboard with status, alpha report, bids and campaigns
  status    - one-shot backend status
  profiles  - list or switch advertising profiles
  shadow    - enable or disable shadow mode
  archive   - query locally archived log lines`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./shadowctl.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&demoMode, "demo", false, "run against built-in demo data, no backend needed")
}

// loadConfig loads the TOML config, honoring --config
func loadConfig() (*config.Config, error) {
	return config.LoadOrDefault(cfgFile)
}

// newLogger builds the process logger. TUI commands pass toFile=true so
// log output goes to the rotating file instead of the terminal.
func newLogger(cfg *config.Config, name string, toFile bool) *logging.Logger {
	lc := logging.LoggerConfig{
		Name:       name,
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	}
	if verbose {
		lc.Level = "debug"
	}
	if toFile {
		lc.FilePath = cfg.Logging.FilePath
		if lc.FilePath == "" {
			lc.FilePath = "./shadowctl.log"
		}
	}
	return logging.NewLogger(lc)
}

// newClient builds the backend client and establishes a session when
// credentials are present in the environment.
func newClient(ctx context.Context, cfg *config.Config, logger *logging.Logger) (*api.Client, error) {
	client, err := api.New(cfg.Backend.BaseURL, cfg.Backend.WSPath, cfg.Backend.RequestTimeout.Duration, logger)
	if err != nil {
		return nil, err
	}

	username := os.Getenv("SHADOWCTL_USERNAME")
	password := os.Getenv("SHADOWCTL_PASSWORD")
	if username != "" && !demoMode {
		if err := client.Login(ctx, username, password); err != nil {
			return nil, fmt.Errorf("login failed: %w", err)
		}
	}
	return client, nil
}

// newProvider returns the demo provider under --demo, the real client
// otherwise.
func newProvider(ctx context.Context, cfg *config.Config, logger *logging.Logger) (api.SnapshotProvider, error) {
	if demoMode {
		return demoProvider(cfg)
	}
	return newClient(ctx, cfg, logger)
}

func demoProvider(cfg *config.Config) (*demo.Provider, error) {
	if cfg.Demo.FixturesPath != "" {
		return demo.LoadFile(cfg.Demo.FixturesPath)
	}
	return demo.Default(), nil
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
