// ============================================================================
// shadowctl - Shadow Mode PPC Console
// ============================================================================
//
// Package:     cmd
// Description: CLI command for the dashboard TUI
// License:     MIT
// ============================================================================

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/shadowmode/shadowctl/internal/poll"
	"github.com/shadowmode/shadowctl/internal/tui/dashboard"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"dashboard", "dash"},
	Short:   "Dashboard with status, alpha report, bids and campaigns",
	Long: `Opens the dashboard.

Each panel polls the backend on its own interval. A panel whose last
poll failed keeps its previous snapshot and shows a [stale] badge.

  j/k, Up/Down  Select a profile
  Enter         Switch to the selected profile
  s             Toggle shadow mode
  r             Force an immediate refresh of all panels
  ?             Help
  q             Quit`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "watch", true)

	var backend dashboard.Backend
	if demoMode {
		backend, err = demoProvider(cfg)
	} else {
		backend, err = newClient(cmd.Context(), cfg, logger)
	}
	if err != nil {
		return err
	}

	scheduler := poll.New(logger)
	defer scheduler.Stop()

	logger.Info("starting dashboard")
	return dashboard.Run(backend, scheduler, cfg.Poll)
}
