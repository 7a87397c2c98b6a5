// ============================================================================
// shadowctl - Shadow Mode PPC Console
// ============================================================================
//
// Package:     cmd
// Description: CLI command for the live log viewer TUI
// License:     MIT
// ============================================================================

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/shadowmode/shadowctl/internal/archive"
	"github.com/shadowmode/shadowctl/internal/demo"
	"github.com/shadowmode/shadowctl/internal/stream"
	"github.com/shadowmode/shadowctl/internal/tui/logviewer"
	"github.com/shadowmode/shadowctl/pkg/core/logging"
)

var logsArchive bool

var logsCmd = &cobra.Command{
	Use:     "logs",
	Aliases: []string{"log", "stream"},
	Short:   "Live log stream viewer",
	Long: `Opens the live log stream viewer.

The viewer holds the websocket connection to the backend, reconnects
after transient drops, and renders the retained history with filtering:

  1-4         Single level filter (1=DEBUG, 2=INFO, 3=WARN, 4=ERROR)
  0           All levels
  /           Substring search (Enter applies, Esc cancels)
  p / Space   Pause/Resume (lines keep arriving while paused)
  a           Toggle autoscroll
  g / G       Jump to top / bottom
  c           Clear retained history
  r           Retry after an authentication rejection
  Ctrl+C      Quit`,
	RunE: runLogs,
}

func init() {
	rootCmd.AddCommand(logsCmd)

	logsCmd.Flags().BoolVar(&logsArchive, "archive", false,
		"also persist streamed lines to the local archive")
}

func runLogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "logs", true)

	buffer := stream.NewBuffer(cfg.Stream.MaxRetained, cfg.Stream.TrimTo, logger)

	if logsArchive || cfg.Archive.Enabled {
		arch, err := archive.Open(archive.Config{Path: cfg.Archive.Path})
		if err != nil {
			return err
		}
		defer arch.Close()
		buffer.AddSink(arch.Sink())
	}

	client, err := newClient(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	manager := stream.NewManager(client, buffer, cfg.Stream.ReconnectDelay.Duration, logger)

	if demoMode {
		gen := demo.NewGenerator(0, func(ts time.Time, level, loggerName, text string) {
			buffer.Append(stream.Message{Timestamp: ts, Level: level, Logger: loggerName, Text: text})
		})
		gen.Start()
		defer gen.Stop()
	} else {
		manager.Start()
		defer manager.Stop()
	}

	return runLogViewer(buffer, manager, cfg.Stream.ScrollMargin, logger)
}

func runLogViewer(buffer *stream.Buffer, manager *stream.Manager, scrollMargin int, logger *logging.Logger) error {
	logger.Info("starting log viewer")
	return logviewer.Run(buffer, manager, scrollMargin)
}
