package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shadowmode/shadowctl/internal/archive"
)

var (
	archiveLevel  string
	archiveLogger string
	archiveQuery  string
	archiveLimit  int
	archiveSince  time.Duration
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Query locally archived log lines",
	Long: `Queries the local SQLite archive written by 'logs --archive'.

Lines print newest first. Filters combine; a line must match all of
them.`,
	RunE: runArchive,
}

func init() {
	rootCmd.AddCommand(archiveCmd)

	archiveCmd.Flags().StringVar(&archiveLevel, "level", "", "filter by level (DEBUG, INFO, WARN, ERROR)")
	archiveCmd.Flags().StringVar(&archiveLogger, "logger", "", "filter by logger name")
	archiveCmd.Flags().StringVar(&archiveQuery, "query", "", "substring filter on the message text")
	archiveCmd.Flags().IntVar(&archiveLimit, "limit", 100, "maximum number of lines")
	archiveCmd.Flags().DurationVar(&archiveSince, "since", 0, "only lines newer than this age, e.g. 2h")
}

func runArchive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	arch, err := archive.Open(archive.Config{Path: cfg.Archive.Path})
	if err != nil {
		return err
	}
	defer arch.Close()

	filter := archive.Filter{
		Level:  archiveLevel,
		Logger: archiveLogger,
		Query:  archiveQuery,
		Limit:  archiveLimit,
	}
	if archiveSince > 0 {
		filter.StartTime = time.Now().Add(-archiveSince)
	}

	lines, err := arch.Query(cmd.Context(), filter)
	if err != nil {
		return err
	}

	if len(lines) == 0 {
		fmt.Println("No archived lines match.")
		return nil
	}

	for _, l := range lines {
		fmt.Printf("%s [%-5s] [%s] %s\n",
			l.Timestamp.Local().Format("2006-01-02 15:04:05"),
			l.Level, l.Logger, l.Text)
	}
	return nil
}
