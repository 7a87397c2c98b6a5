package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shadowmode/shadowctl/internal/api"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "One-shot backend status",
	Long: `Prints the backend's current operating state and exits.

Useful for scripting; the exact same snapshot the dashboard's status
panel renders.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "status", false)

	provider, err := newProvider(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	status, err := provider.Status(cmd.Context())
	if err != nil {
		if api.IsAuthError(err) {
			printError("not authenticated", err)
			fmt.Println("Set SHADOWCTL_USERNAME and SHADOWCTL_PASSWORD and retry.")
		}
		return err
	}

	mode := "LIVE (bids applied)"
	if status.ShadowEnabled {
		mode = "SHADOW (observing only)"
	}

	fmt.Println("Shadow Mode Backend Status")
	fmt.Println("==========================")
	fmt.Printf("  Mode:      %s\n", mode)
	fmt.Printf("  Profile:   %s (%s)\n", status.ActiveProfile, status.CountryCode)
	fmt.Printf("  Optimizer: %s\n", status.FSMState)
	fmt.Printf("  Updated:   %s\n", status.UpdatedAt.Local().Format("2006-01-02 15:04:05"))

	return nil
}
