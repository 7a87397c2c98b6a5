package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shadowmode/shadowctl/internal/api"
	"github.com/shadowmode/shadowctl/pkg/core/config"
	"github.com/shadowmode/shadowctl/pkg/core/logging"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List advertising profiles",
	RunE:  runProfilesList,
}

var profilesSelectCmd = &cobra.Command{
	Use:   "select <profile-id>",
	Short: "Switch the backend to another profile",
	Args:  cobra.ExactArgs(1),
	RunE:  runProfilesSelect,
}

func init() {
	rootCmd.AddCommand(profilesCmd)
	profilesCmd.AddCommand(profilesSelectCmd)
}

// profileSelector is the slice of the backend surface these commands
// need: listing plus switching.
type profileSelector interface {
	Profiles(ctx context.Context) ([]api.Profile, error)
	SelectProfile(ctx context.Context, id string) error
}

func profileBackend(ctx context.Context, cfg *config.Config, logger *logging.Logger) (profileSelector, error) {
	if demoMode {
		return demoProvider(cfg)
	}
	return newClient(ctx, cfg, logger)
}

func runProfilesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "profiles", false)

	backend, err := profileBackend(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	profiles, err := backend.Profiles(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("%-14s %-24s %-8s %s\n", "ID", "NAME", "COUNTRY", "ACTIVE")
	for _, p := range profiles {
		active := ""
		if p.Active {
			active = "*"
		}
		fmt.Printf("%-14s %-24s %-8s %s\n", p.ID, p.Name, p.CountryCode, active)
	}

	return nil
}

func runProfilesSelect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "profiles", false)

	backend, err := profileBackend(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	if err := backend.SelectProfile(cmd.Context(), args[0]); err != nil {
		return err
	}

	fmt.Printf("Switched to profile %s\n", args[0])
	return nil
}
