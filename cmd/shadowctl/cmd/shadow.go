package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var shadowCmd = &cobra.Command{
	Use:   "shadow <on|off>",
	Short: "Enable or disable shadow mode",
	Long: `Flips shadow mode on the backend.

With shadow mode ON the optimizer records the bid changes it would
make without applying them. With shadow mode OFF bid changes go live.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"on", "off"},
	RunE:      runShadow,
}

func init() {
	rootCmd.AddCommand(shadowCmd)
}

// shadowToggler is the single backend operation this command needs
type shadowToggler interface {
	SetShadowMode(ctx context.Context, enabled bool) error
}

func runShadow(cmd *cobra.Command, args []string) error {
	var enabled bool
	switch args[0] {
	case "on":
		enabled = true
	case "off":
		enabled = false
	default:
		return fmt.Errorf("argument must be 'on' or 'off', got %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "shadow", false)

	var backend shadowToggler
	if demoMode {
		backend, err = demoProvider(cfg)
	} else {
		backend, err = newClient(cmd.Context(), cfg, logger)
	}
	if err != nil {
		return err
	}

	if err := backend.SetShadowMode(cmd.Context(), enabled); err != nil {
		return err
	}

	if enabled {
		fmt.Println("Shadow mode ON: bid changes are recorded, not applied.")
	} else {
		fmt.Println("Shadow mode OFF: bid changes go live.")
	}
	return nil
}
