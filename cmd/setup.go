package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/budgetbot/internal/config"
	"github.com/theirongolddev/budgetbot/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		cfg = config.DefaultConfig()
	}

	vals := tui.SetupValuesFrom(cfg)
	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	if err := tui.ApplySetup(&cfg, vals); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg, flagConfig); err != nil {
		return err
	}

	path := flagConfig
	if path == "" {
		path = config.ConfigPath()
	}
	fmt.Println()
	fmt.Printf("  Saved to %s\n", path)
	fmt.Println("  Run `budgetbot setup` anytime to reconfigure.")
	fmt.Println("  Budgets already stored in the journal are kept; use `budgetbot budget set` to change them.")
	fmt.Println()
	return nil
}
