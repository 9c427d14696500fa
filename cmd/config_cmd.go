package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/budgetbot/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	path := flagConfig
	if path == "" {
		path = config.ConfigPath()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", path)
	if config.Exists() || flagConfig != "" {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Currency: %s\n", cfg.General.Currency)
	fmt.Println()

	fmt.Println("  [Budget limits]")
	names := make([]string, 0, len(cfg.Budget.Limits))
	for name := range cfg.Budget.Limits {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("    %-16s %10.2f\n", name, cfg.Budget.Limits[name])
	}
	fmt.Println()

	fmt.Println("  [Classifier]")
	fmt.Printf("    Backend:  %s\n", cfg.Classifier.Backend)
	if ep := cfg.Classifier.ResolvedEndpoint(); ep != "" {
		fmt.Printf("    Endpoint: %s\n", ep)
	}
	fmt.Printf("    Timeout:  %s\n", cfg.Classifier.Timeout())
	fmt.Printf("    Retries:  %d\n", cfg.Classifier.MaxRetries)
	if cfg.Classifier.APIToken != "" {
		fmt.Printf("    Token:    %s\n", maskAPIKey(cfg.Classifier.APIToken))
	} else {
		fmt.Println("    Token:    not configured")
	}
	fmt.Println()

	fmt.Println("  [Store]")
	if cfg.Store.Disabled {
		fmt.Println("    Journal: disabled")
	} else {
		fmt.Printf("    Journal: %s\n", cfg.Store.JournalPath())
	}
	fmt.Println()

	fmt.Println("  [Events]")
	if cfg.Events.AMQPURL != "" {
		fmt.Printf("    Broker:   %s\n", maskAPIKey(cfg.Events.AMQPURL))
		fmt.Printf("    Exchange: %s\n", cfg.Events.Exchange)
	} else {
		fmt.Println("    Broker: not configured")
	}
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address: %s\n", cfg.Server.Addr)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)

	return nil
}

func maskAPIKey(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
