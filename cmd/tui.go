package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/budgetbot/internal/config"
	"github.com/theirongolddev/budgetbot/internal/tui"
	"github.com/theirongolddev/budgetbot/internal/tui/theme"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Chat in a full-screen terminal UI with a live budget sidebar",
	RunE:  runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	firstRun := flagConfig == "" && !config.Exists()

	// Logs would tear the alt screen.
	logOutput = io.Discard

	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	theme.SetActive(rt.cfg.Appearance.Theme)

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	s, err := rt.openSession(context.Background(), flagSession)
	if err != nil {
		return err
	}

	app := tui.NewApp(s, tui.Options{
		Timeout:    rt.cfg.Classifier.Timeout() + 5*time.Second,
		ConfigPath: flagConfig,
		FirstRun:   firstRun,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
