package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/budgetbot/internal/budget"
	"github.com/theirongolddev/budgetbot/internal/config"
	"github.com/theirongolddev/budgetbot/internal/model"
	"github.com/theirongolddev/budgetbot/internal/tui/theme"
)

// SetupValues collects the answers of the setup form.
type SetupValues struct {
	Theme       string
	Backend     string
	APIToken    string
	TotalBudget string
}

// SetupValuesFrom seeds the form from an existing config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	total := 0.0
	for _, v := range cfg.Budget.Limits {
		total += v
	}
	return SetupValues{
		Theme:       cfg.Appearance.Theme,
		Backend:     cfg.Classifier.Backend,
		APIToken:    cfg.Classifier.APIToken,
		TotalBudget: decimal.NewFromFloat(total).StringFixed(2),
	}
}

// NewSetupForm builds the first-run form. Answers land in vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to budgetbot!").
				Description("Track expenses and budgets by just talking about them.\nLet's set up a few things."),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
			huh.NewInput().
				Title("Total monthly budget").
				Description("Split across categories in the default proportions.").
				Value(&vals.TotalBudget).
				Validate(validateAmount),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Message classifier").
				Options(
					huh.NewOption("Local (offline, built in)", config.BackendLocal),
					huh.NewOption("Remote zero-shot model", config.BackendRemote),
				).
				Value(&vals.Backend),
			huh.NewInput().
				Title("Inference API token").
				Description("Only used by the remote classifier. Leave empty to skip.").
				EchoMode(huh.EchoModePassword).
				Value(&vals.APIToken),
		),
	).WithShowHelp(false)
}

func validateAmount(s string) error {
	d, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if err != nil {
		return errors.New("enter a number, like 2400")
	}
	if d.IsNegative() {
		return errors.New("budget must not be negative")
	}
	return nil
}

// ApplySetup writes the form answers into cfg. The total budget is spread
// over the categories in proportion to the default limits.
func ApplySetup(cfg *config.Config, vals SetupValues) error {
	cfg.Appearance.Theme = vals.Theme
	if vals.Backend != "" {
		cfg.Classifier.Backend = vals.Backend
	}
	cfg.Classifier.APIToken = strings.TrimSpace(vals.APIToken)

	if strings.TrimSpace(vals.TotalBudget) == "" {
		return nil
	}
	total, err := decimal.NewFromString(strings.TrimPrefix(strings.TrimSpace(vals.TotalBudget), "$"))
	if err != nil {
		return fmt.Errorf("total budget: %w", err)
	}
	b := budget.New()
	if err := b.Redistribute(total); err != nil {
		return fmt.Errorf("total budget: %w", err)
	}
	cfg.Budget.Limits = make(map[string]float64, len(model.Categories))
	for c, amt := range b.Limits() {
		cfg.Budget.Limits[string(c)] = amt.InexactFloat64()
	}
	return nil
}
