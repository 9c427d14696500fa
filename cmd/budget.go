package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/budgetbot/internal/chat"
	"github.com/theirongolddev/budgetbot/internal/cli"
	"github.com/theirongolddev/budgetbot/internal/intent"
	"github.com/theirongolddev/budgetbot/internal/model"
)

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Show or change budget limits",
	RunE:  runBudgetShow,
}

var budgetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the limit for every category",
	RunE:  runBudgetShow,
}

var budgetSetCmd = &cobra.Command{
	Use:   "set <category|total> <amount>",
	Short: "Set one category limit, or rescale all limits to a new total",
	Example: `  budgetbot budget set food_dining 450
  budgetbot budget set total 3000`,
	Args: cobra.ExactArgs(2),
	RunE: runBudgetSet,
}

func init() {
	budgetCmd.AddCommand(budgetShowCmd, budgetSetCmd)
	rootCmd.AddCommand(budgetCmd)
}

func runBudgetShow(_ *cobra.Command, _ []string) error {
	return withSession(func(_ context.Context, _ *runtime, s *chat.Session) error {
		limits := s.Limits()
		rows := make([][]string, 0, len(model.Categories)+2)
		total := decimal.Zero
		for _, c := range model.Categories {
			rows = append(rows, []string{string(c), cli.FormatMoney(limits[c])})
			total = total.Add(limits[c])
		}
		rows = append(rows, []string{"---"}, []string{"Total", cli.FormatMoney(total)})

		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Monthly limits",
			Headers: []string{"Category", "Limit"},
			Rows:    rows,
		}))
		return nil
	})
}

func runBudgetSet(_ *cobra.Command, args []string) error {
	amount, err := parseAmount(args[1])
	if err != nil {
		return err
	}
	total := strings.EqualFold(args[0], "total")
	var cat model.Category
	if !total {
		if cat, err = model.ParseCategory(args[0]); err != nil {
			return err
		}
	}

	return withSession(func(ctx context.Context, _ *runtime, s *chat.Session) error {
		if total {
			if err := s.SetTotalBudget(ctx, amount); err != nil {
				return err
			}
			fmt.Printf("  Total monthly budget is now %s\n", cli.FormatMoney(amount.Round(2)))
			return nil
		}
		old := s.Limits()[cat]
		if err := s.SetCategoryBudget(ctx, cat, amount); err != nil {
			return err
		}
		fmt.Printf("  %s: %s -> %s\n", cat, cli.FormatMoney(old), cli.FormatMoney(s.Limits()[cat]))
		return nil
	})
}

// parseAmount accepts "25", "$25.50" or "1,200".
func parseAmount(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "$"), ",", "")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

func categorize(ctx context.Context, rt *runtime, description string) (model.Category, error) {
	return intent.NewExtractor(rt.clf).Categorize(ctx, description)
}
