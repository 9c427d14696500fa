package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/budgetbot/internal/chat"
	"github.com/theirongolddev/budgetbot/internal/cli"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Budget status per category",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&flagMonth, "month", "", "Month to show as YYYY-MM (default current)")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	if err := checkMonth(flagMonth); err != nil {
		return err
	}
	return withSession(func(_ context.Context, _ *runtime, s *chat.Session) error {
		r := s.BudgetStatus(flagMonth)

		fmt.Println()
		fmt.Println(cli.RenderTitle("BUDGET  " + cli.FormatMonth(r.Month)))
		fmt.Println()

		rows := make([][]string, 0, len(r.Categories)+2)
		for _, cs := range r.Categories {
			rows = append(rows, []string{
				string(cs.Category),
				cli.FormatMoney(cs.Spent),
				cli.FormatMoney(cs.Budget),
				cli.FormatMoney(cs.Remaining),
				cli.FormatLevel(cs.Level),
			})
		}
		o := r.Overall
		rows = append(rows, []string{"---"}, []string{
			"Overall",
			cli.FormatMoney(o.Spent),
			cli.FormatMoney(o.Budget),
			cli.FormatMoney(o.Remaining),
			cli.FormatLevel(o.Level),
		})
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Category", "Spent", "Budget", "Remaining", "Status"},
			Rows:    rows,
		}))

		fmt.Println()
		for _, cs := range r.Categories {
			fmt.Printf("  %-16s %s\n", cs.Category, cli.RenderBudgetBar(cs.PercentUsed, cs.Level, 24))
		}
		fmt.Printf("  %-16s %s\n", "overall", cli.RenderBudgetBar(o.PercentUsed, o.Level, 24))
		fmt.Println()
		return nil
	})
}
