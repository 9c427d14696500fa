package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/budgetbot/internal/chat"
	"github.com/theirongolddev/budgetbot/internal/cli"
	"github.com/theirongolddev/budgetbot/internal/model"
	"github.com/theirongolddev/budgetbot/internal/pipeline"
)

var flagMonth string

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Monthly spending summary by category",
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVar(&flagMonth, "month", "", "Month to show as YYYY-MM (default current)")
	rootCmd.AddCommand(summaryCmd)
}

func checkMonth(month string) error {
	if month == "" {
		return nil
	}
	if _, err := time.Parse(model.MonthKeyLayout, month); err != nil {
		return fmt.Errorf("invalid --month %q: want YYYY-MM", month)
	}
	return nil
}

func runSummary(_ *cobra.Command, _ []string) error {
	if err := checkMonth(flagMonth); err != nil {
		return err
	}
	return withSession(func(_ context.Context, _ *runtime, s *chat.Session) error {
		sum := s.MonthlySummary(flagMonth)

		fmt.Println()
		fmt.Println(cli.RenderTitle("SPENDING  " + cli.FormatMonth(sum.Month)))
		fmt.Println()

		if sum.Count == 0 {
			fmt.Println("  No expenses recorded for this month.")
			fmt.Println(`  Try: budgetbot say "I spent $25 on groceries"`)
			return nil
		}

		fmt.Println(cli.RenderKV("Total", cli.FormatMoney(sum.Total)))
		fmt.Println(cli.RenderKV("Transactions", formatNumber(int64(sum.Count))))
		fmt.Println(cli.RenderKV("Average", cli.FormatMoney(sum.Average)))
		fmt.Println()

		shares := pipeline.Breakdown(sum)
		rows := make([][]string, 0, len(shares)+2)
		for _, sh := range shares {
			rows = append(rows, []string{string(sh.Category), cli.FormatMoney(sh.Amount), cli.FormatPercent(sh.Percent)})
		}
		rows = append(rows, []string{"---"}, []string{"Total", cli.FormatMoney(sum.Total), cli.FormatPercent(100)})
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "By Category",
			Headers: []string{"Category", "Spent", "Share"},
			Rows:    rows,
		}))

		if len(shares) > 0 {
			fmt.Println()
			peak := shares[0].Amount.InexactFloat64()
			for _, sh := range shares {
				fmt.Println(cli.RenderHorizontalBar(fmt.Sprintf("%-16s", sh.Category), sh.Amount.InexactFloat64(), peak, 30))
			}
		}

		days := pipeline.AggregateDays(s.ListExpenses(), sum.Month)
		if len(days) > 1 {
			values := make([]float64, len(days))
			for i, d := range days {
				values[i] = d.InexactFloat64()
			}
			fmt.Println()
			fmt.Println(cli.RenderKV("Daily", cli.RenderSparkline(values)))
		}
		fmt.Println()
		return nil
	})
}
