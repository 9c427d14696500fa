package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/budgetbot/internal/chat"
	"github.com/theirongolddev/budgetbot/internal/cli"
	"github.com/theirongolddev/budgetbot/internal/model"
	"github.com/theirongolddev/budgetbot/internal/pipeline"
)

var (
	flagCategory string
	flagSearch   string
)

var expensesCmd = &cobra.Command{
	Use:     "expenses",
	Aliases: []string{"ls"},
	Short:   "List recorded expenses",
	RunE:    runExpenses,
}

var addCmd = &cobra.Command{
	Use:   "add <amount> <description...>",
	Short: "Record an expense without going through the chat",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runAdd,
}

func init() {
	expensesCmd.Flags().StringVar(&flagMonth, "month", "", "Only this month, YYYY-MM")
	expensesCmd.Flags().StringVar(&flagCategory, "category", "", "Only this category")
	expensesCmd.Flags().StringVar(&flagSearch, "search", "", "Description substring")
	addCmd.Flags().StringVar(&flagCategory, "category", "", "Category (default: classified from the description)")
	expensesCmd.AddCommand(addCmd)
	rootCmd.AddCommand(expensesCmd)
}

func runExpenses(_ *cobra.Command, _ []string) error {
	if err := checkMonth(flagMonth); err != nil {
		return err
	}
	var cat model.Category
	if flagCategory != "" {
		c, err := model.ParseCategory(flagCategory)
		if err != nil {
			return err
		}
		cat = c
	}

	return withSession(func(_ context.Context, _ *runtime, s *chat.Session) error {
		list := pipeline.FilterByMonth(s.ListExpenses(), flagMonth)
		if cat != "" {
			list = pipeline.FilterByCategory(list, cat)
		}
		if flagSearch != "" {
			list = pipeline.FilterByDescription(list, flagSearch)
		}

		if len(list) == 0 {
			fmt.Println("\n  No expenses match.")
			return nil
		}

		rows := make([][]string, 0, len(list))
		for _, e := range list {
			rows = append(rows, []string{
				strconv.FormatInt(e.ID, 10),
				e.CreatedAt.Local().Format("2006-01-02"),
				string(e.Category),
				cli.Truncate(e.Description, 32),
				cli.FormatMoney(e.Amount),
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   fmt.Sprintf("%s expenses", formatNumber(int64(len(list)))),
			Headers: []string{"#", "Date", "Category", "Description", "Amount"},
			Rows:    rows,
		}))
		return nil
	})
}

func runAdd(_ *cobra.Command, args []string) error {
	amount, err := parseAmount(args[0])
	if err != nil {
		return err
	}
	desc := joinArgs(args[1:])

	return withSession(func(ctx context.Context, rt *runtime, s *chat.Session) error {
		cat := model.CategoryOther
		if flagCategory != "" {
			if cat, err = model.ParseCategory(flagCategory); err != nil {
				return err
			}
		} else if cat, err = categorize(ctx, rt, desc); err != nil {
			rt.log.Warn("categorize failed, using other", "error", err)
			cat = model.CategoryOther
		}

		e, err := s.RecordExpense(ctx, amount, desc, cat)
		if err != nil {
			return err
		}
		fmt.Printf("  Added #%d: %s for %s (%s)\n", e.ID, cli.FormatMoney(e.Amount), e.Description, e.Category)
		return nil
	})
}
