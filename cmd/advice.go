package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/budgetbot/internal/chat"
	"github.com/theirongolddev/budgetbot/internal/cli"
)

var adviceCmd = &cobra.Command{
	Use:   "advice",
	Short: "Personalized spending advice",
	RunE:  runAdvice,
}

func init() {
	adviceCmd.Flags().StringVar(&flagMonth, "month", "", "Month to advise on as YYYY-MM (default current)")
	rootCmd.AddCommand(adviceCmd)
}

func runAdvice(_ *cobra.Command, _ []string) error {
	if err := checkMonth(flagMonth); err != nil {
		return err
	}
	return withSession(func(_ context.Context, _ *runtime, s *chat.Session) error {
		fmt.Println()
		fmt.Println(cli.RenderTitle("ADVICE"))
		fmt.Println()
		for _, a := range s.SpendingAdvice(flagMonth) {
			fmt.Printf("  • %s\n", a)
		}
		fmt.Println()
		return nil
	})
}
