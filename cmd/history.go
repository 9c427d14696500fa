package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/budgetbot/internal/chat"
	"github.com/theirongolddev/budgetbot/internal/cli"
	"github.com/theirongolddev/budgetbot/internal/model"
)

var flagLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversation turns",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&flagLimit, "limit", "l", 20, "Number of turns to show (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(_ *cobra.Command, _ []string) error {
	return withSession(func(_ context.Context, _ *runtime, s *chat.Session) error {
		turns := s.History()
		if flagLimit > 0 && len(turns) > flagLimit {
			turns = turns[len(turns)-flagLimit:]
		}
		if len(turns) == 0 {
			fmt.Println("\n  No conversation yet.")
			return nil
		}

		rows := make([][]string, 0, len(turns))
		for _, t := range turns {
			tag := "Bot"
			detail := ""
			if t.Speaker == model.SpeakerUser {
				tag = "You"
				detail = fmt.Sprintf("%s %s", t.Intent, cli.FormatPercent(t.Confidence*100))
			}
			rows = append(rows, []string{
				t.At.Local().Format("01-02 15:04"),
				tag,
				cli.Truncate(firstLine(t.Text), 48),
				detail,
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Conversation " + s.ID(),
			Headers: []string{"When", "Who", "Message", "Intent"},
			Rows:    rows,
		}))
		return nil
	})
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			return s[:i]
		}
	}
	return s
}
