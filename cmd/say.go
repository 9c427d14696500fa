package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/budgetbot/internal/chat"
)

var sayCmd = &cobra.Command{
	Use:   "say <message>",
	Short: "Send one message and print the reply",
	Example: `  budgetbot say "I spent $25 on groceries"
  budgetbot say show my budget`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSay,
}

func init() {
	rootCmd.AddCommand(sayCmd)
}

func runSay(_ *cobra.Command, args []string) error {
	return withSession(func(ctx context.Context, _ *runtime, s *chat.Session) error {
		reply, err := s.ProcessMessage(ctx, strings.Join(args, " "))
		if err != nil {
			fmt.Println(chat.FailureReply(err))
			return err
		}
		fmt.Println(reply)
		return nil
	})
}
