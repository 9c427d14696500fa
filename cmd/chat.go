package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/budgetbot/internal/chat"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat in a plain line-based prompt (default command)",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	return withSession(func(ctx context.Context, _ *runtime, s *chat.Session) error {
		return repl(ctx, s, os.Stdin, os.Stdout)
	})
}

// repl reads one message per line until EOF or a quit keyword.
func repl(ctx context.Context, s *chat.Session, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Personal Finance Assistant")
	fmt.Fprintln(out, "Type 'help' for examples, 'quit' to exit.")
	fmt.Fprintln(out)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if chat.IsQuit(line) {
			fmt.Fprintf(out, "Bot: %s\n", chat.Farewell)
			return nil
		}

		reply, err := s.ProcessMessage(ctx, line)
		if err != nil {
			reply = chat.FailureReply(err)
		}
		fmt.Fprintf(out, "Bot: %s\n\n", reply)
	}
}
