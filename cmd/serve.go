package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/budgetbot/internal/chat"
	"github.com/theirongolddev/budgetbot/internal/server"
)

var (
	flagServeAddr    string
	flagEventsBuffer int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve chat sessions over HTTP with an SSE event stream",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.Flags().IntVar(&flagEventsBuffer, "events-buffer", 200, "Max in-memory events retained")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	addr := rt.cfg.Server.Addr
	if flagServeAddr != "" {
		addr = flagServeAddr
	}

	factory := func(ctx context.Context, id string, opts ...chat.Option) (*chat.Session, error) {
		return rt.openSession(ctx, id, opts...)
	}
	svc := server.New(server.Config{
		Addr:         addr,
		EventsBuffer: flagEventsBuffer,
		Publisher:    rt.events,
	}, factory, rt.log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "  budgetbot serving on http://%s\n", addr)
	return svc.Run(ctx)
}
