// Package cmd implements the budgetbot CLI commands.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/budgetbot/internal/budget"
	"github.com/theirongolddev/budgetbot/internal/chat"
	"github.com/theirongolddev/budgetbot/internal/classifier"
	"github.com/theirongolddev/budgetbot/internal/cli"
	"github.com/theirongolddev/budgetbot/internal/config"
	"github.com/theirongolddev/budgetbot/internal/events"
	"github.com/theirongolddev/budgetbot/internal/logging"
	"github.com/theirongolddev/budgetbot/internal/store"
)

var (
	flagConfig     string
	flagSession    string
	flagNoStore    bool
	flagClassifier string
	flagQuiet      bool
	flagVerbose    bool

	// logOutput is where logs go; nil means stderr.
	logOutput io.Writer
)

var rootCmd = &cobra.Command{
	Use:   "budgetbot",
	Short: "Conversational expense tracker",
	Long: "Track expenses, budgets and spending advice by talking about them:\n" +
		`"I spent $25 on groceries", "show my budget", "give me advice".`,
	SilenceUsage: true,
	RunE:         runChat,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Config file (default "+config.ConfigPath()+")")
	rootCmd.PersistentFlags().StringVarP(&flagSession, "session", "s", "default", "Conversation to open")
	rootCmd.PersistentFlags().BoolVar(&flagNoStore, "no-store", false, "Keep everything in memory, skip the journal")
	rootCmd.PersistentFlags().StringVar(&flagClassifier, "classifier", "", "Classifier backend: local or remote (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Only log errors")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log debug details")
}

// runtime holds what every command needs to open a session.
type runtime struct {
	cfg     config.Config
	log     *logging.Logger
	clf     classifier.Classifier
	journal *store.Journal // nil with --no-store
	events  events.Publisher
	closers []func() error
}

// loadConfig reads the config file, .env and environment overrides, then
// applies command-line flags.
func loadConfig() (config.Config, error) {
	config.LoadEnv()
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	config.ApplyEnv(&cfg)
	if flagClassifier != "" {
		cfg.Classifier.Backend = flagClassifier
	}
	if flagNoStore {
		cfg.Store.Disabled = true
	}
	return cfg, cfg.Validate()
}

func newLogger() *logging.Logger {
	level := slog.LevelWarn
	switch {
	case flagVerbose:
		level = slog.LevelDebug
	case flagQuiet:
		level = slog.LevelError
	}
	log := logging.New(logging.Options{Level: level, Output: logOutput})
	logging.SetDefault(log)
	return log
}

// openRuntime wires config, logging, the classifier, the journal and the
// event publisher. Callers must Close it.
func openRuntime() (*runtime, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	rt := &runtime{cfg: cfg, log: newLogger(), events: events.Nop{}}

	rt.clf, err = buildClassifier(cfg.Classifier, rt.log)
	if err != nil {
		return nil, err
	}

	if !cfg.Store.Disabled {
		j, err := store.Open(cfg.Store.JournalPath())
		if err != nil {
			return nil, fmt.Errorf("open journal (use --no-store to skip): %w", err)
		}
		rt.journal = j
		rt.closers = append(rt.closers, j.Close)
	}

	if cfg.Events.AMQPURL != "" {
		p, err := events.DialAMQP(cfg.Events.AMQPURL, cfg.Events.Exchange, rt.log)
		if err != nil {
			// Events are best-effort; the ledger works without a broker.
			rt.log.Warn("event publishing disabled", "error", err)
		} else {
			rt.events = p
			rt.closers = append(rt.closers, p.Close)
		}
	}
	return rt, nil
}

func buildClassifier(cfg config.ClassifierConfig, log *logging.Logger) (classifier.Classifier, error) {
	var c classifier.Classifier
	switch cfg.Backend {
	case config.BackendRemote:
		retry := classifier.DefaultRemoteRetryConfig
		retry.MaxRetries = cfg.MaxRetries
		r, err := classifier.NewRemote(cfg.ResolvedEndpoint(), cfg.APIToken, classifier.WithRetryConfig(retry))
		if err != nil {
			return nil, fmt.Errorf("remote classifier: %w", err)
		}
		c = r
	default:
		c = classifier.NewBayes()
	}
	log.Component("classifier").Debug("classifier ready", "backend", cfg.Backend, "timeout", cfg.Timeout())
	return classifier.WithTimeout(c, cfg.Timeout()), nil
}

// openSession restores id from the journal, or starts it in memory with
// the configured limits.
func (rt *runtime) openSession(ctx context.Context, id string, opts ...chat.Option) (*chat.Session, error) {
	limits, err := rt.cfg.Limits()
	if err != nil {
		return nil, err
	}
	base := []chat.Option{chat.WithLogger(rt.log), chat.WithPublisher(rt.events)}
	opts = append(base, opts...)

	if rt.journal == nil {
		opts = append([]chat.Option{chat.WithID(id), chat.WithBudget(budget.FromLimits(limits))}, opts...)
		return chat.NewSession(rt.clf, opts...), nil
	}
	return chat.Resume(ctx, rt.journal, id, rt.clf, limits, opts...)
}

func (rt *runtime) Close() error {
	var errs []error
	for i := len(rt.closers) - 1; i >= 0; i-- {
		errs = append(errs, rt.closers[i]())
	}
	return errors.Join(errs...)
}

// withSession opens the --session conversation for a one-shot command.
func withSession(fn func(ctx context.Context, rt *runtime, s *chat.Session) error) error {
	rt, err := openRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = rt.Close() }()

	ctx := context.Background()
	s, err := rt.openSession(ctx, flagSession)
	if err != nil {
		return err
	}
	return fn(ctx, rt, s)
}

func formatNumber(n int64) string {
	return cli.FormatNumber(n)
}
