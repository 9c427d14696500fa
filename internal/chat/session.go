// Package chat is the dialogue layer: a Session owns one conversation's
// ledger and budget and answers free-text messages about them.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/budgetbot/internal/advisor"
	"github.com/theirongolddev/budgetbot/internal/budget"
	"github.com/theirongolddev/budgetbot/internal/classifier"
	"github.com/theirongolddev/budgetbot/internal/events"
	"github.com/theirongolddev/budgetbot/internal/intent"
	"github.com/theirongolddev/budgetbot/internal/ledger"
	"github.com/theirongolddev/budgetbot/internal/logging"
	"github.com/theirongolddev/budgetbot/internal/model"
	"github.com/theirongolddev/budgetbot/internal/pipeline"
)

// Journal receives a write-through copy of every change.
type Journal interface {
	SaveExpense(ctx context.Context, sessionID string, e model.Expense) error
	SaveLimits(ctx context.Context, sessionID string, limits map[model.Category]decimal.Decimal) error
	AppendTurn(ctx context.Context, sessionID string, t model.Turn) error
}

// Reply is the outcome of one processed message.
type Reply struct {
	Text       string                 `json:"reply"`
	Classified model.ClassifiedIntent `json:"classified"`
}

// Session is one conversation. It is the only writer of its ledger and
// budget; sessions never share state. Calls are serialised, so each message
// finishes before the next one starts.
type Session struct {
	id        string
	extractor *intent.Extractor
	journal   Journal
	events    events.Publisher
	log       *logging.Logger
	now       func() time.Time

	// seed is replayed into the ledger when none is injected.
	seed []model.Expense

	mu      sync.Mutex
	ledger  *ledger.Ledger
	budget  *budget.Budget
	history []model.Turn
}

// Option configures a Session.
type Option func(*Session)

// WithID sets the session id. The default is a random UUID.
func WithID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithLedger starts the session from an existing ledger.
func WithLedger(l *ledger.Ledger) Option {
	return func(s *Session) { s.ledger = l }
}

// withExpenses replays previously recorded expenses into the session's
// ledger. WithLedger takes precedence.
func withExpenses(expenses []model.Expense) Option {
	return func(s *Session) { s.seed = expenses }
}

// WithBudget starts the session from an existing budget.
func WithBudget(b *budget.Budget) Option {
	return func(s *Session) { s.budget = b }
}

// WithHistory seeds the conversation history.
func WithHistory(turns []model.Turn) Option {
	return func(s *Session) { s.history = append([]model.Turn(nil), turns...) }
}

// WithJournal persists changes through j.
func WithJournal(j Journal) Option {
	return func(s *Session) { s.journal = j }
}

// WithPublisher announces changes through p.
func WithPublisher(p events.Publisher) Option {
	return func(s *Session) { s.events = p }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithClock overrides the turn timestamp source. It does not affect an
// injected ledger.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession creates a conversation backed by clf.
func NewSession(clf classifier.Classifier, opts ...Option) *Session {
	s := &Session{
		extractor: intent.NewExtractor(clf),
		events:    events.Nop{},
		now:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.id == "" {
		s.id = uuid.NewString()
	}
	if s.log == nil {
		s.log = logging.Discard()
	}
	s.log = s.log.Component("chat").With("session", s.id)
	if s.ledger == nil {
		s.ledger = ledger.Restore(s.seed, ledger.WithClock(s.now))
	}
	s.seed = nil
	if s.budget == nil {
		s.budget = budget.New()
	}
	return s
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// ProcessMessage answers one user message. A classifier failure is
// returned as an error matching classifier.ErrUnavailable; the session
// is unchanged apart from the history and stays usable.
func (s *Session) ProcessMessage(ctx context.Context, text string) (string, error) {
	r, err := s.Process(ctx, text)
	return r.Text, err
}

// Process is ProcessMessage that also returns the classification.
func (s *Session) Process(ctx context.Context, text string) (Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	text = strings.TrimSpace(text)
	ci, err := s.extractor.Extract(ctx, text)
	if err != nil {
		s.appendTurn(ctx, model.Turn{Speaker: model.SpeakerUser, Text: text, Intent: model.IntentUnknown, At: s.now()})
		s.log.WarnContext(ctx, "classification failed", "error", err)
		return Reply{}, fmt.Errorf("process message: %w", err)
	}
	s.log.DebugContext(ctx, "classified",
		"intent", ci.Intent,
		"confidence", ci.Confidence)

	s.appendTurn(ctx, model.Turn{
		Speaker:    model.SpeakerUser,
		Text:       text,
		Intent:     ci.Intent,
		Confidence: ci.Confidence,
		At:         s.now(),
	})
	reply := s.respond(ctx, ci)
	s.appendTurn(ctx, model.Turn{Speaker: model.SpeakerBot, Text: reply, At: s.now()})

	return Reply{Text: reply, Classified: ci}, nil
}

func (s *Session) respond(ctx context.Context, ci model.ClassifiedIntent) string {
	switch ci.Intent {
	case model.IntentGreeting:
		return greetingReply
	case model.IntentHelp:
		return helpReply
	case model.IntentAddExpense:
		return s.addExpenseReply(ctx, ci.Entities)
	case model.IntentViewBudget:
		summary := s.ledger.MonthlySummary("")
		return renderBudget(summary, advisor.Evaluate(summary, s.budget))
	case model.IntentGetAdvice:
		return renderAdvice(s.advice(""))
	case model.IntentCategorizeSpending:
		summary := s.ledger.MonthlySummary("")
		return renderCategories(summary, pipeline.CountByCategory(s.ledger.List(), summary.Month))
	case model.IntentSetBudget:
		return s.setBudgetReply(ctx, ci.Entities)
	case model.IntentAnalyzeTrends:
		return renderTrends(s.ledger.MonthlySummary(""))
	case model.IntentUnknown:
		return fallbackReply
	}
	return fallbackReply
}

func (s *Session) addExpenseReply(ctx context.Context, ent model.Entities) string {
	if ent.Amount == nil || ent.Description == "" {
		return incompleteExpenseReply
	}
	category := model.CategoryOther
	if ent.Category != nil {
		category = *ent.Category
	}

	e, err := s.record(ctx, *ent.Amount, ent.Description, category)
	if err != nil {
		if errors.Is(err, model.ErrInvalidAmount) {
			return "The expense amount must be greater than zero. Please try: 'I spent $50 on groceries'"
		}
		return incompleteExpenseReply
	}

	total := s.ledger.MonthlySummary("").Total
	return fmt.Sprintf("Added expense: $%s for %s (Category: %s)\n\nYour current month total is now $%s",
		e.Amount.StringFixed(2), e.Description, e.Category, total.StringFixed(2))
}

func (s *Session) setBudgetReply(ctx context.Context, ent model.Entities) string {
	if ent.BudgetAmount == nil {
		return missingBudgetReply
	}
	amount := *ent.BudgetAmount

	if ent.BudgetCategory != nil {
		c := *ent.BudgetCategory
		old := s.budget.Limit(c)
		if err := s.setLimit(ctx, c, amount); err != nil {
			return missingBudgetReply
		}
		return fmt.Sprintf("Updated %s budget from $%s to $%s. Your total monthly budget is now $%s",
			c, old.StringFixed(2), s.budget.Limit(c).StringFixed(2), s.budget.Total().StringFixed(2))
	}

	if err := s.redistribute(ctx, amount); err != nil {
		return missingBudgetReply
	}
	return fmt.Sprintf("Updated your total monthly budget to $%s. Category limits were scaled to match; say 'show my budget' to review them.",
		s.budget.Total().StringFixed(2))
}

// RecordExpense adds an expense directly, bypassing classification.
func (s *Session) RecordExpense(ctx context.Context, amount decimal.Decimal, description string, category model.Category) (model.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record(ctx, amount, description, category)
}

// MonthlySummary aggregates month, or the current month when empty.
func (s *Session) MonthlySummary(month string) model.MonthlySummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.MonthlySummary(month)
}

// BudgetStatus evaluates month, or the current month when empty.
func (s *Session) BudgetStatus(month string) model.StatusReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return advisor.Evaluate(s.ledger.MonthlySummary(month), s.budget)
}

// SpendingAdvice returns the advice list for month, or the current month
// when empty.
func (s *Session) SpendingAdvice(month string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advice(month)
}

// SetCategoryBudget changes one category limit.
func (s *Session) SetCategoryBudget(ctx context.Context, c model.Category, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLimit(ctx, c, amount)
}

// SetTotalBudget rescales every category limit so they sum to amount.
func (s *Session) SetTotalBudget(ctx context.Context, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.redistribute(ctx, amount)
}

// Limits returns a copy of the budget limits.
func (s *Session) Limits() map[model.Category]decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.budget.Limits()
}

// ListExpenses returns every recorded expense, oldest first.
func (s *Session) ListExpenses() []model.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.List()
}

// History returns a copy of the conversation so far.
func (s *Session) History() []model.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Turn(nil), s.history...)
}

func (s *Session) advice(month string) []string {
	summary := s.ledger.MonthlySummary(month)
	return advisor.Advise(advisor.Evaluate(summary, s.budget), summary)
}

func (s *Session) record(ctx context.Context, amount decimal.Decimal, description string, category model.Category) (model.Expense, error) {
	e, err := s.ledger.Record(amount, description, category)
	if err != nil {
		return model.Expense{}, err
	}
	s.log.InfoContext(ctx, "expense recorded",
		"id", e.ID,
		"amount", e.Amount.StringFixed(2),
		"category", e.Category)

	if s.journal != nil {
		if err := s.journal.SaveExpense(ctx, s.id, e); err != nil {
			s.log.WarnContext(ctx, "journal write failed", "error", err)
		}
	}
	s.publish(ctx, events.NewExpenseEvent(s.id, e))
	return e, nil
}

func (s *Session) setLimit(ctx context.Context, c model.Category, amount decimal.Decimal) error {
	if err := s.budget.SetLimit(c, amount); err != nil {
		return err
	}
	s.budgetChanged(ctx)
	return nil
}

func (s *Session) redistribute(ctx context.Context, total decimal.Decimal) error {
	if err := s.budget.Redistribute(total); err != nil {
		return err
	}
	s.budgetChanged(ctx)
	return nil
}

func (s *Session) budgetChanged(ctx context.Context) {
	limits := s.budget.Limits()
	if s.journal != nil {
		if err := s.journal.SaveLimits(ctx, s.id, limits); err != nil {
			s.log.WarnContext(ctx, "journal write failed", "error", err)
		}
	}
	s.publish(ctx, events.NewBudgetEvent(s.id, limits, s.budget.Total()))
}

func (s *Session) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.WarnContext(ctx, "publish failed", "type", e.Type, "error", err)
	}
}

func (s *Session) appendTurn(ctx context.Context, t model.Turn) {
	s.history = append(s.history, t)
	if s.journal != nil {
		if err := s.journal.AppendTurn(ctx, s.id, t); err != nil {
			s.log.WarnContext(ctx, "journal write failed", "error", err)
		}
	}
}
