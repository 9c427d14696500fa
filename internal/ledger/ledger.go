// Package ledger is the append-only expense log.
package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/budgetbot/internal/model"
	"github.com/theirongolddev/budgetbot/internal/pipeline"
)

// Ledger records expenses in arrival order. IDs start at 1 and are never
// reused. A Ledger is not safe for concurrent use.
type Ledger struct {
	expenses []model.Expense
	nextID   int64
	now      func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New returns an empty ledger.
func New(opts ...Option) *Ledger {
	l := &Ledger{nextID: 1, now: time.Now}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Restore rebuilds a ledger from previously recorded expenses, e.g. from the
// journal. Expenses are kept in ID order and new IDs continue after the
// highest one seen.
func Restore(expenses []model.Expense, opts ...Option) *Ledger {
	l := New(opts...)
	for _, e := range expenses {
		l.expenses = append(l.expenses, e)
		if e.ID >= l.nextID {
			l.nextID = e.ID + 1
		}
	}
	return l
}

// Record appends a new expense. The amount is rounded to cents and must
// still be positive; an unknown or empty category is recorded as "other".
func (l *Ledger) Record(amount decimal.Decimal, description string, category model.Category) (model.Expense, error) {
	if !amount.Round(2).IsPositive() {
		return model.Expense{}, fmt.Errorf("record expense: %w: %s", model.ErrInvalidAmount, amount)
	}
	if !category.Valid() {
		category = model.CategoryOther
	}

	at := l.now()
	e := model.Expense{
		ID:          l.nextID,
		Amount:      amount.Round(2),
		Description: strings.TrimSpace(description),
		Category:    category,
		CreatedAt:   at,
		Month:       model.MonthKey(at),
	}
	l.nextID++
	l.expenses = append(l.expenses, e)
	return e, nil
}

// MonthlySummary aggregates the given month. An empty month means the
// current one.
func (l *Ledger) MonthlySummary(month string) model.MonthlySummary {
	if month == "" {
		month = l.CurrentMonth()
	}
	return pipeline.Summarize(l.expenses, month)
}

// CurrentMonth returns the month key for the ledger clock's "now".
func (l *Ledger) CurrentMonth() string {
	return model.MonthKey(l.now())
}

// List returns a copy of every expense, oldest first.
func (l *Ledger) List() []model.Expense {
	out := make([]model.Expense, len(l.expenses))
	copy(out, l.expenses)
	return out
}

// Len returns the number of recorded expenses.
func (l *Ledger) Len() int {
	return len(l.expenses)
}
