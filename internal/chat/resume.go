package chat

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/budgetbot/internal/budget"
	"github.com/theirongolddev/budgetbot/internal/classifier"
	"github.com/theirongolddev/budgetbot/internal/model"
)

// Archive reads back what a Journal wrote.
type Archive interface {
	Expenses(ctx context.Context, sessionID string) ([]model.Expense, error)
	Limits(ctx context.Context, sessionID string) (map[model.Category]decimal.Decimal, bool, error)
	Turns(ctx context.Context, sessionID string, limit int) ([]model.Turn, error)
}

// Store is an Archive that is also a Journal.
type Store interface {
	Journal
	Archive
}

// historyTail bounds how much history a resumed session loads.
const historyTail = 200

// Resume rebuilds session id from st and keeps writing through to it.
// When st has no saved limits, defaults are used and written back. The
// restored ledger follows the session clock; a WithLedger option replaces it.
func Resume(ctx context.Context, st Store, id string, clf classifier.Classifier, defaults map[model.Category]decimal.Decimal, opts ...Option) (*Session, error) {
	expenses, err := st.Expenses(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resume %s: load expenses: %w", id, err)
	}
	limits, ok, err := st.Limits(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resume %s: load limits: %w", id, err)
	}
	if !ok {
		limits = defaults
		if limits == nil {
			limits = budget.DefaultLimits()
		}
		if err := st.SaveLimits(ctx, id, limits); err != nil {
			return nil, fmt.Errorf("resume %s: save default limits: %w", id, err)
		}
	}
	turns, err := st.Turns(ctx, id, historyTail)
	if err != nil {
		return nil, fmt.Errorf("resume %s: load history: %w", id, err)
	}

	base := []Option{
		WithID(id),
		WithHistory(turns),
		WithJournal(st),
		WithBudget(budget.FromLimits(limits)),
		withExpenses(expenses),
	}
	return NewSession(clf, append(base, opts...)...), nil
}
