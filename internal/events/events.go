// Package events publishes ledger and budget changes to interested
// consumers: a message broker, the HTTP event stream, or nothing at all.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/budgetbot/internal/model"
)

// Type names an event kind. It doubles as the broker routing key.
type Type string

const (
	ExpenseRecorded Type = "expense.recorded"
	BudgetChanged   Type = "budget.changed"
)

// Event is one change notification.
type Event struct {
	Type      Type                               `json:"type"`
	SessionID string                             `json:"session_id"`
	Expense   *model.Expense                     `json:"expense,omitempty"`
	Limits    map[model.Category]decimal.Decimal `json:"limits,omitempty"`
	Total     *decimal.Decimal                   `json:"total,omitempty"`
	At        time.Time                          `json:"at"`
}

// NewExpenseEvent builds an ExpenseRecorded event.
func NewExpenseEvent(sessionID string, e model.Expense) Event {
	return Event{Type: ExpenseRecorded, SessionID: sessionID, Expense: &e, At: time.Now()}
}

// NewBudgetEvent builds a BudgetChanged event.
func NewBudgetEvent(sessionID string, limits map[model.Category]decimal.Decimal, total decimal.Decimal) Event {
	return Event{Type: BudgetChanged, SessionID: sessionID, Limits: limits, Total: &total, At: time.Now()}
}

// ToJSON encodes the event.
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// FromJSON decodes an event.
func FromJSON(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

// Publisher delivers events.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, Event) error { return nil }

// Multi fans an event out to several publishers. Every publisher is tried;
// failures are joined.
type Multi []Publisher

// Publish delivers e to each publisher in order.
func (m Multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
