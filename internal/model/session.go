package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthKeyLayout is the time layout for month keys ("2024-03").
const MonthKeyLayout = "2006-01"

// MonthKey returns the calendar-month bucket for t.
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// Expense is one recorded purchase. Immutable once created.
type Expense struct {
	ID          int64           `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	CreatedAt   time.Time       `json:"created_at"`
	Month       string          `json:"month"`
}

// Speaker identifies who produced a conversation turn.
type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerBot  Speaker = "bot"
)

// Turn is one entry in the conversation history.
type Turn struct {
	Speaker    Speaker   `json:"speaker"`
	Text       string    `json:"text"`
	Intent     Intent    `json:"intent,omitempty"`
	Confidence float64   `json:"confidence,omitempty"`
	At         time.Time `json:"at"`
}
