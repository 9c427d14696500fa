package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Intent is the classified purpose of a user message.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentAddExpense
	IntentViewBudget
	IntentGetAdvice
	IntentCategorizeSpending
	IntentSetBudget
	IntentAnalyzeTrends
	IntentGreeting
	IntentHelp
)

// Intents lists the classifiable intents in candidate order. IntentUnknown
// is the fallback and is never offered to a classifier.
var Intents = []Intent{
	IntentAddExpense,
	IntentViewBudget,
	IntentGetAdvice,
	IntentCategorizeSpending,
	IntentSetBudget,
	IntentAnalyzeTrends,
	IntentGreeting,
	IntentHelp,
}

var intentNames = map[Intent]string{
	IntentUnknown:            "unknown",
	IntentAddExpense:         "add_expense",
	IntentViewBudget:         "view_budget",
	IntentGetAdvice:          "get_advice",
	IntentCategorizeSpending: "categorize_spending",
	IntentSetBudget:          "set_budget",
	IntentAnalyzeTrends:      "analyze_trends",
	IntentGreeting:           "greeting",
	IntentHelp:               "help",
}

func (i Intent) String() string {
	if s, ok := intentNames[i]; ok {
		return s
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (i Intent) MarshalText() ([]byte, error) {
	return []byte(i.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Intent) UnmarshalText(b []byte) error {
	*i = ParseIntent(string(b))
	return nil
}

// ParseIntent maps a label back to its Intent, or IntentUnknown.
func ParseIntent(s string) Intent {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range intentNames {
		if name == s {
			return i
		}
	}
	return IntentUnknown
}

// IntentLabels returns the classifier candidate labels, in order.
func IntentLabels() []string {
	out := make([]string, len(Intents))
	for i, in := range Intents {
		out[i] = in.String()
	}
	return out
}

// Entities holds the values pulled out of a message. Absent values are nil.
type Entities struct {
	Amount         *decimal.Decimal `json:"amount,omitempty"`
	Description    string           `json:"description,omitempty"`
	Category       *Category        `json:"category,omitempty"`
	BudgetAmount   *decimal.Decimal `json:"budget_amount,omitempty"`
	BudgetCategory *Category        `json:"budget_category,omitempty"`
}

// ClassifiedIntent is the extractor's verdict for one message.
type ClassifiedIntent struct {
	Intent     Intent   `json:"intent"`
	Confidence float64  `json:"confidence"`
	Entities   Entities `json:"entities"`
}
