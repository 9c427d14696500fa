package model

import "github.com/shopspring/decimal"

// StatusLevel tags how a budget line is tracking.
type StatusLevel string

const (
	StatusGood       StatusLevel = "good"
	StatusWarning    StatusLevel = "warning"
	StatusOverBudget StatusLevel = "over_budget"
)

// WarningPercent is the usage above which a line is flagged as a warning.
const WarningPercent = 80.0

// BudgetStatus holds spend against a single limit, either one category or
// the whole budget.
type BudgetStatus struct {
	Budget      decimal.Decimal `json:"budget"`
	Spent       decimal.Decimal `json:"spent"`
	Remaining   decimal.Decimal `json:"remaining"`
	PercentUsed float64         `json:"percentage_used"`
	Level       StatusLevel     `json:"status"`
}

// CategoryStatus is a BudgetStatus attached to its category.
type CategoryStatus struct {
	Category Category `json:"category"`
	BudgetStatus
}

// StatusReport is the evaluator output: one entry per category in display
// order plus the overall line.
type StatusReport struct {
	Month      string           `json:"month"`
	Categories []CategoryStatus `json:"categories"`
	Overall    BudgetStatus     `json:"overall"`
}

// Category returns the status for c. The zero value is returned for
// categories missing from the report.
func (r StatusReport) Category(c Category) CategoryStatus {
	for _, cs := range r.Categories {
		if cs.Category == c {
			return cs
		}
	}
	return CategoryStatus{Category: c}
}
