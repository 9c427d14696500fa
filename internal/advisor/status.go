// Package advisor evaluates spending against the budget and turns the result
// into plain-language advice.
package advisor

import (
	"github.com/shopspring/decimal"
	"github.com/theirongolddev/budgetbot/internal/budget"
	"github.com/theirongolddev/budgetbot/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Evaluate reports every category of b against the spend in s, plus the
// overall line computed from the month total and the budget total.
// Categories without spend report as good with zero spent.
func Evaluate(s model.MonthlySummary, b *budget.Budget) model.StatusReport {
	report := model.StatusReport{
		Month:      s.Month,
		Categories: make([]model.CategoryStatus, 0, len(model.Categories)),
	}
	for _, c := range model.Categories {
		spent := s.ByCategory[c]
		report.Categories = append(report.Categories, model.CategoryStatus{
			Category:     c,
			BudgetStatus: Status(spent, b.Limit(c)),
		})
	}
	report.Overall = Status(s.Total, b.Total())
	return report
}

// Status classifies spent against limit. The percentage is zero when the
// limit is zero.
func Status(spent, limit decimal.Decimal) model.BudgetStatus {
	st := model.BudgetStatus{
		Budget:    limit,
		Spent:     spent,
		Remaining: limit.Sub(spent),
	}
	if !limit.IsZero() {
		st.PercentUsed = spent.Div(limit).Mul(hundred).InexactFloat64()
	}

	switch {
	case spent.GreaterThan(limit):
		st.Level = model.StatusOverBudget
	case st.PercentUsed > model.WarningPercent:
		st.Level = model.StatusWarning
	default:
		st.Level = model.StatusGood
	}
	return st
}
