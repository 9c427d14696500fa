package advisor

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/budgetbot/internal/model"
	"github.com/theirongolddev/budgetbot/internal/pipeline"
)

// Average-purchase thresholds for the purchase-size tip.
var (
	smallPurchase = decimal.NewFromInt(10)
	largePurchase = decimal.NewFromInt(100)
)

// Encouragement is returned when no other advice applies.
const Encouragement = "Great job managing your finances! Keep tracking your expenses."

// Advise builds the advice list for one month, most urgent first:
// overall standing, worst overspent category, most stretched warning
// category, purchase-size tip, top spending category. A month without
// transactions gets only Encouragement.
func Advise(report model.StatusReport, s model.MonthlySummary) []string {
	if s.Count == 0 {
		return []string{Encouragement}
	}

	var advice []string
	advice = append(advice, overallAdvice(report.Overall))

	if worst, ok := worstOverspend(report); ok {
		over := worst.Spent.Sub(worst.Budget)
		advice = append(advice, fmt.Sprintf(
			"Your '%s' spending is $%s over budget. This is your biggest overspend area.",
			worst.Category, over.StringFixed(2)))
	}

	if hot, ok := highestWarning(report); ok {
		advice = append(advice, fmt.Sprintf(
			"Watch your '%s' spending - you're at %.1f%% of budget.",
			hot.Category, hot.PercentUsed))
	}

	switch {
	case s.Average.LessThan(smallPurchase):
		advice = append(advice, "Tip: You make many small purchases. Consider bulk buying for items like groceries to save money.")
	case s.Average.GreaterThan(largePurchase):
		advice = append(advice, "Tip: You tend to make large purchases. Consider waiting 24 hours before big buys to avoid impulse spending.")
	}

	if top, ok := pipeline.TopCategory(s); ok {
		advice = append(advice, fmt.Sprintf(
			"Your highest spending category is '%s' at $%s.",
			top.Category, top.Amount.StringFixed(2)))
	}

	if len(advice) == 0 {
		return []string{Encouragement}
	}
	return advice
}

func overallAdvice(o model.BudgetStatus) string {
	switch o.Level {
	case model.StatusOverBudget:
		return fmt.Sprintf("You're over budget by $%s. Consider reducing spending in your highest categories.",
			o.Spent.Sub(o.Budget).StringFixed(2))
	case model.StatusWarning:
		return fmt.Sprintf("You've used %.1f%% of your budget. Be mindful of remaining expenses this month.",
			o.PercentUsed)
	default:
		return fmt.Sprintf("Good job! You're at %.1f%% of your budget with $%s remaining.",
			o.PercentUsed, o.Remaining.StringFixed(2))
	}
}

// worstOverspend picks the over-budget category with the largest overspend.
// The first one in display order wins a tie.
func worstOverspend(r model.StatusReport) (model.CategoryStatus, bool) {
	var worst model.CategoryStatus
	var worstOver decimal.Decimal
	found := false
	for _, cs := range r.Categories {
		if cs.Level != model.StatusOverBudget {
			continue
		}
		over := cs.Spent.Sub(cs.Budget)
		if !found || over.GreaterThan(worstOver) {
			worst, worstOver, found = cs, over, true
		}
	}
	return worst, found
}

// highestWarning picks the warning category with the highest usage.
func highestWarning(r model.StatusReport) (model.CategoryStatus, bool) {
	var hot model.CategoryStatus
	found := false
	for _, cs := range r.Categories {
		if cs.Level != model.StatusWarning {
			continue
		}
		if !found || cs.PercentUsed > hot.PercentUsed {
			hot, found = cs, true
		}
	}
	return hot, found
}
