// Package pipeline aggregates expense records into summaries and breakdowns.
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/budgetbot/internal/model"
)

// Summarize computes the monthly summary for expenses falling in month.
// An empty month yields a zero-valued summary.
func Summarize(expenses []model.Expense, month string) model.MonthlySummary {
	filtered := FilterByMonth(expenses, month)

	s := model.MonthlySummary{
		Month:      month,
		Total:      decimal.Zero,
		ByCategory: make(map[model.Category]decimal.Decimal),
		Average:    decimal.Zero,
	}
	for _, e := range filtered {
		s.Total = s.Total.Add(e.Amount)
		s.ByCategory[e.Category] = s.ByCategory[e.Category].Add(e.Amount)
		s.Count++
	}

	if s.Count > 0 {
		s.Average = s.Total.Div(decimal.NewFromInt(int64(s.Count)))
	}
	return s
}

// Breakdown returns every category with nonzero spend in s, sorted by
// amount descending, with its share of the month total. Ties keep category
// display order.
func Breakdown(s model.MonthlySummary) []model.CategoryShare {
	var shares []model.CategoryShare
	for _, c := range model.Categories {
		amt, ok := s.ByCategory[c]
		if !ok || !amt.IsPositive() {
			continue
		}
		var pct float64
		if s.Total.IsPositive() {
			pct = amt.Div(s.Total).Mul(decimal.NewFromInt(100)).InexactFloat64()
		}
		shares = append(shares, model.CategoryShare{Category: c, Amount: amt, Percent: pct})
	}

	sort.SliceStable(shares, func(i, j int) bool {
		return shares[i].Amount.GreaterThan(shares[j].Amount)
	})
	return shares
}

// TopCategory returns the category with the largest spend in s. ok is false
// when nothing was spent.
func TopCategory(s model.MonthlySummary) (model.CategoryShare, bool) {
	shares := Breakdown(s)
	if len(shares) == 0 {
		return model.CategoryShare{}, false
	}
	return shares[0], true
}

// CountByCategory returns how many expenses in month fall in each category.
func CountByCategory(expenses []model.Expense, month string) map[model.Category]int {
	counts := make(map[model.Category]int)
	for _, e := range FilterByMonth(expenses, month) {
		counts[e.Category]++
	}
	return counts
}

// AggregateDays returns per-day totals for every day of month, oldest first.
// Days without expenses are zero so charts show gaps.
func AggregateDays(expenses []model.Expense, month string) []decimal.Decimal {
	start, err := time.ParseInLocation(model.MonthKeyLayout, month, time.Local)
	if err != nil {
		return nil
	}
	days := start.AddDate(0, 1, -1).Day()
	totals := make([]decimal.Decimal, days)
	for i := range totals {
		totals[i] = decimal.Zero
	}

	for _, e := range FilterByMonth(expenses, month) {
		d := e.CreatedAt.Local().Day() - 1
		if d < 0 || d >= days {
			continue
		}
		totals[d] = totals[d].Add(e.Amount)
	}
	return totals
}

// FilterByMonth returns expenses whose month key equals month. An empty
// month matches everything.
func FilterByMonth(expenses []model.Expense, month string) []model.Expense {
	if month == "" {
		return expenses
	}
	var result []model.Expense
	for _, e := range expenses {
		if e.Month == month {
			result = append(result, e)
		}
	}
	return result
}

// FilterByCategory returns expenses in category c. An empty c matches
// everything.
func FilterByCategory(expenses []model.Expense, c model.Category) []model.Expense {
	if c == "" {
		return expenses
	}
	var result []model.Expense
	for _, e := range expenses {
		if e.Category == c {
			result = append(result, e)
		}
	}
	return result
}

// FilterByDescription returns expenses whose description contains substr.
func FilterByDescription(expenses []model.Expense, substr string) []model.Expense {
	if substr == "" {
		return expenses
	}
	var result []model.Expense
	for _, e := range expenses {
		if containsIgnoreCase(e.Description, substr) {
			result = append(result, e)
		}
	}
	return result
}

func containsIgnoreCase(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
