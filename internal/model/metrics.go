package model

import "github.com/shopspring/decimal"

// MonthlySummary aggregates one month of expenses.
type MonthlySummary struct {
	Month      string                       `json:"month"`
	Total      decimal.Decimal              `json:"total"`
	ByCategory map[Category]decimal.Decimal `json:"by_category"`
	Count      int                          `json:"count"`
	Average    decimal.Decimal              `json:"average"`
}

// CategoryShare is one row of a spending breakdown.
type CategoryShare struct {
	Category Category
	Amount   decimal.Decimal
	Percent  float64
}
