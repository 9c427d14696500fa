// Package budget holds the per-category spending limits.
package budget

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/budgetbot/internal/model"
)

// DefaultLimits returns the starting monthly limit for every category.
func DefaultLimits() map[model.Category]decimal.Decimal {
	return map[model.Category]decimal.Decimal{
		model.CategoryFoodDining:     decimal.NewFromInt(500),
		model.CategoryTransportation: decimal.NewFromInt(300),
		model.CategoryShopping:       decimal.NewFromInt(400),
		model.CategoryEntertainment:  decimal.NewFromInt(200),
		model.CategoryUtilitiesBills: decimal.NewFromInt(250),
		model.CategoryHealthcare:     decimal.NewFromInt(150),
		model.CategoryEducation:      decimal.NewFromInt(100),
		model.CategoryTravel:         decimal.NewFromInt(300),
		model.CategoryOther:          decimal.NewFromInt(200),
	}
}

// Budget maps every category to a non-negative monthly limit. The total is
// derived from the limits after each change and cannot be set on its own.
// A Budget is not safe for concurrent use.
type Budget struct {
	limits map[model.Category]decimal.Decimal
	total  decimal.Decimal
}

// New returns a budget seeded with DefaultLimits.
func New() *Budget {
	return FromLimits(DefaultLimits())
}

// FromLimits builds a budget from an explicit limit table. Categories missing
// from limits start at zero; unknown categories and negative amounts are
// ignored.
func FromLimits(limits map[model.Category]decimal.Decimal) *Budget {
	b := &Budget{limits: make(map[model.Category]decimal.Decimal, len(model.Categories))}
	for _, c := range model.Categories {
		amt, ok := limits[c]
		if !ok || amt.IsNegative() {
			amt = decimal.Zero
		}
		b.limits[c] = amt
	}
	b.recompute()
	return b
}

// SetLimit replaces the limit for one category.
func (b *Budget) SetLimit(c model.Category, amount decimal.Decimal) error {
	if !c.Valid() {
		return fmt.Errorf("set limit: %w: %q", model.ErrUnknownCategory, c)
	}
	if amount.IsNegative() {
		return fmt.Errorf("set limit for %s: %w: %s", c, model.ErrInvalidAmount, amount)
	}
	b.limits[c] = amount.Round(2)
	b.recompute()
	return nil
}

// Limit returns the limit for c, or zero for unknown categories.
func (b *Budget) Limit(c model.Category) decimal.Decimal {
	return b.limits[c]
}

// Total returns the sum of all category limits.
func (b *Budget) Total() decimal.Decimal {
	return b.total
}

// Limits returns a copy of the limit table.
func (b *Budget) Limits() map[model.Category]decimal.Decimal {
	out := make(map[model.Category]decimal.Decimal, len(b.limits))
	for c, amt := range b.limits {
		out[c] = amt
	}
	return out
}

// Redistribute scales every category so the limits sum to total, keeping
// their current proportions. When every limit is zero the total is split
// evenly. Shares are floored to the cent and the leftover cents go one at a
// time to the largest remainders, so no limit can drop below zero.
func (b *Budget) Redistribute(total decimal.Decimal) error {
	if total.IsNegative() {
		return fmt.Errorf("redistribute: %w: %s", model.ErrInvalidAmount, total)
	}
	cents := total.Round(2).Shift(2)

	weights := make(map[model.Category]decimal.Decimal, len(model.Categories))
	sumWeights := decimal.Zero
	for _, c := range model.Categories {
		w := b.limits[c]
		if b.total.IsZero() {
			w = decimal.NewFromInt(1)
		}
		weights[c] = w
		sumWeights = sumWeights.Add(w)
	}

	floors := make(map[model.Category]decimal.Decimal, len(model.Categories))
	remainders := make(map[model.Category]decimal.Decimal, len(model.Categories))
	assigned := decimal.Zero
	for _, c := range model.Categories {
		q, r := cents.Mul(weights[c]).QuoRem(sumWeights, 0)
		floors[c] = q
		remainders[c] = r
		assigned = assigned.Add(q)
	}

	order := slices.Clone(model.Categories)
	slices.SortStableFunc(order, func(x, y model.Category) int {
		return remainders[y].Cmp(remainders[x])
	})
	left := cents.Sub(assigned).IntPart()
	for i := int64(0); i < left; i++ {
		c := order[i%int64(len(order))]
		floors[c] = floors[c].Add(decimal.NewFromInt(1))
	}

	shares := make(map[model.Category]decimal.Decimal, len(model.Categories))
	for _, c := range model.Categories {
		shares[c] = floors[c].Shift(-2)
	}
	b.limits = shares
	b.recompute()
	return nil
}

func (b *Budget) recompute() {
	sum := decimal.Zero
	for _, amt := range b.limits {
		sum = sum.Add(amt)
	}
	b.total = sum
}
