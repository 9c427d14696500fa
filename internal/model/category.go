package model

import (
	"errors"
	"fmt"
	"strings"
)

// Category is a spending bucket drawn from a fixed, closed set.
type Category string

const (
	CategoryFoodDining     Category = "food_dining"
	CategoryTransportation Category = "transportation"
	CategoryShopping       Category = "shopping"
	CategoryEntertainment  Category = "entertainment"
	CategoryUtilitiesBills Category = "utilities_bills"
	CategoryHealthcare     Category = "healthcare"
	CategoryEducation      Category = "education"
	CategoryTravel         Category = "travel"
	CategoryOther          Category = "other"
)

// Categories lists every category in display order.
var Categories = []Category{
	CategoryFoodDining,
	CategoryTransportation,
	CategoryShopping,
	CategoryEntertainment,
	CategoryUtilitiesBills,
	CategoryHealthcare,
	CategoryEducation,
	CategoryTravel,
	CategoryOther,
}

var (
	// ErrUnknownCategory is returned when a category is outside the fixed set.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrInvalidAmount is returned for non-positive or malformed money values.
	ErrInvalidAmount = errors.New("invalid amount")
)

// Valid reports whether c belongs to the fixed category set.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns a human-readable name, e.g. "food dining".
func (c Category) Label() string {
	return strings.ReplaceAll(string(c), "_", " ")
}

// ParseCategory resolves a category identifier. Matching ignores case and
// treats spaces and hyphens like underscores.
func ParseCategory(s string) (Category, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	c := Category(norm)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// CategoryOrOther resolves s, falling back to CategoryOther.
func CategoryOrOther(s string) Category {
	c, err := ParseCategory(s)
	if err != nil {
		return CategoryOther
	}
	return c
}

// CategoryLabels returns the category identifiers as plain strings, in order.
func CategoryLabels() []string {
	out := make([]string, len(Categories))
	for i, c := range Categories {
		out[i] = string(c)
	}
	return out
}
