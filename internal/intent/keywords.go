package intent

import (
	"strings"
	"unicode"

	"github.com/theirongolddev/budgetbot/internal/model"
)

// categoryKeywords maps words a user might use for a budget line to the
// category it names.
var categoryKeywords = map[string]model.Category{
	"food":           model.CategoryFoodDining,
	"dining":         model.CategoryFoodDining,
	"groceries":      model.CategoryFoodDining,
	"restaurants":    model.CategoryFoodDining,
	"transport":      model.CategoryTransportation,
	"transportation": model.CategoryTransportation,
	"commute":        model.CategoryTransportation,
	"gas":            model.CategoryTransportation,
	"shopping":       model.CategoryShopping,
	"clothes":        model.CategoryShopping,
	"entertainment":  model.CategoryEntertainment,
	"fun":            model.CategoryEntertainment,
	"movies":         model.CategoryEntertainment,
	"utilities":      model.CategoryUtilitiesBills,
	"utility":        model.CategoryUtilitiesBills,
	"bills":          model.CategoryUtilitiesBills,
	"health":         model.CategoryHealthcare,
	"healthcare":     model.CategoryHealthcare,
	"medical":        model.CategoryHealthcare,
	"education":      model.CategoryEducation,
	"school":         model.CategoryEducation,
	"travel":         model.CategoryTravel,
	"vacation":       model.CategoryTravel,
	"other":          model.CategoryOther,
	"misc":           model.CategoryOther,
}

// BudgetCategory finds the first category named in text, either by its
// identifier ("food_dining") or by a common keyword ("food").
func BudgetCategory(text string) *model.Category {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '_'
	})
	for _, w := range words {
		if c := model.Category(w); c.Valid() {
			return &c
		}
		if c, ok := categoryKeywords[w]; ok {
			return &c
		}
	}
	return nil
}
