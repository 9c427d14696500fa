package intent

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPatterns are tried in order; the first match wins.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\$(\d+(?:\.\d{2})?)`),
	regexp.MustCompile(`(?i)(\d+(?:\.\d{2})?)\s*(?:dollars?|bucks?|\$)`),
	regexp.MustCompile(`(?i)spent\s+(\d+(?:\.\d{2})?)`),
}

// amountStrip removes amount phrases from a description.
var amountStrip = []*regexp.Regexp{
	regexp.MustCompile(`\$\d+(?:\.\d{2})?`),
	regexp.MustCompile(`(?i)\d+(?:\.\d{2})?\s*(?:dollars?|bucks?|\$)`),
	regexp.MustCompile(`(?i)spent\s+\d+(?:\.\d{2})?`),
}

var (
	descriptionStopwords = regexp.MustCompile(`(?i)\b(?:i|on|for|at|in|spent|spend|paid|pay|add|added|bought)\b`)
	budgetAmountPattern  = regexp.MustCompile(`\$?(\d+(?:\.\d{2})?)`)
	spaces               = regexp.MustCompile(`\s+`)
	thousands            = regexp.MustCompile(`(\d),(\d{3})\b`)
)

// normalizeNumbers drops thousands separators so "1,500" reads as 1500.
func normalizeNumbers(text string) string {
	for thousands.MatchString(text) {
		text = thousands.ReplaceAllString(text, "$1$2")
	}
	return text
}

// ParseAmount returns the first expense amount found in text. It returns
// nil when no pattern matches; it never invents a zero.
func ParseAmount(text string) *decimal.Decimal {
	text = normalizeNumbers(text)
	for _, p := range amountPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if d, err := decimal.NewFromString(m[1]); err == nil {
			return &d
		}
	}
	return nil
}

// Description strips amount phrases and filler words from text and returns
// what is left, e.g. "groceries" for "I spent $25 on groceries".
func Description(text string) string {
	text = normalizeNumbers(text)
	for _, p := range amountStrip {
		text = p.ReplaceAllString(text, " ")
	}
	text = descriptionStopwords.ReplaceAllString(text, " ")
	text = spaces.ReplaceAllString(text, " ")
	return strings.Trim(text, " .,;:!?-")
}

// ParseBudgetAmount returns the first number in text, with or without a
// leading currency symbol.
func ParseBudgetAmount(text string) *decimal.Decimal {
	m := budgetAmountPattern.FindStringSubmatch(normalizeNumbers(text))
	if m == nil {
		return nil
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return nil
	}
	return &d
}
