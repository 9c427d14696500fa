package chat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/budgetbot/internal/classifier"
	"github.com/theirongolddev/budgetbot/internal/model"
	"github.com/theirongolddev/budgetbot/internal/pipeline"
)

const (
	greetingReply = "Hello! I'm your personal finance assistant. I can help you track expenses, manage budgets, and provide financial advice. What would you like to do?"

	helpReply = `I can help you with:

 Track Expenses: Say "I spent $50 on groceries" or "Add $25 for coffee"
 View Budget: Ask "Show my budget" or "How much have I spent?"
 Get Advice: Ask "Give me budget advice" or "How's my spending?"
 Categorize: Ask "Categorize my spending" to see this month by category
 Set Budgets: Say "Set food budget to $400" or "Set my budget to $3000"
 Analyze Trends: Ask "Show spending trends" or "What's my top category?"

Just tell me what you'd like to do!`

	incompleteExpenseReply = "I couldn't extract the expense details. Please try: 'I spent $50 on groceries' or 'Add $25 for coffee'"
	missingBudgetReply     = "Please specify a budget amount, like: 'Set my budget to $3000' or 'Update food budget to $500'"
	noExpensesReply        = "No expenses recorded yet. Start by adding some expenses!"
	fallbackReply          = "I'm not sure how to help with that. Try asking about expenses, budgets, or say 'help' for more options."
	unavailableReply       = "Sorry, I couldn't understand that right now because the language service is unavailable. Please try again in a moment."

	// Farewell is printed by interactive shells on exit.
	Farewell = "Goodbye! Keep tracking those expenses!"
)

// FailureReply turns a ProcessMessage error into text for the user.
func FailureReply(err error) string {
	if errors.Is(err, classifier.ErrUnavailable) {
		return unavailableReply
	}
	return fallbackReply
}

// IsQuit reports whether input asks an interactive shell to exit.
func IsQuit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "quit", "exit", "bye":
		return true
	}
	return false
}

func statusGlyph(l model.StatusLevel) string {
	switch l {
	case model.StatusOverBudget:
		return "🚨"
	case model.StatusWarning:
		return "⚠️"
	default:
		return "✅"
	}
}

func renderBudget(s model.MonthlySummary, r model.StatusReport) string {
	var b strings.Builder
	b.WriteString("Current Month Summary\n")
	fmt.Fprintf(&b, "Total Spent: $%s / $%s\n", s.Total.StringFixed(2), r.Overall.Budget.StringFixed(2))
	fmt.Fprintf(&b, "Transactions: %d\n\n", s.Count)

	b.WriteString("By Category:\n")
	for _, cs := range r.Categories {
		fmt.Fprintf(&b, "%s %s: $%s / $%s (%.1f%%)\n",
			statusGlyph(cs.Level), cs.Category,
			cs.Spent.StringFixed(2), cs.Budget.StringFixed(2), cs.PercentUsed)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderAdvice(advice []string) string {
	var b strings.Builder
	b.WriteString("Your Personalized Financial Advice:\n\n")
	for i, a := range advice {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("• ")
		b.WriteString(a)
	}
	return b.String()
}

func renderCategories(s model.MonthlySummary, counts map[model.Category]int) string {
	shares := pipeline.Breakdown(s)
	if len(shares) == 0 {
		return noExpensesReply
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Spending by Category (%s)\n\n", s.Month)
	for _, sh := range shares {
		n := counts[sh.Category]
		noun := "transactions"
		if n == 1 {
			noun = "transaction"
		}
		fmt.Fprintf(&b, "• %s: $%s across %d %s\n", sh.Category, sh.Amount.StringFixed(2), n, noun)
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderTrends(s model.MonthlySummary) string {
	shares := pipeline.Breakdown(s)
	if len(shares) == 0 {
		return noExpensesReply
	}
	top := shares[0]

	var b strings.Builder
	b.WriteString("Spending Analysis\n\n")
	fmt.Fprintf(&b, "Top Category: %s ($%s)\n", top.Category, top.Amount.StringFixed(2))
	fmt.Fprintf(&b, "Average Transaction: $%s\n", s.Average.StringFixed(2))
	fmt.Fprintf(&b, "Total Transactions: %d\n\n", s.Count)

	b.WriteString("Category Breakdown:\n")
	for _, sh := range shares {
		fmt.Fprintf(&b, "• %s: $%s (%.1f%%)\n", sh.Category, sh.Amount.StringFixed(2), sh.Percent)
	}
	return strings.TrimRight(b.String(), "\n")
}
