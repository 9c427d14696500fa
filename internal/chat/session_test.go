package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/theirongolddev/budgetbot/internal/classifier"
	"github.com/theirongolddev/budgetbot/internal/events"
	"github.com/theirongolddev/budgetbot/internal/model"
)

type rule struct {
	keyword string
	label   string
}

// keywordClassifier is a deterministic stand-in for a real model: the first
// rule whose keyword appears in the text wins.
type keywordClassifier struct {
	intents    []rule
	categories []rule
}

func (k keywordClassifier) Classify(_ context.Context, text string, labels []string) (classifier.Result, error) {
	rules, fallback := k.intents, "unknown"
	if labels[0] == string(model.CategoryFoodDining) {
		rules, fallback = k.categories, string(model.CategoryOther)
	}
	winner := fallback
	lower := strings.ToLower(text)
	for _, r := range rules {
		if strings.Contains(lower, r.keyword) {
			winner = r.label
			break
		}
	}

	res := classifier.Result{Labels: []string{winner}, Scores: []float64{0.8}}
	for _, l := range labels {
		if l != winner {
			res.Labels = append(res.Labels, l)
			res.Scores = append(res.Scores, 0.2/float64(len(labels)))
		}
	}
	return res, nil
}

func testClassifier() keywordClassifier {
	return keywordClassifier{
		intents: []rule{
			{"spent", "add_expense"},
			{"add", "add_expense"},
			{"set", "set_budget"},
			{"show my budget", "view_budget"},
			{"advice", "get_advice"},
			{"categorize", "categorize_spending"},
			{"trend", "analyze_trends"},
			{"hello", "greeting"},
			{"help", "help"},
		},
		categories: []rule{
			{"groceries", "food_dining"},
			{"coffee", "food_dining"},
			{"taxi", "transportation"},
			{"concert", "entertainment"},
		},
	}
}

var march = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.Local)

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	base := []Option{WithID("test"), WithClock(func() time.Time { return march })}
	return NewSession(testClassifier(), append(base, opts...)...)
}

func say(t *testing.T, s *Session, text string) string {
	t.Helper()
	reply, err := s.ProcessMessage(context.Background(), text)
	require.NoError(t, err)
	return reply
}

func TestEveryIntentHasAReply(t *testing.T) {
	all := append([]model.Intent{model.IntentUnknown}, model.Intents...)
	for _, in := range all {
		in := in
		t.Run(in.String(), func(t *testing.T) {
			fixed := classifier.Func(func(_ context.Context, _ string, labels []string) (classifier.Result, error) {
				if labels[0] == string(model.CategoryFoodDining) {
					return classifier.Result{Labels: []string{"other"}, Scores: []float64{1}}, nil
				}
				return classifier.Result{Labels: []string{in.String()}, Scores: []float64{1}}, nil
			})
			s := NewSession(fixed)
			r, err := s.Process(context.Background(), "anything at all")
			require.NoError(t, err)
			assert.Equal(t, in, r.Classified.Intent)
			assert.NotEmpty(t, r.Text)
		})
	}
}

func TestAddExpense(t *testing.T) {
	s := newTestSession(t)

	reply := say(t, s, "I spent $25 on groceries")
	assert.Equal(t, "Added expense: $25.00 for groceries (Category: food_dining)\n\nYour current month total is now $25.00", reply)

	reply = say(t, s, "add $4.50 for coffee")
	assert.Contains(t, reply, "Your current month total is now $29.50")

	list := s.ListExpenses()
	require.Len(t, list, 2)
	assert.Equal(t, int64(1), list[0].ID)
	assert.Equal(t, int64(2), list[1].ID)
	assert.Equal(t, "2024-03", list[0].Month)
}

func TestAddExpenseIncompleteDoesNotRecord(t *testing.T) {
	s := newTestSession(t)

	for _, text := range []string{"add coffee", "I spent a lot"} {
		reply := say(t, s, text)
		assert.Equal(t, incompleteExpenseReply, reply, "text %q", text)
		assert.Empty(t, s.ListExpenses())
	}

	reply := say(t, s, "spent $30")
	assert.Equal(t, incompleteExpenseReply, reply, "amount without description")
	assert.Empty(t, s.ListExpenses())
}

func TestAddExpenseZeroAmount(t *testing.T) {
	s := newTestSession(t)
	reply := say(t, s, "I spent $0 on groceries")
	assert.Contains(t, reply, "greater than zero")
	assert.Empty(t, s.ListExpenses())
}

func TestClassifierFailureLeavesLedgerAlone(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := classifier.NewMockClassifier(ctrl)
	s := NewSession(m, WithID("mocked"))

	m.EXPECT().Classify(gomock.Any(), "I spent $25 on groceries", model.IntentLabels()).
		Return(classifier.Result{}, errors.New("model offline"))

	_, err := s.ProcessMessage(context.Background(), "I spent $25 on groceries")
	require.Error(t, err)
	assert.ErrorIs(t, err, classifier.ErrUnavailable)
	assert.Equal(t, unavailableReply, FailureReply(err))
	assert.Empty(t, s.ListExpenses())

	h := s.History()
	require.Len(t, h, 1)
	assert.Equal(t, model.SpeakerUser, h[0].Speaker)
	assert.Equal(t, model.IntentUnknown, h[0].Intent)

	// The session keeps working for the next message.
	m.EXPECT().Classify(gomock.Any(), "hello", model.IntentLabels()).
		Return(classifier.Result{Labels: []string{"greeting"}, Scores: []float64{0.9}}, nil)
	reply, err := s.ProcessMessage(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, greetingReply, reply)
}

func TestCategorizeFailureLeavesLedgerAlone(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := classifier.NewMockClassifier(ctrl)
	s := NewSession(m)

	gomock.InOrder(
		m.EXPECT().Classify(gomock.Any(), gomock.Any(), model.IntentLabels()).
			Return(classifier.Result{Labels: []string{"add_expense"}, Scores: []float64{0.9}}, nil),
		m.EXPECT().Classify(gomock.Any(), "groceries", model.CategoryLabels()).
			Return(classifier.Result{}, context.DeadlineExceeded),
	)

	_, err := s.ProcessMessage(context.Background(), "I spent $25 on groceries")
	assert.ErrorIs(t, err, classifier.ErrUnavailable)
	assert.Empty(t, s.ListExpenses())
}

func TestClassifierTimeout(t *testing.T) {
	slow := classifier.Func(func(ctx context.Context, _ string, _ []string) (classifier.Result, error) {
		<-ctx.Done()
		return classifier.Result{}, ctx.Err()
	})
	s := NewSession(classifier.WithTimeout(slow, 10*time.Millisecond))

	_, err := s.ProcessMessage(context.Background(), "I spent $25 on groceries")
	assert.ErrorIs(t, err, classifier.ErrUnavailable)
	assert.Empty(t, s.ListExpenses())
}

func TestViewBudget(t *testing.T) {
	s := newTestSession(t)
	require.NoError(t, s.SetCategoryBudget(context.Background(), model.CategoryFoodDining, decimal.NewFromInt(500)))
	_, err := s.RecordExpense(context.Background(), decimal.NewFromInt(420), "catering", model.CategoryFoodDining)
	require.NoError(t, err)
	_, err = s.RecordExpense(context.Background(), decimal.NewFromInt(250), "concert", model.CategoryEntertainment)
	require.NoError(t, err)

	reply := say(t, s, "show my budget")
	lines := strings.Split(reply, "\n")
	assert.Equal(t, "Current Month Summary", lines[0])
	assert.Equal(t, "Total Spent: $670.00 / $2400.00", lines[1])
	assert.Equal(t, "Transactions: 2", lines[2])
	assert.Contains(t, reply, "⚠️ food_dining: $420.00 / $500.00 (84.0%)")
	assert.Contains(t, reply, "🚨 entertainment: $250.00 / $200.00 (125.0%)")
	assert.Contains(t, reply, "✅ travel: $0.00 / $300.00 (0.0%)")
	assert.NotContains(t, reply, "overall")
	assert.Len(t, lines, 5+len(model.Categories))
}

func TestGetAdvice(t *testing.T) {
	s := newTestSession(t)
	reply := say(t, s, "give me advice")
	assert.Equal(t, "Your Personalized Financial Advice:\n\n• Great job managing your finances! Keep tracking your expenses.", reply)

	_, err := s.RecordExpense(context.Background(), decimal.NewFromInt(250), "concert", model.CategoryEntertainment)
	require.NoError(t, err)
	reply = say(t, s, "give me advice")
	assert.True(t, strings.HasPrefix(reply, "Your Personalized Financial Advice:\n\n• Good job!"), reply)
	assert.Contains(t, reply, "• Your 'entertainment' spending is $50.00 over budget.")
}

func TestSetBudgetForCategory(t *testing.T) {
	s := newTestSession(t)
	reply := say(t, s, "set food budget to $400")
	assert.Equal(t, "Updated food_dining budget from $500.00 to $400.00. Your total monthly budget is now $2300.00", reply)

	limits := s.Limits()
	assert.True(t, limits[model.CategoryFoodDining].Equal(decimal.NewFromInt(400)))
	assert.True(t, s.BudgetStatus("").Overall.Budget.Equal(decimal.NewFromInt(2300)))
}

func TestSetBudgetTotalRedistributes(t *testing.T) {
	s := newTestSession(t)
	reply := say(t, s, "set my budget to $1200")
	assert.True(t, strings.HasPrefix(reply, "Updated your total monthly budget to $1200.00."), reply)

	limits := s.Limits()
	sum := decimal.Zero
	for _, amt := range limits {
		sum = sum.Add(amt)
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(1200)), "sum = %s", sum)
	assert.True(t, limits[model.CategoryFoodDining].Equal(decimal.NewFromInt(250)))
	assert.True(t, s.BudgetStatus("").Overall.Budget.Equal(sum))
}

func TestSetBudgetWithoutAmount(t *testing.T) {
	s := newTestSession(t)
	assert.Equal(t, missingBudgetReply, say(t, s, "set my budget"))
	assert.True(t, s.BudgetStatus("").Overall.Budget.Equal(decimal.NewFromInt(2400)))
}

func TestAnalyzeTrends(t *testing.T) {
	s := newTestSession(t)
	assert.Equal(t, noExpensesReply, say(t, s, "show trends"))

	say(t, s, "I spent $30 on groceries")
	say(t, s, "I spent $10 on a taxi")
	say(t, s, "I spent $60 on a concert")

	reply := say(t, s, "show trends")
	assert.Equal(t, strings.Join([]string{
		"Spending Analysis",
		"",
		"Top Category: entertainment ($60.00)",
		"Average Transaction: $33.33",
		"Total Transactions: 3",
		"",
		"Category Breakdown:",
		"• entertainment: $60.00 (60.0%)",
		"• food_dining: $30.00 (30.0%)",
		"• transportation: $10.00 (10.0%)",
	}, "\n"), reply)
}

func TestCategorizeSpending(t *testing.T) {
	s := newTestSession(t)
	assert.Equal(t, noExpensesReply, say(t, s, "categorize please"))

	say(t, s, "I spent $30 on groceries")
	say(t, s, "I spent $5 on coffee")
	say(t, s, "I spent $10 on a taxi")

	reply := say(t, s, "categorize please")
	assert.Contains(t, reply, "Spending by Category (2024-03)")
	assert.Contains(t, reply, "• food_dining: $35.00 across 2 transactions")
	assert.Contains(t, reply, "• transportation: $10.00 across 1 transaction")
}

func TestHistoryRecordsBothSpeakers(t *testing.T) {
	s := newTestSession(t)
	say(t, s, "hello")
	say(t, s, "help")

	h := s.History()
	require.Len(t, h, 4)
	assert.Equal(t, model.SpeakerUser, h[0].Speaker)
	assert.Equal(t, model.IntentGreeting, h[0].Intent)
	assert.InDelta(t, 0.8, h[0].Confidence, 1e-9)
	assert.Equal(t, model.SpeakerBot, h[1].Speaker)
	assert.Equal(t, greetingReply, h[1].Text)
	assert.Equal(t, model.IntentHelp, h[2].Intent)
	assert.Equal(t, march, h[3].At)
}

func TestSessionsAreIsolated(t *testing.T) {
	a := newTestSession(t, WithID("a"))
	b := newTestSession(t, WithID("b"))

	say(t, a, "I spent $25 on groceries")
	say(t, a, "set food budget to $100")

	assert.Len(t, a.ListExpenses(), 1)
	assert.Empty(t, b.ListExpenses())
	assert.True(t, b.Limits()[model.CategoryFoodDining].Equal(decimal.NewFromInt(500)))
	assert.True(t, b.MonthlySummary("").Total.IsZero())
}

func TestIsQuit(t *testing.T) {
	for _, w := range []string{"quit", " EXIT ", "Bye"} {
		assert.True(t, IsQuit(w), w)
	}
	assert.False(t, IsQuit("bye bye budget"))
	assert.Equal(t, fallbackReply, FailureReply(errors.New("other")))
}

type recordingPublisher struct{ got []events.Event }

func (r *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	r.got = append(r.got, e)
	return nil
}

func TestPublishesChanges(t *testing.T) {
	pub := &recordingPublisher{}
	s := newTestSession(t, WithPublisher(pub))

	say(t, s, "I spent $25 on groceries")
	say(t, s, "set food budget to $400")
	say(t, s, "add coffee") // incomplete, no event

	require.Len(t, pub.got, 2)
	assert.Equal(t, events.ExpenseRecorded, pub.got[0].Type)
	assert.Equal(t, "test", pub.got[0].SessionID)
	assert.Equal(t, events.BudgetChanged, pub.got[1].Type)
	assert.True(t, pub.got[1].Total.Equal(decimal.NewFromInt(2300)))
}
