package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/budgetbot/internal/ledger"
	"github.com/theirongolddev/budgetbot/internal/model"
)

type memStore struct {
	expenses map[string][]model.Expense
	limits   map[string]map[model.Category]decimal.Decimal
	turns    map[string][]model.Turn
	failLoad bool
}

func newMemStore() *memStore {
	return &memStore{
		expenses: map[string][]model.Expense{},
		limits:   map[string]map[model.Category]decimal.Decimal{},
		turns:    map[string][]model.Turn{},
	}
}

func (m *memStore) SaveExpense(_ context.Context, id string, e model.Expense) error {
	m.expenses[id] = append(m.expenses[id], e)
	return nil
}

func (m *memStore) SaveLimits(_ context.Context, id string, l map[model.Category]decimal.Decimal) error {
	m.limits[id] = l
	return nil
}

func (m *memStore) AppendTurn(_ context.Context, id string, t model.Turn) error {
	m.turns[id] = append(m.turns[id], t)
	return nil
}

func (m *memStore) Expenses(_ context.Context, id string) ([]model.Expense, error) {
	if m.failLoad {
		return nil, errors.New("disk on fire")
	}
	return m.expenses[id], nil
}

func (m *memStore) Limits(_ context.Context, id string) (map[model.Category]decimal.Decimal, bool, error) {
	l, ok := m.limits[id]
	return l, ok, nil
}

func (m *memStore) Turns(_ context.Context, id string, limit int) ([]model.Turn, error) {
	t := m.turns[id]
	if limit > 0 && len(t) > limit {
		t = t[len(t)-limit:]
	}
	return t, nil
}

func TestResumeFreshSessionWritesDefaults(t *testing.T) {
	st := newMemStore()
	s, err := Resume(context.Background(), st, "fresh", testClassifier(), nil)
	require.NoError(t, err)

	assert.Equal(t, "fresh", s.ID())
	require.Contains(t, st.limits, "fresh")
	assert.True(t, st.limits["fresh"][model.CategoryFoodDining].Equal(decimal.NewFromInt(500)))
	assert.Empty(t, s.ListExpenses())
}

func TestResumeRestoresAndContinues(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()
	clock := WithClock(func() time.Time { return march })

	first, err := Resume(ctx, st, "home", testClassifier(), nil, clock)
	require.NoError(t, err)
	say(t, first, "I spent $25 on groceries")
	say(t, first, "set food budget to $400")

	second, err := Resume(ctx, st, "home", testClassifier(), nil, clock)
	require.NoError(t, err)

	require.Len(t, second.ListExpenses(), 1)
	assert.True(t, second.Limits()[model.CategoryFoodDining].Equal(decimal.NewFromInt(400)))
	assert.Len(t, second.History(), 4)

	// Ids continue after the restored ones.
	e, err := second.RecordExpense(ctx, decimal.NewFromInt(5), "coffee", model.CategoryFoodDining)
	require.NoError(t, err)
	assert.Equal(t, int64(2), e.ID)
	assert.Len(t, st.expenses["home"], 2)
	assert.True(t, second.MonthlySummary("2024-03").Total.Equal(decimal.NewFromInt(30)))
}

func TestResumeKeepsInjectedLedger(t *testing.T) {
	st := newMemStore()
	ctx := context.Background()
	st.expenses["home"] = []model.Expense{
		{ID: 7, Amount: decimal.NewFromInt(12), Description: "lunch", Category: model.CategoryFoodDining, CreatedAt: march, Month: "2024-03"},
	}

	injected := ledger.New(ledger.WithClock(func() time.Time { return march }))
	_, err := injected.Record(decimal.NewFromInt(3), "bus", model.CategoryTransportation)
	require.NoError(t, err)

	s, err := Resume(ctx, st, "home", testClassifier(), nil, WithLedger(injected))
	require.NoError(t, err)
	list := s.ListExpenses()
	require.Len(t, list, 1)
	assert.Equal(t, "bus", list[0].Description)

	restored, err := Resume(ctx, st, "home", testClassifier(), nil)
	require.NoError(t, err)
	require.Len(t, restored.ListExpenses(), 1)
	assert.Equal(t, int64(7), restored.ListExpenses()[0].ID)
}

func TestResumeLoadError(t *testing.T) {
	st := newMemStore()
	st.failLoad = true
	_, err := Resume(context.Background(), st, "x", testClassifier(), nil)
	assert.ErrorContains(t, err, "load expenses")
}
