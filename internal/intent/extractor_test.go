package intent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/theirongolddev/budgetbot/internal/classifier"
	"github.com/theirongolddev/budgetbot/internal/model"
)

// stub answers intent queries with intent and category queries with
// category, in the order the candidates were offered.
func stub(intent model.Intent, category model.Category) classifier.Classifier {
	return classifier.Func(func(_ context.Context, _ string, labels []string) (classifier.Result, error) {
		want := intent.String()
		if labels[0] == string(model.Categories[0]) {
			want = string(category)
		}
		res := classifier.Result{Labels: []string{want}, Scores: []float64{0.9}}
		for _, l := range labels {
			if l != want {
				res.Labels = append(res.Labels, l)
				res.Scores = append(res.Scores, 0.1/float64(len(labels)-1))
			}
		}
		return res, nil
	})
}

func TestExtractAddExpense(t *testing.T) {
	x := NewExtractor(stub(model.IntentAddExpense, model.CategoryFoodDining))

	ci, err := x.Extract(context.Background(), "I spent $25 on groceries")
	require.NoError(t, err)
	assert.Equal(t, model.IntentAddExpense, ci.Intent)
	assert.InDelta(t, 0.9, ci.Confidence, 1e-9)

	require.NotNil(t, ci.Entities.Amount)
	assert.True(t, ci.Entities.Amount.Equal(decimal.NewFromInt(25)))
	assert.NotEmpty(t, ci.Entities.Description)
	assert.NotContains(t, ci.Entities.Description, "$25")
	assert.NotContains(t, strings.ToLower(ci.Entities.Description), "spent")
	assert.Equal(t, "groceries", ci.Entities.Description)

	require.NotNil(t, ci.Entities.Category)
	assert.Equal(t, model.CategoryFoodDining, *ci.Entities.Category)
	assert.Nil(t, ci.Entities.BudgetAmount)
}

func TestExtractAddExpenseWithoutAmount(t *testing.T) {
	x := NewExtractor(stub(model.IntentAddExpense, model.CategoryShopping))

	ci, err := x.Extract(context.Background(), "add new shoes")
	require.NoError(t, err)
	assert.Nil(t, ci.Entities.Amount)
	assert.Equal(t, "new shoes", ci.Entities.Description)
}

func TestExtractSetBudget(t *testing.T) {
	x := NewExtractor(stub(model.IntentSetBudget, ""))

	ci, err := x.Extract(context.Background(), "Set my budget to $1,500")
	require.NoError(t, err)
	require.NotNil(t, ci.Entities.BudgetAmount)
	assert.True(t, ci.Entities.BudgetAmount.Equal(decimal.NewFromInt(1500)), "got %s", ci.Entities.BudgetAmount)
	assert.Nil(t, ci.Entities.BudgetCategory)

	ci, err = x.Extract(context.Background(), "set food budget to 400.50")
	require.NoError(t, err)
	require.NotNil(t, ci.Entities.BudgetAmount)
	assert.True(t, ci.Entities.BudgetAmount.Equal(decimal.RequireFromString("400.50")))
	require.NotNil(t, ci.Entities.BudgetCategory)
	assert.Equal(t, model.CategoryFoodDining, *ci.Entities.BudgetCategory)

	ci, err = x.Extract(context.Background(), "change my budget please")
	require.NoError(t, err)
	assert.Nil(t, ci.Entities.BudgetAmount)
}

func TestExtractOtherIntentsHaveNoEntities(t *testing.T) {
	for _, in := range []model.Intent{model.IntentGreeting, model.IntentViewBudget, model.IntentAnalyzeTrends, model.IntentCategorizeSpending} {
		x := NewExtractor(stub(in, ""))
		ci, err := x.Extract(context.Background(), "hello, I spent $5 on tea")
		require.NoError(t, err)
		assert.Equal(t, in, ci.Intent)
		assert.Equal(t, model.Entities{}, ci.Entities)
	}
}

func TestExtractUnknownLabel(t *testing.T) {
	c := classifier.Func(func(context.Context, string, []string) (classifier.Result, error) {
		return classifier.Result{Labels: []string{"weather"}, Scores: []float64{1.3}}, nil
	})
	ci, err := NewExtractor(c).Extract(context.Background(), "is it sunny")
	require.NoError(t, err)
	assert.Equal(t, model.IntentUnknown, ci.Intent)
	assert.Equal(t, 1.0, ci.Confidence)
}

func TestExtractBlankSkipsClassifier(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := classifier.NewMockClassifier(ctrl)
	// no EXPECT: any call fails the test

	ci, err := NewExtractor(m).Extract(context.Background(), "   ")
	require.NoError(t, err)
	assert.Equal(t, model.IntentUnknown, ci.Intent)
}

func TestExtractClassifierFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := classifier.NewMockClassifier(ctrl)
	m.EXPECT().Classify(gomock.Any(), "hello", model.IntentLabels()).
		Return(classifier.Result{}, errors.New("connection refused"))

	_, err := NewExtractor(m).Extract(context.Background(), "hello")
	assert.ErrorIs(t, err, classifier.ErrUnavailable)
}

func TestExtractCategorizeFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := classifier.NewMockClassifier(ctrl)
	gomock.InOrder(
		m.EXPECT().Classify(gomock.Any(), gomock.Any(), model.IntentLabels()).
			Return(classifier.Result{Labels: []string{"add_expense"}, Scores: []float64{0.8}}, nil),
		m.EXPECT().Classify(gomock.Any(), "coffee", model.CategoryLabels()).
			Return(classifier.Result{}, classifier.ErrUnavailable),
	)

	_, err := NewExtractor(m).Extract(context.Background(), "$4 for coffee")
	assert.ErrorIs(t, err, classifier.ErrUnavailable)
}
