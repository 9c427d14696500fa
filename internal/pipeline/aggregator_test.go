package pipeline

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/budgetbot/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func expense(t *testing.T, id int64, amount string, c model.Category, day string) model.Expense {
	t.Helper()
	at := mustDate(t, day)
	return model.Expense{
		ID:        id,
		Amount:    decimal.RequireFromString(amount),
		Category:  c,
		CreatedAt: at,
		Month:     model.MonthKey(at),
	}
}

func TestSummarize(t *testing.T) {
	expenses := []model.Expense{
		expense(t, 1, "20.00", model.CategoryFoodDining, "2024-03-01"),
		expense(t, 2, "10.50", model.CategoryFoodDining, "2024-03-02"),
		expense(t, 3, "30.00", model.CategoryTravel, "2024-03-15"),
		expense(t, 4, "99.00", model.CategoryTravel, "2024-04-01"),
	}

	s := Summarize(expenses, "2024-03")
	if s.Count != 3 {
		t.Fatalf("Count = %d, want 3", s.Count)
	}
	if !s.Total.Equal(decimal.RequireFromString("60.50")) {
		t.Errorf("Total = %s, want 60.50", s.Total)
	}
	if got := s.ByCategory[model.CategoryFoodDining]; !got.Equal(decimal.RequireFromString("30.50")) {
		t.Errorf("food = %s, want 30.50", got)
	}
	if got := s.Average.StringFixed(2); got != "20.17" {
		t.Errorf("Average = %s, want 20.17", got)
	}
}

func TestSummarizeEmptyMonth(t *testing.T) {
	s := Summarize(nil, "2024-03")
	if s.Count != 0 || !s.Total.IsZero() || !s.Average.IsZero() {
		t.Errorf("empty summary = %+v, want zeros", s)
	}
	if s.ByCategory == nil || len(s.ByCategory) != 0 {
		t.Errorf("ByCategory = %v, want empty non-nil map", s.ByCategory)
	}
}

func TestBreakdownSorted(t *testing.T) {
	s := Summarize([]model.Expense{
		expense(t, 1, "10", model.CategoryFoodDining, "2024-03-01"),
		expense(t, 2, "30", model.CategoryTravel, "2024-03-01"),
		expense(t, 3, "60", model.CategoryShopping, "2024-03-01"),
	}, "2024-03")

	shares := Breakdown(s)
	if len(shares) != 3 {
		t.Fatalf("len = %d, want 3", len(shares))
	}
	want := []model.Category{model.CategoryShopping, model.CategoryTravel, model.CategoryFoodDining}
	for i, c := range want {
		if shares[i].Category != c {
			t.Errorf("shares[%d] = %s, want %s", i, shares[i].Category, c)
		}
	}
	if shares[0].Percent != 60 {
		t.Errorf("shopping percent = %.2f, want 60", shares[0].Percent)
	}

	top, ok := TopCategory(s)
	if !ok || top.Category != model.CategoryShopping {
		t.Errorf("TopCategory = %v, %v; want shopping", top.Category, ok)
	}
}

func TestAggregateDays(t *testing.T) {
	days := AggregateDays([]model.Expense{
		expense(t, 1, "5", model.CategoryOther, "2024-02-01"),
		expense(t, 2, "7", model.CategoryOther, "2024-02-29"),
		expense(t, 3, "1", model.CategoryOther, "2024-02-29"),
	}, "2024-02")

	if len(days) != 29 {
		t.Fatalf("len = %d, want 29", len(days))
	}
	if !days[0].Equal(decimal.NewFromInt(5)) || !days[28].Equal(decimal.NewFromInt(8)) {
		t.Errorf("days[0]=%s days[28]=%s, want 5 and 8", days[0], days[28])
	}
	if !days[10].IsZero() {
		t.Errorf("days[10] = %s, want 0", days[10])
	}
}

func TestFilters(t *testing.T) {
	expenses := []model.Expense{
		expense(t, 1, "5", model.CategoryOther, "2024-02-01"),
		expense(t, 2, "7", model.CategoryTravel, "2024-02-02"),
	}
	expenses[1].Description = "Train to Lyon"

	if got := FilterByCategory(expenses, model.CategoryTravel); len(got) != 1 || got[0].ID != 2 {
		t.Errorf("FilterByCategory = %v", got)
	}
	if got := FilterByDescription(expenses, "lyon"); len(got) != 1 {
		t.Errorf("FilterByDescription = %v", got)
	}
	if got := FilterByMonth(expenses, ""); len(got) != 2 {
		t.Errorf("FilterByMonth(\"\") len = %d, want 2", len(got))
	}
}
