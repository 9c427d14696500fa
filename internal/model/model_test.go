package model

import (
	"errors"
	"testing"
	"time"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"food_dining", CategoryFoodDining},
		{"Food Dining", CategoryFoodDining},
		{"utilities-bills", CategoryUtilitiesBills},
		{" OTHER ", CategoryOther},
	}
	for _, tt := range tests {
		got, err := ParseCategory(tt.in)
		if err != nil {
			t.Fatalf("ParseCategory(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := ParseCategory("groceries"); !errors.Is(err, ErrUnknownCategory) {
		t.Errorf("ParseCategory(groceries) err = %v, want ErrUnknownCategory", err)
	}
	if got := CategoryOrOther("nope"); got != CategoryOther {
		t.Errorf("CategoryOrOther(nope) = %q, want other", got)
	}
}

func TestIntentRoundTrip(t *testing.T) {
	for _, in := range append([]Intent{IntentUnknown}, Intents...) {
		if got := ParseIntent(in.String()); got != in {
			t.Errorf("ParseIntent(%q) = %v, want %v", in.String(), got, in)
		}
	}
	if got := ParseIntent("dance"); got != IntentUnknown {
		t.Errorf("ParseIntent(dance) = %v, want unknown", got)
	}
	if n := len(IntentLabels()); n != 8 {
		t.Errorf("len(IntentLabels()) = %d, want 8", n)
	}
}

func TestMonthKey(t *testing.T) {
	ts := time.Date(2024, time.March, 9, 23, 59, 0, 0, time.UTC)
	if got := MonthKey(ts); got != "2024-03" {
		t.Errorf("MonthKey = %q, want 2024-03", got)
	}
}
