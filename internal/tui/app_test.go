package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/budgetbot/internal/chat"
	"github.com/theirongolddev/budgetbot/internal/classifier"
	"github.com/theirongolddev/budgetbot/internal/config"
	"github.com/theirongolddev/budgetbot/internal/model"
)

var expenseBot = classifier.Func(func(_ context.Context, _ string, labels []string) (classifier.Result, error) {
	if labels[0] == string(model.CategoryFoodDining) {
		return classifier.Result{Labels: []string{"food_dining"}, Scores: []float64{1}}, nil
	}
	return classifier.Result{Labels: []string{"add_expense"}, Scores: []float64{1}}, nil
})

func sized(t *testing.T, a App, w, h int) App {
	t.Helper()
	m, _ := a.Update(tea.WindowSizeMsg{Width: w, Height: h})
	return m.(App)
}

func TestSubmitRoundTrip(t *testing.T) {
	a := sized(t, NewApp(chat.NewSession(expenseBot), Options{Timeout: time.Second}), 120, 40)

	a.input.SetValue("I spent $12 on lunch")
	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)
	if cmd == nil || !a.busy {
		t.Fatal("enter should start processing")
	}
	if len(a.transcript) != 1 || a.transcript[0].speaker != model.SpeakerUser {
		t.Fatalf("transcript = %+v", a.transcript)
	}
	if a.input.Value() != "" {
		t.Error("input not cleared")
	}

	// A second enter while busy is ignored.
	a.input.SetValue("again")
	m, _ = a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)
	if len(a.transcript) != 1 {
		t.Fatalf("busy submit should be ignored, transcript = %d", len(a.transcript))
	}

	msg := a.processCmd("I spent $12 on lunch")()
	m, _ = a.Update(msg)
	a = m.(App)
	if a.busy {
		t.Error("still busy after reply")
	}
	if got := a.transcript[len(a.transcript)-1].text; !strings.HasPrefix(got, "Added expense: $12.00 for lunch") {
		t.Errorf("reply = %q", got)
	}
	if !a.report.Overall.Spent.Equal(decimal.NewFromInt(12)) {
		t.Errorf("sidebar report not refreshed: %s", a.report.Overall.Spent)
	}

	view := a.View()
	for _, want := range []string{"budgetbot", "food_dining", "$12.00 of $2,400.00"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestFailureShowsFriendlyReply(t *testing.T) {
	a := sized(t, NewApp(chat.NewSession(expenseBot), Options{}), 80, 30)
	m, _ := a.Update(ReplyMsg{Err: errors.Join(classifier.ErrUnavailable, context.DeadlineExceeded)})
	a = m.(App)
	got := a.transcript[len(a.transcript)-1]
	if got.speaker != model.SpeakerBot || !strings.Contains(got.text, "unavailable") {
		t.Errorf("entry = %+v", got)
	}
}

func TestQuitKeyword(t *testing.T) {
	a := sized(t, NewApp(chat.NewSession(expenseBot), Options{}), 80, 30)
	a.input.SetValue("bye")
	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyEnter})
	a = m.(App)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("bye should quit")
	}
	if a.transcript[len(a.transcript)-1].text != chat.Farewell {
		t.Error("missing farewell")
	}
}

func TestNarrowTerminalHidesSidebar(t *testing.T) {
	a := sized(t, NewApp(chat.NewSession(expenseBot), Options{}), 80, 30)
	if a.hasSidebar() {
		t.Error("sidebar at 80 cols")
	}
	if strings.Contains(a.View(), "remaining") {
		t.Error("sidebar rendered on narrow terminal")
	}
	a = sized(t, a, 40, 30)
	if !strings.Contains(a.View(), "too narrow") {
		t.Error("expected narrow warning")
	}
}

func TestApplySetupSpreadsTotal(t *testing.T) {
	cfg := config.DefaultConfig()
	err := ApplySetup(&cfg, SetupValues{Theme: "tokyo-night", Backend: config.BackendRemote, TotalBudget: "$1200"})
	if err != nil {
		t.Fatalf("ApplySetup: %v", err)
	}
	if cfg.Appearance.Theme != "tokyo-night" || cfg.Classifier.Backend != config.BackendRemote {
		t.Errorf("cfg = %+v", cfg)
	}
	var sum float64
	for _, v := range cfg.Budget.Limits {
		sum += v
	}
	if sum < 1199.99 || sum > 1200.01 {
		t.Errorf("limits sum to %v, want 1200", sum)
	}
	if cfg.Budget.Limits["food_dining"] != 250 {
		t.Errorf("food = %v, want 250", cfg.Budget.Limits["food_dining"])
	}

	if err := validateAmount("lots"); err == nil {
		t.Error("validateAmount accepted text")
	}
	if got := SetupValuesFrom(config.DefaultConfig()).TotalBudget; got != "2400.00" {
		t.Errorf("seeded total = %q", got)
	}
}
