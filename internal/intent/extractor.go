// Package intent turns a raw user message into a classified intent and the
// entities that intent needs.
package intent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/budgetbot/internal/classifier"
	"github.com/theirongolddev/budgetbot/internal/model"
)

// Extractor classifies messages. It only reads the fixed intent and
// category vocabularies and never mutates state.
type Extractor struct {
	clf classifier.Classifier
}

// NewExtractor returns an extractor backed by clf.
func NewExtractor(clf classifier.Classifier) *Extractor {
	return &Extractor{clf: clf}
}

// Extract classifies text and pulls out intent-specific entities. Missing
// entities are left nil; malformed text never fails. The only error is a
// classifier failure, which matches classifier.ErrUnavailable.
func (x *Extractor) Extract(ctx context.Context, text string) (model.ClassifiedIntent, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.ClassifiedIntent{Intent: model.IntentUnknown}, nil
	}

	res, err := x.clf.Classify(ctx, text, model.IntentLabels())
	if err != nil {
		return model.ClassifiedIntent{}, unavailable("classify intent", err)
	}
	label, score, ok := res.Top()
	if !ok {
		return model.ClassifiedIntent{}, unavailable("classify intent", errors.New("empty result"))
	}

	ci := model.ClassifiedIntent{
		Intent:     model.ParseIntent(label),
		Confidence: clamp(score),
	}

	switch ci.Intent {
	case model.IntentAddExpense:
		ci.Entities.Amount = ParseAmount(text)
		ci.Entities.Description = Description(text)
		if ci.Entities.Description != "" {
			c, err := x.Categorize(ctx, ci.Entities.Description)
			if err != nil {
				return model.ClassifiedIntent{}, err
			}
			ci.Entities.Category = &c
		}
	case model.IntentSetBudget:
		ci.Entities.BudgetAmount = ParseBudgetAmount(text)
		ci.Entities.BudgetCategory = BudgetCategory(text)
	}
	return ci, nil
}

// Categorize picks the best category for an expense description.
func (x *Extractor) Categorize(ctx context.Context, description string) (model.Category, error) {
	res, err := x.clf.Classify(ctx, description, model.CategoryLabels())
	if err != nil {
		return "", unavailable("categorize", err)
	}
	label, _, ok := res.Top()
	if !ok {
		return "", unavailable("categorize", errors.New("empty result"))
	}
	return model.CategoryOrOther(label), nil
}

func unavailable(op string, err error) error {
	if errors.Is(err, classifier.ErrUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, classifier.ErrUnavailable, err)
}

func clamp(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
