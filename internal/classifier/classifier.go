// Package classifier provides zero-shot text classification backends.
//
// Every backend satisfies Classifier: given a text and an ordered set of
// candidate labels it returns the labels ranked by relevance with parallel
// scores in [0,1]. The local backend is a naive Bayes model trained on a
// small seed corpus; the remote backend calls a hosted zero-shot model.
package classifier

//go:generate mockgen -source=classifier.go -destination=classifier_mock.go -package=classifier

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrUnavailable marks a failed or timed-out classification. Callers
	// treat it as terminal for the current message only.
	ErrUnavailable = errors.New("classifier: unavailable")
	// ErrNoLabels is returned when no candidate labels are given.
	ErrNoLabels = errors.New("classifier: no candidate labels")
	// ErrUnauthorized indicates the remote token is missing or rejected.
	ErrUnauthorized = errors.New("classifier: unauthorized (token missing or invalid)")
	// ErrRateLimited indicates the remote service throttled the request.
	ErrRateLimited = errors.New("classifier: rate limited")
)

// Classifier ranks candidate labels for a text.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string) (Result, error)
}

// Result holds labels ranked by relevance and their parallel scores.
type Result struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Top returns the highest ranked label. ok is false for an empty result.
func (r Result) Top() (label string, score float64, ok bool) {
	if len(r.Labels) == 0 {
		return "", 0, false
	}
	if len(r.Scores) > 0 {
		score = r.Scores[0]
	}
	return r.Labels[0], score, true
}

// Func adapts a plain function to the Classifier interface.
type Func func(ctx context.Context, text string, labels []string) (Result, error)

// Classify calls f.
func (f Func) Classify(ctx context.Context, text string, labels []string) (Result, error) {
	return f(ctx, text, labels)
}

// uniqueLabels drops blank and repeated labels, keeping first occurrences.
func uniqueLabels(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}
