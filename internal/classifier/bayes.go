package classifier

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"unicode"

	"github.com/jbrukh/bayesian"
)

// numToken stands in for any token containing a digit.
const numToken = "<num>"

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "i": {}, "on": {}, "for": {}, "at": {},
	"in": {}, "to": {}, "of": {}, "my": {}, "me": {}, "is": {}, "it": {},
}

// Bayes is the local backend: a naive Bayes model per candidate label set,
// trained on demand from a seed corpus. Labels without seed phrases learn
// from the words of the label itself.
type Bayes struct {
	corpus map[string][]string

	mu     sync.Mutex
	models map[string]*bayesian.Classifier
}

// NewBayes returns a local classifier trained on DefaultCorpus.
func NewBayes() *Bayes {
	return NewBayesWithCorpus(DefaultCorpus())
}

// NewBayesWithCorpus returns a local classifier trained on corpus.
func NewBayesWithCorpus(corpus map[string][]string) *Bayes {
	return &Bayes{
		corpus: corpus,
		models: make(map[string]*bayesian.Classifier),
	}
}

// Classify ranks labels for text. Scores are the model's posterior
// probabilities and sum to 1. Equal scores keep candidate order.
func (b *Bayes) Classify(ctx context.Context, text string, labels []string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	labels = uniqueLabels(labels)
	switch len(labels) {
	case 0:
		return Result{}, ErrNoLabels
	case 1:
		return Result{Labels: labels, Scores: []float64{1}}, nil
	}

	model := b.model(labels)
	logScores, _, _ := model.LogScores(Tokenize(text))
	probs := softmax(logScores)

	order := make([]int, len(labels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return probs[order[i]] > probs[order[j]]
	})

	res := Result{
		Labels: make([]string, len(order)),
		Scores: make([]float64, len(order)),
	}
	for rank, idx := range order {
		res.Labels[rank] = labels[idx]
		res.Scores[rank] = probs[idx]
	}
	return res, nil
}

func (b *Bayes) model(labels []string) *bayesian.Classifier {
	key := strings.Join(labels, "\x00")

	b.mu.Lock()
	defer b.mu.Unlock()
	if m, ok := b.models[key]; ok {
		return m
	}

	classes := make([]bayesian.Class, len(labels))
	for i, l := range labels {
		classes[i] = bayesian.Class(l)
	}
	m := bayesian.NewClassifier(classes...)
	for _, l := range labels {
		m.Learn(Tokenize(strings.ReplaceAll(l, "_", " ")), bayesian.Class(l))
		for _, phrase := range b.corpus[l] {
			m.Learn(Tokenize(phrase), bayesian.Class(l))
		}
	}
	b.models[key] = m
	return m
}

// Tokenize lowercases text and splits it into words, dropping stopwords and
// collapsing numbers to a single placeholder token.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f == "" {
			continue
		}
		if strings.IndexFunc(f, unicode.IsDigit) >= 0 {
			tokens = append(tokens, numToken)
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func softmax(logScores []float64) []float64 {
	top := math.Inf(-1)
	for _, s := range logScores {
		if s > top {
			top = s
		}
	}

	probs := make([]float64, len(logScores))
	if math.IsInf(top, -1) {
		for i := range probs {
			probs[i] = 1 / float64(len(probs))
		}
		return probs
	}

	var sum float64
	for i, s := range logScores {
		probs[i] = math.Exp(s - top)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
