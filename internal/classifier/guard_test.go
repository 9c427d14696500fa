package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestGuardedPassesThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockClassifier(ctrl)
	want := Result{Labels: []string{"help", "greeting"}, Scores: []float64{0.6, 0.4}}
	m.EXPECT().Classify(gomock.Any(), "help", []string{"help", "greeting"}).Return(want, nil)

	got, err := WithTimeout(m, time.Second).Classify(context.Background(), "help", []string{"help", "greeting"})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGuardedWrapsFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	m := NewMockClassifier(ctrl)
	boom := errors.New("boom")
	m.EXPECT().Classify(gomock.Any(), gomock.Any(), gomock.Any()).Return(Result{}, boom)

	_, err := WithTimeout(m, time.Second).Classify(context.Background(), "x", []string{"a", "b"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, boom)
}

func TestGuardedEmptyResult(t *testing.T) {
	c := Func(func(context.Context, string, []string) (Result, error) { return Result{}, nil })
	_, err := WithTimeout(c, 0).Classify(context.Background(), "x", []string{"a", "b"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGuardedTimeout(t *testing.T) {
	slow := Func(func(ctx context.Context, _ string, _ []string) (Result, error) {
		select {
		case <-time.After(2 * time.Second):
			return Result{Labels: []string{"late"}, Scores: []float64{1}}, nil
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	})

	start := time.Now()
	_, err := WithTimeout(slow, 20*time.Millisecond).Classify(context.Background(), "x", []string{"a", "b"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
