package classifier

import (
	"context"
	"fmt"
	"time"
)

// Guarded wraps a backend with a caller-side deadline. Any backend failure,
// including the deadline passing, is reported as ErrUnavailable with the
// cause attached.
type Guarded struct {
	next    Classifier
	timeout time.Duration
}

// WithTimeout guards c. A timeout <= 0 disables the deadline but still
// normalises errors.
func WithTimeout(c Classifier, timeout time.Duration) *Guarded {
	return &Guarded{next: c, timeout: timeout}
}

// Classify calls the wrapped backend.
func (g *Guarded) Classify(ctx context.Context, text string, labels []string) (Result, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	type outcome struct {
		res Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := g.next.Classify(ctx, text, labels)
		done <- outcome{res, err}
	}()

	select {
	case <-ctx.Done():
		return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	case o := <-done:
		if o.err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrUnavailable, o.err)
		}
		if len(o.res.Labels) == 0 {
			return Result{}, fmt.Errorf("%w: empty result", ErrUnavailable)
		}
		return o.res, nil
	}
}
