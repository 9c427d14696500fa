package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is a hosted zero-shot NLI model.
	DefaultEndpoint = "https://api-inference.huggingface.co/models/facebook/bart-large-mnli"

	requestTimeout = 15 * time.Second
	maxBodySize    = 1 << 20 // 1 MB
	userAgent      = "github.com/theirongolddev/budgetbot/1.0"
)

// RemoteError describes a failed call to the hosted model.
type RemoteError struct {
	Status    int
	Message   string
	Retryable bool
	Cause     error
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Cause != nil {
		return fmt.Sprintf("classifier: remote status %d: %s: %v", e.Status, msg, e.Cause)
	}
	return fmt.Sprintf("classifier: remote status %d: %s", e.Status, msg)
}

func (e *RemoteError) Unwrap() error {
	return e.Cause
}

// Remote calls a hosted zero-shot classification model over HTTP.
type Remote struct {
	endpoint string
	token    string
	http     *http.Client
	retry    RetryConfig
}

// RemoteOption configures a Remote.
type RemoteOption func(*Remote)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) RemoteOption {
	return func(r *Remote) { r.http = c }
}

// WithRetryConfig replaces the retry policy.
func WithRetryConfig(cfg RetryConfig) RemoteOption {
	return func(r *Remote) { r.retry = cfg }
}

// NewRemote creates a client for endpoint. An empty endpoint selects
// DefaultEndpoint. The token is sent as a bearer token when non-empty.
func NewRemote(endpoint, token string, opts ...RemoteOption) (*Remote, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("classifier: invalid endpoint %q", endpoint)
	}

	r := &Remote{
		endpoint: endpoint,
		token:    strings.TrimSpace(token),
		http:     &http.Client{},
		retry:    DefaultRemoteRetryConfig,
	}
	for _, o := range opts {
		o(r)
	}
	return r, nil
}

// Classify sends text and labels to the hosted model, retrying transient
// failures.
func (r *Remote) Classify(ctx context.Context, text string, labels []string) (Result, error) {
	labels = uniqueLabels(labels)
	if len(labels) == 0 {
		return Result{}, ErrNoLabels
	}

	body, err := json.Marshal(zeroShotRequest{
		Inputs:     text,
		Parameters: zeroShotParameters{CandidateLabels: labels},
	})
	if err != nil {
		return Result{}, fmt.Errorf("classifier: encoding request: %w", err)
	}

	return WithRetry(ctx, r.retry, func(ctx context.Context) (Result, error) {
		raw, err := r.post(ctx, body)
		if err != nil {
			return Result{}, err
		}
		return parseResult(raw)
	})
}

// post performs an authenticated POST and returns the response body.
func (r *Remote) post(ctx context.Context, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("classifier: creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, &RemoteError{Message: "request failed", Retryable: ctx.Err() == nil, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &RemoteError{Status: resp.StatusCode, Message: "reading response", Retryable: true, Cause: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return nil, &RemoteError{Status: resp.StatusCode, Cause: ErrUnauthorized}
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, &RemoteError{Status: resp.StatusCode, Retryable: true, Cause: ErrRateLimited}
	case resp.StatusCode >= 500:
		return nil, &RemoteError{Status: resp.StatusCode, Message: serviceMessage(data), Retryable: true}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, &RemoteError{Status: resp.StatusCode, Message: serviceMessage(data)}
	}
	return data, nil
}

// parseResult accepts both response shapes the hosted models emit: parallel
// label/score arrays, or a list of {label, score} pairs. A single-element
// batch wrapper around either shape is unwrapped.
func parseResult(raw rawBody) (Result, error) {
	raw = bytes.TrimSpace(raw)

	var obj zeroShotResponse
	if err := json.Unmarshal(raw, &obj); err == nil && len(obj.Labels) > 0 {
		if len(obj.Labels) != len(obj.Scores) {
			return Result{}, fmt.Errorf("classifier: %d labels but %d scores", len(obj.Labels), len(obj.Scores))
		}
		return Result{Labels: obj.Labels, Scores: obj.Scores}, nil
	}

	var pairs []labelScore
	if err := json.Unmarshal(raw, &pairs); err == nil && len(pairs) > 0 && pairs[0].Label != "" {
		sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].Score > pairs[j].Score })
		res := Result{Labels: make([]string, len(pairs)), Scores: make([]float64, len(pairs))}
		for i, p := range pairs {
			res.Labels[i], res.Scores[i] = p.Label, p.Score
		}
		return res, nil
	}

	var batch []rawBody
	if err := json.Unmarshal(raw, &batch); err == nil && len(batch) == 1 {
		return parseResult(batch[0])
	}

	return Result{}, errors.New("classifier: unrecognised response body")
}

func serviceMessage(data []byte) string {
	var e errorResponse
	if err := json.Unmarshal(data, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return ""
}
