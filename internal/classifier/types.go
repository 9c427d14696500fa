package classifier

import "encoding/json"

// zeroShotRequest is the request body for a hosted zero-shot model.
type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
	MultiLabel      bool     `json:"multi_label"`
}

// zeroShotResponse is the classic response shape: parallel label and score
// arrays, ranked.
type zeroShotResponse struct {
	Sequence string    `json:"sequence"`
	Labels   []string  `json:"labels"`
	Scores   []float64 `json:"scores"`
}

// labelScore is one element of the list response shape.
type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// errorResponse is returned by the service on failures, e.g. while a
// model is still loading.
type errorResponse struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// rawBody is kept undecoded until its shape is known.
type rawBody = json.RawMessage
