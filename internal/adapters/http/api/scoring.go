// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/demoday/arbiter/internal/adapters/batch"
	"github.com/demoday/arbiter/internal/domain/model"
)

// ScoringDependencies defines the interface for scoring operations.
type ScoringDependencies interface {
	ScoreRound1(ctx context.Context, id string, raw map[string]model.RawScores) (map[string]float64, error)
	SynthesizeRound2(ctx context.Context, id string) (model.Submission, error)
	SynthesizeRound2Batch(ctx context.Context) ([]batch.Result, error)
}

// ScoringHandler handles round 1 and round 2 scoring requests.
type ScoringHandler struct {
	deps ScoringDependencies
}

// NewScoringHandler creates a new scoring handler.
func NewScoringHandler(deps ScoringDependencies) *ScoringHandler {
	return &ScoringHandler{deps: deps}
}

type round1Request struct {
	SubmissionID string                     `json:"submission_id"`
	Scores       map[string]model.RawScores `json:"scores"`
}

func (r round1Request) validate() error {
	switch {
	case strings.TrimSpace(r.SubmissionID) == "":
		return errors.New("missing submission_id")
	case len(r.Scores) == 0:
		return errors.New("missing scores")
	}
	return nil
}

type round1Response struct {
	SubmissionID string             `json:"submission_id"`
	Totals       map[string]float64 `json:"totals"`
}

type round2Request struct {
	SubmissionID string `json:"submission_id"`
}

type batchResultEntry struct {
	SubmissionID string `json:"submission_id"`
	Error        string `json:"error,omitempty"`
}

type batchResponse struct {
	Total     int                `json:"total"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Results   []batchResultEntry `json:"results"`
}

// HandleRound1 handles POST /scoring/round1 requests.
func (h *ScoringHandler) HandleRound1(w http.ResponseWriter, r *http.Request) {
	const op = "api.score_round1"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req round1Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	totals, err := h.deps.ScoreRound1(r.Context(), req.SubmissionID, req.Scores)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, round1Response{SubmissionID: req.SubmissionID, Totals: totals})
}

// HandleRound2 handles POST /scoring/round2 requests.
func (h *ScoringHandler) HandleRound2(w http.ResponseWriter, r *http.Request) {
	const op = "api.score_round2"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req round2Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.SubmissionID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: missing submission_id", op, ErrBadRequest))
		return
	}
	sub, err := h.deps.SynthesizeRound2(r.Context(), req.SubmissionID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// HandleRound2Batch handles POST /scoring/round2/batch requests: round 2 for
// everything currently in community-voting.
func (h *ScoringHandler) HandleRound2Batch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	results, err := h.deps.SynthesizeRound2Batch(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	resp := batchResponse{Total: len(results), Results: make([]batchResultEntry, 0, len(results))}
	for _, res := range results {
		entry := batchResultEntry{SubmissionID: res.SubmissionID}
		if res.Err != nil {
			entry.Error = res.Err.Error()
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Results = append(resp.Results, entry)
	}
	status := http.StatusOK
	if resp.Failed > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, resp)
}
