// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// VoteDependencies defines the interface for vote ingestion.
type VoteDependencies interface {
	IngestTokenVote(ctx context.Context, ev TokenVoteEvent) (IngestResult, error)
	IngestReaction(ctx context.Context, ev ReactionEvent) (IngestResult, error)
}

// VotesHandler handles vote webhook requests from the chain indexer and the
// community chat bot.
type VotesHandler struct {
	deps VoteDependencies
}

// NewVotesHandler creates a new votes handler.
func NewVotesHandler(deps VoteDependencies) *VotesHandler {
	return &VotesHandler{deps: deps}
}

// tokenVoteRequest mirrors the chain-indexer webhook payload.
type tokenVoteRequest struct {
	TxSignature  string  `json:"tx_signature"`
	SubmissionID string  `json:"submission_id"`
	Sender       string  `json:"sender"`
	TokenMint    string  `json:"token_mint"`
	Amount       float64 `json:"amount"`
	TS           string  `json:"ts"`
}

// reactionRequest mirrors the chat-bot reaction payload.
type reactionRequest struct {
	SubmissionID string `json:"submission_id"`
	ReactionType string `json:"reaction_type"`
	VoterID      string `json:"voter_id"`
	TS           string `json:"ts"`
}

// parseTS parses an optional RFC3339 timestamp; zero means "now" downstream.
func parseTS(ts string) (time.Time, error) {
	if ts == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, ts)
}

// HandleTokenVote handles POST /votes/token requests. Malformed and
// off-window events are acknowledged with a rejection reason so the indexer
// does not redeliver them; only storage failures surface as 5xx.
func (h *VotesHandler) HandleTokenVote(w http.ResponseWriter, r *http.Request) {
	const op = "api.token_vote"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req tokenVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	ts, err := parseTS(req.TS)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: invalid ts; must be RFC3339", op, ErrBadRequest))
		return
	}
	res, err := h.deps.IngestTokenVote(r.Context(), TokenVoteEvent{
		TxSignature:  req.TxSignature,
		SubmissionID: req.SubmissionID,
		Sender:       req.Sender,
		TokenMint:    req.TokenMint,
		Amount:       req.Amount,
		Timestamp:    ts,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeIngestResult(w, res)
}

// HandleReaction handles POST /votes/reaction requests.
func (h *VotesHandler) HandleReaction(w http.ResponseWriter, r *http.Request) {
	const op = "api.reaction_vote"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req reactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	ts, err := parseTS(req.TS)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: invalid ts; must be RFC3339", op, ErrBadRequest))
		return
	}
	res, err := h.deps.IngestReaction(r.Context(), ReactionEvent{
		SubmissionID: req.SubmissionID,
		ReactionType: req.ReactionType,
		VoterID:      req.VoterID,
		Timestamp:    ts,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeIngestResult(w, res)
}
