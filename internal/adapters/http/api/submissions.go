// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/demoday/arbiter/internal/domain/model"
)

// SubmissionDependencies defines the interface for submission operations.
type SubmissionDependencies interface {
	CreateSubmission(ctx context.Context, id, name, category, links string) (model.Submission, error)
	GetSubmission(ctx context.Context, id string) (SubmissionDetail, error)
	ListSubmissions(ctx context.Context, status model.Status, category string) ([]model.Submission, error)
	Advance(ctx context.Context, id string, target model.Status) (model.Submission, error)
	TallyVotes(ctx context.Context, id string) (VoteTally, error)
}

// SubmissionsHandler handles submission requests.
type SubmissionsHandler struct {
	deps SubmissionDependencies
}

// NewSubmissionsHandler creates a new submissions handler.
func NewSubmissionsHandler(deps SubmissionDependencies) *SubmissionsHandler {
	return &SubmissionsHandler{deps: deps}
}

type createSubmissionRequest struct {
	SubmissionID string `json:"submission_id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
	Links        string `json:"links"`
}

func (r createSubmissionRequest) validate() error {
	switch {
	case strings.TrimSpace(r.SubmissionID) == "":
		return errors.New("missing submission_id")
	case strings.TrimSpace(r.Name) == "":
		return errors.New("missing name")
	}
	return nil
}

type advanceRequest struct {
	Target string `json:"target"`
}

// HandleSubmissions handles POST /submissions and GET /submissions.
func (h *SubmissionsHandler) HandleSubmissions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *SubmissionsHandler) create(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_submission"
	var req createSubmissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	sub, err := h.deps.CreateSubmission(r.Context(), req.SubmissionID, req.Name, req.Category, req.Links)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *SubmissionsHandler) list(w http.ResponseWriter, r *http.Request) {
	status := model.Status(r.URL.Query().Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("unknown status %q", status))
		return
	}
	subs, err := h.deps.ListSubmissions(r.Context(), status, r.URL.Query().Get("category"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// HandleSubmission handles the /submissions/{id} subtree:
//
//	GET  /submissions/{id}          detail with scores and vote tally
//	GET  /submissions/{id}/votes    vote tally only
//	POST /submissions/{id}/advance  lifecycle transition
func (h *SubmissionsHandler) HandleSubmission(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/submissions/")
	id, rest, _ := strings.Cut(path, "/")
	if id == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	switch {
	case rest == "" && r.Method == http.MethodGet:
		h.get(w, r, id)
	case rest == "votes" && r.Method == http.MethodGet:
		h.votes(w, r, id)
	case rest == "advance" && r.Method == http.MethodPost:
		h.advance(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

func (h *SubmissionsHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	detail, err := h.deps.GetSubmission(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *SubmissionsHandler) votes(w http.ResponseWriter, r *http.Request, id string) {
	tally, err := h.deps.TallyVotes(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tally)
}

func (h *SubmissionsHandler) advance(w http.ResponseWriter, r *http.Request, id string) {
	const op = "api.advance_submission"
	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%s: %w: %w", op, ErrBadRequest, err))
		return
	}
	target := model.Status(req.Target)
	if !target.Valid() {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("unknown status %q", req.Target))
		return
	}
	sub, err := h.deps.Advance(r.Context(), id, target)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}
