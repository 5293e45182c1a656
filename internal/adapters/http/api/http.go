// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/demoday/arbiter/internal/adapters/batch"
	"github.com/demoday/arbiter/internal/adapters/repository"
	service "github.com/demoday/arbiter/internal/app"
	"github.com/demoday/arbiter/internal/domain/lifecycle"
	"github.com/demoday/arbiter/internal/domain/model"
	"github.com/demoday/arbiter/internal/domain/scoring"
	"github.com/demoday/arbiter/internal/domain/verdict"
)

// Read and write shapes reused from the application layer.
type (
	IngestResult     = service.IngestResult
	TokenVoteEvent   = service.TokenVoteEvent
	ReactionEvent    = service.ReactionEvent
	DonationEvent    = service.DonationEvent
	SubmissionDetail = service.SubmissionDetail
	LeaderboardEntry = service.LeaderboardEntry
	VoteTally        = service.VoteTally
	PrizePoolSummary = service.PrizePoolSummary
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	CreateSubmission(ctx context.Context, id, name, category, links string) (model.Submission, error)
	GetSubmission(ctx context.Context, id string) (SubmissionDetail, error)
	ListSubmissions(ctx context.Context, status model.Status, category string) ([]model.Submission, error)
	Advance(ctx context.Context, id string, target model.Status) (model.Submission, error)

	ScoreRound1(ctx context.Context, id string, raw map[string]model.RawScores) (map[string]float64, error)
	SynthesizeRound2(ctx context.Context, id string) (model.Submission, error)
	SynthesizeRound2Batch(ctx context.Context) ([]batch.Result, error)

	IngestTokenVote(ctx context.Context, ev TokenVoteEvent) (IngestResult, error)
	IngestReaction(ctx context.Context, ev ReactionEvent) (IngestResult, error)
	Donate(ctx context.Context, ev DonationEvent) (string, error)

	TallyVotes(ctx context.Context, id string) (VoteTally, error)
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	PrizePool(ctx context.Context) (PrizePoolSummary, error)
	Stats(ctx context.Context) (map[string]any, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	submissionsHandler *SubmissionsHandler
	scoringHandler     *ScoringHandler
	votesHandler       *VotesHandler
	donationsHandler   *DonationsHandler
	leaderboardHandler *LeaderboardHandler
	prizePoolHandler   *PrizePoolHandler
	statsHandler       *StatsHandler
	healthHandler      *HealthHandler
}

// NewServer creates a new API server with all handlers. maxLeaderboardLimit
// bounds GET /leaderboard?limit.
func NewServer(deps Dependencies, maxLeaderboardLimit int) *Server {
	return &Server{
		submissionsHandler: NewSubmissionsHandler(deps),
		scoringHandler:     NewScoringHandler(deps),
		votesHandler:       NewVotesHandler(deps),
		donationsHandler:   NewDonationsHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		prizePoolHandler:   NewPrizePoolHandler(deps),
		statsHandler:       NewStatsHandler(deps),
		healthHandler:      NewHealthHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/submissions", MetricsMiddleware(s.submissionsHandler.HandleSubmissions, "submissions"))
	mux.HandleFunc("/submissions/", MetricsMiddleware(s.submissionsHandler.HandleSubmission, "submission"))
	mux.HandleFunc("/scoring/round1", MetricsMiddleware(s.scoringHandler.HandleRound1, "scoring_round1"))
	mux.HandleFunc("/scoring/round2", MetricsMiddleware(s.scoringHandler.HandleRound2, "scoring_round2"))
	mux.HandleFunc("/scoring/round2/batch", MetricsMiddleware(s.scoringHandler.HandleRound2Batch, "scoring_round2_batch"))
	mux.HandleFunc("/votes/token", MetricsMiddleware(s.votesHandler.HandleTokenVote, "votes_token"))
	mux.HandleFunc("/votes/reaction", MetricsMiddleware(s.votesHandler.HandleReaction, "votes_reaction"))
	mux.HandleFunc("/donations", MetricsMiddleware(s.donationsHandler.HandleDonation, "donations"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/prizepool", MetricsMiddleware(s.prizePoolHandler.HandleGetPrizePool, "prizepool"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError translates known sentinel errors to status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrDuplicate):
		writeError(w, http.StatusConflict, "duplicate", err)
	case errors.Is(err, repository.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err)
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		writeError(w, http.StatusUnprocessableEntity, "invalid_transition", err)
	case errors.Is(err, lifecycle.ErrIncompleteScoring):
		writeError(w, http.StatusUnprocessableEntity, "incomplete_scoring", err)
	case errors.Is(err, service.ErrNotReady):
		writeError(w, http.StatusConflict, "not_ready", err)
	case errors.Is(err, service.ErrMalformedDonation):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, scoring.ErrScoreOutOfRange),
		errors.Is(err, scoring.ErrUnknownJudge),
		errors.Is(err, scoring.ErrMissingJudge):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	case errors.Is(err, verdict.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "verdict_unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

// writeIngestResult maps the tri-state ingest outcome onto status codes:
// 202 for a fresh accept, 200 for a redelivery, 422 for a rejection the
// sender should not retry.
func writeIngestResult(w http.ResponseWriter, res IngestResult) {
	switch res.Status {
	case service.IngestAccepted:
		writeJSON(w, http.StatusAccepted, res)
	case service.IngestDuplicate:
		writeJSON(w, http.StatusOK, res)
	default:
		writeJSON(w, http.StatusUnprocessableEntity, res)
	}
}
