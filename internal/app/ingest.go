package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/demoday/arbiter/internal/adapters/repository"
	"github.com/demoday/arbiter/internal/domain/lifecycle"
	"github.com/demoday/arbiter/internal/domain/model"
	"github.com/demoday/arbiter/pkg/logger"
	"github.com/demoday/arbiter/pkg/metrics"
	"github.com/google/uuid"
)

// IngestStatus is the tri-state outcome of ingesting one external event.
// Callers need to tell redeliveries apart from real failures, so this is
// never collapsed into a bool.
type IngestStatus string

// Ingestion outcomes.
const (
	IngestAccepted  IngestStatus = "accepted"
	IngestDuplicate IngestStatus = "duplicate"
	IngestRejected  IngestStatus = "rejected"
)

// Rejection reason codes.
const (
	ReasonMalformed     = "malformed"
	ReasonUnknownMint   = "unknown_mint"
	ReasonBelowFloor    = "below_floor"
	ReasonInvalidTarget = "invalid_target"
)

// IngestResult reports what happened to one event. Reason is set for
// rejections only.
type IngestResult struct {
	Status IngestStatus `json:"status"`
	Reason string       `json:"reason,omitempty"`
}

// TokenVoteEvent is a chain-indexer webhook payload mapped at the HTTP
// boundary.
type TokenVoteEvent struct {
	TxSignature  string
	SubmissionID string
	Sender       string
	TokenMint    string
	Amount       float64
	Timestamp    time.Time
}

// ReactionEvent is one reaction from the community chat bot.
type ReactionEvent struct {
	SubmissionID string
	ReactionType string
	VoterID      string
	Timestamp    time.Time
}

// DonationEvent is a direct prize-pool contribution.
type DonationEvent struct {
	TokenMint   string
	Amount      float64
	Contributor string
	Timestamp   time.Time
}

func rejected(reason string) IngestResult {
	metrics.RecordVoteRejected(reason)
	return IngestResult{Status: IngestRejected, Reason: reason}
}

// IngestTokenVote validates, splits and appends one token vote. Redelivered
// transaction signatures are acknowledged as duplicates. A non-nil error
// means storage failed and the caller may retry with the same payload.
func (s *Service) IngestTokenVote(ctx context.Context, ev TokenVoteEvent) (IngestResult, error) {
	if strings.TrimSpace(ev.TxSignature) == "" ||
		strings.TrimSpace(ev.SubmissionID) == "" ||
		strings.TrimSpace(ev.Sender) == "" ||
		ev.Amount <= 0 {
		return rejected(ReasonMalformed), nil
	}
	if !s.cfg.MintAllowed(ev.TokenMint) {
		return rejected(ReasonUnknownMint), nil
	}
	if ev.Amount < s.cfg.MinVoteTokens {
		return rejected(ReasonBelowFloor), nil
	}
	if s.seen.Seen(ev.TxSignature) {
		metrics.RecordVoteDuplicate("token")
		return IngestResult{Status: IngestDuplicate}, nil
	}

	sub, err := s.store.GetSubmission(ctx, ev.SubmissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return rejected(ReasonInvalidTarget), nil
		}
		return IngestResult{}, err
	}
	if !lifecycle.AcceptsVotes(sub.Status) {
		return rejected(ReasonInvalidTarget), nil
	}

	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	voteTokens, overflow := s.aggregator.SplitVote(ev.Amount)
	entry := model.NewTokenVote(ev.TxSignature, ev.SubmissionID, ev.Sender, ev.TokenMint, ev.Amount, voteTokens, ts)
	var contribution *model.PrizePoolContribution
	if overflow > 0 {
		c := model.NewOverflowContribution(ev.TxSignature, ev.SubmissionID, ev.Sender, ev.TokenMint, overflow, ts)
		contribution = &c
	}

	inserted, err := s.store.InsertVote(ctx, entry, contribution)
	if err != nil {
		return IngestResult{}, err
	}
	s.seen.Record(ev.TxSignature)
	if !inserted {
		metrics.RecordVoteDuplicate("token")
		return IngestResult{Status: IngestDuplicate}, nil
	}
	metrics.RecordVoteAccepted("token")
	metrics.RecordOverflowTokens(overflow)
	s.log.Info(ctx, "token vote accepted",
		logger.String("submissionID", ev.SubmissionID),
		logger.String("txSignature", ev.TxSignature),
		logger.Float64("voteTokens", voteTokens),
		logger.Float64("overflow", overflow),
	)
	return IngestResult{Status: IngestAccepted}, nil
}

// IngestReaction validates and appends one reaction vote. A voter's repeat
// of the same reaction on the same submission is a duplicate, not an error.
func (s *Service) IngestReaction(ctx context.Context, ev ReactionEvent) (IngestResult, error) {
	if strings.TrimSpace(ev.SubmissionID) == "" ||
		strings.TrimSpace(ev.ReactionType) == "" ||
		strings.TrimSpace(ev.VoterID) == "" {
		return rejected(ReasonMalformed), nil
	}
	key := model.ReactionDedupeKey(ev.VoterID, ev.ReactionType, ev.SubmissionID)
	if s.seen.Seen(key) {
		metrics.RecordVoteDuplicate("reaction")
		return IngestResult{Status: IngestDuplicate}, nil
	}

	sub, err := s.store.GetSubmission(ctx, ev.SubmissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return rejected(ReasonInvalidTarget), nil
		}
		return IngestResult{}, err
	}
	if !lifecycle.AcceptsVotes(sub.Status) {
		return rejected(ReasonInvalidTarget), nil
	}

	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	inserted, err := s.store.InsertVote(ctx, model.NewReactionVote(ev.SubmissionID, ev.ReactionType, ev.VoterID, ts), nil)
	if err != nil {
		return IngestResult{}, err
	}
	s.seen.Record(key)
	if !inserted {
		metrics.RecordVoteDuplicate("reaction")
		return IngestResult{Status: IngestDuplicate}, nil
	}
	metrics.RecordVoteAccepted("reaction")
	s.log.Debug(ctx, "reaction accepted",
		logger.String("submissionID", ev.SubmissionID),
		logger.String("reaction", ev.ReactionType),
	)
	return IngestResult{Status: IngestAccepted}, nil
}

// Donate records a direct prize-pool donation and returns the contribution
// id.
func (s *Service) Donate(ctx context.Context, ev DonationEvent) (string, error) {
	if ev.Amount <= 0 || strings.TrimSpace(ev.Contributor) == "" {
		return "", ErrMalformedDonation
	}
	if !s.cfg.MintAllowed(ev.TokenMint) {
		return "", ErrMalformedDonation
	}
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	c := model.PrizePoolContribution{
		ID:          "donation-" + uuid.NewString(),
		TokenMint:   ev.TokenMint,
		Amount:      ev.Amount,
		Contributor: ev.Contributor,
		Source:      model.SourceDirectDonation,
		Timestamp:   ts,
	}
	if _, err := s.store.InsertContribution(ctx, c); err != nil {
		return "", err
	}
	metrics.RecordDonation()
	s.log.Info(ctx, "donation recorded",
		logger.String("contributor", ev.Contributor),
		logger.Float64("amount", ev.Amount),
	)
	return c.ID, nil
}
