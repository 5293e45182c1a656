// Package repository persists the four engine tables: submissions, judge
// scores, the vote ledger and the prize pool.
//
// Idempotency is a storage concern here: the vote ledger's dedupe key is a
// unique index and inserts use insert-if-absent, so concurrent duplicate
// deliveries resolve at the database rather than with application locks.
package repository

import (
	"context"

	"github.com/demoday/arbiter/internal/domain/model"
)

// ContributionSummary aggregates prize-pool contributions by source and mint.
type ContributionSummary struct {
	Source    model.ContributionSource `json:"source"`
	TokenMint string                   `json:"token_mint"`
	Total     float64                  `json:"total"`
	Count     int64                    `json:"count"`
}

// Store provides access to the persisted engine state.
type Store interface {
	// CreateSubmission inserts a new submission row.
	// Returns ErrDuplicate if the id is already taken.
	CreateSubmission(ctx context.Context, sub model.Submission) error

	// GetSubmission returns one submission. Returns ErrNotFound if unknown.
	GetSubmission(ctx context.Context, id string) (model.Submission, error)

	// ListSubmissions filters by status and category; empty values match all.
	ListSubmissions(ctx context.Context, status model.Status, category string) ([]model.Submission, error)

	// UpdateSubmissionStatus conditionally moves a submission from one
	// status to another, optionally setting the final score. Returns
	// ErrConflict when the stored status no longer matches from, which is
	// how concurrent writers for the same submission lose.
	UpdateSubmissionStatus(ctx context.Context, id string, from, to model.Status, finalScore *float64) error

	// InsertJudgeScores inserts score rows all-or-nothing.
	// Returns ErrDuplicate when any (submission, judge, round) already exists.
	InsertJudgeScores(ctx context.Context, scores []model.JudgeScore) error

	// ListJudgeScores returns the rows for one submission and round.
	ListJudgeScores(ctx context.Context, submissionID string, round int) ([]model.JudgeScore, error)

	// InsertVote appends a ledger entry and, for a split token vote, its
	// overflow contribution, as one atomic unit. The bool reports whether
	// the entry was inserted; false means the dedupe key already existed
	// and nothing was written.
	InsertVote(ctx context.Context, entry model.VoteLedgerEntry, overflow *model.PrizePoolContribution) (bool, error)

	// ListVotes returns the ledger entries for one submission.
	ListVotes(ctx context.Context, submissionID string) ([]model.VoteLedgerEntry, error)

	// ListAllVotes returns every ledger entry, for cross-submission tallies.
	ListAllVotes(ctx context.Context) ([]model.VoteLedgerEntry, error)

	// InsertContribution appends a prize-pool row if its id is unused.
	// The bool reports whether the row was inserted.
	InsertContribution(ctx context.Context, c model.PrizePoolContribution) (bool, error)

	// ListContributions returns prize-pool rows, optionally filtered by
	// submission.
	ListContributions(ctx context.Context, submissionID string) ([]model.PrizePoolContribution, error)

	// SummarizeContributions aggregates the prize pool by source and mint.
	SummarizeContributions(ctx context.Context) ([]ContributionSummary, error)

	// CommitRound2 atomically inserts the round 2 score rows and moves the
	// submission from community-voting to completed with its final score.
	// Either everything lands or nothing does.
	CommitRound2(ctx context.Context, submissionID string, from model.Status, finalScore float64, scores []model.JudgeScore) error

	// Close releases the underlying database.
	Close() error
}
