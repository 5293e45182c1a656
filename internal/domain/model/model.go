// Package model contains domain models passed between layers and persisted
// by the repository adapters.
package model

import (
	"fmt"
	"time"
)

// Status is a submission lifecycle state. Transitions advance along
// statusOrder only; see the lifecycle package for validation.
type Status string

// Lifecycle states in order.
const (
	StatusSubmitted       Status = "submitted"
	StatusResearched      Status = "researched"
	StatusScored          Status = "scored"
	StatusCommunityVoting Status = "community-voting"
	StatusCompleted       Status = "completed"
	StatusPublished       Status = "published"
)

// statusOrder is the fixed lifecycle sequence.
var statusOrder = []Status{
	StatusSubmitted,
	StatusResearched,
	StatusScored,
	StatusCommunityVoting,
	StatusCompleted,
	StatusPublished,
}

// Statuses returns the lifecycle sequence in order.
func Statuses() []Status {
	out := make([]Status, len(statusOrder))
	copy(out, statusOrder)
	return out
}

// Ordinal returns the position of s in the lifecycle sequence, or -1 if s is
// not a known status.
func (s Status) Ordinal() int {
	for i, st := range statusOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Valid reports whether s is a known lifecycle state.
func (s Status) Valid() bool { return s.Ordinal() >= 0 }

// Next returns the immediate successor of s, or false when s is terminal or
// unknown.
func (s Status) Next() (Status, bool) {
	i := s.Ordinal()
	if i < 0 || i == len(statusOrder)-1 {
		return "", false
	}
	return statusOrder[i+1], true
}

// AtLeast reports whether s is at or past target in the lifecycle sequence.
// Unknown statuses are never at least anything.
func (s Status) AtLeast(target Status) bool {
	i, j := s.Ordinal(), target.Ordinal()
	return i >= 0 && j >= 0 && i >= j
}

// Submission is one hackathon project and its lifecycle state.
type Submission struct {
	ID         string `gorm:"primaryKey;size:64" json:"submission_id"`
	Name       string `gorm:"not null" json:"name"`
	Category   string `gorm:"index" json:"category"`
	Links      string `json:"links"`
	Status     Status `gorm:"index;size:32;not null" json:"status"`
	FinalScore *float64 `json:"final_score,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Submission) TableName() string { return "submissions" }

// Criterion names for judge scoring.
const (
	CriterionInnovation         = "innovation"
	CriterionTechnicalExecution = "technical_execution"
	CriterionMarketPotential    = "market_potential"
	CriterionUserExperience     = "user_experience"
)

// Criteria returns the four scoring criteria in canonical order.
func Criteria() []string {
	return []string{
		CriterionInnovation,
		CriterionTechnicalExecution,
		CriterionMarketPotential,
		CriterionUserExperience,
	}
}

// RawScores holds the four criterion scores for one judge, each in [0,10].
type RawScores struct {
	Innovation         float64 `json:"innovation"`
	TechnicalExecution float64 `json:"technical_execution"`
	MarketPotential    float64 `json:"market_potential"`
	UserExperience     float64 `json:"user_experience"`
}

// ByCriterion returns the scores keyed by criterion name.
func (r RawScores) ByCriterion() map[string]float64 {
	return map[string]float64{
		CriterionInnovation:         r.Innovation,
		CriterionTechnicalExecution: r.TechnicalExecution,
		CriterionMarketPotential:    r.MarketPotential,
		CriterionUserExperience:     r.UserExperience,
	}
}

// JudgeScore is one judge's scoring row for a submission and round.
// At most one row exists per (submission, judge, round).
type JudgeScore struct {
	ID           uint   `gorm:"primaryKey" json:"-"`
	SubmissionID string `gorm:"uniqueIndex:idx_submission_judge_round;size:64;not null" json:"submission_id"`
	JudgeID      string `gorm:"uniqueIndex:idx_submission_judge_round;size:64;not null" json:"judge_id"`
	Round        int    `gorm:"uniqueIndex:idx_submission_judge_round;not null" json:"round"`

	Innovation         float64 `json:"innovation"`
	TechnicalExecution float64 `json:"technical_execution"`
	MarketPotential    float64 `json:"market_potential"`
	UserExperience     float64 `json:"user_experience"`
	WeightedTotal      float64 `json:"weighted_total"`

	// Round 2 only: opaque synthesized verdict text and the community bonus
	// in effect when the verdict was produced.
	Verdict               string  `json:"verdict,omitempty"`
	CommunityBonusApplied float64 `json:"community_bonus_applied,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (JudgeScore) TableName() string { return "judge_scores" }

// Raw returns the four criterion scores of the row.
func (s JudgeScore) Raw() RawScores {
	return RawScores{
		Innovation:         s.Innovation,
		TechnicalExecution: s.TechnicalExecution,
		MarketPotential:    s.MarketPotential,
		UserExperience:     s.UserExperience,
	}
}

// VoteKind discriminates vote ledger entries.
type VoteKind string

// Vote channels.
const (
	VoteKindToken    VoteKind = "token"
	VoteKindReaction VoteKind = "reaction"
)

// VoteLedgerEntry is one append-only community vote record. DedupeKey is the
// idempotency key enforced by a storage unique constraint: the transaction
// signature for token votes, (voter, reaction, submission) for reactions.
type VoteLedgerEntry struct {
	ID           uint     `gorm:"primaryKey" json:"-"`
	Kind         VoteKind `gorm:"size:16;not null" json:"kind"`
	DedupeKey    string   `gorm:"uniqueIndex;size:160;not null" json:"-"`
	SubmissionID string   `gorm:"index;size:64;not null" json:"submission_id"`

	// Token vote fields.
	TxSignature string  `gorm:"size:96" json:"tx_signature,omitempty"`
	Sender      string  `gorm:"size:64" json:"sender,omitempty"`
	TokenMint   string  `gorm:"size:64" json:"token_mint,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	VoteTokens  float64 `json:"vote_tokens,omitempty"`

	// Reaction vote fields.
	ReactionType string `gorm:"size:64" json:"reaction_type,omitempty"`
	VoterID      string `gorm:"size:64" json:"voter_id,omitempty"`

	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

func (VoteLedgerEntry) TableName() string { return "vote_ledger" }

// ReactionDedupeKey builds the idempotency key for a reaction vote.
func ReactionDedupeKey(voterID, reactionType, submissionID string) string {
	return fmt.Sprintf("%s|%s|%s", voterID, reactionType, submissionID)
}

// NewTokenVote builds a token-vote ledger entry. voteTokens is the portion of
// amount counted toward vote weight after the overflow split.
func NewTokenVote(txSignature, submissionID, sender, tokenMint string, amount, voteTokens float64, ts time.Time) VoteLedgerEntry {
	return VoteLedgerEntry{
		Kind:         VoteKindToken,
		DedupeKey:    txSignature,
		SubmissionID: submissionID,
		TxSignature:  txSignature,
		Sender:       sender,
		TokenMint:    tokenMint,
		Amount:       amount,
		VoteTokens:   voteTokens,
		Timestamp:    ts,
	}
}

// NewReactionVote builds a reaction-vote ledger entry.
func NewReactionVote(submissionID, reactionType, voterID string, ts time.Time) VoteLedgerEntry {
	return VoteLedgerEntry{
		Kind:         VoteKindReaction,
		DedupeKey:    ReactionDedupeKey(voterID, reactionType, submissionID),
		SubmissionID: submissionID,
		ReactionType: reactionType,
		VoterID:      voterID,
		Timestamp:    ts,
	}
}

// ContributionSource discriminates prize-pool contributions.
type ContributionSource string

// Prize-pool contribution sources.
const (
	SourceVoteOverflow   ContributionSource = "vote_overflow"
	SourceDirectDonation ContributionSource = "direct_donation"
)

// OverflowSuffix is appended to a transaction signature to derive the
// contribution id for the overflow portion of a token vote.
const OverflowSuffix = "_overflow"

// PrizePoolContribution is one append-only prize-pool record.
type PrizePoolContribution struct {
	ID           string             `gorm:"primaryKey;size:160" json:"id"`
	SubmissionID string             `gorm:"index;size:64" json:"submission_id,omitempty"`
	TokenMint    string             `gorm:"size:64" json:"token_mint"`
	Amount       float64            `gorm:"not null" json:"amount"`
	Contributor  string             `gorm:"size:64" json:"contributor"`
	Source       ContributionSource `gorm:"size:32;not null" json:"source"`

	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `json:"created_at"`
}

func (PrizePoolContribution) TableName() string { return "prize_pool" }

// NewOverflowContribution builds the prize-pool record for the overflow
// portion of a token vote.
func NewOverflowContribution(txSignature, submissionID, sender, tokenMint string, overflow float64, ts time.Time) PrizePoolContribution {
	return PrizePoolContribution{
		ID:           txSignature + OverflowSuffix,
		SubmissionID: submissionID,
		TokenMint:    tokenMint,
		Amount:       overflow,
		Contributor:  sender,
		Source:       SourceVoteOverflow,
		Timestamp:    ts,
	}
}
