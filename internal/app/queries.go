package service

import (
	"context"
	"sort"

	"github.com/demoday/arbiter/internal/adapters/repository"
	"github.com/demoday/arbiter/internal/domain/model"
)

// SubmissionDetail bundles a submission with its scores and vote summary.
type SubmissionDetail struct {
	Submission     model.Submission   `json:"submission"`
	Round1         []model.JudgeScore `json:"round1,omitempty"`
	Round2         []model.JudgeScore `json:"round2,omitempty"`
	CommunityBonus float64            `json:"community_bonus"`
	VoteTally      VoteTally          `json:"vote_tally"`
}

// VoteTally summarizes the ledger for one submission.
type VoteTally struct {
	SubmissionID    string         `json:"submission_id"`
	Reactions       int            `json:"reactions"`
	ReactionsByType map[string]int `json:"reactions_by_type,omitempty"`
	DistinctWallets int            `json:"distinct_wallets"`
	VoteTokens      float64        `json:"vote_tokens"`
	OverflowTokens  float64        `json:"overflow_tokens"`
}

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank           int     `json:"rank"`
	SubmissionID   string  `json:"submission_id"`
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	FinalScore     float64 `json:"final_score"`
	CommunityBonus float64 `json:"community_bonus"`
}

// PrizePoolSummary aggregates the prize pool.
type PrizePoolSummary struct {
	Total     float64                          `json:"total"`
	BySources []repository.ContributionSummary `json:"by_sources"`
}

// GetSubmission returns the detail view for one submission.
func (s *Service) GetSubmission(ctx context.Context, id string) (SubmissionDetail, error) {
	sub, err := s.store.GetSubmission(ctx, id)
	if err != nil {
		return SubmissionDetail{}, err
	}
	round1, err := s.store.ListJudgeScores(ctx, id, 1)
	if err != nil {
		return SubmissionDetail{}, err
	}
	round2, err := s.store.ListJudgeScores(ctx, id, 2)
	if err != nil {
		return SubmissionDetail{}, err
	}
	bonus, err := s.CommunityBonus(ctx, id)
	if err != nil {
		return SubmissionDetail{}, err
	}
	tally, err := s.TallyVotes(ctx, id)
	if err != nil {
		return SubmissionDetail{}, err
	}
	return SubmissionDetail{
		Submission:     sub,
		Round1:         round1,
		Round2:         round2,
		CommunityBonus: bonus,
		VoteTally:      tally,
	}, nil
}

// ListSubmissions filters submissions by status and category.
func (s *Service) ListSubmissions(ctx context.Context, status model.Status, category string) ([]model.Submission, error) {
	return s.store.ListSubmissions(ctx, status, category)
}

// TallyVotes summarizes the ledger and overflow for one submission.
func (s *Service) TallyVotes(ctx context.Context, submissionID string) (VoteTally, error) {
	entries, err := s.store.ListVotes(ctx, submissionID)
	if err != nil {
		return VoteTally{}, err
	}
	tally := VoteTally{
		SubmissionID:    submissionID,
		ReactionsByType: make(map[string]int),
	}
	wallets := make(map[string]bool)
	for _, e := range entries {
		switch e.Kind {
		case model.VoteKindReaction:
			tally.Reactions++
			tally.ReactionsByType[e.ReactionType]++
		case model.VoteKindToken:
			wallets[e.Sender] = true
			tally.VoteTokens += e.VoteTokens
		}
	}
	tally.DistinctWallets = len(wallets)
	contributions, err := s.store.ListContributions(ctx, submissionID)
	if err != nil {
		return VoteTally{}, err
	}
	for _, c := range contributions {
		if c.Source == model.SourceVoteOverflow {
			tally.OverflowTokens += c.Amount
		}
	}
	return tally, nil
}

// Leaderboard ranks completed and published submissions by final score,
// breaking ties by the community bonus applied at synthesis time, then by
// submission id. Submissions that have not finished are excluded, not
// scored as zero.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	completed, err := s.store.ListSubmissions(ctx, model.StatusCompleted, "")
	if err != nil {
		return nil, err
	}
	published, err := s.store.ListSubmissions(ctx, model.StatusPublished, "")
	if err != nil {
		return nil, err
	}
	eligible := append(completed, published...)

	entries := make([]LeaderboardEntry, 0, len(eligible))
	for _, sub := range eligible {
		if sub.FinalScore == nil {
			continue
		}
		bonus := 0.0
		round2, err := s.store.ListJudgeScores(ctx, sub.ID, 2)
		if err != nil {
			return nil, err
		}
		if len(round2) > 0 {
			// All round 2 rows carry the same applied bonus.
			bonus = round2[0].CommunityBonusApplied
		}
		entries = append(entries, LeaderboardEntry{
			SubmissionID:   sub.ID,
			Name:           sub.Name,
			Category:       sub.Category,
			FinalScore:     *sub.FinalScore,
			CommunityBonus: bonus,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].FinalScore != entries[j].FinalScore {
			return entries[i].FinalScore > entries[j].FinalScore
		}
		if entries[i].CommunityBonus != entries[j].CommunityBonus {
			return entries[i].CommunityBonus > entries[j].CommunityBonus
		}
		return entries[i].SubmissionID < entries[j].SubmissionID
	})
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// PrizePool aggregates the prize pool across sources and mints.
func (s *Service) PrizePool(ctx context.Context) (PrizePoolSummary, error) {
	rows, err := s.store.SummarizeContributions(ctx)
	if err != nil {
		return PrizePoolSummary{}, err
	}
	out := PrizePoolSummary{BySources: rows}
	for _, row := range rows {
		out.Total += row.Total
	}
	return out, nil
}

// Stats returns counters for the ops surface.
func (s *Service) Stats(ctx context.Context) (map[string]any, error) {
	stats := map[string]any{
		"started":     s.Started(),
		"voteFormula": s.cfg.VoteFormula,
	}
	subs, err := s.store.ListSubmissions(ctx, "", "")
	if err != nil {
		return nil, err
	}
	byStatus := make(map[string]int)
	for _, sub := range subs {
		byStatus[string(sub.Status)]++
	}
	stats["submissions"] = len(subs)
	stats["submissionsByStatus"] = byStatus

	votes, err := s.store.ListAllVotes(ctx)
	if err != nil {
		return nil, err
	}
	stats["voteLedgerSize"] = len(votes)
	stats["dedupeCacheSize"] = s.seen.Size()
	return stats, nil
}
