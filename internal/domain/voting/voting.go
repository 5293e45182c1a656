// Package voting converts vote ledger entries into a bounded community bonus.
//
// Two formulas exist in the wild for this engine and they are mutually
// inconsistent, so the deployment picks exactly one as the system of record:
//
//   - wallet_log: per distinct wallet, min(log10(tokens+1)*multiplier,
//     per-wallet cap), summed over wallets and clamped to the bonus cap.
//     Pure per-submission function of the ledger.
//   - reaction_tally: reactions(submission) / max reactions over the whole
//     batch, scaled to the bonus cap. A cross-submission aggregate that must
//     be recomputed for everyone whenever anyone changes.
//
// All outputs are clamped to [0, bonus cap].
package voting

import (
	"math"
	"sort"

	"github.com/demoday/arbiter/internal/domain/model"
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithFormula selects the community-bonus formula.
func WithFormula(formula string) Option {
	return func(a *Aggregator) {
		if formula != "" {
			a.formula = formula
		}
	}
}

// WithTokenBounds sets the vote-weight floor and the per-transaction cap.
func WithTokenBounds(minTokens, maxTokens float64) Option {
	return func(a *Aggregator) {
		if minTokens >= 0 {
			a.minVoteTokens = minTokens
		}
		if maxTokens > 0 {
			a.maxVoteTokens = maxTokens
		}
	}
}

// WithLogWeight sets the log10 multiplier and the per-wallet weight cap.
func WithLogWeight(multiplier, perWalletCap float64) Option {
	return func(a *Aggregator) {
		if multiplier > 0 {
			a.logMultiplier = multiplier
		}
		if perWalletCap > 0 {
			a.perWalletCap = perWalletCap
		}
	}
}

// WithBonusCap bounds the aggregator output.
func WithBonusCap(cap float64) Option {
	return func(a *Aggregator) {
		if cap > 0 {
			a.bonusCap = cap
		}
	}
}

// Aggregator computes community bonuses from ledger entries.
type Aggregator struct {
	formula       string
	minVoteTokens float64
	maxVoteTokens float64
	logMultiplier float64
	perWalletCap  float64
	bonusCap      float64
}

// NewAggregator creates an Aggregator with configuration options.
func NewAggregator(opts ...Option) *Aggregator {
	a := &Aggregator{
		formula:       "wallet_log",
		minVoteTokens: 1,
		maxVoteTokens: 100,
		logMultiplier: 3,
		perWalletCap:  10,
		bonusCap:      10,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Formula returns the configured formula name.
func (a *Aggregator) Formula() string { return a.formula }

// BonusCap returns the configured output bound.
func (a *Aggregator) BonusCap() float64 { return a.bonusCap }

// SplitVote splits a transaction amount into the portion counted toward vote
// weight and the overflow routed to the prize pool. The two always sum to
// the original amount.
func (a *Aggregator) SplitVote(amount float64) (voteTokens, overflow float64) {
	if amount <= 0 {
		return 0, 0
	}
	voteTokens = math.Min(amount, a.maxVoteTokens)
	return voteTokens, amount - voteTokens
}

// WalletWeight computes the weight one wallet's accumulated vote tokens
// carry for a single submission. Wallets below the floor carry nothing.
func (a *Aggregator) WalletWeight(tokens float64) float64 {
	if tokens < a.minVoteTokens || tokens <= 0 {
		return 0
	}
	w := math.Log10(tokens+1) * a.logMultiplier
	return math.Min(w, a.perWalletCap)
}

// WalletLogBonus computes the wallet_log bonus for one submission from its
// ledger entries. Reaction entries are ignored by this formula. Wallet
// weights are summed in sorted wallet order; float addition is not
// associative, so a map-order walk could change the bonus in the last ulp
// between otherwise identical runs.
func (a *Aggregator) WalletLogBonus(entries []model.VoteLedgerEntry) float64 {
	tokensByWallet := make(map[string]float64)
	for _, e := range entries {
		if e.Kind != model.VoteKindToken {
			continue
		}
		tokensByWallet[e.Sender] += e.VoteTokens
	}
	wallets := make([]string, 0, len(tokensByWallet))
	for w := range tokensByWallet {
		wallets = append(wallets, w)
	}
	sort.Strings(wallets)
	raw := 0.0
	for _, w := range wallets {
		raw += a.WalletWeight(tokensByWallet[w])
	}
	return a.clamp(raw)
}

// ReactionTallyBonuses computes the reaction_tally bonus for every
// submission in the batch. The submission with the most reactions receives
// the full cap; others scale proportionally. With no reactions anywhere,
// every bonus is zero.
func (a *Aggregator) ReactionTallyBonuses(reactionCounts map[string]int) map[string]float64 {
	max := 0
	for _, n := range reactionCounts {
		if n > max {
			max = n
		}
	}
	out := make(map[string]float64, len(reactionCounts))
	for id, n := range reactionCounts {
		if max == 0 || n <= 0 {
			out[id] = 0
			continue
		}
		out[id] = a.clamp(float64(n) / float64(max) * a.bonusCap)
	}
	return out
}

// CountReactions tallies reaction entries per submission, for feeding
// ReactionTallyBonuses.
func CountReactions(entries []model.VoteLedgerEntry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		if e.Kind == model.VoteKindReaction {
			counts[e.SubmissionID]++
		}
	}
	return counts
}

func (a *Aggregator) clamp(bonus float64) float64 {
	return math.Max(0, math.Min(a.bonusCap, bonus))
}
