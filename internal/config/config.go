// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers an optional YAML file and env on top.
// - Scoring and aggregation read everything from this structure so the
//   domain packages stay pure functions of (data, config).
package config

// Vote formula names. Exactly one formula is the system of record per
// deployment; the other remains available as a legacy/alternate mode.
const (
	FormulaWalletLog     = "wallet_log"
	FormulaReactionTally = "reaction_tally"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DataDir is where the sqlite database lives. Empty means in-memory,
	// which is only useful for tests.
	DataDir string `koanf:"data_dir"`

	// JudgeWeights maps judge id -> criterion -> weight. The configured
	// judges are exactly the keys of this map; a submission cannot advance
	// to scored until every configured judge has a round 1 row.
	JudgeWeights map[string]map[string]float64 `koanf:"judge_weights"`

	// VoteFormula selects the community-bonus system of record:
	// wallet_log or reaction_tally.
	VoteFormula string `koanf:"vote_formula"`

	// MinVoteTokens is the floor below which a wallet's tokens carry no
	// vote weight.
	MinVoteTokens float64 `koanf:"min_vote_tokens"`

	// MaxVoteTokens caps the portion of a single transaction counted
	// toward vote weight; the remainder is routed to the prize pool.
	MaxVoteTokens float64 `koanf:"max_vote_tokens"`

	// LogMultiplier scales the log10 wallet weight.
	LogMultiplier float64 `koanf:"log_multiplier"`

	// PerWalletCap bounds a single wallet's weight for one submission.
	PerWalletCap float64 `koanf:"per_wallet_cap"`

	// BonusCap bounds the community bonus added to the round 1 aggregate.
	BonusCap float64 `koanf:"bonus_cap"`

	// AllowedMints is the token-mint allow-list for token votes.
	AllowedMints []string `koanf:"allowed_mints"`

	// BatchWorkerCount sets the number of workers for batch round 2 runs.
	BatchWorkerCount int `koanf:"batch_worker_count"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`
}

// New creates a Config with defaults. The default judge panel is four judges
// with weight vectors summing to 1.0 each, so the round 1 aggregate tops out
// at 40 points.
func New() *Config {
	return &Config{
		LogLevel: "info",
		Addr:     ":9080",
		DataDir:  "",
		JudgeWeights: map[string]map[string]float64{
			"aimarc": {
				"innovation":          0.3,
				"technical_execution": 0.1,
				"market_potential":    0.4,
				"user_experience":     0.2,
			},
			"aishaw": {
				"innovation":          0.3,
				"technical_execution": 0.4,
				"market_potential":    0.1,
				"user_experience":     0.2,
			},
			"peepo": {
				"innovation":          0.2,
				"technical_execution": 0.1,
				"market_potential":    0.3,
				"user_experience":     0.4,
			},
			"spartan": {
				"innovation":          0.2,
				"technical_execution": 0.3,
				"market_potential":    0.4,
				"user_experience":     0.1,
			},
		},
		VoteFormula:   FormulaWalletLog,
		MinVoteTokens: 1,
		MaxVoteTokens: 100,
		LogMultiplier: 3,
		PerWalletCap:  10,
		BonusCap:      10,
		AllowedMints: []string{
			"HeLp6NuQkmYB4pYWo2zYs22mESHXPQYzXbB8n4V98jwC",
		},
		BatchWorkerCount:    4,
		MaxLeaderboardLimit: 100,
	}
}

// Judges returns the configured judge ids.
func (c *Config) Judges() []string {
	out := make([]string, 0, len(c.JudgeWeights))
	for id := range c.JudgeWeights {
		out = append(out, id)
	}
	return out
}

// MintAllowed reports whether mint is on the allow-list.
func (c *Config) MintAllowed(mint string) bool {
	for _, m := range c.AllowedMints {
		if m == mint {
			return true
		}
	}
	return false
}
