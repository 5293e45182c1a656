package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if ARBITER_CONFIG is set
//  3. env (prefix ARBITER_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv("ARBITER_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: ARBITER_ADDR, ARBITER_BONUS_CAP, ...
	// Keys map to the flat koanf tags on the struct, so underscores are kept.
	envProvider := env.Provider("ARBITER_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "arbiter_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks structural consistency of the configuration.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case len(c.JudgeWeights) == 0:
		return fmt.Errorf("%w: at least one judge must be configured", ErrInvalidConfig)
	case c.VoteFormula != FormulaWalletLog && c.VoteFormula != FormulaReactionTally:
		return fmt.Errorf("%w: unknown vote formula %q", ErrInvalidConfig, c.VoteFormula)
	case c.MaxVoteTokens <= 0:
		return fmt.Errorf("%w: max_vote_tokens must be positive", ErrInvalidConfig)
	case c.MinVoteTokens < 0 || c.MinVoteTokens > c.MaxVoteTokens:
		return fmt.Errorf("%w: min_vote_tokens must be in [0, max_vote_tokens]", ErrInvalidConfig)
	case c.BonusCap <= 0:
		return fmt.Errorf("%w: bonus_cap must be positive", ErrInvalidConfig)
	case c.PerWalletCap <= 0:
		return fmt.Errorf("%w: per_wallet_cap must be positive", ErrInvalidConfig)
	case c.BatchWorkerCount < 1:
		return fmt.Errorf("%w: batch_worker_count must be at least 1", ErrInvalidConfig)
	}
	for judge, weights := range c.JudgeWeights {
		for criterion, w := range weights {
			if w < 0 {
				return fmt.Errorf("%w: negative weight %f for %s/%s", ErrInvalidConfig, w, judge, criterion)
			}
		}
	}
	return nil
}
