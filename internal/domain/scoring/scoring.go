// Package scoring computes per-judge weighted totals and final scores.
//
// Everything here is a pure function of (scores, config): no storage, no
// clock, no external calls. Round 1 is the independent judge pass; round 2
// folds in the community bonus produced by the voting package.
package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/demoday/arbiter/internal/domain/model"
)

// Score bounds for a single criterion.
const (
	minCriterionScore = 0
	maxCriterionScore = 10
)

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithJudgeWeights sets the per-judge weight vectors (judge -> criterion ->
// weight). The map is copied.
func WithJudgeWeights(weights map[string]map[string]float64) Option {
	return func(e *Engine) {
		e.weights = make(map[string]map[string]float64, len(weights))
		for judge, v := range weights {
			inner := make(map[string]float64, len(v))
			for criterion, w := range v {
				inner[criterion] = w
			}
			e.weights[judge] = inner
		}
	}
}

// WithBonusCap bounds the community bonus folded into round 2.
func WithBonusCap(cap float64) Option {
	return func(e *Engine) {
		if cap > 0 {
			e.bonusCap = cap
		}
	}
}

// Engine computes deterministic weighted scores from configured weights.
type Engine struct {
	weights  map[string]map[string]float64
	bonusCap float64
}

// NewEngine creates an Engine with configuration options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		weights:  map[string]map[string]float64{},
		bonusCap: 10,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Judges returns the configured judge ids.
func (e *Engine) Judges() []string {
	out := make([]string, 0, len(e.weights))
	for id := range e.weights {
		out = append(out, id)
	}
	return out
}

// WeightedTotal computes one judge's weighted total over the four criteria.
// Terms are summed in canonical criterion order: float addition is not
// associative, so a map-order walk would wobble in the last ulp between
// calls with identical inputs.
func (e *Engine) WeightedTotal(judgeID string, raw model.RawScores) (float64, error) {
	weights, ok := e.weights[judgeID]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownJudge, judgeID)
	}
	scores := raw.ByCriterion()
	total := 0.0
	for _, criterion := range model.Criteria() {
		score := scores[criterion]
		if score < minCriterionScore || score > maxCriterionScore {
			return 0, fmt.Errorf("%w: %s=%g for judge %s", ErrScoreOutOfRange, criterion, score, judgeID)
		}
		total += score * weights[criterion]
	}
	return total, nil
}

// ComputeRound1 computes the weighted total for every configured judge.
// A missing judge fails with ErrMissingJudge rather than defaulting to zero:
// partial scoring must stay visible.
func (e *Engine) ComputeRound1(rawByJudge map[string]model.RawScores) (map[string]float64, error) {
	totals := make(map[string]float64, len(e.weights))
	for judgeID := range e.weights {
		raw, ok := rawByJudge[judgeID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingJudge, judgeID)
		}
		total, err := e.WeightedTotal(judgeID, raw)
		if err != nil {
			return nil, err
		}
		totals[judgeID] = total
	}
	for judgeID := range rawByJudge {
		if _, ok := e.weights[judgeID]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownJudge, judgeID)
		}
	}
	return totals, nil
}

// Round1Aggregate sums the per-judge weighted totals. The aggregate is a sum
// rather than an average, matching the documented 40-50 point ceiling across
// four judges. Judges are summed in sorted order so the result is identical
// across calls.
func Round1Aggregate(totals map[string]float64) float64 {
	judges := make([]string, 0, len(totals))
	for id := range totals {
		judges = append(judges, id)
	}
	sort.Strings(judges)
	sum := 0.0
	for _, id := range judges {
		sum += totals[id]
	}
	return sum
}

// ComputeRound2 produces the final score from the round 1 aggregate and the
// community bonus. The bonus is clamped to [0, bonus cap] regardless of what
// the aggregator produced.
func (e *Engine) ComputeRound2(round1Aggregate, communityBonus float64) float64 {
	bonus := math.Max(0, math.Min(e.bonusCap, communityBonus))
	return round1Aggregate + bonus
}
