// Package service wires the scoring engine, vote aggregator, lifecycle rules
// and stores into the operations exposed over HTTP.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/demoday/arbiter/internal/adapters/batch"
	"github.com/demoday/arbiter/internal/adapters/repository"
	"github.com/demoday/arbiter/internal/config"
	"github.com/demoday/arbiter/internal/domain/dedupe"
	"github.com/demoday/arbiter/internal/domain/lifecycle"
	"github.com/demoday/arbiter/internal/domain/model"
	"github.com/demoday/arbiter/internal/domain/scoring"
	"github.com/demoday/arbiter/internal/domain/verdict"
	"github.com/demoday/arbiter/internal/domain/voting"
	"github.com/demoday/arbiter/pkg/logger"
	"github.com/demoday/arbiter/pkg/metrics"
)

// Service implements the engine's command and query surface.
type Service struct {
	mu sync.RWMutex

	cfg        *config.Config
	store      repository.Store
	engine     *scoring.Engine
	aggregator *voting.Aggregator
	generator  verdict.Generator
	seen       dedupe.Cache
	pool       *batch.Pool
	log        logger.Logger

	// subLocks serializes scoring and transitions per submission.
	subLocks sync.Map // submission id -> *sync.Mutex

	started bool
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithStore injects a store, bypassing the sqlite default. Used by tests.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithVerdictGenerator injects the round 2 verdict generator.
func WithVerdictGenerator(g verdict.Generator) Option {
	return func(s *Service) {
		if g != nil {
			s.generator = g
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New constructs a Service for the given configuration.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return nil
	}
	if s.log == nil {
		s.log = logger.Get().Named("service")
	}
	if s.store == nil {
		store, err := repository.NewSqliteStore(s.cfg.DataDir, s.log.Named("store"))
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		s.store = store
	}
	s.engine = scoring.NewEngine(
		scoring.WithJudgeWeights(s.cfg.JudgeWeights),
		scoring.WithBonusCap(s.cfg.BonusCap),
	)
	s.aggregator = voting.NewAggregator(
		voting.WithFormula(s.cfg.VoteFormula),
		voting.WithTokenBounds(s.cfg.MinVoteTokens, s.cfg.MaxVoteTokens),
		voting.WithLogWeight(s.cfg.LogMultiplier, s.cfg.PerWalletCap),
		voting.WithBonusCap(s.cfg.BonusCap),
	)
	if s.generator == nil {
		s.generator = verdict.NewTemplateGenerator()
	}
	s.seen = dedupe.NewCache()
	s.pool = batch.NewPool(
		batch.WithWorkerCount(s.cfg.BatchWorkerCount),
		batch.WithLogger(s.log.Named("batch")),
	)
	s.started = true
	s.log.Info(ctx, "scoring engine started",
		logger.Int("judges", len(s.cfg.JudgeWeights)),
		logger.String("voteFormula", s.cfg.VoteFormula),
		logger.Float64("bonusCap", s.cfg.BonusCap),
	)
	return nil
}

// Stop releases the service components.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		return
	}
	if err := s.store.Close(); err != nil {
		s.log.Error(context.Background(), "error closing store", logger.Error(err))
	}
	s.started = false
	s.log.Info(context.Background(), "scoring engine stopped")
}

// lockSubmission acquires the single-writer lock for a submission and
// returns the unlock func.
func (s *Service) lockSubmission(id string) func() {
	m, _ := s.subLocks.LoadOrStore(id, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// CreateSubmission registers a new submission in status submitted.
func (s *Service) CreateSubmission(ctx context.Context, id, name, category, links string) (model.Submission, error) {
	sub := model.Submission{
		ID:       id,
		Name:     name,
		Category: category,
		Links:    links,
		Status:   model.StatusSubmitted,
	}
	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		return model.Submission{}, err
	}
	s.log.Info(ctx, "submission registered",
		logger.String("submissionID", id),
		logger.String("category", category),
	)
	return sub, nil
}

// Advance moves a submission to target. Re-applying a transition that was
// already applied is a no-op that returns the current row. Advancing to
// scored requires a round 1 row from every configured judge; advancing to
// completed runs round 2 synthesis as one transaction.
func (s *Service) Advance(ctx context.Context, submissionID string, target model.Status) (model.Submission, error) {
	unlock := s.lockSubmission(submissionID)
	defer unlock()

	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return model.Submission{}, err
	}
	decision, err := lifecycle.Decide(sub.Status, target)
	if err != nil {
		metrics.RecordInvalidTransition()
		return model.Submission{}, err
	}
	if decision == lifecycle.Noop {
		return sub, nil
	}
	switch target {
	case model.StatusScored:
		if err := s.requireRound1Complete(ctx, submissionID); err != nil {
			return model.Submission{}, err
		}
	case model.StatusCompleted:
		return s.synthesizeLocked(ctx, sub)
	}
	if err := s.store.UpdateSubmissionStatus(ctx, submissionID, sub.Status, target, nil); err != nil {
		return model.Submission{}, err
	}
	metrics.RecordTransition()
	s.log.Info(ctx, "submission advanced",
		logger.String("submissionID", submissionID),
		logger.String("from", string(sub.Status)),
		logger.String("to", string(target)),
	)
	return s.store.GetSubmission(ctx, submissionID)
}

// requireRound1Complete checks that every configured judge has a round 1 row.
func (s *Service) requireRound1Complete(ctx context.Context, submissionID string) error {
	rows, err := s.store.ListJudgeScores(ctx, submissionID, 1)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(rows))
	for _, r := range rows {
		have[r.JudgeID] = true
	}
	for _, judge := range s.cfg.Judges() {
		if !have[judge] {
			return fmt.Errorf("%w: no round 1 score from %s for %s",
				lifecycle.ErrIncompleteScoring, judge, submissionID)
		}
	}
	return nil
}

// ScoreRound1 computes and persists the round 1 rows for a submission. The
// submission must be in researched; every configured judge must be present.
func (s *Service) ScoreRound1(ctx context.Context, submissionID string, rawByJudge map[string]model.RawScores) (map[string]float64, error) {
	unlock := s.lockSubmission(submissionID)
	defer unlock()

	start := time.Now()
	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != model.StatusResearched {
		return nil, fmt.Errorf("%w: %s is %s, round 1 scoring requires %s",
			ErrNotReady, submissionID, sub.Status, model.StatusResearched)
	}
	totals, err := s.engine.ComputeRound1(rawByJudge)
	if err != nil {
		return nil, err
	}
	rows := make([]model.JudgeScore, 0, len(totals))
	for judgeID, raw := range rawByJudge {
		rows = append(rows, model.JudgeScore{
			SubmissionID:       submissionID,
			JudgeID:            judgeID,
			Round:              1,
			Innovation:         raw.Innovation,
			TechnicalExecution: raw.TechnicalExecution,
			MarketPotential:    raw.MarketPotential,
			UserExperience:     raw.UserExperience,
			WeightedTotal:      totals[judgeID],
		})
	}
	if err := s.store.InsertJudgeScores(ctx, rows); err != nil {
		return nil, err
	}
	metrics.RecordRound1Computed()
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
	s.log.Info(ctx, "round 1 scored",
		logger.String("submissionID", submissionID),
		logger.Float64("aggregate", scoring.Round1Aggregate(totals)),
	)
	return totals, nil
}

// SynthesizeRound2 runs round 2 for one submission in community-voting.
func (s *Service) SynthesizeRound2(ctx context.Context, submissionID string) (model.Submission, error) {
	unlock := s.lockSubmission(submissionID)
	defer unlock()

	sub, err := s.store.GetSubmission(ctx, submissionID)
	if err != nil {
		return model.Submission{}, err
	}
	if sub.Status.AtLeast(model.StatusCompleted) {
		// Already synthesized; idempotent like the lifecycle transition.
		return sub, nil
	}
	if sub.Status != model.StatusCommunityVoting {
		return model.Submission{}, fmt.Errorf("%w: %s is %s, round 2 requires %s",
			ErrNotReady, submissionID, sub.Status, model.StatusCommunityVoting)
	}
	return s.synthesizeLocked(ctx, sub)
}

// synthesizeLocked performs round 2 synthesis. Callers hold the submission
// lock and have verified the submission is in community-voting.
//
// Verdict generation runs before anything is written: when the generator
// fails, the ledger and status are untouched and the whole call is safe to
// retry. Only after every verdict exists do the round 2 rows and the
// completed status commit as one transaction.
func (s *Service) synthesizeLocked(ctx context.Context, sub model.Submission) (model.Submission, error) {
	start := time.Now()
	round1, err := s.store.ListJudgeScores(ctx, sub.ID, 1)
	if err != nil {
		return model.Submission{}, err
	}
	if err := s.requireRound1Complete(ctx, sub.ID); err != nil {
		return model.Submission{}, err
	}

	totals := make(map[string]float64, len(round1))
	for _, row := range round1 {
		totals[row.JudgeID] = row.WeightedTotal
	}
	aggregate := scoring.Round1Aggregate(totals)

	bonus, err := s.CommunityBonus(ctx, sub.ID)
	if err != nil {
		return model.Submission{}, err
	}
	final := s.engine.ComputeRound2(aggregate, bonus)

	rows := make([]model.JudgeScore, 0, len(round1))
	for _, row := range round1 {
		text, err := s.generator.Generate(ctx, verdict.Request{
			SubmissionID:   sub.ID,
			SubmissionName: sub.Name,
			JudgeID:        row.JudgeID,
			WeightedTotal:  row.WeightedTotal,
			Round1Total:    aggregate,
			CommunityBonus: bonus,
			FinalScore:     final,
		})
		if err != nil {
			metrics.RecordVerdictFailure()
			return model.Submission{}, fmt.Errorf("%w: judge %s: %w", verdict.ErrUnavailable, row.JudgeID, err)
		}
		r2 := row
		r2.ID = 0
		r2.Round = 2
		r2.Verdict = text
		r2.CommunityBonusApplied = bonus
		rows = append(rows, r2)
	}

	if err := s.store.CommitRound2(ctx, sub.ID, model.StatusCommunityVoting, final, rows); err != nil {
		return model.Submission{}, err
	}
	metrics.RecordRound2Computed()
	metrics.RecordTransition()
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
	s.log.Info(ctx, "round 2 synthesized",
		logger.String("submissionID", sub.ID),
		logger.Float64("round1Aggregate", aggregate),
		logger.Float64("communityBonus", bonus),
		logger.Float64("finalScore", final),
	)
	return s.store.GetSubmission(ctx, sub.ID)
}

// SynthesizeRound2Batch runs round 2 for every submission currently in
// community-voting, one independent transaction each, so an interrupted
// batch only needs the remainder retried.
func (s *Service) SynthesizeRound2Batch(ctx context.Context) ([]batch.Result, error) {
	ready, err := s.store.ListSubmissions(ctx, model.StatusCommunityVoting, "")
	if err != nil {
		return nil, err
	}
	jobs := make([]batch.Job, len(ready))
	for i, sub := range ready {
		jobs[i] = batch.Job{SubmissionID: sub.ID}
	}
	results := s.pool.Run(ctx, jobs, func(ctx context.Context, id string) error {
		_, err := s.SynthesizeRound2(ctx, id)
		return err
	})
	return results, nil
}

// CommunityBonus computes the current bonus for a submission under the
// configured formula, clamped to [0, bonus cap].
func (s *Service) CommunityBonus(ctx context.Context, submissionID string) (float64, error) {
	switch s.aggregator.Formula() {
	case config.FormulaReactionTally:
		// Cross-submission aggregate: the max over the whole batch matters.
		all, err := s.store.ListAllVotes(ctx)
		if err != nil {
			return 0, err
		}
		bonuses := s.aggregator.ReactionTallyBonuses(voting.CountReactions(all))
		return bonuses[submissionID], nil
	default:
		entries, err := s.store.ListVotes(ctx, submissionID)
		if err != nil {
			return 0, err
		}
		return s.aggregator.WalletLogBonus(entries), nil
	}
}

// Started reports whether Start completed.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// ensureStarted guards handlers against use before Start.
func (s *Service) ensureStarted() error {
	if !s.Started() {
		return errors.New("service not started")
	}
	return nil
}
