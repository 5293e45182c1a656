// Package batch fans per-submission work over a fixed worker pool.
//
// Batch round 2 synthesis runs one independent transaction per submission,
// so interrupting a run leaves finished submissions in a valid terminal
// state and only the remainder needs a retry.
package batch

import (
	"context"
	"runtime"
	"sync"

	"github.com/demoday/arbiter/pkg/logger"
)

// Job is the unit of work: one submission id.
type Job struct {
	SubmissionID string
}

// Result reports the outcome for one job.
type Result struct {
	SubmissionID string `json:"submission_id"`
	Err          error  `json:"-"`
}

// Runner processes a single submission.
type Runner func(ctx context.Context, submissionID string) error

// Option applies a configuration option to the Pool.
type Option func(*Pool)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithLogger sets a custom logger for the pool.
func WithLogger(log logger.Logger) Option {
	return func(p *Pool) {
		if log != nil {
			p.log = log
		}
	}
}

// Pool runs jobs concurrently with bounded parallelism.
type Pool struct {
	workers int
	log     logger.Logger
}

// NewPool creates a Pool with configuration options.
func NewPool(opts ...Option) *Pool {
	p := &Pool{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Get().Named("batch")
	}
	return p
}

// Run processes every job with the runner and returns one result per job,
// in input order. Cancellation stops the intake of new jobs; jobs already
// picked up run to completion so no transaction is torn down mid-flight,
// and unstarted jobs report the context error.
func (p *Pool) Run(ctx context.Context, jobs []Job, run Runner) []Result {
	results := make([]Result, len(jobs))
	type indexed struct {
		idx int
		job Job
	}
	feed := make(chan indexed)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range feed {
				err := run(ctx, item.job.SubmissionID)
				results[item.idx] = Result{SubmissionID: item.job.SubmissionID, Err: err}
				if err != nil {
					p.log.Warn(ctx, "batch job failed",
						logger.String("submissionID", item.job.SubmissionID),
						logger.Error(err),
					)
				}
			}
		}()
	}

feeding:
	for i, job := range jobs {
		select {
		case <-ctx.Done():
			// Mark everything not yet handed out as canceled.
			for j := i; j < len(jobs); j++ {
				results[j] = Result{SubmissionID: jobs[j].SubmissionID, Err: ctx.Err()}
			}
			break feeding
		case feed <- indexed{idx: i, job: job}:
		}
	}
	close(feed)
	wg.Wait()
	return results
}
