// Package worker implements the bounded-concurrency fan-out that runs one
// cycle's probe jobs and joins on every result before returning.
package worker

import (
	"context"
	"sync"

	"github.com/gnmradar/collector/internal/probe"
	"github.com/gnmradar/collector/pkg/types"
)

// Pool runs a batch of Jobs with at most workerCount probes in flight at
// once, sized to min(max_workers, len(jobs)).
type Pool struct {
	workerCount int
	cfg         probe.Config
}

// NewPool builds a Pool capped at maxWorkers concurrent probes.
func NewPool(maxWorkers int, cfg probe.Config) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	return &Pool{workerCount: maxWorkers, cfg: cfg}
}

// Run executes every job, blocking until all have completed or ctx is
// done, and returns one Result per job (order not guaranteed to match
// input order). A job not yet started when ctx is done is not probed; its
// Result is a hard failure with meta.reason "timeout". This is the "await
// all results" step of the cycle.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	if len(jobs) == 0 {
		return nil
	}

	workers := p.workerCount
	if workers > len(jobs) {
		workers = len(jobs)
	}

	jobCh := make(chan Job, len(jobs))
	for _, j := range jobs {
		jobCh <- j
	}
	close(jobCh)

	resultCh := make(chan Result, len(jobs))
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				if err := ctx.Err(); err != nil {
					resultCh <- Result{ServiceID: job.Service.ServiceID, Outcome: types.CheckResult{
						HardFailure: true,
						Meta:        map[string]any{"reason": "timeout", "error": err.Error()},
					}}
					continue
				}
				outcome := probe.Run(ctx, job.Service, job.Host, p.cfg)
				resultCh <- Result{ServiceID: job.Service.ServiceID, Outcome: outcome}
			}
		}()
	}

	wg.Wait()
	close(resultCh)

	results := make([]Result, 0, len(jobs))
	for r := range resultCh {
		results = append(results, r)
	}
	return results
}
