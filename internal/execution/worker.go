package execution

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"stf/internal/domain"
	"stf/internal/ui"
)

// specRunner is the part of Runner the pool depends on
type specRunner interface {
	Run(ctx context.Context, specPath string) (domain.Report, error)
}

// WorkerPool evaluates specs in parallel, one session per spec
type WorkerPool struct {
	workers   int
	runner    specRunner
	scheduler Scheduler
	progress  *ui.ProgressBar
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(workers int, runner specRunner, scheduler Scheduler) *WorkerPool {
	if workers <= 0 {
		workers = 1
	}
	return &WorkerPool{
		workers:   workers,
		runner:    runner,
		scheduler: scheduler,
	}
}

// SetProgress sets the progress bar for the worker pool
func (wp *WorkerPool) SetProgress(progress *ui.ProgressBar) {
	wp.progress = progress
}

// Execute evaluates every spec. Reports keep the order of specs; a spec that
// fails is left out and its error joined into the returned error.
func (wp *WorkerPool) Execute(ctx context.Context, specs []string) ([]domain.Report, time.Duration, error) {
	if len(specs) == 0 {
		return nil, 0, nil
	}

	startTime := time.Now()
	reports := make([]domain.Report, len(specs))
	errs := make([]error, len(specs))

	var mu sync.Mutex
	var completed, passed, failed int

	var wg sync.WaitGroup
	for _, batch := range wp.scheduler.Schedule(len(specs), wp.workers) {
		wg.Add(1)
		go func(batch []int) {
			defer wg.Done()
			for _, i := range batch {
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				report, err := wp.runner.Run(ctx, specs[i])
				if err != nil {
					errs[i] = fmt.Errorf("%s: %w", specs[i], err)
				} else {
					reports[i] = report
				}

				mu.Lock()
				completed++
				passed += report.Meta.Summary.Pass
				failed += report.Meta.Summary.Fail
				if wp.progress != nil {
					wp.progress.Update(completed, passed, failed)
				}
				mu.Unlock()
			}
		}(batch)
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}

	var out []domain.Report
	for i := range specs {
		if errs[i] == nil {
			out = append(out, reports[i])
		}
	}
	return out, time.Since(startTime), errors.Join(errs...)
}

var _ Executor = (*WorkerPool)(nil)
