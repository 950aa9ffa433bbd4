package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/tupa-scraper/internal/common"
)

// Job is one file handed to a worker.
type Job struct {
	Index       int
	Path        string
	SubmittedAt time.Time
}

// Result is the outcome of one Job.
type Result[T any] struct {
	Job     Job
	Value   T
	Err     error
	Elapsed time.Duration
}

// Pool runs file jobs on a bounded set of workers.
type Pool struct {
	logger  *slog.Logger
	workers int
	timeout time.Duration
}

type Option func(*Pool)

func WithWorkers(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithFileTimeout bounds each job; zero leaves jobs bounded only by the caller's context.
func WithFileTimeout(d time.Duration) Option {
	return func(p *Pool) {
		if d > 0 {
			p.timeout = d
		}
	}
}

func NewPool(logger *slog.Logger, opts ...Option) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pool{logger: logger, workers: 4}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pool) Workers() int { return p.workers }

// Run hands every path to fn and returns the results in input order. Paths
// not yet handed out when ctx ends carry ctx's error.
func Run[T any](ctx context.Context, p *Pool, paths []string, fn func(context.Context, string) (T, error)) []Result[T] {
	results := make([]Result[T], len(paths))
	if len(paths) == 0 {
		return results
	}

	ch := make(chan Job)
	var wg sync.WaitGroup
	for i := 0; i < min(p.workers, len(paths)); i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range ch {
				results[job.Index] = do(ctx, p, workerID, job, fn)
			}
		}(i + 1)
	}

feed:
	for i, path := range paths {
		select {
		case ch <- Job{Index: i, Path: path, SubmittedAt: time.Now()}:
		case <-ctx.Done():
			for j := i; j < len(paths); j++ {
				results[j] = Result[T]{Job: Job{Index: j, Path: paths[j]}, Err: ctx.Err()}
			}
			break feed
		}
	}
	close(ch)
	wg.Wait()
	return results
}

func do[T any](ctx context.Context, p *Pool, workerID int, job Job, fn func(context.Context, string) (T, error)) Result[T] {
	jctx, cancel := ctx, context.CancelFunc(func() {})
	if p.timeout > 0 {
		jctx, cancel = context.WithTimeout(ctx, p.timeout)
	}
	defer cancel()

	start := time.Now()
	v, err := fn(jctx, job.Path)
	res := Result[T]{Job: job, Value: v, Err: err, Elapsed: time.Since(start)}
	logger := p.logger.With(
		"run_id", common.RunIDFromContext(ctx),
		"phase", common.PhaseFromContext(ctx),
		"worker_id", workerID,
		"path", job.Path,
		"elapsed_ms", res.Elapsed.Milliseconds(),
	)
	if err != nil {
		logger.Warn("async.job.failed", "error", err)
	} else {
		logger.Debug("async.job.done")
	}
	return res
}
