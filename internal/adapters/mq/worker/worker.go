// Package worker runs batch conversion jobs on a fixed pool of goroutines.
package worker

import (
	"cmp"
	"context"
	"runtime"
	"slices"
	"strconv"
	"sync"

	"github.com/okian/nbtscore/internal/adapters/mq/queue"
	service "github.com/okian/nbtscore/internal/app"
	"github.com/okian/nbtscore/pkg/logger"
	"github.com/okian/nbtscore/pkg/metrics"
)

// Handler converts one job.
type Handler interface {
	Handle(ctx context.Context, job queue.Job) (service.Report, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, job queue.Job) (service.Report, error)

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, job queue.Job) (service.Report, error) {
	return f(ctx, job)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue() <-chan queue.Job
}

// Result is the outcome of one job.
type Result struct {
	Job    queue.Job
	Report service.Report
	Err    error
}

// InMemoryWorker takes jobs off a queue until it is closed.
type InMemoryWorker struct {
	handler Handler
	name    string
	logger  logger.Logger
	metrics *metrics.Manager
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(handler Handler, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		handler: handler,
		name:    "worker",
		logger:  logger.Get(),
		metrics: metrics.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)
	return w
}

// Run handles every job delivered on jobs and sends one Result per job.
// Once ctx is done the remaining jobs are reported with the context error
// without being handled.
func (w *InMemoryWorker) Run(ctx context.Context, jobs <-chan queue.Job, results chan<- Result) {
	for job := range jobs {
		if err := ctx.Err(); err != nil {
			results <- Result{Job: job, Err: err}
			continue
		}
		results <- w.process(ctx, job)
	}
}

func (w *InMemoryWorker) process(ctx context.Context, job queue.Job) Result {
	w.metrics.AddBatchWorkers(1)
	defer w.metrics.AddBatchWorkers(-1)

	w.logger.Debug(ctx, "job started",
		logger.String("job_id", job.ID),
		logger.String("input", job.Input),
	)
	report, err := w.handler.Handle(ctx, job)
	if err != nil {
		w.logger.Error(ctx, "job failed",
			logger.String("job_id", job.ID),
			logger.String("input", job.Input),
			logger.Error(err),
		)
	}
	return Result{Job: job, Report: report, Err: err}
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	logger  logger.Logger
}

// NewPool creates a pool of size workers sharing handler. A size below one
// means one worker per CPU.
func NewPool(size int, handler Handler, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		workers: make([]*InMemoryWorker, size),
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		wopts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		p.workers[i] = NewInMemoryWorker(handler, wopts...)
	}
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Run drains q with all workers and returns one Result per job, ordered by
// Job.Seq. It returns once q is closed and every job has been handled, so
// the caller must close q after enqueuing.
func (p *Pool) Run(ctx context.Context, q Queue) []Result {
	jobs := q.Dequeue()
	results := make(chan Result, len(p.workers))

	var wg sync.WaitGroup
	for _, w := range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.Run(ctx, jobs, results)
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	var out []Result
	for r := range results {
		out = append(out, r)
	}
	slices.SortFunc(out, func(a, b Result) int { return cmp.Compare(a.Job.Seq, b.Job.Seq) })

	p.logger.Debug(ctx, "batch finished",
		logger.Int("workers", len(p.workers)),
		logger.Int("jobs", len(out)),
	)
	return out
}
