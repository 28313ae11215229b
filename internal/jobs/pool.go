// Package jobs is the worker pool (component G) described in spec §4.7: a
// bounded multi-producer/multi-consumer queue drained by a fixed number of
// worker goroutines, each handing one Job at a time to the engine's step
// loop. Grounded on pkg/engine/dag_executor.go's executeWave, which bounds
// parallelism with a buffered chan struct{} semaphore and a sync.WaitGroup
// — here the buffered job channel itself is the bound, and every worker
// receives from that one shared channel.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/openobserve/swisspipe/internal/engine"
	"github.com/openobserve/swisspipe/pkg/models"
)

// Stepper runs one Job to its next suspension point. Implemented by
// *internal/engine.Engine; kept as an interface here so the pool can be
// tested without a real engine.
type Stepper interface {
	Step(ctx context.Context, job models.Job) error
}

// ErrFull is returned by Enqueue when the queue is at capacity — the
// producer (ingestion, a scheduler, or the engine's own fan-out) should
// treat this as backpressure, not data loss: the execution row already
// exists and a later re-poll or retry will pick it up.
var ErrFull = fmt.Errorf("job queue is full")

// Pool is the bounded job queue plus its worker goroutines.
type Pool struct {
	queue   chan models.Job
	engine  Stepper
	workers int
	onError func(job models.Job, err error)

	claimed sync.Map // execution ID -> struct{}, advisory in-process dedup

	wg   sync.WaitGroup
	done chan struct{}
}

// Config bounds the pool's size and concurrency.
type Config struct {
	Workers       int
	QueueCapacity int
}

// New builds a Pool. onError is called (from a worker goroutine) whenever
// Step returns an error other than engine.ErrDuplicateJob; it may be nil.
func New(cfg Config, engine Stepper, onError func(job models.Job, err error)) *Pool {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = 1024
	}
	return &Pool{
		queue:   make(chan models.Job, cfg.QueueCapacity),
		engine:  engine,
		workers: cfg.Workers,
		onError: onError,
		done:    make(chan struct{}),
	}
}

// Enqueue submits a job for processing. It never blocks: a full queue
// returns ErrFull immediately rather than stalling the caller (which is
// frequently an HTTP request handler in internal/ingestion).
func (p *Pool) Enqueue(job models.Job) error {
	select {
	case p.queue <- job:
		return nil
	default:
		return ErrFull
	}
}

// Run starts the worker goroutines and blocks until ctx is cancelled, then
// waits for in-flight jobs to finish before returning.
func (p *Pool) Run(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	<-ctx.Done()
	p.wg.Wait()
	close(p.done)
}

// Stopped reports whether Run has returned.
func (p *Pool) Stopped() <-chan struct{} {
	return p.done
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.queue:
			p.process(ctx, job)
		}
	}
}

// process advisory-dedups on execution ID: two jobs for the same execution
// arriving back to back (e.g. a retry re-enqueue racing a scheduler
// timeout) shouldn't both pay for a claim round-trip when one would do.
// The in-process claimed set is only a short-circuit — dropping a
// duplicate here is safe because the execution's own scheduler or resumer
// re-derives its next Job from database state, it never depends on this
// particular delivery succeeding. ClaimExecution in storage remains the
// actual authority against two different process's workers racing.
func (p *Pool) process(ctx context.Context, job models.Job) {
	if _, inFlight := p.claimed.LoadOrStore(job.ExecutionID, struct{}{}); inFlight {
		return
	}
	defer p.claimed.Delete(job.ExecutionID)

	if err := p.engine.Step(ctx, job); err != nil && !errors.Is(err, engine.ErrDuplicateJob) {
		if p.onError != nil {
			p.onError(job, err)
		}
	}
}
