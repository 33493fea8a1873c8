// Package worker runs per-player home-run fetches on a bounded pool.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dingerzone/seatfinder/internal/adapters/mq/queue"
	"github.com/dingerzone/seatfinder/internal/domain/model"
	"github.com/dingerzone/seatfinder/pkg/logger"
	"github.com/dingerzone/seatfinder/pkg/metrics"
	"golang.org/x/time/rate"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// ErrPoolStopped is returned by FetchAll once the pool has been shut down.
var ErrPoolStopped = errors.New("worker pool stopped")

// Fetcher returns one player's home runs within a window.
type Fetcher interface {
	HomeRuns(ctx context.Context, p model.Player, w model.DateWindow) ([]model.BattedBallEvent, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// InMemoryWorker pulls jobs off the queue and runs the fetcher.
type InMemoryWorker struct {
	queue   Queue
	fetcher Fetcher
	name    string
	delay   time.Duration
	pace    *rate.Limiter
	busy    *atomic.Int64

	done chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, f Fetcher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:   q,
		fetcher: f,
		name:    "worker",
		busy:    &atomic.Int64{},
		done:    make(chan struct{}),
		logger:  logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.delay > 0 {
		w.pace = rate.NewLimiter(rate.Every(w.delay), 1)
	}
	return w
}

// Run processes jobs until the queue closes or ctx is canceled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, j)
		}
	}
}

// process runs one job. The job's own context wins over the worker's.
func (w *InMemoryWorker) process(ctx context.Context, j queue.Job) {
	if j.Ctx != nil {
		ctx = j.Ctx
	}
	metrics.UpdateWorkerActiveCount(int(w.busy.Add(1)))
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.busy.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := w.wait(ctx); err != nil {
		j.Done(nil, err)
		return
	}

	events, err := w.fetcher.HomeRuns(ctx, j.Player, j.Window)
	if err != nil {
		metrics.RecordPlayerFetch("error")
		metrics.RecordPlayerFetchError()
		metrics.RecordErrorByComponent("worker", "fetch_error")
		w.logger.Warn(ctx, "skipping player after fetch failure",
			logger.Int("player_id", j.Player.ID),
			logger.String("player", j.Player.FullName),
			logger.String("team", j.Player.Team),
			logger.Error(err),
		)
		j.Done(nil, fmt.Errorf("fetch player %d: %w", j.Player.ID, err))
		return
	}
	if len(events) == 0 {
		metrics.RecordPlayerFetch("empty")
	} else {
		metrics.RecordPlayerFetch("ok")
	}
	j.Done(events, nil)
}

// wait blocks until the pacer admits one upstream request.
func (w *InMemoryWorker) wait(ctx context.Context) error {
	if w.pace == nil {
		return ctx.Err()
	}
	if err := w.pace.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return err
	}
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   queue.Queue

	mu      sync.RWMutex
	stopped bool

	logger logger.Logger
}

// NewPool creates a worker pool. workerCount below 1 defaults to a multiple of NumCPU.
// Workers share one pacer, so the delay bounds the pool's request rate.
func NewPool(workerCount int, q queue.Queue, f Fetcher, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}

	busy := &atomic.Int64{}
	var pace *rate.Limiter
	for i := 0; i < workerCount; i++ {
		w := NewInMemoryWorker(q, f, append(opts, WithName("worker-"+strconv.Itoa(i)))...)
		w.busy = busy
		if i == 0 {
			pace = w.pace
		}
		w.pace = pace
		p.workers[i] = w
	}
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// FetchStats summarizes one FetchAll call.
type FetchStats struct {
	Players int
	Failed  int
	Events  int
}

// FetchAll fetches every player's home runs and returns them in roster order.
// Players whose fetch fails are skipped and counted.
func (p *Pool) FetchAll(ctx context.Context, players []model.Player, window model.DateWindow) ([]model.BattedBallEvent, FetchStats, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		return nil, FetchStats{}, ErrPoolStopped
	}
	if err := ctx.Err(); err != nil {
		return nil, FetchStats{}, err
	}

	stats := FetchStats{Players: len(players)}
	results := make([][]model.BattedBallEvent, len(players))
	failed := make([]bool, len(players))

	var wg sync.WaitGroup
	for i, pl := range players {
		i := i
		wg.Add(1)
		err := p.queue.Enqueue(ctx, queue.Job{
			Ctx:    ctx,
			Seq:    i,
			Player: pl,
			Window: window,
			Done: func(events []model.BattedBallEvent, err error) {
				defer wg.Done()
				if err != nil {
					failed[i] = true
					return
				}
				results[i] = events
			},
		})
		if err != nil {
			wg.Done()
			failed[i] = true
			p.logger.Warn(ctx, "could not queue player fetch",
				logger.Int("player_id", pl.ID), logger.Error(err))
		}
	}

	waited := make(chan struct{})
	go func() {
		wg.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-ctx.Done():
		return nil, stats, ctx.Err()
	}

	var out []model.BattedBallEvent
	for i := range players {
		if failed[i] {
			stats.Failed++
			continue
		}
		out = append(out, results[i]...)
	}
	stats.Events = len(out)
	return out, stats, nil
}

// Shutdown closes the queue and waits for workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	p.mu.Unlock()

	if err := p.queue.Close(); err != nil {
		p.logger.Error(ctx, "error closing queue", logger.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			return fmt.Errorf("worker shutdown: %w", shutdownCtx.Err())
		}
	}
	return nil
}
