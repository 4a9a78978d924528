package ingest

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 64
)

// Job is one paper to ingest.
type Job struct {
	Path string
}

// Result is the outcome of one job.
type Result struct {
	Path    string
	PaperID string
	Err     error
}

// PoolConfig is the configuration options for the ingest pool.
type PoolConfig struct {
	// Context bounds every job the pool runs. Cancelling it aborts
	// in-flight ingestions. Defaults to context.Background().
	Context context.Context

	// Pipeline runs each job.
	Pipeline *Pipeline

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel.
	QueueSize uint

	// Logger is the provided zap logger
	Logger *zap.Logger
}

// Pool ingests distinct papers in parallel. Chunk order within a paper
// is preserved because each paper is one job.
type Pool struct {
	config *PoolConfig
	ctx    context.Context
	queue  chan Job
	wg     sync.WaitGroup
	logger *zap.Logger

	mu      sync.Mutex
	results []Result
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *PoolConfig) (*Pool, error) {
	if c.Pipeline == nil {
		return nil, fmt.Errorf("pipeline is required")
	}
	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}
	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}
	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}
	if c.Context == nil {
		c.Context = context.Background()
	}

	p := &Pool{
		config: c,
		ctx:    c.Context,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Enqueue submits a job for processing by the worker pool.
// Returns true if enqueued, false if the queue is full.
func (p *Pool) Enqueue(job Job) bool {
	select {
	case p.queue <- job:
		p.logger.Debug("ingest job queued", zap.String("path", job.Path))
		return true
	default:
		p.logger.Error("ingest job dropped, queue full", zap.String("path", job.Path))
		return false
	}
}

// Close signals workers to stop and waits for in-flight jobs to drain.
func (p *Pool) Close() {
	close(p.queue)
	p.wg.Wait()
}

// Results returns the outcomes collected so far. Call after Close for
// the complete set.
func (p *Pool) Results() []Result {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Result(nil), p.results...)
}

// worker is the inner worker thread that continuously pulls jobs off the queue
func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("ingest worker started", zap.Uint("worker_id", id))

	for job := range p.queue {
		paperID, err := p.config.Pipeline.Ingest(p.ctx, job.Path)
		if err != nil {
			p.logger.Error("ingest failed",
				zap.String("path", job.Path),
				zap.Error(err),
			)
		}

		p.mu.Lock()
		p.results = append(p.results, Result{Path: job.Path, PaperID: paperID, Err: err})
		p.mu.Unlock()
	}

	p.logger.Debug("ingest worker stopped", zap.Uint("worker_id", id))
}
