// Package worker runs the asynchronous ingestion of bulk assessment
// submissions.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/seedevk8s/scms-competency/internal/domain/assessment"
	"github.com/seedevk8s/scms-competency/internal/domain/model"
	"github.com/seedevk8s/scms-competency/pkg/logger"
	"github.com/seedevk8s/scms-competency/pkg/metrics"
)

// Worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Recorder validates and appends one assessment record.
type Recorder interface {
	Record(ctx context.Context, params assessment.RecordParams) (model.AssessmentRecord, error)
}

// Queue defines how workers receive submissions.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Submission
}

// IngestWorker consumes submissions off the queue and records them.
// Validation failures are terminal for a submission: the record is
// dropped and counted, never retried.
type IngestWorker struct {
	queue    Queue
	recorder Recorder
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// Option applies a configuration option to the IngestWorker.
type Option func(*IngestWorker)

// WithName sets the worker name for logging.
func WithName(name string) Option {
	return func(w *IngestWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *IngestWorker) {
		if l != nil {
			w.logger = l
		}
	}
}

// NewIngestWorker creates a worker reading from queue and writing
// through recorder.
func NewIngestWorker(queue Queue, recorder Recorder, opts ...Option) *IngestWorker {
	w := &IngestWorker{
		queue:    queue,
		recorder: recorder,
		name:     "ingest",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("ingest"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "ingest" {
		w.logger = w.logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop until ctx is canceled or the queue
// closes.
func (w *IngestWorker) Run(ctx context.Context) {
	defer close(w.done)

	subs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case sub, ok := <-subs:
			if !ok {
				return
			}
			if err := w.process(ctx, sub); err != nil {
				w.logger.Error(ctx, "submission rejected",
					logger.String("submissionID", sub.SubmissionID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *IngestWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// process records a single submission.
func (w *IngestWorker) process(ctx context.Context, sub model.Submission) error {
	start := time.Now()
	defer func() {
		metrics.RecordIngestLatency(float64(time.Since(start).Milliseconds()))
	}()

	rec, err := w.recorder.Record(ctx, assessment.RecordParams{
		StudentID:    sub.StudentID,
		CompetencyID: sub.CompetencyID,
		Score:        sub.Score,
		Date:         sub.Date,
		Assessor:     sub.Assessor,
		Notes:        sub.Notes,
	})
	if err != nil {
		metrics.RecordIngestError()
		if errors.Is(err, assessment.ErrScoreOutOfRange) || errors.Is(err, assessment.ErrUnknownCompetency) {
			return fmt.Errorf("submission %s: %w", sub.SubmissionID, err)
		}
		return fmt.Errorf("submission %s: store failed: %w", sub.SubmissionID, err)
	}

	w.logger.Debug(ctx, "submission ingested",
		logger.String("submissionID", sub.SubmissionID),
		logger.String("recordID", rec.ID),
	)
	return nil
}

// Pool manages a set of ingest workers.
type Pool struct {
	workers []*IngestWorker
	queue   Queue

	shutdown chan struct{}

	logger logger.Logger
}

// NewPool creates workerCount ingest workers over the same queue and
// recorder. workerCount < 1 falls back to a CPU-based default.
func NewPool(workerCount int, queue Queue, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers:  make([]*IngestWorker, workerCount),
		queue:    queue,
		shutdown: make(chan struct{}),
		logger:   logger.Get().Named("ingest-pool"),
	}
	for i := 0; i < workerCount; i++ {
		p.workers[i] = NewIngestWorker(queue, recorder, WithName("ingest-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop signals all workers and waits briefly for each to finish.
func (p *Pool) Stop() {
	close(p.shutdown)
	for _, w := range p.workers {
		select {
		case <-w.shutdown:
			// already signaled
		default:
			close(w.shutdown)
		}
	}
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-time.After(workerShutdownTimeout):
		}
	}
}

// Shutdown closes the queue and waits for the workers to drain it.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return nil
}
