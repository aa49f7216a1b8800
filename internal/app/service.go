// Package service wires the stores, the ingest pipeline and the domain
// engines into the single object the HTTP API depends on.
package service

import (
	"context"
	"runtime"
	"sync"

	submissionqueue "github.com/seedevk8s/scms-competency/internal/adapters/mq/queue"
	workerpool "github.com/seedevk8s/scms-competency/internal/adapters/mq/worker"
	repository "github.com/seedevk8s/scms-competency/internal/adapters/repository"
	"github.com/seedevk8s/scms-competency/internal/domain/assessment"
	"github.com/seedevk8s/scms-competency/internal/domain/dedupe"
	"github.com/seedevk8s/scms-competency/internal/domain/model"
	"github.com/seedevk8s/scms-competency/internal/domain/recommend"
	"github.com/seedevk8s/scms-competency/pkg/logger"
	"github.com/seedevk8s/scms-competency/pkg/metrics"
)

// Service implements the API dependencies for the competency system.
type Service struct {
	mu sync.RWMutex

	// Core components
	assessments *repository.MemoryAssessmentStore
	catalog     *repository.MemoryCatalog
	weights     *repository.MemoryWeightStore
	deduper     dedupe.Deduper
	queue       submissionqueue.Queue
	pool        *workerpool.Pool
	aggregator  *assessment.Aggregator
	engine      *recommend.Engine

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	weakThreshold int
	fallbackCount int
	topCount      int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of ingest workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the submission queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithWeakScoreThreshold sets the recommendation weakness threshold.
func WithWeakScoreThreshold(threshold int) Option {
	return func(s *Service) {
		if threshold > 0 {
			s.weakThreshold = threshold
		}
	}
}

// WithFallbackCount sets how many of the lowest scores feed
// recommendation when none is below the threshold.
func WithFallbackCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.fallbackCount = n
		}
	}
}

// WithReportTopCount sets how many strengths and weaknesses a report
// lists.
func WithReportTopCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.topCount = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     10_000,
		dedupeSize:    50_000,
		weakThreshold: 70,
		fallbackCount: 3,
		topCount:      3,
		logger:        nil, // resolved in Start
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting competency service...")

	s.assessments = repository.NewMemoryAssessmentStore()
	s.catalog = repository.NewMemoryCatalog()
	s.weights = repository.NewMemoryWeightStore()
	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.queue = submissionqueue.NewInMemoryQueue(
		submissionqueue.WithCapacity(s.queueSize),
	)

	s.aggregator = assessment.New(s.assessments, s.catalog,
		assessment.WithTopCount(s.topCount),
	)
	s.engine = recommend.New(s.assessments, s.weights, s.catalog,
		recommend.WithWeakThreshold(s.weakThreshold),
		recommend.WithFallbackCount(s.fallbackCount),
	)

	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.aggregator)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "competency service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
	)
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping competency service...")

	if s.queue != nil {
		_ = s.queue.Close()
	}
	if s.pool != nil {
		s.pool.Stop()
	}

	s.started = false
	s.logger.Info(ctx, "competency service stopped")
}

// RecordAssessment validates and appends one assessment synchronously.
func (s *Service) RecordAssessment(ctx context.Context, params assessment.RecordParams) (model.AssessmentRecord, error) {
	return s.aggregator.Record(ctx, params)
}

// Latest returns the student's most recent record per competency.
func (s *Service) Latest(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error) {
	return s.aggregator.Latest(ctx, studentID)
}

// History returns the student's full assessment history, newest first.
func (s *Service) History(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error) {
	return s.aggregator.History(ctx, studentID)
}

// Report builds the competency report for a student.
func (s *Service) Report(ctx context.Context, studentID int64) (model.CompetencyReport, error) {
	return s.aggregator.Report(ctx, studentID)
}

// Statistics aggregates one competency's history across all students.
func (s *Service) Statistics(ctx context.Context, competencyID int64) (model.CompetencyStatistics, error) {
	return s.aggregator.Statistics(ctx, competencyID)
}

// Recommend returns up to limit ranked program recommendations.
func (s *Service) Recommend(ctx context.Context, studentID int64, limit int) ([]model.RecommendedProgram, error) {
	return s.engine.Recommend(ctx, studentID, limit)
}

// AddCategory registers a competency category.
func (s *Service) AddCategory(ctx context.Context, cat model.CompetencyCategory) error {
	return s.catalog.AddCategory(ctx, cat)
}

// AddCompetency registers a competency under an existing category.
func (s *Service) AddCompetency(ctx context.Context, comp model.Competency) error {
	return s.catalog.AddCompetency(ctx, comp)
}

// AddProgram registers a development program.
func (s *Service) AddProgram(ctx context.Context, p model.Program) error {
	return s.catalog.AddProgram(ctx, p)
}

// AddWeight registers or replaces a program-competency weight.
func (s *Service) AddWeight(ctx context.Context, w model.ProgramCompetencyWeight) error {
	return s.weights.Add(ctx, w)
}

// SeenAndRecord atomically checks if a submission id was seen and
// records it if not. Returns true if the id was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordSubmissionDuplicate()
	}
	return seen
}

// Unrecord removes a submission id from the seen list so it can be
// retried after a failed enqueue.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits an assessment for asynchronous ingestion. Returns
// false when the queue is full or closed.
func (s *Service) Enqueue(ctx context.Context, sub model.Submission) bool {
	ok := s.queue.Enqueue(ctx, sub)
	if !ok {
		s.logger.Warn(ctx, "submission rejected, queue saturated",
			logger.String("submissionID", sub.SubmissionID),
		)
	}
	return ok
}

// QueueLen returns the current number of queued submissions.
func (s *Service) QueueLen(ctx context.Context) int {
	return s.queue.Len(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}

	if s.started {
		categories, competencies, programs := s.catalog.Counts(ctx)
		queueLen := s.queue.Len(ctx)
		totalRecords := s.assessments.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalAssessments"] = totalRecords
		stats["categories"] = categories
		stats["competencies"] = competencies
		stats["programs"] = programs
		stats["weights"] = s.weights.Count(ctx)
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoreRecordsTotal(totalRecords)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
