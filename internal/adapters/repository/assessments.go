package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/seedevk8s/scms-competency/internal/domain/model"
	"github.com/seedevk8s/scms-competency/pkg/metrics"
)

// MemoryAssessmentStore implements AssessmentStore with an in-memory
// append-only log per student. Safe for concurrent use.
type MemoryAssessmentStore struct {
	mu        sync.RWMutex
	byStudent map[int64][]model.AssessmentRecord
	nextSeq   int64
	total     int
}

// NewMemoryAssessmentStore creates an empty assessment store.
func NewMemoryAssessmentStore(opts ...AssessmentOption) *MemoryAssessmentStore {
	s := &MemoryAssessmentStore{
		byStudent: make(map[int64][]model.AssessmentRecord),
		nextSeq:   1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append stores a new historical record.
func (s *MemoryAssessmentStore) Append(ctx context.Context, rec model.AssessmentRecord) (model.AssessmentRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreUpdateLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ID = uuid.NewString()
	rec.Seq = s.nextSeq
	rec.CreatedAt = time.Now().UTC()
	s.nextSeq++

	s.byStudent[rec.StudentID] = append(s.byStudent[rec.StudentID], rec)
	s.total++
	metrics.UpdateStoreRecordsTotal(s.total)

	return rec, nil
}

// LatestByStudent reduces the student's history to one record per
// competency: max Date wins, ties go to the higher Seq.
func (s *MemoryAssessmentStore) LatestByStudent(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[int64]model.AssessmentRecord)
	for _, rec := range s.byStudent[studentID] {
		cur, ok := latest[rec.CompetencyID]
		if !ok || rec.Date.After(cur.Date) || (rec.Date.Equal(cur.Date) && rec.Seq > cur.Seq) {
			latest[rec.CompetencyID] = rec
		}
	}

	out := make([]model.AssessmentRecord, 0, len(latest))
	for _, rec := range latest {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CompetencyID < out[j].CompetencyID
	})
	return out, nil
}

// HistoryByStudent returns the full history, newest first.
func (s *MemoryAssessmentStore) HistoryByStudent(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.byStudent[studentID]
	out := make([]model.AssessmentRecord, len(history))
	copy(out, history)
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Seq > out[j].Seq
	})
	return out, nil
}

// ByCompetency returns every record for a competency across students.
func (s *MemoryAssessmentStore) ByCompetency(ctx context.Context, competencyID int64) ([]model.AssessmentRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.AssessmentRecord
	for _, history := range s.byStudent {
		for _, rec := range history {
			if rec.CompetencyID == competencyID {
				out = append(out, rec)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

// Count returns the total number of stored records.
func (s *MemoryAssessmentStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}
