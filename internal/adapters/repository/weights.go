package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/seedevk8s/scms-competency/internal/domain/model"
	"github.com/seedevk8s/scms-competency/pkg/metrics"
)

type weightKey struct {
	programID    int64
	competencyID int64
}

// MemoryWeightStore implements WeightStore with an in-memory map keyed
// by (program, competency). Re-adding a pair replaces the old weight,
// matching how administrators tune the mapping over time.
type MemoryWeightStore struct {
	mu   sync.RWMutex
	rows map[weightKey]model.ProgramCompetencyWeight
}

// NewMemoryWeightStore creates an empty weight store.
func NewMemoryWeightStore() *MemoryWeightStore {
	return &MemoryWeightStore{
		rows: make(map[weightKey]model.ProgramCompetencyWeight),
	}
}

// Add registers or replaces a weight row.
func (s *MemoryWeightStore) Add(ctx context.Context, w model.ProgramCompetencyWeight) error {
	if !w.IsValid() {
		return fmt.Errorf("program %d competency %d weight %d: %w",
			w.ProgramID, w.CompetencyID, w.Weight, ErrInvalidWeight)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rows[weightKey{programID: w.ProgramID, competencyID: w.CompetencyID}] = w
	return nil
}

// ForCompetencies returns all rows matching the given competency ids,
// ordered by (program id, competency id) ascending.
func (s *MemoryWeightStore) ForCompetencies(ctx context.Context, ids []int64) ([]model.ProgramCompetencyWeight, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreQueryLatency(float64(time.Since(start).Milliseconds()))
	}()

	wanted := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.ProgramCompetencyWeight
	for _, row := range s.rows {
		if _, ok := wanted[row.CompetencyID]; ok {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ProgramID != out[j].ProgramID {
			return out[i].ProgramID < out[j].ProgramID
		}
		return out[i].CompetencyID < out[j].CompetencyID
	})
	return out, nil
}

// Count returns the number of stored weight rows.
func (s *MemoryWeightStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
