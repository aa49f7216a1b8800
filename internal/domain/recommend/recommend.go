// Package recommend ranks development programs against a student's
// weakest competencies using the administrator-configured
// competency-to-program weight mapping.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/seedevk8s/scms-competency/internal/domain/model"
	"github.com/seedevk8s/scms-competency/pkg/logger"
	"github.com/seedevk8s/scms-competency/pkg/metrics"
)

// Default weakness selection parameters. Scores below the threshold
// count as weaknesses; when a student has none, the lowest
// fallbackCount scores are used instead so the result is never empty
// for an assessed student.
const (
	defaultWeakThreshold = 70
	defaultFallbackCount = 3

	// weightDivisor scales (100-score)*weight into the 0-100 band for
	// a single maximal contribution (score 0, weight 10).
	weightDivisor = 10.0

	// maxProgramScore caps the externally visible recommendation score
	// so it stays on the same scale as raw competency scores.
	maxProgramScore = 100.0
)

// AssessmentSource supplies a student's latest per-competency records.
type AssessmentSource interface {
	LatestByStudent(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error)
}

// WeightSource supplies program-competency weight rows for a set of
// competencies.
type WeightSource interface {
	ForCompetencies(ctx context.Context, ids []int64) ([]model.ProgramCompetencyWeight, error)
}

// ProgramSource resolves program metadata for presentation. The
// scoring math never reads it.
type ProgramSource interface {
	Program(ctx context.Context, id int64) (model.Program, error)
}

// Engine computes ranked program recommendations. Stateless per call;
// safe for concurrent use across students.
type Engine struct {
	assessments   AssessmentSource
	weights       WeightSource
	programs      ProgramSource
	weakThreshold int
	fallbackCount int
	logger        logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithWeakThreshold sets the score below which a competency counts as
// a weakness.
func WithWeakThreshold(threshold int) Option {
	return func(e *Engine) {
		if threshold > 0 {
			e.weakThreshold = threshold
		}
	}
}

// WithFallbackCount sets how many of the lowest-scored competencies
// are used when the student has no score below the threshold.
func WithFallbackCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.fallbackCount = n
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine over the given sources.
func New(assessments AssessmentSource, weights WeightSource, programs ProgramSource, opts ...Option) *Engine {
	e := &Engine{
		assessments:   assessments,
		weights:       weights,
		programs:      programs,
		weakThreshold: defaultWeakThreshold,
		fallbackCount: defaultFallbackCount,
		logger:        logger.Get().Named("recommend"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// programAccumulator collects the running total and distinct reasons
// for one program during a single recommendation pass.
type programAccumulator struct {
	total   float64
	reasons []string
	seen    map[string]struct{}
}

func (p *programAccumulator) add(contribution float64, reason string) {
	p.total += contribution
	if _, dup := p.seen[reason]; !dup {
		p.seen[reason] = struct{}{}
		p.reasons = append(p.reasons, reason)
	}
}

// Recommend returns up to limit programs ranked by how much they would
// address the student's weakest competencies. A student with no
// assessment data gets an empty list, not an error; "nothing to
// recommend yet" is a valid business outcome.
func (e *Engine) Recommend(ctx context.Context, studentID int64, limit int) ([]model.RecommendedProgram, error) {
	if limit < 1 {
		return nil, fmt.Errorf("limit %d: %w", limit, ErrInvalidLimit)
	}

	start := time.Now()
	defer func() {
		metrics.RecordRecommendationLatency(float64(time.Since(start).Milliseconds()))
	}()

	records, err := e.assessments.LatestByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("load latest assessments: %w", err)
	}
	if len(records) == 0 {
		e.logger.Debug(ctx, "no assessment data", logger.Int("studentID", int(studentID)))
		return []model.RecommendedProgram{}, nil
	}

	weaknesses := e.weaknessSet(records)

	ids := make([]int64, 0, len(weaknesses))
	scoreByCompetency := make(map[int64]model.AssessmentRecord, len(weaknesses))
	for _, rec := range weaknesses {
		ids = append(ids, rec.CompetencyID)
		scoreByCompetency[rec.CompetencyID] = rec
	}

	rows, err := e.weights.ForCompetencies(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load program weights: %w", err)
	}

	// Single pass over the weight rows: accumulate per-program totals
	// and insertion-ordered distinct reasons.
	accs := make(map[int64]*programAccumulator)
	for _, row := range rows {
		rec, ok := scoreByCompetency[row.CompetencyID]
		if !ok {
			continue
		}

		// The weaker the score and the stronger the weight, the larger
		// the contribution.
		contribution := (maxProgramScore - float64(rec.Score)) * float64(row.Weight) / weightDivisor

		acc, ok := accs[row.ProgramID]
		if !ok {
			acc = &programAccumulator{seen: make(map[string]struct{})}
			accs[row.ProgramID] = acc
		}
		acc.add(contribution, rec.CompetencyName+" 향상")
	}

	ranked := make([]model.RecommendedProgram, 0, len(accs))
	for programID, acc := range accs {
		ranked = append(ranked, model.RecommendedProgram{
			ProgramID: programID,
			Score:     acc.total,
			Reasons:   acc.reasons,
		})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ProgramID < ranked[j].ProgramID
	})

	if limit < len(ranked) {
		ranked = ranked[:limit]
	}
	for i := range ranked {
		if ranked[i].Score > maxProgramScore {
			ranked[i].Score = maxProgramScore
		}
		if p, err := e.programs.Program(ctx, ranked[i].ProgramID); err == nil {
			ranked[i].Title = p.Title
		}
	}

	metrics.RecordRecommendationServed()
	e.logger.Debug(ctx, "recommendations computed",
		logger.Int("weaknesses", len(weaknesses)),
		logger.Int("programs", len(ranked)),
	)
	return ranked, nil
}

// weaknessSet selects the competencies that drive recommendation:
// every record below the threshold sorted ascending by score, or the
// fallbackCount lowest overall when none is below it. Equal scores
// fall back to competency id ascending.
func (e *Engine) weaknessSet(records []model.AssessmentRecord) []model.AssessmentRecord {
	sorted := make([]model.AssessmentRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score < sorted[j].Score
		}
		return sorted[i].CompetencyID < sorted[j].CompetencyID
	})

	var weak []model.AssessmentRecord
	for _, rec := range sorted {
		if rec.Score < e.weakThreshold {
			weak = append(weak, rec)
		}
	}
	if len(weak) > 0 {
		return weak
	}

	n := e.fallbackCount
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
