// Package assessment computes competency grades, category rollups and
// strength/weakness reports from a student's assessment history.
package assessment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/seedevk8s/scms-competency/internal/domain/model"
	"github.com/seedevk8s/scms-competency/pkg/logger"
	"github.com/seedevk8s/scms-competency/pkg/metrics"
)

// defaultTopCount bounds the strengths and weaknesses lists.
const defaultTopCount = 3

// Store abstracts the slice of the assessment store the aggregator
// needs. History is append-only; Append never overwrites prior records.
type Store interface {
	Append(ctx context.Context, rec model.AssessmentRecord) (model.AssessmentRecord, error)
	LatestByStudent(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error)
	HistoryByStudent(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error)
	ByCompetency(ctx context.Context, competencyID int64) ([]model.AssessmentRecord, error)
}

// Catalog resolves competency and category reference data.
type Catalog interface {
	Competency(ctx context.Context, id int64) (model.Competency, error)
	Category(ctx context.Context, id int64) (model.CompetencyCategory, error)
}

// RecordParams carries the caller-supplied fields of a new assessment.
type RecordParams struct {
	StudentID    int64
	CompetencyID int64
	Score        int
	Date         time.Time // zero value defaults to today
	Assessor     string
	Notes        string
}

// Aggregator implements the assessment side of the competency engine.
// It is stateless between calls; all state lives in the store.
type Aggregator struct {
	store    Store
	catalog  Catalog
	topCount int
	logger   logger.Logger
}

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithTopCount sets how many strengths and weaknesses a report lists.
func WithTopCount(n int) Option {
	return func(a *Aggregator) {
		if n > 0 {
			a.topCount = n
		}
	}
}

// WithLogger sets a custom logger for the aggregator.
func WithLogger(l logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Aggregator over the given store and catalog.
func New(store Store, catalog Catalog, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:    store,
		catalog:  catalog,
		topCount: defaultTopCount,
		logger:   logger.Get().Named("assessment"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Record validates and appends one assessment to the student's
// history. The write is atomic; validation failures leave the store
// untouched.
func (a *Aggregator) Record(ctx context.Context, params RecordParams) (model.AssessmentRecord, error) {
	if params.Score < model.MinScore || params.Score > model.MaxScore {
		metrics.RecordAssessmentRejected()
		return model.AssessmentRecord{}, fmt.Errorf("score %d: %w", params.Score, ErrScoreOutOfRange)
	}

	comp, err := a.catalog.Competency(ctx, params.CompetencyID)
	if err != nil {
		metrics.RecordAssessmentRejected()
		return model.AssessmentRecord{}, fmt.Errorf("competency %d: %w", params.CompetencyID, ErrUnknownCompetency)
	}
	cat, err := a.catalog.Category(ctx, comp.CategoryID)
	if err != nil {
		metrics.RecordAssessmentRejected()
		return model.AssessmentRecord{}, fmt.Errorf("competency %d category: %w", params.CompetencyID, err)
	}

	date := params.Date
	if date.IsZero() {
		now := time.Now().UTC()
		date = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}

	rec, err := a.store.Append(ctx, model.AssessmentRecord{
		StudentID:      params.StudentID,
		CompetencyID:   comp.ID,
		CompetencyName: comp.Name,
		CategoryID:     cat.ID,
		CategoryName:   cat.Name,
		Score:          params.Score,
		Date:           date,
		Assessor:       params.Assessor,
		Notes:          params.Notes,
	})
	if err != nil {
		return model.AssessmentRecord{}, fmt.Errorf("append assessment: %w", err)
	}

	metrics.RecordAssessmentRecorded()
	a.logger.Debug(ctx, "assessment recorded",
		logger.String("recordID", rec.ID),
		logger.Int("score", rec.Score),
	)
	return rec, nil
}

// Latest returns one record per competency, the most recent by date.
func (a *Aggregator) Latest(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error) {
	return a.store.LatestByStudent(ctx, studentID)
}

// History returns the student's full assessment history, newest first.
func (a *Aggregator) History(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error) {
	return a.store.HistoryByStudent(ctx, studentID)
}

// Report builds the competency report for a student from their latest
// per-competency scores. Returns ErrNoAssessments when the student has
// no history at all.
func (a *Aggregator) Report(ctx context.Context, studentID int64) (model.CompetencyReport, error) {
	start := time.Now()
	defer func() {
		metrics.RecordReportLatency(float64(time.Since(start).Milliseconds()))
	}()

	records, err := a.store.LatestByStudent(ctx, studentID)
	if err != nil {
		return model.CompetencyReport{}, fmt.Errorf("load latest assessments: %w", err)
	}
	if len(records) == 0 {
		return model.CompetencyReport{}, fmt.Errorf("student %d: %w", studentID, ErrNoAssessments)
	}

	var sum float64
	latestDate := records[0].Date
	for _, rec := range records {
		sum += float64(rec.Score)
		if rec.Date.After(latestDate) {
			latestDate = rec.Date
		}
	}
	overall := sum / float64(len(records))

	report := model.CompetencyReport{
		StudentID:       studentID,
		OverallScore:    overall,
		OverallGrade:    model.GradeOf(overall),
		LatestDate:      latestDate,
		AssessmentCount: len(records),
		CategoryScores:  categoryRollups(records),
		Strengths:       topByScore(records, a.topCount, false),
		Weaknesses:      topByScore(records, a.topCount, true),
	}

	metrics.RecordReportGenerated()
	a.logger.Debug(ctx, "report generated",
		logger.Int("competencies", len(records)),
		logger.String("grade", report.OverallGrade),
	)
	return report, nil
}

// Statistics aggregates the full history of one competency across all
// students.
func (a *Aggregator) Statistics(ctx context.Context, competencyID int64) (model.CompetencyStatistics, error) {
	comp, err := a.catalog.Competency(ctx, competencyID)
	if err != nil {
		return model.CompetencyStatistics{}, fmt.Errorf("competency %d: %w", competencyID, ErrUnknownCompetency)
	}
	cat, err := a.catalog.Category(ctx, comp.CategoryID)
	if err != nil {
		return model.CompetencyStatistics{}, fmt.Errorf("competency %d category: %w", competencyID, err)
	}

	records, err := a.store.ByCompetency(ctx, competencyID)
	if err != nil {
		return model.CompetencyStatistics{}, fmt.Errorf("load competency history: %w", err)
	}

	stats := model.CompetencyStatistics{
		CompetencyID:   comp.ID,
		CompetencyName: comp.Name,
		CategoryID:     cat.ID,
		CategoryName:   cat.Name,
	}
	if len(records) == 0 {
		return stats, nil
	}

	stats.TotalAssessments = len(records)
	stats.MaxScore = records[0].Score
	stats.MinScore = records[0].Score

	var sum float64
	for _, rec := range records {
		sum += float64(rec.Score)
		if rec.Score > stats.MaxScore {
			stats.MaxScore = rec.Score
		}
		if rec.Score < stats.MinScore {
			stats.MinScore = rec.Score
		}
		switch {
		case rec.Score >= 80:
			stats.ExcellentCount++
		case rec.Score >= 60:
			stats.GoodCount++
		default:
			stats.NeedsImprovementCount++
		}
	}
	stats.AverageScore = sum / float64(len(records))
	return stats, nil
}

// categoryRollups groups records by category and computes per-category
// means and grades. Categories are ordered by id ascending; members
// keep the incoming order (competency id ascending from the store).
func categoryRollups(records []model.AssessmentRecord) []model.CategoryScore {
	grouped := make(map[int64][]model.AssessmentRecord)
	var order []int64
	for _, rec := range records {
		if _, seen := grouped[rec.CategoryID]; !seen {
			order = append(order, rec.CategoryID)
		}
		grouped[rec.CategoryID] = append(grouped[rec.CategoryID], rec)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	out := make([]model.CategoryScore, 0, len(order))
	for _, catID := range order {
		members := grouped[catID]

		var sum float64
		scores := make([]model.CompetencyScore, 0, len(members))
		for _, rec := range members {
			sum += float64(rec.Score)
			scores = append(scores, toCompetencyScore(rec))
		}
		avg := sum / float64(len(members))

		out = append(out, model.CategoryScore{
			CategoryID:   catID,
			CategoryName: members[0].CategoryName,
			AverageScore: avg,
			Grade:        model.GradeOf(avg),
			Competencies: scores,
		})
	}
	return out
}

// topByScore returns up to n entries sorted by score, descending for
// strengths and ascending for weaknesses. Equal scores fall back to
// competency id ascending so the selection is deterministic.
func topByScore(records []model.AssessmentRecord, n int, ascending bool) []model.CompetencyScore {
	sorted := make([]model.AssessmentRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			if ascending {
				return sorted[i].Score < sorted[j].Score
			}
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].CompetencyID < sorted[j].CompetencyID
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	out := make([]model.CompetencyScore, 0, n)
	for _, rec := range sorted[:n] {
		out = append(out, toCompetencyScore(rec))
	}
	return out
}

func toCompetencyScore(rec model.AssessmentRecord) model.CompetencyScore {
	return model.CompetencyScore{
		CompetencyID:   rec.CompetencyID,
		CompetencyName: rec.CompetencyName,
		CategoryID:     rec.CategoryID,
		CategoryName:   rec.CategoryName,
		Score:          rec.Score,
		Grade:          rec.Grade(),
		ScoreLevel:     rec.ScoreLevel(),
	}
}
