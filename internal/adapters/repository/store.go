// Package repository defines the record and reference-data store
// interfaces and their in-memory implementations.
package repository

import (
	"context"

	"github.com/seedevk8s/scms-competency/internal/domain/model"
)

// AssessmentStore provides append-only access to assessment history.
type AssessmentStore interface {
	// Append stores a new historical record and returns it with the
	// store-assigned ID, Seq and CreatedAt filled in. Prior records
	// for the same (student, competency) are never touched.
	Append(ctx context.Context, rec model.AssessmentRecord) (model.AssessmentRecord, error)

	// LatestByStudent returns one record per competency: the one with
	// the maximum Date, date ties broken by the higher Seq. Results
	// are ordered by competency id ascending.
	LatestByStudent(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error)

	// HistoryByStudent returns the full history for a student, newest
	// first (Date desc, then Seq desc).
	HistoryByStudent(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error)

	// ByCompetency returns every record for a competency across all
	// students, in insertion order.
	ByCompetency(ctx context.Context, competencyID int64) ([]model.AssessmentRecord, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) int
}

// Catalog provides read/write access to competency, category and
// program reference data.
type Catalog interface {
	AddCategory(ctx context.Context, c model.CompetencyCategory) error
	AddCompetency(ctx context.Context, c model.Competency) error
	AddProgram(ctx context.Context, p model.Program) error

	// Category returns ErrCategoryNotFound for unknown ids.
	Category(ctx context.Context, id int64) (model.CompetencyCategory, error)
	// Competency returns ErrCompetencyNotFound for unknown ids.
	Competency(ctx context.Context, id int64) (model.Competency, error)
	// Program returns ErrProgramNotFound for unknown ids.
	Program(ctx context.Context, id int64) (model.Program, error)

	// Counts returns the number of categories, competencies and
	// programs currently registered.
	Counts(ctx context.Context) (categories, competencies, programs int)
}

// WeightStore provides access to program-competency weight rows.
type WeightStore interface {
	// Add registers a weight row, replacing any existing row for the
	// same (program, competency) pair.
	Add(ctx context.Context, w model.ProgramCompetencyWeight) error

	// ForCompetencies returns every row whose competency id is in ids,
	// ordered by (program id, competency id) ascending so downstream
	// accumulation order is deterministic.
	ForCompetencies(ctx context.Context, ids []int64) ([]model.ProgramCompetencyWeight, error)

	// Count returns the number of stored weight rows.
	Count(ctx context.Context) int
}
