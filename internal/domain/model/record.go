// Package model contains domain models passed between layers.
package model

import "time"

// Score bounds and grade band cutoffs. Bands are inclusive on their
// lower bound: 90-100 A, 80-89 B, 70-79 C, 60-69 D, below 60 F.
const (
	MinScore = 0
	MaxScore = 100

	gradeACutoff = 90
	gradeBCutoff = 80
	gradeCCutoff = 70
	gradeDCutoff = 60

	levelExcellentCutoff = 80
	levelAverageCutoff   = 60
)

// Weight bounds for program-competency mappings.
const (
	MinWeight = 1
	MaxWeight = 10
)

// CompetencyCategory groups competencies for rollup reporting.
// Immutable reference data.
type CompetencyCategory struct {
	ID   int64
	Name string
}

// Competency is a measurable student capability. Every competency
// belongs to exactly one category.
type Competency struct {
	ID         int64
	Name       string
	CategoryID int64
}

// Program is a development program offered to students. Metadata only;
// the scoring math never reads it.
type Program struct {
	ID          int64
	Title       string
	Description string
}

// ProgramCompetencyWeight states how strongly a program develops a
// competency, on a 1-10 scale. Reference data maintained by
// administrators, read-only to the engines.
type ProgramCompetencyWeight struct {
	ProgramID    int64
	CompetencyID int64
	Weight       int
}

// IsValid reports whether the weight is within the 1-10 scale.
func (w ProgramCompetencyWeight) IsValid() bool {
	return w.Weight >= MinWeight && w.Weight <= MaxWeight
}

// AssessmentRecord is one scored observation of a student's competency
// at a point in time. Records are append-only history; "latest" is the
// record with the maximum Date per (student, competency), date ties
// broken by the higher Seq (later insert wins).
type AssessmentRecord struct {
	ID             string    `json:"id"`  // store-assigned uuid
	Seq            int64     `json:"-"`   // store-assigned monotonic insert sequence
	StudentID      int64     `json:"student_id"`
	CompetencyID   int64     `json:"competency_id"`
	CompetencyName string    `json:"competency_name"`
	CategoryID     int64     `json:"category_id"`
	CategoryName   string    `json:"category_name"`
	Score          int       `json:"score"` // 0-100
	Date           time.Time `json:"date"`
	Assessor       string    `json:"assessor,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsValidScore reports whether the score is within the 0-100 range.
func (r AssessmentRecord) IsValidScore() bool {
	return r.Score >= MinScore && r.Score <= MaxScore
}

// Grade returns the letter grade for this record's score.
func (r AssessmentRecord) Grade() string {
	return GradeOf(float64(r.Score))
}

// ScoreLevel returns the display tier for this record's score.
func (r AssessmentRecord) ScoreLevel() string {
	return ScoreLevelOf(r.Score)
}

// GradeOf maps a score to a letter grade A-F.
func GradeOf(score float64) string {
	switch {
	case score >= gradeACutoff:
		return "A"
	case score >= gradeBCutoff:
		return "B"
	case score >= gradeCCutoff:
		return "C"
	case score >= gradeDCutoff:
		return "D"
	default:
		return "F"
	}
}

// ScoreLevelOf maps a score to a human-readable tier. Display only;
// ranking and weakness selection never consult it.
func ScoreLevelOf(score int) string {
	switch {
	case score >= levelExcellentCutoff:
		return "우수"
	case score >= levelAverageCutoff:
		return "보통"
	default:
		return "미흡"
	}
}

// Submission is a raw assessment payload flowing through the bulk
// ingest queue. SubmissionID exists for idempotency; workers validate
// the rest against the catalog before appending history.
type Submission struct {
	SubmissionID string
	StudentID    int64
	CompetencyID int64
	Score        int
	Date         time.Time
	Assessor     string
	Notes        string
}
