package model

import "time"

// CompetencyScore is the per-competency line item inside a report.
type CompetencyScore struct {
	CompetencyID   int64  `json:"competency_id"`
	CompetencyName string `json:"competency_name"`
	CategoryID     int64  `json:"category_id"`
	CategoryName   string `json:"category_name"`
	Score          int    `json:"score"`
	Grade          string `json:"grade"`
	ScoreLevel     string `json:"score_level"`
}

// CategoryScore is a per-category rollup: mean of the member
// competency scores plus the grade of that mean.
type CategoryScore struct {
	CategoryID   int64             `json:"category_id"`
	CategoryName string            `json:"category_name"`
	AverageScore float64           `json:"average_score"`
	Grade        string            `json:"grade"`
	Competencies []CompetencyScore `json:"competencies"`
}

// CompetencyReport is the derived assessment report for one student.
// Computed fresh on each request; never persisted.
type CompetencyReport struct {
	StudentID       int64             `json:"student_id"`
	OverallScore    float64           `json:"overall_score"`
	OverallGrade    string            `json:"overall_grade"`
	LatestDate      time.Time         `json:"latest_assessment_date"`
	AssessmentCount int               `json:"assessment_count"`
	CategoryScores  []CategoryScore   `json:"category_scores"`
	Strengths       []CompetencyScore `json:"strengths"`
	Weaknesses      []CompetencyScore `json:"weaknesses"`
}

// RecommendedProgram is one ranked recommendation. Score is the
// accumulated contribution clamped to the 0-100 scale; Reasons are
// distinct justification strings in discovery order.
type RecommendedProgram struct {
	ProgramID int64    `json:"program_id"`
	Title     string   `json:"title"`
	Score     float64  `json:"score"`
	Reasons   []string `json:"reasons"`
}

// CompetencyStatistics aggregates the full assessment history of one
// competency across all students.
type CompetencyStatistics struct {
	CompetencyID          int64   `json:"competency_id"`
	CompetencyName        string  `json:"competency_name"`
	CategoryID            int64   `json:"category_id"`
	CategoryName          string  `json:"category_name"`
	TotalAssessments      int     `json:"total_assessments"`
	AverageScore          float64 `json:"average_score"`
	MaxScore              int     `json:"max_score"`
	MinScore              int     `json:"min_score"`
	ExcellentCount        int     `json:"excellent_count"`
	GoodCount             int     `json:"good_count"`
	NeedsImprovementCount int     `json:"needs_improvement_count"`
}
