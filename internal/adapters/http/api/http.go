// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/seedevk8s/scms-competency/internal/domain/assessment"
	"github.com/seedevk8s/scms-competency/internal/domain/model"
)

// defaultMaxRecommendationLimit caps GET /recommendations?limit.
const defaultMaxRecommendationLimit = 20

// Dependencies required by HTTP handlers. Using an interface bundle
// keeps the handler layer loosely coupled to implementations in other
// packages.
type Dependencies interface {
	// Write path.
	RecordAssessment(ctx context.Context, params assessment.RecordParams) (model.AssessmentRecord, error)

	// Bulk ingest path.
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	Enqueue(ctx context.Context, sub model.Submission) bool

	// Read path.
	Latest(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error)
	History(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error)
	Report(ctx context.Context, studentID int64) (model.CompetencyReport, error)
	Recommend(ctx context.Context, studentID int64, limit int) ([]model.RecommendedProgram, error)
	Statistics(ctx context.Context, competencyID int64) (model.CompetencyStatistics, error)

	// Reference data registration.
	AddCategory(ctx context.Context, cat model.CompetencyCategory) error
	AddCompetency(ctx context.Context, comp model.Competency) error
	AddProgram(ctx context.Context, p model.Program) error
	AddWeight(ctx context.Context, w model.ProgramCompetencyWeight) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	assessmentsHandler *AssessmentsHandler
	studentsHandler    *StudentsHandler
	catalogHandler     *CatalogHandler
	statisticsHandler  *StatisticsHandler
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithMaxRecommendationLimit caps the limit query parameter on
// GET /students/{id}/recommendations.
func WithMaxRecommendationLimit(limit int) ServerOption {
	return func(s *Server) {
		if limit > 0 {
			s.studentsHandler.maxLimit = limit
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		assessmentsHandler: NewAssessmentsHandler(deps),
		studentsHandler:    NewStudentsHandler(deps),
		catalogHandler:     NewCatalogHandler(deps),
		statisticsHandler:  NewStatisticsHandler(deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/assessments", MetricsMiddleware(s.assessmentsHandler.HandlePostAssessment, "assessments"))
	mux.HandleFunc("/assessments/bulk", MetricsMiddleware(s.assessmentsHandler.HandlePostBulk, "assessments_bulk"))
	mux.HandleFunc("/students/", MetricsMiddleware(s.studentsHandler.HandleStudent, "students"))
	mux.HandleFunc("/competencies/", MetricsMiddleware(s.statisticsHandler.HandleGetStatistics, "competency_statistics"))
	mux.HandleFunc("/catalog/categories", MetricsMiddleware(s.catalogHandler.HandlePostCategory, "catalog_categories"))
	mux.HandleFunc("/catalog/competencies", MetricsMiddleware(s.catalogHandler.HandlePostCompetency, "catalog_competencies"))
	mux.HandleFunc("/catalog/programs", MetricsMiddleware(s.catalogHandler.HandlePostProgram, "catalog_programs"))
	mux.HandleFunc("/catalog/weights", MetricsMiddleware(s.catalogHandler.HandlePostWeight, "catalog_weights"))
}

// dateLayout is the wire format of assessment dates.
const dateLayout = "2006-01-02"

// assessmentRequest mirrors the schema for POST /assessments.
type assessmentRequest struct {
	StudentID    int64  `json:"student_id"`
	CompetencyID int64  `json:"competency_id"`
	Score        int    `json:"score"`
	Date         string `json:"date,omitempty"` // YYYY-MM-DD, defaults to today
	Assessor     string `json:"assessor,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

func (a assessmentRequest) validate() error {
	switch {
	case a.StudentID <= 0:
		return errors.New("missing student_id")
	case a.CompetencyID <= 0:
		return errors.New("missing competency_id")
	}
	if a.Date != "" {
		if _, err := time.Parse(dateLayout, a.Date); err != nil {
			return errors.New("invalid date; must be YYYY-MM-DD")
		}
	}
	return nil
}

// date returns the parsed assessment date, or the zero time when the
// field was omitted. validate must have passed first.
func (a assessmentRequest) date() time.Time {
	if a.Date == "" {
		return time.Time{}
	}
	d, _ := time.Parse(dateLayout, a.Date)
	return d
}

// bulkRequest mirrors the schema for POST /assessments/bulk.
type bulkRequest struct {
	Submissions []submissionRequest `json:"submissions"`
}

// submissionRequest is one item of a bulk submission batch.
type submissionRequest struct {
	SubmissionID string `json:"submission_id"`
	assessmentRequest
}

func (s submissionRequest) validate() error {
	return s.assessmentRequest.validate()
}

// bulkResponse acknowledges an accepted batch.
type bulkResponse struct {
	Accepted   int `json:"accepted"`
	Duplicates int `json:"duplicates"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
