// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/seedevk8s/scms-competency/internal/domain/assessment"
	"github.com/seedevk8s/scms-competency/internal/domain/model"
	"github.com/seedevk8s/scms-competency/internal/domain/recommend"
)

// StudentDependencies defines the interface for student read
// operations.
type StudentDependencies interface {
	Latest(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error)
	History(ctx context.Context, studentID int64) ([]model.AssessmentRecord, error)
	Report(ctx context.Context, studentID int64) (model.CompetencyReport, error)
	Recommend(ctx context.Context, studentID int64, limit int) ([]model.RecommendedProgram, error)
}

// StudentsHandler handles per-student read requests.
type StudentsHandler struct {
	deps     StudentDependencies
	maxLimit int
}

// NewStudentsHandler creates a new students handler.
func NewStudentsHandler(deps StudentDependencies) *StudentsHandler {
	return &StudentsHandler{deps: deps, maxLimit: defaultMaxRecommendationLimit}
}

// HandleStudent dispatches GET /students/{id}/... requests:
//
//	/students/{id}/assessments        full history, newest first
//	/students/{id}/assessments/latest latest record per competency
//	/students/{id}/report             competency report
//	/students/{id}/recommendations    ranked programs, ?limit=N
func (h *StudentsHandler) HandleStudent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/students/")
	idStr, resource, ok := strings.Cut(rest, "/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	studentID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || studentID <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid student id", ErrBadRequest))
		return
	}

	switch resource {
	case "assessments":
		h.handleHistory(w, r, studentID)
	case "assessments/latest":
		h.handleLatest(w, r, studentID)
	case "report":
		h.handleReport(w, r, studentID)
	case "recommendations":
		h.handleRecommendations(w, r, studentID)
	default:
		http.NotFound(w, r)
	}
}

func (h *StudentsHandler) handleHistory(w http.ResponseWriter, r *http.Request, studentID int64) {
	records, err := h.deps.History(r.Context(), studentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if records == nil {
		records = []model.AssessmentRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *StudentsHandler) handleLatest(w http.ResponseWriter, r *http.Request, studentID int64) {
	records, err := h.deps.Latest(r.Context(), studentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	if records == nil {
		records = []model.AssessmentRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *StudentsHandler) handleReport(w http.ResponseWriter, r *http.Request, studentID int64) {
	report, err := h.deps.Report(r.Context(), studentID)
	if err != nil {
		if errors.Is(err, assessment.ErrNoAssessments) {
			writeError(w, http.StatusNotFound, "no_assessment_data", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *StudentsHandler) handleRecommendations(w http.ResponseWriter, r *http.Request, studentID int64) {
	limit := h.maxLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid limit", ErrBadRequest))
			return
		}
		limit = parsed
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	programs, err := h.deps.Recommend(r.Context(), studentID, limit)
	if err != nil {
		if errors.Is(err, recommend.ErrInvalidLimit) {
			writeError(w, http.StatusBadRequest, "bad_request", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, programs)
}
