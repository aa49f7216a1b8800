// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/seedevk8s/scms-competency/internal/domain/assessment"
	"github.com/seedevk8s/scms-competency/internal/domain/model"
)

// AssessmentDependencies defines the interface for assessment writes.
type AssessmentDependencies interface {
	RecordAssessment(ctx context.Context, params assessment.RecordParams) (model.AssessmentRecord, error)
	SeenAndRecord(ctx context.Context, id string) bool
	Unrecord(ctx context.Context, id string)
	Enqueue(ctx context.Context, sub model.Submission) bool
}

// AssessmentsHandler handles single and bulk assessment submission.
type AssessmentsHandler struct {
	deps AssessmentDependencies
}

// NewAssessmentsHandler creates a new assessments handler.
func NewAssessmentsHandler(deps AssessmentDependencies) *AssessmentsHandler {
	return &AssessmentsHandler{deps: deps}
}

// HandlePostAssessment handles POST /assessments requests. The record
// is validated and written synchronously.
func (h *AssessmentsHandler) HandlePostAssessment(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req assessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	rec, err := h.deps.RecordAssessment(r.Context(), assessment.RecordParams{
		StudentID:    req.StudentID,
		CompetencyID: req.CompetencyID,
		Score:        req.Score,
		Date:         req.date(),
		Assessor:     req.Assessor,
		Notes:        req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, assessment.ErrScoreOutOfRange):
			writeError(w, http.StatusBadRequest, "score_out_of_range", err)
		case errors.Is(err, assessment.ErrUnknownCompetency):
			writeError(w, http.StatusNotFound, "not_found", err)
		default:
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusCreated, rec)
}

// HandlePostBulk handles POST /assessments/bulk requests. Each
// submission is idempotency-checked and enqueued for asynchronous
// ingestion; a full queue answers 429 and rolls back the seen mark of
// the submission that did not fit.
func (h *AssessmentsHandler) HandlePostBulk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if len(req.Submissions) == 0 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: empty submissions", ErrBadRequest))
		return
	}
	for i, sub := range req.Submissions {
		if err := sub.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: submission %d: %w", ErrBadRequest, i, err))
			return
		}
	}

	resp := bulkResponse{}
	for _, sub := range req.Submissions {
		id := sub.SubmissionID
		if id == "" {
			id = uuid.NewString()
		}

		// Idempotency check - mark as seen first
		if h.deps.SeenAndRecord(r.Context(), id) {
			resp.Duplicates++
			continue
		}

		ok := h.deps.Enqueue(r.Context(), model.Submission{
			SubmissionID: id,
			StudentID:    sub.StudentID,
			CompetencyID: sub.CompetencyID,
			Score:        sub.Score,
			Date:         sub.date(),
			Assessor:     sub.Assessor,
			Notes:        sub.Notes,
		})
		if !ok {
			// Roll back the seen mark so the submission can be retried
			h.deps.Unrecord(r.Context(), id)
			writeError(w, http.StatusTooManyRequests, "backpressure", ErrBackpressure)
			return
		}
		resp.Accepted++
	}
	writeJSON(w, http.StatusAccepted, resp)
}
