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
)

// StatisticsDependencies defines the interface for competency
// statistics.
type StatisticsDependencies interface {
	Statistics(ctx context.Context, competencyID int64) (model.CompetencyStatistics, error)
}

// StatisticsHandler handles competency statistics requests.
type StatisticsHandler struct {
	deps StatisticsDependencies
}

// NewStatisticsHandler creates a new statistics handler.
func NewStatisticsHandler(deps StatisticsDependencies) *StatisticsHandler {
	return &StatisticsHandler{deps: deps}
}

// HandleGetStatistics handles GET /competencies/{id}/statistics
// requests.
func (h *StatisticsHandler) HandleGetStatistics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/competencies/")
	idStr, resource, ok := strings.Cut(rest, "/")
	if !ok || resource != "statistics" {
		http.NotFound(w, r)
		return
	}
	competencyID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || competencyID <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: invalid competency id", ErrBadRequest))
		return
	}

	stats, err := h.deps.Statistics(r.Context(), competencyID)
	if err != nil {
		if errors.Is(err, assessment.ErrUnknownCompetency) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
