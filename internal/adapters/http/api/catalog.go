// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/seedevk8s/scms-competency/internal/adapters/repository"
	"github.com/seedevk8s/scms-competency/internal/domain/model"
)

// CatalogDependencies defines the interface for reference data
// registration.
type CatalogDependencies interface {
	AddCategory(ctx context.Context, cat model.CompetencyCategory) error
	AddCompetency(ctx context.Context, comp model.Competency) error
	AddProgram(ctx context.Context, p model.Program) error
	AddWeight(ctx context.Context, w model.ProgramCompetencyWeight) error
}

// CatalogHandler handles catalog registration requests.
type CatalogHandler struct {
	deps CatalogDependencies
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(deps CatalogDependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

// categoryRequest mirrors the schema for POST /catalog/categories.
type categoryRequest struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// competencyRequest mirrors the schema for POST /catalog/competencies.
type competencyRequest struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CategoryID int64  `json:"category_id"`
}

// programRequest mirrors the schema for POST /catalog/programs.
type programRequest struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// weightRequest mirrors the schema for POST /catalog/weights.
type weightRequest struct {
	ProgramID    int64 `json:"program_id"`
	CompetencyID int64 `json:"competency_id"`
	Weight       int   `json:"weight"`
}

// HandlePostCategory handles POST /catalog/categories requests.
func (h *CatalogHandler) HandlePostCategory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if req.ID <= 0 || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: id and name required", ErrBadRequest))
		return
	}
	err := h.deps.AddCategory(r.Context(), model.CompetencyCategory{ID: req.ID, Name: req.Name})
	writeCatalogResult(w, err)
}

// HandlePostCompetency handles POST /catalog/competencies requests.
func (h *CatalogHandler) HandlePostCompetency(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req competencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if req.ID <= 0 || strings.TrimSpace(req.Name) == "" || req.CategoryID <= 0 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: id, name and category_id required", ErrBadRequest))
		return
	}
	err := h.deps.AddCompetency(r.Context(), model.Competency{
		ID:         req.ID,
		Name:       req.Name,
		CategoryID: req.CategoryID,
	})
	writeCatalogResult(w, err)
}

// HandlePostProgram handles POST /catalog/programs requests.
func (h *CatalogHandler) HandlePostProgram(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req programRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	if req.ID <= 0 || strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: id and title required", ErrBadRequest))
		return
	}
	err := h.deps.AddProgram(r.Context(), model.Program{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
	})
	writeCatalogResult(w, err)
}

// HandlePostWeight handles POST /catalog/weights requests.
func (h *CatalogHandler) HandlePostWeight(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req weightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	err := h.deps.AddWeight(r.Context(), model.ProgramCompetencyWeight{
		ProgramID:    req.ProgramID,
		CompetencyID: req.CompetencyID,
		Weight:       req.Weight,
	})
	writeCatalogResult(w, err)
}

// writeCatalogResult maps repository errors onto HTTP status codes.
func writeCatalogResult(w http.ResponseWriter, err error) {
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, map[string]string{"status": "created"})
	case errors.Is(err, repository.ErrDuplicateID):
		writeError(w, http.StatusConflict, "duplicate_id", err)
	case errors.Is(err, repository.ErrCategoryNotFound),
		errors.Is(err, repository.ErrCompetencyNotFound),
		errors.Is(err, repository.ErrProgramNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, repository.ErrInvalidWeight),
		errors.Is(err, repository.ErrEmptyName):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}
