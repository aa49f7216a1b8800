package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/seedevk8s/scms-competency/internal/domain/model"
)

// MemoryCatalog implements Catalog with in-memory maps. Reference data
// is written rarely (admin registration) and read on every report and
// recommendation, so reads take an RLock.
type MemoryCatalog struct {
	mu           sync.RWMutex
	categories   map[int64]model.CompetencyCategory
	competencies map[int64]model.Competency
	programs     map[int64]model.Program
}

// NewMemoryCatalog creates an empty catalog.
func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{
		categories:   make(map[int64]model.CompetencyCategory),
		competencies: make(map[int64]model.Competency),
		programs:     make(map[int64]model.Program),
	}
}

// AddCategory registers a competency category.
func (c *MemoryCatalog) AddCategory(ctx context.Context, cat model.CompetencyCategory) error {
	if strings.TrimSpace(cat.Name) == "" {
		return fmt.Errorf("category %d: %w", cat.ID, ErrEmptyName)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.categories[cat.ID]; exists {
		return fmt.Errorf("category %d: %w", cat.ID, ErrDuplicateID)
	}
	c.categories[cat.ID] = cat
	return nil
}

// AddCompetency registers a competency. Its category must already
// exist; a competency without a category cannot be rolled up.
func (c *MemoryCatalog) AddCompetency(ctx context.Context, comp model.Competency) error {
	if strings.TrimSpace(comp.Name) == "" {
		return fmt.Errorf("competency %d: %w", comp.ID, ErrEmptyName)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.competencies[comp.ID]; exists {
		return fmt.Errorf("competency %d: %w", comp.ID, ErrDuplicateID)
	}
	if _, exists := c.categories[comp.CategoryID]; !exists {
		return fmt.Errorf("competency %d references category %d: %w", comp.ID, comp.CategoryID, ErrCategoryNotFound)
	}
	c.competencies[comp.ID] = comp
	return nil
}

// AddProgram registers a development program.
func (c *MemoryCatalog) AddProgram(ctx context.Context, p model.Program) error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("program %d: %w", p.ID, ErrEmptyName)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.programs[p.ID]; exists {
		return fmt.Errorf("program %d: %w", p.ID, ErrDuplicateID)
	}
	c.programs[p.ID] = p
	return nil
}

// Category looks up a category by id.
func (c *MemoryCatalog) Category(ctx context.Context, id int64) (model.CompetencyCategory, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	cat, ok := c.categories[id]
	if !ok {
		return model.CompetencyCategory{}, fmt.Errorf("category %d: %w", id, ErrCategoryNotFound)
	}
	return cat, nil
}

// Competency looks up a competency by id.
func (c *MemoryCatalog) Competency(ctx context.Context, id int64) (model.Competency, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	comp, ok := c.competencies[id]
	if !ok {
		return model.Competency{}, fmt.Errorf("competency %d: %w", id, ErrCompetencyNotFound)
	}
	return comp, nil
}

// Program looks up a program by id.
func (c *MemoryCatalog) Program(ctx context.Context, id int64) (model.Program, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.programs[id]
	if !ok {
		return model.Program{}, fmt.Errorf("program %d: %w", id, ErrProgramNotFound)
	}
	return p, nil
}

// Counts returns the number of registered reference entities.
func (c *MemoryCatalog) Counts(ctx context.Context) (categories, competencies, programs int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.categories), len(c.competencies), len(c.programs)
}
