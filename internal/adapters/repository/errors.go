package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCompetencyNotFound = errors.New("competency not found")
	ErrProgramNotFound    = errors.New("program not found")
	ErrDuplicateID        = errors.New("duplicate id")
	ErrInvalidWeight      = errors.New("weight out of range")
	ErrEmptyName          = errors.New("name must not be empty")
)
