package recommend

import "errors"

// Sentinel kinds for recommendation errors.
var (
	// ErrInvalidLimit rejects limits below 1.
	ErrInvalidLimit = errors.New("invalid recommendation limit")
)
