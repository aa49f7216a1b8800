package assessment

import "errors"

// Sentinel kinds for assessment errors.
var (
	// ErrScoreOutOfRange rejects scores outside 0-100.
	ErrScoreOutOfRange = errors.New("score must be between 0 and 100")

	// ErrUnknownCompetency rejects assessments against competencies
	// missing from the catalog.
	ErrUnknownCompetency = errors.New("unknown competency")

	// ErrNoAssessments means a report was requested for a student with
	// no assessment history. A user-visible "no data yet" condition,
	// not a server fault.
	ErrNoAssessments = errors.New("no assessment data")
)
