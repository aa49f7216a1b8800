package repository

// AssessmentOption applies a configuration option to the
// MemoryAssessmentStore.
type AssessmentOption func(*MemoryAssessmentStore)

// WithStartSeq sets the first sequence number handed out by Append.
// Useful for tests that assert on tie-breaking.
func WithStartSeq(seq int64) AssessmentOption {
	return func(s *MemoryAssessmentStore) {
		if seq > 0 {
			s.nextSeq = seq
		}
	}
}
