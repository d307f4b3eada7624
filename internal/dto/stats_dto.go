package dto

// StatsSnapshot is a point-in-time view of one user's measurable
// activity, keyed by predicate kind. Every known kind is present; kinds
// with no underlying data resolve to 0.
type StatsSnapshot struct {
	Values map[string]float64 `json:"values"`
	// FailedSources names activity sources that were unreachable. Their
	// kinds stay at 0 so unrelated achievements still evaluate.
	FailedSources []string `json:"failed_sources,omitempty"`
}

func (s *StatsSnapshot) Partial() bool {
	return len(s.FailedSources) > 0
}
