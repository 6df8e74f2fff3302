package models

// SLA is one response-time budget tier expressed as hours plus minutes.
// A nil *SLA on a workflow means the tier is not configured, which is
// distinct from a zero-duration SLA.
type SLA struct {
	Hours   int `json:"hours"   validate:"min=0"`
	Minutes int `json:"minutes" validate:"min=0,max=59"`
}

// TotalMinutes flattens the tier for ordering comparisons.
func (s *SLA) TotalMinutes() int {
	return s.Hours*60 + s.Minutes
}

// IsZero reports whether the tier is a zero duration.
func (s *SLA) IsZero() bool {
	return s.Hours == 0 && s.Minutes == 0
}
