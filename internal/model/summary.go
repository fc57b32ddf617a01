package model

import (
	"cmp"
	"slices"
	"time"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
)

// Summary aggregates the outcomes of a batch.
type Summary struct {
	// GeneratedAt is when the summary was built.
	GeneratedAt time.Time `json:"generated_at"`

	// Policy and PolicyVersion identify the table that was applied.
	Policy        string `json:"policy"`
	PolicyVersion string `json:"policy_version"`

	// Counts by status.
	Total     int `json:"total"`
	Clean     int `json:"clean"`
	Sanitized int `json:"sanitized"`
	Rejected  int `json:"rejected"`

	// Counts of rejections by severity.
	CriticalCount int `json:"critical_count"`
	HighCount     int `json:"high_count"`
	MediumCount   int `json:"medium_count"`
	LowCount      int `json:"low_count"`

	// ByReason counts rejections per reason.
	ByReason map[sanitizer.Reason]int `json:"by_reason,omitempty"`

	// Removed totals what the walker removed across accepted files.
	Removed sanitizer.Stats `json:"removed"`

	// InputBytes and OutputBytes total the accepted files.
	InputBytes  int64 `json:"input_bytes"`
	OutputBytes int64 `json:"output_bytes"`

	// Outcomes lists every file, in the order given.
	Outcomes []*Outcome `json:"outcomes"`
}

// NewSummary aggregates outcomes. Nil entries are skipped.
func NewSummary(policyName, policyVersion string, outcomes []*Outcome) *Summary {
	s := &Summary{
		GeneratedAt:   time.Now().UTC(),
		Policy:        policyName,
		PolicyVersion: policyVersion,
		ByReason:      make(map[sanitizer.Reason]int),
	}
	for _, o := range outcomes {
		if o == nil {
			continue
		}
		s.add(o)
	}
	return s
}

func (s *Summary) add(o *Outcome) {
	s.Total++
	s.Outcomes = append(s.Outcomes, o)
	switch o.Status {
	case StatusClean:
		s.Clean++
	case StatusSanitized:
		s.Sanitized++
	case StatusRejected:
		s.Rejected++
		s.ByReason[o.Reason]++
		switch o.Severity {
		case SeverityCritical:
			s.CriticalCount++
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		}
		return
	}
	s.InputBytes += o.InputBytes
	s.OutputBytes += o.OutputBytes
	s.Removed.ElementsKept += o.Stats.ElementsKept
	s.Removed.ElementsRemoved += o.Stats.ElementsRemoved
	s.Removed.AttributesRemoved += o.Stats.AttributesRemoved
	s.Removed.NodesStripped += o.Stats.NodesStripped
}

// Accepted returns the number of files kept.
func (s *Summary) Accepted() int {
	return s.Clean + s.Sanitized
}

// HasRejections returns true if any file was rejected.
func (s *Summary) HasRejections() bool {
	return s.Rejected > 0
}

// GetOutcomesByStatus returns outcomes filtered by status.
func (s *Summary) GetOutcomesByStatus(status Status) []*Outcome {
	var result []*Outcome
	for _, o := range s.Outcomes {
		if o.Status == status {
			result = append(result, o)
		}
	}
	return result
}

// Reasons returns the reasons seen, most frequent first, ties by name.
func (s *Summary) Reasons() []sanitizer.Reason {
	reasons := make([]sanitizer.Reason, 0, len(s.ByReason))
	for r := range s.ByReason {
		reasons = append(reasons, r)
	}
	slices.SortFunc(reasons, func(a, b sanitizer.Reason) int {
		if d := s.ByReason[b] - s.ByReason[a]; d != 0 {
			return d
		}
		return cmp.Compare(a, b)
	})
	return reasons
}
