package model

import (
	"time"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
)

// Status is the final state of a processed file.
type Status string

const (
	// StatusClean means the file was accepted and the walker changed nothing.
	StatusClean Status = "clean"
	// StatusSanitized means the file was accepted after removing content.
	StatusSanitized Status = "sanitized"
	// StatusRejected means the file was refused.
	StatusRejected Status = "rejected"
)

// Accepted reports whether the status keeps the file.
func (s Status) Accepted() bool {
	return s == StatusClean || s == StatusSanitized
}

// Outcome is the record of processing one file.
type Outcome struct {
	// ID is the upload ID, or empty for batch files.
	ID string `json:"id,omitempty"`

	// Source is the file name or path as given by the caller.
	Source string `json:"source"`

	// Principal is the uploader's ID, or empty for batch files.
	Principal string `json:"principal,omitempty"`

	// Status is clean, sanitized or rejected.
	Status Status `json:"status"`

	// Reason and Detail are set for rejected files.
	Reason sanitizer.Reason `json:"reason,omitempty"`
	Detail string           `json:"detail,omitempty"`

	// Severity is derived from Reason.
	Severity     Severity `json:"severity"`
	SeverityText string   `json:"severity_text"`

	// Policy and PolicyVersion identify the table that was applied.
	Policy        string `json:"policy"`
	PolicyVersion string `json:"policy_version"`

	// InputBytes and OutputBytes are the sizes before and after.
	InputBytes  int64 `json:"input_bytes"`
	OutputBytes int64 `json:"output_bytes"`

	// InputDigest and OutputDigest are hex SHA3-256 digests.
	InputDigest  string `json:"input_digest"`
	OutputDigest string `json:"output_digest,omitempty"`

	// Stats describe what the walker removed.
	Stats sanitizer.Stats `json:"stats"`

	// Minified is true when the output was minified.
	Minified bool `json:"minified,omitempty"`

	// Destination is where the clean output went: a storage key or a
	// file path.
	Destination string `json:"destination,omitempty"`

	// Duration is the time spent sanitizing.
	Duration time.Duration `json:"duration"`

	// ProcessedAt is when processing finished.
	ProcessedAt time.Time `json:"processed_at"`

	// Output holds the clean bytes until they are stored.
	Output []byte `json:"-"`
}

// NewOutcome records a sanitization result for source.
func NewOutcome(source string, input []byte, res sanitizer.Result) *Outcome {
	o := &Outcome{
		Source:      source,
		InputBytes:  int64(len(input)),
		InputDigest: Digest(input),
		Stats:       res.Stats,
		Minified:    res.Minified,
		Duration:    res.Duration,
		ProcessedAt: time.Now().UTC(),
	}
	if res.Rejection != nil {
		o.Reject(res.Rejection)
		return o
	}
	o.Status = StatusClean
	if res.Stats.Changed() {
		o.Status = StatusSanitized
	}
	o.Output = res.Output
	o.OutputBytes = int64(len(res.Output))
	o.OutputDigest = Digest(res.Output)
	o.Severity = SeverityInfo
	o.SeverityText = SeverityInfo.String()
	return o
}

// NewRejectedOutcome records a file refused before sanitization.
func NewRejectedOutcome(source string, rej *sanitizer.Rejection) *Outcome {
	o := &Outcome{Source: source, ProcessedAt: time.Now().UTC()}
	o.Reject(rej)
	return o
}

// Reject turns o into a rejection, dropping any output.
func (o *Outcome) Reject(rej *sanitizer.Rejection) {
	o.Status = StatusRejected
	o.Reason = rej.Reason
	o.Detail = rej.Detail
	o.Severity = GetSeverity(rej.Reason)
	o.SeverityText = o.Severity.String()
	o.Output = nil
	o.OutputBytes = 0
	o.OutputDigest = ""
	o.Destination = ""
}

// Rejection rebuilds the rejection of a rejected outcome.
func (o *Outcome) Rejection() *sanitizer.Rejection {
	if o.Status != StatusRejected {
		return nil
	}
	return sanitizer.Reject(o.Reason, o.Detail, nil)
}

// SavedBytes returns how many bytes sanitization removed. It is negative
// when the output grew.
func (o *Outcome) SavedBytes() int64 {
	if !o.Status.Accepted() {
		return 0
	}
	return o.InputBytes - o.OutputBytes
}
