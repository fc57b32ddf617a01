package pipeline

import (
	"io"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/host"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/model"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/storage"
)

// UnknownSize marks a job whose size is not declared up front.
const UnknownSize int64 = -1

// Job is one file moving through a pipeline.
type Job struct {
	// ID is the upload ID. Batch jobs leave it empty.
	ID string

	// Source is the client file name or the path on disk.
	Source string

	// Principal is the uploader.
	Principal host.Principal

	// DeclaredSize is the size announced before reading, such as the
	// multipart part size or the file size on disk.
	DeclaredSize int64

	// Body supplies the bytes for StageStep.
	Body io.Reader

	// Data holds the bytes as received.
	Data []byte

	// Staged is set once the upload is in the sink.
	Staged *storage.Staged

	// Outcome is set by SanitizeStep or by the first rejection.
	Outcome *model.Outcome

	// Performed lists the names of the steps that ran.
	Performed []string

	// Err is the first step error.
	Err error
}

// NewJob creates a job for source with an unknown size.
func NewJob(source string) *Job {
	return &Job{Source: source, DeclaredSize: UnknownSize}
}

// Rejected reports whether the job has been refused.
func (j *Job) Rejected() bool {
	return j.Outcome != nil && j.Outcome.Status == model.StatusRejected
}

// Reject refuses the job. The first rejection wins.
func (j *Job) Reject(rej *sanitizer.Rejection) {
	if j.Rejected() {
		return
	}
	if j.Outcome == nil {
		j.Outcome = model.NewRejectedOutcome(j.Source, rej)
		if j.Data != nil {
			j.Outcome.InputBytes = int64(len(j.Data))
			j.Outcome.InputDigest = model.Digest(j.Data)
		}
	} else {
		j.Outcome.Reject(rej)
	}
	j.Outcome.ID = j.ID
	j.Outcome.Principal = j.Principal.ID
}

// Rejection returns the job's rejection, or nil.
func (j *Job) Rejection() *sanitizer.Rejection {
	if j.Outcome == nil {
		return nil
	}
	return j.Outcome.Rejection()
}
