package pipeline

import (
	"time"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/host"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/storage"
)

// UploadDeps are the collaborators of the upload pipeline.
type UploadDeps struct {
	Gate       host.Gate
	Authorizer host.Authorizer
	Size       host.SizePolicy
	Sink       storage.Sink
	Engine     *sanitizer.Engine
	Timeout    time.Duration
	// Auditor may be nil.
	Auditor Auditor
}

// UploadPipeline builds gate → authorize → size → stage → sanitize →
// store → audit.
func UploadPipeline(deps UploadDeps, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewGateStep(deps.Gate),
		NewAuthorizeStep(deps.Authorizer),
		NewSizeStep(deps.Size),
		NewStageStep(deps.Sink, deps.Size),
		NewSanitizeStep(deps.Engine, WithSanitizeTimeout(deps.Timeout)),
		NewStoreStep(deps.Sink),
	)
	if deps.Auditor != nil {
		p.AddStep(NewAuditStep(deps.Auditor, WithAuditLogger(p.logger)))
	}
	return p
}

// BatchDeps are the collaborators of the batch pipeline.
type BatchDeps struct {
	Size      host.SizePolicy
	Engine    *sanitizer.Engine
	Timeout   time.Duration
	InPlace   bool
	OutputDir string
	// Auditor may be nil.
	Auditor Auditor
}

// BatchPipeline builds read → sanitize → write → audit.
func BatchPipeline(deps BatchDeps, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewReadFileStep(deps.Size),
		NewSanitizeStep(deps.Engine, WithSanitizeTimeout(deps.Timeout)),
		NewWriteStep(deps.InPlace, deps.OutputDir),
	)
	if deps.Auditor != nil {
		p.AddStep(NewAuditStep(deps.Auditor, WithAuditLogger(p.logger)))
	}
	return p
}
