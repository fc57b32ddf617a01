package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/host"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/model"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/storage"
)

// GateStep refuses every job while SVG support is off.
type GateStep struct {
	gate host.Gate
}

// NewGateStep creates a gate step.
func NewGateStep(gate host.Gate) *GateStep {
	return &GateStep{gate: gate}
}

// Name returns the step name.
func (s *GateStep) Name() string { return "gate" }

// Do rejects the job with the gate's status when it is closed.
func (s *GateStep) Do(_ context.Context, job *Job) error {
	if reason := s.gate.Status(); reason != "" {
		job.Reject(sanitizer.Reject(reason, "", nil))
	}
	return nil
}

// AuthorizeStep asks the authorization oracle about the job's principal.
type AuthorizeStep struct {
	authorizer host.Authorizer
}

// NewAuthorizeStep creates an authorization step.
func NewAuthorizeStep(a host.Authorizer) *AuthorizeStep {
	return &AuthorizeStep{authorizer: a}
}

// Name returns the step name.
func (s *AuthorizeStep) Name() string { return "authorize" }

// Do rejects principals that may not upload SVG files.
func (s *AuthorizeStep) Do(ctx context.Context, job *Job) error {
	if s.authorizer == nil || !s.authorizer.CanUploadSVG(ctx, job.Principal) {
		job.Reject(sanitizer.Reject(sanitizer.ReasonUnauthorized, "", nil))
	}
	return nil
}

// SizeStep rejects jobs whose declared size exceeds the policy. Jobs with
// an unknown size are bounded later, while reading.
type SizeStep struct {
	policy host.SizePolicy
}

// NewSizeStep creates a size step.
func NewSizeStep(policy host.SizePolicy) *SizeStep {
	return &SizeStep{policy: policy}
}

// Name returns the step name.
func (s *SizeStep) Name() string { return "size" }

// Do checks the declared size.
func (s *SizeStep) Do(_ context.Context, job *Job) error {
	if job.DeclaredSize != UnknownSize && !s.policy.Allows(job.DeclaredSize) {
		job.Reject(tooLarge(s.policy))
	}
	return nil
}

func tooLarge(p host.SizePolicy) *sanitizer.Rejection {
	return sanitizer.Reject(sanitizer.ReasonTooLarge, fmt.Sprintf("upload limit %d KiB", p.KiB()), nil)
}

// StageStep writes the upload body to the storage sink.
type StageStep struct {
	sink   storage.Sink
	policy host.SizePolicy
}

// NewStageStep creates a staging step.
func NewStageStep(sink storage.Sink, policy host.SizePolicy) *StageStep {
	return &StageStep{sink: sink, policy: policy}
}

// Name returns the step name.
func (s *StageStep) Name() string { return "stage" }

// Do stages job.Body, reading at most the policy limit.
func (s *StageStep) Do(ctx context.Context, job *Job) error {
	if job.Body == nil {
		return errors.New("no upload body")
	}
	st, err := s.sink.Stage(ctx, job.Source, job.Body, s.policy.Limit())
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		job.Reject(tooLarge(s.policy))
		return nil
	case errors.Is(err, storage.ErrInvalidName):
		job.Reject(sanitizer.Reject(sanitizer.ReasonIOFailure, "invalid file name", err))
		return nil
	case err != nil:
		return fmt.Errorf("stage upload: %w", err)
	}
	job.Staged = st
	job.Data = st.Data
	if job.ID == "" {
		job.ID = st.ID
	}
	return nil
}

// ReadFileStep reads a file from disk for batch processing.
type ReadFileStep struct {
	policy host.SizePolicy
}

// NewReadFileStep creates a read step bounded by policy.
func NewReadFileStep(policy host.SizePolicy) *ReadFileStep {
	return &ReadFileStep{policy: policy}
}

// Name returns the step name.
func (s *ReadFileStep) Name() string { return "read" }

// Do reads job.Source.
func (s *ReadFileStep) Do(_ context.Context, job *Job) error {
	f, err := os.Open(job.Source)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}
	if !s.policy.Allows(info.Size()) {
		job.Reject(tooLarge(s.policy))
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(f, s.policy.Limit()+1))
	if err != nil {
		return fmt.Errorf("read: %w", err)
	}
	if !s.policy.Allows(int64(len(data))) {
		job.Reject(tooLarge(s.policy))
		return nil
	}
	job.Data = data
	return nil
}

// SanitizeStep runs the sanitizer once over job.Data.
type SanitizeStep struct {
	engine  *sanitizer.Engine
	timeout time.Duration
}

// SanitizeStepOption configures a SanitizeStep.
type SanitizeStepOption func(*SanitizeStep)

// WithSanitizeTimeout bounds each sanitization call.
func WithSanitizeTimeout(d time.Duration) SanitizeStepOption {
	return func(s *SanitizeStep) {
		s.timeout = d
	}
}

// NewSanitizeStep creates a sanitize step.
func NewSanitizeStep(engine *sanitizer.Engine, opts ...SanitizeStepOption) *SanitizeStep {
	s := &SanitizeStep{engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *SanitizeStep) Name() string { return "sanitize" }

// Do sanitizes the job's bytes and records the outcome.
func (s *SanitizeStep) Do(ctx context.Context, job *Job) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	res := s.engine.Sanitize(ctx, job.Data)

	o := model.NewOutcome(job.Source, job.Data, res)
	o.ID = job.ID
	o.Principal = job.Principal.ID
	if t := s.engine.Policy(); t != nil {
		o.Policy, o.PolicyVersion = t.Name(), t.Version()
	}
	job.Outcome = o
	return nil
}

// StoreStep commits or discards the staged upload. It is final.
type StoreStep struct {
	sink storage.Sink
}

// NewStoreStep creates a store step.
func NewStoreStep(sink storage.Sink) *StoreStep {
	return &StoreStep{sink: sink}
}

// Name returns the step name.
func (s *StoreStep) Name() string { return "store" }

// Final marks the step as always running.
func (s *StoreStep) Final() bool { return true }

// Do replaces the staged bytes with clean output, or deletes the staged
// file when the job was rejected.
func (s *StoreStep) Do(ctx context.Context, job *Job) error {
	if job.Staged == nil {
		return nil
	}
	cleanup := context.WithoutCancel(ctx)
	if job.Rejected() || job.Outcome == nil {
		if err := s.sink.Discard(cleanup, job.Staged); err != nil && !errors.Is(err, storage.ErrNotStaged) {
			return fmt.Errorf("discard upload: %w", err)
		}
		return nil
	}
	key, err := s.sink.Commit(ctx, job.Staged, job.Outcome.Output)
	if err != nil {
		_ = s.sink.Discard(cleanup, job.Staged)
		return fmt.Errorf("commit upload: %w", err)
	}
	job.Outcome.Destination = key
	return nil
}

// WriteStep writes clean batch output. It is final.
//
// With inPlace, accepted files are overwritten. With an output directory,
// accepted files are written there under their base name. Rejected files
// are never modified.
type WriteStep struct {
	inPlace   bool
	outputDir string
}

// NewWriteStep creates a write step.
func NewWriteStep(inPlace bool, outputDir string) *WriteStep {
	return &WriteStep{inPlace: inPlace, outputDir: outputDir}
}

// Name returns the step name.
func (s *WriteStep) Name() string { return "write" }

// Final marks the step as always running.
func (s *WriteStep) Final() bool { return true }

// Do writes the clean output.
func (s *WriteStep) Do(_ context.Context, job *Job) error {
	if job.Outcome == nil || job.Rejected() {
		return nil
	}
	var dest string
	switch {
	case s.inPlace:
		dest = job.Source
	case s.outputDir != "":
		dest = filepath.Join(s.outputDir, filepath.Base(job.Source))
	default:
		return nil
	}
	if err := writeFileAtomic(dest, job.Outcome.Output); err != nil {
		return err
	}
	job.Outcome.Destination = dest
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	f, err := os.CreateTemp(dir, ".easysvg-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("close: %w", err)
	}
	if err := os.Chmod(tmp, mode); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("chmod: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}

// Auditor records outcomes. *database.AuditDB implements it.
type Auditor interface {
	SaveOutcome(ctx context.Context, o *model.Outcome) (int64, error)
}

// AuditStep records the outcome. It is final, and audit failures are
// logged without failing the job.
type AuditStep struct {
	auditor Auditor
	logger  *slog.Logger
}

// AuditStepOption configures an AuditStep.
type AuditStepOption func(*AuditStep)

// WithAuditLogger sets the logger for audit failures.
func WithAuditLogger(logger *slog.Logger) AuditStepOption {
	return func(s *AuditStep) {
		s.logger = logger
	}
}

// NewAuditStep creates an audit step.
func NewAuditStep(a Auditor, opts ...AuditStepOption) *AuditStep {
	s := &AuditStep{auditor: a, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *AuditStep) Name() string { return "audit" }

// Final marks the step as always running.
func (s *AuditStep) Final() bool { return true }

// Do saves the outcome.
func (s *AuditStep) Do(ctx context.Context, job *Job) error {
	if s.auditor == nil || job.Outcome == nil {
		return nil
	}
	if _, err := s.auditor.SaveOutcome(context.WithoutCancel(ctx), job.Outcome); err != nil {
		s.logger.Warn("failed to audit outcome", "source", job.Source, "error", err)
	}
	return nil
}
