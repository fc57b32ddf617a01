package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/host"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/model"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/storage"
)

const (
	cleanSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect width="10" height="10" fill="red"/></svg>`
	dirtySVG = `<svg xmlns="http://www.w3.org/2000/svg"><rect onclick="alert(1)" width="1"/><script>alert(2)</script></svg>`
)

func quietEngine() *sanitizer.Engine {
	return sanitizer.New(sanitizer.WithLogger(quietLogger()))
}

// fakeAuditor records saved outcomes in memory.
type fakeAuditor struct {
	mu       sync.Mutex
	outcomes []*model.Outcome
	err      error
}

func (f *fakeAuditor) SaveOutcome(_ context.Context, o *model.Outcome) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.outcomes = append(f.outcomes, o)
	return int64(len(f.outcomes)), nil
}

func (f *fakeAuditor) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.outcomes)
}

func uploadDeps(t *testing.T, enabled bool) (UploadDeps, *storage.LocalSink, *fakeAuditor) {
	t.Helper()

	authz, err := host.NewRoleAuthorizer(host.RoleEditor)
	if err != nil {
		t.Fatalf("NewRoleAuthorizer: %v", err)
	}
	sink := storage.NewLocalSink(t.TempDir())
	auditor := &fakeAuditor{}
	return UploadDeps{
		Gate:       host.NewGate(enabled),
		Authorizer: authz,
		Size:       host.NewSizePolicy(host.MinUploadKiB),
		Sink:       sink,
		Engine:     quietEngine(),
		Auditor:    auditor,
	}, sink, auditor
}

func uploadJob(name, body string, role host.Role) *Job {
	job := NewJob(name)
	job.Principal = host.Principal{ID: "u-1", Role: role}
	job.DeclaredSize = int64(len(body))
	job.Body = strings.NewReader(body)
	return job
}

func stagingEntries(t *testing.T, sink *storage.LocalSink) int {
	t.Helper()

	entries, err := os.ReadDir(filepath.Join(sink.BaseDir(), "staging"))
	if errors.Is(err, os.ErrNotExist) {
		return 0
	}
	if err != nil {
		t.Fatalf("read staging: %v", err)
	}
	return len(entries)
}

// TestUploadPipeline tests the full upload flow against a local sink.
func TestUploadPipeline(t *testing.T) {
	t.Parallel()

	t.Run("clean upload is committed", func(t *testing.T) {
		t.Parallel()

		deps, sink, auditor := uploadDeps(t, true)
		job := uploadJob("logo.svg", cleanSVG, host.RoleEditor)
		if err := UploadPipeline(deps, WithLogger(quietLogger())).Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		o := job.Outcome
		if o.Status != model.StatusClean {
			t.Fatalf("expected clean, got %s (%s)", o.Status, o.Reason)
		}
		if o.ID == "" || o.Principal != "u-1" {
			t.Errorf("expected upload ID and principal, got %q/%q", o.ID, o.Principal)
		}
		if !strings.HasPrefix(o.Destination, "objects/") {
			t.Errorf("unexpected destination %q", o.Destination)
		}

		rc, err := sink.Open(context.Background(), o.Destination)
		if err != nil {
			t.Fatalf("open stored object: %v", err)
		}
		defer rc.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			t.Fatalf("read stored object: %v", err)
		}
		if !bytes.Equal(buf.Bytes(), o.Output) {
			t.Error("stored bytes should be the sanitized output")
		}
		if n := stagingEntries(t, sink); n != 0 {
			t.Errorf("expected empty staging area, got %d entries", n)
		}
		if auditor.count() != 1 {
			t.Errorf("expected one audited outcome, got %d", auditor.count())
		}
	})

	t.Run("dirty upload is stored sanitized", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := uploadDeps(t, true)
		job := uploadJob("logo.svg", dirtySVG, host.RoleAdmin)
		if err := UploadPipeline(deps, WithLogger(quietLogger())).Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.Outcome.Status != model.StatusSanitized {
			t.Fatalf("expected sanitized, got %s (%s)", job.Outcome.Status, job.Outcome.Reason)
		}
		out := strings.ToLower(string(job.Outcome.Output))
		if strings.Contains(out, "script") || strings.Contains(out, "onclick") {
			t.Errorf("output still carries script: %s", out)
		}
	})

	t.Run("rejected upload is discarded", func(t *testing.T) {
		t.Parallel()

		deps, sink, auditor := uploadDeps(t, true)
		job := uploadJob("notes.svg", "just text", host.RoleEditor)
		if err := UploadPipeline(deps, WithLogger(quietLogger())).Execute(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.Outcome.Reason != sanitizer.ReasonNotSVG {
			t.Fatalf("expected not_svg, got %q", job.Outcome.Reason)
		}
		if job.Outcome.Destination != "" || job.Outcome.Output != nil {
			t.Error("rejected outcome should carry no output")
		}
		if n := stagingEntries(t, sink); n != 0 {
			t.Errorf("expected staged file to be discarded, got %d entries", n)
		}
		if auditor.count() != 1 {
			t.Error("rejections are audited too")
		}
	})

	t.Run("refusals before staging", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name    string
			enabled bool
			role    host.Role
			body    string
			want    sanitizer.Reason
		}{
			{"disabled", false, host.RoleAdmin, cleanSVG, sanitizer.ReasonDisabled},
			{"author", true, host.RoleAuthor, cleanSVG, sanitizer.ReasonUnauthorized},
			{"too large", true, host.RoleAdmin, strings.Repeat("x", host.MinUploadKiB*1024+1), sanitizer.ReasonTooLarge},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()

				deps, sink, _ := uploadDeps(t, tt.enabled)
				job := uploadJob("a.svg", tt.body, tt.role)
				if err := UploadPipeline(deps, WithLogger(quietLogger())).Execute(context.Background(), job); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if job.Outcome.Reason != tt.want {
					t.Errorf("expected %q, got %q", tt.want, job.Outcome.Reason)
				}
				if job.Staged != nil || stagingEntries(t, sink) != 0 {
					t.Error("nothing should be staged")
				}
			})
		}
	})
}

// TestStageStep tests size enforcement while streaming.
func TestStageStep(t *testing.T) {
	t.Parallel()

	policy := host.NewSizePolicy(host.MinUploadKiB)
	sink := storage.NewLocalSink(t.TempDir())
	step := NewStageStep(sink, policy)

	t.Run("undeclared oversize body", func(t *testing.T) {
		t.Parallel()

		job := NewJob("big.svg")
		job.Body = strings.NewReader(strings.Repeat("a", int(policy.Limit())+1))
		if err := step.Do(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if job.Outcome == nil || job.Outcome.Reason != sanitizer.ReasonTooLarge {
			t.Fatalf("expected too_large, got %+v", job.Outcome)
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		t.Parallel()

		job := NewJob("..")
		job.Body = strings.NewReader(cleanSVG)
		if err := step.Do(context.Background(), job); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !job.Rejected() || job.Outcome.Reason != sanitizer.ReasonIOFailure {
			t.Fatalf("expected io_failure, got %+v", job.Outcome)
		}
	})

	t.Run("missing body", func(t *testing.T) {
		t.Parallel()

		if err := step.Do(context.Background(), NewJob("a.svg")); err == nil {
			t.Error("expected an error for a missing body")
		}
	})
}

// TestAuditStep tests that audit failures never fail the job.
func TestAuditStep(t *testing.T) {
	t.Parallel()

	auditor := &fakeAuditor{err: errors.New("database is locked")}
	step := NewAuditStep(auditor, WithAuditLogger(quietLogger()))
	if !step.Final() {
		t.Error("audit step should be final")
	}

	job := NewJob("a.svg")
	job.Reject(sanitizer.Reject(sanitizer.ReasonNotSVG, "", nil))
	if err := step.Do(context.Background(), job); err != nil {
		t.Errorf("audit errors should be swallowed, got %v", err)
	}
	if err := step.Do(context.Background(), NewJob("b.svg")); err != nil {
		t.Errorf("jobs without outcome are skipped, got %v", err)
	}
}

// TestSanitizeStepTimeout tests that an expired deadline rejects the job.
func TestSanitizeStepTimeout(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	job := NewJob("a.svg")
	job.Data = []byte(cleanSVG)
	if err := NewSanitizeStep(quietEngine()).Do(ctx, job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Outcome.Reason != sanitizer.ReasonCanceled {
		t.Errorf("expected canceled, got %q", job.Outcome.Reason)
	}
	if job.Outcome.Policy == "" {
		t.Error("expected policy name on the outcome")
	}
}
