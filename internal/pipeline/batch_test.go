package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/host"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/model"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()

	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

// TestNewBatchProcessor tests option handling.
func TestNewBatchProcessor(t *testing.T) {
	t.Parallel()

	factory := func() *Pipeline { return New() }

	if bp := NewBatchProcessor(factory); bp.concurrency != DefaultConcurrency {
		t.Errorf("expected default concurrency %d, got %d", DefaultConcurrency, bp.concurrency)
	}
	if bp := NewBatchProcessor(factory, WithConcurrency(0)); bp.concurrency != DefaultConcurrency {
		t.Errorf("non-positive concurrency should be ignored, got %d", bp.concurrency)
	}
	if bp := NewBatchProcessor(factory, WithConcurrency(8)); bp.concurrency != 8 {
		t.Errorf("expected concurrency 8, got %d", bp.concurrency)
	}
}

// TestProcessBatch tests batch sanitization into an output directory and
// in place.
func TestProcessBatch(t *testing.T) {
	t.Parallel()

	t.Run("output directory", func(t *testing.T) {
		t.Parallel()

		in := t.TempDir()
		out := filepath.Join(t.TempDir(), "clean")
		writeFiles(t, in, map[string]string{
			"clean.svg": cleanSVG,
			"dirty.svg": dirtySVG,
			"text.svg":  "not an image",
		})
		sources := []string{
			filepath.Join(in, "clean.svg"),
			filepath.Join(in, "dirty.svg"),
			filepath.Join(in, "text.svg"),
		}

		auditor := &fakeAuditor{}
		factory := func() *Pipeline {
			return BatchPipeline(BatchDeps{
				Size:      host.NewSizePolicy(0),
				Engine:    quietEngine(),
				OutputDir: out,
				Auditor:   auditor,
			}, WithLogger(quietLogger()))
		}
		bp := NewBatchProcessor(factory, WithBatchLogger(quietLogger()), WithConcurrency(2))

		outcomes, err := bp.ProcessBatch(context.Background(), sources)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []model.Status{model.StatusClean, model.StatusSanitized, model.StatusRejected}
		for i, o := range outcomes {
			if o == nil {
				t.Fatalf("outcome %d is nil", i)
			}
			if o.Status != want[i] {
				t.Errorf("%s: expected %s, got %s", o.Source, want[i], o.Status)
			}
		}
		if auditor.count() != 3 {
			t.Errorf("expected 3 audited outcomes, got %d", auditor.count())
		}

		if _, err := os.Stat(filepath.Join(out, "dirty.svg")); err != nil {
			t.Errorf("sanitized file should be written: %v", err)
		}
		if _, err := os.Stat(filepath.Join(out, "text.svg")); !os.IsNotExist(err) {
			t.Error("rejected file should not be written")
		}
		orig, err := os.ReadFile(sources[1])
		if err != nil {
			t.Fatal(err)
		}
		if string(orig) != dirtySVG {
			t.Error("input should be untouched when writing to an output directory")
		}
	})

	t.Run("in place keeps mode and skips rejected files", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		writeFiles(t, dir, map[string]string{"dirty.svg": dirtySVG, "text.svg": "plain"})
		dirty, text := filepath.Join(dir, "dirty.svg"), filepath.Join(dir, "text.svg")

		factory := func() *Pipeline {
			return BatchPipeline(BatchDeps{
				Size:    host.NewSizePolicy(0),
				Engine:  quietEngine(),
				InPlace: true,
			}, WithLogger(quietLogger()))
		}
		outcomes, err := NewBatchProcessor(factory, WithBatchLogger(quietLogger())).
			ProcessBatch(context.Background(), []string{dirty, text})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcomes[0].Destination != dirty {
			t.Errorf("expected in-place destination, got %q", outcomes[0].Destination)
		}

		data, err := os.ReadFile(dirty)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(data), "onclick") {
			t.Error("file should be rewritten without the handler")
		}
		info, err := os.Stat(dirty)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o600 {
			t.Errorf("expected mode 0600 to be kept, got %v", info.Mode().Perm())
		}
		if plain, _ := os.ReadFile(text); string(plain) != "plain" {
			t.Error("rejected file must not be modified")
		}
	})

	t.Run("missing file is an io failure", func(t *testing.T) {
		t.Parallel()

		factory := func() *Pipeline {
			return BatchPipeline(BatchDeps{Size: host.NewSizePolicy(0), Engine: quietEngine()}, WithLogger(quietLogger()))
		}
		outcomes, err := NewBatchProcessor(factory, WithBatchLogger(quietLogger())).
			ProcessBatch(context.Background(), []string{filepath.Join(t.TempDir(), "missing.svg")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcomes[0].Reason != sanitizer.ReasonIOFailure {
			t.Errorf("expected io_failure, got %q", outcomes[0].Reason)
		}
	})

	t.Run("pipeline without sanitize step accepts nothing", func(t *testing.T) {
		t.Parallel()

		bp := NewBatchProcessor(func() *Pipeline { return New(WithLogger(quietLogger())) }, WithBatchLogger(quietLogger()))
		outcomes, err := bp.ProcessBatch(context.Background(), []string{"a.svg"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if outcomes[0].Reason != sanitizer.ReasonSanitizerUnavailable {
			t.Errorf("expected sanitizer_unavailable, got %q", outcomes[0].Reason)
		}
	})
}

// TestCollectTargets tests directory expansion.
func TestCollectTargets(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.svg":       cleanSVG,
		"B.SVG":       cleanSVG,
		"notes.txt":   "x",
		"sub/c.svg":   cleanSVG,
		"sub/d.png":   "x",
		"other/e.svg": cleanSVG,
	})

	files, err := CollectTargets([]string{dir, filepath.Join(dir, "a.svg"), filepath.Join(dir, "notes.txt")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := map[string]bool{
		filepath.Join(dir, "a.svg"):       true,
		filepath.Join(dir, "B.SVG"):       true,
		filepath.Join(dir, "sub/c.svg"):   true,
		filepath.Join(dir, "other/e.svg"): true,
		filepath.Join(dir, "notes.txt"):   true,
	}
	if len(files) != len(want) {
		t.Fatalf("expected %d files, got %v", len(want), files)
	}
	for _, f := range files {
		if !want[f] {
			t.Errorf("unexpected file %s", f)
		}
	}

	if _, err := CollectTargets([]string{filepath.Join(dir, "missing")}); err == nil {
		t.Error("expected an error for a missing target")
	}
}
