package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "logo.svg", want: "logo.svg"},
		{name: "separators", in: "a/b\\c.svg", want: "a_b_c.svg"},
		{name: "control characters", in: "lo\ngo\x00.svg", want: "logo.svg"},
		{name: "traversal", in: "../etc/passwd", wantErr: true},
		{name: "blank", in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := SanitizeFileName(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidName) {
					t.Errorf("expected ErrInvalidName, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("SanitizeFileName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestLocalSink(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("stage then commit replaces the original", func(t *testing.T) {
		t.Parallel()

		sink := NewLocalSink(t.TempDir())
		st, err := sink.Stage(ctx, "logo.svg", strings.NewReader("<svg onload=x/>"), 0)
		if err != nil {
			t.Fatalf("Stage failed: %v", err)
		}
		if st.Size != 15 || string(st.Data) != "<svg onload=x/>" {
			t.Errorf("unexpected staged upload %+v", st)
		}
		if _, err := os.Stat(filepath.Join(sink.BaseDir(), st.Key)); err != nil {
			t.Fatalf("staged file missing: %v", err)
		}

		clean := []byte("<svg/>")
		key, err := sink.Commit(ctx, st, clean)
		if err != nil {
			t.Fatalf("Commit failed: %v", err)
		}
		if key != ObjectKey(clean) {
			t.Errorf("expected content-addressed key, got %q", key)
		}
		if _, err := os.Stat(filepath.Join(sink.BaseDir(), st.Key)); !os.IsNotExist(err) {
			t.Errorf("staged file should be removed, stat err = %v", err)
		}

		rc, err := sink.Open(ctx, key)
		if err != nil {
			t.Fatalf("Open failed: %v", err)
		}
		defer rc.Close()
		got, err := io.ReadAll(rc)
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if string(got) != "<svg/>" {
			t.Errorf("expected clean bytes, got %q", got)
		}
	})

	t.Run("discard removes the staged file", func(t *testing.T) {
		t.Parallel()

		sink := NewLocalSink(t.TempDir())
		st, err := sink.Stage(ctx, "evil.svg", strings.NewReader("<svg><script/></svg>"), 0)
		if err != nil {
			t.Fatalf("Stage failed: %v", err)
		}
		if err := sink.Discard(ctx, st); err != nil {
			t.Fatalf("Discard failed: %v", err)
		}
		if _, err := os.Stat(filepath.Join(sink.BaseDir(), st.Key)); !os.IsNotExist(err) {
			t.Errorf("staged file should be removed, stat err = %v", err)
		}
		if err := sink.Discard(ctx, st); !errors.Is(err, ErrNotStaged) {
			t.Errorf("expected ErrNotStaged on second discard, got %v", err)
		}
		if _, err := sink.Commit(ctx, st, []byte("<svg/>")); !errors.Is(err, ErrNotStaged) {
			t.Errorf("expected ErrNotStaged on commit, got %v", err)
		}
	})

	t.Run("limit is enforced", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sink := NewLocalSink(dir)
		if _, err := sink.Stage(ctx, "big.svg", strings.NewReader(strings.Repeat("a", 11)), 10); !errors.Is(err, ErrTooLarge) {
			t.Errorf("expected ErrTooLarge, got %v", err)
		}
		if _, err := os.Stat(filepath.Join(dir, stagingDir)); !os.IsNotExist(err) {
			t.Errorf("nothing should be staged, stat err = %v", err)
		}
		if _, err := sink.Stage(ctx, "ok.svg", strings.NewReader(strings.Repeat("a", 10)), 10); err != nil {
			t.Errorf("upload at the limit should be staged: %v", err)
		}
	})

	t.Run("keys cannot escape the root", func(t *testing.T) {
		t.Parallel()

		sink := NewLocalSink(t.TempDir())
		for _, key := range []string{"../x", "/etc/passwd", ".", "staging/abc_logo.svg"} {
			if _, err := sink.Open(ctx, key); !errors.Is(err, ErrInvalidKey) {
				t.Errorf("Open(%q): expected ErrInvalidKey, got %v", key, err)
			}
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		sink := NewLocalSink(t.TempDir())
		if _, err := sink.Stage(cctx, "a.svg", strings.NewReader("<svg/>"), 0); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}
