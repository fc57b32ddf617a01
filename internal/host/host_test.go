package host

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
)

func TestRoleAuthorizer(t *testing.T) {
	t.Parallel()

	adminOnly, err := NewRoleAuthorizer(RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	editors, err := NewRoleAuthorizer(RoleEditor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name       string
		principal  Principal
		adminOnly  bool
		editorsToo bool
	}{
		{name: "admin", principal: Principal{ID: "1", Role: RoleAdmin}, adminOnly: true, editorsToo: true},
		{name: "editor", principal: Principal{ID: "2", Role: RoleEditor}, adminOnly: false, editorsToo: true},
		{name: "author", principal: Principal{ID: "3", Role: RoleAuthor}, adminOnly: false, editorsToo: false},
		{name: "anonymous", principal: Anonymous, adminOnly: false, editorsToo: false},
		{name: "unknown role", principal: Principal{ID: "4", Role: "root"}, adminOnly: false, editorsToo: false},
	}
	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := adminOnly.CanUploadSVG(ctx, tt.principal); got != tt.adminOnly {
				t.Errorf("admin-only: got %v, want %v", got, tt.adminOnly)
			}
			if got := editors.CanUploadSVG(ctx, tt.principal); got != tt.editorsToo {
				t.Errorf("editors: got %v, want %v", got, tt.editorsToo)
			}
		})
	}

	t.Run("zero value requires admin", func(t *testing.T) {
		t.Parallel()

		var a RoleAuthorizer
		if a.CanUploadSVG(ctx, Principal{ID: "2", Role: RoleEditor}) {
			t.Error("zero authorizer should not allow editors")
		}
	})

	t.Run("invalid required role", func(t *testing.T) {
		t.Parallel()

		if _, err := NewRoleAuthorizer(RoleAuthor); !errors.Is(err, ErrInvalidUploadRole) {
			t.Errorf("expected ErrInvalidUploadRole, got %v", err)
		}
	})
}

func TestParseRole(t *testing.T) {
	t.Parallel()

	if r, err := ParseRole(" Editor "); err != nil || r != RoleEditor {
		t.Errorf("ParseRole = %q, %v", r, err)
	}
	if _, err := ParseRole("owner"); !errors.Is(err, ErrUnknownRole) {
		t.Errorf("expected ErrUnknownRole, got %v", err)
	}
}

func TestStaticDirectory(t *testing.T) {
	t.Parallel()

	d := NewStaticDirectory(map[string]Principal{
		"tok-admin": {ID: "alice", Role: RoleAdmin},
		"":          {ID: "nobody", Role: RoleAdmin},
	})
	if d.Len() != 1 {
		t.Errorf("empty tokens should be skipped, got %d entries", d.Len())
	}
	if p, ok := d.Lookup("tok-admin"); !ok || p.ID != "alice" {
		t.Errorf("Lookup = %+v, %v", p, ok)
	}
	for _, tok := range []string{"", "tok", "tok-admin2"} {
		if _, ok := d.Lookup(tok); ok {
			t.Errorf("Lookup(%q) should fail", tok)
		}
	}
}

func TestSizePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   int
		want int
	}{
		{0, 512},
		{-1, 512},
		{5, 10},
		{10, 10},
		{1024, 1024},
		{9000, 8192},
	}
	for _, tt := range tests {
		if got := NewSizePolicy(tt.in).KiB(); got != tt.want {
			t.Errorf("NewSizePolicy(%d).KiB() = %d, want %d", tt.in, got, tt.want)
		}
	}

	p := NewSizePolicy(10)
	if !p.Allows(10*1024) || p.Allows(10*1024+1) {
		t.Error("limit should be inclusive")
	}
	var zero SizePolicy
	if zero.Limit() != 512*1024 {
		t.Errorf("zero policy should use the default, got %d", zero.Limit())
	}
}

func TestGate(t *testing.T) {
	t.Parallel()

	t.Run("enabled", func(t *testing.T) {
		t.Parallel()

		g := NewGate(true)
		if !g.Enabled() || g.Status() != "" {
			t.Fatalf("gate should be open, status %q", g.Status())
		}
		if g.MimeTypes()["svg"] != "image/svg+xml" {
			t.Error("svg should be advertised")
		}
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()

		g := NewGate(false)
		if g.Enabled() || g.Status() != sanitizer.ReasonDisabled {
			t.Fatalf("gate should be closed as disabled, status %q", g.Status())
		}
		m := g.MimeTypes()
		if _, ok := m["svg"]; ok {
			t.Error("svg should not be advertised")
		}
		if m["png"] != "image/png" {
			t.Error("base types should remain")
		}
	})

	t.Run("sanitizer unavailable fails closed", func(t *testing.T) {
		t.Parallel()

		g := Gate{enabled: true, available: func() error { return errors.New("missing") }}
		if g.Enabled() || g.Status() != sanitizer.ReasonSanitizerUnavailable {
			t.Fatalf("gate should be closed, status %q", g.Status())
		}
		if _, ok := g.MimeTypes()["svg"]; ok {
			t.Error("svg should not be advertised")
		}
	})
}

func TestMessage(t *testing.T) {
	t.Parallel()

	rej := sanitizer.Reject(sanitizer.ReasonForbiddenElement, "<b>script</b>", nil)
	got := Message(rej)
	if strings.Contains(got, "<b>") {
		t.Errorf("markup should be stripped: %q", got)
	}
	if !strings.HasPrefix(got, "The SVG file contains a forbidden element.") || !strings.Contains(got, "(script)") {
		t.Errorf("unexpected message %q", got)
	}

	long := sanitizer.Reject(sanitizer.ReasonScriptReference, strings.Repeat("x", 500), nil)
	if d := PublicDetail(long); len([]rune(d)) != maxDetailRunes+1 {
		t.Errorf("detail should be truncated, got %d runes", len([]rune(d)))
	}
	if Message(nil) != "" || PublicDetail(nil) != "" {
		t.Error("nil rejection should render empty")
	}
}
