package main

import (
	"strings"
	"testing"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/policy"
)

func TestGetVersion(t *testing.T) {
	t.Parallel()

	if v := getVersion(); v == "" {
		t.Error("getVersion() returned empty string")
	}
}

func TestGetCommit(t *testing.T) {
	t.Parallel()

	c := getCommit()
	if c == "" {
		t.Error("getCommit() returned empty string")
	}
	if c != "unknown" && len(c) > 7 {
		t.Errorf("expected short commit hash, got %q", c)
	}
}

func TestGetDate(t *testing.T) {
	t.Parallel()

	if d := getDate(); d == "" {
		t.Error("getDate() returned empty string")
	}
}

func TestVersionCmd(t *testing.T) {
	t.Parallel()

	out, _, err := runRoot(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"easysvg version", "commit:", "built:", "policy: " + policy.DefaultVersion} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got %q", want, out)
		}
	}
}
