package main

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/policy"
)

func TestRunPolicyCmd(t *testing.T) {
	t.Parallel()

	t.Run("default policy as yaml", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfig(t, t.TempDir(), "")
		out, _, err := runRoot(t, "policy", "--config", cfgPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var s policy.Summary
		if err := yaml.Unmarshal([]byte(out), &s); err != nil {
			t.Fatalf("invalid YAML: %v", err)
		}
		if s.Name != policy.BaseDefault {
			t.Errorf("expected default policy, got %q", s.Name)
		}
		for _, el := range s.Elements {
			if strings.EqualFold(el, "script") {
				t.Error("script must never be listed as allowed")
			}
		}
	})

	t.Run("strict policy as json", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfig(t, t.TempDir(), "")
		out, _, err := runRoot(t, "policy", "--config", cfgPath, "-p", "strict", "--json")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var s policy.Summary
		if err := json.Unmarshal([]byte(out), &s); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if s.Name != policy.BaseStrict {
			t.Errorf("expected strict policy, got %q", s.Name)
		}
	})

	t.Run("config file policy wins", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfig(t, t.TempDir(), "policy:\n  name: brand\n  base: strict\n  allowElements: [image]\n")
		out, _, err := runRoot(t, "policy", "--config", cfgPath, "-p", "default")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "name: brand") || !strings.Contains(out, "- image") {
			t.Errorf("expected brand policy with image, got %q", out)
		}
	})

	t.Run("unsafe config file policy", func(t *testing.T) {
		t.Parallel()

		cfgPath := writeConfig(t, t.TempDir(), "policy:\n  allowElements: [script]\n")
		_, _, err := runRoot(t, "policy", "--config", cfgPath)
		if err == nil || !strings.Contains(err.Error(), "config file policy") {
			t.Errorf("expected unsafe policy error, got %v", err)
		}
	})
}
