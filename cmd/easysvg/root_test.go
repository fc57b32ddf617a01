package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/config"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/host"
)

const (
	cleanSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10 10"><rect width="10" height="10" fill="red"/></svg>`
	dirtySVG = `<svg xmlns="http://www.w3.org/2000/svg"><rect onclick="alert(1)" width="1"/><script>alert(2)</script></svg>`
)

// runRoot executes the root command with args and returns what it wrote.
func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// writeConfig writes a config file into dir and returns its path.
func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()

	path := filepath.Join(dir, "easysvg.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "easysvg" {
			t.Errorf("expected use 'easysvg', got %q", cmd.Use)
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has persistent flags", func(t *testing.T) {
		t.Parallel()
		for name, short := range map[string]string{"verbose": "v", "config": "c"} {
			flag := cmd.PersistentFlags().Lookup(name)
			if flag == nil {
				t.Fatalf("expected %s flag", name)
			}
			if flag.Shorthand != short {
				t.Errorf("expected shorthand %q for %s, got %q", short, name, flag.Shorthand)
			}
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		want := map[string]bool{
			"sanitize": false, "check": false, "serve": false, "history": false,
			"policy": false, "init": false, "version": false,
		}
		for _, sub := range cmd.Commands() {
			if _, ok := want[sub.Name()]; ok {
				want[sub.Name()] = true
			}
		}
		for name, found := range want {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	t.Run("explicit missing file is an error", func(t *testing.T) {
		t.Parallel()

		missing := filepath.Join(t.TempDir(), "missing.yaml")
		_, _, err := runRoot(t, "policy", "--config", missing)
		if !errors.Is(err, config.ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("file values are applied", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "enabled: true\nuploadRole: editor\nmaxUploadKiB: 64\n")
		cmd := NewRootCmd()
		if err := cmd.ParseFlags([]string{"--config", path, "-v"}); err != nil {
			t.Fatal(err)
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !cfg.Enabled || cfg.UploadRole != host.RoleEditor || cfg.MaxUploadKiB != 64 {
			t.Errorf("config file not applied: %+v", cfg)
		}
		if !cfg.Verbose {
			t.Error("expected verbose from flag")
		}
		if cfg.File == nil {
			t.Error("expected File to be kept")
		}
	})

	t.Run("invalid file is an error", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, t.TempDir(), "uploadRoles: editor\n")
		if _, _, err := runRoot(t, "policy", "--config", path); err == nil {
			t.Error("expected error for unknown key")
		}
	})
}
