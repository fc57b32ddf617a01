package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/config"
)

//go:embed templates/easysvg.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = config.DefaultConfigFile

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new easysvg configuration file",
		Long: `Initialize creates a new .easysvg configuration file in the current directory.

The generated file turns SVG support on and documents every option:
- Who may upload SVG files and how large they may be
- Sanitization timeout and minification
- Upload API address, storage directory and API tokens
- Policy changes on top of the built-in tables

Examples:
  # Create .easysvg in current directory
  easysvg init

  # Create config file at a specific path
  easysvg init -o ~/.config/easysvg/config.yaml

  # Force overwrite existing file
  easysvg init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/easysvg.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// API tokens live in this file, so only the owner may read it.
	if err := os.WriteFile(outputPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(out, "\nEdit this file to configure:")
	fmt.Fprintln(out, "  - The role allowed to upload SVG files")
	fmt.Fprintln(out, "  - API tokens for 'easysvg serve'")
	fmt.Fprintln(out, "  - Policy additions and removals")

	return nil
}
