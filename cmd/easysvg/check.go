package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCheckCmd creates the check command.
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check FILE|DIR...",
		Short: "Report which SVG files would be rejected",
		Long: `Check sanitizes SVG files without writing anything and prints a report.

It exits with status 1 when any file would be rejected, which makes it
suitable for CI jobs that guard a repository of icons or theme assets.

Examples:
  # Fail the build if any icon would be rejected
  easysvg check assets/icons

  # Machine-readable output
  easysvg check --json assets/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runCheckCmd,
	}

	addBatchFlags(cmd)
	return cmd
}

// runCheckCmd executes the check command.
func runCheckCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildBatchConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.ValidateBatch(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd, cfg.Verbose)
	summary, err := runBatch(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	if err := outputReport(cmd.OutOrStdout(), cfg, summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if summary.HasRejections() {
		return errRejected
	}
	return nil
}
