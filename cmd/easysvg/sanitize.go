package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/config"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/model"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/pipeline"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/report"
)

// NewSanitizeCmd creates the sanitize command.
func NewSanitizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sanitize FILE|DIR...",
		Short: "Sanitize SVG files on disk",
		Long: `Sanitize runs SVG files through the sanitizer and writes the clean output.

Directories are searched recursively for files ending in .svg. Clean
output is written either over the original file (--in-place) or into an
output directory (--output-dir). Rejected files are never modified.
Without either flag nothing is written and only the report is printed.

Every outcome is recorded in the audit database unless --no-audit is set.

Examples:
  # Sanitize a theme's icons in place
  easysvg sanitize -i wp-content/themes/mytheme/icons

  # Write clean copies to another directory
  easysvg sanitize -o clean/ uploads/*.svg

  # Use the strict policy and write a Markdown report
  easysvg sanitize --policy strict -m -r report.md -o clean/ uploads/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSanitizeCmd,
	}

	addBatchFlags(cmd)
	cmd.Flags().BoolP("in-place", "i", false,
		"Overwrite accepted files (mutually exclusive with --output-dir)")
	cmd.Flags().StringP("output-dir", "o", "",
		"Write accepted files to this directory")

	return cmd
}

// addBatchFlags registers the flags shared by sanitize and check.
func addBatchFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("policy", "p", "",
		"Built-in policy: default or strict (a policy in the config file wins)")
	cmd.Flags().IntP("concurrency", "b", config.DefaultConcurrency,
		"Number of files sanitized in parallel")
	cmd.Flags().Bool("minify", false, "Minify clean output")
	cmd.Flags().Bool("no-audit", false, "Do not record outcomes in the audit database")

	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("report", "r", "",
		"Write report to specified file path (creates directories if needed)")
}

// runSanitizeCmd executes the sanitize command.
func runSanitizeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildBatchConfig(cmd, args)
	if err != nil {
		return err
	}
	if cfg.InPlace, err = cmd.Flags().GetBool("in-place"); err != nil {
		return err
	}
	if cfg.OutputDir, err = cmd.Flags().GetString("output-dir"); err != nil {
		return err
	}
	if err := cfg.ValidateBatch(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	return runBatchCmd(cmd, cfg)
}

// buildBatchConfig creates a Config from the config file and the batch
// flags. Flags override the file only when set.
func buildBatchConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()

	if flags.Changed("policy") {
		if cfg.PolicyName, err = flags.GetString("policy"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("concurrency") || cfg.File == nil || cfg.File.Concurrency == 0 {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return nil, err
		}
	}
	if flags.Changed("minify") {
		if cfg.Minify, err = flags.GetBool("minify"); err != nil {
			return nil, err
		}
	}
	noAudit, err := flags.GetBool("no-audit")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noAudit

	if cfg.JSONReport, err = flags.GetBool("json"); err != nil {
		return nil, err
	}
	if cfg.MarkdownReport, err = flags.GetBool("markdown"); err != nil {
		return nil, err
	}
	if cfg.ReportFile, err = flags.GetString("report"); err != nil {
		return nil, err
	}

	cfg.Targets = args
	return cfg, nil
}

// runBatchCmd processes cfg.Targets and writes the report. Rejections
// are reported, not returned as errors.
func runBatchCmd(cmd *cobra.Command, cfg *config.Config) error {
	logger := setupLogger(cmd, cfg.Verbose)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	summary, err := runBatch(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if err := outputReport(cmd.OutOrStdout(), cfg, summary); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// runBatch sanitizes every target and aggregates the outcomes.
func runBatch(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*model.Summary, error) {
	files, err := pipeline.CollectTargets(cfg.Targets)
	if err != nil {
		return nil, err
	}

	engine, err := newEngine(cfg, logger)
	if err != nil {
		return nil, err
	}

	db, err := openAuditDB(cfg, logger)
	if err != nil {
		return nil, err
	}
	deps := pipeline.BatchDeps{
		Size:      cfg.SizePolicy(),
		Engine:    engine,
		Timeout:   cfg.SanitizeTimeout,
		InPlace:   cfg.InPlace,
		OutputDir: cfg.OutputDir,
	}
	if db != nil {
		defer db.Close()
		deps.Auditor = db
	}

	logger.Info("starting batch",
		"files", len(files),
		"policy", engine.Policy().Name(),
		"concurrency", cfg.Concurrency,
		"in_place", cfg.InPlace,
	)
	start := time.Now()

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.BatchPipeline(deps, pipeline.WithLogger(logger))
		},
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	outcomes := make([]*model.Outcome, len(files))
	var mu sync.Mutex
	err = bp.ProcessBatchWithCallback(ctx, files, func(o *model.Outcome, index int) {
		mu.Lock()
		defer mu.Unlock()
		outcomes[index] = o
	})
	if err != nil {
		return nil, err
	}

	logger.Info("batch complete", "files", len(files), "elapsed", time.Since(start).Round(time.Millisecond))

	table := engine.Policy()
	return model.NewSummary(table.Name(), table.Version(), outcomes), nil
}

// outputReport writes the summary in the requested format to the report
// file, or to stdout.
func outputReport(stdout io.Writer, cfg *config.Config, summary *model.Summary) error {
	output := stdout
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	}

	format := report.FormatText
	switch {
	case cfg.JSONReport:
		format = report.FormatJSON
	case cfg.MarkdownReport:
		format = report.FormatMarkdown
	}
	_, err := report.NewWriter(format, output, cfg.Verbose).Write(summary)
	return err
}
