package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/database"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/model"
	"github.com/WordPress-Satkhira-Community/easy-svg-upload/internal/sanitizer"
)

// NewHistoryCmd creates the history command.
// This command reads the outcomes recorded in the audit database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show sanitization history from the audit database",
		Long: `History lists the outcomes recorded by 'easysvg sanitize' and 'easysvg serve'.

Examples:
  # Last 20 outcomes
  easysvg history -n 20

  # Rejections of the last week, grouped by reason
  easysvg history --status rejected --since 168h --counts

  # Everything one uploader sent since a date, as JSON
  easysvg history --principal site-editor --since 2025-01-01 --json

  # Look up a file by its SHA3-256 digest
  easysvg history --digest 9f86d0...

  # Delete outcomes older than 90 days
  easysvg history --prune 2160h`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().StringP("status", "s", "", "Filter by status: clean, sanitized or rejected")
	cmd.Flags().String("reason", "", "Filter by rejection reason")
	cmd.Flags().String("principal", "", "Filter by uploader ID")
	cmd.Flags().String("digest", "", "Filter by input SHA3-256 digest")
	cmd.Flags().String("since", "", "Only outcomes since a date (YYYY-MM-DD) or a duration ago (e.g. 24h)")
	cmd.Flags().IntP("limit", "n", 50, "Maximum number of outcomes to list")
	cmd.Flags().Bool("counts", false, "Show counts by status and reason instead of a listing")
	cmd.Flags().String("prune", "", "Delete outcomes older than a date or duration")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	now := time.Now()

	sinceRaw, err := flags.GetString("since")
	if err != nil {
		return err
	}
	since, err := parseSince(sinceRaw, now)
	if err != nil {
		return err
	}

	status, err := flags.GetString("status")
	if err != nil {
		return err
	}
	switch model.Status(status) {
	case "", model.StatusClean, model.StatusSanitized, model.StatusRejected:
	default:
		return fmt.Errorf("unknown status %q", status)
	}

	reason, err := flags.GetString("reason")
	if err != nil {
		return err
	}
	if reason != "" && !slices.Contains(sanitizer.Reasons(), sanitizer.Reason(reason)) {
		return fmt.Errorf("unknown reason %q", reason)
	}

	filter := database.Filter{
		Status: model.Status(status),
		Reason: sanitizer.Reason(reason),
		Since:  since,
	}
	if filter.Principal, err = flags.GetString("principal"); err != nil {
		return err
	}
	if filter.InputDigest, err = flags.GetString("digest"); err != nil {
		return err
	}
	if filter.Limit, err = flags.GetInt("limit"); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false
	db, err := database.Open(cfg.DBDir, opts)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return errors.New("no history yet: run 'easysvg sanitize' or 'easysvg serve' first")
		}
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	asJSON, err := flags.GetBool("json")
	if err != nil {
		return err
	}

	pruneRaw, err := flags.GetString("prune")
	if err != nil {
		return err
	}
	if pruneRaw != "" {
		before, err := parseSince(pruneRaw, now)
		if err != nil {
			return err
		}
		n, err := db.Prune(ctx, before)
		if err != nil {
			return fmt.Errorf("failed to prune history: %w", err)
		}
		fmt.Fprintf(out, "Deleted %d outcome(s) recorded before %s\n", n, before.Format(time.DateTime))
		return nil
	}

	counts, err := flags.GetBool("counts")
	if err != nil {
		return err
	}
	if counts {
		return showCounts(ctx, out, db, since, asJSON)
	}

	records, err := db.ListOutcomes(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if asJSON {
		return writeJSON(out, records)
	}
	return writeRecords(out, records)
}

// parseSince accepts a date (YYYY-MM-DD), an RFC 3339 timestamp or a
// duration counted back from now. An empty string means no bound.
func parseSince(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return time.Time{}, fmt.Errorf("negative duration %q", s)
		}
		return now.Add(-d), nil
	}
	if t, err := time.ParseInLocation(time.DateOnly, s, time.Local); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q (use YYYY-MM-DD, RFC 3339 or a duration such as 24h)", s)
}

func writeRecords(w io.Writer, records []database.Record) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No outcomes recorded.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTIME\tSTATUS\tREASON\tPRINCIPAL\tSOURCE")
	for _, r := range records {
		reason := string(r.Reason)
		if reason == "" {
			reason = "-"
		}
		principal := r.Principal
		if principal == "" {
			principal = "-"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.ProcessedAt.Local().Format(time.DateTime),
			r.Status,
			reason,
			principal,
			strconv.Quote(r.Source),
		)
	}
	return tw.Flush()
}

func showCounts(ctx context.Context, w io.Writer, db *database.AuditDB, since time.Time, asJSON bool) error {
	byStatus, err := db.CountByStatus(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to count outcomes: %w", err)
	}
	byReason, err := db.CountByReason(ctx, since)
	if err != nil {
		return fmt.Errorf("failed to count rejections: %w", err)
	}

	if asJSON {
		return writeJSON(w, map[string]any{"status": byStatus, "reasons": byReason})
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tCOUNT")
	for _, s := range []model.Status{model.StatusClean, model.StatusSanitized, model.StatusRejected} {
		fmt.Fprintf(tw, "%s\t%d\n", s, byStatus[s])
	}
	if len(byReason) > 0 {
		fmt.Fprintln(tw, "\t")
		fmt.Fprintln(tw, "REASON\tCOUNT")
		summary := model.Summary{ByReason: byReason}
		for _, r := range summary.Reasons() {
			fmt.Fprintf(tw, "%s\t%d\n", strings.ToLower(string(r)), byReason[r])
		}
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
