package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/moltwatch/censyscollect/internal/config"
	"github.com/moltwatch/censyscollect/internal/database"
)

// NewCompareCmd creates the compare command.
// This command compares collection runs stored in the history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [old-run-id new-run-id]",
		Short: "Compare host sets between collection runs",
		Long: `Compare shows which host IPs appeared, disappeared, or stayed between
two stored collection runs.

Without arguments the latest two runs are compared. Pass two run IDs to
compare specific runs; the first ID is treated as the older run. Use
--list to see run IDs.

Runs are recorded by 'censyscollect collect' unless --no-db was given.

Examples:
  # Compare the latest two runs
  censyscollect compare

  # Compare two specific runs by ID
  censyscollect compare 3 7

  # List stored runs
  censyscollect compare --list

  # List only runs with a specific label
  censyscollect compare --list --label moltbot_clawdbot

  # Output comparison in JSON format
  censyscollect compare --json`,
		Args: cobra.MaximumNArgs(2),
		RunE: runCompareCmd,
	}

	// History listing flags
	cmd.Flags().Bool("list", false,
		"List stored collection runs instead of comparing")
	cmd.Flags().StringP("label", "l", "",
		"Restrict listing and latest-run selection to this label")

	// Output format flags
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	label, err := cmd.Flags().GetString("label")
	if err != nil {
		return err
	}

	// Use XDG data directory for database
	dbDir := config.XDGDataDir()

	// Open database read-only; compare never creates it.
	db, err := database.Open(dbDir, database.Options{EnableWAL: true})
	if err != nil {
		return fmt.Errorf("failed to open run history (run 'censyscollect collect' first): %w", err)
	}
	defer db.Close() //nolint:errcheck

	ctx := context.Background()

	// Handle --list flag
	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if list {
		return listRunHistory(ctx, db, label)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	oldRun, newRun, err := resolveRunPair(ctx, db, args, label)
	if err != nil {
		return err
	}

	diff, err := db.CompareRuns(ctx, oldRun.ID, newRun.ID)
	if err != nil {
		return fmt.Errorf("failed to compare runs: %w", err)
	}

	result := &runComparison{
		OldRun: *oldRun,
		NewRun: *newRun,
		Diff:   *diff,
	}

	if jsonOutput {
		return outputComparisonJSON(result)
	}
	return outputComparisonText(result)
}

// resolveRunPair determines which two runs to compare. With explicit
// IDs it loads both; without arguments it picks the latest two runs,
// honoring the label filter.
func resolveRunPair(ctx context.Context, db *database.RunDB, args []string, label string) (oldRun, newRun *database.RunSummary, err error) {
	if len(args) == 1 {
		return nil, nil, errors.New("compare takes either two run IDs or none (latest two runs)")
	}

	if len(args) == 2 {
		oldID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid run ID %q: %w", args[0], err)
		}
		newID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid run ID %q: %w", args[1], err)
		}

		oldRun, err = db.GetRun(ctx, oldID)
		if err != nil {
			return nil, nil, err
		}
		if oldRun == nil {
			return nil, nil, fmt.Errorf("run with ID %d not found (use --list to see stored runs)", oldID)
		}
		newRun, err = db.GetRun(ctx, newID)
		if err != nil {
			return nil, nil, err
		}
		if newRun == nil {
			return nil, nil, fmt.Errorf("run with ID %d not found (use --list to see stored runs)", newID)
		}
		return oldRun, newRun, nil
	}

	runs, err := db.ListRuns(ctx, label)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list runs: %w", err)
	}
	if len(runs) < 2 {
		return nil, nil, fmt.Errorf("at least 2 stored runs are required for comparison (found %d)", len(runs))
	}

	// ListRuns returns newest first.
	return &runs[1], &runs[0], nil
}

// listRunHistory lists all stored runs, optionally filtered by label.
func listRunHistory(ctx context.Context, db *database.RunDB, label string) error {
	runs, err := db.ListRuns(ctx, label)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		if label != "" {
			fmt.Printf("No stored runs found for label %q.\n", label)
		} else {
			fmt.Println("No stored runs found.")
		}
		fmt.Println("\nUse 'censyscollect collect' to record a run.")
		return nil
	}

	fmt.Printf("Stored runs (%d):\n\n", len(runs))
	fmt.Printf("  %-6s  %-20s  %-20s  %-6s  %-6s  %-6s  %s\n",
		"ID", "Started", "Label", "Pages", "Hosts", "Rows", "Status")
	fmt.Println("  " + strings.Repeat("-", 90))

	for _, run := range runs {
		fmt.Printf("  %-6d  %-20s  %-20s  %-6d  %-6d  %-6d  %s\n",
			run.ID,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Label,
			run.Pages,
			run.Hosts,
			run.Rows,
			runStatus(run),
		)
	}

	fmt.Println("\nUse 'censyscollect compare <old-id> <new-id>' to compare two runs.")

	return nil
}

// runStatus formats the stored run state for the history listing.
func runStatus(run database.RunSummary) string {
	if run.ErrorNote != "" {
		return "stopped early: " + run.ErrorNote
	}
	return "complete"
}

// runComparison holds the result of comparing two stored runs.
type runComparison struct {
	// OldRun is the older of the two compared runs.
	OldRun database.RunSummary `json:"old_run"`

	// NewRun is the newer of the two compared runs.
	NewRun database.RunSummary `json:"new_run"`

	// Diff holds the added, removed, and unchanged host IPs.
	Diff database.RunDiff `json:"diff"`
}

// outputComparisonJSON outputs the comparison result in JSON format.
func outputComparisonJSON(result *runComparison) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputComparisonText outputs the comparison result in human-readable text format.
func outputComparisonText(result *runComparison) error {
	fmt.Printf("Run Comparison: #%d -> #%d\n", result.OldRun.ID, result.NewRun.ID)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nOld run: #%-4d %s  (%d hosts)\n",
		result.OldRun.ID, formatRunTime(result.OldRun.StartedAt), result.OldRun.Hosts)
	fmt.Printf("New run: #%-4d %s  (%d hosts)\n",
		result.NewRun.ID, formatRunTime(result.NewRun.StartedAt), result.NewRun.Hosts)

	if result.OldRun.Query != result.NewRun.Query {
		fmt.Println("\nNote: the runs used different queries.")
		fmt.Printf("  old: %s\n", result.OldRun.Query)
		fmt.Printf("  new: %s\n", result.NewRun.Query)
	}

	fmt.Printf("\nHost changes: %s\n", result.Diff.String())

	if len(result.Diff.Added) > 0 {
		fmt.Printf("\nNew hosts (%d):\n", len(result.Diff.Added))
		for _, ip := range result.Diff.Added {
			fmt.Printf("  [+] %s\n", ip)
		}
	}

	if len(result.Diff.Removed) > 0 {
		fmt.Printf("\nGone hosts (%d):\n", len(result.Diff.Removed))
		for _, ip := range result.Diff.Removed {
			fmt.Printf("  [-] %s\n", ip)
		}
	}

	if len(result.Diff.Unchanged) > 0 {
		fmt.Printf("\nUnchanged: %d hosts\n", len(result.Diff.Unchanged))
	}

	return nil
}

// formatRunTime formats a run start time for display.
func formatRunTime(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
