package database

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/moltwatch/censyscollect/internal/model"
)

func testRun(t *testing.T, label string, ips ...string) *model.CollectionRun {
	t.Helper()
	run := model.NewCollectionRun("services.port: 8080", label, []string{"Moltbot Control"})
	run.Pages = 1
	for _, ip := range ips {
		var doc model.HostDocument
		if err := json.Unmarshal([]byte(`{"ip":"`+ip+`"}`), &doc); err != nil {
			t.Fatalf("failed to build test document: %v", err)
		}
		run.AddDocument(doc, nil)
	}
	return run
}

// TestOpen tests database creation and open modes.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database and directory", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir() + "/nested"
		db, err := Open(dir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		if err := db.Close(); err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	t.Run("refuses to create when CreateIfNotExists is false", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false, EnableWAL: true}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Error("expected error for missing database")
		}
	})
}

// TestSaveRun tests run persistence and retrieval.
func TestSaveRun(t *testing.T) {
	t.Parallel()

	t.Run("save assigns an id and stores counters", func(t *testing.T) {
		t.Parallel()

		db, err := Open(t.TempDir(), DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close() //nolint:errcheck

		ctx := context.Background()
		run := testRun(t, "moltbot_clawdbot", "1.2.3.4", "5.6.7.8")
		run.JSONLPath = "out/hosts.jsonl"
		run.CSVPath = "out/rows.csv"
		run.ErrorNote = "stopped after 1 pages: rate limited"

		if err := db.SaveRun(ctx, run); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
		if run.ID == 0 {
			t.Fatal("expected run id assigned")
		}

		got, err := db.GetRun(ctx, run.ID)
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got == nil {
			t.Fatal("expected run found")
		}
		if got.Query != run.Query || got.Label != "moltbot_clawdbot" {
			t.Errorf("unexpected stored run: %+v", got)
		}
		if got.Hosts != 2 || got.Pages != 1 {
			t.Errorf("unexpected counters: hosts=%d pages=%d", got.Hosts, got.Pages)
		}
		if got.JSONLPath != "out/hosts.jsonl" || got.CSVPath != "out/rows.csv" {
			t.Errorf("unexpected artifact paths: %+v", got)
		}
		if got.ErrorNote == "" {
			t.Error("expected error note stored")
		}
		if got.StartedAt.IsZero() {
			t.Error("expected started_at parsed")
		}
	})

	t.Run("duplicate ips are stored once", func(t *testing.T) {
		t.Parallel()

		db, err := Open(t.TempDir(), DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close() //nolint:errcheck

		ctx := context.Background()
		run := testRun(t, "lab", "1.2.3.4", "1.2.3.4", "5.6.7.8")
		if err := db.SaveRun(ctx, run); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}

		ips, err := db.GetRunIPs(ctx, run.ID)
		if err != nil {
			t.Fatalf("failed to get run ips: %v", err)
		}
		if len(ips) != 2 {
			t.Fatalf("got %d ips, expected 2", len(ips))
		}
		if ips[0] != "1.2.3.4" || ips[1] != "5.6.7.8" {
			t.Errorf("unexpected ips: %v", ips)
		}
	})

	t.Run("missing run returns nil without error", func(t *testing.T) {
		t.Parallel()

		db, err := Open(t.TempDir(), DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close() //nolint:errcheck

		got, err := db.GetRun(context.Background(), 12345)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != nil {
			t.Errorf("expected nil run, got %+v", got)
		}
	})
}

// TestListRuns tests run history queries.
func TestListRuns(t *testing.T) {
	t.Parallel()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx := context.Background()
	for _, label := range []string{"alpha", "beta", "alpha"} {
		if err := db.SaveRun(ctx, testRun(t, label, "1.1.1.1")); err != nil {
			t.Fatalf("failed to save run: %v", err)
		}
	}

	t.Run("all runs newest first", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, "")
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 3 {
			t.Fatalf("got %d runs, expected 3", len(runs))
		}
		if runs[0].ID < runs[1].ID || runs[1].ID < runs[2].ID {
			t.Errorf("expected newest first, got ids %d %d %d", runs[0].ID, runs[1].ID, runs[2].ID)
		}
	})

	t.Run("label filter", func(t *testing.T) {
		runs, err := db.ListRuns(ctx, "alpha")
		if err != nil {
			t.Fatalf("failed to list runs: %v", err)
		}
		if len(runs) != 2 {
			t.Fatalf("got %d runs, expected 2", len(runs))
		}
		for _, r := range runs {
			if r.Label != "alpha" {
				t.Errorf("unexpected label %s", r.Label)
			}
		}
	})
}

// TestCompareRuns tests run-to-run host diffs.
func TestCompareRuns(t *testing.T) {
	t.Parallel()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx := context.Background()
	older := testRun(t, "lab", "1.1.1.1", "2.2.2.2", "3.3.3.3")
	newer := testRun(t, "lab", "2.2.2.2", "3.3.3.3", "4.4.4.4")
	if err := db.SaveRun(ctx, older); err != nil {
		t.Fatalf("failed to save older run: %v", err)
	}
	if err := db.SaveRun(ctx, newer); err != nil {
		t.Fatalf("failed to save newer run: %v", err)
	}

	diff, err := db.CompareRuns(ctx, older.ID, newer.ID)
	if err != nil {
		t.Fatalf("failed to compare runs: %v", err)
	}
	if len(diff.Added) != 1 || diff.Added[0] != "4.4.4.4" {
		t.Errorf("unexpected added hosts: %v", diff.Added)
	}
	if len(diff.Removed) != 1 || diff.Removed[0] != "1.1.1.1" {
		t.Errorf("unexpected removed hosts: %v", diff.Removed)
	}
	if len(diff.Unchanged) != 2 {
		t.Errorf("unexpected unchanged hosts: %v", diff.Unchanged)
	}
	if diff.String() != "+1 -1 =2" {
		t.Errorf("unexpected diff string: %s", diff.String())
	}
}

// TestParseTimestamp tests the SQLite timestamp fallback parser.
func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"2026-08-26 12:30:00",
		"2026-08-26T12:30:00Z",
		time.Now().UTC().Format(time.RFC3339),
	}
	for _, input := range inputs {
		if parseTimestamp(input).IsZero() {
			t.Errorf("failed to parse %q", input)
		}
	}
	if !parseTimestamp("not a timestamp").IsZero() {
		t.Error("expected zero time for garbage input")
	}
}
