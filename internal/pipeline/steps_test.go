package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/moltwatch/censyscollect/internal/censys"
	"github.com/moltwatch/censyscollect/internal/collector"
	"github.com/moltwatch/censyscollect/internal/config"
	"github.com/moltwatch/censyscollect/internal/database"
	"github.com/moltwatch/censyscollect/internal/model"
)

// fakeSearchClient returns scripted pages in order.
type fakeSearchClient struct {
	pages []*censys.SearchPage
	calls int
}

func (f *fakeSearchClient) SearchPage(_ context.Context, _ censys.SearchRequest) (*censys.SearchPage, error) {
	if f.calls >= len(f.pages) {
		return &censys.SearchPage{}, nil
	}
	page := f.pages[f.calls]
	f.calls++
	return page, nil
}

func decodeDoc(t *testing.T, raw string) model.HostDocument {
	t.Helper()
	var doc model.HostDocument
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("failed to decode test document: %v", err)
	}
	return doc
}

// TestCollectStep tests collection and flattening.
func TestCollectStep(t *testing.T) {
	t.Parallel()

	t.Run("populates the run from fetched pages", func(t *testing.T) {
		t.Parallel()

		client := &fakeSearchClient{
			pages: []*censys.SearchPage{
				{
					Hits: []model.HostDocument{
						decodeDoc(t, `{
							"ip": "1.2.3.4",
							"services": [{"port": 8080, "endpoints": [{"http": {"html_title": "Moltbot Control"}}]}]
						}`),
						decodeDoc(t, `{"ip": "5.6.7.8"}`),
					},
				},
			},
		}

		step := NewCollectStep(collector.New(client))
		run := model.NewCollectionRun("q", "lab", []string{"Moltbot Control"})

		if err := step.Do(context.Background(), run); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if run.Pages != 1 {
			t.Errorf("got %d pages, expected 1", run.Pages)
		}
		if run.Hosts != 2 {
			t.Errorf("got %d hosts, expected 2", run.Hosts)
		}
		if run.Rows != 1 {
			t.Errorf("got %d rows, expected 1", run.Rows)
		}
		if run.FinishedAt.IsZero() {
			t.Error("expected finished timestamp set")
		}
	})

	t.Run("name", func(t *testing.T) {
		t.Parallel()
		if got := NewCollectStep(nil).Name(); got != "collect" {
			t.Errorf("unexpected name: %s", got)
		}
	})
}

// TestExportStep tests artifact writing.
func TestExportStep(t *testing.T) {
	t.Parallel()

	outDir := t.TempDir()
	fixed := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	step := NewExportStep(outDir, WithExportClock(func() time.Time { return fixed }))

	run := model.NewCollectionRun("q", "lab", []string{"Moltbot Control"})
	run.AddDocument(decodeDoc(t, `{"ip":"1.2.3.4"}`), nil)

	if err := step.Do(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, path := range []string{run.JSONLPath, run.CSVPath} {
		if path == "" {
			t.Fatal("expected artifact path recorded")
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to exist: %v", path, err)
		}
	}
}

// TestPersistStep tests run persistence.
func TestPersistStep(t *testing.T) {
	t.Parallel()

	db, err := database.Open(t.TempDir(), database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	step := NewPersistStep(db)
	run := model.NewCollectionRun("q", "lab", nil)
	run.AddDocument(decodeDoc(t, `{"ip":"1.2.3.4"}`), nil)

	if err := step.Do(context.Background(), run); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.ID == 0 {
		t.Error("expected run id assigned after persist")
	}
}

// TestDefaultPipeline tests standard step wiring.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("with database", func(t *testing.T) {
		t.Parallel()

		db, err := database.Open(t.TempDir(), database.DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close() //nolint:errcheck

		cfg := config.NewConfig()
		p := DefaultPipeline(collector.New(&fakeSearchClient{}), db, cfg)

		names := p.StepNames()
		if len(names) != 3 || names[0] != "collect" || names[1] != "export" || names[2] != "persist" {
			t.Errorf("unexpected steps: %v", names)
		}
	})

	t.Run("without database", func(t *testing.T) {
		t.Parallel()

		cfg := config.NewConfig()
		p := DefaultPipeline(collector.New(&fakeSearchClient{}), nil, cfg)

		names := p.StepNames()
		if len(names) != 2 || names[1] != "export" {
			t.Errorf("unexpected steps: %v", names)
		}
	})
}
