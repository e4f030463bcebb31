package model

import (
	"testing"
)

// TestCSVHeader tests the fixed column schema.
func TestCSVHeader(t *testing.T) {
	t.Parallel()

	header := CSVHeader()
	if len(header) != 20 {
		t.Fatalf("got %d columns, expected 20", len(header))
	}
	if header[0] != "ip" {
		t.Errorf("got first column %q, expected ip", header[0])
	}
	if header[len(header)-1] != "http_html_title" {
		t.Errorf("got last column %q, expected http_html_title", header[len(header)-1])
	}
}

// TestFlattenedRowValues tests CSV cell rendering.
func TestFlattenedRowValues(t *testing.T) {
	t.Parallel()

	t.Run("empty row renders empty cells", func(t *testing.T) {
		t.Parallel()

		var row FlattenedRow
		values := row.Values()
		if len(values) != len(CSVHeader()) {
			t.Fatalf("got %d values, expected %d", len(values), len(CSVHeader()))
		}
		for i, v := range values {
			if v != "" {
				t.Errorf("column %d: got %q, expected empty cell", i, v)
			}
		}
	})

	t.Run("populated row renders in header order", func(t *testing.T) {
		t.Parallel()

		ip := "1.2.3.4"
		lat := 35.6895
		port := 8080
		status := 200
		title := "Moltbot Control"

		row := FlattenedRow{
			IP:             &ip,
			Latitude:       &lat,
			Port:           &port,
			HTTPStatusCode: &status,
			HTTPHTMLTitle:  &title,
		}

		values := row.Values()
		if values[0] != "1.2.3.4" {
			t.Errorf("got ip cell %q", values[0])
		}
		if values[5] != "35.6895" {
			t.Errorf("got latitude cell %q, expected 35.6895", values[5])
		}
		if values[9] != "8080" {
			t.Errorf("got port cell %q, expected 8080", values[9])
		}
		if values[18] != "200" {
			t.Errorf("got status cell %q, expected 200", values[18])
		}
		if values[19] != "Moltbot Control" {
			t.Errorf("got title cell %q", values[19])
		}
	})
}

// TestCollectionRunAddDocument tests counter accumulation.
func TestCollectionRunAddDocument(t *testing.T) {
	t.Parallel()

	run := NewCollectionRun("test query", "label", []string{"Moltbot Control"})
	if run.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}

	ip := "1.2.3.4"
	run.AddDocument(HostDocument{IP: &ip}, []FlattenedRow{{IP: &ip}, {IP: &ip}})
	run.AddDocument(HostDocument{}, nil)

	if run.Hosts != 2 {
		t.Errorf("got %d hosts, expected 2", run.Hosts)
	}
	if run.Rows != 2 {
		t.Errorf("got %d rows, expected 2", run.Rows)
	}
	if len(run.Documents) != 2 {
		t.Errorf("got %d documents, expected 2", len(run.Documents))
	}
	if run.Aborted() {
		t.Error("expected run without error note to not be aborted")
	}

	run.ErrorNote = "rate limited"
	if !run.Aborted() {
		t.Error("expected run with error note to be aborted")
	}
}
