package model

import "time"

// CollectionRun accumulates the state of one collection run: the query it
// executed, the documents and rows it produced, and the run counters. It
// is passed through the pipeline steps and persisted to the run-history
// database at the end of a run.
type CollectionRun struct {
	// ID is the database identifier, assigned when the run is saved.
	ID int64 `json:"id,omitempty"`

	// Query is the CenQL search query this run executed.
	Query string `json:"query"`

	// Label is the short name embedded in output file names.
	Label string `json:"label"`

	// Titles is the HTML title allow-list used to select endpoints.
	Titles []string `json:"titles"`

	// StartedAt is when collection began.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the run completed (including early termination).
	FinishedAt time.Time `json:"finished_at,omitempty"`

	// Pages is the number of result pages fetched.
	Pages int `json:"pages"`

	// Hosts is the number of host documents accumulated.
	Hosts int `json:"hosts"`

	// Rows is the number of flattened rows that matched the allow-list.
	Rows int `json:"rows"`

	// JSONLPath and CSVPath are the output artifact paths, set by the
	// export step once the files are written.
	JSONLPath string `json:"jsonl_path,omitempty"`
	CSVPath   string `json:"csv_path,omitempty"`

	// ErrorNote records why collection stopped early, if it did.
	// A non-empty note does not make the run a failure: everything
	// accumulated before the error is still exported.
	ErrorNote string `json:"error_note,omitempty"`

	// Documents are the raw host documents accumulated during collection.
	// They live only for the duration of the run.
	Documents []HostDocument `json:"-"`

	// FlattenedRows are the allow-list-matched rows derived from Documents.
	FlattenedRows []FlattenedRow `json:"-"`
}

// NewCollectionRun creates a run for the given query with the start
// timestamp set to now.
func NewCollectionRun(query, label string, titles []string) *CollectionRun {
	return &CollectionRun{
		Query:     query,
		Label:     label,
		Titles:    titles,
		StartedAt: time.Now(),
	}
}

// AddDocument appends a host document and its derived rows to the run,
// updating the host and row counters.
func (r *CollectionRun) AddDocument(doc HostDocument, rows []FlattenedRow) {
	r.Documents = append(r.Documents, doc)
	r.FlattenedRows = append(r.FlattenedRows, rows...)
	r.Hosts++
	r.Rows += len(rows)
}

// Aborted reports whether collection stopped early because of an error.
func (r *CollectionRun) Aborted() bool {
	return r.ErrorNote != ""
}
