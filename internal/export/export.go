package export

import (
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/moltwatch/censyscollect/internal/model"
)

// WriteRun writes both artifacts for the run under outDir and records
// the resulting paths on the run. The two files are independent, so
// they are written concurrently; the first write error is returned and
// the other file may still have been produced.
func WriteRun(run *model.CollectionRun, outDir string, now time.Time) error {
	run.JSONLPath = JSONLPath(outDir, run.Label, now)
	run.CSVPath = CSVPath(outDir, run.Label, now)

	var eg errgroup.Group
	eg.Go(func() error {
		return WriteJSONL(run.JSONLPath, run.Documents)
	})
	eg.Go(func() error {
		return WriteCSV(run.CSVPath, run.FlattenedRows)
	})
	return eg.Wait()
}
