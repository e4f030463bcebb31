package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/moltwatch/censyscollect/internal/model"
)

// WriteCSV writes the flattened rows to path, creating parent
// directories as needed and truncating any existing file. The header
// row is always written, so a run that matched nothing still produces
// a parseable file.
func WriteCSV(path string, rows []model.FlattenedRow) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	w := csv.NewWriter(f)
	if err := w.Write(model.CSVHeader()); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for i := range rows {
		if err := w.Write(rows[i].Values()); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush csv writer: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close csv file: %w", err)
	}
	return nil
}
