package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/moltwatch/censyscollect/internal/model"
)

// WriteJSONL writes one host document per line to path, creating parent
// directories as needed and truncating any existing file. Documents
// that retained their raw API form are written verbatim (compacted to a
// single line); documents without a raw form are re-encoded from the
// decoded fields.
func WriteJSONL(path string, docs []model.HostDocument) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create jsonl file: %w", err)
	}
	defer f.Close() //nolint:errcheck

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)

	var buf bytes.Buffer
	for i := range docs {
		if raw := docs[i].Raw; len(raw) != 0 {
			buf.Reset()
			if err := json.Compact(&buf, raw); err != nil {
				return fmt.Errorf("failed to compact host document: %w", err)
			}
			buf.WriteByte('\n')
			if _, err := f.Write(buf.Bytes()); err != nil {
				return fmt.Errorf("failed to write jsonl line: %w", err)
			}
			continue
		}
		if err := enc.Encode(&docs[i]); err != nil {
			return fmt.Errorf("failed to encode host document: %w", err)
		}
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close jsonl file: %w", err)
	}
	return nil
}
