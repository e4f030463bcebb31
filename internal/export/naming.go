package export

import (
	"fmt"
	"path/filepath"
	"time"
)

const fileNamePrefix = "censys_hosts_jp"

// jst is Japan Standard Time. The zone has no daylight saving, so a
// fixed offset is equivalent to loading Asia/Tokyo and works even on
// systems without a tzdata database.
var jst = time.FixedZone("JST", 9*60*60)

// JSONLPath returns the JSONL output path for the given label and time.
func JSONLPath(outDir, label string, now time.Time) string {
	return artifactPath(outDir, label, now, "jsonl")
}

// CSVPath returns the CSV output path for the given label and time.
func CSVPath(outDir, label string, now time.Time) string {
	return artifactPath(outDir, label, now, "csv")
}

func artifactPath(outDir, label string, now time.Time, ext string) string {
	date := now.In(jst).Format("2006-01-02")
	name := fmt.Sprintf("%s_%s_%s.%s", fileNamePrefix, label, date, ext)
	return filepath.Join(outDir, name)
}
