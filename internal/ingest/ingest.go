package ingest

import (
	"context"
	"time"

	"github.com/joseph-ayodele/tupa-scraper/constants"
)

// Document is one input file found under the documents directory.
type Document struct {
	Path      string
	Kind      constants.FileKind
	FileExt   string
	HashHex   string
	Size      int64
	ModTime   time.Time
	Duplicate bool // same content as an earlier document in the scan
	Err       string
}

// DirStats summarizes a directory scan.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Scanner is the behavior the orchestrator depends on.
type Scanner interface {
	// Inspect hashes and classifies a single path.
	Inspect(ctx context.Context, path string) (Document, error)
	// ScanDirectory inspects all matching files under root.
	ScanDirectory(ctx context.Context, root string) ([]Document, DirStats, error)
}

// Paths returns the paths of usable documents of the given kind, in scan order.
// Failed and duplicate documents are left out.
func Paths(docs []Document, kind constants.FileKind) []string {
	var out []string
	for _, d := range docs {
		if d.Kind == kind && d.Err == "" && !d.Duplicate {
			out = append(out, d.Path)
		}
	}
	return out
}
