package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/common"
)

// FSIngestor reads input documents from the local filesystem.
type FSIngestor struct {
	SkipHidden bool
	logger     *slog.Logger
}

func NewFSIngestor(logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{SkipHidden: true, logger: logger}
}

func (i *FSIngestor) Inspect(ctx context.Context, path string) (Document, error) {
	var out Document
	if err := ctx.Err(); err != nil {
		return out, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		return out, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	f, err := os.Open(abs)
	if err != nil {
		return out, fmt.Errorf("open: %w", err)
	}
	defer func(f *os.File) {
		if err := f.Close(); err != nil {
			i.logger.Warn("close file error", "path", abs, "error", err)
		}
	}(f)

	info, err := f.Stat()
	if err != nil {
		return out, fmt.Errorf("stat: %w", err)
	}

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return out, fmt.Errorf("hash: %w", err)
	}

	return Document{
		Path:    abs,
		Kind:    constants.MapExtToKind(ext),
		FileExt: ext,
		HashHex: hex.EncodeToString(h.Sum(nil)),
		Size:    info.Size(),
		ModTime: info.ModTime().UTC(),
	}, nil
}

// ScanDirectory walks root in lexical order, skips hidden entries when
// configured, and inspects each file with an allowed extension. A file whose
// content hash was already seen in this scan is marked Duplicate. A missing
// root is a configuration error.
func (i *FSIngestor) ScanDirectory(ctx context.Context, root string) ([]Document, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, common.NewAppError(common.CodeConfig, "documents directory is required", common.ErrInvalidInput)
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		if err == nil {
			err = errors.New("not a directory")
		}
		return nil, DirStats{}, common.NewAppError(common.CodeConfig, "documents directory "+root, err)
	}

	var results []Document
	var stats DirStats
	seen := map[string]string{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, Document{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if i.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if !AllowedExt(ext) {
			return nil
		}
		stats.Matched++

		doc, err := i.Inspect(ctx, path)
		if err != nil {
			i.logger.Warn("ingest.file.failed", "path", path, "error", err)
			results = append(results, Document{Path: path, FileExt: ext, Kind: constants.MapExtToKind(ext), Err: err.Error()})
			stats.Failed++
			return nil
		}
		if first, dup := seen[doc.HashHex]; dup {
			doc.Duplicate = true
			stats.Deduplicated++
			i.logger.Info("ingest.file.duplicate", "path", doc.Path, "same_as", first)
		} else {
			seen[doc.HashHex] = doc.Path
		}
		results = append(results, doc)
		stats.Succeeded++
		return nil
	})

	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	i.logger.Info("ingest.scan.done",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"duplicates", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return results, stats, nil
}

// CountByKind tallies usable documents per kind.
func CountByKind(docs []Document) map[constants.FileKind]int {
	out := map[constants.FileKind]int{}
	for _, d := range docs {
		if d.Err == "" && !d.Duplicate {
			out[d.Kind]++
		}
	}
	return out
}
