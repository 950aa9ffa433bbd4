package ingest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/common"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "TUPA_integral.pdf"), "%PDF-1.4 uno")
	writeFile(t, filepath.Join(root, "copias", "TUPA_integral_copia.PDF"), "%PDF-1.4 uno")
	writeFile(t, filepath.Join(root, "centros.xlsx"), "xlsx bytes")
	writeFile(t, filepath.Join(root, "urls.txt"), "https://www.gob.pe/tramites\n")
	writeFile(t, filepath.Join(root, "notas.docx"), "ignored")
	writeFile(t, filepath.Join(root, ".cache", "oculto.pdf"), "%PDF hidden")

	ing := NewFSIngestor(slog.New(slog.NewTextHandler(io.Discard, nil)))
	docs, stats, err := ing.ScanDirectory(context.Background(), root)
	require.NoError(t, err)

	require.Equal(t, uint32(4), stats.Matched)
	require.Equal(t, uint32(4), stats.Succeeded)
	require.Equal(t, uint32(1), stats.Deduplicated)
	require.Zero(t, stats.Failed)

	pdfs := Paths(docs, constants.KindPDF)
	require.Len(t, pdfs, 1)
	require.Equal(t, "TUPA_integral.pdf", filepath.Base(pdfs[0]))
	require.Len(t, Paths(docs, constants.KindSpreadsheet), 1)
	require.Len(t, Paths(docs, constants.KindURLList), 1)

	counts := CountByKind(docs)
	require.Equal(t, 1, counts[constants.KindPDF])
	for _, d := range docs {
		require.Len(t, d.HashHex, 64)
	}
}

func TestScanDirectoryMissingRoot(t *testing.T) {
	ing := NewFSIngestor(nil)
	_, _, err := ing.ScanDirectory(context.Background(), filepath.Join(t.TempDir(), "no-existe"))
	require.Error(t, err)
	require.True(t, common.IsConfigError(err))
}

func TestInspectRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "imagen.png")
	writeFile(t, path, "png")
	_, err := NewFSIngestor(nil).Inspect(context.Background(), path)
	require.Error(t, err)
}
