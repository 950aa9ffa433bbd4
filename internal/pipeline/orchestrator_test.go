package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
	"github.com/joseph-ayodele/tupa-scraper/internal/export"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func named(names ...string) []entity.Procedure {
	out := make([]entity.Procedure, 0, len(names))
	for _, n := range names {
		out = append(out, entity.Procedure{Name: n, EntityCode: "GOB", Category: "general"})
	}
	return out
}

func names(procs []entity.Procedure) []string {
	out := make([]string, 0, len(procs))
	for _, p := range procs {
		out = append(out, p.Name)
	}
	return out
}

type fakePages struct {
	links     map[string][]string
	records   map[string]string
	failing   map[string]bool
	onExtract func(url string)
	extracted []string
	maxSeen   []int
}

func (f *fakePages) Extract(ctx context.Context, rawURL string) (*entity.Procedure, bool, error) {
	f.extracted = append(f.extracted, rawURL)
	if f.onExtract != nil {
		f.onExtract(rawURL)
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if f.failing[rawURL] {
		return nil, false, errors.New("status 500")
	}
	name, ok := f.records[rawURL]
	if !ok {
		return nil, false, nil
	}
	p := named(name)[0]
	p.SourceURL = rawURL
	return &p, true, nil
}

func (f *fakePages) DiscoverLinks(_ context.Context, seedURL string, max int) ([]string, error) {
	f.maxSeen = append(f.maxSeen, max)
	links := f.links[seedURL]
	if max > 0 && len(links) > max {
		links = links[:max]
	}
	return links, nil
}

type fakeDocuments map[string][]entity.Procedure

func (f fakeDocuments) ExtractFile(_ context.Context, path string) ([]entity.Procedure, error) {
	procs, ok := f[filepath.Base(path)]
	if !ok {
		return nil, errors.New("unreadable")
	}
	return procs, nil
}

type fakeWorkbooks map[string][]entity.Procedure

func (f fakeWorkbooks) ExtractFile(_ context.Context, path string) (*entity.WorkbookSummary, []entity.Procedure, error) {
	name := filepath.Base(path)
	return &entity.WorkbookSummary{FileName: name, TotalRows: 3}, f[name], nil
}

type fakeStore struct {
	got []entity.Procedure
}

func (s *fakeStore) SaveBatch(_ context.Context, procs []entity.Procedure) (entity.SaveStats, error) {
	s.got = append(s.got, procs...)
	return entity.SaveStats{Total: len(procs), Saved: len(procs)}, nil
}

type fakeExporter struct {
	bundle  *export.Bundle
	reports []entity.RunReport
}

func (e *fakeExporter) Write(_ context.Context, b export.Bundle, _ ...export.Format) ([]string, error) {
	e.bundle = &b
	return []string{"out/" + export.FileFull}, nil
}

func (e *fakeExporter) WriteReport(r entity.RunReport) (string, error) {
	e.reports = append(e.reports, r)
	return "out/report.txt", nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func opener(s Store, released *bool) StoreOpener {
	return func(context.Context) (Store, func(), error) {
		return s, func() { *released = true }, nil
	}
}

func TestRunAllPhases(t *testing.T) {
	dir := t.TempDir()
	docs := filepath.Join(dir, "documentos")
	writeFile(t, filepath.Join(docs, "TUPA_integral.pdf"), "%PDF-1.4 a")
	writeFile(t, filepath.Join(docs, "centros.xlsx"), "xlsx")
	writeFile(t, filepath.Join(docs, "zz_roto.pdf"), "%PDF-1.4 b")
	urlFile := filepath.Join(dir, "urls.txt")
	writeFile(t, urlFile, "# lista\nhttps://www.gob.pe/especial\n")

	pages := &fakePages{
		links: map[string][]string{"https://www.gob.pe/seed": {"https://www.gob.pe/a", "https://www.gob.pe/vacio", "https://www.gob.pe/roto"}},
		records: map[string]string{
			"https://www.gob.pe/a":        "Tramite A",
			"https://www.gob.pe/especial": "Tramite especial",
		},
		failing: map[string]bool{"https://www.gob.pe/roto": true},
	}
	store := &fakeStore{}
	released := false
	exp := &fakeExporter{}
	var status strings.Builder

	o := NewOrchestrator(Sources{
		Catalog:   func() ([]entity.Procedure, error) { return named("Catalogo"), nil },
		Pages:     pages,
		Documents: fakeDocuments{"TUPA_integral.pdf": named("Pdf 1", "Pdf 2")},
		Workbooks: fakeWorkbooks{"centros.xlsx": named("Hoja")},
	}, opener(store, &released), exp, &status, testLogger())

	report, err := o.Run(context.Background(), Options{
		SaveDB:       true,
		Export:       true,
		MaxLinks:     10,
		SeedURLs:     []string{"https://www.gob.pe/seed"},
		URLFile:      urlFile,
		DocumentsDir: docs,
		Workers:      2,
	})
	require.NoError(t, err)
	require.Equal(t, "done", report.State)
	require.Equal(t, []string{
		"idle", "scraping_basic", "scraping_specialized", "scraping_pdf",
		"merging", "persisting", "exporting", "reporting", "done",
	}, report.Path)

	require.Len(t, report.Phases, 4)
	basic := report.Phases[0]
	require.Equal(t, YieldBasic, basic.Phase)
	require.Equal(t, 2, basic.Records)
	require.Equal(t, 4, basic.Sources)
	require.Equal(t, []string{"https://www.gob.pe/vacio"}, basic.ZeroYield)
	require.Equal(t, []string{"https://www.gob.pe/roto"}, basic.Failed)
	require.Equal(t, 1, report.Phases[1].Records)
	require.Equal(t, 2, report.Phases[2].Records)
	require.Equal(t, 2, report.Phases[2].Sources)
	require.Equal(t, []string{"zz_roto.pdf"}, report.Phases[2].Failed)
	require.Equal(t, 1, report.Phases[3].Records)

	want := []string{"Catalogo", "Tramite A", "Tramite especial", "Pdf 1", "Pdf 2", "Hoja"}
	require.Equal(t, want, names(store.got))
	require.True(t, released)
	require.Equal(t, 6, report.Save.Saved)
	require.Equal(t, 6, report.Aggregates.Total)

	require.NotNil(t, exp.bundle)
	require.Equal(t, want, names(exp.bundle.Procedures))
	require.ElementsMatch(t, []string{"TUPA_integral.pdf", "centros.xlsx"}, exp.bundle.SourceFiles)
	require.Len(t, exp.bundle.Workbooks, 1)
	require.Len(t, exp.reports, 1)
	require.Equal(t, "done", exp.reports[0].State)
	require.Contains(t, status.String(), "[merging] 6 procedures")
}

func TestRunPersistFailureStillExports(t *testing.T) {
	exp := &fakeExporter{}
	o := NewOrchestrator(Sources{
		Catalog: func() ([]entity.Procedure, error) { return named("Catalogo"), nil },
	}, func(context.Context) (Store, func(), error) {
		return nil, nil, errors.New("connection refused")
	}, exp, nil, testLogger())

	report, err := o.Run(context.Background(), Options{SaveDB: true, Export: true})
	require.Error(t, err)
	require.Equal(t, "failed", report.State)
	require.Equal(t, []string{
		"idle", "scraping_basic", "scraping_specialized", "scraping_pdf",
		"merging", "persisting", "failed", "exporting", "reporting", "failed",
	}, report.Path)
	require.Nil(t, report.Save)
	require.NotNil(t, exp.bundle)
	require.Len(t, exp.bundle.Procedures, 1)
	require.Len(t, exp.reports, 1)
	require.Equal(t, "failed", exp.reports[0].State)
	require.NotEmpty(t, report.Errors)
}

func TestRunWithoutOpenerFailsPersistence(t *testing.T) {
	o := NewOrchestrator(Sources{}, nil, nil, nil, testLogger())
	report, err := o.Run(context.Background(), Options{SaveDB: true})
	require.Error(t, err)
	require.Equal(t, "failed", report.State)
}

func TestRunInterruptedKeepsPartialResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pages := &fakePages{
		links:   map[string][]string{"https://www.gob.pe/seed": {"https://www.gob.pe/a", "https://www.gob.pe/b"}},
		records: map[string]string{"https://www.gob.pe/a": "A", "https://www.gob.pe/b": "B"},
	}
	pages.onExtract = func(url string) {
		if url == "https://www.gob.pe/b" {
			cancel()
		}
	}
	store := &fakeStore{}
	released := false
	exp := &fakeExporter{}
	o := NewOrchestrator(Sources{Pages: pages}, opener(store, &released), exp, nil, testLogger())

	report, err := o.Run(ctx, Options{
		SaveDB:   true,
		Export:   true,
		MaxLinks: 10,
		SeedURLs: []string{"https://www.gob.pe/seed"},
	})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, "failed", report.State)
	require.False(t, released)
	require.Empty(t, store.got)
	require.Equal(t, []string{"A"}, names(exp.bundle.Procedures))
	require.NotContains(t, report.Path, "persisting")
	require.Len(t, exp.reports, 1)
}

func TestSpecializedFallsBackToDefaultList(t *testing.T) {
	pages := &fakePages{}
	o := NewOrchestrator(Sources{Pages: pages}, nil, nil, nil, testLogger())

	report, err := o.Run(context.Background(), Options{URLFile: filepath.Join(t.TempDir(), "missing.txt")})
	require.NoError(t, err)
	require.Equal(t, FallbackURLs, pages.extracted)
	require.Equal(t, FallbackURLs, report.Phases[1].ZeroYield)
}

func TestURLListsInDocumentsDirAreUsed(t *testing.T) {
	docs := t.TempDir()
	writeFile(t, filepath.Join(docs, "extra_urls.txt"), "https://www.gob.pe/uno\nhttps://www.gob.pe/dos\nhttps://www.gob.pe/uno\n")
	pages := &fakePages{records: map[string]string{"https://www.gob.pe/dos": "Dos"}}
	o := NewOrchestrator(Sources{Pages: pages}, nil, nil, nil, testLogger())

	report, err := o.Run(context.Background(), Options{DocumentsDir: docs})
	require.NoError(t, err)
	require.Equal(t, []string{"https://www.gob.pe/uno", "https://www.gob.pe/dos"}, pages.extracted)
	require.Equal(t, 1, report.Phases[1].Records)
}

func TestLimitCapsLinksAndLists(t *testing.T) {
	dir := t.TempDir()
	urlFile := filepath.Join(dir, "urls.txt")
	writeFile(t, urlFile, "https://x.gob.pe/1\nhttps://x.gob.pe/2\nhttps://x.gob.pe/3\n")
	pages := &fakePages{links: map[string][]string{
		"s1": {"https://www.gob.pe/a", "https://www.gob.pe/b"},
		"s2": {"https://www.gob.pe/c"},
	}}
	o := NewOrchestrator(Sources{Pages: pages}, nil, nil, nil, testLogger())

	report, err := o.Run(context.Background(), Options{
		Limit:    2,
		MaxLinks: 50,
		SeedURLs: []string{"s1", "s2"},
		URLFile:  urlFile,
	})
	require.NoError(t, err)
	require.Equal(t, []int{2}, pages.maxSeen)
	require.Equal(t, 2, report.Phases[0].Sources)
	require.Equal(t, 2, report.Phases[1].Sources)
}

func TestMissingDocumentsDirIsNotFatal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no-existe")
	o := NewOrchestrator(Sources{Documents: fakeDocuments{}}, nil, nil, nil, testLogger())

	report, err := o.Run(context.Background(), Options{DocumentsDir: missing})
	require.NoError(t, err)
	require.Equal(t, "done", report.State)
	require.Equal(t, []string{missing}, report.Phases[2].Failed)
	require.Zero(t, report.Phases[2].Records)
}

func TestMerge(t *testing.T) {
	out := Merge(named("a", "b"), nil, named("a"), named("c"))
	require.Equal(t, []string{"a", "b", "a", "c"}, names(out))
	require.Empty(t, Merge())
}
