package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/tupa-scraper/internal/common"
	"github.com/joseph-ayodele/tupa-scraper/internal/enrich"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

var fixedNow = time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sample(t *testing.T) []entity.Procedure {
	t.Helper()
	procs := []entity.Procedure{
		{
			Name:         "Duplicado de DNI",
			Description:  strings.Repeat("Emisión del duplicado del documento nacional de identidad. ", 6),
			EntityCode:   "RENIEC",
			TupaCode:     "RENIEC-001",
			Requirements: []string{"Formulario", "Pago", "Foto"},
			Cost:         32.20,
			Channels:     []string{"Virtual", "Presencial"},
			Keywords:     []string{"dni", "duplicado", "identidad", "documento", "emision", "reniec", "perdida"},
			SourceURL:    "https://www.gob.pe/reniec",
		},
		{
			Name:         "Inscripción al RUC",
			Description:  "Registro de contribuyentes",
			EntityCode:   "SUNAT",
			TupaCode:     "SUNAT-001",
			Requirements: []string{"DNI"},
			SourceURL:    "https://www.sunat.gob.pe",
		},
	}
	for i := range procs {
		require.NoError(t, enrich.Finalize(&procs[i]))
	}
	return procs
}

func TestFullAndFrontendAgree(t *testing.T) {
	procs := sample(t)
	full := BuildFeed(procs, []string{"b.pdf", "a.xlsx"}, fixedNow)
	front := BuildFrontend(procs, fixedNow)

	require.Equal(t, 2, full.Metadata.TotalProcedures)
	require.Equal(t, []string{"a.xlsx", "b.pdf"}, full.Metadata.SourceFiles)
	require.Equal(t, full.Metadata.Entities, front.Metadata.Entities)
	require.Len(t, front.Procedures, len(full.Procedures))

	for i, p := range full.Procedures {
		f := front.Procedures[i]
		require.Equal(t, p.Name, f.Name)
		require.Equal(t, p.Cost, f.Cost)
		require.Equal(t, p.Category, f.Category)
		require.Equal(t, p.IsFree, f.IsFree)
		require.Equal(t, p.TupaCode, f.ID)
		require.Equal(t, len(p.Requirements), f.RequirementsCount)
		require.Equal(t, EntityRef{Name: p.EntityName, Code: p.EntityCode}, f.Entity)
		require.LessOrEqual(t, len(f.Keywords), 5)
	}

	long := front.Procedures[0].Description
	require.True(t, strings.HasSuffix(long, "..."))
	require.Equal(t, 203, enrich.RuneLen(long))
	require.Equal(t, "Registro de contribuyentes", front.Procedures[1].Description)
}

func TestTrimSynthesizesMissingID(t *testing.T) {
	p := sample(t)[1]
	p.TupaCode = ""
	a, b := Trim(&p), Trim(&p)
	require.Equal(t, a.ID, b.ID)
	require.True(t, strings.HasPrefix(a.ID, "SUNAT-"))
}

func TestValidateFeed(t *testing.T) {
	procs := sample(t)
	data, err := marshal(BuildFeed(procs, nil, fixedNow))
	require.NoError(t, err)
	require.NoError(t, ValidateFeed(data))

	empty, err := marshal(BuildFeed(nil, nil, fixedNow))
	require.NoError(t, err)
	require.NoError(t, ValidateFeed(empty))

	procs[0].IsFree = true
	bad, err := marshal(BuildFeed(procs, nil, fixedNow))
	require.NoError(t, err)
	require.Error(t, ValidateFeed(bad))

	procs = sample(t)
	procs[1].Category = ""
	bad, err = marshal(BuildFeed(procs, nil, fixedNow))
	require.NoError(t, err)
	require.Error(t, ValidateFeed(bad))

	var feed map[string]any
	require.NoError(t, json.Unmarshal(empty, &feed))
	feed["metadata"].(map[string]any)["total_procedures"] = 3
	mismatched, err := json.Marshal(feed)
	require.NoError(t, err)
	require.Error(t, ValidateFeed(mismatched))

	require.Error(t, ValidateFeed([]byte("{")))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample(t)))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, Columns, rows[0])
	require.Equal(t, []string{
		"Duplicado de DNI", "RENIEC", "identidad",
		"32.20", "PEN", "No especificado", "false", "true", "easy", "3", "https://www.gob.pe/reniec",
	}, rows[1])
	require.Equal(t, "0.00", rows[2][3])
	require.Equal(t, "true", rows[2][6])
}

func TestServiceWritesAllFormats(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	svc := NewService(common.OutputConfig{Dir: dir}, testLogger())

	bundle := Bundle{
		Procedures:  sample(t),
		SourceFiles: []string{"centros.xlsx"},
		Workbooks:   []entity.WorkbookSummary{{FileName: "centros.xlsx", TotalRows: 2}},
		GeneratedAt: fixedNow,
	}
	formats, err := ParseFormats("all")
	require.NoError(t, err)
	paths, err := svc.Write(context.Background(), bundle, formats...)
	require.NoError(t, err)
	require.Len(t, paths, 5)
	for _, name := range []string{FileFull, FileFrontend, FileCSV, FileXLSX, FileExcelAnalysis} {
		require.FileExists(t, filepath.Join(dir, name))
	}
	require.NoError(t, ValidateFeedFile(filepath.Join(dir, FileFull)))

	wb, err := excelize.OpenFile(filepath.Join(dir, FileXLSX))
	require.NoError(t, err)
	defer func() { _ = wb.Close() }()
	require.Equal(t, []string{sheetProcedures, sheetEntities}, wb.GetSheetList())
	rows, err := wb.GetRows(sheetProcedures)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, "Duplicado de DNI", rows[1][0])
	summary, err := wb.GetRows(sheetEntities)
	require.NoError(t, err)
	require.Equal(t, [][]string{{"Entity", "Procedures"}, {"RENIEC", "1"}, {"SUNAT", "1"}}, summary)

	raw, err := os.ReadFile(filepath.Join(dir, FileFrontend))
	require.NoError(t, err)
	require.Contains(t, string(raw), `"requirements_count": 3`)
	require.Contains(t, string(raw), "Inscripción al RUC")
}

func TestParseFormats(t *testing.T) {
	f, err := ParseFormats("csv, json,csv")
	require.NoError(t, err)
	require.Equal(t, []Format{FormatCSV, FormatJSON}, f)

	f, err = ParseFormats("")
	require.NoError(t, err)
	require.Len(t, f, 3)

	_, err = ParseFormats("pdf")
	require.Error(t, err)
}

func TestWriteReport(t *testing.T) {
	procs := sample(t)
	r := entity.RunReport{
		RunID:      "run-1",
		StartedAt:  fixedNow,
		FinishedAt: fixedNow.Add(3 * time.Second),
		State:      "done",
		Phases: []entity.PhaseYield{
			{Phase: "scraping_basic", Sources: 3, Records: 2, ZeroYield: []string{"https://www.gob.pe/vacio"}},
		},
		Aggregates: entity.Aggregates{
			Total:        2,
			ByEntity:     map[string]int{"RENIEC": 1, "SUNAT": 1},
			ByCategory:   map[string]int{"identidad": 1, "tributario": 1},
			ByDifficulty: map[string]int{"easy": 2},
			Free:         1,
			Online:       1,
			Costliest:    procs,
		},
		Save: &entity.SaveStats{Total: 2, Saved: 2},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, r))
	out := buf.String()
	require.Contains(t, out, "Duration: 3.00 seconds")
	require.Contains(t, out, "- Saved: 2, skipped: 0, errors: 0")
	require.Contains(t, out, "- Free: 1 (50.0%)")
	require.Contains(t, out, "1. Duplicado de DNI - S/32.20")
	require.Contains(t, out, "scraping_basic: https://www.gob.pe/vacio")
	require.Contains(t, out, "tributario")
}
