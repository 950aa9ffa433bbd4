package spreadsheet

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/common"
)

func writeWorkbook(t *testing.T, name string, sheets map[string][][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	first := true
	for sheet, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", sheet))
			first = false
		} else {
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			r := row
			require.NoError(t, f.SetSheetRow(sheet, cell, &r))
		}
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func newTestExtractor() *Extractor {
	return NewExtractor(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestExtractCentrosWorkbook(t *testing.T) {
	path := writeWorkbook(t, "centros_atencion_reniec.xlsx", map[string][][]any{
		"Centros": {
			{"Centro", "Dirección", "Teléfono", "Correo", "Horario"},
			{"Agencia Miraflores", "Av. Larco 1234 Miraflores", "014-123-4567", "miraflores@reniec.gob.pe", "Lunes a viernes 8:30"},
			{"Agencia Arequipa", "Calle Mercaderes 215 Cercado", "054-765-4321", "arequipa@reniec.gob.pe", "Sábado 9:00"},
		},
	})

	ws, procs, err := newTestExtractor().ExtractFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, DocTypeCentros, ws.DocumentType)
	require.Equal(t, []string{"RENIEC"}, ws.EntitiesMentioned)
	require.Equal(t, 2, ws.TotalRows)
	require.Len(t, ws.Sheets, 1)
	require.Equal(t, 5, ws.Sheets[0].Columns)
	require.Contains(t, ws.ContactInfo, "014-123-4567")
	require.Contains(t, ws.ContactInfo, "miraflores@reniec.gob.pe")
	require.NotEmpty(t, ws.LocationsFound)

	require.Len(t, procs, 1)
	p := procs[0]
	require.Equal(t, "RENIEC-CENTROS-001", p.TupaCode)
	require.Equal(t, "RENIEC", p.EntityCode)
	require.Contains(t, p.Description, "2 centros")
	require.True(t, p.IsFree)
	require.True(t, p.IsOnline)
	require.True(t, strings.HasPrefix(p.SourceURL, "file:///"))
}

func TestExtractGenericWorkbook(t *testing.T) {
	path := writeWorkbook(t, "tarifario.xlsx", map[string][][]any{
		"Servicios": {
			{"Servicio", "Costo"},
			{"Solicitud de duplicado de documento nacional", 32.20},
		},
	})

	ws, procs, err := newTestExtractor().ExtractFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, DocTypeExcel, ws.DocumentType)
	require.NotEmpty(t, ws.ProceduresFound)

	require.Len(t, procs, 1)
	require.True(t, strings.HasPrefix(procs[0].TupaCode, "GOB-EXCEL-"))
	require.Equal(t, constants.GenericEntity, procs[0].EntityCode)
	require.Equal(t, string(constants.Consulta), procs[0].Category)

	_, again, err := newTestExtractor().ExtractFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, procs[0].TupaCode, again[0].TupaCode)
}

func TestEmptyWorkbookHasNoRows(t *testing.T) {
	path := writeWorkbook(t, "vacio.xlsx", map[string][][]any{"Hoja": nil})

	ws, procs, err := newTestExtractor().ExtractFile(context.Background(), path)
	require.NoError(t, err)
	require.Equal(t, 0, ws.TotalRows)
	require.Empty(t, procs)

	none := Summarize("sin_hojas.xlsx", nil, 0)
	require.Equal(t, 0, none.TotalRows)
	require.Empty(t, none.Sheets)
	require.Empty(t, Promote(none))
}

func TestExtractFileUnreadableWorkbook(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "no_existe.xlsx")
	ws, procs, err := newTestExtractor().ExtractFile(context.Background(), missing)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodeSheet, appErr.Code)
	require.Nil(t, ws)
	require.Empty(t, procs)

	good := writeWorkbook(t, "tarifario.xlsx", map[string][][]any{
		"Servicios": {{"Servicio"}, {"Solicitud de duplicado de documento nacional"}},
	})
	_, procs, err = newTestExtractor().ExtractFile(context.Background(), good)
	require.NoError(t, err)
	require.Len(t, procs, 1)
}

func TestSheetTextSamplesRows(t *testing.T) {
	rows := [][]string{{"Nombre", "", "Distrito"}, {"uno"}, {"dos"}, {"tres"}}
	require.Equal(t, "Nombre Distrito uno dos ", SheetText(rows, 2))
	require.Empty(t, SheetText(nil, 2))
}

func TestFindContactsCapsPerPattern(t *testing.T) {
	text := strings.Repeat("999-888-7777 ", 8)
	require.Len(t, FindContacts(text), maxContactsPerPattern)
}
