package spreadsheet

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/common"
	"github.com/joseph-ayodele/tupa-scraper/internal/enrich"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

// Document types reported in a workbook summary.
const (
	DocTypeExcel   = "EXCEL"
	DocTypeCentros = "CENTROS_ATENCION"
)

// Extractor scans workbooks and promotes them into procedure records.
type Extractor struct {
	sampleRows int
	logger     *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{sampleRows: SampleRows, logger: logger}
}

// ReadSheets loads every worksheet of the workbook at path.
func ReadSheets(path string) ([]Sheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, common.NewAppError(common.CodeSheet, "open "+path, err)
	}
	defer func() { _ = f.Close() }()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, common.NewAppError(common.CodeSheet, fmt.Sprintf("read sheet %q of %s", name, path), err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

// Summarize aggregates per-sheet scans into a file summary. A workbook with
// no sheets yields an empty summary with zero rows.
func Summarize(path string, sheets []Sheet, sample int) *entity.WorkbookSummary {
	name := filepath.Base(path)
	ws := &entity.WorkbookSummary{
		FileName:          name,
		Path:              path,
		Sheets:            []entity.SheetSummary{},
		ProceduresFound:   []string{},
		EntitiesMentioned: []string{},
		DocumentType:      DocTypeExcel,
		LocationsFound:    []string{},
		ContactInfo:       []string{},
	}
	for _, s := range sheets {
		sum := ScanSheet(s, sample)
		ws.Sheets = append(ws.Sheets, sum)
		ws.TotalRows += sum.Rows
		ws.ProceduresFound = append(ws.ProceduresFound, sum.Procedures...)
		ws.LocationsFound = append(ws.LocationsFound, sum.Locations...)
		ws.ContactInfo = append(ws.ContactInfo, sum.Contacts...)
	}

	folded := enrich.Fold(name)
	if strings.Contains(folded, "reniec") {
		ws.EntitiesMentioned = append(ws.EntitiesMentioned, "RENIEC")
	}
	if strings.Contains(folded, "centros") || strings.Contains(folded, "atencion") {
		ws.DocumentType = DocTypeCentros
	}
	return ws
}

// Promote turns a workbook summary into records: a service-centre directory
// becomes the RENIEC centre lookup, any other workbook with procedure
// mentions becomes a data-consultation record.
func Promote(ws *entity.WorkbookSummary) []entity.Procedure {
	if ws == nil || ws.TotalRows == 0 {
		return []entity.Procedure{}
	}
	if ws.DocumentType == DocTypeCentros {
		return []entity.Procedure{{
			Name:            "Consulta de Centros de Atención RENIEC",
			Description:     fmt.Sprintf("Consulta de ubicaciones y horarios de %d centros de atención RENIEC", firstSheetRows(ws)),
			EntityCode:      "RENIEC",
			TupaCode:        "RENIEC-CENTROS-001",
			Requirements:    []string{"Consulta libre", "Sin requisitos específicos"},
			Currency:        constants.DefaultCurrency,
			ProcessingTime:  "Inmediato",
			LegalBasis:      []string{"Ley Nº 26497 - Ley Orgánica del RENIEC"},
			Channels:        []string{constants.ChannelVirtual, constants.ChannelPresencial},
			Category:        string(constants.Identidad),
			Subcategory:     "consulta",
			DifficultyLevel: string(constants.Easy),
			SourceURL:       enrich.FileURL(ws.Path),
			Keywords:        []string{"reniec", "centros", "atencion", "ubicaciones"},
		}}
	}
	if len(ws.ProceduresFound) == 0 {
		return []entity.Procedure{}
	}
	return []entity.Procedure{{
		Name:            "Consulta de Datos - " + ws.FileName,
		Description:     "Consulta de información estructurada desde archivo " + ws.FileName,
		EntityCode:      constants.GenericEntity,
		TupaCode:        enrich.SyntheticCode("GOB-EXCEL", ws.FileName),
		Requirements:    []string{"Consulta de archivo oficial"},
		Currency:        constants.DefaultCurrency,
		ProcessingTime:  "Inmediato",
		Channels:        []string{constants.ChannelVirtual},
		Category:        string(constants.Consulta),
		Subcategory:     "datos",
		DifficultyLevel: string(constants.Easy),
		SourceURL:       enrich.FileURL(ws.Path),
		Keywords:        []string{"consulta", "datos", "excel", "oficial"},
	}}
}

func firstSheetRows(ws *entity.WorkbookSummary) int {
	if len(ws.Sheets) == 0 {
		return 0
	}
	return ws.Sheets[0].Rows
}

// ExtractFile scans one workbook and returns its summary with any promoted,
// finalized records.
func (e *Extractor) ExtractFile(ctx context.Context, path string) (*entity.WorkbookSummary, []entity.Procedure, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	sheets, err := ReadSheets(path)
	if err != nil {
		return nil, nil, err
	}
	ws := Summarize(path, sheets, e.sampleRows)
	logger := e.logger.With("path", path, "sheets", len(ws.Sheets), "rows", ws.TotalRows)

	drafts := Promote(ws)
	out := make([]entity.Procedure, 0, len(drafts))
	for i := range drafts {
		p := drafts[i]
		if err := enrich.Finalize(&p); err != nil {
			logger.Warn("sheet.record.invalid", "name", p.Name, "error", err)
			continue
		}
		out = append(out, p)
	}
	logger.Info("sheet.file.ok",
		"document_type", ws.DocumentType,
		"procedures_found", len(ws.ProceduresFound),
		"locations_found", len(ws.LocationsFound),
		"records", len(out),
	)
	return ws, out, nil
}
