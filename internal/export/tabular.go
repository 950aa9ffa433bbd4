package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

// Columns is the fixed flat column set shared by the CSV and XLSX exports.
var Columns = []string{
	"Name",
	"Entity",
	"Category",
	"Cost",
	"Currency",
	"ProcessingTime",
	"IsFree",
	"IsOnline",
	"Difficulty",
	"RequirementsCount",
	"SourceURL",
}

func flatRow(p *entity.Procedure) []string {
	return []string{
		p.Name,
		p.EntityName,
		p.Category,
		strconv.FormatFloat(p.Cost, 'f', 2, 64),
		p.Currency,
		p.ProcessingTime,
		strconv.FormatBool(p.IsFree),
		strconv.FormatBool(p.IsOnline),
		p.DifficultyLevel,
		strconv.Itoa(len(p.Requirements)),
		p.SourceURL,
	}
}

// WriteCSV writes a header and one row per procedure.
func WriteCSV(w io.Writer, procs []entity.Procedure) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for i := range procs {
		if err := cw.Write(flatRow(&procs[i])); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

const (
	sheetProcedures = "Procedures"
	sheetEntities   = "Entities"
)

// WorkbookBytes renders procedures as an XLSX workbook with a detail sheet
// and a per-entity summary sheet.
func WorkbookBytes(procs []entity.Procedure) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetProcedures); err != nil {
		return nil, err
	}
	for i, h := range Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetProcedures, cell, h)
	}

	row := 2
	for i := range procs {
		p := &procs[i]
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheetProcedures, cell, v)
		}
		write(1, p.Name)
		write(2, p.EntityName)
		write(3, p.Category)
		// numeric cells keep the sheet sortable
		write(4, p.Cost)
		write(5, p.Currency)
		write(6, p.ProcessingTime)
		write(7, p.IsFree)
		write(8, p.IsOnline)
		write(9, p.DifficultyLevel)
		write(10, len(p.Requirements))
		write(11, p.SourceURL)
		row++
	}

	_ = f.SetColWidth(sheetProcedures, "A", "A", 48) // name
	_ = f.SetColWidth(sheetProcedures, "B", "B", 36) // entity
	_ = f.SetColWidth(sheetProcedures, "C", "C", 16)
	_ = f.SetColWidth(sheetProcedures, "D", "E", 10)
	_ = f.SetColWidth(sheetProcedures, "F", "F", 24)
	_ = f.SetColWidth(sheetProcedures, "G", "J", 12)
	_ = f.SetColWidth(sheetProcedures, "K", "K", 60) // source

	if _, err := f.NewSheet(sheetEntities); err != nil {
		return nil, err
	}
	counts := map[string]int{}
	for _, p := range procs {
		counts[p.EntityCode]++
	}
	codes := make([]string, 0, len(counts))
	for c := range counts {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	_ = f.SetSheetRow(sheetEntities, "A1", &[]any{"Entity", "Procedures"})
	for i, c := range codes {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		_ = f.SetSheetRow(sheetEntities, cell, &[]any{c, counts[c]})
	}
	_ = f.SetColWidth(sheetEntities, "A", "A", 16)

	idx, _ := f.GetSheetIndex(sheetProcedures)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
