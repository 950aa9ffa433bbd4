package pdf

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/enrich"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

// Layout text separates table columns with runs of two or more spaces.
var columnGapRe = regexp.MustCompile(`\s{2,}|\t+`)

// minTableColumns is the narrowest row treated as a table row.
const minTableColumns = 3

// Table is a block of consecutive multi-column lines; the first row is the header.
type Table struct {
	Header []string
	Rows   [][]string
}

// LayoutTables recovers tables from one page of layout-preserving text.
func LayoutTables(page string) []Table {
	var (
		tables []Table
		block  [][]string
	)
	flush := func() {
		if len(block) > 1 {
			tables = append(tables, Table{Header: block[0], Rows: block[1:]})
		}
		block = nil
	}
	for _, line := range strings.Split(page, "\n") {
		cells := splitColumns(line)
		if len(cells) < minTableColumns {
			flush()
			continue
		}
		block = append(block, cells)
	}
	flush()
	return tables
}

func splitColumns(line string) []string {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	var cells []string
	for _, c := range columnGapRe.Split(line, -1) {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

// ParseFeeRow maps a [name, cost, ...] row onto a fee record. Rows with a
// short name or a non-numeric cost are rejected.
func ParseFeeRow(row []string, path string) (*entity.Procedure, bool) {
	if len(row) < 2 {
		return nil, false
	}
	name := enrich.CollapseSpace(row[0])
	if enrich.RuneLen(name) < 5 {
		return nil, false
	}
	cost, ok := enrich.ParseAmount(row[1])
	if !ok {
		return nil, false
	}
	return &entity.Procedure{
		Name:            name,
		Description:     "Procedimiento con tasa establecida",
		EntityCode:      inferDocumentEntity(filepath.Base(path) + " " + name),
		TupaCode:        enrich.SyntheticCode("TASA", filepath.Base(path)+"|"+name),
		Requirements:    []string{"Según procedimiento específico"},
		Cost:            cost,
		Currency:        constants.DefaultCurrency,
		ProcessingTime:  "Según normativa",
		Channels:        []string{constants.ChannelPresencial},
		Category:        string(constants.Tasa),
		DifficultyLevel: string(constants.Medium),
		SourceURL:       enrich.DocumentURL(path),
		Keywords:        []string{"tasa", "procedimiento", "costo"},
	}, true
}
