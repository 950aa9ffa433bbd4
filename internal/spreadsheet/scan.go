package spreadsheet

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

const (
	// SampleRows bounds how many data rows of a sheet are scanned.
	SampleRows = 1000

	maxProceduresPerPattern = 5
	maxLocationsPerPattern  = 10
	maxContactsPerPattern   = 5
)

// Procedure mentions are matched on lowercased text.
var procedurePatterns = []*regexp.Regexp{
	regexp.MustCompile(`[a-záéíóúñ\s]{10,}(?:procedimiento|trámite|servicio|solicitud|registro|certificado|licencia|permiso|autorización|inscripción|renovación|duplicado|canje)[a-záéíóúñ\s]{0,20}`),
	regexp.MustCompile(`[a-záéíóúñ\s]{0,20}(?:emisión|expedición|otorgamiento|gestión|atención)[a-záéíóúñ\s]{10,50}`),
}

var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[A-ZÁÉÍÓÚÑ][a-záéíóúñ\s]{5,30}(?:lima|arequipa|cusco|trujillo|chiclayo|piura|iquitos|huancayo|tacna|puno|ica|ayacucho|cajamarca|huánuco|pucallpa|chimbote|sullana|juliaca|tumbes|moyobamba)`),
	regexp.MustCompile(`(?i)(?:jr\.|av\.|calle|psje\.|prol\.)\s+[a-záéíóúñ\s\d]{10,50}`),
	regexp.MustCompile(`(?i)(?:distrito|provincia|región|departamento)\s+[a-záéíóúñ\s]{5,30}`),
}

var contactPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b\d{3}[-.\s]?\d{3}[-.\s]?\d{4}\b`),
	regexp.MustCompile(`(?i)\b[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}\b`),
	regexp.MustCompile(`(?i)(?:lunes|martes|miércoles|jueves|viernes|sábado|domingo).*?(?:\d{1,2}:\d{2}|\d{1,2}\s*(?:am|pm))`),
}

// Sheet is the raw cell grid of one worksheet; the first row is the header.
type Sheet struct {
	Name string
	Rows [][]string
}

// SheetText joins the header and the first sample data rows into one blob,
// skipping empty cells.
func SheetText(rows [][]string, sample int) string {
	if len(rows) == 0 {
		return ""
	}
	if sample <= 0 {
		sample = SampleRows
	}
	var b strings.Builder
	b.WriteString(joinCells(rows[0]))
	b.WriteByte(' ')
	for i, row := range rows[1:] {
		if i == sample {
			break
		}
		b.WriteString(joinCells(row))
		b.WriteByte(' ')
	}
	return b.String()
}

func joinCells(row []string) string {
	cells := make([]string, 0, len(row))
	for _, c := range row {
		if c = strings.TrimSpace(c); c != "" {
			cells = append(cells, c)
		}
	}
	return strings.Join(cells, " ")
}

// ScanSheet applies the procedure, location and contact patterns to a sheet.
func ScanSheet(s Sheet, sample int) entity.SheetSummary {
	summary := entity.SheetSummary{
		Name:        s.Name,
		ColumnNames: []string{},
		Procedures:  []string{},
		Locations:   []string{},
		Contacts:    []string{},
	}
	if len(s.Rows) == 0 {
		return summary
	}
	summary.Rows = len(s.Rows) - 1
	summary.ColumnNames = append(summary.ColumnNames, s.Rows[0]...)
	summary.Columns = len(s.Rows[0])

	text := SheetText(s.Rows, sample)
	lower := strings.ToLower(text)
	summary.Procedures = append(summary.Procedures, FindProcedures(lower)...)
	summary.Locations = append(summary.Locations, FindLocations(text)...)
	summary.Contacts = append(summary.Contacts, FindContacts(text)...)
	return summary
}

// FindProcedures returns procedure-like phrases, at most five per pattern.
func FindProcedures(lower string) []string {
	return matchAll(procedurePatterns, lower, maxProceduresPerPattern, 15)
}

// FindLocations returns place names and street addresses, at most ten per pattern.
func FindLocations(text string) []string {
	return matchAll(locationPatterns, text, maxLocationsPerPattern, 8)
}

// FindContacts returns phone numbers, e-mail addresses and opening hours, at
// most five per pattern.
func FindContacts(text string) []string {
	var out []string
	for _, re := range contactPatterns {
		out = append(out, re.FindAllString(text, maxContactsPerPattern)...)
	}
	return out
}

// matchAll keeps trimmed matches longer than minLen, capped per pattern after filtering.
func matchAll(patterns []*regexp.Regexp, text string, perPattern, minLen int) []string {
	var out []string
	for _, re := range patterns {
		n := 0
		for _, m := range re.FindAllString(text, -1) {
			m = strings.TrimSpace(m)
			if len([]rune(m)) <= minLen {
				continue
			}
			out = append(out, m)
			if n++; n == perPattern {
				break
			}
		}
	}
	return out
}
