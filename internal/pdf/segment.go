package pdf

import (
	"regexp"
	"strings"
)

// MaxSections bounds how many candidate sections one document yields.
const MaxSections = 20

// A line matching any marker opens a new procedure section.
var sectionMarkers = []*regexp.Regexp{
	regexp.MustCompile(`(?i)PROCEDIMIENTO\s+N?[°º]?\s*[\d\-.]+`),
	regexp.MustCompile(`(?i)C[ÓO]DIGO\s+TUPA\s*[:.\-]\s*[A-Z0-9\-.]+`),
	regexp.MustCompile(`(?i)DENOMINACI[ÓO]N\s*[:.\-]`),
	regexp.MustCompile(`^\d+\.\s+[A-ZÁÉÍÓÚÑ]`),
}

func isSectionStart(line string) bool {
	for _, re := range sectionMarkers {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// Segment splits document text into procedure-like sections. Blank lines are
// dropped and non-marker lines accumulate into the open section. Text before
// the first marker is a cover page and is discarded, unless the document has
// no markers at all, in which case it is the only section. At most max
// sections are returned (0 means MaxSections).
func Segment(text string, max int) []string {
	if max <= 0 {
		max = MaxSections
	}
	text = strings.ReplaceAll(text, pageBreak, "\n")

	var (
		sections []string
		current  []string
		marked   bool
	)
	flush := func() {
		if len(current) > 0 {
			sections = append(sections, strings.Join(current, "\n"))
			current = nil
		}
	}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isSectionStart(line) {
			if !marked {
				current, marked = nil, true
			}
			flush()
			if len(sections) == max {
				return sections
			}
		}
		current = append(current, line)
	}
	flush()
	if len(sections) > max {
		sections = sections[:max]
	}
	return sections
}
