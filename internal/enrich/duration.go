package enrich

import (
	"regexp"

	"github.com/joseph-ayodele/tupa-scraper/constants"
)

var (
	durationRangeRe = regexp.MustCompile(`(?i)\d+\s*a\s*\d+\s*(?:días|dias|día|dia|horas|hora|meses|mes|semanas|semana)(?:\s+(?:hábiles|habiles|hábil|habil|calendario))?`)
	durationRe      = regexp.MustCompile(`(?i)\d+\s*(?:días|dias|día|dia|horas|hora|meses|mes|semanas|semana)(?:\s+(?:hábiles|habiles|hábil|habil|calendario))?`)
	immediateRe     = regexp.MustCompile(`(?i)inmediat[oa]|al momento|tiempo real|en línea al instante`)
)

// ProcessingTime extracts a human duration like "15 días hábiles".
// It returns "No especificado" when nothing matches.
func ProcessingTime(text string) string {
	if d, ok := FindProcessingTime(text); ok {
		return d
	}
	return constants.DefaultProcessingTime
}

// FindProcessingTime is ProcessingTime without the default.
func FindProcessingTime(text string) (string, bool) {
	if m := durationRangeRe.FindString(text); m != "" {
		return CollapseSpace(m), true
	}
	if m := durationRe.FindString(text); m != "" {
		return CollapseSpace(m), true
	}
	if immediateRe.MatchString(text) {
		return "Inmediato", true
	}
	return "", false
}
