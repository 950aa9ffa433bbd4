package enrich

import (
	"regexp"
	"strings"
)

var legalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Ley\s+(?:N[°º.]?\s*)?\d[\d\-]*[^\n]*`),
	regexp.MustCompile(`(?i)Decreto\s+\p{L}+\s+(?:N[°º.]?\s*)?\d[^\n]*`),
	regexp.MustCompile(`(?i)Resoluci[oó]n(?:\s+\p{L}+){1,3}\s+(?:N[°º.]?\s*)?\d[^\n]*`),
}

var legalRefRe = regexp.MustCompile(`(?i)(?:Ley|Decreto|Resoluci[oó]n)\s+(?:\p{L}+\s+)?(?:N[°º.]?\s*)?\d[\d\-/]*`)

const maxCitationLength = 200

// ExtractLegalBasis applies the Ley / Decreto / Resolución patterns in that
// order, keeping up to perPattern distinct citations from each.
func ExtractLegalBasis(text string, perPattern int) []string {
	var out []string
	for _, re := range legalPatterns {
		matches := re.FindAllString(text, -1)
		kept := DedupCap(trimCitations(matches), perPattern)
		out = append(out, kept...)
	}
	return DedupCap(out, 0)
}

// ExtractLegalRefs returns every short citation ("Ley N° 27444") in text.
func ExtractLegalRefs(text string) []string {
	return DedupCap(legalRefRe.FindAllString(text, -1), 0)
}

func trimCitations(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimRight(CollapseSpace(s), " .,;:")
		out = append(out, Clip(s, maxCitationLength))
	}
	return out
}
