package pdf

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/enrich"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

const (
	maxSectionRequirements = 6
	maxSectionKeywords     = 5
	defaultDescription     = "Procedimiento gubernamental"
)

var (
	labelPrefixRe    = regexp.MustCompile(`(?i)^(?:PROCEDIMIENTO(?:\s+N?[°º]?\s*[\d\-.]+)?|C[ÓO]DIGO(?:\s+TUPA)?\s*[:.\-]?\s*(?:[A-Z0-9\-.]*\d[A-Z0-9\-.]*)?|DENOMINACI[ÓO]N|NOMBRE(?:\s+DEL\s+PROCEDIMIENTO)?|\d+\.)\s*[:.\-]?\s*`)
	notDescriptionRe = regexp.MustCompile(`(?i)^\d+\.|S/\.|\bUIT\b|C[ÓO]DIGO`)
	bulletRe         = regexp.MustCompile(`^(?:[a-zA-Z]\)|[•*·\-–]|\d+\))\s*(.+)$`)
	numberedRe       = regexp.MustCompile(`^\d+\.\s`)
)

var requirementHeaderWords = []string{"requisito", "documento", "presenta"}

type entityHint struct {
	code  string
	words []string
}

var documentEntityHints = []entityHint{
	{"RENIEC", []string{"reniec", "dni", "identificacion"}},
	{"SUNAT", []string{"sunat", "tributar", "ruc", "aduana"}},
	{"SUNARP", []string{"sunarp", "registro", "propiedad"}},
}

var indexWords = map[string]struct{}{
	"dni": {}, "ruc": {}, "registro": {}, "certificado": {}, "declaracion": {},
	"licencia": {}, "permiso": {}, "autorizacion": {},
}

// ParseSection maps one segmented section onto a draft record. It reports
// false when no usable name is found.
func ParseSection(section, path string, index int, uitValue float64) (*entity.Procedure, bool) {
	lines := strings.Split(section, "\n")
	name := sectionName(lines)
	if name == "" {
		return nil, false
	}
	code, ok := enrich.ExtractTupaCode(section)
	if !ok {
		code = enrich.SyntheticDocumentCode(path, index)
	}
	cost, _ := enrich.NormalizeCost(section, uitValue)

	return &entity.Procedure{
		Name:            name,
		Description:     sectionDescription(lines, name),
		EntityCode:      inferDocumentEntity(section),
		TupaCode:        code,
		Requirements:    sectionRequirements(lines),
		Cost:            cost.Amount,
		Currency:        cost.Currency,
		ProcessingTime:  enrich.ProcessingTime(section),
		LegalBasis:      enrich.ExtractLegalRefs(section),
		Channels:        []string{constants.ChannelPresencial},
		Category:        string(enrich.ClassifyWith(constants.DocumentCategoryRules, constants.General, section)),
		DifficultyLevel: string(enrich.DocumentDifficulty(section)),
		SourceURL:       enrich.DocumentURL(path),
		Keywords:        sectionKeywords(section),
	}, true
}

// sectionName takes the first of the leading three lines that still reads
// like a title once label prefixes are stripped.
func sectionName(lines []string) string {
	for i, line := range lines {
		if i == 3 {
			break
		}
		name := strings.TrimSpace(labelPrefixRe.ReplaceAllString(strings.TrimSpace(line), ""))
		if n := enrich.RuneLen(name); n >= 5 && n <= constants.MaxNameLength && hasLetter(name) {
			return name
		}
	}
	return ""
}

func sectionDescription(lines []string, name string) string {
	for i := 1; i < len(lines) && i < 5; i++ {
		line := strings.TrimSpace(lines[i])
		n := enrich.RuneLen(line)
		if n <= 20 || n >= 300 || line == name || notDescriptionRe.MatchString(line) {
			continue
		}
		return line
	}
	return defaultDescription
}

// sectionRequirements collects bullet items after a requirements header line
// until a numbered line starts the next block.
func sectionRequirements(lines []string) []string {
	var out []string
	in := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if in {
			if m := bulletRe.FindStringSubmatch(line); m != nil {
				item := strings.TrimRight(enrich.CollapseSpace(m[1]), ".;")
				if enrich.RuneLen(item) >= 10 {
					out = append(out, enrich.Clip(item, 200))
				}
				continue
			}
			if numberedRe.MatchString(line) {
				break
			}
		}
		if enrich.ContainsAny(line, requirementHeaderWords...) {
			in = true
		}
	}
	return enrich.DedupCap(out, maxSectionRequirements)
}

func inferDocumentEntity(text string) string {
	for _, h := range documentEntityHints {
		if enrich.MentionsAny(text, h.words...) {
			return h.code
		}
	}
	return constants.GenericEntity
}

func sectionKeywords(text string) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, tok := range enrich.Tokens(text) {
		if _, ok := indexWords[tok]; !ok {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
		if len(out) == maxSectionKeywords {
			break
		}
	}
	return out
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
