package enrich

import (
	"fmt"
	"hash/fnv"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

type codePattern struct {
	re *regexp.Regexp
}

// Labels are case-insensitive; the captured code must be uppercase letters,
// digits, dashes or dots and contain at least one digit.
var tupaCodePatterns = []codePattern{
	{regexp.MustCompile(`(?i:c[óo]digo(?:\s+tupa)?)\s*[:.\-]?\s*([A-Z0-9][A-Z0-9\-.]*)`)},
	{regexp.MustCompile(`(?i:N[°º])\s*[:.\-]?\s*([A-Z0-9][A-Z0-9\-.]*)`)},
	{regexp.MustCompile(`(?i:procedimiento)\s*(?i:N[°º]?)?\s*[:.\-]?\s*([A-Z0-9][A-Z0-9\-.]*)`)},
}

var citationPrefixes = []string{"ley", "decreto", "resolucion", "articulo", "art."}

// ExtractTupaCode tries the code label, the "N°" label and the
// "PROCEDIMIENTO" label in that order and returns the first plausible code.
func ExtractTupaCode(text string) (string, bool) {
	for _, p := range tupaCodePatterns {
		for _, loc := range p.re.FindAllStringSubmatchIndex(text, -1) {
			code := strings.TrimRight(text[loc[2]:loc[3]], ".-")
			if !strings.ContainsAny(code, "0123456789") || len(code) < 2 {
				continue
			}
			if followsCitation(text[:loc[0]]) {
				continue
			}
			return code, true
		}
	}
	return "", false
}

// followsCitation reports whether the label directly continues a legal citation
// such as "Ley N° 27444".
func followsCitation(before string) bool {
	tail := Fold(before)
	if len(tail) > 24 {
		tail = tail[len(tail)-24:]
	}
	fields := strings.Fields(tail)
	if len(fields) == 0 {
		return false
	}
	last := fields[len(fields)-1]
	for _, p := range citationPrefixes {
		if last == p {
			return true
		}
	}
	if len(fields) >= 2 {
		prev := fields[len(fields)-2]
		return prev == "decreto" || prev == "resolucion"
	}
	return false
}

// ShortHash is a stable six-hex-digit digest of s.
func ShortHash(s string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%06X", h.Sum32()&0xFFFFFF)
}

var despaRe = regexp.MustCompile(`despa-pg\.([^./]+)`)

// SyntheticWebCode derives a stable code from a page URL: a readable slug
// prefix plus a digest of host and path, so sibling pages never share a code.
func SyntheticWebCode(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "PROC-" + ShortHash(rawURL)
	}
	if m := despaRe.FindStringSubmatch(u.Path); m != nil {
		return "SUNAT-PG-" + strings.ToUpper(m[1])
	}
	last := path.Base(strings.TrimRight(u.Path, "/"))
	last = strings.TrimSuffix(strings.TrimSuffix(last, ".html"), ".htm")
	last = strings.ToUpper(strings.ReplaceAll(last, "-", ""))
	if last != "" && last != "." && last != "/" {
		return "GOB-" + Clip(last, 10) + "-" + ShortHash(u.Host+u.Path)
	}
	return "PROC-" + ShortHash(rawURL)
}

// SyntheticDocumentCode derives a section code unique to the file.
func SyntheticDocumentCode(filePath string, index int) string {
	return fmt.Sprintf("PDF-%s-%03d", ShortHash(path.Base(filePath)), index)
}

// SyntheticCode derives a code from a prefix and an arbitrary stable key.
func SyntheticCode(prefix, key string) string {
	return prefix + "-" + ShortHash(key)
}

// DocumentURL is the provenance pointer for records mined from a PDF.
func DocumentURL(filePath string) string {
	u := url.URL{Scheme: "pdf", Path: "/" + filepath.ToSlash(filepath.Base(filePath))}
	return u.String()
}

// FileURL is the provenance pointer for records tied to a whole local file.
func FileURL(filePath string) string {
	if abs, err := filepath.Abs(filePath); err == nil {
		filePath = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(filePath)}
	return u.String()
}
