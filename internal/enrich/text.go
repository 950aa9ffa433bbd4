package enrich

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases s and strips diacritics so "Identificación" matches "identificacion".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

// Tokens splits folded text into letter/digit runs.
func Tokens(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// CollapseSpace trims s and squeezes internal whitespace runs to one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n runes, appending an ellipsis when cut.
func Truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return strings.TrimSpace(string(r[:n-3])) + "..."
}

// Clip cuts s to at most n runes without a marker.
func Clip(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n])
}

// RuneLen is the length of s in characters.
func RuneLen(s string) int {
	return len([]rune(s))
}

// ContainsAny reports whether folded text contains any of the folded words.
func ContainsAny(text string, words ...string) bool {
	f := Fold(text)
	for _, w := range words {
		if strings.Contains(f, Fold(w)) {
			return true
		}
	}
	return false
}

// DedupCap removes blanks and duplicates (case-insensitive), keeping order, up to max items.
func DedupCap(items []string, max int) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = CollapseSpace(it)
		if it == "" {
			continue
		}
		k := Fold(it)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
