package enrich

import "github.com/joseph-ayodele/tupa-scraper/constants"

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		"el", "la", "de", "que", "y", "a", "en", "un", "es", "se", "no", "te", "lo", "le", "da",
		"su", "por", "son", "con", "para", "al", "del", "los", "las", "una", "uno", "unos", "unas",
		"como", "este", "esta", "estos", "estas", "sobre", "entre", "cuando", "desde", "hasta",
		"todo", "todos", "cada", "debe", "deben", "sera", "puede", "pueden", "segun", "otros",
		"otras", "tiene", "tienen", "donde", "mediante", "cual", "cuales", "tambien", "solo",
	} {
		stopWords[w] = struct{}{}
	}
}

// ExtractKeywords returns up to max distinct folded tokens longer than three
// characters that are not stop words, in order of first appearance.
func ExtractKeywords(text string, max int) []string {
	if max <= 0 {
		max = constants.MaxKeywords
	}
	seen := map[string]struct{}{}
	var out []string
	for _, tok := range Tokens(text) {
		if RuneLen(tok) <= 3 {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, tok)
		if len(out) == max {
			break
		}
	}
	return out
}

// MergeKeywords prepends fixed keywords to extracted ones, folded and capped.
func MergeKeywords(fixed, extracted []string, max int) []string {
	all := make([]string, 0, len(fixed)+len(extracted))
	for _, k := range fixed {
		all = append(all, Fold(k))
	}
	all = append(all, extracted...)
	return DedupCap(all, max)
}
