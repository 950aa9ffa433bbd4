package enrich

import (
	"strings"

	"github.com/joseph-ayodele/tupa-scraper/constants"
)

// ClassifyCategory returns the first rule whose keyword starts a token of
// name, description or context. Rules are evaluated in table order.
func ClassifyCategory(name, description, context string) constants.Category {
	return ClassifyWith(constants.GenericCategoryRules, constants.General, name, description, context)
}

// ClassifyWith evaluates rules in order and returns fallback when none match.
func ClassifyWith(rules []constants.CategoryRule, fallback constants.Category, texts ...string) constants.Category {
	tokens := Tokens(strings.Join(texts, " "))
	for _, rule := range rules {
		for _, kw := range rule.Keywords {
			if hasTokenPrefix(tokens, kw) {
				return rule.Category
			}
		}
	}
	if fallback == "" {
		return constants.General
	}
	return fallback
}

func hasTokenPrefix(tokens []string, kw string) bool {
	for _, t := range tokens {
		if strings.HasPrefix(t, kw) {
			return true
		}
	}
	return false
}

// MentionsAny reports whether any word of text starts with one of prefixes.
func MentionsAny(text string, prefixes ...string) bool {
	tokens := Tokens(text)
	for _, p := range prefixes {
		if hasTokenPrefix(tokens, Fold(p)) {
			return true
		}
	}
	return false
}
