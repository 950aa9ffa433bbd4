package enrich

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/tupa-scraper/constants"
)

// CostSource tells which mechanism produced a cost.
type CostSource string

const (
	CostNone     CostSource = ""
	CostCurrency CostSource = "currency"
	CostUIT      CostSource = "uit"
	CostFree     CostSource = "free"
)

// Cost is a normalized fee.
type Cost struct {
	Amount   float64
	Currency string
	Source   CostSource
}

var (
	solesAmountRe = regexp.MustCompile(`(?i)S/\.?\s*(\d{1,3}(?:,\d{3})+(?:\.\d{1,2})?|\d+(?:[.,]\d{1,2})?)`)
	solesWordRe   = regexp.MustCompile(`(?i)(\d+(?:\.\d{1,2})?)\s*soles?\b`)
	uitRe         = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(%)?\s*(?:de\s+(?:la\s+|una\s+)?)?UIT`)
	freeWords     = []string{"gratuito", "gratuita", "gratis", "sin costo"}
)

// NormalizeCost extracts a fee from free text. An explicit soles amount wins;
// otherwise a UIT reference is converted with uitValue; otherwise a "free"
// wording yields zero. The bool is false when nothing cost-like was found.
func NormalizeCost(text string, uitValue float64) (Cost, bool) {
	if uitValue <= 0 {
		uitValue = constants.DefaultUITValue
	}
	if amount, ok := CurrencyAmount(text); ok {
		return Cost{Amount: amount, Currency: constants.DefaultCurrency, Source: CostCurrency}, true
	}
	if amount, ok := UITAmount(text, uitValue); ok {
		return Cost{Amount: amount, Currency: constants.DefaultCurrency, Source: CostUIT}, true
	}
	if ContainsAny(text, freeWords...) {
		return Cost{Currency: constants.DefaultCurrency, Source: CostFree}, true
	}
	return Cost{Currency: constants.DefaultCurrency}, false
}

// CurrencyAmount finds the first "S/." or "... soles" amount.
func CurrencyAmount(text string) (float64, bool) {
	if m := solesAmountRe.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			return v, true
		}
	}
	if m := solesWordRe.FindStringSubmatch(text); m != nil {
		if v, ok := parseAmount(m[1]); ok {
			return v, true
		}
	}
	return 0, false
}

// UITAmount converts the first UIT reference. A value written with "%" or
// below 1 is a percentage of the UIT; anything else is a multiple.
func UITAmount(text string, uitValue float64) (float64, bool) {
	m := uitRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, false
	}
	if m[2] == "%" || v < 1 {
		return Round2(v * uitValue / 100), true
	}
	return Round2(v * uitValue), true
}

// ParseAmount parses a table cell such as "1,250.00" or "32.20".
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "S/.")
	s = strings.TrimPrefix(s, "S/")
	return parseAmount(strings.TrimSpace(s))
}

func parseAmount(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	switch {
	case strings.Contains(s, ",") && strings.Contains(s, "."):
		s = strings.ReplaceAll(s, ",", "")
	case strings.Count(s, ",") == 1 && len(s)-strings.Index(s, ",") <= 3:
		s = strings.Replace(s, ",", ".", 1)
	default:
		s = strings.ReplaceAll(s, ",", "")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return Round2(v), true
}

// Round2 rounds to cents.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
