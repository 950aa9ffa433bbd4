package enrich

import (
	"strings"

	"github.com/joseph-ayodele/tupa-scraper/constants"
)

// Thresholds parameterize difficulty scoring.
type Thresholds struct {
	Requirements int
	Cost         float64
	ComplexTerms []string
}

var (
	GenericThresholds = Thresholds{
		Requirements: 5,
		Cost:         100,
		ComplexTerms: []string{"certificado", "autenticado", "notarizado", "apostillado"},
	}
	SunatThresholds = Thresholds{
		Requirements: 6,
		Cost:         1000,
		ComplexTerms: []string{"declaracion", "aforo", "valorizacion", "arancel"},
	}
	GovPortalThresholds = Thresholds{
		Requirements: 4,
		Cost:         50,
		ComplexTerms: GenericThresholds.ComplexTerms,
	}
)

var documentComplexTerms = []string{"notarizada", "apostillada", "legalizada", "certificada", "autenticada"}

// AssessDifficulty scores one point each for too many requirements, a high
// cost and complexity terms in the requirements: 0-1 easy, 2 medium, 3 hard.
func AssessDifficulty(requirements []string, cost float64, th Thresholds) constants.Difficulty {
	score := 0
	if len(requirements) > th.Requirements {
		score++
	}
	if cost > th.Cost {
		score++
	}
	if ContainsAny(strings.Join(requirements, " "), th.ComplexTerms...) {
		score++
	}
	switch {
	case score <= 1:
		return constants.Easy
	case score == 2:
		return constants.Medium
	default:
		return constants.Hard
	}
}

// DocumentDifficulty rates a PDF section: legalized paperwork is hard,
// long sections are medium.
func DocumentDifficulty(section string) constants.Difficulty {
	if ContainsAny(section, documentComplexTerms...) {
		return constants.Hard
	}
	if RuneLen(section) > 1000 {
		return constants.Medium
	}
	return constants.Easy
}
