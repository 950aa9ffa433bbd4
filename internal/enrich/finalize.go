package enrich

import (
	"strings"

	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

// Finalize fills defaults and derived fields on p in place and validates the
// result. Every extractor calls it before returning a record.
func Finalize(p *entity.Procedure) error {
	p.Name = Clip(CollapseSpace(p.Name), constants.MaxNameLength)
	p.Description = strings.TrimSpace(p.Description)
	if p.Description == "" {
		p.Description = p.Name
	}
	p.EntityCode = strings.ToUpper(strings.TrimSpace(p.EntityCode))
	if p.EntityCode == "" {
		p.EntityCode = constants.GenericEntity
	}
	if strings.TrimSpace(p.EntityName) == "" {
		known, _ := constants.LookupEntity(p.EntityCode)
		p.EntityName = known.Name
	}
	p.TupaCode = strings.TrimSpace(p.TupaCode)
	if p.TupaCode == "" && p.SourceURL != "" {
		p.TupaCode = SyntheticWebCode(p.SourceURL)
	}

	if p.Cost < 0 {
		p.Cost = 0
	}
	p.Cost = Round2(p.Cost)
	if p.Currency == "" {
		p.Currency = constants.DefaultCurrency
	}
	p.IsFree = p.Cost == 0

	p.Requirements = DedupCap(p.Requirements, constants.MaxRequirements)
	p.LegalBasis = DedupCap(p.LegalBasis, 0)
	p.Channels = DedupCap(p.Channels, 0)
	if len(p.Channels) == 0 {
		p.Channels = []string{constants.ChannelPresencial}
	}
	p.IsOnline = IsOnline(p.Channels)

	if strings.TrimSpace(p.ProcessingTime) == "" {
		p.ProcessingTime = constants.DefaultProcessingTime
	}
	if strings.TrimSpace(p.Category) == "" {
		p.Category = string(ClassifyCategory(p.Name, p.Description, p.SourceURL))
	}
	if p.DifficultyLevel == "" {
		p.DifficultyLevel = string(AssessDifficulty(p.Requirements, p.Cost, GenericThresholds))
	}
	if len(p.Keywords) == 0 {
		p.Keywords = ExtractKeywords(p.Name+" "+p.Description, constants.MaxKeywords)
	}
	for i, k := range p.Keywords {
		p.Keywords[i] = Fold(k)
	}
	p.Keywords = DedupCap(p.Keywords, constants.MaxKeywords)
	if p.Requirements == nil {
		p.Requirements = []string{}
	}
	if p.LegalBasis == nil {
		p.LegalBasis = []string{}
	}
	if p.Keywords == nil {
		p.Keywords = []string{}
	}
	return p.Validate()
}
