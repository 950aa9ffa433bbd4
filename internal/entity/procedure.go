package entity

import (
	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/common"
)

// Procedure is the canonical record every extractor produces.
type Procedure struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	EntityName      string   `json:"entity_name"`
	EntityCode      string   `json:"entity_code"`
	TupaCode        string   `json:"tupa_code"`
	Requirements    []string `json:"requirements"`
	Cost            float64  `json:"cost"`
	Currency        string   `json:"currency"`
	ProcessingTime  string   `json:"processing_time"`
	LegalBasis      []string `json:"legal_basis"`
	Channels        []string `json:"channels"`
	Category        string   `json:"category"`
	Subcategory     string   `json:"subcategory"`
	IsFree          bool     `json:"is_free"`
	IsOnline        bool     `json:"is_online"`
	DifficultyLevel string   `json:"difficulty_level"`
	SourceURL       string   `json:"source_url"`
	Keywords        []string `json:"keywords"`
}

// NaturalKey is the (entity_code, tupa_code) pair used for deduplication.
func (p *Procedure) NaturalKey() string {
	return p.EntityCode + "/" + p.TupaCode
}

// Validate checks the invariants a finalized record must satisfy.
func (p *Procedure) Validate() error {
	v := common.NewValidator()
	v.Field("name", p.Name, common.Required, common.MaxLen(constants.MaxNameLength)).
		Field("description", p.Description, common.Required).
		Field("entity_code", p.EntityCode, common.Required).
		Field("tupa_code", p.TupaCode, common.Required).
		Field("cost", p.Cost, common.NonNegative).
		Field("currency", p.Currency, common.CurrencyCode).
		Field("category", p.Category, common.Required).
		Field("source_url", p.SourceURL, common.SourceURL).
		Field("difficulty_level", p.DifficultyLevel,
			common.OneOf(string(constants.Easy), string(constants.Medium), string(constants.Hard))).
		Field("is_free", p.IsFree, common.Holds(p.IsFree == (p.Cost == 0), "must equal cost == 0")).
		Field("channels", p.Channels, common.Holds(len(p.Channels) > 0, "needs at least one channel"))
	return v.Error()
}
