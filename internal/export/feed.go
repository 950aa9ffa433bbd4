package export

import (
	"sort"
	"time"

	"github.com/joseph-ayodele/tupa-scraper/internal/enrich"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

const (
	trimmedDescriptionLen = 200
	trimmedKeywords       = 5
)

// FeedMetadata is the envelope header of the full feed.
type FeedMetadata struct {
	ExtractionDate  time.Time `json:"extraction_date"`
	TotalProcedures int       `json:"total_procedures"`
	SourceFiles     []string  `json:"source_files"`
	Entities        []string  `json:"entities"`
	Categories      []string  `json:"categories"`
}

// Feed is the full JSON export: every field of every record.
type Feed struct {
	Metadata   FeedMetadata       `json:"metadata"`
	Procedures []entity.Procedure `json:"procedures"`
}

type FrontendMetadata struct {
	TotalProcedures int       `json:"total_procedures"`
	LastUpdated     time.Time `json:"last_updated"`
	Entities        []string  `json:"entities"`
	Categories      []string  `json:"categories"`
}

type EntityRef struct {
	Name string `json:"name"`
	Code string `json:"code"`
}

// FrontendProcedure is the trimmed per-record view served to the web client.
type FrontendProcedure struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Entity            EntityRef `json:"entity"`
	Cost              float64   `json:"cost"`
	Currency          string    `json:"currency"`
	ProcessingTime    string    `json:"processing_time"`
	RequirementsCount int       `json:"requirements_count"`
	IsFree            bool      `json:"is_free"`
	IsOnline          bool      `json:"is_online"`
	Category          string    `json:"category"`
	Difficulty        string    `json:"difficulty"`
	Keywords          []string  `json:"keywords"`
}

type FrontendFeed struct {
	Metadata   FrontendMetadata    `json:"metadata"`
	Procedures []FrontendProcedure `json:"procedures"`
}

func BuildFeed(procs []entity.Procedure, sourceFiles []string, now time.Time) Feed {
	if procs == nil {
		procs = []entity.Procedure{}
	}
	files := append([]string{}, sourceFiles...)
	sort.Strings(files)
	entities, categories := distinct(procs)
	return Feed{
		Metadata: FeedMetadata{
			ExtractionDate:  now.UTC(),
			TotalProcedures: len(procs),
			SourceFiles:     files,
			Entities:        entities,
			Categories:      categories,
		},
		Procedures: procs,
	}
}

func BuildFrontend(procs []entity.Procedure, now time.Time) FrontendFeed {
	entities, categories := distinct(procs)
	out := FrontendFeed{
		Metadata: FrontendMetadata{
			TotalProcedures: len(procs),
			LastUpdated:     now.UTC(),
			Entities:        entities,
			Categories:      categories,
		},
		Procedures: make([]FrontendProcedure, 0, len(procs)),
	}
	for i := range procs {
		out.Procedures = append(out.Procedures, Trim(&procs[i]))
	}
	return out
}

// Trim projects p onto the frontend view.
func Trim(p *entity.Procedure) FrontendProcedure {
	id := p.TupaCode
	if id == "" {
		id = enrich.SyntheticCode(p.EntityCode, p.Name)
	}
	keywords := p.Keywords
	if len(keywords) > trimmedKeywords {
		keywords = keywords[:trimmedKeywords]
	}
	return FrontendProcedure{
		ID:                id,
		Name:              p.Name,
		Description:       trimDescription(p.Description),
		Entity:            EntityRef{Name: p.EntityName, Code: p.EntityCode},
		Cost:              p.Cost,
		Currency:          p.Currency,
		ProcessingTime:    p.ProcessingTime,
		RequirementsCount: len(p.Requirements),
		IsFree:            p.IsFree,
		IsOnline:          p.IsOnline,
		Category:          p.Category,
		Difficulty:        p.DifficultyLevel,
		Keywords:          append([]string{}, keywords...),
	}
}

func trimDescription(s string) string {
	if enrich.RuneLen(s) <= trimmedDescriptionLen {
		return s
	}
	return enrich.Clip(s, trimmedDescriptionLen) + "..."
}

// distinct returns the sorted entity names and categories present in procs.
func distinct(procs []entity.Procedure) ([]string, []string) {
	ents := map[string]struct{}{}
	cats := map[string]struct{}{}
	for _, p := range procs {
		if p.EntityName != "" {
			ents[p.EntityName] = struct{}{}
		}
		cats[p.Category] = struct{}{}
	}
	return sortedKeys(ents), sortedKeys(cats)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
