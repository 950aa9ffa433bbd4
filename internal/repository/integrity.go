package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/antzucaro/matchr"

	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

// NearDuplicateThreshold is the Jaro-Winkler similarity above which two
// procedure names of one entity are reported.
const NearDuplicateThreshold = 0.92

// IntegrityChecker inspects the persisted catalog for data quality problems.
type IntegrityChecker struct {
	entities   EntityRepository
	procedures ProcedureRepository
	threshold  float64
	logger     *slog.Logger
}

func NewIntegrityChecker(entities EntityRepository, procedures ProcedureRepository, logger *slog.Logger) *IntegrityChecker {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntegrityChecker{entities: entities, procedures: procedures, threshold: NearDuplicateThreshold, logger: logger}
}

func (c *IntegrityChecker) Check(ctx context.Context) (entity.IntegrityReport, error) {
	report := entity.IntegrityReport{
		WithoutRequirements: []string{},
		InvalidCosts:        []string{},
		FreeFlagMismatch:    []string{},
		EmptyEntities:       []string{},
		NearDuplicates:      []entity.NearDuplicate{},
	}

	ents, err := c.entities.List(ctx)
	if err != nil {
		return report, err
	}
	stored, err := c.procedures.List(ctx, 0)
	if err != nil {
		return report, err
	}
	report.EntitiesCount = len(ents)
	report.TotalProcedures = len(stored)

	used := map[string]struct{}{}
	byEntity := map[string][]string{}
	for _, sp := range stored {
		p := sp.Procedure
		key := p.NaturalKey()
		used[p.EntityCode] = struct{}{}
		byEntity[p.EntityCode] = append(byEntity[p.EntityCode], p.Name)
		if len(p.Requirements) == 0 {
			report.WithoutRequirements = append(report.WithoutRequirements, key)
		}
		if p.Cost < 0 {
			report.InvalidCosts = append(report.InvalidCosts, fmt.Sprintf("%s (%.2f)", key, p.Cost))
		}
		if p.IsFree != (p.Cost == 0) {
			report.FreeFlagMismatch = append(report.FreeFlagMismatch, key)
		}
	}
	for _, e := range ents {
		if _, ok := used[e.Code]; !ok {
			report.EmptyEntities = append(report.EmptyEntities, e.Code)
		}
	}
	for _, e := range ents {
		report.NearDuplicates = append(report.NearDuplicates, NearDuplicates(e.Code, byEntity[e.Code], c.threshold)...)
	}

	c.logger.Info("repository.integrity.done",
		"procedures", report.TotalProcedures,
		"entities", report.EntitiesCount,
		"issues", report.Issues(),
	)
	return report, nil
}

// NearDuplicates compares every pair of names and reports those whose
// similarity reaches threshold. Identical names are left to the natural key.
func NearDuplicates(entityCode string, names []string, threshold float64) []entity.NearDuplicate {
	var out []entity.NearDuplicate
	for i := 0; i < len(names); i++ {
		left := strings.ToLower(names[i])
		for j := i + 1; j < len(names); j++ {
			right := strings.ToLower(names[j])
			if left == right {
				continue
			}
			similarity := matchr.JaroWinkler(left, right, false)
			if similarity >= threshold {
				out = append(out, entity.NearDuplicate{
					EntityCode: entityCode,
					First:      names[i],
					Second:     names[j],
					Similarity: similarity,
				})
			}
		}
	}
	return out
}
