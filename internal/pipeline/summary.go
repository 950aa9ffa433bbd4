package pipeline

import (
	"sort"

	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

// TopCostliest is how many records Summarize keeps in Costliest.
const TopCostliest = 10

// Summarize computes the report breakdowns of a merged batch. Ties in cost
// keep their merge order.
func Summarize(procs []entity.Procedure) entity.Aggregates {
	a := entity.Aggregates{
		Total:        len(procs),
		ByEntity:     map[string]int{},
		ByCategory:   map[string]int{},
		ByDifficulty: map[string]int{},
	}
	for _, p := range procs {
		key := p.EntityCode
		if key == "" {
			key = p.EntityName
		}
		a.ByEntity[key]++
		a.ByCategory[p.Category]++
		a.ByDifficulty[p.DifficultyLevel]++
		if p.IsFree {
			a.Free++
		}
		if p.IsOnline {
			a.Online++
		}
	}

	paid := make([]entity.Procedure, 0, len(procs))
	for _, p := range procs {
		if p.Cost > 0 {
			paid = append(paid, p)
		}
	}
	sort.SliceStable(paid, func(i, j int) bool { return paid[i].Cost > paid[j].Cost })
	if len(paid) > TopCostliest {
		paid = paid[:TopCostliest]
	}
	a.Costliest = paid
	return a
}
