package entity

import "time"

// PhaseYield records what one orchestrator phase produced.
type PhaseYield struct {
	Phase     string        `json:"phase"`
	Sources   int           `json:"sources"`
	Records   int           `json:"records"`
	ZeroYield []string      `json:"zero_yield,omitempty"`
	Failed    []string      `json:"failed,omitempty"`
	Elapsed   time.Duration `json:"elapsed_ns"`
}

// Aggregates are the breakdowns computed over a merged batch.
type Aggregates struct {
	Total        int            `json:"total"`
	ByEntity     map[string]int `json:"by_entity"`
	ByCategory   map[string]int `json:"by_category"`
	ByDifficulty map[string]int `json:"by_difficulty"`
	Free         int            `json:"free"`
	Online       int            `json:"online"`
	Costliest    []Procedure    `json:"costliest"`
}

// FreeRatio is the share of free procedures in [0, 1].
func (a Aggregates) FreeRatio() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Free) / float64(a.Total)
}

// OnlineRatio is the share of procedures offered online in [0, 1].
func (a Aggregates) OnlineRatio() float64 {
	if a.Total == 0 {
		return 0
	}
	return float64(a.Online) / float64(a.Total)
}

// RunReport summarizes one orchestrator run.
type RunReport struct {
	RunID      string       `json:"run_id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	State      string       `json:"state"`
	Path       []string     `json:"path"`
	Phases     []PhaseYield `json:"phases"`
	Aggregates Aggregates   `json:"aggregates"`
	Save       *SaveStats   `json:"save,omitempty"`
	Exported   []string     `json:"exported,omitempty"`
	Errors     []string     `json:"errors,omitempty"`
}

// Duration is the wall time of the run.
func (r RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
