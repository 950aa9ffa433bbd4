package pipeline

import (
	"fmt"
	"sync"
)

// State is a step of the orchestrator state machine.
type State string

const (
	Idle                State = "idle"
	ScrapingBasic       State = "scraping_basic"
	ScrapingSpecialized State = "scraping_specialized"
	ScrapingPDF         State = "scraping_pdf"
	Merging             State = "merging"
	Persisting          State = "persisting"
	Exporting           State = "exporting"
	Reporting           State = "reporting"
	Done                State = "done"
	Failed              State = "failed"
)

// transitions lists the legal successors of each state. Every state except
// Done may also move to Failed; from Failed the run may still export and
// report what it has.
var transitions = map[State][]State{
	Idle:                {ScrapingBasic},
	ScrapingBasic:       {ScrapingSpecialized},
	ScrapingSpecialized: {ScrapingPDF},
	ScrapingPDF:         {Merging},
	Merging:             {Persisting, Exporting, Reporting},
	Persisting:          {Exporting, Reporting},
	Exporting:           {Reporting},
	Reporting:           {Done},
	Failed:              {Exporting, Reporting},
}

// Machine tracks the current state and the path taken.
type Machine struct {
	mu      sync.Mutex
	state   State
	failed  bool
	history []State
}

func NewMachine() *Machine {
	return &Machine{state: Idle, history: []State{Idle}}
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// History returns the states visited so far, in order.
func (m *Machine) History() []State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]State(nil), m.history...)
}

// HasFailed reports whether the run went through Failed.
func (m *Machine) HasFailed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failed
}

// Advance moves to next if the transition is legal. Once the run has failed,
// Reporting ends in Failed instead of Done.
func (m *Machine) Advance(next State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if next == Failed {
		if m.state == Done {
			return fmt.Errorf("illegal transition %s -> %s", m.state, next)
		}
		m.failed = true
		m.set(next)
		return nil
	}
	if m.failed && m.state == Reporting && next == Done {
		m.set(Failed)
		return nil
	}
	for _, s := range transitions[m.state] {
		if s == next {
			m.set(next)
			return nil
		}
	}
	return fmt.Errorf("illegal transition %s -> %s", m.state, next)
}

func (m *Machine) set(s State) {
	m.state = s
	m.history = append(m.history, s)
}
