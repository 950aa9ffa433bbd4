package export

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

// WriteReport renders the human-readable run report.
func WriteReport(w io.Writer, r entity.RunReport) error {
	var b strings.Builder
	a := r.Aggregates

	b.WriteString("=== TUPA SCRAPING REPORT ===\n")
	fmt.Fprintf(&b, "Run: %s\n", r.RunID)
	fmt.Fprintf(&b, "Date: %s\n", r.FinishedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Duration: %.2f seconds\n", r.Duration().Seconds())
	fmt.Fprintf(&b, "State: %s\n\n", r.State)

	b.WriteString("PHASES:\n")
	phases := newTable(&b)
	phases.AppendHeader(table.Row{"Phase", "Sources", "Records", "Zero yield", "Failed", "Elapsed"})
	for _, p := range r.Phases {
		phases.AppendRow(table.Row{p.Phase, p.Sources, p.Records, len(p.ZeroYield), len(p.Failed), p.Elapsed.Round(time.Millisecond).String()})
	}
	phases.Render()

	b.WriteString("\nTOTALS:\n")
	fmt.Fprintf(&b, "- Procedures extracted: %d\n", a.Total)
	if r.Save != nil {
		fmt.Fprintf(&b, "- Saved: %d, skipped: %d, errors: %d\n", r.Save.Saved, r.Save.Skipped, r.Save.Errors)
	}
	fmt.Fprintf(&b, "- Free: %d (%.1f%%)\n", a.Free, a.FreeRatio()*100)
	fmt.Fprintf(&b, "- Online: %d (%.1f%%)\n", a.Online, a.OnlineRatio()*100)

	breakdown(&b, fmt.Sprintf("ENTITIES (%d)", len(a.ByEntity)), "Entity", a.ByEntity)
	breakdown(&b, fmt.Sprintf("CATEGORIES (%d)", len(a.ByCategory)), "Category", a.ByCategory)
	breakdown(&b, "DIFFICULTY", "Level", a.ByDifficulty)

	b.WriteString("\nTOP 10 COSTLIEST PROCEDURES:\n")
	for i, p := range a.Costliest {
		fmt.Fprintf(&b, "%d. %s - S/%.2f (%s)\n", i+1, p.Name, p.Cost, p.EntityName)
	}

	if zero := zeroYield(r.Phases); len(zero) > 0 {
		b.WriteString("\nSOURCES WITHOUT RECORDS:\n")
		for _, z := range zero {
			fmt.Fprintf(&b, "- %s\n", z)
		}
	}
	if len(r.Errors) > 0 {
		b.WriteString("\nERRORS:\n")
		for _, e := range r.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	if len(r.Exported) > 0 {
		b.WriteString("\nFILES:\n")
		for _, f := range r.Exported {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func breakdown(b *strings.Builder, title, label string, counts map[string]int) {
	fmt.Fprintf(b, "\n%s:\n", title)
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	t := newTable(b)
	t.AppendHeader(table.Row{label, "Procedures"})
	for _, k := range keys {
		t.AppendRow(table.Row{k, counts[k]})
	}
	t.Render()
}

func zeroYield(phases []entity.PhaseYield) []string {
	var out []string
	for _, p := range phases {
		for _, s := range p.ZeroYield {
			out = append(out, p.Phase+": "+s)
		}
	}
	return out
}
