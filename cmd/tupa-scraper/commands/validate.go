package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
	"github.com/joseph-ayodele/tupa-scraper/internal/export"
	repo "github.com/joseph-ayodele/tupa-scraper/internal/repository"
)

var validateStrict bool

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Exit non-zero when any issue is found.")
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate [--strict]",
	Short: "Checks the stored catalog and the last full export for data quality issues.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		db, err := a.openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		checker := repo.NewIntegrityChecker(repo.NewEntityRepository(db, a.logger), a.procedures(db), a.logger)
		report, err := checker.Check(cmd.Context())
		if err != nil {
			return err
		}

		feed := export.NewService(a.cfg.Output, a.logger).Path(export.FileFull)
		switch err := export.ValidateFeedFile(feed); {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist):
			a.logger.Info("validate.feed.absent", "path", feed)
		default:
			report.SchemaErrors = append(report.SchemaErrors, err.Error())
		}

		out := cmd.OutOrStdout()
		printIntegrity(out, report)
		if validateStrict && report.Issues() > 0 {
			return fmt.Errorf("%d data quality issue(s) found", report.Issues())
		}
		return nil
	},
}

func printIntegrity(w io.Writer, r entity.IntegrityReport) {
	fmt.Fprintf(w, "Procedures: %d\n", r.TotalProcedures)
	fmt.Fprintf(w, "Entities: %d\n", r.EntitiesCount)

	t := newTable(w)
	t.AppendHeader(table.Row{"Check", "Findings"})
	t.AppendRow(table.Row{"Without requirements", len(r.WithoutRequirements)})
	t.AppendRow(table.Row{"Negative cost", len(r.InvalidCosts)})
	t.AppendRow(table.Row{"is_free inconsistent with cost", len(r.FreeFlagMismatch)})
	t.AppendRow(table.Row{"Entities without procedures", len(r.EmptyEntities)})
	t.AppendRow(table.Row{"Near-duplicate names", len(r.NearDuplicates)})
	t.AppendRow(table.Row{"Export schema", len(r.SchemaErrors)})
	t.Render()

	list(w, "Without requirements", r.WithoutRequirements)
	list(w, "Negative cost", r.InvalidCosts)
	list(w, "is_free inconsistent with cost", r.FreeFlagMismatch)
	list(w, "Entities without procedures", r.EmptyEntities)
	if len(r.NearDuplicates) > 0 {
		d := newTable(w)
		d.AppendHeader(table.Row{"Entity", "Name", "Similar to", "Score"})
		for _, nd := range r.NearDuplicates {
			d.AppendRow(table.Row{nd.EntityCode, nd.First, nd.Second, fmt.Sprintf("%.2f", nd.Similarity)})
		}
		d.Render()
	}
	list(w, "Export schema", r.SchemaErrors)
	if r.Issues() == 0 {
		fmt.Fprintln(w, "No issues found.")
	}
}

func list(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "- %s\n", it)
	}
}
