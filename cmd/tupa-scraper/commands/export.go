package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
	"github.com/joseph-ayodele/tupa-scraper/internal/export"
)

var exportFormat string

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", string(export.FormatAll), "Comma list of json, csv, xlsx or all.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [--format json|csv|xlsx|all]",
	Short: "Re-exports the stored catalog without scraping.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		formats, err := export.ParseFormats(exportFormat)
		if err != nil {
			return err
		}
		db, err := a.openDB(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		stored, err := a.procedures(db).List(cmd.Context(), 0)
		if err != nil {
			return err
		}
		procs := make([]entity.Procedure, 0, len(stored))
		for _, sp := range stored {
			procs = append(procs, sp.Procedure)
		}

		paths, err := export.NewService(a.cfg.Output, a.logger).Write(cmd.Context(), export.Bundle{Procedures: procs}, formats...)
		out := cmd.OutOrStdout()
		for _, p := range paths {
			fmt.Fprintf(out, "Wrote %s\n", p)
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d procedures exported\n", len(procs))
		return nil
	},
}
