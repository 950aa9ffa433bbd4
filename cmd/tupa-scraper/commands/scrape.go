package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
	"github.com/joseph-ayodele/tupa-scraper/internal/export"
	"github.com/joseph-ayodele/tupa-scraper/internal/pdf"
	"github.com/joseph-ayodele/tupa-scraper/internal/pipeline"
	"github.com/joseph-ayodele/tupa-scraper/internal/spreadsheet"
	"github.com/joseph-ayodele/tupa-scraper/internal/web"
)

var scrapeFlags struct {
	saveDB bool
	export bool
	limit  int
}

func init() {
	scrapeCmd.Flags().BoolVar(&scrapeFlags.saveDB, "save-db", false, "Upsert the extracted procedures into DB_URL.")
	scrapeCmd.Flags().BoolVar(&scrapeFlags.export, "export", false, "Write the JSON, CSV and XLSX exports to OUTPUT_DIR.")
	scrapeCmd.Flags().IntVar(&scrapeFlags.limit, "limit", 0, "Cap on discovered links and listed URLs (0 uses SCRAPER_MAX_LINKS).")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--save-db] [--export] [--limit N]",
	Short: "Runs the extraction pipeline over the web, PDF and spreadsheet sources.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := current
		cfg := a.cfg
		if scrapeFlags.limit < 0 {
			return fmt.Errorf("--limit must not be negative")
		}
		if scrapeFlags.saveDB {
			if err := cfg.RequireDatabase(); err != nil {
				return err
			}
		}

		var fetcher web.Fetcher
		if cfg.Scraper.RenderJS {
			rf := web.NewRenderFetcher(cfg.Scraper, a.logger)
			defer func() { _ = rf.Close() }()
			fetcher = rf
		} else {
			fetcher = web.NewHTTPFetcher(cfg.Scraper, a.logger)
		}

		sources := pipeline.Sources{
			Catalog:   web.KnownProcedures,
			Pages:     web.NewExtractor(fetcher, nil, cfg.Enrichment.UITValue, a.logger),
			Documents: pdf.NewExtractor(cfg.Documents, cfg.Enrichment.UITValue, a.logger),
			Workbooks: spreadsheet.NewExtractor(a.logger),
		}
		out := cmd.OutOrStdout()
		o := pipeline.NewOrchestrator(sources, a.storeOpener(), export.NewService(cfg.Output, a.logger), out, a.logger)

		report, err := o.Run(cmd.Context(), pipeline.Options{
			SaveDB:       scrapeFlags.saveDB,
			Export:       scrapeFlags.export,
			Limit:        scrapeFlags.limit,
			MaxLinks:     cfg.Scraper.MaxLinks,
			SeedURLs:     cfg.Scraper.SeedURLs,
			URLFile:      cfg.Scraper.URLFile,
			DocumentsDir: cfg.Documents.Dir,
			Workers:      cfg.Documents.Workers,
			FileTimeout:  cfg.Documents.FileTimeout,
		})
		printRunSummary(out, report)
		return err
	},
}

func printRunSummary(w io.Writer, r entity.RunReport) {
	fmt.Fprintf(w, "\nRun %s finished: %s in %.2fs\n", r.RunID, r.State, r.Duration().Seconds())
	t := newTable(w)
	t.AppendHeader(table.Row{"Phase", "Sources", "Records", "Zero yield", "Failed"})
	for _, p := range r.Phases {
		t.AppendRow(table.Row{p.Phase, p.Sources, p.Records, len(p.ZeroYield), len(p.Failed)})
	}
	t.AppendFooter(table.Row{"total", "", r.Aggregates.Total, "", ""})
	t.Render()
	if r.Save != nil {
		fmt.Fprintf(w, "Saved: %d, skipped: %d, errors: %d\n", r.Save.Saved, r.Save.Skipped, r.Save.Errors)
	}
	for _, path := range r.Exported {
		fmt.Fprintf(w, "Wrote %s\n", path)
	}
}
