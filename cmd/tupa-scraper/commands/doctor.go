package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/common"
	"github.com/joseph-ayodele/tupa-scraper/internal/ingest"
	"github.com/joseph-ayodele/tupa-scraper/internal/pdf"
	"github.com/joseph-ayodele/tupa-scraper/internal/web"
)

type checkStatus string

const (
	statusOK   checkStatus = "OK"
	statusWarn checkStatus = "WARN"
	statusFail checkStatus = "FAIL"
	statusSkip checkStatus = "SKIP"
)

type check struct {
	name   string
	status checkStatus
	detail string
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Checks the environment and dependencies a scrape run needs.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		checks := current.diagnose(cmd.Context())
		printChecks(cmd.OutOrStdout(), checks)
		failed := 0
		for _, c := range checks {
			if c.status == statusFail {
				failed++
			}
		}
		if failed > 0 {
			return common.NewAppError(common.CodeConfig, fmt.Sprintf("%d check(s) failed", failed), common.ErrDependencyMissing)
		}
		return nil
	},
}

func (a *app) diagnose(ctx context.Context) []check {
	cfg := a.cfg
	checks := []check{{name: "configuration", status: statusOK, detail: "valid"}}
	checks = append(checks, a.documentsCheck(ctx))

	switch path, err := pdf.PdftotextPath(cfg.Documents); {
	case err == nil:
		checks = append(checks, check{"pdftotext", statusOK, path})
	case cfg.Documents.Engine == pdf.EnginePdftotext:
		checks = append(checks, check{"pdftotext", statusFail, err.Error()})
	default:
		checks = append(checks, check{"pdftotext", statusWarn, "not found, the native engine will be used"})
	}

	if cfg.Scraper.RenderJS {
		if path, ok := web.BrowserAvailable(); ok {
			checks = append(checks, check{"browser", statusOK, path})
		} else {
			checks = append(checks, check{"browser", statusFail, "SCRAPER_RENDER_JS is set but no Chromium was found"})
		}
	} else {
		checks = append(checks, check{"browser", statusSkip, "SCRAPER_RENDER_JS is off"})
	}

	if _, err := os.Stat(cfg.Scraper.URLFile); err != nil {
		checks = append(checks, check{"url list", statusWarn, cfg.Scraper.URLFile + " not found, built-in URLs will be used"})
	} else {
		checks = append(checks, check{"url list", statusOK, cfg.Scraper.URLFile})
	}

	if err := os.MkdirAll(cfg.Output.Dir, 0o755); err != nil {
		checks = append(checks, check{"output dir", statusFail, err.Error()})
	} else {
		checks = append(checks, check{"output dir", statusOK, cfg.Output.Dir})
	}

	if cfg.RequireDatabase() != nil {
		checks = append(checks, check{"database", statusWarn, "DB_URL not set, scrape --save-db is unavailable"})
	} else if db, err := a.openDB(ctx); err != nil {
		checks = append(checks, check{"database", statusFail, err.Error()})
	} else {
		checks = append(checks, check{"database", statusOK, db.Dialect()})
		db.Close()
	}
	return checks
}

func (a *app) documentsCheck(ctx context.Context) check {
	dir := a.cfg.Documents.Dir
	docs, _, err := ingest.NewFSIngestor(a.logger).ScanDirectory(ctx, dir)
	if err != nil {
		return check{"documents dir", statusWarn, err.Error()}
	}
	counts := ingest.CountByKind(docs)
	return check{"documents dir", statusOK, fmt.Sprintf("%s: %d pdf, %d spreadsheet, %d url list",
		dir, counts[constants.KindPDF], counts[constants.KindSpreadsheet], counts[constants.KindURLList])}
}

func printChecks(w io.Writer, checks []check) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Check", "Status", "Detail"})
	for _, c := range checks {
		t.AppendRow(table.Row{c.name, c.status, c.detail})
	}
	t.Render()
}
