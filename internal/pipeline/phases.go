package pipeline

import (
	"context"
	"path/filepath"

	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/async"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
	"github.com/joseph-ayodele/tupa-scraper/internal/ingest"
	"github.com/joseph-ayodele/tupa-scraper/internal/web"
)

// Yield names used in the run report.
const (
	YieldBasic       = "basic"
	YieldSpecialized = "specialized"
	YieldPDF         = "pdf"
	YieldSpreadsheet = "spreadsheet"
)

// scrapeBasic takes the curated agency records, then discovers procedure
// links from the seed pages and extracts them.
func (o *Orchestrator) scrapeBasic(ctx context.Context, r *run, opts Options) entity.PhaseYield {
	y := entity.PhaseYield{Phase: YieldBasic}
	if o.sources.Catalog != nil {
		y.Sources++
		known, err := o.sources.Catalog()
		if err != nil {
			o.logger.Warn("pipeline.catalog.failed", "run_id", r.id, "error", err)
			y.Failed = append(y.Failed, "catalog")
		} else {
			r.basic = append(r.basic, known...)
		}
	}
	if o.sources.Pages != nil {
		links := o.discover(ctx, r, opts, &y)
		r.basic = append(r.basic, o.extractURLs(ctx, r, links, &y)...)
	}
	y.Records = len(r.basic)
	return y
}

func linkLimit(opts Options) int {
	if opts.Limit > 0 {
		return opts.Limit
	}
	return opts.MaxLinks
}

// discover collects distinct links across seeds until the limit is reached.
func (o *Orchestrator) discover(ctx context.Context, r *run, opts Options, y *entity.PhaseYield) []string {
	limit := linkLimit(opts)
	seen := map[string]struct{}{}
	var links []string
	for _, seed := range opts.SeedURLs {
		if ctx.Err() != nil {
			break
		}
		remaining := 0
		if limit > 0 {
			remaining = limit - len(links)
			if remaining <= 0 {
				break
			}
		}
		found, err := o.sources.Pages.DiscoverLinks(ctx, seed, remaining)
		if err != nil {
			if isCancel(err) {
				break
			}
			o.logger.Warn("pipeline.discover.failed", "run_id", r.id, "seed", seed, "error", err)
			y.Failed = append(y.Failed, seed)
			continue
		}
		for _, l := range found {
			if _, dup := seen[l]; dup {
				continue
			}
			seen[l] = struct{}{}
			links = append(links, l)
			if limit > 0 && len(links) >= limit {
				break
			}
		}
	}
	return links
}

// extractURLs runs the page extractor over urls in order. Pages without a
// record are zero-yield sources; errors other than cancellation are logged
// and the loop moves on.
func (o *Orchestrator) extractURLs(ctx context.Context, r *run, urls []string, y *entity.PhaseYield) []entity.Procedure {
	var out []entity.Procedure
	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}
		y.Sources++
		p, ok, err := o.sources.Pages.Extract(ctx, u)
		switch {
		case err != nil && isCancel(err):
			return out
		case err != nil:
			o.logger.Warn("pipeline.url.failed", "run_id", r.id, "url", u, "error", err)
			y.Failed = append(y.Failed, u)
		case !ok:
			y.ZeroYield = append(y.ZeroYield, u)
		default:
			out = append(out, *p)
		}
	}
	return out
}

// scrapeSpecialized extracts the URL list file plus any URL lists found in
// the documents directory, falling back to FallbackURLs when both are empty.
func (o *Orchestrator) scrapeSpecialized(ctx context.Context, r *run, opts Options) entity.PhaseYield {
	y := entity.PhaseYield{Phase: YieldSpecialized}
	if o.sources.Pages == nil {
		return y
	}
	urls := o.listedURLs(ctx, r, opts)
	if opts.Limit > 0 && len(urls) > opts.Limit {
		urls = urls[:opts.Limit]
	}
	r.special = o.extractURLs(ctx, r, urls, &y)
	y.Records = len(r.special)
	return y
}

func (o *Orchestrator) listedURLs(ctx context.Context, r *run, opts Options) []string {
	var lists []string
	if opts.URLFile != "" {
		lists = append(lists, opts.URLFile)
	}
	o.scan(ctx, r, opts)
	lists = append(lists, ingest.Paths(r.docs, constants.KindURLList)...)

	seen := map[string]struct{}{}
	var urls []string
	for _, path := range lists {
		found, err := web.LoadURLList(path)
		if err != nil {
			o.logger.Warn("pipeline.urls.unreadable", "run_id", r.id, "path", path, "error", err)
			continue
		}
		for _, u := range found {
			if _, dup := seen[u]; !dup {
				seen[u] = struct{}{}
				urls = append(urls, u)
			}
		}
	}
	if len(urls) == 0 {
		o.logger.Info("pipeline.urls.fallback", "run_id", r.id, "count", len(FallbackURLs))
		return append([]string(nil), FallbackURLs...)
	}
	return urls
}

// scan walks the documents directory once per run.
func (o *Orchestrator) scan(ctx context.Context, r *run, opts Options) {
	if r.scanned || opts.DocumentsDir == "" || o.sources.Scanner == nil {
		return
	}
	r.scanned = true
	docs, stats, err := o.sources.Scanner.ScanDirectory(ctx, opts.DocumentsDir)
	if err != nil {
		o.logger.Warn("pipeline.documents.unavailable", "run_id", r.id, "dir", opts.DocumentsDir, "error", err)
		r.scanErr = err
		return
	}
	r.docs = docs
	o.logger.Info("pipeline.documents.scanned",
		"run_id", r.id,
		"matched", stats.Matched,
		"duplicates", stats.Deduplicated,
		"failed", stats.Failed,
	)
}

// scrapeDocuments mines the PDFs, then the spreadsheets, of the documents
// directory on a bounded worker pool. Records keep file order. It reports
// one yield per family.
func (o *Orchestrator) scrapeDocuments(ctx context.Context, r *run, opts Options) []entity.PhaseYield {
	o.scan(ctx, r, opts)
	pdfs := entity.PhaseYield{Phase: YieldPDF}
	sheets := entity.PhaseYield{Phase: YieldSpreadsheet}
	if r.scanErr != nil {
		pdfs.Failed = append(pdfs.Failed, opts.DocumentsDir)
	}

	pool := async.NewPool(o.logger, async.WithWorkers(opts.Workers), async.WithFileTimeout(opts.FileTimeout))

	if o.sources.Documents != nil {
		paths := ingest.Paths(r.docs, constants.KindPDF)
		for _, res := range async.Run(ctx, pool, paths, o.sources.Documents.ExtractFile) {
			name := filepath.Base(res.Job.Path)
			switch {
			case res.Err != nil && isCancel(res.Err) && ctx.Err() != nil:
				continue
			case res.Err != nil:
				pdfs.Failed = append(pdfs.Failed, name)
			case len(res.Value) == 0:
				pdfs.ZeroYield = append(pdfs.ZeroYield, name)
				r.files = append(r.files, name)
			default:
				r.pdfs = append(r.pdfs, res.Value...)
				r.files = append(r.files, name)
			}
			pdfs.Sources++
		}
	}
	pdfs.Records = len(r.pdfs)

	if o.sources.Workbooks != nil {
		paths := ingest.Paths(r.docs, constants.KindSpreadsheet)
		for _, res := range async.Run(ctx, pool, paths, o.workbook) {
			name := filepath.Base(res.Job.Path)
			switch {
			case res.Err != nil && isCancel(res.Err) && ctx.Err() != nil:
				continue
			case res.Err != nil:
				sheets.Failed = append(sheets.Failed, name)
			default:
				if res.Value.summary != nil {
					r.books = append(r.books, *res.Value.summary)
				}
				r.files = append(r.files, name)
				if len(res.Value.procs) == 0 {
					sheets.ZeroYield = append(sheets.ZeroYield, name)
				} else {
					r.sheets = append(r.sheets, res.Value.procs...)
				}
			}
			sheets.Sources++
		}
	}
	sheets.Records = len(r.sheets)
	return []entity.PhaseYield{pdfs, sheets}
}

type workbookOut struct {
	summary *entity.WorkbookSummary
	procs   []entity.Procedure
}

func (o *Orchestrator) workbook(ctx context.Context, path string) (workbookOut, error) {
	summary, procs, err := o.sources.Workbooks.ExtractFile(ctx, path)
	return workbookOut{summary: summary, procs: procs}, err
}
