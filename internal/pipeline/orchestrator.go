package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/tupa-scraper/internal/common"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
	"github.com/joseph-ayodele/tupa-scraper/internal/export"
	"github.com/joseph-ayodele/tupa-scraper/internal/ingest"
)

// PageExtractor is the web side the orchestrator drives.
type PageExtractor interface {
	Extract(ctx context.Context, rawURL string) (*entity.Procedure, bool, error)
	DiscoverLinks(ctx context.Context, seedURL string, max int) ([]string, error)
}

type DocumentExtractor interface {
	ExtractFile(ctx context.Context, path string) ([]entity.Procedure, error)
}

type WorkbookExtractor interface {
	ExtractFile(ctx context.Context, path string) (*entity.WorkbookSummary, []entity.Procedure, error)
}

// Store persists a merged batch.
type Store interface {
	SaveBatch(ctx context.Context, procs []entity.Procedure) (entity.SaveStats, error)
}

// StoreOpener connects to the database on demand; the returned func releases it.
type StoreOpener func(ctx context.Context) (Store, func(), error)

type Exporter interface {
	Write(ctx context.Context, b export.Bundle, formats ...export.Format) ([]string, error)
	WriteReport(r entity.RunReport) (string, error)
}

// Sources bundles the extractors of one run.
type Sources struct {
	Catalog   func() ([]entity.Procedure, error)
	Pages     PageExtractor
	Documents DocumentExtractor
	Workbooks WorkbookExtractor
	Scanner   ingest.Scanner
}

// Options selects the optional phases and source locations of a run.
type Options struct {
	SaveDB       bool
	Export       bool
	Limit        int // caps discovered links and listed URLs; 0 falls back to MaxLinks for links
	MaxLinks     int
	SeedURLs     []string
	URLFile      string
	DocumentsDir string
	Workers      int           // concurrent document files; 0 uses the pool default
	FileTimeout  time.Duration // per document file; 0 means none
}

// FallbackURLs is used when the URL list file is missing or empty.
var FallbackURLs = []string{
	"https://www.gob.pe/250-renovar-dni-para-mayores-de-edad",
	"https://www.gob.pe/226-duplicado-de-dni-electronico-dnie",
	"https://tupadigital.mtc.gob.pe/#/inicio",
}

// Orchestrator runs the extraction phases in order, merges their output,
// then optionally persists and exports it and always writes a report.
type Orchestrator struct {
	sources   Sources
	openStore StoreOpener
	exporter  Exporter
	status    io.Writer
	now       func() time.Time
	logger    *slog.Logger
}

func NewOrchestrator(sources Sources, openStore StoreOpener, exporter Exporter, status io.Writer, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if status == nil {
		status = io.Discard
	}
	if sources.Scanner == nil {
		sources.Scanner = ingest.NewFSIngestor(logger)
	}
	return &Orchestrator{
		sources:   sources,
		openStore: openStore,
		exporter:  exporter,
		status:    status,
		now:       time.Now,
		logger:    logger,
	}
}

// run holds the mutable state of one Run call.
type run struct {
	id       string
	machine  *Machine
	report   entity.RunReport
	basic    []entity.Procedure
	special  []entity.Procedure
	pdfs     []entity.Procedure
	sheets   []entity.Procedure
	books    []entity.WorkbookSummary
	files    []string
	docs     []ingest.Document
	scanned  bool
	scanErr  error
	merged   []entity.Procedure
	fatalErr error
}

func (r *run) fail(err error) {
	if r.fatalErr == nil {
		r.fatalErr = err
	}
	r.report.Errors = append(r.report.Errors, err.Error())
}

// Run executes one pipeline run. The returned report is complete even when
// the error is non-nil; the error reports the first unrecoverable failure.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (entity.RunReport, error) {
	r := &run{id: uuid.NewString(), machine: NewMachine()}
	r.report.RunID = r.id
	r.report.StartedAt = o.now()
	ctx = common.WithRunID(ctx, r.id)
	o.logger.Info("pipeline.run.start", "run_id", r.id, "save_db", opts.SaveDB, "export", opts.Export, "limit", opts.Limit)

	o.phase(ctx, r, ScrapingBasic, func(ctx context.Context) []entity.PhaseYield {
		return []entity.PhaseYield{o.scrapeBasic(ctx, r, opts)}
	})
	o.phase(ctx, r, ScrapingSpecialized, func(ctx context.Context) []entity.PhaseYield {
		return []entity.PhaseYield{o.scrapeSpecialized(ctx, r, opts)}
	})
	o.phase(ctx, r, ScrapingPDF, func(ctx context.Context) []entity.PhaseYield {
		return o.scrapeDocuments(ctx, r, opts)
	})

	o.advance(r, Merging)
	r.merged = Merge(r.basic, r.special, r.pdfs, r.sheets)
	r.report.Aggregates = Summarize(r.merged)
	o.statusf("[%s] %d procedures", Merging, len(r.merged))
	o.logger.Info("pipeline.merge.done", "run_id", r.id, "total", len(r.merged))

	// Accumulated results survive an interrupt; they are exported and
	// reported but not persisted.
	if err := ctx.Err(); err != nil {
		o.advance(r, Failed)
		r.fail(fmt.Errorf("run interrupted: %w", err))
	} else if opts.SaveDB {
		o.advance(r, Persisting)
		o.persist(ctx, r)
	}

	finishCtx := context.WithoutCancel(ctx)
	if opts.Export && o.exporter != nil {
		o.advance(r, Exporting)
		o.exportAll(finishCtx, r)
	}

	o.advance(r, Reporting)
	r.report.FinishedAt = o.now()
	r.report.State = string(Done)
	if r.machine.HasFailed() {
		r.report.State = string(Failed)
	}
	if o.exporter != nil {
		if path, err := o.exporter.WriteReport(r.report); err != nil {
			o.logger.Error("pipeline.report.failed", "run_id", r.id, "error", err)
			o.advance(r, Failed)
			r.fail(err)
		} else {
			o.statusf("[%s] %s", Reporting, path)
		}
	}
	if r.machine.State() != Failed {
		o.advance(r, Done)
	}
	r.report.State = string(r.machine.State())
	for _, s := range r.machine.History() {
		r.report.Path = append(r.report.Path, string(s))
	}
	r.report.FinishedAt = o.now()

	o.logger.Info("pipeline.run.done",
		"run_id", r.id,
		"state", r.report.State,
		"total", len(r.merged),
		"elapsed_ms", r.report.Duration().Milliseconds(),
	)
	return r.report, r.fatalErr
}

func (o *Orchestrator) advance(r *run, next State) {
	if err := r.machine.Advance(next); err != nil {
		// transitions are fixed by Run; this is a programming error
		panic(err)
	}
	o.logger.Debug("pipeline.state", "run_id", r.id, "state", next)
}

// phase runs one extraction state and records the yields it reports.
func (o *Orchestrator) phase(ctx context.Context, r *run, s State, fn func(context.Context) []entity.PhaseYield) {
	o.advance(r, s)
	start := time.Now()
	yields := fn(common.WithPhase(ctx, string(s)))
	for _, y := range yields {
		if y.Elapsed == 0 {
			y.Elapsed = time.Since(start)
		}
		r.report.Phases = append(r.report.Phases, y)
		o.statusf("[%s] %d records from %d sources", y.Phase, y.Records, y.Sources)
		o.logger.Info("pipeline.phase.done",
			"run_id", r.id,
			"phase", y.Phase,
			"sources", y.Sources,
			"records", y.Records,
			"zero_yield", len(y.ZeroYield),
			"failed", len(y.Failed),
			"elapsed_ms", y.Elapsed.Milliseconds(),
		)
	}
}

func (o *Orchestrator) persist(ctx context.Context, r *run) {
	if o.openStore == nil {
		o.advance(r, Failed)
		r.fail(common.NewAppError(common.CodeConfig, "persistence requested without a database", common.ErrInvalidInput))
		return
	}
	store, release, err := o.openStore(ctx)
	if err != nil {
		o.logger.Error("pipeline.persist.open_failed", "run_id", r.id, "error", err)
		o.statusf("[%s] database unavailable: %v", Persisting, err)
		o.advance(r, Failed)
		r.fail(err)
		return
	}
	defer release()

	stats, err := store.SaveBatch(ctx, r.merged)
	if err != nil {
		o.logger.Error("pipeline.persist.failed", "run_id", r.id, "error", err)
		o.statusf("[%s] batch rolled back: %v", Persisting, err)
		o.advance(r, Failed)
		r.fail(err)
		return
	}
	r.report.Save = &stats
	o.statusf("[%s] saved %d, skipped %d, errors %d", Persisting, stats.Saved, stats.Skipped, stats.Errors)
}

func (o *Orchestrator) exportAll(ctx context.Context, r *run) {
	bundle := export.Bundle{
		Procedures:  r.merged,
		SourceFiles: r.files,
		Workbooks:   r.books,
		GeneratedAt: o.now(),
	}
	paths, err := o.exporter.Write(ctx, bundle)
	r.report.Exported = paths
	if err != nil {
		o.logger.Error("pipeline.export.failed", "run_id", r.id, "error", err)
		o.statusf("[%s] failed: %v", Exporting, err)
		o.advance(r, Failed)
		r.fail(err)
		return
	}
	o.statusf("[%s] %d files", Exporting, len(paths))
}

func (o *Orchestrator) statusf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.status, format+"\n", args...)
}

// Merge concatenates phase outputs in phase order without deduplication.
func Merge(parts ...[]entity.Procedure) []entity.Procedure {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]entity.Procedure, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
