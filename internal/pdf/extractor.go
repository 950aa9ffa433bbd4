package pdf

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/common"
	"github.com/joseph-ayodele/tupa-scraper/internal/enrich"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

// Extractor mines procedure records out of PDF documents.
type Extractor struct {
	engine   TextEngine
	maxPages int
	uit      float64
	logger   *slog.Logger
}

// NewExtractor selects a text engine from cfg.
func NewExtractor(cfg common.DocumentsConfig, uitValue float64, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return NewExtractorWithEngine(SelectEngine(cfg, nil, logger), cfg.MaxPages, uitValue, logger)
}

func NewExtractorWithEngine(engine TextEngine, maxPages int, uitValue float64, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{engine: engine, maxPages: maxPages, uit: uitValue, logger: logger}
}

// EngineName reports which text engine is in use.
func (e *Extractor) EngineName() string {
	return e.engine.Name()
}

func (e *Extractor) window(kind constants.DocumentKind) int {
	n := pageWindow[kind]
	if e.maxPages > 0 && (n == 0 || n > e.maxPages) {
		n = e.maxPages
	}
	return n
}

// ExtractFile dispatches on the document subtype and returns finalized
// records. A document without extractable text yields no records and no error.
func (e *Extractor) ExtractFile(ctx context.Context, path string) ([]entity.Procedure, error) {
	kind := DetectKind(path)
	logger := e.logger.With("path", path, "kind", kind, "engine", e.engine.Name())

	var drafts []entity.Procedure
	switch kind {
	case constants.DocRegistro:
		drafts = RegistroRecords(path)
	default:
		text, err := e.engine.Text(ctx, path, e.window(kind))
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(strings.ReplaceAll(text, pageBreak, "")) == "" {
			logger.Info("pdf.file.empty")
			return []entity.Procedure{}, nil
		}
		switch kind {
		case constants.DocTasas:
			drafts = e.feeRecords(text, path)
		case constants.DocManual:
			drafts = ManualSteps(text, path)
		default:
			drafts = e.sectionRecords(text, path)
		}
	}

	out := make([]entity.Procedure, 0, len(drafts))
	for i := range drafts {
		p := drafts[i]
		if err := enrich.Finalize(&p); err != nil {
			logger.Warn("pdf.record.invalid", "name", p.Name, "error", err)
			continue
		}
		out = append(out, p)
	}
	logger.Info("pdf.file.ok", "procedures", len(out))
	return out, nil
}

func (e *Extractor) sectionRecords(text, path string) []entity.Procedure {
	var out []entity.Procedure
	for i, section := range Segment(text, MaxSections) {
		if p, ok := ParseSection(section, path, i+1, e.uit); ok {
			out = append(out, *p)
		}
	}
	return out
}

func (e *Extractor) feeRecords(text, path string) []entity.Procedure {
	var out []entity.Procedure
	for _, page := range strings.Split(text, pageBreak) {
		for _, table := range LayoutTables(page) {
			for _, row := range table.Rows {
				if p, ok := ParseFeeRow(row, path); ok {
					out = append(out, *p)
				}
			}
		}
	}
	return out
}
