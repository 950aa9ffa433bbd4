package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	lpdf "github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/tupa-scraper/internal/common"
)

const (
	EnginePdftotext = "pdftotext"
	EngineNative    = "native"
	EngineAuto      = "auto"
)

// pageBreak separates pages in engine output, as pdftotext does.
const pageBreak = "\f"

// TextEngine returns the text of the first maxPages pages of a PDF, pages
// separated by a form feed.
type TextEngine interface {
	Name() string
	Text(ctx context.Context, path string, maxPages int) (string, error)
}

// PdftotextEngine shells out to poppler's pdftotext in layout mode so table
// columns stay aligned.
type PdftotextEngine struct {
	Bin    string
	runner Runner
}

func NewPdftotextEngine(bin string, runner Runner) *PdftotextEngine {
	if bin == "" {
		bin = "pdftotext"
	}
	if runner == nil {
		runner = execRunner{}
	}
	return &PdftotextEngine{Bin: bin, runner: runner}
}

func (e *PdftotextEngine) Name() string { return EnginePdftotext }

func (e *PdftotextEngine) Text(ctx context.Context, path string, maxPages int) (string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix -f 1 -l <n> <path> -
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if maxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(maxPages))
	}
	args = append(args, path, "-")
	out, errb, err := e.runner.Run(ctx, e.Bin, args...)
	if err != nil {
		return "", common.NewAppError(common.CodePDF, "pdftotext "+path+": "+strings.TrimSpace(truncate(string(errb), 512)), err)
	}
	return string(out), nil
}

// NativeEngine reads text with a pure-Go parser. It has no layout
// reconstruction, so table rows come out as plain lines.
type NativeEngine struct {
	logger *slog.Logger
}

func NewNativeEngine(logger *slog.Logger) *NativeEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &NativeEngine{logger: logger}
}

func (e *NativeEngine) Name() string { return EngineNative }

func (e *NativeEngine) Text(ctx context.Context, path string, maxPages int) (string, error) {
	f, r, err := lpdf.Open(path)
	if err != nil {
		return "", common.NewAppError(common.CodePDF, "open "+path, err)
	}
	defer f.Close()

	n := r.NumPage()
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}
	var b strings.Builder
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := pageText(r, i)
		if err != nil {
			e.logger.Warn("pdf.page.failed", "path", path, "page", i, "error", err)
		}
		if i > 1 {
			b.WriteString(pageBreak)
		}
		b.WriteString(text)
	}
	return b.String(), nil
}

// pageText isolates a single page; the parser panics on some malformed
// content streams.
func pageText(r *lpdf.Reader, num int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page %d: %v", num, rec)
		}
	}()
	p := r.Page(num)
	if p.V.IsNull() {
		return "", nil
	}
	return p.GetPlainText(nil)
}

// SelectEngine resolves the configured engine name. In auto mode pdftotext is
// preferred when the binary is on PATH.
func SelectEngine(cfg common.DocumentsConfig, runner Runner, logger *slog.Logger) TextEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = execRunner{logger: logger}
	}
	switch cfg.Engine {
	case EnginePdftotext:
		return NewPdftotextEngine(cfg.Pdftotext, runner)
	case EngineNative:
		return NewNativeEngine(logger)
	}
	if _, err := exec.LookPath(pdftotextBin(cfg)); err == nil {
		return NewPdftotextEngine(cfg.Pdftotext, runner)
	}
	logger.Info("pdf.engine.fallback", "engine", EngineNative, "reason", "pdftotext not found")
	return NewNativeEngine(logger)
}

func pdftotextBin(cfg common.DocumentsConfig) string {
	if cfg.Pdftotext == "" {
		return "pdftotext"
	}
	return cfg.Pdftotext
}

// PdftotextPath reports where the configured pdftotext binary resolves, if anywhere.
func PdftotextPath(cfg common.DocumentsConfig) (string, error) {
	p, err := exec.LookPath(pdftotextBin(cfg))
	if err != nil {
		return "", fmt.Errorf("%w: %s", common.ErrDependencyMissing, pdftotextBin(cfg))
	}
	return p, nil
}
