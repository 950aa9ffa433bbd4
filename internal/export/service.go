package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/tupa-scraper/internal/common"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

// Output file names inside the output directory.
const (
	FileFull          = "tupa_procedures_complete.json"
	FileFrontend      = "tupa_procedures_frontend.json"
	FileCSV           = "tupa_procedures_analysis.csv"
	FileXLSX          = "tupa_procedures.xlsx"
	FileExcelAnalysis = "excel_analysis.json"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatAll  Format = "all"
)

// ParseFormats accepts a comma list of json, csv, xlsx or all.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	seen := map[Format]bool{}
	for _, part := range strings.Split(s, ",") {
		f := Format(strings.ToLower(strings.TrimSpace(part)))
		switch f {
		case "":
			continue
		case FormatAll:
			return []Format{FormatJSON, FormatCSV, FormatXLSX}, nil
		case FormatJSON, FormatCSV, FormatXLSX:
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		default:
			return nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown export format %q", part), common.ErrInvalidInput)
		}
	}
	if len(out) == 0 {
		return []Format{FormatJSON, FormatCSV, FormatXLSX}, nil
	}
	return out, nil
}

// Bundle is everything one export writes.
type Bundle struct {
	Procedures  []entity.Procedure
	SourceFiles []string
	Workbooks   []entity.WorkbookSummary
	GeneratedAt time.Time
}

// Service writes export artifacts into one output directory.
type Service struct {
	dir        string
	reportFile string
	logger     *slog.Logger
}

func NewService(cfg common.OutputConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	report := cfg.ReportFile
	if report == "" {
		report = "scraping_report.txt"
	}
	return &Service{dir: cfg.Dir, reportFile: report, logger: logger}
}

func (s *Service) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir, name)
}

type artifact struct {
	name   string
	render func() ([]byte, error)
}

// Write renders the requested formats and writes them concurrently. JSON
// yields both the full and the frontend feed. It returns the written paths
// in a stable order.
func (s *Service) Write(ctx context.Context, b Bundle, formats ...Format) ([]string, error) {
	start := time.Now()
	if b.GeneratedAt.IsZero() {
		b.GeneratedAt = time.Now()
	}
	if len(formats) == 0 {
		formats = []Format{FormatJSON, FormatCSV, FormatXLSX}
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, common.NewAppError(common.CodeExport, "create output dir", err)
	}

	var arts []artifact
	for _, f := range formats {
		switch f {
		case FormatJSON:
			arts = append(arts,
				artifact{FileFull, func() ([]byte, error) {
					return marshal(BuildFeed(b.Procedures, b.SourceFiles, b.GeneratedAt))
				}},
				artifact{FileFrontend, func() ([]byte, error) {
					return marshal(BuildFrontend(b.Procedures, b.GeneratedAt))
				}},
			)
			if len(b.Workbooks) > 0 {
				arts = append(arts, artifact{FileExcelAnalysis, func() ([]byte, error) {
					return marshal(b.Workbooks)
				}})
			}
		case FormatCSV:
			arts = append(arts, artifact{FileCSV, func() ([]byte, error) {
				var buf bytes.Buffer
				err := WriteCSV(&buf, b.Procedures)
				return buf.Bytes(), err
			}})
		case FormatXLSX:
			arts = append(arts, artifact{FileXLSX, func() ([]byte, error) {
				return WorkbookBytes(b.Procedures)
			}})
		}
	}

	written := make([]string, len(arts))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range arts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := a.render()
			if err != nil {
				return common.NewAppError(common.CodeExport, "render "+a.name, err)
			}
			path := s.Path(a.name)
			if err := writeFile(path, data); err != nil {
				return common.NewAppError(common.CodeExport, "write "+a.name, err)
			}
			written[i] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("export.write.failed", "error", err)
		return compact(written), err
	}

	sort.Strings(written)
	s.logger.Info("export.write.ok",
		"files", len(written),
		"procedures", len(b.Procedures),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return written, nil
}

// WriteReport renders r into the configured report file.
func (s *Service) WriteReport(r entity.RunReport) (string, error) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, r); err != nil {
		return "", common.NewAppError(common.CodeExport, "render report", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", common.NewAppError(common.CodeExport, "create output dir", err)
	}
	path := s.Path(s.reportFile)
	if err := writeFile(path, buf.Bytes()); err != nil {
		return "", common.NewAppError(common.CodeExport, "write report", err)
	}
	s.logger.Info("export.report.ok", "path", path)
	return path, nil
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeFile replaces path through a temp file in the same directory.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func compact(paths []string) []string {
	out := paths[:0]
	for _, p := range paths {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
