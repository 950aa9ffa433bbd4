package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/tupa-scraper/internal/common"
	"github.com/joseph-ayodele/tupa-scraper/internal/enrich"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
	"github.com/joseph-ayodele/tupa-scraper/internal/export"
	repo "github.com/joseph-ayodele/tupa-scraper/internal/repository"
)

// setupEnv points the CLI at a temp sqlite catalog holding two procedures.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dsn := "sqlite://" + filepath.Join(dir, "tupa.db")
	t.Setenv("DB_URL", dsn)
	t.Setenv("LOG_FILE", filepath.Join(dir, "scraping.log"))
	t.Setenv("OUTPUT_DIR", filepath.Join(dir, "output"))
	t.Setenv("DOCUMENTS_DIR", filepath.Join(dir, "documents"))
	t.Setenv("SCRAPER_URL_FILE", filepath.Join(dir, "urls.txt"))
	t.Setenv("PDFTOTEXT_BIN", filepath.Join(dir, "no-pdftotext"))
	t.Setenv("DB_ON_CONFLICT", "")
	t.Setenv("SCRAPER_RENDER_JS", "")

	procs := []entity.Procedure{
		{Name: "Duplicado de DNI", EntityCode: "RENIEC", TupaCode: "RENIEC-001", Cost: 32.20,
			Requirements: []string{"Formulario"}, SourceURL: "https://www.gob.pe/reniec"},
		{Name: "Inscripción al RUC", EntityCode: "SUNAT", TupaCode: "SUNAT-001",
			Requirements: []string{"DNI"}, SourceURL: "https://www.sunat.gob.pe"},
	}
	for i := range procs {
		require.NoError(t, enrich.Finalize(&procs[i]))
	}

	ctx := context.Background()
	db, err := repo.Open(ctx, common.DatabaseConfig{DSN: dsn}, nil)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate(ctx))
	stats, err := repo.NewProcedureRepository(db, common.OnConflictSkip, nil).SaveBatch(ctx, procs)
	require.NoError(t, err)
	require.Equal(t, 2, stats.Saved)
	return dir
}

func run(t *testing.T, args ...string) (string, int) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetOut(nil)
	code := ExecuteContext(context.Background())
	return buf.String(), code
}

func TestSearchCommand(t *testing.T) {
	setupEnv(t)

	out, code := run(t, "search", "dni", "--limit", "5")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "Duplicado de DNI")
	require.Contains(t, out, "1 result(s)")

	out, code = run(t, "search", "pasaporte")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, `No procedures match "pasaporte"`)

	_, code = run(t, "search")
	require.Equal(t, ExitFailed, code)
}

func TestStatsCommand(t *testing.T) {
	setupEnv(t)
	out, code := run(t, "stats")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "Total procedures: 2")
	require.Contains(t, out, "RENIEC")
	require.Contains(t, out, "empresarial")
}

func TestExportCommand(t *testing.T) {
	dir := setupEnv(t)
	out, code := run(t, "export", "--format", "json,csv")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "2 procedures exported")
	require.FileExists(t, filepath.Join(dir, "output", export.FileCSV))
	require.NoError(t, export.ValidateFeedFile(filepath.Join(dir, "output", export.FileFull)))

	_, code = run(t, "export", "--format", "pdf")
	require.Equal(t, ExitConfig, code)
}

func TestValidateCommand(t *testing.T) {
	dir := setupEnv(t)
	out, code := run(t, "validate")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "Procedures: 2")

	output := filepath.Join(dir, "output")
	require.NoError(t, os.MkdirAll(output, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(output, export.FileFull), []byte(`{"metadata":{}}`), 0o644))
	out, code = run(t, "validate", "--strict")
	require.Equal(t, ExitFailed, code)
	require.Contains(t, out, "Export schema:")
	validateStrict = false
}

func TestDoctorCommand(t *testing.T) {
	setupEnv(t)
	out, code := run(t, "doctor")
	require.Equal(t, ExitOK, code)
	require.Contains(t, out, "WARN")
	require.Contains(t, out, "sqlite")

	t.Setenv("PDF_ENGINE", "pdftotext")
	_, code = run(t, "doctor")
	require.Equal(t, ExitConfig, code)
}

func TestConfigErrors(t *testing.T) {
	setupEnv(t)
	t.Setenv("DB_URL", "")
	_, code := run(t, "stats")
	require.Equal(t, ExitConfig, code)

	t.Setenv("DB_ON_CONFLICT", "replace")
	_, code = run(t, "stats")
	require.Equal(t, ExitConfig, code)
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, _, err := newLogger(common.LogConfig{Level: "loud"})
	require.Error(t, err)
	require.True(t, common.IsConfigError(err))

	logger, closer, err := newLogger(common.LogConfig{Level: "debug", File: filepath.Join(t.TempDir(), "x.log"), Format: "text"})
	require.NoError(t, err)
	logger.Debug("cli.test")
	require.NoError(t, closer.Close())
}
