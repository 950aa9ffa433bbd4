package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/common"
)

// stubRunner returns canned pdftotext output keyed by the input path.
type stubRunner struct {
	out   map[string]string
	fail  map[string]bool
	calls [][]string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, append([]string{name}, args...))
	path := args[len(args)-2]
	if s.fail[path] {
		return nil, []byte("Syntax Error: Couldn't find trailer dictionary"), errors.New("exit status 1")
	}
	return []byte(s.out[path]), nil, nil
}

func newTestExtractor(r *stubRunner) *Extractor {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewExtractorWithEngine(NewPdftotextEngine("pdftotext", r), 50, constants.DefaultUITValue, logger)
}

const tupaText = `TEXTO ÚNICO DE PROCEDIMIENTOS ADMINISTRATIVOS
Entidad: RENIEC

PROCEDIMIENTO N° 001
Inscripción de nacimiento en el registro civil
Registro del nacimiento de un menor ante la oficina de registro civil
Requisitos:
a) Certificado de nacido vivo original
b) DNI vigente de ambos padres
Derecho de tramitación: S/. 15.00
Plazo: 30 días hábiles
Base legal: Ley N° 26497` + "\f" + `
PROCEDIMIENTO N° 002
Rectificación administrativa de partida
Requisitos:
- Solicitud dirigida al jefe de registro
- Copia certificada notarizada de la partida
Derecho: 0.5 UIT
Plazo: 60 días
`

func TestExtractTupaIntegral(t *testing.T) {
	const path = "/docs/TUPA_integral_reniec.pdf"
	r := &stubRunner{out: map[string]string{path: tupaText}}
	ex := newTestExtractor(r)

	procs, err := ex.ExtractFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, procs, 2)

	first := procs[0]
	require.Equal(t, "Inscripción de nacimiento en el registro civil", first.Name)
	require.Equal(t, "001", first.TupaCode)
	require.Equal(t, "RENIEC", first.EntityCode)
	require.InDelta(t, 15.0, first.Cost, 0.001)
	require.False(t, first.IsFree)
	require.Equal(t, "30 días hábiles", first.ProcessingTime)
	require.Equal(t, []string{"Certificado de nacido vivo original", "DNI vigente de ambos padres"}, first.Requirements)
	require.Equal(t, string(constants.Identidad), first.Category)
	require.Equal(t, string(constants.Easy), first.DifficultyLevel)
	require.Equal(t, "pdf:///TUPA_integral_reniec.pdf", first.SourceURL)

	second := procs[1]
	require.Equal(t, "Rectificación administrativa de partida", second.Name)
	require.InDelta(t, 25.75, second.Cost, 0.001)
	require.Equal(t, string(constants.Hard), second.DifficultyLevel)
	require.Len(t, second.Requirements, 2)

	require.Len(t, r.calls, 1)
	require.Contains(t, strings.Join(r.calls[0], " "), "-layout -enc UTF-8 -eol unix -f 1 -l 50")
}

func TestExtractTasasTables(t *testing.T) {
	const path = "/docs/tasas_2024.pdf"
	text := "TASAS ADMINISTRATIVAS 2024\n" +
		"Procedimiento                     Monto (S/)    Base\n" +
		"Duplicado de DNI                  32.20         Ley 26497\n" +
		"Rectificación de nombre           50.00         Ley 26497\n" +
		"Nota                              Exonerado     -\n" +
		"\f" +
		"Denominación                      Costo         Unidad\n" +
		"Certificado de inscripción        1,250.00      Ley 1\n"
	r := &stubRunner{out: map[string]string{path: text}}
	ex := newTestExtractor(r)

	procs, err := ex.ExtractFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, procs, 3)

	require.Equal(t, "Duplicado de DNI", procs[0].Name)
	require.InDelta(t, 32.20, procs[0].Cost, 0.001)
	require.Equal(t, "RENIEC", procs[0].EntityCode)
	require.True(t, strings.HasPrefix(procs[0].TupaCode, "TASA-"))
	require.InDelta(t, 1250.0, procs[2].Cost, 0.001)
	require.Equal(t, string(constants.Tasa), procs[2].Category)
	require.Contains(t, strings.Join(r.calls[0], " "), "-l 20")
}

func TestExtractEmptyTextYieldsNoRecords(t *testing.T) {
	const path = "/docs/escaneado.pdf"
	r := &stubRunner{out: map[string]string{path: "\f\f  \n"}}
	procs, err := newTestExtractor(r).ExtractFile(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, procs)
	require.Empty(t, procs)
}

func TestExtractRegistroUsesCuratedRecords(t *testing.T) {
	r := &stubRunner{}
	procs, err := newTestExtractor(r).ExtractFile(context.Background(), "/docs/Registro_Nacional.pdf")
	require.NoError(t, err)
	require.Len(t, procs, 3)
	require.Empty(t, r.calls)
	require.Equal(t, "RENIEC-INSC-001", procs[0].TupaCode)
	require.True(t, procs[0].IsFree)
	require.InDelta(t, 50.0, procs[1].Cost, 0.001)
	require.True(t, strings.HasPrefix(procs[0].SourceURL, "file:///"))
}

func TestExtractManualSteps(t *testing.T) {
	const path = "/docs/manual_usuario.pdf"
	long := strings.Repeat("Ingrese a la plataforma y complete el formulario con sus datos personales. ", 3)
	text := "Introducción al sistema\nPASO 1\n" + long + "\nPASO 2\nbreve\nPASO 3\n" + long
	r := &stubRunner{out: map[string]string{path: text}}

	procs, err := newTestExtractor(r).ExtractFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, procs, 2)
	require.Equal(t, "Procedimiento Manual Paso 1", procs[0].Name)
	require.Equal(t, "Procedimiento Manual Paso 3", procs[1].Name)
	require.True(t, strings.HasSuffix(procs[1].TupaCode, "-03"))
	require.True(t, procs[0].IsOnline)
}

func TestExtractFileEngineFailure(t *testing.T) {
	const bad, good = "/docs/roto.pdf", "/docs/TUPA_integral_reniec.pdf"
	r := &stubRunner{
		out:  map[string]string{good: tupaText},
		fail: map[string]bool{bad: true},
	}
	ex := newTestExtractor(r)

	procs, err := ex.ExtractFile(context.Background(), bad)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, common.CodePDF, appErr.Code)
	require.Contains(t, appErr.Message, "trailer dictionary")
	require.Empty(t, procs)

	procs, err = ex.ExtractFile(context.Background(), good)
	require.NoError(t, err)
	require.Len(t, procs, 2)
}

func TestDetectKind(t *testing.T) {
	testCases := map[string]constants.DocumentKind{
		"TUPA_Integral_2024.pdf":   constants.DocTupaIntegral,
		"tupa-resumen.pdf":         constants.DocGeneric,
		"Tasas-Reniec.pdf":         constants.DocTasas,
		"Manual de Usuario.pdf":    constants.DocManual,
		"registro_civil_tasas.pdf": constants.DocTasas,
		"registro-nacional.pdf":    constants.DocRegistro,
		"otro.pdf":                 constants.DocGeneric,
	}
	for name, want := range testCases {
		require.Equal(t, want, DetectKind(name), name)
	}
}

func TestSegmentCapsAndDropsCover(t *testing.T) {
	var b strings.Builder
	b.WriteString("Portada del documento\n")
	for i := 1; i <= 25; i++ {
		fmt.Fprintf(&b, "PROCEDIMIENTO N° %03d\nNombre del trámite número %d\n", i, i)
	}
	sections := Segment(b.String(), 0)
	require.Len(t, sections, MaxSections)
	require.True(t, strings.HasPrefix(sections[0], "PROCEDIMIENTO N° 001"))

	single := Segment("Guía para ciudadanos\nInformación general sobre trámites", 0)
	require.Len(t, single, 1)
}

func TestLayoutTablesNeedThreeColumns(t *testing.T) {
	tables := LayoutTables("A  B\nNombre   Costo   Base\nTrámite uno   10   Ley\n\nsuelto")
	require.Len(t, tables, 1)
	require.Equal(t, []string{"Nombre", "Costo", "Base"}, tables[0].Header)
	require.Equal(t, [][]string{{"Trámite uno", "10", "Ley"}}, tables[0].Rows)
}
