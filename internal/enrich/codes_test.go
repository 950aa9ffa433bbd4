package enrich

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

func TestExtractTupaCode(t *testing.T) {
	testCases := []struct {
		text     string
		expected string
		found    bool
	}{
		{"Código TUPA: SUNAT-001", "SUNAT-001", true},
		{"CÓDIGO: 12.3-A", "12.3-A", true},
		{"Procedimiento N° 45-B.", "45-B", true},
		{"PROCEDIMIENTO 07", "07", true},
		{"Base legal: Ley N° 27444", "", false},
		{"Código de procedimiento no disponible", "", false},
		{"TUPA 2024 de la SUNAT\nInscripción al RUC\nCódigo TUPA: SUNAT-001", "SUNAT-001", true},
		{"TUPA 2024", "", false},
	}

	for _, tc := range testCases {
		code, ok := ExtractTupaCode(tc.text)
		require.Equal(t, tc.found, ok, tc.text)
		require.Equal(t, tc.expected, code, tc.text)
	}
}

func TestSyntheticCodesAreDeterministic(t *testing.T) {
	url := "https://www.gob.pe/institucion/sunat/tramites/123-inscripcion-ruc"
	require.Equal(t, SyntheticWebCode(url), SyntheticWebCode(url))
	require.Equal(t, "GOB-123INSCRIP-67F3E3", SyntheticWebCode(url))

	require.Equal(t, "SUNAT-PG-01", SyntheticWebCode("https://www.sunat.gob.pe/legislacion/procedim/despacho/importacion/despa-pg.01.htm"))

	require.Equal(t, SyntheticCode("TASA", "Copia certificada"), SyntheticCode("TASA", "Copia certificada"))
	require.NotEqual(t, SyntheticCode("TASA", "Copia certificada"), SyntheticCode("TASA", "Copia simple"))

	require.Equal(t, SyntheticDocumentCode("/docs/a.pdf", 1), SyntheticDocumentCode("/other/a.pdf", 1))
	require.NotEqual(t, SyntheticDocumentCode("/docs/a.pdf", 1), SyntheticDocumentCode("/docs/b.pdf", 1))
}

func TestSyntheticWebCodesDoNotCollide(t *testing.T) {
	testCases := [][2]string{
		{
			"https://www.gob.pe/institucion/mtc/tupa/procedimiento-01.html",
			"https://www.gob.pe/institucion/mtc/tupa/procedimiento-02.html",
		},
		{
			"https://www.gob.pe/institucion/reniec/tramites/1234",
			"https://www.gob.pe/institucion/sunat/tramites/1234",
		},
	}
	for _, tc := range testCases {
		a, b := SyntheticWebCode(tc[0]), SyntheticWebCode(tc[1])
		require.NotEqual(t, a, b, tc[0])
		require.True(t, strings.HasPrefix(a, "GOB-"), a)
	}
	require.True(t, strings.HasPrefix(SyntheticWebCode("https://www.gob.pe/institucion/mtc/tupa/procedimiento-01.html"), "GOB-PROCEDIMIE-"))
}

func TestFinalizeDerivesInvariants(t *testing.T) {
	p := &entity.Procedure{
		Name:       "  Duplicado de DNI  ",
		EntityCode: "reniec",
		Cost:       32.2,
		Channels:   []string{"Virtual"},
		SourceURL:  "https://www.reniec.gob.pe/portal/duplicado-dni",
	}
	require.NoError(t, Finalize(p))

	require.Equal(t, "Duplicado de DNI", p.Name)
	require.Equal(t, "RENIEC", p.EntityCode)
	require.Equal(t, "RENIEC", p.EntityName)
	require.Equal(t, "GOB-DUPLICADOD-90D284", p.TupaCode)
	require.False(t, p.IsFree)
	require.True(t, p.IsOnline)
	require.Equal(t, "identidad", p.Category)
	require.Equal(t, "PEN", p.Currency)
	require.Equal(t, "easy", p.DifficultyLevel)
	require.Equal(t, "No especificado", p.ProcessingTime)

	free := &entity.Procedure{Name: "Consulta", TupaCode: "X-1", SourceURL: "pdf://tasas"}
	require.NoError(t, Finalize(free))
	require.True(t, free.IsFree)
	require.Equal(t, "Consulta", free.Description)
	require.Equal(t, "general", free.Category)
	require.Equal(t, []string{"Presencial"}, free.Channels)
}

func TestValidateRequiresDescription(t *testing.T) {
	p := &entity.Procedure{Name: "Consulta", TupaCode: "X-1", SourceURL: "pdf://tasas"}
	require.NoError(t, Finalize(p))
	p.Description = " "
	require.ErrorContains(t, p.Validate(), "description is required")
}

func TestFinalizeRejectsMissingSource(t *testing.T) {
	p := &entity.Procedure{Name: "Sin origen", TupaCode: "X-1"}
	require.Error(t, Finalize(p))
}
