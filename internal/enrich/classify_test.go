package enrich

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/tupa-scraper/constants"
)

func TestClassifyCategory(t *testing.T) {
	testCases := []struct {
		name, description, context string
		expected                   constants.Category
	}{
		{"Duplicado de DNI", "", "", constants.Identidad},
		{"Inscripción al RUC", "Registro de empresas", "", constants.Empresarial},
		{"Licencia de conducir", "", "", constants.Vehicular},
		{"Licencia de funcionamiento", "local comercial", "", constants.Vehicular},
		{"Constancia", "Identificación del solicitante", "", constants.Identidad},
		{"Trámite", "", "https://www.gob.pe/minsa/x", constants.Salud},
		{"Solicitud de acceso", "información pública", "", constants.General},
	}

	for _, tc := range testCases {
		require.Equal(t, tc.expected, ClassifyCategory(tc.name, tc.description, tc.context), tc.name)
	}
}

func TestClassifyMatchesTokenPrefixesOnly(t *testing.T) {
	// "construccion" contains "ruc" but must not land in empresarial.
	require.Equal(t, constants.Municipal, ClassifyCategory("Permiso de construcción", "", ""))
}

func TestClassifyWithSunatRules(t *testing.T) {
	got := ClassifyWith(constants.SunatCategoryRules, constants.Tributario, "Importación para el consumo")
	require.Equal(t, constants.Aduanero, got)

	got = ClassifyWith(constants.SunatCategoryRules, constants.Tributario, "Consulta general")
	require.Equal(t, constants.Tributario, got)
}

func TestAssessDifficulty(t *testing.T) {
	eight := []string{"a", "b", "c", "d", "e", "f", "g", "h"}

	require.Equal(t, constants.Easy, AssessDifficulty(eight, 0, GenericThresholds))
	require.Equal(t, constants.Medium, AssessDifficulty(eight, 150, GenericThresholds))
	require.Equal(t, constants.Hard, AssessDifficulty(append(eight, "Certificado apostillado"), 150, GenericThresholds))
	require.Equal(t, constants.Easy, AssessDifficulty(eight[:6], 150, SunatThresholds))
}

func TestDocumentDifficulty(t *testing.T) {
	require.Equal(t, constants.Hard, DocumentDifficulty("Copia legalizada del título"))
	require.Equal(t, constants.Medium, DocumentDifficulty(strings.Repeat("x", 1001)))
	require.Equal(t, constants.Easy, DocumentDifficulty("Solicitud simple"))
}

func TestProcessingTime(t *testing.T) {
	require.Equal(t, "15 días hábiles", ProcessingTime("Plazo: 15 días hábiles desde la presentación"))
	require.Equal(t, "3 a 5 días", ProcessingTime("Se atiende en 3 a 5 días"))
	require.Equal(t, "48 horas", ProcessingTime("Entrega en 48 horas"))
	require.Equal(t, "Inmediato", ProcessingTime("Atención inmediata"))
	require.Equal(t, constants.DefaultProcessingTime, ProcessingTime("sin datos"))
}

func TestExtractKeywords(t *testing.T) {
	kw := ExtractKeywords("Duplicado de DNI por pérdida del documento, duplicado", 10)
	require.Equal(t, []string{"duplicado", "perdida", "documento"}, kw)

	many := ExtractKeywords("uno1 dos22 tres3 cuatro quinto sexto septimo octavo noveno decimo onceavo", 5)
	require.Len(t, many, 5)
}

func TestDetectChannels(t *testing.T) {
	require.Equal(t, []string{constants.ChannelPresencial}, DetectChannels("Sin información"))

	ch := DetectChannels("Atención presencial y en línea; consultas por correo")
	require.Equal(t, []string{constants.ChannelPresencial, constants.ChannelVirtual, constants.ChannelCorreo}, ch)
	require.True(t, IsOnline(ch))
	require.False(t, IsOnline([]string{constants.ChannelPresencial}))
}

func TestExtractLegalBasis(t *testing.T) {
	text := "Base legal:\nLey N° 27444 - Ley del Procedimiento Administrativo General\n" +
		"Ley Nº 26497 - Ley Orgánica del RENIEC\nLey N° 29571\n" +
		"Decreto Supremo N° 004-2019-JUS\n" +
		"Resolución de Superintendencia N° 210-2004/SUNAT\n"

	got := ExtractLegalBasis(text, 2)
	require.Equal(t, []string{
		"Ley N° 27444 - Ley del Procedimiento Administrativo General",
		"Ley Nº 26497 - Ley Orgánica del RENIEC",
		"Decreto Supremo N° 004-2019-JUS",
		"Resolución de Superintendencia N° 210-2004/SUNAT",
	}, got)
}

func TestExtractLegalRefs(t *testing.T) {
	refs := ExtractLegalRefs("según Ley N° 27444 y Decreto Legislativo 816")
	require.Equal(t, []string{"Ley N° 27444", "Decreto Legislativo 816"}, refs)
}
