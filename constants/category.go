package constants

import (
	"strings"
)

type Category string

const (
	Identidad   Category = "identidad"
	Empresarial Category = "empresarial"
	Educacion   Category = "educacion"
	Salud       Category = "salud"
	Vehicular   Category = "vehicular"
	Laboral     Category = "laboral"
	Tributario  Category = "tributario"
	Municipal   Category = "municipal"
	General     Category = "general"

	// source-specific extensions
	Aduanero Category = "aduanero"
	Deposito Category = "deposito"
	Transito Category = "transito"
	Registro Category = "registro"
	Tasa     Category = "tasa"
	Consulta Category = "consulta"
)

// CategoryRule maps a category to the keywords that select it.
// Keywords are lowercase and accent-free.
type CategoryRule struct {
	Category Category
	Keywords []string
}

// GenericCategoryRules is evaluated in order; the first rule with a matching keyword wins.
var GenericCategoryRules = []CategoryRule{
	{Identidad, []string{"dni", "pasaporte", "cedula", "identificacion", "reniec"}},
	{Empresarial, []string{"ruc", "empresa", "negocio", "comercio", "sunarp", "sociedad"}},
	{Educacion, []string{"titulo", "grado", "certificado", "educacion", "universidad"}},
	{Salud, []string{"discapacidad", "salud", "medico", "hospital", "minsa"}},
	{Vehicular, []string{"licencia", "conducir", "vehiculo", "transporte", "mtc"}},
	{Laboral, []string{"trabajo", "empleo", "laboral", "planilla", "mintra"}},
	{Tributario, []string{"tributo", "impuesto", "sunat", "fiscal", "declaracion"}},
	{Municipal, []string{"municipal", "licencia", "funcionamiento", "local", "construccion"}},
}

// SunatCategoryRules covers customs and tax pages; the fallback is Tributario.
var SunatCategoryRules = []CategoryRule{
	{Aduanero, []string{"importac", "export", "aduaner"}},
	{Tributario, []string{"ruc", "tributar", "impuest"}},
	{Deposito, []string{"deposit", "almacen"}},
	{Transito, []string{"transit", "transport"}},
}

// DocumentCategoryRules is used for sections mined from PDF documents.
var DocumentCategoryRules = []CategoryRule{
	{Identidad, []string{"dni", "identificacion", "pasaporte"}},
	{Tributario, []string{"tributo", "impuesto", "ruc", "declaracion"}},
	{Empresarial, []string{"empresa", "sociedad", "constitucion"}},
	{Aduanero, []string{"aduana", "importacion", "exportacion"}},
	{Registro, []string{"registro", "inscripcion", "certificado"}},
}

var coreCategories = []Category{
	Identidad, Empresarial, Educacion, Salud, Vehicular, Laboral, Tributario, Municipal, General,
}

func AsStringSlice() []string {
	result := make([]string, len(coreCategories))
	for i, cat := range coreCategories {
		result[i] = string(cat)
	}
	return result
}

// Canonicalize maps free text to a known category, falling back to General.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return General, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))

	synonyms := map[string]Category{
		"identificacion": Identidad,
		"empresa":        Empresarial,
		"educación":      Educacion,
		"tributos":       Tributario,
		"impuestos":      Tributario,
		"aduanas":        Aduanero,
		"transporte":     Vehicular,
		"trabajo":        Laboral,
		"municipalidad":  Municipal,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range coreCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}
	for _, cat := range []Category{Aduanero, Deposito, Transito, Registro, Tasa, Consulta} {
		if normalized == string(cat) {
			return cat, true
		}
	}

	return General, false
}
