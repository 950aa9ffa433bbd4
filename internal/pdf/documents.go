package pdf

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/enrich"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

// kindRule pairs a file-name predicate with the document subtype it selects.
type kindRule struct {
	kind  constants.DocumentKind
	match func(name string) bool
}

func nameHas(words ...string) func(string) bool {
	return func(name string) bool {
		for _, w := range words {
			if !strings.Contains(name, w) {
				return false
			}
		}
		return true
	}
}

var kindRules = []kindRule{
	{constants.DocTupaIntegral, nameHas("tupa", "integral")},
	{constants.DocTasas, nameHas("tasas")},
	{constants.DocManual, nameHas("manual")},
	{constants.DocRegistro, nameHas("registro")},
}

// pageWindow caps how many pages each subtype reads.
var pageWindow = map[constants.DocumentKind]int{
	constants.DocTupaIntegral: 50,
	constants.DocTasas:        20,
	constants.DocManual:       30,
	constants.DocRegistro:     0,
	constants.DocGeneric:      10,
}

// DetectKind picks the subtype from the file name, first rule wins.
func DetectKind(path string) constants.DocumentKind {
	name := enrich.Fold(filepath.Base(path))
	for _, r := range kindRules {
		if r.match(name) {
			return r.kind
		}
	}
	return constants.DocGeneric
}

var manualSplitRe = regexp.MustCompile(`(?i)(?:PASO|PROCEDIMIENTO|C[ÓO]MO)\s+\d+`)

const (
	maxManualSteps   = 5
	minManualSection = 100
)

// ManualSteps turns a user manual's numbered steps into guidance records.
// Text before the first step marker is ignored.
func ManualSteps(text, path string) []entity.Procedure {
	parts := manualSplitRe.Split(text, -1)
	if len(parts) < 2 {
		return nil
	}
	var out []entity.Procedure
	for i, part := range parts[1:] {
		if i == maxManualSteps {
			break
		}
		if enrich.RuneLen(strings.TrimSpace(part)) <= minManualSection {
			continue
		}
		step := i + 1
		out = append(out, entity.Procedure{
			Name:            fmt.Sprintf("Procedimiento Manual Paso %d", step),
			Description:     enrich.Clip(enrich.CollapseSpace(part), 200),
			EntityCode:      "RENIEC",
			TupaCode:        fmt.Sprintf("MANUAL-%s-%02d", enrich.ShortHash(filepath.Base(path)), step),
			Requirements:    []string{"Seguir instrucciones del manual"},
			Currency:        constants.DefaultCurrency,
			ProcessingTime:  "Según manual",
			Channels:        []string{constants.ChannelVirtual, constants.ChannelPresencial},
			Category:        string(constants.Consulta),
			Subcategory:     "manual",
			DifficultyLevel: string(constants.Easy),
			SourceURL:       enrich.DocumentURL(path),
			Keywords:        []string{"manual", "procedimiento", "guia"},
		})
	}
	return out
}

var registroRequirements = []string{
	"Documento de identidad vigente",
	"Formulario de solicitud",
	"Comprobante de pago",
	"Presencia personal del solicitante",
}

var registroRecords = []struct {
	code, name, description, duration string
	cost                              float64
}{
	{"RENIEC-INSC-001", "Inscripción de Nacimiento", "Registro de nacimiento en el Registro Nacional de Identificación", "30 días", 0},
	{"RENIEC-RECT-001", "Rectificación de Datos en Registro", "Corrección de datos erróneos en registros de identificación", "60 días", 50},
	{"RENIEC-CERT-001", "Certificado de Nacimiento", "Emisión de certificado de nacimiento del Registro Civil", "1 día", 15},
}

// RegistroRecords returns the curated civil-registry records that stand in
// for the national registry document, whose scanned pages carry no text.
func RegistroRecords(path string) []entity.Procedure {
	out := make([]entity.Procedure, 0, len(registroRecords))
	for _, r := range registroRecords {
		out = append(out, entity.Procedure{
			Name:            r.name,
			Description:     r.description,
			EntityCode:      "RENIEC",
			TupaCode:        r.code,
			Requirements:    append([]string(nil), registroRequirements...),
			Cost:            r.cost,
			Currency:        constants.DefaultCurrency,
			ProcessingTime:  r.duration,
			LegalBasis:      []string{"Ley Nº 26497 - Ley Orgánica del RENIEC"},
			Channels:        []string{constants.ChannelPresencial},
			Category:        string(constants.Identidad),
			Subcategory:     "registro",
			DifficultyLevel: string(constants.Medium),
			SourceURL:       enrich.FileURL(path),
			Keywords:        []string{"reniec", "registro", "identificacion", "civil"},
		})
	}
	return out
}
