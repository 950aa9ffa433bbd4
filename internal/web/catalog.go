package web

import (
	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/enrich"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

type knownProcedure struct {
	code         string
	name         string
	description  string
	requirements []string
	cost         float64
	duration     string
}

type agencyCatalog struct {
	entityCode  string
	sourceURL   string
	legalBasis  string
	channels    []string
	category    constants.Category
	subcategory string
	difficulty  constants.Difficulty
	keywords    []string
	procedures  []knownProcedure
}

// Records for procedures that the agency sites only expose behind search
// applications. They are refreshed by hand against the published TUPA.
var knownCatalogs = []agencyCatalog{
	{
		entityCode:  "SUNAT",
		sourceURL:   "https://www.sunat.gob.pe",
		legalBasis:  "Decreto Legislativo N° 816 - Código Tributario",
		channels:    []string{constants.ChannelPresencial, constants.ChannelVirtual},
		category:    constants.Tributario,
		subcategory: "ruc",
		difficulty:  constants.Easy,
		keywords:    []string{"ruc", "tributario", "registro", "contribuyente"},
		procedures: []knownProcedure{
			{"SUNAT-001", "Inscripción al RUC - Persona Natural",
				"Registro Único del Contribuyente para personas naturales que realizan actividades económicas",
				[]string{
					"DNI del solicitante vigente",
					"Recibo de agua, luz o teléfono (no mayor a 2 meses)",
					"Contrato de alquiler o título de propiedad del local",
					"Declaración jurada de actividades económicas",
				}, 0, "Inmediato"},
			{"SUNAT-002", "Inscripción al RUC - Persona Jurídica",
				"Registro de empresas y sociedades en el RUC",
				[]string{
					"Escritura pública de constitución",
					"DNI del representante legal",
					"Recibo de servicios del domicilio fiscal",
					"Vigencia de poder del representante legal",
				}, 0, "1 día hábil"},
			{"SUNAT-003", "Suspensión Temporal del RUC",
				"Suspensión de actividades económicas en el RUC",
				[]string{
					"RUC activo y al día en obligaciones",
					"Declaración jurada de suspensión",
					"No tener deudas tributarias pendientes",
				}, 0, "Inmediato"},
		},
	},
	{
		entityCode:  "RENIEC",
		sourceURL:   "https://www.reniec.gob.pe",
		legalBasis:  reniecLaw,
		channels:    []string{constants.ChannelPresencial},
		category:    constants.Identidad,
		subcategory: "dni",
		difficulty:  constants.Easy,
		keywords:    []string{"dni", "duplicado", "identificacion", "reniec"},
		procedures: []knownProcedure{
			{"RENIEC-001", "Duplicado de DNI por Deterioro",
				"Obtención de un nuevo DNI cuando el documento se encuentra deteriorado o ilegible",
				[]string{
					"DNI deteriorado original",
					"Recibo de pago por derecho de trámite",
					"Declaración jurada de deterioro",
					"Foto actual tamaño carné",
				}, reniecDefaultFee, reniecDefaultTime},
			{"RENIEC-002", "Duplicado de DNI por Pérdida",
				"Emisión de nuevo DNI por pérdida del documento original",
				[]string{
					"Denuncia policial por pérdida",
					"Recibo de pago por derecho de trámite",
					"Declaración jurada de pérdida",
					"Partida de nacimiento certificada",
					"Foto actual tamaño carné",
				}, reniecDefaultFee, "7 días hábiles"},
			{"RENIEC-003", "Primera Obtención de DNI",
				"Obtención del primer DNI para mayores de edad",
				[]string{
					"Partida de nacimiento certificada",
					"Recibo de pago por derecho de trámite",
					"Presencia personal del solicitante",
					"Dos testigos con DNI vigente",
				}, reniecDefaultFee, "7 días hábiles"},
		},
	},
	{
		entityCode:  "SUNARP",
		sourceURL:   "https://www.sunarp.gob.pe",
		legalBasis:  "Ley Nº 26366 - Ley de creación del SUNARP",
		channels:    []string{constants.ChannelPresencial, constants.ChannelVirtual},
		category:    constants.Empresarial,
		subcategory: "registro",
		difficulty:  constants.Medium,
		keywords:    []string{"registro", "publicos", "empresa", "propiedad"},
		procedures: []knownProcedure{
			{"SUNARP-001", "Inscripción de Constitución de SAC",
				"Registro de constitución de Sociedad Anónima Cerrada en Registros Públicos",
				[]string{
					"Minuta de constitución",
					"Escritura pública de constitución",
					"Pago de derechos registrales",
					"Formulario de solicitud registral",
					"Copia del RUC de la empresa",
				}, 65, "7 días hábiles"},
			{"SUNARP-002", "Inscripción de Transferencia de Propiedad Vehicular",
				"Registro de cambio de propietario de vehículo automotor",
				[]string{
					"Tarjeta de propiedad original",
					"DNI del vendedor y comprador",
					"Contrato de compraventa",
					"Certificado de gravámenes",
					"Pago de derechos registrales",
				}, 38, "5 días hábiles"},
			{"SUNARP-003", "Búsqueda de Antecedentes Registrales",
				"Consulta de información registral de personas naturales o jurídicas",
				[]string{
					"Solicitud de búsqueda",
					"Datos de la persona o empresa a consultar",
					"Pago de tasa correspondiente",
				}, 15, "Inmediato"},
		},
	},
}

// KnownProcedures returns the curated agency records, finalized.
func KnownProcedures() ([]entity.Procedure, error) {
	var out []entity.Procedure
	for _, c := range knownCatalogs {
		for _, kp := range c.procedures {
			p := entity.Procedure{
				Name:            kp.name,
				Description:     kp.description,
				EntityCode:      c.entityCode,
				TupaCode:        kp.code,
				Requirements:    append([]string(nil), kp.requirements...),
				Cost:            kp.cost,
				Currency:        constants.DefaultCurrency,
				ProcessingTime:  kp.duration,
				LegalBasis:      []string{c.legalBasis},
				Channels:        append([]string(nil), c.channels...),
				Category:        string(c.category),
				Subcategory:     c.subcategory,
				DifficultyLevel: string(c.difficulty),
				SourceURL:       c.sourceURL,
				Keywords:        append([]string(nil), c.keywords...),
			}
			if err := enrich.Finalize(&p); err != nil {
				return nil, err
			}
			out = append(out, p)
		}
	}
	return out, nil
}
