package web

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/enrich"
	"github.com/joseph-ayodele/tupa-scraper/internal/entity"
)

var (
	sunatTitleSelectors       = []string{"h1", "h2", ".titulo", ".procedimiento-titulo"}
	sunatDescriptionSelectors = []string{".descripcion", ".contenido", ".resumen", "p"}
	gobTitleSelectors         = []string{"h1", ".title", ".procedure-title", "title"}
	gobDescriptionSelectors   = []string{".description", ".procedure-description", ".content-description", ".summary"}
	gobInfoSelectors          = `div[class*="info"], section[class*="info"], [class*="requirement"], [class*="requisit"], [class*="cost"], [class*="costo"], [class*="time"], [class*="plazo"]`
	reniecTitleSelectors      = []string{"h1", "h2", ".titulo"}
	genericTitleSelectors     = []string{"h1", "h2", "title"}
	genericDescSelectors      = []string{".description", ".descripcion", "p"}
)

var sunatSubcategories = []string{"importacion", "exportacion", "perfeccionamiento", "deposito", "transito", "especiales"}

const (
	reniecDefaultFee  = 32.20
	reniecDefaultTime = "48 horas"
	reniecLaw         = "Ley Nº 26497 - Ley Orgánica del RENIEC"
	mtcLaw            = "Ley Nº 27791 - Ley de Organización y Funciones del MTC"
)

var reniecDuplicateRequirements = []string{
	"DNI deteriorado o denuncia policial",
	"Recibo de pago por derecho de trámite",
	"Foto actual tamaño carné",
	"Presencia personal del solicitante",
}

func extractSunat(pc *PageContext) (*entity.Procedure, bool) {
	name := firstText(pc.Doc, sunatTitleSelectors, 5, constants.MaxNameLength)
	if name == "" {
		return nil, false
	}
	description := firstText(pc.Doc, sunatDescriptionSelectors, 20, 500)
	code, ok := enrich.ExtractTupaCode(pc.Text)
	if !ok {
		code = enrich.SyntheticWebCode(pc.URL.String())
	}
	cost, _ := enrich.NormalizeCost(pc.Text, pc.UIT)
	requirements := requirementsNear(pc.Doc, 10, 200, 8)
	if len(requirements) == 0 {
		requirements = contentListItems(pc.Doc, 10, 200, 8)
	}
	subcategory := sunatSubcategory(pc.URL.String())

	fixed := []string{"sunat", "aduanas", "tributario"}
	if subcategory != "general" {
		fixed = append(fixed, subcategory)
	}
	return &entity.Procedure{
		Name:            name,
		Description:     description,
		EntityCode:      "SUNAT",
		TupaCode:        code,
		Requirements:    requirements,
		Cost:            cost.Amount,
		Currency:        cost.Currency,
		ProcessingTime:  enrich.ProcessingTime(pc.Text),
		LegalBasis:      enrich.ExtractLegalBasis(pc.Text, 2),
		Channels:        []string{constants.ChannelPresencial, constants.ChannelVirtual},
		Category:        string(enrich.ClassifyWith(constants.SunatCategoryRules, constants.Tributario, name, description, pc.URL.Path)),
		Subcategory:     subcategory,
		DifficultyLevel: string(enrich.AssessDifficulty(requirements, cost.Amount, enrich.SunatThresholds)),
		Keywords:        enrich.MergeKeywords(fixed, enrich.ExtractKeywords(name+" "+description, constants.MaxKeywords), constants.MaxKeywords),
	}, true
}

func sunatSubcategory(rawURL string) string {
	f := enrich.Fold(rawURL)
	for _, s := range sunatSubcategories {
		if strings.Contains(f, s) {
			return s
		}
	}
	return "general"
}

func extractGobPe(pc *PageContext) (*entity.Procedure, bool) {
	name := cleanTitle(firstText(pc.Doc, gobTitleSelectors, 5, constants.MaxNameLength))
	if name == "" {
		return nil, false
	}
	description := firstText(pc.Doc, gobDescriptionSelectors, 20, 500)
	if description == "" {
		description = metaDescription(pc.Doc)
	}
	code, entityName := inferEntity(pc)

	var (
		cost         enrich.Cost
		costFound    bool
		duration     string
		requirements []string
	)
	pc.Doc.Find(gobInfoSelectors).Each(func(_ int, s *goquery.Selection) {
		text := BlockText(s)
		if !costFound && enrich.ContainsAny(text, "costo", "precio", "pago", "tasa") {
			cost, costFound = enrich.NormalizeCost(text, pc.UIT)
		}
		if duration == "" && enrich.ContainsAny(text, "tiempo", "plazo", "duracion") {
			duration, _ = enrich.FindProcessingTime(text)
		}
		if enrich.ContainsAny(text, "requisito") {
			s.Find("li").Each(func(_ int, li *goquery.Selection) {
				requirements = append(requirements, li.Text())
			})
		}
	})
	if !costFound {
		cost, _ = enrich.NormalizeCost(pc.Text, pc.UIT)
	}
	if duration == "" {
		duration = enrich.ProcessingTime(pc.Text)
	}
	if len(requirements) == 0 {
		requirements = requirementsNear(pc.Doc, 5, 200, constants.MaxRequirements)
	}
	if len(requirements) == 0 {
		requirements = contentListItems(pc.Doc, 5, 200, 6)
	}
	requirements = enrich.DedupCap(requirements, constants.MaxRequirements)

	return &entity.Procedure{
		Name:            name,
		Description:     description,
		EntityName:      entityName,
		EntityCode:      code,
		TupaCode:        enrich.SyntheticWebCode(pc.URL.String()),
		Requirements:    requirements,
		Cost:            cost.Amount,
		Currency:        cost.Currency,
		ProcessingTime:  duration,
		LegalBasis:      enrich.ExtractLegalRefs(pc.Text),
		Channels:        enrich.DetectChannels(pc.Text),
		Category:        string(enrich.ClassifyCategory(name, description, pc.URL.Path)),
		DifficultyLevel: string(enrich.AssessDifficulty(requirements, cost.Amount, enrich.GovPortalThresholds)),
	}, true
}

func extractReniec(pc *PageContext) (*entity.Procedure, bool) {
	name := firstText(pc.Doc, reniecTitleSelectors, 5, constants.MaxNameLength)
	if name == "" {
		return nil, false
	}
	description := firstText(pc.Doc, []string{".descripcion", ".contenido"}, 20, 500)
	if description == "" {
		description = "Trámite de identificación"
	}

	cost, ok := enrich.NormalizeCost(pc.Text, pc.UIT)
	if !ok {
		cost = enrich.Cost{Amount: reniecDefaultFee, Currency: constants.DefaultCurrency, Source: enrich.CostNone}
	}
	duration, ok := enrich.FindProcessingTime(pc.Text)
	if !ok {
		duration = reniecDefaultTime
	}
	requirements := requirementsNear(pc.Doc, 5, 200, constants.MaxRequirements)
	if len(requirements) == 0 {
		requirements = contentListItems(pc.Doc, 5, 200, 6)
	}
	if len(requirements) == 0 && enrich.ContainsAny(name, "duplicado") {
		requirements = append([]string(nil), reniecDuplicateRequirements...)
	}
	legal := enrich.ExtractLegalBasis(pc.Text, 2)
	if len(legal) == 0 {
		legal = []string{reniecLaw}
	}

	return &entity.Procedure{
		Name:            name,
		Description:     description,
		EntityCode:      "RENIEC",
		TupaCode:        enrich.SyntheticWebCode(pc.URL.String()),
		Requirements:    requirements,
		Cost:            cost.Amount,
		Currency:        cost.Currency,
		ProcessingTime:  duration,
		LegalBasis:      legal,
		Channels:        enrich.DetectChannels(pc.Text),
		Category:        string(enrich.ClassifyWith(constants.GenericCategoryRules, constants.Identidad, name, description)),
		Subcategory:     "dni",
		DifficultyLevel: string(enrich.AssessDifficulty(requirements, cost.Amount, enrich.GenericThresholds)),
		Keywords:        enrich.MergeKeywords([]string{"dni", "reniec", "identificacion"}, enrich.ExtractKeywords(name, constants.MaxKeywords), constants.MaxKeywords),
	}, true
}

// extractMTC maps the MTC digital TUPA portal onto one curated record; the
// portal itself lists procedures behind a search application.
func extractMTC(pc *PageContext) (*entity.Procedure, bool) {
	name := firstText(pc.Doc, []string{"h1", ".title"}, 5, constants.MaxNameLength)
	if name == "" {
		name = "TUPA Digital MTC"
	}
	return &entity.Procedure{
		Name:            name,
		Description:     "TUPA Digital del Ministerio de Transportes y Comunicaciones",
		EntityCode:      "MTC",
		TupaCode:        "MTC-DIGITAL",
		Requirements:    []string{"Consultar en plataforma digital"},
		Currency:        constants.DefaultCurrency,
		ProcessingTime:  "Consulta inmediata",
		LegalBasis:      []string{mtcLaw},
		Channels:        []string{constants.ChannelVirtual},
		Category:        string(constants.Vehicular),
		Subcategory:     "tupa",
		DifficultyLevel: string(constants.Easy),
		Keywords:        []string{"mtc", "transporte", "tupa", "digital"},
	}, true
}

func extractGeneric(pc *PageContext) (*entity.Procedure, bool) {
	name := cleanTitle(firstText(pc.Doc, genericTitleSelectors, 5, constants.MaxNameLength))
	if name == "" {
		return nil, false
	}
	description := firstText(pc.Doc, genericDescSelectors, 20, 500)
	if description == "" {
		description = "Procedimiento gubernamental"
	}
	code, entityName := inferEntity(pc)
	cost, _ := enrich.NormalizeCost(pc.Text, pc.UIT)
	requirements := requirementsNear(pc.Doc, 5, 200, 6)
	if len(requirements) == 0 {
		requirements = contentListItems(pc.Doc, 5, 200, 6)
	}
	tupa, ok := enrich.ExtractTupaCode(pc.Text)
	if !ok {
		tupa = enrich.SyntheticWebCode(pc.URL.String())
	}

	return &entity.Procedure{
		Name:            name,
		Description:     description,
		EntityName:      entityName,
		EntityCode:      code,
		TupaCode:        tupa,
		Requirements:    requirements,
		Cost:            cost.Amount,
		Currency:        cost.Currency,
		ProcessingTime:  enrich.ProcessingTime(pc.Text),
		LegalBasis:      enrich.ExtractLegalRefs(pc.Text),
		Channels:        enrich.DetectChannels(pc.Text),
		Category:        string(enrich.ClassifyCategory(name, description, pc.URL.Path)),
		DifficultyLevel: string(enrich.AssessDifficulty(requirements, cost.Amount, enrich.GenericThresholds)),
	}, true
}
