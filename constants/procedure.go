package constants

// Difficulty is the coarse effort rating of a procedure.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Delivery channels.
const (
	ChannelPresencial = "Presencial"
	ChannelVirtual    = "Virtual"
	ChannelTelefonico = "Telefónico"
	ChannelCorreo     = "Correo electrónico"
)

const (
	DefaultCurrency       = "PEN"
	DefaultProcessingTime = "No especificado"
	DefaultUITValue       = 5150.0
	ScraperVersion        = "1.0"

	MaxRequirements = 10
	MaxKeywords     = 10
	MaxNameLength   = 200
)

// DocumentKind is the document subtype chosen from a PDF file name.
type DocumentKind string

const (
	DocTupaIntegral DocumentKind = "tupa_integral"
	DocTasas        DocumentKind = "tasas"
	DocManual       DocumentKind = "manual"
	DocRegistro     DocumentKind = "registro"
	DocGeneric      DocumentKind = "generic"
)
