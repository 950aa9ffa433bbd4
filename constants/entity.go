package constants

import "strings"

// KnownEntity describes a government body the pipeline recognises.
type KnownEntity struct {
	Code        string
	Name        string
	Description string
	Website     string
	Phone       string
	Email       string
	Address     string
}

const (
	SectorNacional = "nacional"
	GenericEntity  = "GOB"
)

var knownEntities = map[string]KnownEntity{
	"SUNAT": {
		Code:        "SUNAT",
		Name:        "SUNAT",
		Description: "Superintendencia Nacional de Aduanas y de Administración Tributaria",
		Website:     "https://www.sunat.gob.pe",
		Phone:       "0-801-12-100",
		Email:       "consultas@sunat.gob.pe",
		Address:     "Av. Garcilaso de la Vega 1472, Lima",
	},
	"RENIEC": {
		Code:        "RENIEC",
		Name:        "RENIEC",
		Description: "Registro Nacional de Identificación y Estado Civil",
		Website:     "https://www.reniec.gob.pe",
		Phone:       "(01) 315-2700",
		Email:       "consultas@reniec.gob.pe",
		Address:     "Jr. Bolivia 109, Lima",
	},
	"SUNARP": {
		Code:        "SUNARP",
		Name:        "SUNARP",
		Description: "Superintendencia Nacional de los Registros Públicos",
		Website:     "https://www.sunarp.gob.pe",
		Phone:       "(01) 311-2360",
		Email:       "consultas@sunarp.gob.pe",
		Address:     "Av. Primavera 1878, Santiago de Surco",
	},
	"MINSA": {
		Code:        "MINSA",
		Name:        "MINSA",
		Description: "Ministerio de Salud",
		Website:     "https://www.gob.pe/minsa",
		Phone:       "113",
		Address:     "Av. Salaverry 801, Jesús María",
	},
	"MTC": {
		Code:        "MTC",
		Name:        "MTC",
		Description: "Ministerio de Transportes y Comunicaciones",
		Website:     "https://www.gob.pe/mtc",
		Phone:       "(01) 615-7800",
		Address:     "Jr. Zorritos 1203, Lima",
	},
	"MUNI": {
		Code:        "MUNI",
		Name:        "Municipalidad",
		Description: "Gobierno local",
		Website:     "https://www.municap.com",
	},
	GenericEntity: {
		Code:        GenericEntity,
		Name:        "Gobierno del Perú",
		Description: "Plataforma digital única del Estado peruano",
		Website:     "https://www.gob.pe",
	},
}

// LookupEntity returns the directory entry for code. Unknown codes get a
// minimal entry so callers can always create the row.
func LookupEntity(code string) (KnownEntity, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if e, ok := knownEntities[code]; ok {
		return e, true
	}
	return KnownEntity{Code: code, Name: code, Description: "Entidad " + code}, false
}
