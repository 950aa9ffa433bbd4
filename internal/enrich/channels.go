package enrich

import (
	"github.com/joseph-ayodele/tupa-scraper/constants"
)

var onlineMarkers = []string{"virtual", "linea", "web", "digital"}

// DetectChannels lists delivery channels mentioned in text, defaulting to Presencial.
func DetectChannels(text string) []string {
	var channels []string
	if ContainsAny(text, "presencial", "oficina") {
		channels = append(channels, constants.ChannelPresencial)
	}
	if ContainsAny(text, "virtual", "en línea", "en linea", "web") {
		channels = append(channels, constants.ChannelVirtual)
	}
	if ContainsAny(text, "teléfono", "telefónico", "telefonica") {
		channels = append(channels, constants.ChannelTelefonico)
	}
	if ContainsAny(text, "correo", "email", "e-mail") {
		channels = append(channels, constants.ChannelCorreo)
	}
	if len(channels) == 0 {
		return []string{constants.ChannelPresencial}
	}
	return channels
}

// IsOnline reports whether any channel is virtual-capable.
func IsOnline(channels []string) bool {
	for _, c := range channels {
		if ContainsAny(c, onlineMarkers...) {
			return true
		}
	}
	return false
}
