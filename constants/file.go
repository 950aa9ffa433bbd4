package constants

import "strings"

// FileKind is the extractor family a document on disk is routed to.
type FileKind string

const (
	KindPDF         FileKind = "PDF"
	KindSpreadsheet FileKind = "SPREADSHEET"
	KindURLList     FileKind = "URL_LIST"
	KindUnknown     FileKind = ""
)

// AllowedExtensions holds the default allowed file extensions for document ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"xlsx": {},
	"xlsm": {},
	"txt":  {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToKind maps a normalized extension to the extractor that handles it.
func MapExtToKind(ext string) FileKind {
	switch NormalizeExt(ext) {
	case "pdf":
		return KindPDF
	case "xlsx", "xlsm":
		return KindSpreadsheet
	case "txt":
		return KindURLList
	default:
		return KindUnknown
	}
}
