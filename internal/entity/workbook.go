package entity

// SheetSummary holds what the spreadsheet scan found on one sheet.
type SheetSummary struct {
	Name        string   `json:"name"`
	Rows        int      `json:"rows"`
	Columns     int      `json:"columns"`
	ColumnNames []string `json:"column_names"`
	Procedures  []string `json:"procedures"`
	Locations   []string `json:"locations"`
	Contacts    []string `json:"contacts"`
}

// WorkbookSummary aggregates a spreadsheet file.
type WorkbookSummary struct {
	FileName          string         `json:"file_name"`
	Path              string         `json:"path"`
	Sheets            []SheetSummary `json:"sheets"`
	TotalRows         int            `json:"total_rows"`
	ProceduresFound   []string       `json:"procedures_found"`
	EntitiesMentioned []string       `json:"entities_mentioned"`
	DocumentType      string         `json:"document_type"`
	LocationsFound    []string       `json:"locations_found"`
	ContactInfo       []string       `json:"contact_info"`
}
