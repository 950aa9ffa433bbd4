package entity

// SaveStats is the outcome of one batch upsert.
type SaveStats struct {
	Total   int `json:"total"`
	Saved   int `json:"saved"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}

// CatalogStats summarizes the persisted catalog.
type CatalogStats struct {
	TotalProcedures int            `json:"total_procedures"`
	EntitiesCount   int            `json:"entities_count"`
	ByEntity        map[string]int `json:"by_entity"`
	ByCategory      map[string]int `json:"by_category"`
}

// IntegrityReport lists data quality findings in the persisted catalog.
type IntegrityReport struct {
	TotalProcedures     int             `json:"total_procedures"`
	EntitiesCount       int             `json:"entities_count"`
	WithoutRequirements []string        `json:"without_requirements"`
	InvalidCosts        []string        `json:"invalid_costs"`
	FreeFlagMismatch    []string        `json:"free_flag_mismatch"`
	EmptyEntities       []string        `json:"empty_entities"`
	NearDuplicates      []NearDuplicate `json:"near_duplicates"`
	SchemaErrors        []string        `json:"schema_errors,omitempty"`
}

// NearDuplicate is a pair of procedure names of the same entity that look alike.
type NearDuplicate struct {
	EntityCode string  `json:"entity_code"`
	First      string  `json:"first"`
	Second     string  `json:"second"`
	Similarity float64 `json:"similarity"`
}

// Issues counts all findings.
func (r IntegrityReport) Issues() int {
	return len(r.WithoutRequirements) + len(r.InvalidCosts) + len(r.FreeFlagMismatch) +
		len(r.EmptyEntities) + len(r.NearDuplicates) + len(r.SchemaErrors)
}
