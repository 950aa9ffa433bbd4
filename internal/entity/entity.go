package entity

import (
	"time"

	"github.com/google/uuid"
)

// Entity is a government body that owns procedures.
type Entity struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Code        string      `json:"code"`
	Sector      string      `json:"sector"`
	Description string      `json:"description"`
	Website     string      `json:"website"`
	ContactInfo ContactInfo `json:"contact_info"`
	CreatedAt   time.Time   `json:"created_at"`
}

// ContactInfo is stored as JSON on the entity row.
type ContactInfo struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// ProcedureMetadata is stored as JSON on each persisted procedure.
type ProcedureMetadata struct {
	SourceURL      string    `json:"source_url"`
	ScrapedAt      time.Time `json:"scraped_at"`
	ScraperVersion string    `json:"scraper_version"`
}

// StoredProcedure is a persisted procedure joined with its entity.
type StoredProcedure struct {
	ID        uuid.UUID `json:"id"`
	EntityID  uuid.UUID `json:"entity_id"`
	Procedure Procedure `json:"procedure"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
