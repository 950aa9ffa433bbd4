package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/tupa-scraper/constants"
	"github.com/joseph-ayodele/tupa-scraper/internal/common"
)

// FeedSchema returns the JSON-Schema the full feed must satisfy.
func FeedSchema() map[string]any {
	str := map[string]any{"type": "string"}
	strList := map[string]any{"type": "array", "items": str}

	procedure := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"name":             map[string]any{"type": "string", "minLength": 1, "maxLength": constants.MaxNameLength},
			"description":      str,
			"entity_name":      str,
			"entity_code":      map[string]any{"type": "string", "minLength": 1},
			"tupa_code":        map[string]any{"type": "string", "minLength": 1},
			"requirements":     strList,
			"cost":             map[string]any{"type": "number", "minimum": 0},
			"currency":         map[string]any{"type": "string", "pattern": `^[A-Z]{3}$`},
			"processing_time":  str,
			"legal_basis":      strList,
			"channels":         map[string]any{"type": "array", "items": str, "minItems": 1},
			"category":         map[string]any{"type": "string", "minLength": 1},
			"subcategory":      str,
			"is_free":          map[string]any{"type": "boolean"},
			"is_online":        map[string]any{"type": "boolean"},
			"difficulty_level": map[string]any{"enum": []any{string(constants.Easy), string(constants.Medium), string(constants.Hard)}},
			"source_url":       map[string]any{"type": "string", "minLength": 1},
			"keywords":         map[string]any{"type": "array", "items": str, "maxItems": constants.MaxKeywords},
		},
		"required": []any{"name", "entity_code", "tupa_code", "requirements", "cost", "currency",
			"category", "is_free", "is_online", "difficulty_level", "source_url"},
		// is_free must mirror cost == 0
		"if": map[string]any{
			"properties": map[string]any{"cost": map[string]any{"maximum": 0}},
		},
		"then": map[string]any{
			"properties": map[string]any{"is_free": map[string]any{"const": true}},
		},
		"else": map[string]any{
			"properties": map[string]any{"is_free": map[string]any{"const": false}},
		},
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"metadata": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"extraction_date":  map[string]any{"type": "string", "minLength": 1},
					"total_procedures": map[string]any{"type": "integer", "minimum": 0},
					"source_files":     strList,
					"entities":         strList,
					"categories":       strList,
				},
				"required": []any{"extraction_date", "total_procedures"},
			},
			"procedures": map[string]any{"type": "array", "items": procedure},
		},
		"required": []any{"metadata", "procedures"},
	}
}

// ValidateFeed checks data against FeedSchema and the declared total.
func ValidateFeed(data []byte) error {
	b, err := json.Marshal(FeedSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("feed.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("feed.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return common.NewAppError(common.CodeExport, "feed is not valid JSON", err)
	}
	if err := schema.Validate(v); err != nil {
		return common.NewAppError(common.CodeExport, "feed does not match schema", err)
	}

	var head struct {
		Metadata   FeedMetadata      `json:"metadata"`
		Procedures []json.RawMessage `json:"procedures"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return common.NewAppError(common.CodeExport, "decode feed", err)
	}
	if head.Metadata.TotalProcedures != len(head.Procedures) {
		return common.NewAppError(common.CodeExport,
			fmt.Sprintf("total_procedures is %d but feed has %d records", head.Metadata.TotalProcedures, len(head.Procedures)),
			common.ErrValidation)
	}
	return nil
}

// ValidateFeedFile reads and validates a full feed written by Write.
func ValidateFeedFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return common.NewAppError(common.CodeExport, "read "+path, err)
	}
	return ValidateFeed(data)
}
