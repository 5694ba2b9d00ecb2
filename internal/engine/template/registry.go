// internal/engine/template/registry.go
package template

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xeipuuv/gojsonschema"

	"license-alert-engine/internal/models"
)

// registrySchema validates template registry files before they are trusted.
const registrySchema = `{
	"type": "object",
	"required": ["version", "templates"],
	"properties": {
		"version": {"type": "string"},
		"templates": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "type", "body"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"type": {"type": "string", "minLength": 1},
					"body": {"type": "string", "minLength": 1},
					"variables": {
						"type": "array",
						"items": {"type": "string"}
					}
				}
			}
		}
	}
}`

// Registry is a file-backed template source. The record store remains the
// primary template lookup; a registry file serves hosts that deploy
// templates alongside the binary.
type Registry struct {
	Version   string            `json:"version"`
	Templates []models.Template `json:"templates"`

	byID map[string]models.Template
}

// LoadRegistry reads and schema-validates a template registry file.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	schemaLoader := gojsonschema.NewStringLoader(registrySchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return nil, fmt.Errorf("template registry validation failed: %v", errs)
	}

	var reg Registry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, err
	}

	reg.byID = make(map[string]models.Template, len(reg.Templates))
	for _, t := range reg.Templates {
		reg.byID[t.ID] = t
	}
	return &reg, nil
}

// Get returns the template with the given id, or false.
func (r *Registry) Get(id string) (models.Template, bool) {
	t, ok := r.byID[id]
	return t, ok
}
