package wire

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// payloadSchema is the contract the ticketing backend publishes for the
// submission payload. CheckPayload runs it as a last gate before export so a
// mapping regression here fails loudly instead of at the backend.
const payloadSchema = `{
	"type": "object",
	"required": ["metadata", "graph"],
	"properties": {
		"metadata": {
			"type": "object",
			"required": ["name", "description", "category", "sub_category", "department"],
			"properties": {
				"name":         {"type": "string", "minLength": 1, "maxLength": 64},
				"description":  {"type": "string", "minLength": 1, "maxLength": 256},
				"category":     {"type": "string", "minLength": 1, "maxLength": 64},
				"sub_category": {"type": "string", "minLength": 1, "maxLength": 64},
				"department":   {"type": "string", "minLength": 1, "maxLength": 64},
				"urgent_sla":   {"type": "string", "pattern": "^PT([0-9]+H)?([0-9]+M)?$"},
				"high_sla":     {"type": "string", "pattern": "^PT([0-9]+H)?([0-9]+M)?$"},
				"medium_sla":   {"type": "string", "pattern": "^PT([0-9]+H)?([0-9]+M)?$"},
				"low_sla":      {"type": "string", "pattern": "^PT([0-9]+H)?([0-9]+M)?$"}
			}
		},
		"graph": {
			"type": "object",
			"required": ["nodes", "edges"],
			"properties": {
				"nodes": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["id", "name", "role", "weight", "design", "is_start", "is_end"],
						"properties": {
							"id":      {"type": "string", "minLength": 1},
							"name":    {"type": "string", "minLength": 1},
							"role":    {"type": "string"},
							"weight":  {"type": "number", "minimum": 0, "maximum": 1},
							"design": {
								"type": "object",
								"required": ["x", "y"],
								"properties": {
									"x": {"type": "number"},
									"y": {"type": "number"}
								}
							},
							"is_start": {"type": "boolean"},
							"is_end":   {"type": "boolean"}
						}
					}
				},
				"edges": {
					"type": "array",
					"items": {
						"type": "object",
						"required": ["id", "from", "to", "name"],
						"properties": {
							"id":   {"type": "string", "minLength": 1},
							"from": {"type": "string", "minLength": 1},
							"to":   {"type": "string", "minLength": 1},
							"name": {"type": "string", "minLength": 1}
						}
					}
				}
			}
		}
	}
}`

// CheckPayload validates a payload against the backend's published schema
// and returns one message per violation.
func CheckPayload(p *Payload) ([]string, error) {
	schemaLoader := gojsonschema.NewStringLoader(payloadSchema)
	payloadLoader := gojsonschema.NewGoLoader(p)

	result, err := gojsonschema.Validate(schemaLoader, payloadLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to run payload schema validation: %w", err)
	}

	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}

	return violations, nil
}
