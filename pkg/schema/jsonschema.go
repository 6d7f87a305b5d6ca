package schema

import "github.com/aretw0/radiolab/pkg/domain"

// JSONSchema renders the parameters of a tool as a JSON Schema object.
// Unknown arguments are rejected.
func JSONSchema(spec domain.ToolSpec) map[string]any {
	properties := make(map[string]any, len(spec.Params))
	required := []string{}
	for _, p := range spec.Params {
		properties[p.Name] = ParamSchema(p)
		if p.Required() {
			required = append(required, p.Name)
		}
	}

	doc := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		doc["required"] = required
	}
	return doc
}

// ParamSchema renders a single parameter.
func ParamSchema(p domain.ParamSpec) map[string]any {
	doc := map[string]any{"type": p.Type}
	if p.Description != "" {
		doc["description"] = p.Description
	}
	if len(p.Enum) > 0 {
		doc["enum"] = p.Enum
	}
	if p.Minimum != nil {
		doc["minimum"] = *p.Minimum
	}
	if p.Maximum != nil {
		doc["maximum"] = *p.Maximum
	}
	if p.MinItems != nil {
		doc["minItems"] = *p.MinItems
	}
	if p.MaxItems != nil {
		doc["maxItems"] = *p.MaxItems
	}
	if p.Items != nil {
		doc["items"] = ParamSchema(*p.Items)
	}
	if p.Default != nil {
		doc["default"] = p.Default
	}
	return doc
}
