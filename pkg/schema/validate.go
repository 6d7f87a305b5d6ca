package schema

import (
	"fmt"

	"github.com/aretw0/radiolab/pkg/domain"
	"github.com/xeipuuv/gojsonschema"
)

// Validate checks args against the JSON Schema of spec.
// Returns an *AggregateError with one ValidationError per failure.
func Validate(spec domain.ToolSpec, args map[string]any) error {
	if args == nil {
		args = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(JSONSchema(spec)),
		gojsonschema.NewGoLoader(args),
	)
	if err != nil {
		return fmt.Errorf("validate %s arguments: %w", spec.Name, err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]error, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		errs = append(errs, toValidationError(re))
	}
	return &AggregateError{Errors: errs}
}

func toValidationError(re gojsonschema.ResultError) *ValidationError {
	key := re.Field()
	var value any = re.Value()

	switch re.Type() {
	case "required", "additional_property_not_allowed":
		if prop, ok := re.Details()["property"].(string); ok {
			key = prop
		}
		value = nil
	}

	return &ValidationError{
		Key:    key,
		Reason: re.Description(),
		Value:  value,
	}
}

// ApplyDefaults returns a copy of args where every missing parameter that has
// a default carries a copy of that default. args itself is not modified.
func ApplyDefaults(spec domain.ToolSpec, args map[string]any) map[string]any {
	out := make(map[string]any, len(spec.Params))
	for k, v := range args {
		out[k] = v
	}
	for _, p := range spec.Params {
		if _, ok := out[p.Name]; ok || p.Default == nil {
			continue
		}
		out[p.Name] = cloneValue(p.Default)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []float64:
		return append([]float64(nil), val...)
	case []int:
		return append([]int(nil), val...)
	case []string:
		return append([]string(nil), val...)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
