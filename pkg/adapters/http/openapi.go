package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aretw0/radiolab/pkg/domain"
	"github.com/getkin/kin-openapi/openapi3"
)

// BuildOpenAPI describes the tool server endpoints. Each tool's argument
// object is published as a component schema named "<tool>_arguments".
func BuildOpenAPI(ctx context.Context, specs []domain.ToolSpec, version string) (*openapi3.T, error) {
	if version == "" {
		version = "dev"
	}

	schemas := openapi3.Schemas{}
	toolNames := make([]any, 0, len(specs))
	for _, spec := range specs {
		schemas[spec.Name+"_arguments"] = ArgumentsSchema(spec).NewRef()
		toolNames = append(toolNames, spec.Name)
	}

	param := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema()).
		WithProperty("type", openapi3.NewStringSchema()).
		WithProperty("description", openapi3.NewStringSchema()).
		WithAnyAdditionalProperties()

	listing := openapi3.NewObjectSchema().
		WithProperty("server_id", openapi3.NewStringSchema()).
		WithProperty("tools", openapi3.NewArraySchema().WithItems(
			openapi3.NewObjectSchema().
				WithProperty("name", openapi3.NewStringSchema()).
				WithProperty("description", openapi3.NewStringSchema()).
				WithProperty("parameters", openapi3.NewArraySchema().WithItems(param)).
				WithProperty("inputSchema", openapi3.NewObjectSchema().WithAnyAdditionalProperties()),
		)).
		WithRequired([]string{"server_id", "tools"})

	callRequest := openapi3.NewObjectSchema().
		WithProperty("name", openapi3.NewStringSchema().WithEnum(toolNames...)).
		WithProperty("arguments", openapi3.NewObjectSchema().WithAnyAdditionalProperties()).
		WithRequired([]string{"name"})

	callResult := openapi3.NewObjectSchema().
		WithPropertyRef("result", openapi3.NewSchema().NewRef()).
		WithProperty("error", openapi3.NewStringSchema())

	errorBody := openapi3.NewObjectSchema().
		WithProperty("error", openapi3.NewStringSchema()).
		WithRequired([]string{"error"})

	listOp := openapi3.NewOperation()
	listOp.OperationID = "listTools"
	listOp.Summary = "List the tool catalog of this server instance"
	listOp.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Tool catalog").WithJSONSchema(listing))

	callOp := openapi3.NewOperation()
	callOp.OperationID = "callTool"
	callOp.Summary = "Invoke one tool"
	callOp.Parameters = openapi3.Parameters{
		{Value: openapi3.NewHeaderParameter(HeaderServerID).
			WithDescription("Server instance the caller's catalog came from").
			WithSchema(openapi3.NewStringSchema())},
	}
	callOp.RequestBody = &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchema(callRequest),
	}
	callOp.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Tool result").WithJSONSchema(callResult))
	for status, desc := range map[int]string{
		http.StatusBadRequest:          "Malformed request body",
		http.StatusNotFound:            "Unknown tool",
		http.StatusConflict:            "Server instance mismatch",
		http.StatusUnprocessableEntity: "Arguments do not match the tool schema",
		http.StatusInternalServerError: "Tool execution failed",
	} {
		callOp.AddResponse(status, openapi3.NewResponse().WithDescription(desc).WithJSONSchema(errorBody))
	}

	healthOp := openapi3.NewOperation()
	healthOp.OperationID = "getHealth"
	healthOp.AddResponse(http.StatusOK, openapi3.NewResponse().WithDescription("Server is up").
		WithJSONSchema(openapi3.NewObjectSchema().WithAnyAdditionalProperties()))

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       "radiolab tool server",
			Description: "Wireless simulation tools served over HTTP.",
			Version:     version,
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath("/tools", &openapi3.PathItem{Get: listOp}),
			openapi3.WithPath("/tools/call", &openapi3.PathItem{Post: callOp}),
			openapi3.WithPath("/health", &openapi3.PathItem{Get: healthOp}),
		),
		Components: &openapi3.Components{Schemas: schemas},
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}
	return doc, nil
}

// ArgumentsSchema renders a tool's parameters as an OpenAPI schema.
func ArgumentsSchema(spec domain.ToolSpec) *openapi3.Schema {
	s := openapi3.NewObjectSchema().WithoutAdditionalProperties()
	s.Description = spec.Description
	var required []string
	for _, p := range spec.Params {
		s.WithProperty(p.Name, paramSchema(p))
		if p.Required() {
			required = append(required, p.Name)
		}
	}
	if len(required) > 0 {
		s.WithRequired(required)
	}
	return s
}

func paramSchema(p domain.ParamSpec) *openapi3.Schema {
	var s *openapi3.Schema
	switch p.Type {
	case domain.TypeString:
		s = openapi3.NewStringSchema()
	case domain.TypeInteger:
		s = openapi3.NewIntegerSchema()
	case domain.TypeNumber:
		s = openapi3.NewFloat64Schema()
	case domain.TypeBoolean:
		s = openapi3.NewBoolSchema()
	case domain.TypeArray:
		s = openapi3.NewArraySchema()
		if p.Items != nil {
			s.WithItems(paramSchema(*p.Items))
		}
	default:
		s = openapi3.NewSchema()
	}

	s.Description = p.Description
	if len(p.Enum) > 0 {
		s.WithEnum(p.Enum...)
	}
	if p.Minimum != nil {
		s.WithMin(*p.Minimum)
	}
	if p.Maximum != nil {
		s.WithMax(*p.Maximum)
	}
	if p.MinItems != nil {
		s.WithMinItems(int64(*p.MinItems))
	}
	if p.MaxItems != nil {
		s.WithMaxItems(int64(*p.MaxItems))
	}
	if p.Default != nil {
		s.WithDefault(p.Default)
	}
	return s
}
