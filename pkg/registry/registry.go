package registry

import (
	"context"
	"fmt"

	"github.com/aretw0/radiolab/pkg/domain"
	"github.com/aretw0/radiolab/pkg/schema"
)

// ToolFunction defines the signature for a tool implementation.
// It receives a context and the validated arguments (defaults applied),
// and returns a result or error.
type ToolFunction func(ctx context.Context, args map[string]any) (any, error)

// Tool binds a declared tool to its implementation.
type Tool struct {
	Spec domain.ToolSpec
	Fn   ToolFunction
}

// Registry is a static catalog of tools.
// It is fixed at construction and safe for concurrent use.
type Registry struct {
	order []string
	tools map[string]Tool
}

// New builds a registry from tools, keeping their order.
// Duplicate or empty names and missing implementations are rejected.
func New(tools ...Tool) (*Registry, error) {
	r := &Registry{
		order: make([]string, 0, len(tools)),
		tools: make(map[string]Tool, len(tools)),
	}
	for _, t := range tools {
		name := t.Spec.Name
		if name == "" {
			return nil, fmt.Errorf("tool without a name")
		}
		if t.Fn == nil {
			return nil, fmt.Errorf("tool %s has no implementation", name)
		}
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("duplicate tool: %s", name)
		}
		r.order = append(r.order, name)
		r.tools[name] = t
	}
	return r, nil
}

// List returns the tool specs in registration order.
func (r *Registry) List() []domain.ToolSpec {
	specs := make([]domain.ToolSpec, len(r.order))
	for i, name := range r.order {
		specs[i] = r.tools[name].Spec
	}
	return specs
}

// Lookup returns the spec of a registered tool.
func (r *Registry) Lookup(name string) (domain.ToolSpec, bool) {
	t, ok := r.tools[name]
	return t.Spec, ok
}

// Execute looks up a tool by name, validates the arguments and runs it.
//
// Unknown names wrap domain.ErrToolNotFound; schema failures wrap
// domain.ErrInvalidArguments and a *schema.AggregateError. A panicking tool
// is reported as an error.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (result any, err error) {
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrToolNotFound, name)
	}

	if err := schema.Validate(t.Spec, args); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidArguments, err)
	}

	defer func() {
		if rec := recover(); rec != nil {
			result = nil
			err = fmt.Errorf("tool %s panicked: %v", name, rec)
		}
	}()

	return t.Fn(ctx, schema.ApplyDefaults(t.Spec, args))
}
