// Package agent turns a natural-language task into a tool call plan: it makes
// sure a tool server is running, reads its catalog and asks candidate
// language models in order until one answers.
package agent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/radiolab/internal/logging"
	"github.com/aretw0/radiolab/pkg/decompose"
	"github.com/aretw0/radiolab/pkg/domain"
	"github.com/aretw0/radiolab/pkg/ports"
	"github.com/aretw0/radiolab/pkg/schema"
)

// Candidate is one model to try, served by Provider.
type Candidate struct {
	Provider ports.Planner
	Model    string
}

func (c Candidate) String() string {
	return c.Provider.Name() + ":" + c.Model
}

// Agent plans tool calls. It is safe to call Run sequentially; the server
// handle it owns is shared between runs.
type Agent struct {
	server     ports.ToolServer
	candidates []Candidate
	decomposer *decompose.Decomposer
	system     string
	maxTokens  int
	logger     *slog.Logger
}

// Option configures an Agent.
type Option func(*Agent)

// WithDecomposer adds the decomposer's guidance block to every prompt.
func WithDecomposer(d *decompose.Decomposer) Option {
	return func(a *Agent) {
		a.decomposer = d
	}
}

// WithSystemPrompt replaces DefaultSystemPrompt.
func WithSystemPrompt(prompt string) Option {
	return func(a *Agent) {
		a.system = prompt
	}
}

// WithMaxTokens bounds each planning response.
func WithMaxTokens(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.maxTokens = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Agent) {
		a.logger = logger
	}
}

// New creates an agent. Candidates are tried in order on every Run.
func New(server ports.ToolServer, candidates []Candidate, opts ...Option) *Agent {
	a := &Agent{
		server:     server,
		candidates: candidates,
		system:     DefaultSystemPrompt,
		maxTokens:  DefaultMaxTokens,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Server returns the tool server handle.
func (a *Agent) Server() ports.ToolServer { return a.server }

// Run plans task. Zero tool calls is a valid plan; the model's text is in Response.
func (a *Agent) Run(ctx context.Context, task string) (*domain.ToolCallPlan, error) {
	clean, err := SanitizeTask(task)
	if err != nil {
		return nil, err
	}

	if err := a.server.Ensure(ctx); err != nil {
		return nil, err
	}

	catalog, err := a.server.Client().ListTools(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrCatalogFetch) {
			err = fmt.Errorf("%w: %w", domain.ErrCatalogFetch, err)
		}
		return nil, err
	}

	plan := &domain.ToolCallPlan{
		Task:      clean,
		ServerID:  catalog.ServerID,
		Catalog:   catalog,
		ToolCalls: []domain.ToolInvocation{},
	}

	prompt := clean
	if a.decomposer != nil {
		d := a.decomposer.Decompose(clean)
		plan.Decomposition = &d
		prompt = clean + "\n\n" + decompose.FormatForPrompt(d)
		a.logger.Debug("Task decomposed", "task_type", d.TaskType)
	}

	req := domain.PlanRequest{
		System:    a.system,
		Prompt:    prompt,
		Tools:     ToolDefinitions(catalog),
		MaxTokens: a.maxTokens,
	}
	resp, cand, err := a.plan(ctx, req)
	if err != nil {
		return nil, err
	}

	plan.Model = cand.Model
	plan.Provider = cand.Provider.Name()

	var text []string
	for _, block := range resp.Content {
		switch block.Kind {
		case domain.KindToolUse:
			params := block.Input
			if params == nil {
				params = map[string]any{}
			}
			plan.ToolCalls = append(plan.ToolCalls, domain.ToolInvocation{Tool: block.Name, Parameters: params})
		case domain.KindText:
			if t := strings.TrimSpace(block.Text); t != "" {
				text = append(text, t)
			}
		}
	}
	plan.Response = strings.Join(text, "\n\n")

	a.logger.Info("Plan ready", "model", plan.Model, "provider", plan.Provider, "tool_calls", len(plan.ToolCalls))
	return plan, nil
}

// plan asks each candidate in order. Only domain.ErrModelUnavailable moves on
// to the next one.
func (a *Agent) plan(ctx context.Context, req domain.PlanRequest) (*domain.PlanResponse, Candidate, error) {
	if len(a.candidates) == 0 {
		return nil, Candidate{}, fmt.Errorf("%w: no candidate models configured", domain.ErrPlanning)
	}

	var lastErr error
	for _, c := range a.candidates {
		resp, err := c.Provider.Plan(ctx, c.Model, req)
		if err == nil {
			if resp == nil {
				resp = &domain.PlanResponse{Model: c.Model}
			}
			return resp, c, nil
		}
		if !errors.Is(err, domain.ErrModelUnavailable) {
			return nil, c, fmt.Errorf("%w: %s: %w", domain.ErrPlanning, c, err)
		}
		a.logger.Warn("Model unavailable, trying next candidate", "model", c.Model, "provider", c.Provider.Name(), "error", err)
		lastErr = err
	}
	return nil, Candidate{}, fmt.Errorf("%w: no available models (tried %d): %w", domain.ErrPlanning, len(a.candidates), lastErr)
}

// Close releases the tool server handle.
func (a *Agent) Close() error {
	return a.server.Close()
}

// ToolDefinitions converts a catalog to model tool definitions.
func ToolDefinitions(c domain.Catalog) []domain.ToolDefinition {
	defs := make([]domain.ToolDefinition, len(c.Tools))
	for i, spec := range c.Tools {
		defs[i] = domain.ToolDefinition{
			Name:        spec.Name,
			Description: spec.Description,
			InputSchema: schema.JSONSchema(spec),
		}
	}
	return defs
}
