// Package gemini plans tool calls with the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aretw0/radiolab/internal/logging"
	"github.com/aretw0/radiolab/pkg/domain"
	"google.golang.org/genai"
)

const statusNotFound = "NOT_FOUND"

// Planner implements ports.Planner on google.golang.org/genai.
type Planner struct {
	client *genai.Client
	logger *slog.Logger
}

type settings struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Planner.
type Option func(*settings)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(u string) Option {
	return func(s *settings) {
		s.baseURL = u
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *settings) {
		s.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// New creates a planner for the Gemini API.
func New(ctx context.Context, apiKey string, opts ...Option) (*Planner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	s := settings{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  s.httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: s.baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Planner{client: client, logger: s.logger}, nil
}

// Name returns the provider name.
func (p *Planner) Name() string { return "gemini" }

// Plan calls GenerateContent with the tools declared as functions.
// A missing model maps to domain.ErrModelUnavailable.
func (p *Planner) Plan(ctx context.Context, model string, req domain.PlanRequest) (*domain.PlanResponse, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		config.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if len(req.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(req.Tools))
		for i, t := range req.Tools {
			decls[i] = &genai.FunctionDeclaration{
				Name:                 t.Name,
				Description:          t.Description,
				ParametersJsonSchema: t.InputSchema,
			}
		}
		config.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)}
	resp, err := p.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Status == statusNotFound) {
			return nil, fmt.Errorf("%w: %s: %s", domain.ErrModelUnavailable, model, apiErr.Message)
		}
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	plan := &domain.PlanResponse{Model: resp.ModelVersion}
	if plan.Model == "" {
		plan.Model = model
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		p.logger.Warn("Gemini returned no candidates", "model", model)
		return plan, nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		switch {
		case part.FunctionCall != nil:
			plan.Content = append(plan.Content, domain.ContentBlock{
				Kind:  domain.KindToolUse,
				ID:    part.FunctionCall.ID,
				Name:  part.FunctionCall.Name,
				Input: part.FunctionCall.Args,
			})
		case part.Text != "" && !part.Thought:
			plan.Content = append(plan.Content, domain.ContentBlock{Kind: domain.KindText, Text: part.Text})
		}
	}
	return plan, nil
}
