// Package anthropic plans tool calls with the Anthropic Messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/radiolab/internal/logging"
	"github.com/aretw0/radiolab/pkg/domain"
)

const (
	// DefaultBaseURL is the public API endpoint.
	DefaultBaseURL = "https://api.anthropic.com/v1"

	apiVersion = "2023-06-01"

	errorTypeNotFound = "not_found_error"
)

// ErrMissingAPIKey is returned by Plan when no API key is configured.
var ErrMissingAPIKey = errors.New("anthropic API key not configured")

type messagesRequest struct {
	Model     string           `json:"model"`
	MaxTokens int              `json:"max_tokens"`
	System    string           `json:"system,omitempty"`
	Messages  []message        `json:"messages"`
	Tools     []toolDefinition `json:"tools,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type toolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

type messagesResponse struct {
	Model   string         `json:"model"`
	Content []contentBlock `json:"content"`
	Error   *apiError      `json:"error,omitempty"`
}

type contentBlock struct {
	Type  string         `json:"type"`
	Text  string         `json:"text,omitempty"`
	ID    string         `json:"id,omitempty"`
	Name  string         `json:"name,omitempty"`
	Input map[string]any `json:"input,omitempty"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// Planner implements ports.Planner.
type Planner struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	maxRetries int
	backoff    time.Duration
}

// Option configures a Planner.
type Option func(*Planner)

// WithBaseURL points the planner at another endpoint.
func WithBaseURL(u string) Option {
	return func(p *Planner) {
		p.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Planner) {
		p.httpClient = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Planner) {
		p.logger = logger
	}
}

// WithRetries sets how often rate-limited or overloaded calls are retried
// and the initial backoff, doubled on each retry.
func WithRetries(n int, backoff time.Duration) Option {
	return func(p *Planner) {
		p.maxRetries = n
		p.backoff = backoff
	}
}

// New creates a planner authenticated with apiKey.
func New(apiKey string, opts ...Option) *Planner {
	p := &Planner{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		logger:     logging.NewNop(),
		maxRetries: 2,
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name.
func (p *Planner) Name() string { return "anthropic" }

// Plan sends one Messages request. A missing model maps to domain.ErrModelUnavailable.
func (p *Planner) Plan(ctx context.Context, model string, req domain.PlanRequest) (*domain.PlanResponse, error) {
	if p.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	body := messagesRequest{
		Model:     model,
		MaxTokens: req.MaxTokens,
		System:    req.System,
		Messages:  []message{{Role: "user", Content: req.Prompt}},
		Tools:     make([]toolDefinition, len(req.Tools)),
	}
	for i, t := range req.Tools {
		body.Tools[i] = toolDefinition(t)
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	wait := p.backoff
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
		}

		resp, retry, err := p.send(ctx, model, payload)
		if err == nil {
			return resp, nil
		}
		if !retry {
			return nil, err
		}
		p.logger.Warn("Anthropic request throttled", "model", model, "attempt", attempt+1, "error", err)
		lastErr = err
	}
	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (p *Planner) send(ctx context.Context, model string, payload []byte) (*domain.PlanResponse, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, false, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var env errorEnvelope
		_ = json.Unmarshal(raw, &env)
		msg := env.Error.Message
		if msg == "" {
			msg = strings.TrimSpace(string(raw))
		}
		switch {
		case resp.StatusCode == http.StatusNotFound || env.Error.Type == errorTypeNotFound:
			return nil, false, fmt.Errorf("%w: %s: %s", domain.ErrModelUnavailable, model, msg)
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == 529:
			return nil, true, fmt.Errorf("status %d: %s", resp.StatusCode, msg)
		default:
			return nil, false, fmt.Errorf("anthropic API status %d: %s", resp.StatusCode, msg)
		}
	}

	var out messagesResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, false, fmt.Errorf("failed to parse response: %w", err)
	}
	if out.Error != nil {
		if out.Error.Type == errorTypeNotFound {
			return nil, false, fmt.Errorf("%w: %s: %s", domain.ErrModelUnavailable, model, out.Error.Message)
		}
		return nil, false, fmt.Errorf("anthropic API error: %s", out.Error.Message)
	}

	plan := &domain.PlanResponse{Model: out.Model, Content: make([]domain.ContentBlock, 0, len(out.Content))}
	if plan.Model == "" {
		plan.Model = model
	}
	for _, c := range out.Content {
		switch c.Type {
		case string(domain.KindText):
			plan.Content = append(plan.Content, domain.ContentBlock{Kind: domain.KindText, Text: c.Text})
		case string(domain.KindToolUse):
			plan.Content = append(plan.Content, domain.ContentBlock{Kind: domain.KindToolUse, ID: c.ID, Name: c.Name, Input: c.Input})
		}
	}
	return plan, false, nil
}
