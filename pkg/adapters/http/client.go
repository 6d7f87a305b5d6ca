package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/radiolab/pkg/domain"
)

// Default client timeouts.
const (
	DefaultProbeTimeout = time.Second
	DefaultCallTimeout  = 2 * time.Minute
)

// Client calls a tool server. It implements ports.ToolClient.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	probeTimeout time.Duration
	callTimeout  time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithProbeTimeout bounds each liveness probe.
func WithProbeTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		cl.probeTimeout = d
	}
}

// WithCallTimeout bounds listing and tool calls.
func WithCallTimeout(d time.Duration) ClientOption {
	return func(cl *Client) {
		cl.callTimeout = d
	}
}

// NewClient creates a client for addr, either "host:port" or a full http URL.
func NewClient(addr string, opts ...ClientOption) *Client {
	base := strings.TrimRight(addr, "/")
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}
	c := &Client{
		baseURL:      base,
		httpClient:   http.DefaultClient,
		probeTimeout: DefaultProbeTimeout,
		callTimeout:  DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Probe issues one GET /tools bounded by the probe timeout.
func (c *Client) Probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tools", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("probe: unexpected status %d", resp.StatusCode)
	}
	return nil
}

// ListTools fetches the catalog. Every failure wraps domain.ErrCatalogFetch.
func (c *Client) ListTools(ctx context.Context) (domain.Catalog, error) {
	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tools", nil)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("%w: %w", domain.ErrCatalogFetch, err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Catalog{}, fmt.Errorf("%w: %w", domain.ErrCatalogFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Catalog{}, fmt.Errorf("%w: unexpected status %d", domain.ErrCatalogFetch, resp.StatusCode)
	}

	var body ListToolsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Catalog{}, fmt.Errorf("%w: decode listing: %w", domain.ErrCatalogFetch, err)
	}

	catalog := domain.Catalog{
		ServerID: body.ServerID,
		Tools:    make([]domain.ToolSpec, len(body.Tools)),
	}
	for i, t := range body.Tools {
		catalog.Tools[i] = domain.ToolSpec{Name: t.Name, Description: t.Description, Params: t.Parameters}
	}
	return catalog, nil
}

// CallTool invokes inv. When serverID is not empty the server rejects the
// call unless it is that instance.
//
// The returned ToolResult always names the tool; on failure its Error is
// set and the error wraps the matching domain sentinel.
func (c *Client) CallTool(ctx context.Context, serverID string, inv domain.ToolInvocation) (domain.ToolResult, error) {
	result := domain.ToolResult{Tool: inv.Tool}
	fail := func(err error) (domain.ToolResult, error) {
		result.Error = err.Error()
		return result, err
	}

	args := inv.Parameters
	if args == nil {
		args = map[string]any{}
	}
	payload, err := json.Marshal(CallToolRequest{Name: inv.Tool, Arguments: args})
	if err != nil {
		return fail(fmt.Errorf("%w: encode arguments: %w", domain.ErrInvocation, err))
	}

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/tools/call", bytes.NewReader(payload))
	if err != nil {
		return fail(fmt.Errorf("%w: %w", domain.ErrInvocation, err))
	}
	req.Header.Set("Content-Type", "application/json")
	if serverID != "" {
		req.Header.Set(HeaderServerID, serverID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(fmt.Errorf("%w: %w", domain.ErrInvocation, err))
	}
	defer resp.Body.Close()

	var body CallToolResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fail(&domain.InvocationError{Tool: inv.Tool, Status: resp.StatusCode, Message: "malformed response: " + err.Error()})
	}

	switch resp.StatusCode {
	case http.StatusOK:
		result.Payload = body.Result
		return result, nil
	case http.StatusNotFound:
		return fail(remoteError(domain.ErrToolNotFound, body.Error))
	case http.StatusUnprocessableEntity:
		return fail(remoteError(domain.ErrInvalidArguments, body.Error))
	case http.StatusConflict:
		return fail(remoteError(domain.ErrCatalogMismatch, body.Error))
	default:
		return fail(&domain.InvocationError{Tool: inv.Tool, Status: resp.StatusCode, Message: body.Error})
	}
}

// remoteError wraps a server message in sentinel without repeating the
// sentinel text the server already put in front of it.
func remoteError(sentinel error, msg string) error {
	msg = strings.TrimPrefix(msg, sentinel.Error()+": ")
	return fmt.Errorf("%w: %s", sentinel, msg)
}
