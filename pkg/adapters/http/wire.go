package http

import "github.com/aretw0/radiolab/pkg/domain"

// HeaderServerID carries the server instance a plan was built against.
const HeaderServerID = "X-Radiolab-Server-ID"

// ToolDescriptor is one entry of the GET /tools listing.
type ToolDescriptor struct {
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Parameters  []domain.ParamSpec `json:"parameters"`
	InputSchema map[string]any     `json:"inputSchema"`
}

// ListToolsResponse is the body of GET /tools.
type ListToolsResponse struct {
	ServerID string           `json:"server_id"`
	Tools    []ToolDescriptor `json:"tools"`
}

// CallToolRequest is the body of POST /tools/call.
type CallToolRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// CallToolResponse is the body of every POST /tools/call answer.
// Exactly one of Result and Error is set.
type CallToolResponse struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}
