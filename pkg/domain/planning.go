package domain

// ContentKind distinguishes the blocks of a model response.
type ContentKind string

const (
	KindText    ContentKind = "text"
	KindToolUse ContentKind = "tool_use"
)

// ToolDefinition is a tool as offered to a language model.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// PlanRequest is the provider-neutral input of one planning call.
type PlanRequest struct {
	System    string
	Prompt    string
	Tools     []ToolDefinition
	MaxTokens int
}

// ContentBlock is one element of a model response.
// Text is set for KindText; Name and Input for KindToolUse.
type ContentBlock struct {
	Kind  ContentKind
	Text  string
	ID    string
	Name  string
	Input map[string]any
}

// PlanResponse is the ordered content returned by a model.
type PlanResponse struct {
	Model   string
	Content []ContentBlock
}
