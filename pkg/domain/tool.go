package domain

// Parameter types understood by the registry and rendered into JSON Schema.
const (
	TypeString  = "string"
	TypeInteger = "integer"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeArray   = "array"
)

// ParamSpec describes one argument of a tool.
// A parameter without a Default is required.
type ParamSpec struct {
	Name        string     `json:"name" yaml:"name" mapstructure:"name"`
	Type        string     `json:"type" yaml:"type" mapstructure:"type"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Enum        []any      `json:"enum,omitempty" yaml:"enum,omitempty" mapstructure:"enum"`
	Minimum     *float64   `json:"minimum,omitempty" yaml:"minimum,omitempty" mapstructure:"minimum"`
	Maximum     *float64   `json:"maximum,omitempty" yaml:"maximum,omitempty" mapstructure:"maximum"`
	MinItems    *int       `json:"min_items,omitempty" yaml:"min_items,omitempty" mapstructure:"min_items"`
	MaxItems    *int       `json:"max_items,omitempty" yaml:"max_items,omitempty" mapstructure:"max_items"`
	Items       *ParamSpec `json:"items,omitempty" yaml:"items,omitempty" mapstructure:"items"`
	Default     any        `json:"default,omitempty" yaml:"default,omitempty" mapstructure:"default"`
}

// Required reports whether the caller must supply the parameter.
func (p ParamSpec) Required() bool {
	return p.Default == nil
}

// ToolSpec defines metadata about a tool available on the tool server.
// It is used both for planner prompts and for argument validation.
type ToolSpec struct {
	Name        string      `json:"name" yaml:"name" mapstructure:"name"`
	Description string      `json:"description" yaml:"description" mapstructure:"description"`
	Params      []ParamSpec `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}

// Param returns the parameter with the given name.
func (t ToolSpec) Param(name string) (ParamSpec, bool) {
	for _, p := range t.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// Catalog is the tool listing served by one tool server instance.
// ServerID identifies that instance; plans built from a catalog may only be
// executed against the server that produced it.
type Catalog struct {
	ServerID string     `json:"server_id"`
	Tools    []ToolSpec `json:"tools"`
}

// Lookup finds a tool by name.
func (c Catalog) Lookup(name string) (ToolSpec, bool) {
	for _, t := range c.Tools {
		if t.Name == name {
			return t, true
		}
	}
	return ToolSpec{}, false
}

// Names lists tool names in catalog order.
func (c Catalog) Names() []string {
	names := make([]string, len(c.Tools))
	for i, t := range c.Tools {
		names[i] = t.Name
	}
	return names
}

// ToolInvocation is a single planned call: a tool name plus its arguments.
// Arguments are checked against the tool schema when the call is executed,
// not when the plan is created.
type ToolInvocation struct {
	Tool       string         `json:"tool" yaml:"tool"`
	Parameters map[string]any `json:"parameters" yaml:"parameters"`
}

// ToolCallPlan is the outcome of one planning round for a user task.
type ToolCallPlan struct {
	Task          string             `json:"task" yaml:"task"`
	Model         string             `json:"model" yaml:"model"`
	Provider      string             `json:"provider,omitempty" yaml:"provider,omitempty"`
	ServerID      string             `json:"server_id,omitempty" yaml:"server_id,omitempty"`
	ToolCalls     []ToolInvocation   `json:"tool_calls" yaml:"tool_calls"`
	Response      string             `json:"response,omitempty" yaml:"response,omitempty"`
	Decomposition *TaskDecomposition `json:"decomposition,omitempty" yaml:"decomposition,omitempty"`

	// Catalog is the listing the plan was built against. It stays in process.
	Catalog Catalog `json:"-" yaml:"-"`
}

// ToolResult represents the output of one tool execution.
type ToolResult struct {
	Tool    string `json:"tool"`
	Payload any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// IsError reports whether the tool failed.
func (r ToolResult) IsError() bool {
	return r.Error != ""
}
