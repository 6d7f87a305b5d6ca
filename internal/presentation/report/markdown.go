// Package report renders plans, outcomes and catalogs as markdown.
package report

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/radiolab/pkg/bridge"
	"github.com/aretw0/radiolab/pkg/domain"
	"gopkg.in/yaml.v3"
)

// MaxResultBytes bounds the JSON shown for one result.
const MaxResultBytes = 4000

// Markdown renders a plan and, if it ran, its report.
func Markdown(plan domain.ToolCallPlan, rep *bridge.Report) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", oneLine(plan.Task))

	if plan.Model != "" {
		fmt.Fprintf(&sb, "Planned by `%s`", plan.Model)
		if plan.Provider != "" {
			fmt.Fprintf(&sb, " (%s)", plan.Provider)
		}
		sb.WriteString(".\n\n")
	}

	if d := plan.Decomposition; d != nil {
		fmt.Fprintf(&sb, "## Decomposition\n\nTask type: **%s**\n\n", d.TaskType)
		if !d.Parameters.IsEmpty() {
			if data, err := yaml.Marshal(d.Parameters); err == nil {
				fmt.Fprintf(&sb, "```yaml\n%s```\n\n", data)
			}
		}
	}

	if plan.Response != "" {
		fmt.Fprintf(&sb, "## Response\n\n%s\n\n", strings.TrimSpace(plan.Response))
	}

	if len(plan.ToolCalls) == 0 {
		sb.WriteString("_No tool calls were planned._\n")
		return sb.String()
	}

	sb.WriteString("## Tool Calls\n\n")
	if rep == nil {
		sb.WriteString("| # | Tool | Parameters |\n|---|------|------------|\n")
		for i, call := range plan.ToolCalls {
			fmt.Fprintf(&sb, "| %d | `%s` | %s |\n", i+1, call.Tool, inlineJSON(call.Parameters))
		}
		sb.WriteString("\n_Dry run: nothing was executed._\n")
		return sb.String()
	}

	sb.WriteString("| # | Tool | Status | Duration |\n|---|------|--------|----------|\n")
	for i, o := range rep.Outcomes {
		fmt.Fprintf(&sb, "| %d | `%s` | %s | %s |\n", i+1, o.Tool, statusLabel(o.Status), o.Duration.Round(time.Millisecond))
	}
	sb.WriteString("\n")

	for i, o := range rep.Outcomes {
		fmt.Fprintf(&sb, "### %d. %s\n\n", i+1, o.Tool)
		fmt.Fprintf(&sb, "Parameters: %s\n\n", inlineJSON(o.Parameters))
		switch o.Status {
		case bridge.StatusOK:
			fmt.Fprintf(&sb, "```json\n%s\n```\n\n", resultJSON(o.Result))
		default:
			fmt.Fprintf(&sb, "> **%s:** %s\n\n", o.Status, oneLine(o.Error))
		}
	}

	if n := rep.Failed(); n > 0 {
		fmt.Fprintf(&sb, "**%d of %d calls did not succeed.**\n", n, len(rep.Outcomes))
	}
	return sb.String()
}

// Catalog renders the tools of a catalog with their parameters.
func Catalog(c domain.Catalog) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Tools\n\nServer `%s` offers %d tools.\n\n", c.ServerID, len(c.Tools))
	for _, t := range c.Tools {
		fmt.Fprintf(&sb, "## %s\n\n%s\n\n", t.Name, t.Description)
		if len(t.Params) == 0 {
			continue
		}
		sb.WriteString("| Parameter | Type | Default | Description |\n|-----------|------|---------|-------------|\n")
		for _, p := range t.Params {
			def := "_required_"
			if !p.Required() {
				def = "`" + inlineJSON(p.Default) + "`"
			}
			fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", p.Name, paramType(p), def, oneLine(p.Description))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func paramType(p domain.ParamSpec) string {
	if p.Type == domain.TypeArray && p.Items != nil {
		return p.Items.Type + "[]"
	}
	return p.Type
}

func statusLabel(s bridge.Status) string {
	switch s {
	case bridge.StatusOK:
		return "✅ ok"
	case bridge.StatusFailed:
		return "❌ failed"
	default:
		return "⏭️ " + string(s)
	}
}

func inlineJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func resultJSON(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	if len(data) > MaxResultBytes {
		return string(data[:MaxResultBytes]) + "\n... (truncated)"
	}
	return string(data)
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
