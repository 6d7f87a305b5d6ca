// Package graph renders tool-call plans as Mermaid flowcharts.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/radiolab/pkg/bridge"
	"github.com/aretw0/radiolab/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart for a plan.
// The task is the start circle and each call is a subroutine box chained in
// execution order. When a report is given, calls are styled by outcome.
func GenerateMermaid(plan domain.ToolCallPlan, report *bridge.Report) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	label := plan.Task
	if plan.Decomposition != nil {
		label = fmt.Sprintf("%s <br/> %s", label, plan.Decomposition.TaskType)
	}
	sb.WriteString(fmt.Sprintf("    task((\"%s\"))\n", escapeLabel(label)))

	prev := "task"
	for i, call := range plan.ToolCalls {
		id := fmt.Sprintf("call%d_%s", i+1, sanitizeMermaidID(call.Tool))
		sb.WriteString(fmt.Sprintf("    %s[[\"%d. %s\"]]\n", id, i+1, escapeLabel(call.Tool)))
		sb.WriteString(fmt.Sprintf("    %s --> %s\n", prev, id))
		prev = id
	}

	if plan.Response != "" && len(plan.ToolCalls) == 0 {
		sb.WriteString("    response[/\"text response\"/]\n")
		sb.WriteString("    task -.-> response\n")
	}

	if report != nil {
		sb.WriteString("\n    %% Outcome Styles\n")
		// Black text keeps labels readable on both themes.
		sb.WriteString("    classDef ok fill:#e8f5e9,stroke:#2e7d32,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#ffebee,stroke:#c62828,stroke-width:3px,color:#000;\n")
		sb.WriteString("    classDef skipped fill:#eeeeee,stroke:#9e9e9e,stroke-dasharray:4,color:#000;\n")
		for i, o := range report.Outcomes {
			if i >= len(plan.ToolCalls) {
				break
			}
			id := fmt.Sprintf("call%d_%s", i+1, sanitizeMermaidID(plan.ToolCalls[i].Tool))
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", id, o.Status))
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", " ")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
