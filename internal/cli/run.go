package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/radiolab/internal/presentation/graph"
	"github.com/aretw0/radiolab/internal/presentation/report"
	"github.com/aretw0/radiolab/pkg/agent"
	"github.com/aretw0/radiolab/pkg/bridge"
	"github.com/aretw0/radiolab/pkg/domain"
)

// runOutput is the JSON shape of a run.
type runOutput struct {
	Plan   *domain.ToolCallPlan `json:"plan"`
	Report *bridge.Report       `json:"report,omitempty"`
}

// Run plans task, executes the plan unless DryRun, and writes the report.
// It fails when any planned call failed.
func Run(ctx context.Context, opts RunOptions, out io.Writer) error {
	if _, err := agent.SanitizeTask(opts.Task); err != nil {
		return err
	}

	cfg, err := loadConfig(opts.Options)
	if err != nil {
		return err
	}
	if opts.NoDecompose {
		cfg.Planner.Decompose = false
	}
	if opts.StopOnError {
		cfg.Bridge.StopOnError = true
	}
	if len(opts.Models) > 0 {
		cfg.Planner.Models = opts.Models
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	logger, err := createLogger(cfg.LogLevel, opts.Debug)
	if err != nil {
		return err
	}

	p, err := newPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			logger.Warn("Failed to release tool server", "error", err)
		}
	}()

	plan, err := p.Agent.Run(ctx, opts.Task)
	if err != nil {
		return handleExecutionError(err)
	}

	var rep *bridge.Report
	if !opts.DryRun {
		r := p.Bridge.Execute(ctx, plan)
		rep = &r
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(runOutput{Plan: plan, Report: rep}); err != nil {
			return err
		}
	} else {
		if err := render(out, report.Markdown(*plan, rep)); err != nil {
			return err
		}
		if opts.Graph {
			fmt.Fprintf(out, "\n```mermaid\n%s```\n", graph.GenerateMermaid(*plan, rep))
		}
	}

	if rep != nil && rep.Failed() > 0 {
		return fmt.Errorf("%d of %d tool calls did not succeed: %w", rep.Failed(), len(rep.Outcomes), rep.Err())
	}
	return nil
}
