// Package bridge executes the tool calls of a plan against the tool server
// the plan was built from.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/radiolab/internal/logging"
	"github.com/aretw0/radiolab/pkg/domain"
	"github.com/aretw0/radiolab/pkg/normalize"
	"github.com/aretw0/radiolab/pkg/ports"
	"github.com/aretw0/radiolab/pkg/schema"
)

// Status of one executed call.
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Outcome is the result of one planned call.
type Outcome struct {
	Tool       string         `json:"tool"`
	Parameters map[string]any `json:"parameters"`
	Status     Status         `json:"status"`
	Result     any            `json:"result,omitempty"`
	Error      string         `json:"error,omitempty"`
	Duration   time.Duration  `json:"duration_ns"`

	// Err is the typed failure, matching the domain sentinels.
	Err error `json:"-"`
}

// OK reports whether the call succeeded.
func (o Outcome) OK() bool { return o.Status == StatusOK }

// Report collects the outcomes of a plan in plan order.
type Report struct {
	Task     string    `json:"task"`
	ServerID string    `json:"server_id"`
	Outcomes []Outcome `json:"outcomes"`
}

// Failed counts calls that did not succeed, skipped calls included.
func (r Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}

// Err joins the errors of all failed calls, or returns nil.
func (r Report) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			errs = append(errs, fmt.Errorf("%s: %w", o.Tool, o.Err))
		}
	}
	return errors.Join(errs...)
}

// Bridge runs planned calls one at a time.
type Bridge struct {
	client      ports.ToolClient
	stopOnError bool
	logger      *slog.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithStopOnError skips the calls after the first failure.
func WithStopOnError() Option {
	return func(b *Bridge) {
		b.stopOnError = true
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) {
		b.logger = logger
	}
}

// New creates a bridge over client.
func New(client ports.ToolClient, opts ...Option) *Bridge {
	b := &Bridge{client: client, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Execute runs every call of plan in order. By default a failed call does
// not stop the remaining ones.
func (b *Bridge) Execute(ctx context.Context, plan *domain.ToolCallPlan) Report {
	report := Report{
		Task:     plan.Task,
		ServerID: plan.ServerID,
		Outcomes: make([]Outcome, 0, len(plan.ToolCalls)),
	}

	stopped := false
	for _, inv := range plan.ToolCalls {
		if stopped {
			report.Outcomes = append(report.Outcomes, Outcome{
				Tool:       inv.Tool,
				Parameters: inv.Parameters,
				Status:     StatusSkipped,
				Error:      "skipped after an earlier failure",
			})
			continue
		}
		if err := ctx.Err(); err != nil {
			report.Outcomes = append(report.Outcomes, failed(inv, err, 0))
			stopped = true
			continue
		}

		o := b.Invoke(ctx, plan, inv)
		report.Outcomes = append(report.Outcomes, o)
		if !o.OK() && b.stopOnError {
			stopped = true
		}
	}
	return report
}

// Invoke checks inv against the plan's catalog and dispatches it to the
// server that produced the catalog.
func (b *Bridge) Invoke(ctx context.Context, plan *domain.ToolCallPlan, inv domain.ToolInvocation) Outcome {
	spec, ok := plan.Catalog.Lookup(inv.Tool)
	if !ok {
		err := fmt.Errorf("%w: %s", domain.ErrToolNotFound, inv.Tool)
		b.logger.Warn("Planned call rejected", "tool", inv.Tool, "error", err)
		return failed(inv, err, 0)
	}
	if err := schema.Validate(spec, inv.Parameters); err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrInvalidArguments, err)
		b.logger.Warn("Planned call rejected", "tool", inv.Tool, "error", err)
		return failed(inv, err, 0)
	}

	start := time.Now()
	res, err := b.client.CallTool(ctx, plan.ServerID, inv)
	elapsed := time.Since(start)
	if err != nil {
		b.logger.Error("Tool call failed", "tool", inv.Tool, "server_id", plan.ServerID, "error", err)
		return failed(inv, err, elapsed)
	}

	b.logger.Info("Tool call succeeded", "tool", inv.Tool, "duration", elapsed)
	return Outcome{
		Tool:       inv.Tool,
		Parameters: inv.Parameters,
		Status:     StatusOK,
		Result:     normalize.Value(res.Payload),
		Duration:   elapsed,
	}
}

func failed(inv domain.ToolInvocation, err error, elapsed time.Duration) Outcome {
	return Outcome{
		Tool:       inv.Tool,
		Parameters: inv.Parameters,
		Status:     StatusFailed,
		Error:      err.Error(),
		Err:        err,
		Duration:   elapsed,
	}
}
