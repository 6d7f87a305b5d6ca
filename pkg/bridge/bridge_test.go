package bridge_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/aretw0/radiolab/pkg/bridge"
	"github.com/aretw0/radiolab/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	serverID string
	inv      domain.ToolInvocation
}

type fakeClient struct {
	calls   []call
	results map[string]any
	errs    map[string]error
}

func (c *fakeClient) Probe(ctx context.Context) error { return nil }

func (c *fakeClient) ListTools(ctx context.Context) (domain.Catalog, error) {
	return domain.Catalog{}, nil
}

func (c *fakeClient) CallTool(ctx context.Context, serverID string, inv domain.ToolInvocation) (domain.ToolResult, error) {
	c.calls = append(c.calls, call{serverID: serverID, inv: inv})
	if err, ok := c.errs[inv.Tool]; ok {
		return domain.ToolResult{Tool: inv.Tool, Error: err.Error()}, err
	}
	return domain.ToolResult{Tool: inv.Tool, Payload: c.results[inv.Tool]}, nil
}

func testPlan(calls ...domain.ToolInvocation) *domain.ToolCallPlan {
	return &domain.ToolCallPlan{
		Task:     "task",
		ServerID: "srv-1",
		Catalog: domain.Catalog{ServerID: "srv-1", Tools: []domain.ToolSpec{
			{Name: "simulate_ber", Params: []domain.ParamSpec{{Name: "bits_per_symbol", Type: domain.TypeInteger, Default: 2}}},
			{Name: "simulate_constellation"},
		}},
		ToolCalls: calls,
	}
}

func TestExecute_FirstCallFails(t *testing.T) {
	client := &fakeClient{
		errs:    map[string]error{"simulate_ber": &domain.InvocationError{Tool: "simulate_ber", Status: 500, Message: "solver diverged"}},
		results: map[string]any{"simulate_constellation": map[string]any{"modulation": "4-QAM"}},
	}
	plan := testPlan(
		domain.ToolInvocation{Tool: "simulate_ber", Parameters: map[string]any{}},
		domain.ToolInvocation{Tool: "simulate_constellation", Parameters: map[string]any{}},
	)

	report := bridge.New(client).Execute(context.Background(), plan)

	require.Len(t, report.Outcomes, 2)
	first := report.Outcomes[0]
	assert.Equal(t, bridge.StatusFailed, first.Status)
	assert.False(t, first.OK())
	assert.ErrorIs(t, first.Err, domain.ErrInvocation)
	assert.Contains(t, first.Error, "solver diverged")
	assert.Nil(t, first.Result)

	assert.Equal(t, bridge.StatusOK, report.Outcomes[1].Status)
	assert.Equal(t, map[string]any{"modulation": "4-QAM"}, report.Outcomes[1].Result)

	assert.Equal(t, 1, report.Failed())
	assert.ErrorIs(t, report.Err(), domain.ErrInvocation)
	require.Len(t, client.calls, 2)
	assert.Equal(t, "simulate_ber", client.calls[0].inv.Tool, "calls run in plan order")
	assert.Equal(t, "srv-1", client.calls[0].serverID)
}

func TestExecute_StopOnError(t *testing.T) {
	client := &fakeClient{errs: map[string]error{"simulate_ber": domain.ErrInvocation}}
	plan := testPlan(
		domain.ToolInvocation{Tool: "simulate_ber"},
		domain.ToolInvocation{Tool: "simulate_constellation"},
	)

	report := bridge.New(client, bridge.WithStopOnError()).Execute(context.Background(), plan)

	require.Len(t, report.Outcomes, 2)
	assert.Equal(t, bridge.StatusFailed, report.Outcomes[0].Status)
	assert.Equal(t, bridge.StatusSkipped, report.Outcomes[1].Status)
	assert.Equal(t, 2, report.Failed())
	assert.Len(t, client.calls, 1)
}

func TestInvoke_ValidatesAgainstCatalog(t *testing.T) {
	client := &fakeClient{}
	b := bridge.New(client)
	plan := testPlan()

	o := b.Invoke(context.Background(), plan, domain.ToolInvocation{Tool: "simulate_mystery"})
	assert.ErrorIs(t, o.Err, domain.ErrToolNotFound)

	o = b.Invoke(context.Background(), plan, domain.ToolInvocation{
		Tool:       "simulate_ber",
		Parameters: map[string]any{"bits_per_symbol": "four"},
	})
	assert.ErrorIs(t, o.Err, domain.ErrInvalidArguments)
	assert.Equal(t, bridge.StatusFailed, o.Status)

	assert.Empty(t, client.calls, "rejected calls never reach the server")
}

func TestInvoke_NormalizesPayload(t *testing.T) {
	client := &fakeClient{results: map[string]any{
		"simulate_constellation": map[float64]complex128{15: complex(1, math.Inf(1))},
	}}

	o := bridge.New(client).Invoke(context.Background(), testPlan(), domain.ToolInvocation{Tool: "simulate_constellation"})
	require.True(t, o.OK())
	assert.Equal(t, map[string]any{"15": []any{1.0, nil}}, o.Result)
}

func TestExecute_CancelledContext(t *testing.T) {
	client := &fakeClient{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := bridge.New(client).Execute(ctx, testPlan(
		domain.ToolInvocation{Tool: "simulate_ber"},
		domain.ToolInvocation{Tool: "simulate_constellation"},
	))

	require.Len(t, report.Outcomes, 2)
	assert.True(t, errors.Is(report.Outcomes[0].Err, context.Canceled))
	assert.Equal(t, bridge.StatusSkipped, report.Outcomes[1].Status)
	assert.Empty(t, client.calls)
}

func TestExecute_EmptyPlan(t *testing.T) {
	report := bridge.New(&fakeClient{}).Execute(context.Background(), testPlan())
	assert.Empty(t, report.Outcomes)
	assert.NoError(t, report.Err())
}
