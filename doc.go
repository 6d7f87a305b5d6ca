/*
Package radiolab turns free-text descriptions of wireless-communications
experiments into simulation tool calls and runs them.

A request flows through four parts:

  - Task Decomposer (pkg/decompose): classifies the task with an ordered rule
    table and extracts SNR values, modulation, antenna configurations,
    positions and transmitter counts.
  - Planning Agent (pkg/agent): makes sure a tool server is running, fetches
    its catalog and asks a hosted language model for a tool-call plan, falling
    back through an ordered list of candidate models.
  - Tool Server (pkg/adapters/http, pkg/adapters/mcp): exposes the registry of
    simulation tools (pkg/catalog, pkg/sim) over HTTP or MCP stdio.
  - Invocation Bridge (pkg/bridge): executes the plan call by call against the
    server instance the plan was built from and collects per-call outcomes.

# Usage

The radiolab command wires everything together:

	radiolab serve --addr 127.0.0.1:5001
	radiolab decompose "Compare 1x1 and 2x2 MIMO at 0 to 20 dB"
	radiolab run "Plot the BER of 16-QAM over AWGN and Rayleigh at 0, 10 and 20 dB"

Library users build the same pipeline from the packages:

	sup := process.NewSupervisor("127.0.0.1:5001", process.WithCommand(exe, "serve"))
	planner := agent.New(sup, []agent.Candidate{
		{Provider: anthropic.New(apiKey), Model: "claude-3-5-sonnet-20241022"},
	}, agent.WithDecomposer(decompose.New()))
	defer planner.Close()

	plan, err := planner.Run(ctx, task)
	if err != nil {
		log.Fatal(err)
	}
	report := bridge.New(sup.Client()).Execute(ctx, plan)
*/
package radiolab
