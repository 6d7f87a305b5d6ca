/*
Package domain contains the core types shared by every radiolab component.

It defines the tool catalog, planned tool calls, task decompositions and the
provider-neutral planning contract. This package is kept free of I/O and of
third-party dependencies so that adapters can depend on it without cycles.

# Key Entities

  - ToolSpec / ParamSpec: The declared shape of a simulation tool.
  - Catalog: The listing served by one tool server instance, tagged with its ServerID.
  - ToolCallPlan: The planner's answer for one user task (ordered ToolInvocations plus free text).
  - TaskDecomposition: The rule-based classification of a task and the parameters found in it.
  - PlanRequest / PlanResponse: What a language model provider receives and returns.
*/
package domain
