/*
Package ports defines the driven ports (interfaces) for radiolab.

These interfaces decouple the planning agent and the invocation bridge from
concrete transports, language model vendors and process management.

# Key Interfaces

  - ToolServer: Acquire-or-create handle for the tool server (Ensure / Close).
  - ToolClient: Lists the catalog and invokes tools on a running server.
  - Planner: Sends one planning request to a language model provider.
  - DistributedLocker: Serializes tool server startup across processes.
*/
package ports
