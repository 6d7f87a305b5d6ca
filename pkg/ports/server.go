package ports

import (
	"context"

	"github.com/aretw0/radiolab/pkg/domain"
)

// ToolClient talks to a running tool server.
type ToolClient interface {
	// Probe performs one liveness check bounded by the client's probe timeout.
	Probe(ctx context.Context) error

	// ListTools returns the catalog of the server instance currently answering.
	ListTools(ctx context.Context) (domain.Catalog, error)

	// CallTool invokes one tool. serverID, when not empty, must match the
	// answering instance. Failures reported by the server come back as errors
	// wrapping domain.ErrToolNotFound, domain.ErrInvalidArguments,
	// domain.ErrCatalogMismatch or domain.ErrInvocation.
	CallTool(ctx context.Context, serverID string, inv domain.ToolInvocation) (domain.ToolResult, error)
}

// ToolServer is an owned handle on the tool server.
type ToolServer interface {
	// Ensure makes sure a healthy server answers at the handle's address,
	// starting one if needed. It is idempotent.
	Ensure(ctx context.Context) error

	// Client returns the client bound to the handle's address.
	Client() ToolClient

	// Close stops the server only if this handle started it.
	Close() error
}
