package ports

import (
	"context"

	"github.com/aretw0/radiolab/pkg/domain"
)

// Planner sends a planning request to one language model provider.
//
// Implementations must wrap domain.ErrModelUnavailable when the requested
// model does not exist or is not served, so that callers can move on to the
// next candidate. Every other error is treated as fatal.
// A nil response without an error is read as an empty answer.
type Planner interface {
	Name() string
	Plan(ctx context.Context, model string, req domain.PlanRequest) (*domain.PlanResponse, error)
}
