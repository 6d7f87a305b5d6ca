package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrServerStartup is returned when the tool server process exits before it becomes healthy.
	ErrServerStartup = errors.New("tool server failed to start")

	// ErrServerTimeout is returned when the tool server never answers the liveness probe.
	ErrServerTimeout = errors.New("tool server did not become ready")

	// ErrCatalogFetch is returned when the catalog cannot be read from a healthy server.
	ErrCatalogFetch = errors.New("failed to fetch tool catalog")

	// ErrModelUnavailable marks a provider error meaning "try the next model".
	// Any other provider error aborts planning.
	ErrModelUnavailable = errors.New("model unavailable")

	// ErrPlanning is returned when no candidate model produced a plan.
	ErrPlanning = errors.New("planning failed")

	// ErrToolNotFound is returned when a call names a tool that is not in the catalog.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidArguments is returned when arguments do not satisfy the tool schema.
	ErrInvalidArguments = errors.New("invalid tool arguments")

	// ErrInvocation is returned when a tool reached the server but failed there.
	ErrInvocation = errors.New("tool invocation failed")

	// ErrCatalogMismatch is returned when a plan is executed against a different server instance.
	ErrCatalogMismatch = errors.New("plan catalog belongs to a different tool server")
)

// StartupError carries the diagnostic output of a server process that died during startup.
type StartupError struct {
	Err    error
	Output string
}

func (e *StartupError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%v: %v", ErrServerStartup, e.Err)
	}
	return fmt.Sprintf("%v: %v. Output: %s", ErrServerStartup, e.Err, e.Output)
}

func (e *StartupError) Unwrap() error { return e.Err }

func (e *StartupError) Is(target error) bool { return target == ErrServerStartup }

// InvocationError is a structured failure reported by the tool server for one call.
type InvocationError struct {
	Tool    string
	Status  int
	Message string
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("tool %s failed (status %d): %s", e.Tool, e.Status, e.Message)
}

func (e *InvocationError) Is(target error) bool { return target == ErrInvocation }
