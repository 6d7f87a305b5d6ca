package cli

import (
	"context"
	"fmt"
	"io"
	"net"

	toolhttp "github.com/aretw0/radiolab/pkg/adapters/http"
	"github.com/aretw0/radiolab/pkg/adapters/mcp"
	"github.com/aretw0/radiolab/pkg/adapters/process"
)

// Serve runs the HTTP tool server until ctx is cancelled.
// Under a supervisor it serves on the inherited listener.
func Serve(ctx context.Context, opts Options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, err := createLogger(cfg.LogLevel, opts.Debug)
	if err != nil {
		return err
	}

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	ln, err := process.Listen(cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
	}

	srv := toolhttp.NewServer(reg, toolhttp.WithLogger(logger))
	return handleExecutionError(srv.Serve(ctx, ln))
}

// Transports accepted by ServeMCP.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// ServeMCP runs the MCP server on stdio, or on SSE at opts.Addr.
func ServeMCP(ctx context.Context, opts Options, transport string, in io.Reader, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logger, err := createLogger(cfg.LogLevel, opts.Debug)
	if err != nil {
		return err
	}

	reg, err := newRegistry(cfg)
	if err != nil {
		return err
	}
	srv, err := mcp.NewServer(reg, mcp.WithLogger(logger))
	if err != nil {
		return err
	}

	switch transport {
	case TransportStdio:
		logger.Info("Starting MCP Server (stdio)")
		return srv.Serve(ctx, in, out)
	case TransportSSE:
		ln, err := net.Listen("tcp", cfg.Server.Addr)
		if err != nil {
			return fmt.Errorf("failed to listen on %s: %w", cfg.Server.Addr, err)
		}
		return srv.ServeSSE(ctx, ln)
	default:
		return fmt.Errorf("unknown transport %q (supported: %s, %s)", transport, TransportStdio, TransportSSE)
	}
}
