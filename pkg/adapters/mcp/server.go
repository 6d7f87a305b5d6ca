package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/aretw0/radiolab"
	"github.com/aretw0/radiolab/internal/logging"
	"github.com/aretw0/radiolab/pkg/domain"
	"github.com/aretw0/radiolab/pkg/normalize"
	"github.com/aretw0/radiolab/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CatalogURI is the resource holding the tool catalog as JSON.
const CatalogURI = "radiolab://tools"

// ToolRegistry is the catalog the server exposes.
type ToolRegistry interface {
	List() []domain.ToolSpec
	Execute(ctx context.Context, name string, args map[string]any) (any, error)
}

// Server exposes a ToolRegistry as an MCP server.
type Server struct {
	registry  ToolRegistry
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for tool failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(reg ToolRegistry, opts ...Option) (*Server, error) {
	s := &Server{
		registry:  reg,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("radiolab-mcp", strings.TrimSpace(radiolab.Version), server.WithToolCapabilities(false)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.registerTools(); err != nil {
		return nil, err
	}
	s.registerResources()
	return s, nil
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves on Stdin/Stdout until ctx is cancelled or stdin closes.
func (s *Server) ServeStdio(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve speaks the stdio transport over in and out.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	stdio := server.NewStdioServer(s.mcpServer)
	stdio.SetErrorLogger(slog.NewLogLogger(s.logger.Handler(), slog.LevelError))
	err := stdio.Listen(ctx, in, out)
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// SSEHandler returns the SSE transport routes (/sse and /message) for baseURL.
func (s *Server) SSEHandler(baseURL string) http.Handler {
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	r := chi.NewRouter()
	r.Use(corsMiddleware)
	r.Handle("/sse", sse.SSEHandler())
	r.Handle("/message", sse.MessageHandler())
	return r
}

// ServeSSE serves the SSE transport on ln until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, ln net.Listener) error {
	baseURL := "http://" + ln.Addr().String()
	httpServer := &http.Server{
		Handler:           s.SSEHandler(baseURL),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", ln.Addr().String())
		serverErrors <- httpServer.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() error {
	for _, spec := range s.registry.List() {
		raw, err := json.Marshal(schema.JSONSchema(spec))
		if err != nil {
			return fmt.Errorf("encode schema for %s: %w", spec.Name, err)
		}
		s.mcpServer.AddTool(mcp.NewToolWithRawSchema(spec.Name, spec.Description, raw), s.handler(spec.Name))
	}
	return nil
}

func (s *Server) handler(name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := s.registry.Execute(ctx, name, request.GetArguments())
		if err != nil {
			s.logger.Warn("MCP tool call failed", "tool", name, "error", err)
			return mcp.NewToolResultError(err.Error()), nil
		}

		structured := normalize.Map(result)
		text, err := json.Marshal(structured)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("encode result", err), nil
		}
		return mcp.NewToolResultStructured(structured, string(text)), nil
	}
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CatalogURI, "Tool catalog",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(s.registry.List())
		if err != nil {
			return nil, fmt.Errorf("failed to encode catalog: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      CatalogURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
