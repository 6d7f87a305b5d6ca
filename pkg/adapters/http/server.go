package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/radiolab"
	"github.com/aretw0/radiolab/internal/logging"
	"github.com/aretw0/radiolab/pkg/domain"
	"github.com/aretw0/radiolab/pkg/normalize"
	"github.com/aretw0/radiolab/pkg/schema"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// ToolRegistry is the catalog the server exposes.
type ToolRegistry interface {
	List() []domain.ToolSpec
	Execute(ctx context.Context, name string, args map[string]any) (any, error)
}

// Server exposes a ToolRegistry over HTTP.
type Server struct {
	Registry ToolRegistry
	ServerID string

	logger  *slog.Logger
	metrics *Metrics
	router  chi.Router

	openapiOnce sync.Once
	openapiDoc  []byte
	openapiErr  error
}

// Option configures a Server.
type Option func(*Server)

// WithServerID fixes the instance identifier instead of generating one.
func WithServerID(id string) Option {
	return func(s *Server) {
		s.ServerID = id
	}
}

// WithLogger sets the logger for request failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics replaces the server metrics.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer creates a server for reg. Every server gets a fresh ServerID.
func NewServer(reg ToolRegistry, opts ...Option) *Server {
	s := &Server{
		Registry: reg,
		ServerID: uuid.NewString(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = NewMetrics()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/tools", s.ListTools)
	r.Post("/tools/call", s.CallTool)
	r.Get("/health", s.GetHealth)
	r.Get("/openapi.json", s.GetOpenAPI)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	s.router = r
	return s
}

// NewHandler creates a new HTTP handler for the registry.
func NewHandler(reg ToolRegistry, opts ...Option) http.Handler {
	return NewServer(reg, opts...)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Serve answers requests on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("Tool server listening", "addr", ln.Addr().String(), "server_id", s.ServerID)
		serverErrors <- srv.Serve(ln)
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("tool server error: %w", err)
	case <-ctx.Done():
		s.logger.Info("Tool server shutting down", "server_id", s.ServerID)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// ListTools handles GET /tools. It is also the liveness probe.
func (s *Server) ListTools(w http.ResponseWriter, r *http.Request) {
	specs := s.Registry.List()
	resp := ListToolsResponse{
		ServerID: s.ServerID,
		Tools:    make([]ToolDescriptor, len(specs)),
	}
	for i, spec := range specs {
		resp.Tools[i] = ToolDescriptor{
			Name:        spec.Name,
			Description: spec.Description,
			Parameters:  spec.Params,
			InputSchema: schema.JSONSchema(spec),
		}
	}
	writeJSON(w, http.StatusOK, resp, s.logger)
}

// CallTool handles POST /tools/call.
func (s *Server) CallTool(w http.ResponseWriter, r *http.Request) {
	var body CallToolRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Name) == "" {
		if err == nil {
			err = errors.New("missing tool name")
		}
		s.logger.Warn("CallTool: Invalid request body", "error", err)
		s.metrics.Observe("", statusBadRequest, 0)
		writeJSON(w, http.StatusBadRequest, CallToolResponse{Error: fmt.Sprintf("Invalid request body: %v", err)}, s.logger)
		return
	}

	if id := r.Header.Get(HeaderServerID); id != "" && id != s.ServerID {
		s.logger.Warn("CallTool: Server ID mismatch", "tool", body.Name, "server_id", id)
		s.metrics.Observe(body.Name, statusMismatch, 0)
		writeJSON(w, http.StatusConflict, CallToolResponse{
			Error: fmt.Sprintf("%v: expected %s, got %s", domain.ErrCatalogMismatch, s.ServerID, id),
		}, s.logger)
		return
	}

	start := time.Now()
	result, err := s.Registry.Execute(r.Context(), body.Name, body.Arguments)
	elapsed := time.Since(start)

	if err != nil {
		code, label := statusFor(err)
		tool := body.Name
		if code == http.StatusNotFound {
			tool = ""
		}
		s.metrics.Observe(tool, label, elapsed)
		if code == http.StatusInternalServerError {
			s.logger.Error("Tool execution failed", "tool", body.Name, "error", err)
		} else {
			s.logger.Warn("Tool call rejected", "tool", body.Name, "error", err)
		}
		writeJSON(w, code, CallToolResponse{Error: err.Error()}, s.logger)
		return
	}

	s.metrics.Observe(body.Name, statusOK, elapsed)
	writeJSON(w, http.StatusOK, CallToolResponse{Result: normalize.Value(result)}, s.logger)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{
		"status":    "ok",
		"server_id": s.ServerID,
		"version":   strings.TrimSpace(radiolab.Version),
	}
	writeJSON(w, http.StatusOK, resp, s.logger)
}

// GetOpenAPI handles GET /openapi.json. The document is built once from the registry.
func (s *Server) GetOpenAPI(w http.ResponseWriter, r *http.Request) {
	s.openapiOnce.Do(func() {
		doc, err := BuildOpenAPI(context.Background(), s.Registry.List(), strings.TrimSpace(radiolab.Version))
		if err != nil {
			s.openapiErr = err
			return
		}
		s.openapiDoc, s.openapiErr = doc.MarshalJSON()
	})
	if s.openapiErr != nil {
		s.logger.Error("Failed to build OpenAPI document", "error", s.openapiErr)
		http.Error(w, "Failed to build spec", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(s.openapiDoc)
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrToolNotFound):
		return http.StatusNotFound, statusNotFound
	case errors.Is(err, domain.ErrInvalidArguments):
		return http.StatusUnprocessableEntity, statusInvalid
	default:
		return http.StatusInternalServerError, statusError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Response encode failed", "error", err)
	}
}
