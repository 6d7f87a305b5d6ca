// Package process supervises a local tool server: it reuses a healthy server
// at the configured address or launches one and waits until it answers.
package process

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"syscall"
	"time"

	"github.com/aretw0/radiolab/internal/logging"
	toolhttp "github.com/aretw0/radiolab/pkg/adapters/http"
	"github.com/aretw0/radiolab/pkg/domain"
	"github.com/aretw0/radiolab/pkg/ports"
)

// Probe defaults.
const (
	DefaultProbeAttempts = 20
	DefaultProbeInterval = 500 * time.Millisecond
	DefaultProbeTimeout  = time.Second
)

// LockMargin is added to the probe budget when deriving the start lock TTL.
const LockMargin = 10 * time.Second

// Supervisor implements ports.ToolServer for a server at a fixed address.
type Supervisor struct {
	addr        string
	command     Command
	locker      ports.DistributedLocker
	lockTTL     time.Duration
	client      ports.ToolClient
	transport   *http.Transport
	logger      *slog.Logger
	outputLimit int

	attempts     int
	interval     time.Duration
	probeTimeout time.Duration

	mu       sync.Mutex
	child    *child
	launches int
}

// Option configures a Supervisor.
type Option func(*Supervisor)

// WithCommand sets the program that serves the tools.
func WithCommand(path string, args ...string) Option {
	return func(s *Supervisor) {
		s.command.Path = path
		s.command.Args = args
	}
}

// WithProcess sets the full launch description.
func WithProcess(cmd Command) Option {
	return func(s *Supervisor) {
		s.command = cmd
	}
}

// WithEnv adds environment variables for the launched server.
func WithEnv(env map[string]string) Option {
	return func(s *Supervisor) {
		if s.command.Env == nil {
			s.command.Env = make(map[string]string, len(env))
		}
		for k, v := range env {
			s.command.Env[k] = v
		}
	}
}

// WithLocker serializes the start sequence across processes.
// The lock is held for at least the full probe budget plus LockMargin; a
// larger ttl is kept as is.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(s *Supervisor) {
		s.locker = l
		if ttl > 0 {
			s.lockTTL = ttl
		}
	}
}

// WithProbe sets the readiness polling budget.
func WithProbe(attempts int, interval, timeout time.Duration) Option {
	return func(s *Supervisor) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if interval > 0 {
			s.interval = interval
		}
		if timeout > 0 {
			s.probeTimeout = timeout
		}
	}
}

// WithClient replaces the client used for probes and calls.
func WithClient(c ports.ToolClient) Option {
	return func(s *Supervisor) {
		s.client = c
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) {
		s.logger = logger
	}
}

// WithOutputLimit bounds the captured server output.
func WithOutputLimit(n int) Option {
	return func(s *Supervisor) {
		s.outputLimit = n
	}
}

// NewSupervisor creates a supervisor for the server at addr.
// Without WithCommand it launches "<this executable> serve --addr addr".
func NewSupervisor(addr string, opts ...Option) *Supervisor {
	s := &Supervisor{
		addr:         addr,
		command:      ServeCommand(addr),
		logger:       logging.NewNop(),
		outputLimit:  DefaultOutputLimit,
		attempts:     DefaultProbeAttempts,
		interval:     DefaultProbeInterval,
		probeTimeout: DefaultProbeTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.client == nil {
		s.transport = &http.Transport{}
		s.client = toolhttp.NewClient(addr,
			toolhttp.WithHTTPClient(&http.Client{Transport: s.transport}),
			toolhttp.WithProbeTimeout(s.probeTimeout),
		)
	}
	return s
}

// Addr returns the supervised address.
func (s *Supervisor) Addr() string { return s.addr }

// Client returns the client bound to the supervised server.
func (s *Supervisor) Client() ports.ToolClient { return s.client }

// LockTTL returns the expiry used for the start lock. It never ends before
// a cold start could still be probing.
func (s *Supervisor) LockTTL() time.Duration {
	budget := time.Duration(s.attempts)*(s.interval+s.probeTimeout) + LockMargin
	return max(s.lockTTL, budget)
}

// Owned reports whether this supervisor launched the running server.
func (s *Supervisor) Owned() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.child != nil && !s.child.exited()
}

// Ensure returns once a server answers at the address, launching one if needed.
// It is idempotent: a healthy server is reused and never launched twice.
func (s *Supervisor) Ensure(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.probe(ctx) == nil {
		return nil
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, s.addr, s.LockTTL())
		if err != nil {
			return fmt.Errorf("start lock for %s: %w", s.addr, err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("Failed to release start lock", "addr", s.addr, "error", err)
			}
		}()
		if s.probe(ctx) == nil {
			return nil
		}
	}

	if s.child != nil {
		if !s.child.exited() {
			// Our server is alive but not answering yet.
			return s.waitReady(ctx, s.child)
		}
		s.child = nil
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		if errors.Is(err, syscall.EADDRINUSE) {
			s.logger.Info("Address in use, waiting for the running tool server", "addr", s.addr)
			return s.waitReady(ctx, nil)
		}
		return &domain.StartupError{Err: err}
	}

	cmd, err := s.command.build()
	if err != nil {
		ln.Close()
		return &domain.StartupError{Err: err}
	}
	c, err := start(cmd, ln, s.outputLimit)
	// The child holds its own copy of the socket.
	ln.Close()
	if err != nil {
		return &domain.StartupError{Err: err}
	}
	s.child = c
	s.launches++
	s.logger.Info("Tool server launched", "addr", s.addr, "pid", cmd.Process.Pid)

	return s.waitReady(ctx, c)
}

// waitReady polls the server. A non-nil c is the process expected to answer.
func (s *Supervisor) waitReady(ctx context.Context, c *child) error {
	var exited <-chan struct{}
	if c != nil {
		exited = c.done
	}

	for attempt := 1; attempt <= s.attempts; attempt++ {
		err := s.probe(ctx)
		if err == nil {
			s.logger.Info("Tool server ready", "addr", s.addr, "attempt", attempt)
			return nil
		}
		s.logger.Debug("Tool server not ready", "addr", s.addr, "attempt", attempt, "error", err)
		if attempt == s.attempts {
			break
		}

		timer := time.NewTimer(s.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-exited:
			timer.Stop()
			return s.startupFailure(c)
		case <-timer.C:
		}
	}

	if c != nil {
		if c.exited() {
			return s.startupFailure(c)
		}
		s.logger.Warn("Tool server unresponsive, terminating it", "addr", s.addr)
		c.stop(stopGracePeriod)
		s.child = nil
	}
	return fmt.Errorf("%w: %s after %d attempts", domain.ErrServerTimeout, s.addr, s.attempts)
}

func (s *Supervisor) startupFailure(c *child) error {
	s.child = nil
	err := &domain.StartupError{Err: c.exitError(), Output: c.output.String()}
	s.logger.Error("Tool server exited during startup", "addr", s.addr, "error", err.Err)
	return err
}

func (s *Supervisor) probe(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()
	return s.client.Probe(ctx)
}

// Close stops the server if this supervisor launched it: interrupt, then
// kill after a grace period. A reused server is left running.
func (s *Supervisor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.transport != nil {
		defer s.transport.CloseIdleConnections()
	}
	if s.child == nil {
		return nil
	}
	c := s.child
	s.child = nil
	s.logger.Info("Stopping tool server", "addr", s.addr, "pid", c.cmd.Process.Pid)
	c.stop(stopGracePeriod)
	return nil
}
