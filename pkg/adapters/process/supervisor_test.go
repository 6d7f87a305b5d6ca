package process

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/signal"
	"runtime"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	toolhttp "github.com/aretw0/radiolab/pkg/adapters/http"
	"github.com/aretw0/radiolab/pkg/adapters/redis"
	"github.com/aretw0/radiolab/pkg/domain"
	"github.com/aretw0/radiolab/pkg/ports"
	"github.com/aretw0/radiolab/pkg/registry"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// helperEnv makes the test binary act as a tool server child.
const helperEnv = "RADIOLAB_TEST_HELPER"

func TestMain(m *testing.M) {
	if mode := os.Getenv(helperEnv); mode != "" {
		os.Exit(runHelper(mode))
	}
	goleak.VerifyTestMain(m)
}

func runHelper(mode string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch mode {
	case "serve":
		ln, ok, err := InheritedListener()
		if err != nil || !ok {
			fmt.Fprintln(os.Stderr, "no inherited listener:", err)
			return 2
		}
		if err := toolhttp.NewServer(pingRegistry()).Serve(ctx, ln); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	case "crash":
		fmt.Fprintln(os.Stderr, "boom: simulator backend missing")
		return 3
	case "hang":
		<-ctx.Done()
		return 0
	}
	return 2
}

func pingRegistry() *registry.Registry {
	reg, err := registry.New(registry.Tool{
		Spec: domain.ToolSpec{Name: "ping", Description: "Answers pong."},
		Fn: func(ctx context.Context, args map[string]any) (any, error) {
			return "pong", nil
		},
	})
	if err != nil {
		panic(err)
	}
	return reg
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func helperSupervisor(t *testing.T, addr, mode string, opts ...Option) *Supervisor {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("listener inheritance needs ExtraFiles")
	}
	base := []Option{
		WithCommand(os.Args[0]),
		WithEnv(map[string]string{helperEnv: mode}),
		WithProbe(40, 50*time.Millisecond, 200*time.Millisecond),
	}
	s := NewSupervisor(addr, append(base, opts...)...)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEnsure_ReusesHealthyServer(t *testing.T) {
	ts := httptest.NewServer(toolhttp.NewHandler(pingRegistry()))
	defer ts.Close()

	s := NewSupervisor(ts.Listener.Addr().String(), WithCommand("/nonexistent/radiolab"))
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Ensure(ctx))
	require.NoError(t, s.Ensure(ctx))
	assert.Equal(t, 0, s.launches)
	assert.False(t, s.Owned())

	require.NoError(t, s.Close())
	assert.NoError(t, s.Client().Probe(ctx), "a reused server must keep running")
}

func TestEnsure_LaunchesOnce(t *testing.T) {
	s := helperSupervisor(t, freeAddr(t), "serve")
	ctx := context.Background()

	require.NoError(t, s.Ensure(ctx))
	require.NoError(t, s.Ensure(ctx))
	assert.Equal(t, 1, s.launches)
	assert.True(t, s.Owned())

	catalog, err := s.Client().ListTools(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"ping"}, catalog.Names())

	res, err := s.Client().CallTool(ctx, catalog.ServerID, domain.ToolInvocation{Tool: "ping"})
	require.NoError(t, err)
	assert.Equal(t, "pong", res.Payload)

	require.NoError(t, s.Close())
	assert.False(t, s.Owned())
	assert.Error(t, s.Client().Probe(ctx))
}

func TestEnsure_ProcessExits(t *testing.T) {
	s := helperSupervisor(t, freeAddr(t), "crash")

	err := s.Ensure(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrServerStartup)

	var startErr *domain.StartupError
	require.ErrorAs(t, err, &startErr)
	assert.Contains(t, startErr.Output, "boom: simulator backend missing")
	assert.Contains(t, startErr.Error(), "exit status 3")
	assert.False(t, s.Owned())
}

func TestEnsure_Timeout(t *testing.T) {
	s := helperSupervisor(t, freeAddr(t), "hang", WithProbe(3, 50*time.Millisecond, 100*time.Millisecond))

	err := s.Ensure(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrServerTimeout)
	assert.False(t, errors.Is(err, domain.ErrServerStartup))
	assert.Equal(t, 1, s.launches)
	assert.False(t, s.Owned(), "an unresponsive child is terminated")
}

func TestEnsure_AddressInUseWaitsForOwner(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{Handler: toolhttp.NewHandler(pingRegistry())}
	go func() {
		time.Sleep(300 * time.Millisecond)
		srv.Serve(ln)
	}()
	defer srv.Close()

	s := NewSupervisor(ln.Addr().String(),
		WithCommand("/nonexistent/radiolab"),
		WithProbe(40, 50*time.Millisecond, 100*time.Millisecond),
	)
	defer s.Close()

	require.NoError(t, s.Ensure(context.Background()))
	assert.Equal(t, 0, s.launches)
	assert.False(t, s.Owned())
}

func TestEnsure_ContextCancelled(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	s := NewSupervisor(ln.Addr().String(), WithProbe(100, 50*time.Millisecond, 50*time.Millisecond))
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, s.Ensure(ctx), context.DeadlineExceeded)
}

func TestEnsure_WithLocker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	addr := freeAddr(t)
	locker := redis.NewLocker(client, redis.DefaultPrefix, redis.WithPollInterval(10*time.Millisecond))
	s := helperSupervisor(t, addr, "serve", WithLocker(locker, 0))

	require.NoError(t, s.Ensure(context.Background()))
	assert.True(t, s.Owned())
	assert.False(t, mr.Exists(locker.Key(addr)), "start lock must be released")
}

// recordingLocker grants every lock and remembers the requested expiry.
type recordingLocker struct {
	ttls []time.Duration
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.ttls = append(l.ttls, ttl)
	return func(context.Context) error { return nil }, nil
}

func TestSupervisor_LockTTL(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want time.Duration
	}{
		{"defaults", nil, 20*(DefaultProbeInterval+DefaultProbeTimeout) + LockMargin},
		{"derived from probe budget", []Option{WithProbe(10, time.Second, 2*time.Second), WithLocker(&recordingLocker{}, 0)}, 30*time.Second + LockMargin},
		{"short ttl is raised", []Option{WithProbe(10, time.Second, 2*time.Second), WithLocker(&recordingLocker{}, 5*time.Second)}, 30*time.Second + LockMargin},
		{"long ttl is kept", []Option{WithLocker(&recordingLocker{}, 2*time.Minute)}, 2 * time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSupervisor("127.0.0.1:1", tt.opts...)
			defer s.Close()
			assert.Equal(t, tt.want, s.LockTTL())
		})
	}
	assert.Greater(t, NewSupervisor("127.0.0.1:1").LockTTL(),
		time.Duration(DefaultProbeAttempts)*(DefaultProbeInterval+DefaultProbeTimeout),
		"the start lock must outlive a full cold start")
}

func TestEnsure_LockOutlivesProbeBudget(t *testing.T) {
	locker := &recordingLocker{}
	s := helperSupervisor(t, freeAddr(t), "serve", WithLocker(locker, time.Second))

	require.NoError(t, s.Ensure(context.Background()))
	require.Len(t, locker.ttls, 1)
	assert.Equal(t, 40*250*time.Millisecond+LockMargin, locker.ttls[0])
}

func TestInheritedListener(t *testing.T) {
	t.Setenv(EnvListenFD, "")
	ln, ok, err := InheritedListener()
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ln)

	t.Setenv(EnvListenFD, "stdin")
	_, _, err = InheritedListener()
	assert.Error(t, err)
}

func TestTailBuffer(t *testing.T) {
	b := newTailBuffer(8)
	fmt.Fprint(b, "0123456789")
	fmt.Fprint(b, "ab")
	assert.Equal(t, "456789ab", b.String())
}

func TestCommandBuild(t *testing.T) {
	cmd, err := Command{Path: "/bin/true", Args: []string{"serve"}, Env: map[string]string{"B": "2", "A": "1"}}.build()
	require.NoError(t, err)
	assert.Equal(t, []string{"/bin/true", "serve"}, cmd.Args)
	assert.Equal(t, []string{"A=1", "B=2"}, cmd.Env[len(cmd.Env)-2:])

	cmd, err = ServeCommand("127.0.0.1:5001").build()
	require.NoError(t, err)
	assert.Equal(t, []string{"serve", "--addr", "127.0.0.1:5001"}, cmd.Args[1:])
}
