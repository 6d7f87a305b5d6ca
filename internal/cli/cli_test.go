package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/radiolab/internal/config"
	"github.com/aretw0/radiolab/internal/logging"
	toolhttp "github.com/aretw0/radiolab/pkg/adapters/http"
	"github.com/aretw0/radiolab/pkg/bridge"
	"github.com/aretw0/radiolab/pkg/catalog"
	"github.com/aretw0/radiolab/pkg/domain"
	"github.com/aretw0/radiolab/pkg/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"RADIOLAB_SERVER_ADDR", "RADIOLAB_LOG_LEVEL", "RADIOLAB_REDIS_ADDR", "RADIOLAB_MODELS",
		config.EnvSimSeed, config.EnvConfig,
		"ANTHROPIC_API_KEY", "ANTHROPIC_BASE_URL", "GEMINI_API_KEY", "GOOGLE_API_KEY",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Chdir(t.TempDir())
}

// startToolServer serves the built-in catalog in process and returns its address.
func startToolServer(t *testing.T) string {
	t.Helper()
	reg, err := catalog.NewRegistry(sim.New(sim.WithSeed(3)))
	require.NoError(t, err)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		toolhttp.NewServer(reg).Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return ln.Addr().String()
}

// fakeAnthropic answers every planning request with content.
func fakeAnthropic(t *testing.T, content string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"model": "claude-test", "content": ` + content + `}`))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func writeConfig(t *testing.T, addr, baseURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "radiolab.yaml")
	body := "log_level: error\n" +
		"server:\n  addr: " + addr + "\n  probe_attempts: 2\n  probe_interval: 50ms\n" +
		"planner:\n  models: [anthropic:claude-test]\n  anthropic_base_url: " + baseURL + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDecompose(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Decompose("compare 2x2 vs 4x4 mimo antennas at 0, 10 dB", &out))

	s := out.String()
	assert.Contains(t, s, "task_type: mimo_comparison")
	assert.Contains(t, s, "snr_db_list:")
	assert.Contains(t, s, "---\n")
}

func TestTools_Local(t *testing.T) {
	isolateEnv(t)
	var out bytes.Buffer
	require.NoError(t, Tools(context.Background(), ToolsOptions{JSON: true}, &out))

	var c domain.Catalog
	require.NoError(t, json.Unmarshal(out.Bytes(), &c))
	assert.Equal(t, "local", c.ServerID)
	assert.Len(t, c.Tools, 9)

	out.Reset()
	require.NoError(t, Tools(context.Background(), ToolsOptions{}, &out))
	assert.Contains(t, out.String(), "## "+catalog.SimulateBER)
}

func TestTools_Remote(t *testing.T) {
	isolateEnv(t)
	addr := startToolServer(t)

	var out bytes.Buffer
	err := Tools(context.Background(), ToolsOptions{Options: Options{Addr: addr}, Remote: true, JSON: true}, &out)
	require.NoError(t, err)

	var c domain.Catalog
	require.NoError(t, json.Unmarshal(out.Bytes(), &c))
	assert.NotEqual(t, "local", c.ServerID)
	assert.Len(t, c.Tools, 9)
}

func TestNewCandidates(t *testing.T) {
	logger := logging.NewNop()
	cfg := config.Default()
	cfg.Planner.Models = []string{"anthropic:claude-a", "gemini:gemini-b", "anthropic:claude-c"}

	_, err := newCandidates(context.Background(), &cfg, logger)
	assert.ErrorIs(t, err, ErrNoCredentials)

	cfg.Planner.AnthropicAPIKey = "sk-test"
	got, err := newCandidates(context.Background(), &cfg, logger)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "anthropic:claude-a", got[0].String())
	assert.Equal(t, "anthropic:claude-c", got[1].String())
	assert.Same(t, got[0].Provider, got[1].Provider)

	cfg.Planner.GeminiAPIKey = "g-test"
	got, err = newCandidates(context.Background(), &cfg, logger)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "gemini:gemini-b", got[1].String())
}

func TestRun_ExecutesPlan(t *testing.T) {
	isolateEnv(t)
	addr := startToolServer(t)
	baseURL := fakeAnthropic(t, `[
		{"type": "text", "text": "Looking up QPSK."},
		{"type": "tool_use", "id": "t1", "name": "get_modulation_info", "input": {"modulation": "qpsk"}},
		{"type": "tool_use", "id": "t2", "name": "list_modulations", "input": {}}
	]`)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := Run(ctx, RunOptions{
		Options: Options{ConfigPath: writeConfig(t, addr, baseURL)},
		Task:    "describe qpsk",
		JSON:    true,
	}, &out)
	require.NoError(t, err)

	var got struct {
		Plan   domain.ToolCallPlan `json:"plan"`
		Report bridge.Report       `json:"report"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "claude-test", got.Plan.Model)
	assert.Equal(t, "Looking up QPSK.", got.Plan.Response)
	require.NotNil(t, got.Plan.Decomposition)
	require.Len(t, got.Report.Outcomes, 2)
	assert.Equal(t, bridge.StatusOK, got.Report.Outcomes[0].Status)
	assert.Equal(t, "4-QAM", got.Report.Outcomes[0].Result.(map[string]any)["modulation"])
	assert.Equal(t, bridge.StatusOK, got.Report.Outcomes[1].Status)
}

func TestRun_ReportsFailedCalls(t *testing.T) {
	isolateEnv(t)
	addr := startToolServer(t)
	baseURL := fakeAnthropic(t, `[
		{"type": "tool_use", "id": "t1", "name": "get_modulation_info", "input": {"bits_per_symbol": 99}},
		{"type": "tool_use", "id": "t2", "name": "list_modulations", "input": {}}
	]`)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		Options: Options{ConfigPath: writeConfig(t, addr, baseURL)},
		Task:    "describe a 99 bit modulation",
		Graph:   true,
	}, &out)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArguments)

	s := out.String()
	assert.Contains(t, s, "❌ failed")
	assert.Contains(t, s, "✅ ok")
	assert.Contains(t, s, "```mermaid")
	assert.Contains(t, s, "class call1_get_modulation_info failed;")
}

func TestRun_DryRun(t *testing.T) {
	isolateEnv(t)
	addr := startToolServer(t)
	baseURL := fakeAnthropic(t, `[{"type": "tool_use", "id": "t1", "name": "list_modulations", "input": {}}]`)
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	var out bytes.Buffer
	err := Run(context.Background(), RunOptions{
		Options:     Options{ConfigPath: writeConfig(t, addr, baseURL)},
		Task:        "list modulations",
		DryRun:      true,
		NoDecompose: true,
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "_Dry run: nothing was executed._")
	assert.NotContains(t, out.String(), "## Decomposition")
}

func TestRun_RejectsEmptyTask(t *testing.T) {
	err := Run(context.Background(), RunOptions{Task: "  \x00 "}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestServeMCP_UnknownTransport(t *testing.T) {
	isolateEnv(t)
	err := ServeMCP(context.Background(), Options{}, "carrier-pigeon", nil, nil)
	assert.ErrorContains(t, err, "unknown transport")
}
