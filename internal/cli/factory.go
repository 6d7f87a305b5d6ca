package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/radiolab/internal/config"
	"github.com/aretw0/radiolab/pkg/adapters/anthropic"
	"github.com/aretw0/radiolab/pkg/adapters/gemini"
	"github.com/aretw0/radiolab/pkg/adapters/process"
	redisAdapter "github.com/aretw0/radiolab/pkg/adapters/redis"
	"github.com/aretw0/radiolab/pkg/agent"
	"github.com/aretw0/radiolab/pkg/bridge"
	"github.com/aretw0/radiolab/pkg/catalog"
	"github.com/aretw0/radiolab/pkg/decompose"
	"github.com/aretw0/radiolab/pkg/registry"
	"github.com/aretw0/radiolab/pkg/sim"
)

// ErrNoCredentials is returned when no configured model has an API key.
var ErrNoCredentials = errors.New("no API key for any configured model (set ANTHROPIC_API_KEY or GEMINI_API_KEY)")

// Pipeline is the wired planning and execution stack for one command.
type Pipeline struct {
	Supervisor *process.Supervisor
	Agent      *agent.Agent
	Bridge     *bridge.Bridge

	closers []func() error
}

// Close stops an owned tool server and releases connections.
func (p *Pipeline) Close() error {
	errs := []error{p.Agent.Close()}
	for _, c := range p.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// newSimulator builds the simulator the configuration asks for.
func newSimulator(cfg *config.Config) *sim.Simulator {
	if cfg.Sim.Seed != 0 {
		return sim.New(sim.WithSeed(cfg.Sim.Seed))
	}
	return sim.New()
}

// newRegistry builds the built-in tool catalog.
func newRegistry(cfg *config.Config) (*registry.Registry, error) {
	return catalog.NewRegistry(newSimulator(cfg))
}

// newSupervisor builds the tool server handle, with the Redis start lock when configured.
func newSupervisor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*process.Supervisor, func() error, error) {
	opts := []process.Option{
		process.WithProbe(cfg.Server.ProbeAttempts, cfg.Server.ProbeInterval, cfg.Server.ProbeTimeout),
		process.WithLogger(logger),
	}
	env := map[string]string{}
	if cfg.Path != "" {
		env[config.EnvConfig] = cfg.Path
	}
	if cfg.Sim.Seed != 0 {
		env[config.EnvSimSeed] = fmt.Sprint(cfg.Sim.Seed)
	}
	opts = append(opts, process.WithEnv(env))

	closer := func() error { return nil }
	if cfg.Redis.Addr != "" {
		client, err := redisAdapter.Dial(ctx, cfg.Redis.Addr)
		if err != nil {
			return nil, nil, err
		}
		locker := redisAdapter.NewLocker(client, redisAdapter.DefaultPrefix)
		opts = append(opts, process.WithLocker(locker, cfg.Redis.LockTTL))
		closer = client.Close
		logger.Debug("Start lock enabled", "redis", cfg.Redis.Addr)
	}

	return process.NewSupervisor(cfg.Server.Addr, opts...), closer, nil
}

// newCandidates resolves the configured models to providers, skipping those
// without credentials.
func newCandidates(ctx context.Context, cfg *config.Config, logger *slog.Logger) ([]agent.Candidate, error) {
	refs, err := cfg.Planner.ModelRefs()
	if err != nil {
		return nil, err
	}

	var (
		claude *anthropic.Planner
		gem    *gemini.Planner
		out    []agent.Candidate
	)
	for _, ref := range refs {
		switch ref.Provider {
		case config.ProviderAnthropic:
			if cfg.Planner.AnthropicAPIKey == "" {
				logger.Debug("Skipping model without API key", "model", ref.String())
				continue
			}
			if claude == nil {
				opts := []anthropic.Option{anthropic.WithLogger(logger)}
				if cfg.Planner.AnthropicBaseURL != "" {
					opts = append(opts, anthropic.WithBaseURL(cfg.Planner.AnthropicBaseURL))
				}
				claude = anthropic.New(cfg.Planner.AnthropicAPIKey, opts...)
			}
			out = append(out, agent.Candidate{Provider: claude, Model: ref.Model})
		case config.ProviderGemini:
			if cfg.Planner.GeminiAPIKey == "" {
				logger.Debug("Skipping model without API key", "model", ref.String())
				continue
			}
			if gem == nil {
				opts := []gemini.Option{gemini.WithLogger(logger)}
				if cfg.Planner.GeminiBaseURL != "" {
					opts = append(opts, gemini.WithBaseURL(cfg.Planner.GeminiBaseURL))
				}
				gem, err = gemini.New(ctx, cfg.Planner.GeminiAPIKey, opts...)
				if err != nil {
					return nil, err
				}
			}
			out = append(out, agent.Candidate{Provider: gem, Model: ref.Model})
		}
	}
	if len(out) == 0 {
		return nil, ErrNoCredentials
	}
	return out, nil
}

// newPipeline wires supervisor, agent and bridge from the configuration.
func newPipeline(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Pipeline, error) {
	candidates, err := newCandidates(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	sup, closeLock, err := newSupervisor(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	agentOpts := []agent.Option{
		agent.WithMaxTokens(cfg.Planner.MaxTokens),
		agent.WithLogger(logger),
	}
	if cfg.Planner.Decompose {
		agentOpts = append(agentOpts, agent.WithDecomposer(decompose.New()))
	}
	if cfg.Planner.SystemPrompt != "" {
		agentOpts = append(agentOpts, agent.WithSystemPrompt(cfg.Planner.SystemPrompt))
	}

	bridgeOpts := []bridge.Option{bridge.WithLogger(logger)}
	if cfg.Bridge.StopOnError {
		bridgeOpts = append(bridgeOpts, bridge.WithStopOnError())
	}

	return &Pipeline{
		Supervisor: sup,
		Agent:      agent.New(sup, candidates, agentOpts...),
		Bridge:     bridge.New(sup.Client(), bridgeOpts...),
		closers:    []func() error{closeLock},
	}, nil
}
